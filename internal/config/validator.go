package config

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Path    string
	Message string
}

// Error returns the error message
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidateConfig validates the configuration. Errors are reported in a
// stable order: environments, requests, then suites, each sorted by name.
func ValidateConfig(config *Config) []ValidationError {
	var errors []ValidationError
	add := func(path, format string, args ...interface{}) {
		errors = append(errors, ValidationError{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if len(config.Environments) == 0 {
		add("environments", "at least one environment is required")
	}
	for _, name := range sortedKeys(config.Environments) {
		env := config.Environments[name]
		path := "environments." + name
		if env.BaseURL == "" {
			add(path+".baseUrl", "baseUrl is required")
		} else if !strings.Contains(env.BaseURL, "{{") {
			if u, err := url.Parse(env.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
				add(path+".baseUrl", "baseUrl must be an absolute URL: %s", env.BaseURL)
			}
		}
		if env.Timeout != "" {
			if _, err := parseDurationString(env.Timeout); err != nil {
				add(path+".timeout", "invalid timeout '%s'", env.Timeout)
			}
		}
		for header := range env.Headers {
			if !httpguts.ValidHeaderFieldName(header) {
				add(path+".headers", "invalid header name: %s", header)
			}
		}
	}

	if len(config.Requests) == 0 {
		add("requests", "at least one request is required")
	}
	for _, name := range sortedKeys(config.Requests) {
		req := config.Requests[name]
		path := "requests." + name

		if req.URL == "" {
			add(path+".url", "url is required")
		}

		if req.Method == "" {
			add(path+".method", "method is required")
		} else if !validMethod(req.Method) {
			add(path+".method", "invalid method: %s", req.Method)
		}

		switch req.Version {
		case "", "1.0", "1.1", "HTTP/1.0", "HTTP/1.1":
		default:
			add(path+".version", "unsupported version: %s", req.Version)
		}

		for header := range req.Headers {
			if !httpguts.ValidHeaderFieldName(header) {
				add(path+".headers", "invalid header name: %s", header)
			}
		}

		for _, varName := range sortedKeys(req.Extract) {
			if req.Extract[varName] == "" {
				add(fmt.Sprintf("%s.extract.%s", path, varName), "extract path cannot be empty")
			}
		}

		if v := req.Validate; v != nil {
			if v.Status != 0 && (v.Status < 100 || v.Status > 999) {
				add(path+".validate.status", "status must be a three-digit code, got %d", v.Status)
			}
			if v.Schema != "" && !strings.HasSuffix(v.Schema, ".json") {
				if _, ok := config.Schemas[v.Schema]; !ok {
					add(path+".validate.schema", "schema not found: %s", v.Schema)
				}
			}
		}
	}

	for _, name := range sortedKeys(config.Suites) {
		suite := config.Suites[name]
		if len(suite.Requests) == 0 {
			add(fmt.Sprintf("suites.%s.requests", name), "at least one request is required")
		}
		for i, reqName := range suite.Requests {
			if _, ok := config.Requests[reqName]; !ok {
				add(fmt.Sprintf("suites.%s.requests[%d]", name, i), "request not found: %s", reqName)
			}
		}
	}

	return errors
}

var knownMethods = map[string]bool{
	"GET": true, "HEAD": true, "POST": true, "PUT": true, "DELETE": true,
	"PATCH": true, "OPTIONS": true, "TRACE": true, "CONNECT": true,
}

func validMethod(method string) bool {
	return knownMethods[strings.ToUpper(method)]
}

// ValidateEnvironment validates that an environment exists
func ValidateEnvironment(config *Config, envName string) error {
	if _, ok := config.Environments[envName]; !ok {
		return fmt.Errorf("environment not found: %s", envName)
	}
	return nil
}

// ValidateRequest validates that a request exists
func ValidateRequest(config *Config, reqName string) error {
	if _, ok := config.Requests[reqName]; !ok {
		return fmt.Errorf("request not found: %s", reqName)
	}
	return nil
}

// ValidateSuite validates that a suite exists
func ValidateSuite(config *Config, suiteName string) error {
	if _, ok := config.Suites[suiteName]; !ok {
		return fmt.Errorf("suite not found: %s", suiteName)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
