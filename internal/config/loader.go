package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/rawlunge/internal/http"
)

// Config represents the top-level configuration
type Config struct {
	Environments map[string]Environment `json:"environments" yaml:"environments"`
	Requests     map[string]Request     `json:"requests" yaml:"requests"`
	Suites       map[string]Suite       `json:"suites,omitempty" yaml:"suites,omitempty"`
	Schemas      map[string]interface{} `json:"schemas,omitempty" yaml:"schemas,omitempty"`

	// dir is the directory of the loaded file; relative schema files
	// resolve against it.
	dir string
}

// Environment represents an environment configuration
type Environment struct {
	BaseURL string            `json:"baseUrl" yaml:"baseUrl"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Vars    map[string]string `json:"variables,omitempty" yaml:"variables,omitempty"`
	Timeout string            `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// Request represents a request configuration
type Request struct {
	URL         string            `json:"url" yaml:"url"`
	Method      string            `json:"method" yaml:"method"`
	Version     string            `json:"version,omitempty" yaml:"version,omitempty"`
	Headers     map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	QueryParams map[string]string `json:"queryParams,omitempty" yaml:"queryParams,omitempty"`
	Body        interface{}       `json:"body,omitempty" yaml:"body,omitempty"`
	Extract     map[string]string `json:"extract,omitempty" yaml:"extract,omitempty"`
	Validate    *Validation       `json:"validate,omitempty" yaml:"validate,omitempty"`
}

// Validation lists the checks applied to a response
type Validation struct {
	Status  int               `json:"status,omitempty" yaml:"status,omitempty"`
	Schema  string            `json:"schema,omitempty" yaml:"schema,omitempty"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
}

// Suite represents a suite of requests
type Suite struct {
	Requests []string          `json:"requests" yaml:"requests"`
	Vars     map[string]string `json:"variables,omitempty" yaml:"variables,omitempty"`
}

// LoadConfig loads a configuration file. The format is chosen by
// extension: .yaml and .yml are YAML, .json is JSON.
func LoadConfig(path string) (*Config, error) {
	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config, err := ParseConfig(data, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	config.dir = filepath.Dir(path)
	return config, nil
}

// ParseConfig decodes a configuration document. ext selects the format and
// includes the leading dot.
func ParseConfig(data []byte, ext string) (*Config, error) {
	var config Config
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q (want .yaml, .yml or .json)", ext)
	}
	return &config, nil
}

// SchemaJSON returns the named schema as a JSON document. An unknown name
// is treated as a path to a schema file, relative to the config file.
func (c *Config) SchemaJSON(name string) (string, error) {
	if schema, ok := c.Schemas[name]; ok {
		out, err := json.Marshal(schema)
		if err != nil {
			return "", fmt.Errorf("schema %s: %w", name, err)
		}
		return string(out), nil
	}

	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.dir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("schema not found: %s", name)
	}
	return string(data), nil
}

// TimeoutOr returns the environment's request timeout, or fallback when unset.
func (e Environment) TimeoutOr(fallback time.Duration) (time.Duration, error) {
	if e.Timeout == "" {
		return fallback, nil
	}
	d, err := parseDurationString(e.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout '%s': %w", e.Timeout, err)
	}
	return d, nil
}

// BuildRequest expands the named request template for an environment.
// vars are layered over the environment's variables. Header and URL
// substitution use the {{name}} syntax. A non-string body is encoded as
// JSON and gets a JSON content-type unless one is set.
func (c *Config) BuildRequest(envName, reqName string, vars map[string]string) (*http.Request, error) {
	env, ok := c.Environments[envName]
	if !ok {
		return nil, fmt.Errorf("environment not found: %s", envName)
	}
	tmpl, ok := c.Requests[reqName]
	if !ok {
		return nil, fmt.Errorf("request not found: %s", reqName)
	}

	scope := MergeEnvironments(env.Vars, vars)
	target := JoinURL(ProcessEnvironment(env.BaseURL, scope), ProcessEnvironment(tmpl.URL, scope))

	method := tmpl.Method
	if method == "" {
		method = "GET"
	}
	req, err := http.NewRequest(method, target)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", reqName, err)
	}

	switch tmpl.Version {
	case "", "1.1", "HTTP/1.1":
	case "1.0", "HTTP/1.0":
		req.WithVersion(http.HTTP10)
	default:
		return nil, fmt.Errorf("request %s: unsupported version %q", reqName, tmpl.Version)
	}

	for _, name := range sortedKeys(tmpl.QueryParams) {
		req.WithQueryParam(name, ProcessEnvironment(tmpl.QueryParams[name], scope))
	}

	headers := MergeEnvironments(lowerKeys(env.Headers), lowerKeys(tmpl.Headers))
	for _, name := range sortedKeys(headers) {
		req.WithHeader(name, ProcessEnvironment(headers[name], scope))
	}

	if tmpl.Body != nil {
		body, isJSON, err := encodeBody(tmpl.Body)
		if err != nil {
			return nil, fmt.Errorf("request %s: %w", reqName, err)
		}
		req.WithBody([]byte(ProcessEnvironment(body, scope)))
		if isJSON && !req.Header.Has("content-type") {
			req.WithHeader("Content-Type", "application/json")
		}
	}

	return req, nil
}

func encodeBody(body interface{}) (string, bool, error) {
	if s, ok := body.(string); ok {
		return s, false, nil
	}
	out, err := json.Marshal(body)
	if err != nil {
		return "", false, fmt.Errorf("error encoding body: %w", err)
	}
	return string(out), true, nil
}

func lowerKeys(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = v
	}
	return out
}

// JoinURL appends path to base unless path is already absolute.
func JoinURL(base, path string) string {
	if u, err := url.Parse(path); err == nil && u.IsAbs() {
		return path
	}
	if path == "" {
		return base
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
}

// parseDurationString parses duration strings like "30s", "5m", "1 minute"
func parseDurationString(duration string) (time.Duration, error) {
	duration = strings.TrimSpace(duration)
	if duration == "" {
		return 0, fmt.Errorf("duration cannot be empty")
	}

	if d, err := time.ParseDuration(duration); err == nil {
		return d, nil
	}

	// Handle additional formats like "1 minute", "30 seconds"
	duration = strings.ToLower(duration)
	duration = strings.ReplaceAll(duration, " ", "")

	// Longest words first so "seconds" is not left as "s" + "s".
	for _, r := range []struct{ word, abbrev string }{
		{"seconds", "s"}, {"second", "s"},
		{"minutes", "m"}, {"minute", "m"},
		{"hours", "h"}, {"hour", "h"},
	} {
		duration = strings.ReplaceAll(duration, r.word, r.abbrev)
	}

	return time.ParseDuration(duration)
}

// ProcessEnvironment processes environment variables in a string
func ProcessEnvironment(input string, env map[string]string) string {
	result := input
	for key, value := range env {
		result = strings.ReplaceAll(result, "{{"+key+"}}", value)
	}
	return result
}

// ProcessEnvironmentInMap processes environment variables in a map
func ProcessEnvironmentInMap(input map[string]string, env map[string]string) map[string]string {
	result := make(map[string]string, len(input))
	for key, value := range input {
		result[key] = ProcessEnvironment(value, env)
	}
	return result
}

// MergeEnvironments merges two environments, with the second taking precedence
func MergeEnvironments(base, override map[string]string) map[string]string {
	result := make(map[string]string, len(base)+len(override))
	for key, value := range base {
		result[key] = value
	}
	for key, value := range override {
		result[key] = value
	}
	return result
}

// GetConfigDir returns the directory containing the config file
func GetConfigDir(configPath string) string {
	return filepath.Dir(configPath)
}
