package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/rawlunge/internal/config"
	"github.com/wesleyorama2/rawlunge/internal/http"
	"github.com/wesleyorama2/rawlunge/internal/output"
	"github.com/wesleyorama2/rawlunge/pkg/jsonpath"
	"github.com/wesleyorama2/rawlunge/pkg/jsonschema"
)

type runOptions struct {
	requestOptions
	configFile  string
	environment string
	request     string
	suite       string
}

func newRunCmd() *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run requests or suites from a configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd)
		},
	}
	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.configFile, "config", "c", "", "Configuration file (required)")
	cmd.Flags().StringVarP(&opts.environment, "environment", "e", "", "Environment to use (required)")
	cmd.Flags().StringVarP(&opts.request, "request", "r", "", "Request to run")
	cmd.Flags().StringVarP(&opts.suite, "suite", "s", "", "Suite to run")
	cmd.MarkFlagsMutuallyExclusive("request", "suite")
	return cmd
}

func (o *runOptions) run(cmd *cobra.Command) error {
	if o.configFile == "" {
		return fmt.Errorf("config file is required")
	}
	if o.environment == "" {
		return fmt.Errorf("environment is required")
	}
	if o.request == "" && o.suite == "" {
		return fmt.Errorf("either request or suite is required")
	}

	// Load configuration
	cfg, err := config.LoadConfig(o.configFile)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if errs := config.ValidateConfig(cfg); len(errs) > 0 {
		lines := make([]string, len(errs))
		for i, e := range errs {
			lines[i] = "  - " + e.Error()
		}
		return fmt.Errorf("configuration validation errors:\n%s", strings.Join(lines, "\n"))
	}
	if err := config.ValidateEnvironment(cfg, o.environment); err != nil {
		return err
	}

	env := cfg.Environments[o.environment]
	vars := config.MergeEnvironments(env.Vars, nil)

	var names []string
	label := o.request
	if o.request != "" {
		if err := config.ValidateRequest(cfg, o.request); err != nil {
			return err
		}
		names = []string{o.request}
	} else {
		if err := config.ValidateSuite(cfg, o.suite); err != nil {
			return err
		}
		suite := cfg.Suites[o.suite]
		for _, key := range sortedKeys(suite.Vars) {
			vars[key] = config.ProcessEnvironment(suite.Vars[key], vars)
		}
		names = suite.Requests
		label = o.suite
	}

	// An explicit --timeout wins over the environment's
	timeout := o.timeout
	if !cmd.Flags().Changed("timeout") {
		if timeout, err = env.TimeoutOr(o.timeout); err != nil {
			return err
		}
	}
	client, err := o.newClient(cmd, timeout)
	if err != nil {
		return err
	}
	formatter, format, err := o.formatter(cmd)
	if err != nil {
		return err
	}
	extra, err := parseHeaders(o.headers)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	ctx := commandContext(cmd)
	result := &output.SuiteResult{Suite: label}
	start := time.Now()

	for _, name := range names {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r := runner{cfg: cfg, client: client, env: o.environment, headers: extra}
		req, resp, tr := r.run(ctx, name, vars)
		if o.verbose && format == output.FormatText {
			if req != nil {
				fmt.Fprint(out, formatter.FormatRequest(req))
			}
			if resp != nil {
				fmt.Fprint(out, formatter.FormatResponse(resp))
			}
		}
		// Extracted values feed the requests that follow
		for k, v := range tr.Extracted {
			vars[k] = v
		}
		result.Add(tr)
	}
	result.Duration = time.Since(start).Milliseconds()

	fmt.Fprint(out, formatter.FormatSuite(result))
	if result.FailedTests > 0 {
		return fmt.Errorf("%d of %d requests failed", result.FailedTests, result.TotalTests)
	}
	return nil
}

// runner executes one configured request and checks its response.
type runner struct {
	cfg     *config.Config
	client  *http.Client
	env     string
	headers [][2]string
}

func (r runner) run(ctx context.Context, name string, vars map[string]string) (*http.Request, *http.Response, output.TestResult) {
	start := time.Now()
	tr := output.TestResult{Name: name}

	req, err := r.cfg.BuildRequest(r.env, name, vars)
	if err != nil {
		tr.Error = err.Error()
		return nil, nil, finish(tr, start)
	}
	for _, h := range r.headers {
		req.Header.Set(h[0], h[1])
	}

	resp, err := r.client.Do(ctx, req)
	if err != nil {
		tr.Error = err.Error()
		return req, nil, finish(tr, start)
	}
	tr.StatusCode = resp.StatusCode

	tmpl := r.cfg.Requests[name]
	tr.Assertions = r.check(tmpl.Validate, resp)
	if len(tmpl.Extract) > 0 {
		extracted, err := jsonpath.ExtractAll(resp.Body, tmpl.Extract)
		tr.Extracted = extracted
		if err != nil {
			tr.Assertions = append(tr.Assertions, output.AssertionResult{
				Type:    "extract",
				Passed:  false,
				Message: err.Error(),
			})
		}
	}
	return req, resp, finish(tr, start)
}

// check applies the status, header and schema expectations of v.
func (r runner) check(v *config.Validation, resp *http.Response) []output.AssertionResult {
	if v == nil {
		return nil
	}
	var results []output.AssertionResult

	if v.Status != 0 {
		a := output.AssertionResult{Type: "status", Expected: v.Status, Actual: resp.StatusCode}
		a.Passed = resp.StatusCode == v.Status
		if a.Passed {
			a.Message = fmt.Sprintf("status is %d", v.Status)
		} else {
			a.Message = fmt.Sprintf("expected status %d, got %d", v.Status, resp.StatusCode)
		}
		results = append(results, a)
	}

	for _, name := range sortedKeys(v.Headers) {
		want := v.Headers[name]
		got, ok := resp.Header.Get(name)
		a := output.AssertionResult{Type: "header", Expected: want, Actual: got}
		switch {
		case !ok:
			a.Message = fmt.Sprintf("header %s is missing", strings.ToLower(name))
		case got != want:
			a.Message = fmt.Sprintf("header %s: expected %q, got %q", strings.ToLower(name), want, got)
		default:
			a.Passed = true
			a.Message = fmt.Sprintf("header %s matches", strings.ToLower(name))
		}
		results = append(results, a)
	}

	if v.Schema != "" {
		a := output.AssertionResult{Type: "schema", Expected: v.Schema}
		schema, err := r.cfg.SchemaJSON(v.Schema)
		if err == nil {
			err = jsonschema.Validate(resp.Body, schema)
		}
		if err != nil {
			a.Message = err.Error()
		} else {
			a.Passed = true
			a.Message = "body matches schema " + v.Schema
		}
		results = append(results, a)
	}
	return results
}

func finish(tr output.TestResult, start time.Time) output.TestResult {
	tr.Duration = time.Since(start).Milliseconds()
	tr.Passed = tr.Error == ""
	for _, a := range tr.Assertions {
		if !a.Passed {
			tr.Passed = false
		}
	}
	return tr
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
