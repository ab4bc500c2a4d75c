package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/rawlunge/internal/http"
	"github.com/wesleyorama2/rawlunge/internal/logging"
	"github.com/wesleyorama2/rawlunge/internal/output"
)

// requestOptions holds the flags shared by every command that talks to a server.
type requestOptions struct {
	headers  []string
	verbose  bool
	timeout  time.Duration
	noColor  bool
	format   string
	http10   bool
	insecure bool
	logLevel string
}

func (o *requestOptions) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringArrayVarP(&o.headers, "header", "H", nil, "HTTP headers to include (can be used multiple times)")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "Enable verbose output")
	flags.DurationVarP(&o.timeout, "timeout", "t", 30*time.Second, "Request timeout")
	flags.BoolVar(&o.noColor, "no-color", false, "Disable colored output")
	flags.StringVarP(&o.format, "output", "o", "text", "Output format: text, json or yaml")
	flags.BoolVar(&o.http10, "http10", false, "Send HTTP/1.0 instead of HTTP/1.1")
	flags.BoolVarP(&o.insecure, "insecure", "k", false, "Skip TLS certificate verification")
	flags.StringVar(&o.logLevel, "log-level", logging.DefaultLevel, "Diagnostic log level: debug, info, warn, error or disabled")
}

// newClient builds a client whose diagnostics go to the command's stderr.
func (o *requestOptions) newClient(cmd *cobra.Command, timeout time.Duration) (*http.Client, error) {
	logger, err := logging.New(cmd.ErrOrStderr(), o.logLevel)
	if err != nil {
		return nil, err
	}
	opts := []http.ClientOption{
		http.WithTimeout(timeout),
		http.WithClientLogger(logger),
	}
	if o.insecure {
		opts = append(opts, http.WithInsecureSkipVerify())
	}
	return http.NewClient(opts...), nil
}

// formatter picks the output format. Color is only used when stdout is a
// terminal.
func (o *requestOptions) formatter(cmd *cobra.Command) (output.FormatProvider, output.OutputFormat, error) {
	format, err := output.ParseFormat(o.format)
	if err != nil {
		return nil, "", err
	}
	noColor := true
	if f, ok := cmd.OutOrStdout().(*os.File); ok {
		noColor = !output.UseColor(o.noColor, f)
	}
	return output.GetFormatter(format, o.verbose, noColor), format, nil
}

// buildRequest turns a command-line URL, the header flags and an optional
// body into a request.
func (o *requestOptions) buildRequest(method, rawURL string, body []byte) (*http.Request, error) {
	req, err := http.NewRequest(method, normalizeURL(rawURL))
	if err != nil {
		return nil, err
	}
	if o.http10 {
		req.WithVersion(http.HTTP10)
	}
	headers, err := parseHeaders(o.headers)
	if err != nil {
		return nil, err
	}
	for _, h := range headers {
		req.WithHeader(h[0], h[1])
	}
	if body != nil {
		req.WithBody(body)
	}
	return req, nil
}

// execute sends req and prints it and its response to the command's stdout.
// The request is only echoed in text mode so structured output stays a
// single document.
func (o *requestOptions) execute(cmd *cobra.Command, req *http.Request) error {
	formatter, format, err := o.formatter(cmd)
	if err != nil {
		return err
	}
	client, err := o.newClient(cmd, o.timeout)
	if err != nil {
		return err
	}

	client.Prepare(req)
	out := cmd.OutOrStdout()
	if format == output.FormatText {
		fmt.Fprint(out, formatter.FormatRequest(req))
	}

	resp, err := client.Do(commandContext(cmd), req)
	if err != nil {
		return err
	}
	fmt.Fprint(out, formatter.FormatResponse(resp))
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// normalizeURL adds the http scheme when the URL has none.
func normalizeURL(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return "http://" + rawURL
	}
	return rawURL
}

// parseHeaders splits "Name: value" flags. A flag without a colon is an error.
func parseHeaders(raw []string) ([][2]string, error) {
	out := make([][2]string, 0, len(raw))
	for _, header := range raw {
		parts := strings.SplitN(header, ":", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
			return nil, fmt.Errorf("invalid header %q (want \"Name: value\")", header)
		}
		out = append(out, [2]string{strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])})
	}
	return out, nil
}
