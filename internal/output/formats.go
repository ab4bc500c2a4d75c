package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/rawlunge/internal/http"
	"github.com/wesleyorama2/rawlunge/internal/stats"
)

// OutputFormat represents the available output formats
type OutputFormat string

const (
	// FormatText is the default human-readable text format
	FormatText OutputFormat = "text"
	// FormatJSON outputs in JSON format
	FormatJSON OutputFormat = "json"
	// FormatYAML outputs in YAML format
	FormatYAML OutputFormat = "yaml"
)

// ParseFormat validates a format name given on the command line.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
	}
}

// FormatProvider is an interface for different output formatters
type FormatProvider interface {
	FormatRequest(req *http.Request) string
	FormatResponse(resp *http.Response) string
	FormatBenchmark(target string, summary stats.Summary) string
	FormatSuite(result *SuiteResult) string
}

// HeaderData is one header field in structured output.
type HeaderData struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// RequestData represents the structured data of an HTTP request
type RequestData struct {
	Method    string       `json:"method" yaml:"method"`
	URL       string       `json:"url" yaml:"url"`
	Version   string       `json:"version" yaml:"version"`
	Headers   []HeaderData `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body      interface{}  `json:"body,omitempty" yaml:"body,omitempty"`
	Timestamp string       `json:"timestamp" yaml:"timestamp"`
}

// TimingData represents detailed timing information for an HTTP request
type TimingData struct {
	DNSLookup       int64 `json:"dnsLookupMs" yaml:"dnsLookupMs"`
	TCPConnection   int64 `json:"tcpConnectionMs" yaml:"tcpConnectionMs"`
	TLSHandshake    int64 `json:"tlsHandshakeMs" yaml:"tlsHandshakeMs"`
	TimeToFirstByte int64 `json:"timeToFirstByteMs" yaml:"timeToFirstByteMs"`
	ContentTransfer int64 `json:"contentTransferMs" yaml:"contentTransferMs"`
	Total           int64 `json:"totalMs" yaml:"totalMs"`
}

// ResponseData represents the structured data of an HTTP response
type ResponseData struct {
	Version    string       `json:"version" yaml:"version"`
	StatusCode int          `json:"statusCode" yaml:"statusCode"`
	Status     string       `json:"status" yaml:"status"`
	Headers    []HeaderData `json:"headers,omitempty" yaml:"headers,omitempty"`
	Trailers   []HeaderData `json:"trailers,omitempty" yaml:"trailers,omitempty"`
	Body       interface{}  `json:"body,omitempty" yaml:"body,omitempty"`
	BodyBytes  int          `json:"bodyBytes" yaml:"bodyBytes"`
	Timing     TimingData   `json:"timing" yaml:"timing"`
	Timestamp  string       `json:"timestamp" yaml:"timestamp"`
}

// LatencyData is a latency distribution in milliseconds.
type LatencyData struct {
	Min  float64 `json:"minMs" yaml:"minMs"`
	Mean float64 `json:"meanMs" yaml:"meanMs"`
	P50  float64 `json:"p50Ms" yaml:"p50Ms"`
	P90  float64 `json:"p90Ms" yaml:"p90Ms"`
	P99  float64 `json:"p99Ms" yaml:"p99Ms"`
	Max  float64 `json:"maxMs" yaml:"maxMs"`
}

// BenchmarkData is the structured form of a benchmark summary.
type BenchmarkData struct {
	Target            string         `json:"target" yaml:"target"`
	Requests          int64          `json:"requests" yaml:"requests"`
	Errors            int64          `json:"errors" yaml:"errors"`
	StatusCodes       map[string]int `json:"statusCodes,omitempty" yaml:"statusCodes,omitempty"`
	RequestsPerSecond float64        `json:"requestsPerSecond" yaml:"requestsPerSecond"`
	Latency           LatencyData    `json:"latency" yaml:"latency"`
	TimeToFirstByte   LatencyData    `json:"timeToFirstByte" yaml:"timeToFirstByte"`
}

// AssertionResult represents the result of a single assertion
type AssertionResult struct {
	Type     string      `json:"type" yaml:"type"`
	Expected interface{} `json:"expected,omitempty" yaml:"expected,omitempty"`
	Actual   interface{} `json:"actual,omitempty" yaml:"actual,omitempty"`
	Passed   bool        `json:"passed" yaml:"passed"`
	Message  string      `json:"message" yaml:"message"`
}

// TestResult represents the result of a single request in a run
type TestResult struct {
	Name       string            `json:"name" yaml:"name"`
	Passed     bool              `json:"passed" yaml:"passed"`
	Duration   int64             `json:"durationMs" yaml:"durationMs"`
	StatusCode int               `json:"statusCode,omitempty" yaml:"statusCode,omitempty"`
	Error      string            `json:"error,omitempty" yaml:"error,omitempty"`
	Extracted  map[string]string `json:"extracted,omitempty" yaml:"extracted,omitempty"`
	Assertions []AssertionResult `json:"assertions,omitempty" yaml:"assertions,omitempty"`
}

// SuiteResult represents the result of running a request or a suite
type SuiteResult struct {
	Suite       string       `json:"suite" yaml:"suite"`
	TotalTests  int          `json:"totalTests" yaml:"totalTests"`
	PassedTests int          `json:"passedTests" yaml:"passedTests"`
	FailedTests int          `json:"failedTests" yaml:"failedTests"`
	Duration    int64        `json:"durationMs" yaml:"durationMs"`
	Tests       []TestResult `json:"tests" yaml:"tests"`
}

// Add appends a test result and updates the counters.
func (s *SuiteResult) Add(r TestResult) {
	s.Tests = append(s.Tests, r)
	s.TotalTests++
	if r.Passed {
		s.PassedTests++
	} else {
		s.FailedTests++
	}
}

func headerData(h http.Header) []HeaderData {
	fields := h.Fields()
	if len(fields) == 0 {
		return nil
	}
	out := make([]HeaderData, len(fields))
	for i, f := range fields {
		out[i] = HeaderData{Name: f.Name, Value: f.Value}
	}
	return out
}

// structuredBody decodes a JSON body so it nests in the output document;
// anything else is emitted as a string.
func structuredBody(body []byte) interface{} {
	if len(body) == 0 {
		return nil
	}
	var v interface{}
	if err := json.Unmarshal(body, &v); err == nil {
		return v
	}
	return string(body)
}

func newRequestData(req *http.Request) RequestData {
	return RequestData{
		Method:    req.Method,
		URL:       req.URL.String(),
		Version:   req.Version.String(),
		Headers:   headerData(req.Header),
		Body:      structuredBody(req.Body),
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

func newResponseData(resp *http.Response) ResponseData {
	return ResponseData{
		Version:    resp.Version.String(),
		StatusCode: resp.StatusCode,
		Status:     resp.Status(),
		Headers:    headerData(resp.Header),
		Trailers:   headerData(resp.Trailer),
		Body:       structuredBody(resp.Body),
		BodyBytes:  len(resp.Body),
		Timing: TimingData{
			DNSLookup:       resp.GetDNSLookupTimeMillis(),
			TCPConnection:   resp.GetTCPConnectTimeMillis(),
			TLSHandshake:    resp.GetTLSHandshakeTimeMillis(),
			TimeToFirstByte: resp.GetTimeToFirstByteMillis(),
			ContentTransfer: resp.GetContentTransferTimeMillis(),
			Total:           resp.GetTotalTimeMillis(),
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

func newLatencyData(l stats.Latency) LatencyData {
	return LatencyData{
		Min:  millis(l.Min),
		Mean: millis(l.Mean),
		P50:  millis(l.P50),
		P90:  millis(l.P90),
		P99:  millis(l.P99),
		Max:  millis(l.Max),
	}
}

func newBenchmarkData(target string, s stats.Summary) BenchmarkData {
	var codes map[string]int
	if len(s.StatusCodes) > 0 {
		codes = make(map[string]int, len(s.StatusCodes))
		for code, n := range s.StatusCodes {
			codes[fmt.Sprintf("%d", code)] = int(n)
		}
	}
	return BenchmarkData{
		Target:            target,
		Requests:          s.Requests,
		Errors:            s.Errors,
		StatusCodes:       codes,
		RequestsPerSecond: s.RequestsPerSecond(),
		Latency:           newLatencyData(s.Latency),
		TimeToFirstByte:   newLatencyData(s.TimeToFirstByte),
	}
}

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Pretty bool
}

func (f *JSONFormatter) marshal(v interface{}, what string) string {
	var out []byte
	var err error
	if f.Pretty {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Sprintf(`{"error":"Failed to marshal %s: %s"}`, what, err)
	}
	return string(out)
}

// FormatRequest formats a request as JSON
func (f *JSONFormatter) FormatRequest(req *http.Request) string {
	return f.marshal(newRequestData(req), "request")
}

// FormatResponse formats a response as JSON
func (f *JSONFormatter) FormatResponse(resp *http.Response) string {
	return f.marshal(newResponseData(resp), "response")
}

// FormatBenchmark formats a benchmark summary as JSON
func (f *JSONFormatter) FormatBenchmark(target string, summary stats.Summary) string {
	return f.marshal(newBenchmarkData(target, summary), "benchmark")
}

// FormatSuite formats run results as JSON
func (f *JSONFormatter) FormatSuite(result *SuiteResult) string {
	return f.marshal(result, "suite")
}

// YAMLFormatter formats output as YAML
type YAMLFormatter struct{}

func (f *YAMLFormatter) marshal(v interface{}, what string) string {
	out, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("error: Failed to marshal %s: %s\n", what, err)
	}
	return string(out)
}

// FormatRequest formats a request as YAML
func (f *YAMLFormatter) FormatRequest(req *http.Request) string {
	return f.marshal(newRequestData(req), "request")
}

// FormatResponse formats a response as YAML
func (f *YAMLFormatter) FormatResponse(resp *http.Response) string {
	return f.marshal(newResponseData(resp), "response")
}

// FormatBenchmark formats a benchmark summary as YAML
func (f *YAMLFormatter) FormatBenchmark(target string, summary stats.Summary) string {
	return f.marshal(newBenchmarkData(target, summary), "benchmark")
}

// FormatSuite formats run results as YAML
func (f *YAMLFormatter) FormatSuite(result *SuiteResult) string {
	return f.marshal(result, "suite")
}

// GetFormatter returns the appropriate formatter for the given format
func GetFormatter(format OutputFormat, verbose bool, noColor bool) FormatProvider {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Pretty: true}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return NewFormatter(verbose, noColor)
	}
}
