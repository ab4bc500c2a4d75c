package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/wesleyorama2/rawlunge/internal/http"
	"github.com/wesleyorama2/rawlunge/internal/stats"
)

// Formatter is responsible for formatting HTTP requests and responses in text format
type Formatter struct {
	Verbose bool
	NoColor bool
	colors  *ColorScheme
}

// NewFormatter creates a new formatter with the given options
func NewFormatter(verbose, noColor bool) *Formatter {
	colors := DefaultColorScheme()
	if noColor {
		colors = NoColorScheme()
	}
	return &Formatter{
		Verbose: verbose,
		NoColor: noColor,
		colors:  colors,
	}
}

// FormatRequest formats an HTTP request for display
func (f *Formatter) FormatRequest(req *http.Request) string {
	var buf strings.Builder

	buf.WriteString(fmt.Sprintf("▶ REQUEST: %s %s %s\n",
		f.colors.Method.Sprint(req.Method),
		f.colors.URL.Sprint(req.URL.String()),
		f.colors.Version.Sprint(req.Version)))

	if f.Verbose || req.Header.Len() > 0 {
		f.writeHeaders(&buf, "Headers", req.Header)
	}

	if len(req.Body) > 0 {
		buf.WriteString("  Body: ")
		buf.WriteString(formatJSONString(string(req.Body)))
		buf.WriteString("\n")
	}

	return buf.String()
}

// FormatResponse formats an HTTP response for display
func (f *Formatter) FormatResponse(resp *http.Response) string {
	var buf strings.Builder

	buf.WriteString(fmt.Sprintf("◀ RESPONSE: %s %s (%dms)\n",
		f.colors.Version.Sprint(resp.Version),
		f.colors.Status(resp.StatusCode).Sprint(resp.Status()),
		resp.GetTotalTimeMillis()))

	if f.Verbose {
		buf.WriteString("  Timing:\n")
		buf.WriteString(fmt.Sprintf("    DNS Lookup:         %dms\n", resp.GetDNSLookupTimeMillis()))
		buf.WriteString(fmt.Sprintf("    TCP Connection:     %dms\n", resp.GetTCPConnectTimeMillis()))
		buf.WriteString(fmt.Sprintf("    TLS Handshake:      %dms\n", resp.GetTLSHandshakeTimeMillis()))
		buf.WriteString(fmt.Sprintf("    Time to First Byte: %dms\n", resp.GetTimeToFirstByteMillis()))
		buf.WriteString(fmt.Sprintf("    Content Transfer:   %dms\n", resp.GetContentTransferTimeMillis()))
		buf.WriteString(fmt.Sprintf("    Total:              %dms\n", resp.GetTotalTimeMillis()))

		f.writeHeaders(&buf, "Headers", resp.Header)
		if resp.Trailer.Len() > 0 {
			f.writeHeaders(&buf, "Trailers", resp.Trailer)
		}
	}

	if body := resp.GetBodyAsString(); body != "" {
		buf.WriteString("  Body:\n")
		buf.WriteString(formatJSONString(body))
		buf.WriteString("\n")
	}

	return buf.String()
}

func (f *Formatter) writeHeaders(buf *strings.Builder, title string, h http.Header) {
	buf.WriteString("  " + title + ":\n")
	for _, field := range h.Fields() {
		buf.WriteString(fmt.Sprintf("    %s: %s\n", f.colors.HeaderKey.Sprint(field.Name), field.Value))
	}
}

// FormatBenchmark renders a latency summary table
func (f *Formatter) FormatBenchmark(target string, s stats.Summary) string {
	var buf strings.Builder

	buf.WriteString(fmt.Sprintf("%s %s\n", f.colors.Highlight.Sprint("BENCHMARK:"), f.colors.URL.Sprint(target)))
	buf.WriteString(fmt.Sprintf("  Requests:  %d (%.1f/s)\n", s.Requests, s.RequestsPerSecond()))

	errLine := fmt.Sprintf("  Errors:    %d\n", s.Errors)
	if s.Errors > 0 {
		errLine = f.colors.Error.Sprint(errLine)
	}
	buf.WriteString(errLine)

	if len(s.StatusCodes) > 0 {
		codes := make([]int, 0, len(s.StatusCodes))
		for code := range s.StatusCodes {
			codes = append(codes, code)
		}
		sort.Ints(codes)
		buf.WriteString("  Status codes:\n")
		for _, code := range codes {
			buf.WriteString(fmt.Sprintf("    %s: %d\n", f.colors.Status(code).Sprint(code), s.StatusCodes[code]))
		}
	}

	writeLatency(&buf, "Latency", s.Latency)
	if s.TimeToFirstByte.Max > 0 {
		writeLatency(&buf, "Time to First Byte", s.TimeToFirstByte)
	}
	return buf.String()
}

func writeLatency(buf *strings.Builder, title string, l stats.Latency) {
	buf.WriteString("  " + title + ":\n")
	rows := []struct {
		name string
		d    time.Duration
	}{
		{"min", l.Min},
		{"mean", l.Mean},
		{"p50", l.P50},
		{"p90", l.P90},
		{"p99", l.P99},
		{"max", l.Max},
	}
	for _, row := range rows {
		buf.WriteString(fmt.Sprintf("    %-5s %s\n", row.name, formatDuration(row.d)))
	}
}

// FormatSuite renders one line per request and a totals line
func (f *Formatter) FormatSuite(result *SuiteResult) string {
	var buf strings.Builder

	buf.WriteString(fmt.Sprintf("%s %s\n", f.colors.Highlight.Sprint("SUITE:"), result.Suite))
	for _, t := range result.Tests {
		icon := SuccessIcon(f.NoColor)
		if !t.Passed {
			icon = ErrorIcon(f.NoColor)
		}
		buf.WriteString(fmt.Sprintf("  %s %s (%dms)\n", icon, t.Name, t.Duration))
		if t.Error != "" {
			buf.WriteString(fmt.Sprintf("      %s\n", f.colors.Error.Sprint(t.Error)))
		}
		for _, a := range t.Assertions {
			if !a.Passed {
				buf.WriteString(fmt.Sprintf("      %s: %s\n", a.Type, a.Message))
			}
		}
	}

	summary := fmt.Sprintf("  %d passed, %d failed (%dms)\n", result.PassedTests, result.FailedTests, result.Duration)
	if result.FailedTests > 0 {
		buf.WriteString(f.colors.Error.Sprint(summary))
	} else {
		buf.WriteString(f.colors.Success.Sprint(summary))
	}
	return buf.String()
}

// formatDuration prints durations with millisecond precision below a second.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.2fms", float64(d.Microseconds())/1000)
	}
	return d.Round(time.Millisecond).String()
}

// formatJSONString attempts to pretty-print a JSON string
func formatJSONString(s string) string {
	var prettyJSON bytes.Buffer
	err := json.Indent(&prettyJSON, []byte(s), "  ", "  ")
	if err != nil {
		return s
	}
	return prettyJSON.String()
}
