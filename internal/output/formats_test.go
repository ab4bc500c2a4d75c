package output

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/rawlunge/internal/stats"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"junit", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestGetFormatter(t *testing.T) {
	assert.IsType(t, &Formatter{}, GetFormatter(FormatText, false, true))
	assert.IsType(t, &JSONFormatter{}, GetFormatter(FormatJSON, false, true))
	assert.IsType(t, &YAMLFormatter{}, GetFormatter(FormatYAML, false, true))
}

func TestJSONFormatter_FormatResponse(t *testing.T) {
	f := &JSONFormatter{Pretty: false}
	out := f.FormatResponse(newTestResponse())

	var data ResponseData
	require.NoError(t, json.Unmarshal([]byte(out), &data))

	assert.Equal(t, "HTTP/1.1", data.Version)
	assert.Equal(t, 200, data.StatusCode)
	assert.Equal(t, "200 OK", data.Status)
	assert.Equal(t, []HeaderData{{"content-type", "application/json"}, {"x-request-id", "abc"}}, data.Headers)
	assert.Equal(t, []HeaderData{{"x-checksum", "42"}}, data.Trailers)
	assert.Equal(t, map[string]interface{}{"id": float64(1), "name": "John Doe"}, data.Body)
	assert.Equal(t, int64(40), data.Timing.Total)
	assert.Equal(t, 26, data.BodyBytes)
}

func TestJSONFormatter_NonJSONBodyIsString(t *testing.T) {
	resp := newTestResponse()
	resp.Body = []byte("plain text")

	var data ResponseData
	require.NoError(t, json.Unmarshal([]byte((&JSONFormatter{}).FormatResponse(resp)), &data))
	assert.Equal(t, "plain text", data.Body)
}

func TestJSONFormatter_FormatRequest(t *testing.T) {
	out := (&JSONFormatter{Pretty: true}).FormatRequest(newTestRequest(t))

	var data RequestData
	require.NoError(t, json.Unmarshal([]byte(out), &data))
	assert.Equal(t, "POST", data.Method)
	assert.Equal(t, "https://api.example.com/users?page=1", data.URL)
	assert.Len(t, data.Headers, 2)
	assert.NotEmpty(t, data.Timestamp)
}

func TestYAMLFormatter_FormatBenchmark(t *testing.T) {
	summary := stats.Summary{
		Requests:    4,
		StatusCodes: map[int]int64{200: 4},
		Elapsed:     2 * time.Second,
		Latency:     stats.Latency{P50: 2500 * time.Microsecond},
	}
	out := (&YAMLFormatter{}).FormatBenchmark("http://example.com/", summary)

	var data BenchmarkData
	require.NoError(t, yaml.Unmarshal([]byte(out), &data))
	assert.Equal(t, "http://example.com/", data.Target)
	assert.Equal(t, int64(4), data.Requests)
	assert.Equal(t, map[string]int{"200": 4}, data.StatusCodes)
	assert.InDelta(t, 2.0, data.RequestsPerSecond, 0.001)
	assert.InDelta(t, 2.5, data.Latency.P50, 0.001)
}

func TestYAMLFormatter_FormatSuite(t *testing.T) {
	result := &SuiteResult{Suite: "smoke"}
	result.Add(TestResult{Name: "health", Passed: true, StatusCode: 200})

	var back SuiteResult
	require.NoError(t, yaml.Unmarshal([]byte((&YAMLFormatter{}).FormatSuite(result)), &back))
	assert.Equal(t, "smoke", back.Suite)
	assert.Equal(t, 1, back.PassedTests)
	require.Len(t, back.Tests, 1)
	assert.Equal(t, 200, back.Tests[0].StatusCode)
}

func TestUseColor(t *testing.T) {
	assert.False(t, UseColor(true, os.Stdout))

	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, IsTerminal(f))
	assert.False(t, UseColor(false, f))
}
