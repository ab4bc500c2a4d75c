package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes the command tree with args and returns stdout and stderr.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

// echoServer answers every request with a JSON description of what it got.
func echoServer(t *testing.T, hits *int64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt64(hits, 1)
		}
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Method", r.Method)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"method":  r.Method,
			"path":    r.URL.RequestURI(),
			"proto":   r.Proto,
			"body":    string(body),
			"type":    r.Header.Get("Content-Type"),
			"trace":   r.Header.Get("X-Trace"),
			"host":    r.Host,
			"message": "success",
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNormalizeURL(t *testing.T) {
	tests := map[string]string{
		"example.com":               "http://example.com",
		"localhost:8080/api?x=1":    "http://localhost:8080/api?x=1",
		"http://example.com/path":   "http://example.com/path",
		"https://example.com:8443/": "https://example.com:8443/",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeURL(in), in)
	}
}

func TestParseHeaders(t *testing.T) {
	headers, err := parseHeaders([]string{"Accept: application/json", "X-Empty:", "Authorization:Bearer a:b"})
	require.NoError(t, err)
	assert.Equal(t, [][2]string{
		{"Accept", "application/json"},
		{"X-Empty", ""},
		{"Authorization", "Bearer a:b"},
	}, headers)

	_, err = parseHeaders([]string{"no colon"})
	assert.Error(t, err)

	_, err = parseHeaders([]string{": value"})
	assert.Error(t, err)
}

func TestRootHelp(t *testing.T) {
	stdout, _, err := runCLI(t)
	require.NoError(t, err)
	for _, sub := range []string{"get", "post", "put", "delete", "run", "bench"} {
		assert.Contains(t, stdout, sub)
	}
}

func TestGetCommand(t *testing.T) {
	srv := echoServer(t, nil)

	stdout, _, err := runCLI(t, "get", srv.URL+"/items?page=2", "-H", "X-Trace: 7", "--no-color")
	require.NoError(t, err)

	expectedParts := []string{
		"REQUEST: GET " + srv.URL + "/items?page=2 HTTP/1.1",
		"x-trace: 7",
		"RESPONSE: HTTP/1.1 200 OK",
		`"path": "/items?page=2"`,
		`"trace": "7"`,
	}
	for _, part := range expectedParts {
		if !strings.Contains(stdout, part) {
			t.Errorf("Expected output to contain '%s', got:\n%s", part, stdout)
		}
	}
}

func TestGetCommand_SchemeAdded(t *testing.T) {
	srv := echoServer(t, nil)
	host := strings.TrimPrefix(srv.URL, "http://")

	stdout, _, err := runCLI(t, "get", host, "--http10")
	require.NoError(t, err)
	assert.Contains(t, stdout, "REQUEST: GET http://"+host+" HTTP/1.0")
	assert.Contains(t, stdout, `"proto": "HTTP/1.0"`)
}

func TestGetCommand_JSONOutput(t *testing.T) {
	srv := echoServer(t, nil)

	stdout, _, err := runCLI(t, "get", srv.URL, "-o", "json")
	require.NoError(t, err)

	var doc struct {
		StatusCode int                    `json:"statusCode"`
		Version    string                 `json:"version"`
		Body       map[string]interface{} `json:"body"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc), stdout)
	assert.Equal(t, 200, doc.StatusCode)
	assert.Equal(t, "HTTP/1.1", doc.Version)
	assert.Equal(t, "success", doc.Body["message"])
}

func TestGetCommand_Errors(t *testing.T) {
	_, _, err := runCLI(t, "get")
	assert.Error(t, err)

	_, _, err = runCLI(t, "get", "http://example.com", "-o", "xml")
	assert.ErrorContains(t, err, "unknown output format")

	_, _, err = runCLI(t, "get", "http://example.com", "-H", "broken")
	assert.ErrorContains(t, err, "invalid header")

	_, _, err = runCLI(t, "get", "http://example.com", "--log-level", "loud")
	assert.ErrorContains(t, err, "unknown log level")
}

func TestGetCommand_ConnectionRefused(t *testing.T) {
	srv := echoServer(t, nil)
	url := srv.URL
	srv.Close()

	_, _, err := runCLI(t, "get", url, "-t", "2s")
	assert.Error(t, err)
}

func TestBodyCommands(t *testing.T) {
	srv := echoServer(t, nil)

	stdout, _, err := runCLI(t, "post", srv.URL+"/users", "-j", `{"name":"Ada"}`)
	require.NoError(t, err)
	assert.Contains(t, stdout, `"method": "POST"`)
	assert.Contains(t, stdout, `"type": "application/json"`)
	assert.Contains(t, stdout, `\"name\":\"Ada\"`)

	stdout, _, err = runCLI(t, "put", srv.URL+"/users/1", "-d", "plain text")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"method": "PUT"`)
	assert.Contains(t, stdout, `"body": "plain text"`)
	assert.Contains(t, stdout, `"type": ""`)

	stdout, _, err = runCLI(t, "delete", srv.URL+"/users/1")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"method": "DELETE"`)
}

func TestBodyCommands_InvalidJSON(t *testing.T) {
	_, _, err := runCLI(t, "post", "http://example.com", "-j", "{nope")
	assert.ErrorContains(t, err, "not valid JSON")

	_, _, err = runCLI(t, "post", "http://example.com", "-j", "{}", "-d", "x")
	assert.Error(t, err)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "collection.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
