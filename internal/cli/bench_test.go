package cli

import (
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBenchCommand(t *testing.T) {
	var hits int64
	srv := echoServer(t, &hits)

	stdout, _, err := runCLI(t, "bench", srv.URL, "-n", "20", "--vus", "4", "--no-color")
	require.NoError(t, err)
	assert.Equal(t, int64(20), atomic.LoadInt64(&hits))
	assert.Contains(t, stdout, "BENCHMARK: "+srv.URL)
	assert.Contains(t, stdout, "Requests:  20")
	assert.Contains(t, stdout, "Errors:    0")
	assert.Contains(t, stdout, "200: 20")
	assert.Contains(t, stdout, "p99")
}

func TestBenchCommand_JSON(t *testing.T) {
	var hits int64
	srv := echoServer(t, &hits)

	stdout, _, err := runCLI(t, "bench", srv.URL, "-n", "5", "--vus", "10", "-X", "post", "-d", "x", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, int64(5), atomic.LoadInt64(&hits))

	var doc struct {
		Requests    int64          `json:"requests"`
		Errors      int64          `json:"errors"`
		StatusCodes map[string]int `json:"statusCodes"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc), stdout)
	assert.Equal(t, int64(5), doc.Requests)
	assert.Equal(t, int64(0), doc.Errors)
	assert.Equal(t, 5, doc.StatusCodes["200"])
}

func TestBenchCommand_Rate(t *testing.T) {
	var hits int64
	srv := echoServer(t, &hits)

	start := time.Now()
	_, _, err := runCLI(t, "bench", srv.URL, "-n", "5", "--vus", "5", "--rate", "100")
	require.NoError(t, err)
	assert.Equal(t, int64(5), atomic.LoadInt64(&hits))
	// Five slots 10ms apart span at least 40ms
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)

	_, _, err = runCLI(t, "bench", srv.URL, "--rate=-1")
	assert.ErrorContains(t, err, "--rate cannot be negative")
}

func TestBenchCommand_Errors(t *testing.T) {
	srv := echoServer(t, nil)
	url := srv.URL
	srv.Close()

	stdout, _, err := runCLI(t, "bench", url, "-n", "3", "--vus", "1", "-t", "1s", "--no-color")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Errors:    3")

	_, _, err = runCLI(t, "bench", url, "-n", "0")
	assert.ErrorContains(t, err, "--requests must be at least 1")

	_, _, err = runCLI(t, "bench", url, "--vus", "0")
	assert.ErrorContains(t, err, "--vus must be at least 1")
}
