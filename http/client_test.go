package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/rawlunge/http"
)

type greeting struct {
	Message string `json:"message"`
	Echo    string `json:"echo"`
}

func jsonServer(t *testing.T, status int, raw string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if raw != "" {
			_, _ = w.Write([]byte(raw))
			return
		}
		var in map[string]string
		_ = json.Unmarshal(body, &in)
		_ = json.NewEncoder(w).Encode(greeting{
			Message: r.Method + " " + r.Header.Get("Content-Type"),
			Echo:    in["name"],
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPostJSON(t *testing.T) {
	srv := jsonServer(t, nethttp.StatusOK, "")

	var out greeting
	resp, err := http.PostJSON(context.Background(), srv.URL+"/hello", map[string]string{"name": "Ada"}, &out,
		http.WithTimeout(5*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, http.HTTP11, resp.Version)
	assert.Equal(t, "POST application/json", out.Message)
	assert.Equal(t, "Ada", out.Echo)
}

func TestPostJSON_NilOut(t *testing.T) {
	srv := jsonServer(t, nethttp.StatusCreated, "")

	resp, err := http.PostJSON(context.Background(), srv.URL, struct{}{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)
}

func TestPostJSON_StatusError(t *testing.T) {
	srv := jsonServer(t, nethttp.StatusNotFound, `{"error":"missing"}`)

	var out greeting
	resp, err := http.PostJSON(context.Background(), srv.URL, map[string]int{"id": 1}, &out)
	require.Error(t, err)

	var statusErr *http.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, 404, statusErr.Response.StatusCode)
	assert.Equal(t, "unexpected status 404 Not Found", err.Error())
	assert.Same(t, resp, statusErr.Response)
	assert.Empty(t, out.Message)
}

func TestPostJSON_Errors(t *testing.T) {
	_, err := http.PostJSON(context.Background(), "http://127.0.0.1:1", make(chan int), nil)
	assert.True(t, errors.Is(err, http.ErrFormat), "%v", err)

	_, err = http.PostJSON(context.Background(), "not a url", nil, nil)
	assert.True(t, errors.Is(err, http.ErrValidation), "%v", err)

	srv := jsonServer(t, nethttp.StatusOK, `not json`)
	var out greeting
	resp, err := http.PostJSON(context.Background(), srv.URL, nil, &out)
	assert.True(t, errors.Is(err, http.ErrParse), "%v", err)
	require.NotNil(t, resp)
	assert.Equal(t, "not json", resp.GetBodyAsString())
}

func TestClientFacade(t *testing.T) {
	srv := jsonServer(t, nethttp.StatusOK, `{"message":"success"}`)

	req, err := http.NewRequest("GET", srv.URL)
	require.NoError(t, err)
	resp, err := http.NewClient(http.WithHeader("X-Test", "1")).Do(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp.IsSuccess())
	assert.Equal(t, "application/json", resp.GetHeader("content-type"))
	assert.Greater(t, resp.Timing.TotalTime, time.Duration(0))
}
