// Package http is the public face of the rawlunge HTTP/1.x client. It
// writes requests directly onto a TCP or TLS connection and parses the
// response without net/http.
//
// This package is designed for programmatic use and provides:
//   - A configurable client with functional options
//   - Detailed timing information (DNS, TCP, TLS, TTFB)
//   - A fluent request builder
//   - PostJSON, a one-call JSON request/response helper
//
// Basic Usage:
//
//	client := http.NewClient(
//	    http.WithTimeout(30*time.Second),
//	    http.WithHeader("Authorization", "Bearer token"),
//	)
//
//	req, err := http.NewRequest("GET", "https://api.example.com/users")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	req.WithQueryParam("limit", "10")
//
//	resp, err := client.Do(context.Background(), req)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Status: %d\n", resp.StatusCode)
//	fmt.Printf("TTFB: %v\n", resp.Timing.TimeToFirstByte)
//
// JSON Example:
//
//	var token struct {
//	    AccessToken string `json:"access_token"`
//	}
//	_, err := http.PostJSON(ctx, "https://auth.example.com/token",
//	    map[string]string{"grant_type": "client_credentials"}, &token)
//
// A non-2xx answer from PostJSON is returned as a *StatusError that still
// carries the response. Failures are *Error values; match them with
// errors.Is against ErrParse, ErrTransport, ErrConnection and the other
// sentinels.
//
// Every call opens a new connection and closes it afterwards. There is no
// pooling, no redirect following and no automatic decompression.
package http
