package http

import (
	"context"
	"crypto/tls"
	"net"
	"strconv"
	"time"

	"github.com/wesleyorama2/rawlunge/internal/conn"
)

// Client sends requests over a fresh connection per call. It holds only
// configuration and is safe for concurrent use.
type Client struct {
	timeout        time.Duration
	headers        Header
	logger         Logger
	dialOptions    conn.Options
	maxHeaderBytes int
}

// ClientOption is a function that configures a Client
type ClientOption func(*Client)

// NewClient creates a new HTTP client with the given options
func NewClient(options ...ClientOption) *Client {
	client := &Client{
		timeout:        30 * time.Second,
		logger:         NopLogger{},
		maxHeaderBytes: DefaultMaxHeaderBytes,
	}

	// Apply options
	for _, option := range options {
		option(client)
	}

	return client
}

// WithTimeout bounds the whole exchange, connection setup included
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHeader adds a default header; headers already on the request win
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.headers.Add(key, value)
	}
}

// WithClientLogger sets the diagnostic hook used for every exchange
func WithClientLogger(l Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithInsecureSkipVerify disables TLS certificate verification.
// WARNING: This should only be used for testing purposes.
func WithInsecureSkipVerify() ClientOption {
	return func(c *Client) {
		c.dialOptions.InsecureSkipVerify = true
	}
}

// WithDialOptions replaces the connection options
func WithDialOptions(opts conn.Options) ClientOption {
	return func(c *Client) {
		insecure := c.dialOptions.InsecureSkipVerify
		c.dialOptions = opts
		c.dialOptions.InsecureSkipVerify = opts.InsecureSkipVerify || insecure
	}
}

// WithResponseHeaderLimit bounds the size of response header blocks
func WithResponseHeaderLimit(n int) ClientOption {
	return func(c *Client) {
		c.maxHeaderBytes = n
	}
}

// Prepare applies the client's default headers to req and fills in host and
// content-length when the caller did not set them.
func (c *Client) Prepare(req *Request) {
	for _, f := range c.headers.fields {
		if !req.Header.Has(f.Name) {
			req.Header.Add(f.Name, f.Value)
		}
	}
	if !req.Header.Has("host") && req.URL != nil {
		req.Header.Set("host", req.URL.Host)
	}
	if req.Body != nil && !req.Header.Has("content-length") && !req.Header.Has("transfer-encoding") {
		req.Header.Set("content-length", strconv.Itoa(len(req.Body)))
	}
}

// Do dials the request's host, runs one exchange and closes the connection.
// The response carries detailed timing information.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	c.Prepare(req)

	// Initialize timing info
	timing := TimingInfo{
		StartTime: time.Now(),
	}
	var dnsStart, connectStart, tlsStart, contentStart time.Time
	lastPhaseEnd := timing.StartTime

	dialOptions := c.dialOptions
	dialOptions.Trace = &conn.Trace{
		DNSStart: func(string) {
			dnsStart = time.Now()
		},
		DNSDone: func([]net.IPAddr, error) {
			lastPhaseEnd = time.Now()
			timing.DNSLookupTime = lastPhaseEnd.Sub(dnsStart)
		},
		ConnectStart: func(string) {
			connectStart = time.Now()
		},
		ConnectDone: func(_ string, err error) {
			if err == nil {
				lastPhaseEnd = time.Now()
				timing.TCPConnectTime = lastPhaseEnd.Sub(connectStart)
			}
		},
		TLSStart: func() {
			tlsStart = time.Now()
		},
		TLSDone: func(_ tls.ConnectionState, err error) {
			if err == nil {
				lastPhaseEnd = time.Now()
				timing.TLSHandshakeTime = lastPhaseEnd.Sub(tlsStart)
			}
		},
	}

	stream, err := conn.Dial(ctx, req.URL, dialOptions)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	trace := &ExchangeTrace{
		GotFirstResponseByte: func() {
			contentStart = time.Now()
			// Time to first byte is measured from the end of the last connection phase
			timing.TimeToFirstByte = contentStart.Sub(lastPhaseEnd)
		},
	}

	resp, err := Exchange(ctx, stream, req,
		WithLogger(c.logger),
		WithMaxHeaderBytes(c.maxHeaderBytes),
		WithTrace(trace),
	)
	if err != nil {
		return nil, err
	}

	if !contentStart.IsZero() {
		timing.ContentTransferTime = time.Since(contentStart)
	}
	timing.TotalTime = time.Since(timing.StartTime)
	resp.Timing = timing

	return resp, nil
}
