package http

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wesleyorama2/rawlunge/internal/errors"
	core "github.com/wesleyorama2/rawlunge/internal/http"
)

type (
	// Client sends requests over a fresh connection per call.
	Client       = core.Client
	// ClientOption configures a Client.
	ClientOption = core.ClientOption
	// Request is an outgoing HTTP/1.x request.
	Request      = core.Request
	// Response is a fully read HTTP/1.x response.
	Response     = core.Response
	// Header is an ordered, case-insensitive header collection.
	Header       = core.Header
	// TimingInfo breaks a call down by phase.
	TimingInfo   = core.TimingInfo
	// Version is the protocol version of a request or response.
	Version      = core.Version
	// Logger receives exchange diagnostics.
	Logger       = core.Logger
	// Level is the severity of a diagnostic.
	Level        = core.Level
	// Error is the error type returned by every operation.
	Error        = errors.Error
)

// Protocol versions.
const (
	HTTP10 = core.HTTP10
	HTTP11 = core.HTTP11
)

// Sentinels for errors.Is. Matching is by error kind.
var (
	ErrFormat      = errors.ErrFormat
	ErrParse       = errors.ErrParse
	ErrUnsupported = errors.ErrUnsupported
	ErrTransport   = errors.ErrTransport
	ErrDNS         = errors.ErrDNS
	ErrConnection  = errors.ErrConnection
	ErrTLS         = errors.ErrTLS
	ErrValidation  = errors.ErrValidation
)

// Constructors and options, re-exported unchanged.
var (
	NewClient               = core.NewClient
	NewRequest              = core.NewRequest
	NewHeader               = core.NewHeader
	WithTimeout             = core.WithTimeout
	WithHeader              = core.WithHeader
	WithClientLogger        = core.WithClientLogger
	WithInsecureSkipVerify  = core.WithInsecureSkipVerify
	WithResponseHeaderLimit = core.WithResponseHeaderLimit
	IsTimeout               = errors.IsTimeout
	IsCanceled              = errors.IsCanceled
)

// StatusError is returned by PostJSON when the server answers with a
// status outside 2xx.
type StatusError struct {
	Response *Response
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %s", e.Response.Status())
}

// PostJSON encodes payload as JSON, POSTs it to rawURL and decodes a 2xx
// response body into out. out may be nil to discard the body. The response
// is returned in every case where one was read.
func PostJSON(ctx context.Context, rawURL string, payload, out interface{}, opts ...ClientOption) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.NewFormatError("payload is not JSON encodable", err)
	}

	req, err := NewRequest("POST", rawURL)
	if err != nil {
		return nil, err
	}
	req.WithHeader("Content-Type", "application/json").
		WithHeader("Accept", "application/json").
		WithBody(body)

	resp, err := NewClient(opts...).Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return resp, &StatusError{Response: resp}
	}

	if out != nil && len(resp.Body) > 0 {
		if err := resp.GetBodyAsJSON(out); err != nil {
			return resp, errors.NewParseError("response body is not valid JSON", err)
		}
	}
	return resp, nil
}
