package http

import (
	"bytes"
	"net/url"
	"strings"

	"golang.org/x/net/http/httpguts"

	"github.com/wesleyorama2/rawlunge/internal/errors"
)

// Request represents an outgoing HTTP/1.x request
type Request struct {
	Method  string
	URL     *url.URL
	Version Version
	Header  Header
	// Body is nil when absent. Only a non-empty body is written.
	Body []byte
}

// NewRequest creates a new HTTP/1.1 request for rawURL
func NewRequest(method, rawURL string) (*Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.NewValidationError("invalid URL " + quote(rawURL) + ": " + err.Error())
	}
	if u.Host == "" {
		return nil, errors.NewValidationError("no authority found in URL " + quote(rawURL))
	}
	return &Request{
		Method:  strings.ToUpper(method),
		URL:     u,
		Version: HTTP11,
	}, nil
}

// WithHeader appends a header to the request
func (r *Request) WithHeader(name, value string) *Request {
	r.Header.Add(name, value)
	return r
}

// WithQueryParam adds a query parameter to the request URL
func (r *Request) WithQueryParam(key, value string) *Request {
	query := r.URL.Query()
	query.Add(key, value)
	r.URL.RawQuery = query.Encode()
	return r
}

// WithBody sets the body of the request
func (r *Request) WithBody(body []byte) *Request {
	r.Body = body
	return r
}

// WithVersion sets the protocol version written on the request line
func (r *Request) WithVersion(v Version) *Request {
	r.Version = v
	return r
}

// Target returns the path-and-query written on the request line.
func (r *Request) Target() string {
	if r.URL == nil {
		return "/"
	}
	return r.URL.RequestURI()
}

// SerializeRequest renders the request line and header block, including the
// terminating blank line. The body is not included, and no framing headers
// are added.
func SerializeRequest(req *Request) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(req.Method)
	buf.WriteByte(' ')
	buf.WriteString(req.Target())
	buf.WriteByte(' ')
	buf.WriteString(req.Version.String())
	buf.WriteString("\r\n")

	for _, f := range req.Header.fields {
		if !httpguts.ValidHeaderFieldName(f.Name) {
			return nil, errors.NewFormatError("invalid header name "+quote(f.Name), nil)
		}
		if !visibleASCII(f.Value) {
			return nil, errors.NewFormatError("header value for "+f.Name+" is not visible ASCII", nil)
		}
		buf.WriteString(f.Name)
		buf.WriteString(": ")
		buf.WriteString(f.Value)
		buf.WriteString("\r\n")
	}

	buf.WriteString("\r\n")
	return buf.Bytes(), nil
}

// visibleASCII accepts HTAB and 0x20 through 0x7E.
func visibleASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\t' && (c < 0x20 || c > 0x7e) {
			return false
		}
	}
	return true
}
