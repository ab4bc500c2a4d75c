package http

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/wesleyorama2/rawlunge/internal/errors"
)

// Version identifies an HTTP protocol version.
type Version int

const (
	// VersionUnknown is the zero value; it is written as HTTP/1.1.
	VersionUnknown Version = iota
	HTTP10
	HTTP11
	HTTP2
	HTTP3
)

// String returns the token used on a request line. Unknown versions fall
// back to "HTTP/1.1".
func (v Version) String() string {
	switch v {
	case HTTP10:
		return "HTTP/1.0"
	case HTTP11:
		return "HTTP/1.1"
	case HTTP2:
		return "HTTP/2.0"
	case HTTP3:
		return "HTTP/3.0"
	default:
		return "HTTP/1.1"
	}
}

// ParseResponseVersion maps a status line version token to a Version.
// HTTP/3.0 is not accepted on responses.
func ParseResponseVersion(token string) (Version, bool) {
	switch token {
	case "HTTP/1.0":
		return HTTP10, true
	case "HTTP/1.1":
		return HTTP11, true
	case "HTTP/2.0":
		return HTTP2, true
	default:
		return VersionUnknown, false
	}
}

// StatusLine is the parsed first line of a response.
type StatusLine struct {
	Version    Version
	StatusCode int
	Reason     string
}

// ReadStatusLine reads and parses one status line from r.
func ReadStatusLine(r *bufio.Reader) (StatusLine, error) {
	line, err := r.ReadString('\n')
	if err != nil && !isEOF(err) {
		return StatusLine{}, errors.NewTransportError("reading status line", err)
	}
	return ParseStatusLine(line)
}

// ParseStatusLine splits line on whitespace and validates the version token
// and status code. The line terminator is optional.
func ParseStatusLine(line string) (StatusLine, error) {
	parts := strings.Fields(line)
	if len(parts) < 2 {
		return StatusLine{}, errors.NewParseError("malformed status line", nil)
	}

	version, ok := ParseResponseVersion(parts[0])
	if !ok {
		return StatusLine{}, errors.NewParseError("unsupported version "+quote(parts[0]), nil)
	}

	raw, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil {
		return StatusLine{}, errors.NewParseError("invalid status code "+quote(parts[1]), err)
	}
	code := int(raw)
	if !ValidStatusCode(code) {
		return StatusLine{}, errors.NewParseError("invalid status code "+quote(parts[1]), nil)
	}

	return StatusLine{
		Version:    version,
		StatusCode: code,
		Reason:     strings.Join(parts[2:], " "),
	}, nil
}

// ValidStatusCode reports whether code is a three-digit status code.
func ValidStatusCode(code int) bool {
	return code >= 100 && code <= 999
}

func isEOF(err error) bool {
	return err == io.EOF
}

func quote(s string) string {
	return strconv.Quote(s)
}
