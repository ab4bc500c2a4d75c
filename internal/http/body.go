package http

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/wesleyorama2/rawlunge/internal/errors"
)

// closeDelimitedHint is the initial capacity reserved for a body that ends
// when the server closes the connection. It is not a limit.
const closeDelimitedHint = 8 * 1024 * 1024

// Framing is the strategy used to find the end of a response body.
type Framing int

const (
	FramingContentLength Framing = iota
	FramingChunked
	FramingUpgrade
	FramingClose
)

func (f Framing) String() string {
	switch f {
	case FramingContentLength:
		return "content-length"
	case FramingChunked:
		return "chunked"
	case FramingUpgrade:
		return "upgrade"
	case FramingClose:
		return "close-delimited"
	default:
		return "unknown"
	}
}

// SelectFraming picks the body strategy from the response header. The first
// matching rule wins: content-length, then transfer-encoding, then a
// connection upgrade, then read until close. A transfer-encoding other than
// "chunked" is reported as unsupported.
func SelectFraming(h Header) (Framing, error) {
	if h.Has("content-length") {
		return FramingContentLength, nil
	}
	if te, ok := h.Get("transfer-encoding"); ok {
		if te == "chunked" {
			return FramingChunked, nil
		}
		return 0, errors.NewUnsupportedError("transfer-encoding " + quote(te))
	}
	if c, ok := h.Get("connection"); ok && strings.EqualFold(c, "upgrade") {
		return FramingUpgrade, nil
	}
	return FramingClose, nil
}

// ReadBody reads the response body using the strategy chosen by
// SelectFraming. Trailers of a chunked body are returned separately.
func ReadBody(r *bufio.Reader, h Header, logger Logger) (body []byte, trailer Header, err error) {
	framing, err := SelectFraming(h)
	if err != nil {
		return nil, Header{}, err
	}
	return readFramed(r, framing, h, logger)
}

func readFramed(r *bufio.Reader, framing Framing, h Header, logger Logger) (body []byte, trailer Header, err error) {
	switch framing {
	case FramingContentLength:
		n, err := strconv.ParseUint(h.Value("content-length"), 10, 63)
		if err != nil {
			return nil, Header{}, errors.NewParseError("invalid content-length "+quote(h.Value("content-length")), err)
		}
		body, err = readFixedBody(r, int64(n))
		return body, Header{}, err
	case FramingChunked:
		return ReadChunkedBody(r, logger)
	case FramingUpgrade:
		return []byte{}, Header{}, nil
	default:
		body, err = readUntilClose(r)
		return body, Header{}, err
	}
}

func readFixedBody(r io.Reader, length int64) ([]byte, error) {
	var buf bytes.Buffer
	if length < closeDelimitedHint {
		buf.Grow(int(length))
	} else {
		buf.Grow(closeDelimitedHint)
	}
	if _, err := io.CopyN(&buf, r, length); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, errors.NewTransportError("reading fixed body", err)
	}
	return buf.Bytes(), nil
}

func readUntilClose(r io.Reader) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, closeDelimitedHint))
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, errors.NewTransportError("reading until close", err)
	}
	return buf.Bytes(), nil
}
