// Package errors provides the structured error kinds shared by the wire core
// and the connection layer.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind represents the category of error that occurred.
type Kind string

const (
	// KindFormat means a request could not be serialized
	KindFormat Kind = "format"
	// KindParse means response bytes did not follow the HTTP/1.x grammar
	KindParse Kind = "parse"
	// KindUnsupported means the response uses a feature that is not implemented
	KindUnsupported Kind = "unsupported"
	// KindTransport means a read, write or flush on the stream failed
	KindTransport Kind = "transport"
	// KindDNS means host resolution failed
	KindDNS Kind = "dns"
	// KindConnection means the TCP connection could not be established
	KindConnection Kind = "connection"
	// KindTLS means the TLS handshake failed
	KindTLS Kind = "tls"
	// KindValidation means the target could not be turned into an address
	KindValidation Kind = "validation"
)

// Sentinels for errors.Is. Matching is by Kind only.
var (
	ErrFormat      = &Error{Kind: KindFormat}
	ErrParse       = &Error{Kind: KindParse}
	ErrUnsupported = &Error{Kind: KindUnsupported}
	ErrTransport   = &Error{Kind: KindTransport}
	ErrDNS         = &Error{Kind: KindDNS}
	ErrConnection  = &Error{Kind: KindConnection}
	ErrTLS         = &Error{Kind: KindTLS}
	ErrValidation  = &Error{Kind: KindValidation}
)

// Error is a categorized error with an optional cause.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Cause   error  `json:"cause,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// NewFormatError creates a serialization error.
func NewFormatError(message string, cause error) *Error {
	return &Error{Kind: KindFormat, Message: message, Cause: cause}
}

// NewParseError creates a response grammar error.
func NewParseError(message string, cause error) *Error {
	return &Error{Kind: KindParse, Message: message, Cause: cause}
}

// NewUnsupportedError creates an error for a feature that is deliberately
// not implemented.
func NewUnsupportedError(feature string) *Error {
	return &Error{Kind: KindUnsupported, Message: fmt.Sprintf("unsupported %s", feature)}
}

// NewTransportError creates an I/O error for the named operation.
func NewTransportError(operation string, cause error) *Error {
	return &Error{Kind: KindTransport, Message: fmt.Sprintf("I/O error during %s", operation), Cause: cause}
}

// NewDNSError creates a DNS resolution error.
func NewDNSError(host string, cause error) *Error {
	return &Error{Kind: KindDNS, Message: fmt.Sprintf("DNS lookup failed for host %s", host), Cause: cause}
}

// NewConnectionError creates a connection error.
func NewConnectionError(host string, port int, cause error) *Error {
	return &Error{Kind: KindConnection, Message: fmt.Sprintf("failed to connect to %s:%d", host, port), Cause: cause}
}

// NewTLSError creates a TLS handshake error.
func NewTLSError(host string, port int, cause error) *Error {
	return &Error{Kind: KindTLS, Message: fmt.Sprintf("TLS handshake failed for %s:%d", host, port), Cause: cause}
}

// NewValidationError creates a validation error.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// KindOf returns the Kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsTimeout reports whether err comes from a deadline, either a network
// timeout or an expired context.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

// IsCanceled reports whether err is due to context cancellation.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
