// Package conn establishes the byte streams HTTP exchanges run over: it maps
// a URL to host and port, resolves the host, dials TCP and wraps the
// connection in TLS when the scheme asks for it.
package conn

import (
	"bufio"
	"context"
	"crypto/tls"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/idna"

	"github.com/wesleyorama2/rawlunge/internal/errors"
)

const defaultDialTimeout = 10 * time.Second

// Trace holds optional hooks for the connection phases.
type Trace struct {
	DNSStart     func(host string)
	DNSDone      func(addrs []net.IPAddr, err error)
	ConnectStart func(addr string)
	ConnectDone  func(addr string, err error)
	TLSStart     func()
	TLSDone      func(state tls.ConnectionState, err error)
}

// Options controls how Dial establishes a connection.
type Options struct {
	// Timeout bounds DNS, TCP connect and the TLS handshake. Zero means 10s.
	Timeout time.Duration
	// InsecureSkipVerify disables certificate verification.
	InsecureSkipVerify bool
	// TLSConfig, when set, is cloned and used instead of the default config.
	TLSConfig *tls.Config
	// Resolver defaults to net.DefaultResolver.
	Resolver *net.Resolver
	// DialContext replaces the TCP dialer; it receives a resolved ip:port.
	DialContext func(ctx context.Context, network, addr string) (net.Conn, error)
	Trace       *Trace
}

// Target is the address a URL resolves to.
type Target struct {
	Scheme string
	Host   string
	Port   int
	TLS    bool
}

// Address returns host:port.
func (t Target) Address() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

// ResolveTarget extracts scheme, host and port from u. https and wss use
// TLS; http and ws do not. A missing port defaults to 80 or 443.
func ResolveTarget(u *url.URL) (Target, error) {
	if u == nil || u.Host == "" {
		return Target{}, errors.NewValidationError("no authority found in URI")
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme == "" {
		return Target{}, errors.NewValidationError("no scheme found in URI")
	}

	var defaultPort int
	var useTLS bool
	switch scheme {
	case "http", "ws":
		defaultPort = 80
	case "https", "wss":
		defaultPort, useTLS = 443, true
	default:
		return Target{}, errors.NewValidationError("unsupported URL scheme " + strconv.Quote(u.Scheme))
	}

	host := u.Hostname()
	if net.ParseIP(host) == nil {
		ascii, err := idna.Lookup.ToASCII(host)
		if err != nil || ascii == "" {
			return Target{}, errors.NewValidationError("invalid host " + strconv.Quote(host))
		}
		host = ascii
	}

	port := defaultPort
	if p := u.Port(); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n <= 0 || n > 65535 {
			return Target{}, errors.NewValidationError("invalid port " + strconv.Quote(p))
		}
		port = n
	}

	return Target{Scheme: scheme, Host: host, Port: port, TLS: useTLS}, nil
}

// Conn is an established connection. Writes are buffered until Flush.
type Conn struct {
	net.Conn
	w         *bufio.Writer
	encrypted bool
	target    Target
}

// NewConn wraps an existing connection. It is used for plaintext streams
// that were set up elsewhere, such as in tests.
func NewConn(c net.Conn, encrypted bool) *Conn {
	return &Conn{Conn: c, w: bufio.NewWriter(c), encrypted: encrypted}
}

// Write buffers p; it returns an error if a previous flush failed.
func (c *Conn) Write(p []byte) (int, error) {
	return c.w.Write(p)
}

// Flush writes any buffered bytes to the connection.
func (c *Conn) Flush() error {
	return c.w.Flush()
}

// Encrypted reports whether the connection is wrapped in TLS.
func (c *Conn) Encrypted() bool {
	return c.encrypted
}

// Target returns the address the connection was dialed for.
func (c *Conn) Target() Target {
	return c.target
}

// Dial connects to the host named by u.
func Dial(ctx context.Context, u *url.URL, opts Options) (*Conn, error) {
	target, err := ResolveTarget(u)
	if err != nil {
		return nil, err
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	trace := opts.Trace
	if trace == nil {
		trace = &Trace{}
	}

	addr, err := resolve(ctx, target, opts.Resolver, trace)
	if err != nil {
		return nil, err
	}

	raw, err := dialTCP(ctx, addr, opts, trace)
	if err != nil {
		return nil, errors.NewConnectionError(target.Host, target.Port, err)
	}

	if !target.TLS {
		c := NewConn(raw, false)
		c.target = target
		return c, nil
	}

	tlsConn, err := handshake(ctx, raw, target, opts, trace)
	if err != nil {
		raw.Close()
		return nil, errors.NewTLSError(target.Host, target.Port, err)
	}
	c := NewConn(tlsConn, true)
	c.target = target
	return c, nil
}

func resolve(ctx context.Context, target Target, resolver *net.Resolver, trace *Trace) (string, error) {
	if ip := net.ParseIP(target.Host); ip != nil {
		return target.Address(), nil
	}
	if resolver == nil {
		resolver = net.DefaultResolver
	}

	if trace.DNSStart != nil {
		trace.DNSStart(target.Host)
	}
	addrs, err := resolver.LookupIPAddr(ctx, target.Host)
	if trace.DNSDone != nil {
		trace.DNSDone(addrs, err)
	}
	if err != nil {
		return "", errors.NewDNSError(target.Host, err)
	}
	if len(addrs) == 0 {
		return "", errors.NewDNSError(target.Host, errors.NewValidationError("no IP addresses found"))
	}

	return net.JoinHostPort(addrs[0].IP.String(), strconv.Itoa(target.Port)), nil
}

func dialTCP(ctx context.Context, addr string, opts Options, trace *Trace) (net.Conn, error) {
	if trace.ConnectStart != nil {
		trace.ConnectStart(addr)
	}
	dial := opts.DialContext
	if dial == nil {
		dial = (&net.Dialer{}).DialContext
	}
	c, err := dial(ctx, "tcp", addr)
	if trace.ConnectDone != nil {
		trace.ConnectDone(addr, err)
	}
	return c, err
}

func handshake(ctx context.Context, raw net.Conn, target Target, opts Options, trace *Trace) (*tls.Conn, error) {
	var cfg *tls.Config
	if opts.TLSConfig != nil {
		cfg = opts.TLSConfig.Clone()
	} else {
		cfg = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	if opts.InsecureSkipVerify {
		cfg.InsecureSkipVerify = true
	}
	if cfg.ServerName == "" && net.ParseIP(target.Host) == nil {
		cfg.ServerName = target.Host
	}
	if len(cfg.NextProtos) == 0 {
		cfg.NextProtos = []string{"http/1.1"}
	}

	if trace.TLSStart != nil {
		trace.TLSStart()
	}
	tlsConn := tls.Client(raw, cfg)
	err := tlsConn.HandshakeContext(ctx)
	if trace.TLSDone != nil {
		trace.TLSDone(tlsConn.ConnectionState(), err)
	}
	if err != nil {
		return nil, err
	}
	return tlsConn, nil
}
