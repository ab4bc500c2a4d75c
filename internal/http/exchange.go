package http

import (
	"bufio"
	"context"
	"io"
	"time"

	"github.com/wesleyorama2/rawlunge/internal/errors"
)

// Stream is the byte stream an exchange runs over. Writes may be buffered
// until Flush.
type Stream interface {
	io.Reader
	io.Writer
	Flush() error
}

// deadliner is implemented by streams that can have pending I/O interrupted.
type deadliner interface {
	SetDeadline(t time.Time) error
}

// ExchangeTrace holds optional hooks called as an exchange progresses.
type ExchangeTrace struct {
	WroteRequest         func()
	GotFirstResponseByte func()
	GotHeaders           func(status StatusLine, header Header)
	ReadBody             func(framing Framing, n int)
}

type exchangeConfig struct {
	logger         Logger
	maxHeaderBytes int
	trace          *ExchangeTrace
}

// ExchangeOption configures a single exchange
type ExchangeOption func(*exchangeConfig)

// WithLogger sets the diagnostic hook for the exchange
func WithLogger(l Logger) ExchangeOption {
	return func(c *exchangeConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxHeaderBytes bounds the size of the response header block
func WithMaxHeaderBytes(n int) ExchangeOption {
	return func(c *exchangeConfig) {
		c.maxHeaderBytes = n
	}
}

// WithTrace installs progress hooks
func WithTrace(t *ExchangeTrace) ExchangeOption {
	return func(c *exchangeConfig) {
		if t != nil {
			c.trace = t
		}
	}
}

// Exchange writes req to stream and reads one response back. The stream is
// borrowed for the call only; it is not closed. When ctx is done and the
// stream supports deadlines, pending I/O is interrupted and the context
// error is returned.
func Exchange(ctx context.Context, stream Stream, req *Request, opts ...ExchangeOption) (*Response, error) {
	cfg := exchangeConfig{logger: NopLogger{}, maxHeaderBytes: DefaultMaxHeaderBytes, trace: &ExchangeTrace{}}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.NewTransportError("starting exchange", err)
	}
	if d, ok := stream.(deadliner); ok {
		stop := context.AfterFunc(ctx, func() {
			d.SetDeadline(time.Unix(1, 0))
		})
		defer stop()
	}

	resp, err := exchange(stream, req, &cfg)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.NewTransportError("exchange interrupted", ctxErr)
		}
		return nil, err
	}
	return resp, nil
}

func exchange(stream Stream, req *Request, cfg *exchangeConfig) (*Response, error) {
	head, err := SerializeRequest(req)
	if err != nil {
		return nil, err
	}
	cfg.logger.Logf(LevelDebug, "serialized request: %q", head)

	if err := writeAndFlush(stream, head, "writing request head"); err != nil {
		return nil, err
	}
	if len(req.Body) > 0 {
		if err := writeAndFlush(stream, req.Body, "writing request body"); err != nil {
			return nil, err
		}
	}
	if cfg.trace.WroteRequest != nil {
		cfg.trace.WroteRequest()
	}

	br := bufio.NewReader(stream)
	if cfg.trace.GotFirstResponseByte != nil {
		if _, err := br.Peek(1); err == nil {
			cfg.trace.GotFirstResponseByte()
		}
	}

	status, err := ReadStatusLine(br)
	if err != nil {
		return nil, err
	}
	cfg.logger.Logf(LevelDebug, "status line: %s %d %s", status.Version, status.StatusCode, status.Reason)

	header, err := ReadHeaderBlock(br, cfg.maxHeaderBytes, cfg.logger)
	if err != nil {
		return nil, err
	}
	cfg.logger.Logf(LevelDebug, "response headers: %v", header.Fields())
	if cfg.trace.GotHeaders != nil {
		cfg.trace.GotHeaders(status, header)
	}

	framing, err := SelectFraming(header)
	if err != nil {
		return nil, err
	}
	body, trailer, err := readFramed(br, framing, header, cfg.logger)
	if err != nil {
		return nil, err
	}
	cfg.logger.Logf(LevelDebug, "decoded %s body: %d bytes", framing, len(body))
	if cfg.trace.ReadBody != nil {
		cfg.trace.ReadBody(framing, len(body))
	}

	return &Response{
		Version:    status.Version,
		StatusCode: status.StatusCode,
		Reason:     status.Reason,
		Header:     header,
		Trailer:    trailer,
		Body:       body,
	}, nil
}

func writeAndFlush(stream Stream, p []byte, operation string) error {
	if _, err := stream.Write(p); err != nil {
		return errors.NewTransportError(operation, err)
	}
	if err := stream.Flush(); err != nil {
		return errors.NewTransportError(operation, err)
	}
	return nil
}
