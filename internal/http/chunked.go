package http

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/wesleyorama2/rawlunge/internal/errors"
)

// ReadChunkedBody decodes a chunked transfer-coding into a flat body. Chunk
// extensions after ';' are ignored. After the zero-size chunk the trailer
// section is read up to its blank line, or until the stream closes.
func ReadChunkedBody(r *bufio.Reader, logger Logger) ([]byte, Header, error) {
	var body bytes.Buffer
	for {
		size, err := readChunkSize(r)
		if err != nil {
			return nil, Header{}, err
		}
		if size == 0 {
			break
		}

		if _, err := io.CopyN(&body, r, size); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, Header{}, errors.NewTransportError("reading chunk body", err)
		}

		var crlf [2]byte
		if _, err := io.ReadFull(r, crlf[:]); err != nil {
			return nil, Header{}, errors.NewTransportError("reading chunk CRLF", err)
		}
		if crlf[0] != '\r' || crlf[1] != '\n' {
			return nil, Header{}, errors.NewParseError("invalid chunked encoding", nil)
		}
	}

	trailer, err := ReadHeaderBlock(r, 0, logger)
	if err != nil {
		return nil, Header{}, err
	}
	return body.Bytes(), trailer, nil
}

func readChunkSize(r *bufio.Reader) (int64, error) {
	line, err := r.ReadString('\n')
	if err != nil && !isEOF(err) {
		return 0, errors.NewTransportError("reading chunk size", err)
	}
	if line == "" {
		return 0, errors.NewTransportError("reading chunk size", io.ErrUnexpectedEOF)
	}

	if i := strings.IndexByte(line, ';'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)

	size, perr := strconv.ParseUint(line, 16, 63)
	if perr != nil {
		return 0, errors.NewParseError("invalid chunk size "+quote(line), perr)
	}
	return int64(size), nil
}
