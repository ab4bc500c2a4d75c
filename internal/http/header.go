package http

import (
	"bufio"
	"strings"

	"golang.org/x/net/http/httpguts"

	"github.com/wesleyorama2/rawlunge/internal/errors"
)

// DefaultMaxHeaderBytes bounds the total size of a response header block.
const DefaultMaxHeaderBytes = 64 * 1024

// Field is a single header name/value pair. Names are stored lowercase.
type Field struct {
	Name  string
	Value string
}

// Header is an ordered collection of header fields with case-insensitive
// names. The zero value is an empty collection ready to use.
type Header struct {
	fields []Field
}

// NewHeader builds a Header from alternating name/value pairs.
func NewHeader(pairs ...string) Header {
	var h Header
	for i := 0; i+1 < len(pairs); i += 2 {
		h.Add(pairs[i], pairs[i+1])
	}
	return h
}

// Add appends a field, keeping any existing fields with the same name.
func (h *Header) Add(name, value string) {
	h.fields = append(h.fields, Field{Name: strings.ToLower(name), Value: value})
}

// Set replaces every field named name with a single field holding value.
// The replacement keeps the position of the first existing field.
func (h *Header) Set(name, value string) {
	name = strings.ToLower(name)
	for i := range h.fields {
		if h.fields[i].Name == name {
			h.fields[i].Value = value
			h.removeFrom(i+1, name)
			return
		}
	}
	h.fields = append(h.fields, Field{Name: name, Value: value})
}

// Del removes every field named name.
func (h *Header) Del(name string) {
	h.removeFrom(0, strings.ToLower(name))
}

func (h *Header) removeFrom(start int, name string) {
	kept := h.fields[:start]
	for _, f := range h.fields[start:] {
		if f.Name != name {
			kept = append(kept, f)
		}
	}
	h.fields = kept
}

// Get returns the first value for name and whether it was present.
func (h Header) Get(name string) (string, bool) {
	name = strings.ToLower(name)
	for _, f := range h.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Value returns the first value for name, or "".
func (h Header) Value(name string) string {
	v, _ := h.Get(name)
	return v
}

// Has reports whether a field named name exists.
func (h Header) Has(name string) bool {
	_, ok := h.Get(name)
	return ok
}

// Values returns all values for name in insertion order.
func (h Header) Values(name string) []string {
	name = strings.ToLower(name)
	var out []string
	for _, f := range h.fields {
		if f.Name == name {
			out = append(out, f.Value)
		}
	}
	return out
}

// Fields returns a copy of the fields in insertion order.
func (h Header) Fields() []Field {
	out := make([]Field, len(h.fields))
	copy(out, h.fields)
	return out
}

// Len returns the number of fields.
func (h Header) Len() int {
	return len(h.fields)
}

// Clone returns an independent copy.
func (h Header) Clone() Header {
	return Header{fields: h.Fields()}
}

// Map flattens the collection into a name to first-value map.
func (h Header) Map() map[string]string {
	out := make(map[string]string, len(h.fields))
	for _, f := range h.fields {
		if _, ok := out[f.Name]; !ok {
			out[f.Name] = f.Value
		}
	}
	return out
}

// ReadHeaderBlock reads header lines until a line that is exactly "\r\n" or
// until the stream yields no more bytes. Lines without ": " are skipped with
// a warning. Duplicate names overwrite earlier values. maxBytes <= 0 means
// DefaultMaxHeaderBytes.
func ReadHeaderBlock(r *bufio.Reader, maxBytes int, logger Logger) (Header, error) {
	if logger == nil {
		logger = NopLogger{}
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxHeaderBytes
	}

	var h Header
	total := 0
	for {
		line, err := r.ReadString('\n')
		if err != nil && !isEOF(err) {
			return Header{}, errors.NewTransportError("reading headers", err)
		}
		if line == "" || line == "\r\n" {
			return h, nil
		}

		total += len(line)
		if total > maxBytes {
			return Header{}, errors.NewParseError("headers exceed maximum size", nil)
		}

		name, value, ok := strings.Cut(line, ": ")
		if !ok {
			logger.Logf(LevelWarn, "failed to parse header line: %q", line)
		} else {
			name = strings.ToLower(name)
			value = strings.TrimRight(value, "\r\n")
			if !httpguts.ValidHeaderFieldName(name) {
				return Header{}, errors.NewParseError("invalid header name "+quote(name), nil)
			}
			if !httpguts.ValidHeaderFieldValue(value) {
				return Header{}, errors.NewParseError("invalid header value for "+name, nil)
			}
			h.Set(name, value)
		}

		if err != nil {
			// Stream closed after a final unterminated line.
			return h, nil
		}
	}
}
