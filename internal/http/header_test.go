package http

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rerrors "github.com/wesleyorama2/rawlunge/internal/errors"
)

type recordLogger struct {
	levels   []Level
	messages []string
}

func (r *recordLogger) Logf(level Level, format string, args ...interface{}) {
	r.levels = append(r.levels, level)
	r.messages = append(r.messages, fmt.Sprintf(format, args...))
}

func (r *recordLogger) count(level Level) int {
	n := 0
	for _, l := range r.levels {
		if l == level {
			n++
		}
	}
	return n
}

func readBlock(t *testing.T, raw string, logger Logger) (Header, *bufio.Reader, error) {
	t.Helper()
	r := bufio.NewReader(strings.NewReader(raw))
	h, err := ReadHeaderBlock(r, 0, logger)
	return h, r, err
}

func TestHeader_AddSetDel(t *testing.T) {
	var h Header
	h.Add("Accept", "text/html")
	h.Add("X-Trace", "1")
	h.Add("accept", "application/json")

	assert.Equal(t, []string{"text/html", "application/json"}, h.Values("ACCEPT"))
	assert.Equal(t, 3, h.Len())

	h.Set("Accept", "*/*")
	assert.Equal(t, []Field{{"accept", "*/*"}, {"x-trace", "1"}}, h.Fields())

	h.Del("x-TRACE")
	assert.False(t, h.Has("x-trace"))
	assert.Equal(t, 1, h.Len())

	h.Set("new", "v")
	assert.Equal(t, "v", h.Value("New"))
}

func TestHeader_CloneIsIndependent(t *testing.T) {
	h := NewHeader("a", "1", "b", "2")
	c := h.Clone()
	c.Set("a", "changed")

	assert.Equal(t, "1", h.Value("a"))
	assert.Equal(t, map[string]string{"a": "changed", "b": "2"}, c.Map())
}

func TestReadHeaderBlock_WellFormed(t *testing.T) {
	h, r, err := readBlock(t, "Content-Type: text/plain\r\nX-Num: 1\r\n\r\nBODY", nil)
	require.NoError(t, err)

	assert.Equal(t, []Field{{"content-type", "text/plain"}, {"x-num", "1"}}, h.Fields())

	rest, _ := r.ReadString('\n')
	assert.Equal(t, "BODY", rest, "reader must stop right after the blank line")
}

func TestReadHeaderBlock_SkipsMalformedLines(t *testing.T) {
	logger := &recordLogger{}
	h, _, err := readBlock(t, "garbage line\r\nNoSpace:value\r\nok: yes\r\n\r\n", logger)
	require.NoError(t, err)

	assert.Equal(t, []Field{{"ok", "yes"}}, h.Fields())
	assert.Equal(t, 2, logger.count(LevelWarn))
}

func TestReadHeaderBlock_LastWriteWins(t *testing.T) {
	h, _, err := readBlock(t, "Set-Cookie: a=1\r\nset-cookie: b=2\r\n\r\n", nil)
	require.NoError(t, err)

	assert.Equal(t, 1, h.Len())
	assert.Equal(t, "b=2", h.Value("set-cookie"))
}

func TestReadHeaderBlock_StopsAtEOF(t *testing.T) {
	h, _, err := readBlock(t, "a: 1\r\nb: 2", nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, h.Map())

	h, _, err = readBlock(t, "", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, h.Len())
}

func TestReadHeaderBlock_InvalidTokens(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"space in name", "bad name: x\r\n\r\n"},
		{"separator in name", "bad(name: x\r\n\r\n"},
		{"control in value", "a: x\x00y\r\n\r\n"},
		{"bare CR in value", "a: x\ry\r\n\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := readBlock(t, tt.raw, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, rerrors.ErrParse), "got %v", err)
		})
	}
}

func TestReadHeaderBlock_Idempotent(t *testing.T) {
	raw := "Date: Mon, 01 Jan 2024 00:00:00 GMT\r\nContent-Length: 12\r\nServer: test/1.0\r\nVary: Accept\r\n\r\n"

	first, _, err := readBlock(t, raw, nil)
	require.NoError(t, err)
	second, _, err := readBlock(t, raw, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestReadHeaderBlock_SizeLimit(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("a: 1\r\nb: 2\r\nc: 3\r\n\r\n"))
	_, err := ReadHeaderBlock(r, 10, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, rerrors.ErrParse))
}

func TestReadHeaderBlock_ValueWhitespace(t *testing.T) {
	h, _, err := readBlock(t, "a: padded  \r\nb: x: y\r\n\r\n", nil)
	require.NoError(t, err)

	assert.Equal(t, "padded  ", h.Value("a"))
	assert.Equal(t, "x: y", h.Value("b"), "only the first separator splits")
}
