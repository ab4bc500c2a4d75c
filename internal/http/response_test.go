package http

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rerrors "github.com/wesleyorama2/rawlunge/internal/errors"
)

func TestResponse_StatusClasses(t *testing.T) {
	tests := []struct {
		code                                  int
		success, redirect, clientErr, server bool
	}{
		{200, true, false, false, false},
		{204, true, false, false, false},
		{301, false, true, false, false},
		{404, false, false, true, false},
		{503, false, false, false, true},
		{101, false, false, false, false},
	}

	for _, tt := range tests {
		resp := &Response{StatusCode: tt.code}
		assert.Equal(t, tt.success, resp.IsSuccess(), "code %d", tt.code)
		assert.Equal(t, tt.redirect, resp.IsRedirect(), "code %d", tt.code)
		assert.Equal(t, tt.clientErr, resp.IsClientError(), "code %d", tt.code)
		assert.Equal(t, tt.server, resp.IsServerError(), "code %d", tt.code)
	}
}

func TestResponse_DecodedBody(t *testing.T) {
	resp := &Response{Body: []byte("plain")}
	body, err := resp.DecodedBody()
	require.NoError(t, err)
	assert.Equal(t, "plain", string(body))

	resp.Header = NewHeader("content-encoding", "Identity")
	body, err = resp.DecodedBody()
	require.NoError(t, err)
	assert.Equal(t, "plain", string(body))

	resp.Header = NewHeader("content-encoding", "gzip")
	_, err = resp.DecodedBody()
	require.Error(t, err)
	assert.True(t, errors.Is(err, rerrors.ErrUnsupported))
}

func TestResponse_TimingMillis(t *testing.T) {
	resp := &Response{Timing: TimingInfo{
		DNSLookupTime:       12 * time.Millisecond,
		TCPConnectTime:      30 * time.Millisecond,
		TLSHandshakeTime:    45 * time.Millisecond,
		TimeToFirstByte:     100 * time.Millisecond,
		ContentTransferTime: 8 * time.Millisecond,
		TotalTime:           195 * time.Millisecond,
	}}

	assert.Equal(t, int64(12), resp.GetDNSLookupTimeMillis())
	assert.Equal(t, int64(30), resp.GetTCPConnectTimeMillis())
	assert.Equal(t, int64(45), resp.GetTLSHandshakeTimeMillis())
	assert.Equal(t, int64(100), resp.GetTimeToFirstByteMillis())
	assert.Equal(t, int64(8), resp.GetContentTransferTimeMillis())
	assert.Equal(t, int64(195), resp.GetTotalTimeMillis())
}

func TestResponse_Status(t *testing.T) {
	assert.Equal(t, "200 OK", (&Response{StatusCode: 200, Reason: "OK"}).Status())
	assert.Equal(t, "204", (&Response{StatusCode: 204}).Status())
}
