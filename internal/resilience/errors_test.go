package resilience

import (
	"net"
	"syscall"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
		{
			name: "explicit transient error from the completion client",
			err:  NewTransientError(eris.New("ollama: unexpected status 503: loading model"), 503),
			want: true,
		},
		{
			name: "transient error wrapped by a caller",
			err:  eris.Wrap(NewTransientError(eris.New("ollama: unexpected status 429"), 429), "mcq: generate"),
			want: true,
		},
		{
			name: "permanent completion error",
			err:  eris.New("ollama: response envelope missing response field"),
			want: false,
		},
		{
			name: "malformed payload error",
			err:  eris.New("ollama: unmarshal response: invalid character"),
			want: false,
		},
		{
			name: "connection reset syscall",
			err:  eris.Wrap(syscall.ECONNRESET, "ollama: send request"),
			want: true,
		},
		{
			name: "connection refused syscall",
			err:  eris.Wrap(syscall.ECONNREFUSED, "ollama: send request"),
			want: true,
		},
		{
			name: "network timeout",
			err:  &net.DNSError{IsTimeout: true, Err: "timeout"},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestIsTransient_ConnectionFailureMessages(t *testing.T) {
	// Failure strings seen when the local model server dies mid-request.
	messages := []string{
		"ollama: send request: read tcp 127.0.0.1:11434: connection reset by peer",
		"ollama: send request: write: broken pipe",
		"ollama: send request: dial tcp: lookup ollama: no such host",
		"ollama: send request: i/o timeout",
		"ollama: send request: http: server closed idle connection",
	}
	for _, msg := range messages {
		t.Run(msg, func(t *testing.T) {
			assert.True(t, IsTransient(eris.New(msg)))
		})
	}
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, IsTransientHTTPStatus(code), "HTTP %d", code)
	}
	for _, code := range []int{200, 201, 400, 401, 403, 404, 405, 409, 422} {
		assert.False(t, IsTransientHTTPStatus(code), "HTTP %d", code)
	}
}

func TestTransientError_Unwrap(t *testing.T) {
	inner := eris.New("ollama: unexpected status 500")
	te := NewTransientError(inner, 500)

	require.True(t, eris.Is(te, inner))
	assert.Equal(t, 500, te.StatusCode)
	assert.Equal(t, inner.Error(), te.Error())
}
