package resilience

import (
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"transient_wrapper", NewTransientError(errors.New("503"), 503), true},
		{"wrapped_transient", fmt.Errorf("outer: %w", NewTransientError(errors.New("429"), 429)), true},
		{"conn_reset", syscall.ECONNRESET, true},
		{"conn_refused", syscall.ECONNREFUSED, true},
		{"io_timeout_string", errors.New("read tcp: i/o timeout"), true},
		{"broken_pipe_string", errors.New("write: broken pipe"), true},
		{"plain_error", errors.New("invalid request"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, IsTransientHTTPStatus(code), "status %d", code)
	}
	for _, code := range []int{200, 301, 400, 401, 403, 404, 422} {
		assert.False(t, IsTransientHTTPStatus(code), "status %d", code)
	}
}

func TestTransientError_Unwrap(t *testing.T) {
	inner := errors.New("inner")
	te := NewTransientError(inner, 502)
	assert.Equal(t, "inner", te.Error())
	assert.True(t, errors.Is(te, inner))
}
