package auth

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/quillpost/gateway-client/pkg/gateway"
	"github.com/stretchr/testify/assert"
)

type captureLogger struct {
	mu     sync.Mutex
	errors []string
}

func (l *captureLogger) Debug(string, map[string]interface{}) {}
func (l *captureLogger) Info(string, map[string]interface{})  {}
func (l *captureLogger) Warn(string, map[string]interface{})  {}

func (l *captureLogger) Error(msg string, _ map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.errors = append(l.errors, msg)
}

func TestLogoutInterceptor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       error
		wantFired bool
	}{
		{name: "refresh token missing", err: &gateway.TransportError{StatusCode: 401, Code: gateway.ErrorCodeRefreshTokenMissing}, wantFired: true},
		{name: "refresh token mismatch", err: &gateway.TransportError{StatusCode: 401, Code: gateway.ErrorCodeRefreshTokenMismatch}, wantFired: true},
		{name: "token invalid", err: &gateway.TransportError{StatusCode: 401, Code: gateway.ErrorCodeTokenInvalid}, wantFired: true},
		{name: "access token expired", err: &gateway.TransportError{StatusCode: 401, Code: gateway.ErrorCodeAccessTokenExpired}, wantFired: false},
		{name: "business failure", err: &gateway.TransportError{StatusCode: 422, Code: "VALIDATION_FAILED"}, wantFired: false},
		{name: "plain error", err: errors.New("plain"), wantFired: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fired := false
			interceptor := LogoutInterceptor(func(ctx context.Context, code gateway.ErrorCode) {
				fired = true
				assert.Equal(t, gateway.ErrorCodeOf(tt.err), code)
			}, nil)

			resp := &gateway.Response{StatusCode: 401}
			gotResp, gotErr := interceptor(context.Background(), &gateway.Request{}, resp, tt.err, nil)

			assert.Equal(t, tt.wantFired, fired)
			assert.Same(t, tt.err, gotErr)
			assert.Same(t, resp, gotResp)
		})
	}
}

func TestLogoutInterceptor_HandlerPanicIsContained(t *testing.T) {
	t.Parallel()

	logger := &captureLogger{}
	interceptor := LogoutInterceptor(func(context.Context, gateway.ErrorCode) {
		panic("store reset failed")
	}, logger)

	err := &gateway.TransportError{StatusCode: 401, Code: gateway.ErrorCodeTokenInvalid}

	assert.NotPanics(t, func() {
		_, got := interceptor(context.Background(), &gateway.Request{}, nil, err, nil)
		assert.Same(t, err, got)
	})
	assert.Equal(t, []string{"Logout handler panicked"}, logger.errors)
}

func TestLogoutInterceptor_NilHandler(t *testing.T) {
	t.Parallel()

	err := &gateway.TransportError{StatusCode: 401, Code: gateway.ErrorCodeTokenInvalid}

	_, got := LogoutInterceptor(nil, nil)(context.Background(), &gateway.Request{}, nil, err, nil)
	assert.Same(t, err, got)
}
