package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/quillpost/gateway-client/internal/constants"
	"github.com/quillpost/gateway-client/pkg/gateway"
)

// Transport sends one resolved request and reports the outcome. A non-2xx
// answer is returned as both the response and a *gateway.TransportError; a
// failure to obtain any answer is a *gateway.TransportError with
// StatusCode 0 and a nil response.
type Transport interface {
	Send(ctx context.Context, target *url.URL, req *gateway.Request) (*gateway.Response, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, target *url.URL, req *gateway.Request) (*gateway.Response, error)

// Send implements Transport.
func (f TransportFunc) Send(ctx context.Context, target *url.URL, req *gateway.Request) (*gateway.Response, error) {
	return f(ctx, target, req)
}

// HTTPTransport is the production Transport. Credentials travel as cookies
// held by its jar.
type HTTPTransport struct {
	client    *retryablehttp.Client
	userAgent string
}

// TransportOption configures an HTTPTransport.
type TransportOption func(*HTTPTransport)

// WithTimeout sets the per-exchange timeout.
func WithTimeout(timeout time.Duration) TransportOption {
	return func(t *HTTPTransport) {
		t.client.HTTPClient.Timeout = timeout
	}
}

// WithCookieJar sets the credential store shared by every client using the
// transport.
func WithCookieJar(jar http.CookieJar) TransportOption {
	return func(t *HTTPTransport) {
		t.client.HTTPClient.Jar = jar
	}
}

// WithRetryConfig enables retries for connection errors, 429 and 5xx.
func WithRetryConfig(maxRetries int, waitMin, waitMax time.Duration) TransportOption {
	return func(t *HTTPTransport) {
		t.client.RetryMax = maxRetries
		t.client.RetryWaitMin = waitMin
		t.client.RetryWaitMax = waitMax
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) TransportOption {
	return func(t *HTTPTransport) {
		t.userAgent = userAgent
	}
}

// WithTransportLogger routes retry diagnostics to logger.
func WithTransportLogger(logger gateway.Logger) TransportOption {
	return func(t *HTTPTransport) {
		t.client.Logger = &leveledLogger{logger: logger}
	}
}

// NewTransport creates an HTTPTransport with a 15s timeout and retries off.
func NewTransport(opts ...TransportOption) *HTTPTransport {
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil
	retryClient.RetryMax = constants.DefaultRetryMax
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	transport := &HTTPTransport{
		client:    retryClient,
		userAgent: constants.DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(transport)
	}

	return transport
}

// Jar returns the transport's cookie jar, or nil.
func (t *HTTPTransport) Jar() http.CookieJar {
	return t.client.HTTPClient.Jar
}

// Send implements Transport.
func (t *HTTPTransport) Send(ctx context.Context, target *url.URL, req *gateway.Request) (*gateway.Response, error) {
	body, err := encodeBody(req.Body)
	if err != nil {
		return nil, &gateway.TransportError{Message: "failed to encode request body", Err: err}
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, target.String(), body)
	if err != nil {
		return nil, &gateway.TransportError{Message: "failed to create request", Err: err}
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	if httpReq.Header.Get("User-Agent") == "" && t.userAgent != "" {
		httpReq.Header.Set("User-Agent", t.userAgent)
	}

	start := time.Now()

	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		if httpResp != nil {
			_ = httpResp.Body.Close()
		}

		return nil, &gateway.TransportError{Message: "request failed", Err: err}
	}

	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &gateway.TransportError{StatusCode: httpResp.StatusCode, Message: "failed to read response body", Err: err}
	}

	resp := &gateway.Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
		Duration:   time.Since(start),
	}

	if httpResp.StatusCode >= http.StatusOK && httpResp.StatusCode < http.StatusMultipleChoices {
		return resp, nil
	}

	return resp, newStatusError(httpResp.StatusCode, respBody)
}

func newStatusError(statusCode int, body []byte) *gateway.TransportError {
	transportErr := &gateway.TransportError{
		StatusCode: statusCode,
		Body:       body,
		Message:    http.StatusText(statusCode),
		Code:       gateway.ParseErrorCode(body),
	}

	if env, ok := transportErr.Envelope(); ok && env.Message != "" {
		transportErr.Message = env.Message
	}

	if transportErr.Message == "" {
		transportErr.Message = fmt.Sprintf("HTTP %d", statusCode)
	}

	return transportErr
}

// encodeBody sends []byte, string and readers as is and JSON-encodes
// anything else.
func encodeBody(body any) (interface{}, error) {
	switch typed := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return typed, nil
	case string:
		return typed, nil
	case io.Reader:
		return typed, nil
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	return bytes.NewReader(data), nil
}

// leveledLogger adapts gateway.Logger to retryablehttp.LeveledLogger. Logger
// panics are discarded.
type leveledLogger struct {
	logger gateway.Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	gateway.SafeLog(func() { l.logger.Error(msg, toFields(keysAndValues)) })
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	gateway.SafeLog(func() { l.logger.Info(msg, toFields(keysAndValues)) })
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	gateway.SafeLog(func() { l.logger.Debug(msg, toFields(keysAndValues)) })
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	gateway.SafeLog(func() { l.logger.Warn(msg, toFields(keysAndValues)) })
}

func toFields(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}

	return fields
}
