package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Metadata keys stamped by the built-in interceptors.
const (
	MetadataStartTime = "start_time"
	MetadataRequestID = "request_id"

	RequestIDHeader = "X-Request-ID"

	unserializablePayload = "Unserializable Payload"
)

// Request is an outbound gateway request as seen by interceptors.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Headers map[string]string
	Body    any

	// Retried is set on the first forced retry so a replay cannot trigger
	// another refresh.
	Retried bool

	Metadata map[string]interface{}
}

// Clone returns a copy that shares Body but not headers, query or metadata.
func (r *Request) Clone() *Request {
	clone := *r
	clone.Headers = maps.Clone(r.Headers)
	clone.Metadata = maps.Clone(r.Metadata)
	clone.Query = maps.Clone(r.Query)

	return &clone
}

// StartTime returns the issue time stamped by TraceInterceptor.
func (r *Request) StartTime() (time.Time, bool) {
	if r.Metadata == nil {
		return time.Time{}, false
	}

	startTime, ok := r.Metadata[MetadataStartTime].(time.Time)

	return startTime, ok
}

// Elapsed returns the time since the request was issued, or 0.
func (r *Request) Elapsed() time.Duration {
	startTime, ok := r.StartTime()
	if !ok {
		return 0
	}

	return time.Since(startTime)
}

// Response is a completed gateway exchange.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}

// Dispatch sends a request through a client's full pipeline.
type Dispatch func(ctx context.Context, req *Request) (*Response, error)

// RequestInterceptor is called before a request is sent.
type RequestInterceptor func(ctx context.Context, req *Request) error

// ResponseInterceptor is called after a successful response is received.
type ResponseInterceptor func(ctx context.Context, req *Request, resp *Response) error

// ErrorInterceptor is called when an exchange fails. resp is nil when no
// response was received. Returning a nil error recovers the exchange with
// the returned response; returning an error passes it to the next
// interceptor. replay re-issues a request through the same client.
type ErrorInterceptor func(ctx context.Context, req *Request, resp *Response, err error, replay Dispatch) (*Response, error)

// InterceptorChain manages a chain of interceptors.
type InterceptorChain struct {
	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
	errorInterceptors    []ErrorInterceptor
}

// NewInterceptorChain creates a new interceptor chain.
func NewInterceptorChain() *InterceptorChain {
	return &InterceptorChain{
		requestInterceptors:  make([]RequestInterceptor, 0),
		responseInterceptors: make([]ResponseInterceptor, 0),
		errorInterceptors:    make([]ErrorInterceptor, 0),
	}
}

// AddRequestInterceptor adds a request interceptor to the chain.
func (c *InterceptorChain) AddRequestInterceptor(interceptor RequestInterceptor) {
	c.requestInterceptors = append(c.requestInterceptors, interceptor)
}

// AddResponseInterceptor adds a response interceptor to the chain.
func (c *InterceptorChain) AddResponseInterceptor(interceptor ResponseInterceptor) {
	c.responseInterceptors = append(c.responseInterceptors, interceptor)
}

// AddErrorInterceptor adds an error interceptor to the chain.
func (c *InterceptorChain) AddErrorInterceptor(interceptor ErrorInterceptor) {
	c.errorInterceptors = append(c.errorInterceptors, interceptor)
}

// ExecuteRequestInterceptors runs all request interceptors.
func (c *InterceptorChain) ExecuteRequestInterceptors(ctx context.Context, req *Request) error {
	for _, interceptor := range c.requestInterceptors {
		err := interceptor(ctx, req)
		if err != nil {
			return fmt.Errorf("request interceptor failed: %w", err)
		}
	}

	return nil
}

// ExecuteResponseInterceptors runs all response interceptors.
func (c *InterceptorChain) ExecuteResponseInterceptors(ctx context.Context, req *Request, resp *Response) error {
	for _, interceptor := range c.responseInterceptors {
		err := interceptor(ctx, req, resp)
		if err != nil {
			return fmt.Errorf("response interceptor failed: %w", err)
		}
	}

	return nil
}

// ExecuteErrorInterceptors runs error interceptors in order until one
// recovers the exchange. The final error is returned unwrapped so callers
// see the transport or refresh error itself.
func (c *InterceptorChain) ExecuteErrorInterceptors(ctx context.Context, req *Request, resp *Response, err error, replay Dispatch) (*Response, error) {
	for _, interceptor := range c.errorInterceptors {
		resp, err = interceptor(ctx, req, resp, err, replay)
		if err == nil {
			return resp, nil
		}
	}

	return resp, err
}

// Common Interceptors

// TraceInterceptor stamps the issue time and a request id into the request
// metadata. The id is sent as X-Request-ID unless the caller set one.
func TraceInterceptor() RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		if req.Metadata == nil {
			req.Metadata = make(map[string]interface{})
		}

		req.Metadata[MetadataStartTime] = time.Now()

		requestID, ok := req.Metadata[MetadataRequestID].(string)
		if !ok || requestID == "" {
			requestID = uuid.NewString()
			req.Metadata[MetadataRequestID] = requestID
		}

		if req.Headers == nil {
			req.Headers = make(map[string]string)
		}

		if _, exists := req.Headers[RequestIDHeader]; !exists {
			req.Headers[RequestIDHeader] = requestID
		}

		return nil
	}
}

// SafeStringify renders a body for logging; bodies that cannot be encoded
// become a placeholder instead of an error.
func SafeStringify(body any) string {
	switch typed := body.(type) {
	case nil:
		return ""
	case []byte:
		return string(typed)
	case string:
		return typed
	case io.Reader:
		return "<stream>"
	}

	data, err := json.Marshal(body)
	if err != nil {
		return unserializablePayload
	}

	return string(data)
}

// SafeLog invokes a logger call, discarding any panic it raises.
func SafeLog(fn func()) {
	defer func() {
		_ = recover()
	}()

	fn()
}

// LoggingInterceptor logs outbound requests.
func LoggingInterceptor(logger Logger, baseURL string) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		SafeLog(func() {
			logger.Debug("API Request", map[string]interface{}{
				"method":     req.Method,
				"url":        baseURL + req.Path,
				"query":      req.Query.Encode(),
				"body":       SafeStringify(req.Body),
				"headers":    req.Headers,
				"retried":    req.Retried,
				"request_id": req.Metadata[MetadataRequestID],
			})
		})

		return nil
	}
}

// LoggingResponseInterceptor logs successful responses.
func LoggingResponseInterceptor(logger Logger) ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) error {
		SafeLog(func() {
			logger.Debug("API Response", map[string]interface{}{
				"method":      req.Method,
				"path":        req.Path,
				"status_code": resp.StatusCode,
				"duration":    req.Elapsed().String(),
				"body":        string(resp.Body),
				"request_id":  req.Metadata[MetadataRequestID],
			})
		})

		return nil
	}
}

// LoggingErrorInterceptor logs failed exchanges and passes the error on.
func LoggingErrorInterceptor(logger Logger) ErrorInterceptor {
	return func(ctx context.Context, req *Request, resp *Response, err error, replay Dispatch) (*Response, error) {
		SafeLog(func() {
			fields := map[string]interface{}{
				"method":      req.Method,
				"path":        req.Path,
				"status_code": StatusCodeOf(err),
				"error_code":  string(ErrorCodeOf(err)),
				"message":     err.Error(),
				"duration":    req.Elapsed().String(),
				"retried":     req.Retried,
				"request_id":  req.Metadata[MetadataRequestID],
			}

			if resp != nil {
				fields["body"] = string(resp.Body)
			}

			logger.Error("API Response Error", fields)
		})

		return resp, err
	}
}

// HeaderInterceptor adds custom headers to requests. Headers already set on
// the request win.
func HeaderInterceptor(headers map[string]string) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		if req.Headers == nil {
			req.Headers = make(map[string]string)
		}

		for key, value := range headers {
			if _, exists := req.Headers[key]; !exists {
				req.Headers[key] = value
			}
		}

		return nil
	}
}

// Metrics holds counters for one endpoint.
type Metrics struct {
	TotalRequests   int64
	TotalErrors     int64
	TotalLatency    time.Duration
	AverageLatency  time.Duration
	LastRequestTime time.Time
}

// MetricsCollector collects API metrics. It is safe for concurrent use.
type MetricsCollector struct {
	mu       sync.Mutex
	metrics  map[string]*Metrics
	onChange func(endpoint string, metrics Metrics)
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		metrics: make(map[string]*Metrics),
	}
}

// SetOnChange sets a callback for when metrics change.
func (m *MetricsCollector) SetOnChange(fn func(endpoint string, metrics Metrics)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.onChange = fn
}

// GetMetrics returns a snapshot of the metrics for an endpoint.
func (m *MetricsCollector) GetMetrics(endpoint string) (Metrics, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if metrics, ok := m.metrics[endpoint]; ok {
		return *metrics, true
	}

	return Metrics{}, false
}

// Snapshot returns a copy of all endpoint metrics.
func (m *MetricsCollector) Snapshot() map[string]Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]Metrics, len(m.metrics))
	for endpoint, metrics := range m.metrics {
		out[endpoint] = *metrics
	}

	return out
}

func (m *MetricsCollector) record(req *Request, failed bool) {
	endpoint := fmt.Sprintf("%s %s", req.Method, req.Path)

	m.mu.Lock()

	metrics, ok := m.metrics[endpoint]
	if !ok {
		metrics = &Metrics{}
		m.metrics[endpoint] = metrics
	}

	metrics.TotalRequests++
	metrics.LastRequestTime = time.Now()

	if _, ok := req.StartTime(); ok {
		metrics.TotalLatency += req.Elapsed()
		metrics.AverageLatency = metrics.TotalLatency / time.Duration(metrics.TotalRequests)
	}

	if failed {
		metrics.TotalErrors++
	}

	snapshot := *metrics
	onChange := m.onChange

	m.mu.Unlock()

	if onChange != nil {
		onChange(endpoint, snapshot)
	}
}

// MetricsResponseInterceptor records successful exchanges.
func MetricsResponseInterceptor(collector *MetricsCollector) ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) error {
		collector.record(req, IsErrorStatus(resp.StatusCode))

		return nil
	}
}

// MetricsErrorInterceptor records failed exchanges and passes the error on.
func MetricsErrorInterceptor(collector *MetricsCollector) ErrorInterceptor {
	return func(ctx context.Context, req *Request, resp *Response, err error, replay Dispatch) (*Response, error) {
		collector.record(req, true)

		return resp, err
	}
}
