package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"strings"

	"github.com/quillpost/gateway-client/internal/constants"
	"github.com/quillpost/gateway-client/pkg/gateway"
)

// ErrInvalidRequestURL is returned when a request path cannot be resolved
// against the client's base address.
var ErrInvalidRequestURL = errors.New("invalid request URL")

// ErrReadRequestBody is returned when a reader body fails before sending.
var ErrReadRequestBody = errors.New("failed to read request body")

var _ gateway.Requester = (*Client)(nil)

// Client is one gateway client: a base address, an optional path prefix and
// an interceptor pipeline in front of a Transport.
type Client struct {
	baseURL   string
	prefix    string
	transport Transport
	chain     *gateway.InterceptorChain

	headers map[string]string
	logger  gateway.Logger
	debug   bool

	requestInterceptors  []gateway.RequestInterceptor
	responseInterceptors []gateway.ResponseInterceptor
	errorInterceptors    []gateway.ErrorInterceptor
}

// Option configures a Client.
type Option func(*Client)

// WithPrefix mounts the client under a path prefix such as "/users".
func WithPrefix(prefix string) Option {
	return func(c *Client) {
		c.prefix = "/" + strings.Trim(prefix, "/")
		if c.prefix == "/" {
			c.prefix = ""
		}
	}
}

// WithLogger sets the logger. Failed exchanges are always logged.
func WithLogger(logger gateway.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request and response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithHeaders adds default headers. Per-request headers take precedence.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		maps.Copy(c.headers, headers)
	}
}

// WithRequestInterceptor appends a request interceptor.
func WithRequestInterceptor(interceptor gateway.RequestInterceptor) Option {
	return func(c *Client) {
		c.requestInterceptors = append(c.requestInterceptors, interceptor)
	}
}

// WithResponseInterceptor appends a response interceptor.
func WithResponseInterceptor(interceptor gateway.ResponseInterceptor) Option {
	return func(c *Client) {
		c.responseInterceptors = append(c.responseInterceptors, interceptor)
	}
}

// WithErrorInterceptor appends an error interceptor. Error interceptors run
// in the order added, after error logging.
func WithErrorInterceptor(interceptor gateway.ErrorInterceptor) Option {
	return func(c *Client) {
		c.errorInterceptors = append(c.errorInterceptors, interceptor)
	}
}

// NewClient creates a new gateway client. A nil transport gets a default
// HTTPTransport with no cookie jar.
func NewClient(baseURL string, transport Transport, opts ...Option) *Client {
	if transport == nil {
		transport = NewTransport()
	}

	client := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		transport: transport,
		headers: map[string]string{
			constants.HeaderContentType: constants.MediaTypeJSON,
			constants.HeaderAccept:      constants.MediaTypeJSON,
		},
	}

	for _, opt := range opts {
		opt(client)
	}

	client.chain = client.buildChain()

	return client
}

func (c *Client) buildChain() *gateway.InterceptorChain {
	chain := gateway.NewInterceptorChain()

	chain.AddRequestInterceptor(gateway.TraceInterceptor())
	chain.AddRequestInterceptor(gateway.HeaderInterceptor(c.headers))

	for _, interceptor := range c.requestInterceptors {
		chain.AddRequestInterceptor(interceptor)
	}

	if c.logger != nil {
		if c.debug {
			chain.AddRequestInterceptor(gateway.LoggingInterceptor(c.logger, c.Endpoint()))
			chain.AddResponseInterceptor(gateway.LoggingResponseInterceptor(c.logger))
		}

		chain.AddErrorInterceptor(gateway.LoggingErrorInterceptor(c.logger))
	}

	for _, interceptor := range c.responseInterceptors {
		chain.AddResponseInterceptor(interceptor)
	}

	for _, interceptor := range c.errorInterceptors {
		chain.AddErrorInterceptor(interceptor)
	}

	return chain
}

// BaseURL returns the gateway base address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Prefix returns the path prefix, or "".
func (c *Client) Prefix() string {
	return c.prefix
}

// Endpoint returns the base address joined with the prefix.
func (c *Client) Endpoint() string {
	return c.baseURL + c.prefix
}

// Do executes a request through the interceptor pipeline. The caller's
// request is never modified. A reader body is consumed here and replays
// resend the bytes read.
func (c *Client) Do(ctx context.Context, req *gateway.Request) (*gateway.Response, error) {
	clone := req.Clone()

	body, err := bufferBody(clone.Body)
	if err != nil {
		return nil, err
	}

	clone.Body = body

	return c.dispatch(ctx, clone)
}

func bufferBody(body any) (any, error) {
	reader, ok := body.(io.Reader)
	if !ok {
		return body, nil
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadRequestBody, err)
	}

	return data, nil
}

func (c *Client) dispatch(ctx context.Context, req *gateway.Request) (*gateway.Response, error) {
	err := c.chain.ExecuteRequestInterceptors(ctx, req)
	if err != nil {
		return nil, err
	}

	target, err := c.resolve(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.transport.Send(ctx, target, req)
	if err == nil {
		err = promoteTokenFailure(resp)
	}

	if err != nil {
		return c.chain.ExecuteErrorInterceptors(ctx, req, resp, err, c.dispatch)
	}

	err = c.chain.ExecuteResponseInterceptors(ctx, req, resp)
	if err != nil {
		return resp, err
	}

	return resp, nil
}

func (c *Client) resolve(req *gateway.Request) (*url.URL, error) {
	path := req.Path
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	target, err := url.Parse(c.Endpoint() + path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequestURL, err)
	}

	if len(req.Query) > 0 {
		query := target.Query()

		for key, values := range req.Query {
			for _, value := range values {
				query.Add(key, value)
			}
		}

		target.RawQuery = query.Encode()
	}

	return target, nil
}

// promoteTokenFailure turns a 2xx body that is a failed envelope carrying a
// token code into an error, so it reaches the error interceptors.
func promoteTokenFailure(resp *gateway.Response) error {
	code := gateway.ParseErrorCode(resp.Body)
	if !code.IsTokenCode() {
		return nil
	}

	env, err := gateway.Decode[struct{}](resp.Body)
	if err != nil || env.Success {
		return nil
	}

	statusCode := env.StatusCode
	if !gateway.IsErrorStatus(statusCode) {
		statusCode = http.StatusUnauthorized
	}

	return &gateway.TransportError{
		StatusCode: statusCode,
		Body:       resp.Body,
		Message:    env.Message,
		Code:       code,
	}
}

// Request builds and executes a request with optional header overrides.
func (c *Client) Request(ctx context.Context, method, path string, body any, headers map[string]string) (*gateway.Response, error) {
	return c.Do(ctx, &gateway.Request{
		Method:  method,
		Path:    path,
		Body:    body,
		Headers: headers,
	})
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*gateway.Response, error) {
	return c.Do(ctx, &gateway.Request{
		Method: http.MethodGet,
		Path:   path,
		Query:  query,
	})
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, path string, body any) (*gateway.Response, error) {
	return c.Request(ctx, http.MethodPost, path, body, nil)
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, path string, body any) (*gateway.Response, error) {
	return c.Request(ctx, http.MethodPut, path, body, nil)
}

// Patch performs a PATCH request.
func (c *Client) Patch(ctx context.Context, path string, body any) (*gateway.Response, error) {
	return c.Request(ctx, http.MethodPatch, path, body, nil)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*gateway.Response, error) {
	return c.Request(ctx, http.MethodDelete, path, nil, nil)
}
