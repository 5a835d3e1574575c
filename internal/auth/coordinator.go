package auth

import (
	"context"
	"sync"

	"github.com/quillpost/gateway-client/pkg/gateway"
)

// State is the refresh state of a Coordinator.
type State int

const (
	// StateIdle means no refresh call is in flight.
	StateIdle State = iota
	// StateRefreshing means a refresh call is in flight and new expirations
	// queue behind it.
	StateRefreshing
)

// String implements fmt.Stringer.
func (s State) String() string {
	if s == StateRefreshing {
		return "refreshing"
	}

	return "idle"
}

// Refresher renews the session. Tokens are cookies, so a successful call
// has nothing to return.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefresherFunc adapts a function to Refresher.
type RefresherFunc func(ctx context.Context) error

// Refresh implements Refresher.
func (f RefresherFunc) Refresh(ctx context.Context) error {
	return f(ctx)
}

// Coordinator performs single-flight session refresh. While a refresh is in
// flight every other caller queues a continuation; all of them are settled
// in enqueue order with the one outcome.
//
// A Coordinator may be shared by several clients or owned by one.
type Coordinator struct {
	refresher Refresher
	logger    gateway.Logger
	onLogout  gateway.LogoutHandler

	mu         sync.Mutex
	refreshing bool
	waiters    []func(error)
	refreshes  int
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithLogger sets the logger.
func WithLogger(logger gateway.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithLogoutHandler sets the handler notified when the refresh call fails
// with a code that ends the session.
func WithLogoutHandler(handler gateway.LogoutHandler) CoordinatorOption {
	return func(c *Coordinator) {
		c.onLogout = handler
	}
}

// NewCoordinator creates a Coordinator. A nil refresher yields a coordinator
// whose Await always fails with gateway.ErrRefreshNotConfigured.
func NewCoordinator(refresher Refresher, opts ...CoordinatorOption) *Coordinator {
	coordinator := &Coordinator{refresher: refresher}

	for _, opt := range opts {
		opt(coordinator)
	}

	return coordinator
}

// State returns the current refresh state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.refreshing {
		return StateRefreshing
	}

	return StateIdle
}

// Pending returns the number of queued waiters, excluding the caller that
// started the refresh. Waiters whose context ended stay counted until the
// refresh settles.
func (c *Coordinator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.waiters)
}

// Refreshes returns how many refresh calls have been started.
func (c *Coordinator) Refreshes() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.refreshes
}

// Await starts a refresh, or joins the one in flight, and returns its
// outcome. The refresh itself is detached from ctx so one caller giving up
// cannot fail it for the others; a caller whose ctx ends stops waiting with
// ctx.Err().
func (c *Coordinator) Await(ctx context.Context) error {
	if c.refresher == nil {
		return gateway.ErrRefreshNotConfigured
	}

	done := make(chan error, 1)

	if !c.join(func(err error) { done <- err }) {
		return wait(ctx, done)
	}

	go func() {
		err := c.refresh(context.WithoutCancel(ctx))
		c.settle(err)
		done <- err
	}()

	return wait(ctx, done)
}

// join queues waiter behind an in-flight refresh, or flips the coordinator
// to refreshing and reports that the caller must start the refresh. The
// waiter is not queued in that case.
func (c *Coordinator) join(waiter func(error)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.refreshing {
		c.waiters = append(c.waiters, waiter)

		return false
	}

	c.refreshing = true
	c.refreshes++

	return true
}

func wait(ctx context.Context, done <-chan error) error {
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Coordinator) refresh(ctx context.Context) error {
	c.debug("Refreshing session", nil)

	err := c.refresher.Refresh(ctx)
	if err != nil {
		code := gateway.ErrorCodeOf(err)

		c.warn("Session refresh failed", map[string]interface{}{
			"error":      err.Error(),
			"error_code": string(code),
		})

		if code.ForcesLogout() {
			notifyLogout(ctx, c.onLogout, code, c.logger)
		}

		return err
	}

	c.debug("Session refreshed", nil)

	return nil
}

// settle drains the queue and returns to idle in one transition, then runs
// the continuations in enqueue order.
func (c *Coordinator) settle(err error) {
	c.mu.Lock()
	waiters := c.waiters
	c.waiters = nil
	c.refreshing = false
	c.mu.Unlock()

	for _, waiter := range waiters {
		waiter(err)
	}
}

// Interceptor returns the error interceptor that recovers
// ACCESS_TOKEN_EXPIRED failures: the request is marked retried, the session
// is refreshed (or the in-flight refresh joined) and the request replayed
// through the client's pipeline. Any other failure, or a request that was
// already retried, passes through untouched.
func (c *Coordinator) Interceptor() gateway.ErrorInterceptor {
	return func(ctx context.Context, req *gateway.Request, resp *gateway.Response, err error, replay gateway.Dispatch) (*gateway.Response, error) {
		if !gateway.IsAccessTokenExpired(err) || req.Retried || c.refresher == nil {
			return resp, err
		}

		req.Retried = true

		refreshErr := c.Await(ctx)
		if refreshErr != nil {
			return nil, refreshErr
		}

		return replay(ctx, req)
	}
}

// debug and warn run on the refresh goroutine, where a logger panic would
// take down the process.
func (c *Coordinator) debug(msg string, fields map[string]interface{}) {
	if c.logger != nil {
		gateway.SafeLog(func() { c.logger.Debug(msg, fields) })
	}
}

func (c *Coordinator) warn(msg string, fields map[string]interface{}) {
	if c.logger != nil {
		gateway.SafeLog(func() { c.logger.Warn(msg, fields) })
	}
}
