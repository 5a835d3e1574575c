package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/quillpost/gateway-client/internal/constants"
	"github.com/quillpost/gateway-client/pkg/gateway"
)

// ErrRefreshFailed wraps every failure of the refresh endpoint. The wrapped
// error is the client's own, so errors.As still yields the
// *gateway.TransportError with its status and code.
var ErrRefreshFailed = errors.New("session refresh failed")

// Poster is the subset of a gateway client the refresher needs.
type Poster interface {
	Post(ctx context.Context, path string, body any) (*gateway.Response, error)
}

// HTTPRefresher calls the gateway's refresh endpoint. The new tokens arrive
// as Set-Cookie on the shared jar, so any 2xx answer is success.
type HTTPRefresher struct {
	client Poster
	path   string
}

// NewHTTPRefresher creates a refresher posting to path through client. The
// client must not carry the refresh interceptor itself. An empty path
// means "/auth/refresh-token".
func NewHTTPRefresher(client Poster, path string) *HTTPRefresher {
	if path == "" {
		path = constants.RefreshTokenPath
	}

	return &HTTPRefresher{
		client: client,
		path:   path,
	}
}

// Path returns the refresh endpoint path.
func (r *HTTPRefresher) Path() string {
	return r.path
}

// Refresh implements Refresher. A failure is returned as
// "session refresh failed: <cause>" where cause is the unmodified transport
// error; every waiter of the coordinator receives that same value.
func (r *HTTPRefresher) Refresh(ctx context.Context) error {
	_, err := r.client.Post(ctx, r.path, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}

	return nil
}
