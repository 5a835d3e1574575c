package auth

import (
	"context"
	"fmt"

	"github.com/quillpost/gateway-client/pkg/gateway"
)

// LogoutInterceptor notifies handler when a failure carries a code that ends
// the session. It never alters the failure.
func LogoutInterceptor(handler gateway.LogoutHandler, logger gateway.Logger) gateway.ErrorInterceptor {
	return func(ctx context.Context, req *gateway.Request, resp *gateway.Response, err error, replay gateway.Dispatch) (*gateway.Response, error) {
		code := gateway.ErrorCodeOf(err)
		if code.ForcesLogout() {
			notifyLogout(ctx, handler, code, logger)
		}

		return resp, err
	}
}

// notifyLogout runs handler without letting it panic into the request path.
func notifyLogout(ctx context.Context, handler gateway.LogoutHandler, code gateway.ErrorCode, logger gateway.Logger) {
	if handler == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil && logger != nil {
			gateway.SafeLog(func() {
				logger.Error("Logout handler panicked", map[string]interface{}{
					"error_code": string(code),
					"panic":      fmt.Sprint(r),
				})
			})
		}
	}()

	handler(ctx, code)
}
