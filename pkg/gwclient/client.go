package gwclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/quillpost/gateway-client/internal/client"
	"github.com/quillpost/gateway-client/pkg/gateway"
)

// New creates a new gateway client. The config is copied; the caller's value
// is never modified.
func New(ctx context.Context, config *gateway.Config) (gateway.Client, error) {
	if config == nil {
		return nil, gateway.ErrConfigRequired
	}

	if config.BaseAddress == "" {
		return nil, gateway.ErrBaseAddressRequired
	}

	normalized := *config
	normalized.BaseAddress = NormalizeBaseAddress(config.BaseAddress)

	gw, err := client.New(ctx, &normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return gw, nil
}

// NewWithBaseAddress creates a client for baseAddress with default settings.
func NewWithBaseAddress(ctx context.Context, baseAddress string) (gateway.Client, error) {
	return New(ctx, &gateway.Config{BaseAddress: baseAddress})
}

// NormalizeBaseAddress trims trailing slashes and defaults the scheme to
// https.
func NormalizeBaseAddress(baseAddress string) string {
	normalized := strings.TrimRight(strings.TrimSpace(baseAddress), "/")
	if !strings.HasPrefix(normalized, "http://") && !strings.HasPrefix(normalized, "https://") {
		normalized = "https://" + normalized
	}

	return normalized
}

// NewCookieJar creates a cookie jar suitable for gateway.Config.CookieJar.
// Share one jar between clients that should see the same session.
func NewCookieJar() (http.CookieJar, error) {
	return client.NewCookieJar()
}
