package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"

	"github.com/quillpost/gateway-client/internal/auth"
	"github.com/quillpost/gateway-client/internal/constants"
	gwhttp "github.com/quillpost/gateway-client/internal/http"
	"github.com/quillpost/gateway-client/pkg/gateway"
	"golang.org/x/net/publicsuffix"
)

var _ gateway.Client = (*Gateway)(nil)

// Gateway implements the gateway.Client interface.
type Gateway struct {
	config *gateway.Config
	jar    http.CookieJar

	// Refresh-only client without recovery interceptors.
	authRaw *gwhttp.Client

	// Prefixed clients
	authAPI    *gwhttp.Client
	usersAPI   *gwhttp.Client
	categories *gwhttp.Client
	blogs      *gwhttp.Client

	coordinators []*auth.Coordinator

	users *UsersService
	auth  *AuthService
}

// NewCookieJar creates the credential store shared by a gateway's clients.
func NewCookieJar() (http.CookieJar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return jar, nil
}

// createTransportOptions builds transport options from config.
func createTransportOptions(config *gateway.Config, jar http.CookieJar) []gwhttp.TransportOption {
	opts := []gwhttp.TransportOption{gwhttp.WithCookieJar(jar)}

	if config.HTTPTimeout > 0 {
		opts = append(opts, gwhttp.WithTimeout(config.HTTPTimeout))
	}

	if config.UserAgent != "" {
		opts = append(opts, gwhttp.WithUserAgent(config.UserAgent))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		opts = append(opts, gwhttp.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	if config.Logger != nil && config.Debug {
		opts = append(opts, gwhttp.WithTransportLogger(config.Logger))
	}

	return opts
}

func validate(config *gateway.Config) error {
	if config == nil {
		return gateway.ErrConfigRequired
	}

	if config.BaseAddress == "" {
		return gateway.ErrBaseAddressRequired
	}

	if !config.RefreshTopology.Valid() {
		return fmt.Errorf("%w: %q", gateway.ErrUnknownTopology, config.RefreshTopology)
	}

	return nil
}

// New creates a gateway from config. The transport is an HTTPTransport over
// config.CookieJar, or a fresh jar when none is set.
func New(ctx context.Context, config *gateway.Config) (*Gateway, error) {
	err := validate(config)
	if err != nil {
		return nil, err
	}

	jar := config.CookieJar
	if jar == nil {
		jar, err = NewCookieJar()
		if err != nil {
			return nil, err
		}
	}

	transport := gwhttp.NewTransport(createTransportOptions(config, jar)...)

	gw := build(config, transport)
	gw.jar = jar

	return gw, nil
}

// NewWithTransport creates a gateway over a custom transport. Cookie
// handling is then the transport's concern.
func NewWithTransport(config *gateway.Config, transport gwhttp.Transport) (*Gateway, error) {
	err := validate(config)
	if err != nil {
		return nil, err
	}

	gw := build(config, transport)
	gw.jar = config.CookieJar

	return gw, nil
}

func build(config *gateway.Config, transport gwhttp.Transport) *Gateway {
	gw := &Gateway{config: config}

	var rawOpts []gwhttp.Option
	if config.Logger != nil {
		rawOpts = append(rawOpts, gwhttp.WithLogger(config.Logger), gwhttp.WithDebug(config.Debug))
	}

	gw.authRaw = gwhttp.NewClient(config.BaseAddress, transport, rawOpts...)
	refresher := auth.NewHTTPRefresher(gw.authRaw, config.RefreshPath)

	var shared *auth.Coordinator
	if config.RefreshTopology == "" || config.RefreshTopology == gateway.TopologyShared {
		shared = gw.newCoordinator(refresher)
	}

	prefixed := func(prefix string) *gwhttp.Client {
		opts := gw.prefixedOptions(prefix)

		switch {
		case shared != nil:
			opts = append(opts, gwhttp.WithErrorInterceptor(shared.Interceptor()))
		case config.RefreshTopology == gateway.TopologyPerClient:
			opts = append(opts, gwhttp.WithErrorInterceptor(gw.newCoordinator(refresher).Interceptor()))
		}

		return gwhttp.NewClient(config.BaseAddress, transport, opts...)
	}

	gw.authAPI = prefixed(constants.PrefixAuth)
	gw.usersAPI = prefixed(constants.PrefixUsers)
	gw.categories = prefixed(constants.PrefixCategories)
	gw.blogs = prefixed(constants.PrefixBlogs)

	gw.users = NewUsersService(gw.usersAPI)
	gw.auth = NewAuthService(gw.authAPI, gw.users)

	return gw
}

func (g *Gateway) newCoordinator(refresher auth.Refresher) *auth.Coordinator {
	coordinator := auth.NewCoordinator(refresher,
		auth.WithLogger(g.config.Logger),
		auth.WithLogoutHandler(g.config.OnForceLogout),
	)
	g.coordinators = append(g.coordinators, coordinator)

	return coordinator
}

// prefixedOptions returns the options shared by every prefixed client. The
// refresh interceptor, when any, is appended last so it sees failures after
// they were logged, counted and signalled.
func (g *Gateway) prefixedOptions(prefix string) []gwhttp.Option {
	config := g.config
	opts := []gwhttp.Option{gwhttp.WithPrefix(prefix)}

	if config.Logger != nil {
		opts = append(opts, gwhttp.WithLogger(config.Logger), gwhttp.WithDebug(config.Debug))
	}

	if config.Metrics != nil {
		opts = append(opts,
			gwhttp.WithResponseInterceptor(gateway.MetricsResponseInterceptor(config.Metrics)),
			gwhttp.WithErrorInterceptor(gateway.MetricsErrorInterceptor(config.Metrics)),
		)
	}

	if config.OnForceLogout != nil {
		opts = append(opts, gwhttp.WithErrorInterceptor(auth.LogoutInterceptor(config.OnForceLogout, config.Logger)))
	}

	return opts
}

// Users implements gateway.Client.Users.
func (g *Gateway) Users() gateway.UsersClient {
	return g.users
}

// Auth implements gateway.Client.Auth.
func (g *Gateway) Auth() gateway.AuthClient {
	return g.auth
}

// AuthAPI implements gateway.Client.AuthAPI.
func (g *Gateway) AuthAPI() gateway.Requester {
	return g.authAPI
}

// UsersAPI implements gateway.Client.UsersAPI.
func (g *Gateway) UsersAPI() gateway.Requester {
	return g.usersAPI
}

// Categories implements gateway.Client.Categories.
func (g *Gateway) Categories() gateway.Requester {
	return g.categories
}

// Blogs implements gateway.Client.Blogs.
func (g *Gateway) Blogs() gateway.Requester {
	return g.blogs
}

// API returns the prefixed client for prefix ("/auth", "/users",
// "/categories" or "/blogs").
func (g *Gateway) API(prefix string) (gateway.Requester, bool) {
	switch prefix {
	case constants.PrefixAuth:
		return g.authAPI, true
	case constants.PrefixUsers:
		return g.usersAPI, true
	case constants.PrefixCategories:
		return g.categories, true
	case constants.PrefixBlogs:
		return g.blogs, true
	default:
		return nil, false
	}
}

// SyncSession implements gateway.Client.SyncSession.
func (g *Gateway) SyncSession(ctx context.Context) *gateway.Envelope[gateway.UserProfile] {
	return g.users.GetCurrentUserProfile(ctx)
}

// Coordinators returns the refresh coordinators in creation order: one for
// the shared topology, one per prefixed client for per-client, none
// otherwise.
func (g *Gateway) Coordinators() []*auth.Coordinator {
	return g.coordinators
}

// Jar returns the cookie jar holding the session, or nil when a custom
// transport manages cookies.
func (g *Gateway) Jar() http.CookieJar {
	return g.jar
}

// Endpoint returns the gateway base address.
func (g *Gateway) Endpoint() string {
	return g.authRaw.BaseURL()
}
