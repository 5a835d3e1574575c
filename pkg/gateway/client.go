package gateway

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Requester issues raw requests through one prefixed gateway client.
type Requester interface {
	Do(ctx context.Context, req *Request) (*Response, error)
	Request(ctx context.Context, method, path string, body any, headers map[string]string) (*Response, error)
	Get(ctx context.Context, path string, query url.Values) (*Response, error)
	Post(ctx context.Context, path string, body any) (*Response, error)
	Put(ctx context.Context, path string, body any) (*Response, error)
	Patch(ctx context.Context, path string, body any) (*Response, error)
	Delete(ctx context.Context, path string) (*Response, error)
}

// UsersClient covers the /users routes. Every method returns a non-nil
// envelope.
type UsersClient interface {
	GetCurrentUserProfile(ctx context.Context) *Envelope[UserProfile]
	GetUserProfileByID(ctx context.Context, userID string) *Envelope[UserProfile]
	GetUserByID(ctx context.Context, userID string) *Envelope[UserDashboard]
	UpdateAccountDetails(ctx context.Context, userID string, payload *UpdateUser) *Envelope[UpdateUser]
	UpdateAvatar(ctx context.Context, userID, filename string, file io.Reader) *Envelope[UpdateUser]
	FollowUser(ctx context.Context, targetUserID string) *Envelope[Empty]
	UnfollowUser(ctx context.Context, targetUserID string) *Envelope[Empty]
	GetFollowers(ctx context.Context, userID string) *Envelope[[]FollowUser]
	GetFollowing(ctx context.Context, userID string) *Envelope[[]FollowUser]
}

// AuthClient covers the /auth routes. Every method returns a non-nil
// envelope.
type AuthClient interface {
	Login(ctx context.Context, credentials *LoginCredentials) *Envelope[UserProfile]
	Logout(ctx context.Context) *Envelope[Empty]
	Register(ctx context.Context, payload *RegisterData) *Envelope[AuthEntity]
	ResetPassword(ctx context.Context, payload *ResetPassword) *Envelope[Empty]
	ListUsers(ctx context.Context, params *QueryParams) *Envelope[PaginatedData[AuthDashboard]]
	UpdateUser(ctx context.Context, userID string, payload *AuthDashboardUpdate) *Envelope[AuthDashboard]
	DeleteUser(ctx context.Context, userID string) *Envelope[Empty]
	BulkDeleteUsers(ctx context.Context, userIDs []string) *Envelope[BulkDeleteResult]
}

// Client is the gateway entry point.
type Client interface {
	Users() UsersClient
	Auth() AuthClient

	// Raw prefixed clients.
	AuthAPI() Requester
	UsersAPI() Requester
	Categories() Requester
	Blogs() Requester

	// SyncSession fetches the current profile. An unauthenticated result is
	// a normal outcome reported through the envelope.
	SyncSession(ctx context.Context) *Envelope[UserProfile]
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// LogoutHandler is notified when the session can no longer be recovered.
// It must not block for long; it runs on the request path.
type LogoutHandler func(ctx context.Context, code ErrorCode)

// RefreshTopology selects how refresh coordinators are shared between the
// prefixed clients of one gateway.
type RefreshTopology string

const (
	// TopologyShared uses one coordinator for every prefixed client so a
	// burst of expirations across prefixes issues one refresh call.
	TopologyShared RefreshTopology = "shared"
	// TopologyPerClient gives each prefixed client a private coordinator.
	TopologyPerClient RefreshTopology = "per-client"
	// TopologyNone disables refresh; ACCESS_TOKEN_EXPIRED propagates.
	TopologyNone RefreshTopology = "none"
)

// Valid reports whether t is a known topology. The empty value means shared.
func (t RefreshTopology) Valid() bool {
	switch t {
	case "", TopologyShared, TopologyPerClient, TopologyNone:
		return true
	default:
		return false
	}
}

// Config represents client configuration for building a gateway Client.
//
// # Credentials
//
// Tokens travel as cookies. Every client built from one Config shares
// CookieJar (a fresh jar is created when nil), so the refresh endpoint's
// Set-Cookie is seen by the replayed requests.
//
// # Timeouts and retries
//
// HTTPTimeout bounds every exchange, refresh calls included (15s default).
// Transport-level retries for 5xx and connection errors are off unless
// RetryMax > 0; a token-expired failure is never retried by the transport.
type Config struct {
	// BaseAddress: gateway URL (e.g. "http://localhost:5000/api/v1").
	// gwclient.New trims a trailing slash and adds "https://" if no scheme is
	// present.
	BaseAddress string

	// RefreshPath: refresh endpoint relative to BaseAddress. Defaults to
	// "/auth/refresh-token".
	RefreshPath string
	// RefreshTopology: see RefreshTopology. Defaults to TopologyShared.
	RefreshTopology RefreshTopology

	// HTTPTimeout: per-exchange timeout. Defaults to 15s.
	HTTPTimeout time.Duration
	// RetryMax: transport retries for transient failures. 0 disables.
	RetryMax int
	// RetryWaitMin: minimum backoff between transport retries.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between transport retries.
	RetryWaitMax time.Duration

	// Debug: enables request/response logging when a Logger is provided.
	// Errors are logged regardless.
	Debug bool
	// Logger: optional structured logger.
	Logger Logger
	// UserAgent: overrides the default User-Agent header.
	UserAgent string

	// CookieJar: shared credential store for every client.
	CookieJar http.CookieJar
	// OnForceLogout: called when a token code means the session is gone.
	OnForceLogout LogoutHandler
	// Metrics: optional per-endpoint metrics.
	Metrics *MetricsCollector
}
