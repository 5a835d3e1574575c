package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration and session files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout bounds every gateway exchange, refresh calls included.
	DefaultHTTPTimeout = 15 * time.Second
)

// Retry and concurrency limits.
const (
	// DefaultRetryMax disables transport retries unless configured.
	DefaultRetryMax = 0

	// DefaultRetryWaitMin is the minimum wait between transport retries.
	DefaultRetryWaitMin = 500 * time.Millisecond

	// DefaultRetryWaitMax is the maximum wait between transport retries.
	DefaultRetryWaitMax = 10 * time.Second

	// DefaultConcurrencyLimit limits concurrent bulk operations.
	DefaultConcurrencyLimit = 3
)

// Gateway routes.
const (
	// RefreshTokenPath is the refresh endpoint, relative to the gateway base.
	RefreshTokenPath = "/auth/refresh-token"

	// PrefixAuth serves the auth routes.
	PrefixAuth = "/auth"

	// PrefixUsers serves the user routes.
	PrefixUsers = "/users"

	// PrefixCategories serves the category routes.
	PrefixCategories = "/categories"

	// PrefixBlogs serves the blog routes.
	PrefixBlogs = "/blogs"
)

// Cookie names used by the gateway for session tokens.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// HTTP headers and media types.
const (
	HeaderContentType = "Content-Type"
	HeaderAccept      = "Accept"
	MediaTypeJSON     = "application/json"

	// DefaultUserAgent is sent unless overridden.
	DefaultUserAgent = "quill-gateway-client/1.0"
)

// HTTP status codes commonly used.
const (
	// HTTPStatusMultiStatus reports a partially successful bulk operation.
	HTTPStatusMultiStatus = 207
)

// Format constants.
const (
	// FormatTable for table output format.
	FormatTable = "table"

	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// JSONIndentSize is the number of spaces for JSON indentation.
	JSONIndentSize = 2
)

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"

	// TokenExpirationBuffer treats tokens this close to expiry as expired.
	TokenExpirationBuffer = 30 * time.Second

	// TokenPartsCount is the expected number of parts in a JWT token.
	TokenPartsCount = 3
)

// Notification subjects.
const (
	// DefaultLogoutSubject is the NATS subject forced logouts are published on.
	DefaultLogoutSubject = "quill.session.logout"
)
