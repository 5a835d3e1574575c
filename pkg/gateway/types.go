package gateway

import (
	"net/url"
	"strconv"
	"time"
)

// Empty is the payload of calls that return no data.
type Empty struct{}

// UserProfile is the public profile of a platform user.
type UserProfile struct {
	ID             string    `json:"id"                       yaml:"id"`
	Name           string    `json:"name"                     yaml:"name"`
	Username       string    `json:"username,omitempty"       yaml:"username,omitempty"`
	Email          string    `json:"email,omitempty"          yaml:"email,omitempty"`
	Avatar         string    `json:"avatar,omitempty"         yaml:"avatar,omitempty"`
	Bio            string    `json:"bio,omitempty"            yaml:"bio,omitempty"`
	Role           string    `json:"role,omitempty"           yaml:"role,omitempty"`
	FollowersCount int       `json:"followersCount,omitempty" yaml:"followers_count,omitempty"`
	FollowingCount int       `json:"followingCount,omitempty" yaml:"following_count,omitempty"`
	IsFollowing    bool      `json:"isFollowing,omitempty"    yaml:"is_following,omitempty"`
	CreatedAt      time.Time `json:"createdAt,omitzero"       yaml:"created_at,omitempty"`
}

// UserDashboard is the admin/permission-scoped view of a user.
type UserDashboard struct {
	UserProfile `yaml:",inline"`

	Status    string    `json:"status,omitempty"    yaml:"status,omitempty"`
	BlogCount int       `json:"blogCount,omitempty" yaml:"blog_count,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"  yaml:"updated_at,omitempty"`
}

// UpdateUser is the editable subset of account details.
type UpdateUser struct {
	Name     string `json:"name,omitempty"     yaml:"name,omitempty"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Bio      string `json:"bio,omitempty"      yaml:"bio,omitempty"`
	Avatar   string `json:"avatar,omitempty"   yaml:"avatar,omitempty"`
}

// FollowUser is an entry of a followers/following list.
type FollowUser struct {
	ID       string `json:"id"                 yaml:"id"`
	Name     string `json:"name"               yaml:"name"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Avatar   string `json:"avatar,omitempty"   yaml:"avatar,omitempty"`
}

// LoginCredentials is the login request body.
type LoginCredentials struct {
	Email    string `json:"email"    yaml:"email"`
	Password string `json:"password" yaml:"-"`
}

// LoginResult is the login response payload. Tokens also arrive as cookies.
type LoginResult struct {
	User         UserProfile `json:"user"                   yaml:"user"`
	AccessToken  string      `json:"accessToken,omitempty"  yaml:"-"`
	RefreshToken string      `json:"refreshToken,omitempty" yaml:"-"`
}

// RegisterData is the registration request body.
type RegisterData struct {
	Name     string `json:"name"     yaml:"name"`
	Email    string `json:"email"    yaml:"email"`
	Password string `json:"password" yaml:"-"`
}

// ResetPassword is the password reset request body.
type ResetPassword struct {
	OldPassword string `json:"oldPassword" yaml:"-"`
	NewPassword string `json:"newPassword" yaml:"-"`
}

// AuthEntity is the credential record created on registration.
type AuthEntity struct {
	ID        string    `json:"id"                 yaml:"id"`
	Email     string    `json:"email"              yaml:"email"`
	Role      string    `json:"role,omitempty"     yaml:"role,omitempty"`
	Status    string    `json:"status,omitempty"   yaml:"status,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero" yaml:"created_at,omitempty"`
}

// AuthDashboard is the admin view of a credential record.
type AuthDashboard struct {
	ID         string    `json:"id"                   yaml:"id"`
	Email      string    `json:"email"                yaml:"email"`
	Role       string    `json:"role"                 yaml:"role"`
	Status     string    `json:"status"               yaml:"status"`
	IsVerified bool      `json:"isVerified"           yaml:"is_verified"`
	LastLogin  time.Time `json:"lastLogin,omitzero"   yaml:"last_login,omitempty"`
	CreatedAt  time.Time `json:"createdAt,omitzero"   yaml:"created_at,omitempty"`
}

// AuthDashboardUpdate is a partial update of a credential record.
type AuthDashboardUpdate struct {
	Role       *string `json:"role,omitempty"       yaml:"role,omitempty"`
	Status     *string `json:"status,omitempty"     yaml:"status,omitempty"`
	IsVerified *bool   `json:"isVerified,omitempty" yaml:"is_verified,omitempty"`
}

// PaginatedData is a page of results.
type PaginatedData[T any] struct {
	Data []T            `json:"data" yaml:"data"`
	Meta PaginationMeta `json:"meta" yaml:"meta"`
}

// PaginationMeta describes the page returned.
type PaginationMeta struct {
	Page       int `json:"page"       yaml:"page"`
	Limit      int `json:"limit"      yaml:"limit"`
	Total      int `json:"total"      yaml:"total"`
	TotalPages int `json:"totalPages" yaml:"total_pages"`
}

// BulkDeleteResult reports per-id outcomes of a bulk delete.
type BulkDeleteResult struct {
	Deleted []string `json:"deleted" yaml:"deleted"`
	Failed  []string `json:"failed"  yaml:"failed"`
}

// QueryParams are the list parameters accepted by paginated endpoints.
type QueryParams struct {
	Page      int
	Limit     int
	Search    string
	SortBy    string
	SortOrder string
}

// ToValues converts QueryParams to url.Values, skipping zero fields.
func (q *QueryParams) ToValues() url.Values {
	values := url.Values{}
	if q == nil {
		return values
	}

	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}

	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}

	if q.Search != "" {
		values.Set("search", q.Search)
	}

	if q.SortBy != "" {
		values.Set("sortBy", q.SortBy)
	}

	if q.SortOrder != "" {
		values.Set("sortOrder", q.SortOrder)
	}

	return values
}
