package client

import (
	"context"
	"net/url"

	"github.com/quillpost/gateway-client/internal/constants"
	"github.com/quillpost/gateway-client/pkg/gateway"
	"golang.org/x/sync/errgroup"
)

// AuthService implements gateway.AuthClient over the /auth client.
type AuthService struct {
	client      gateway.Requester
	users       gateway.UsersClient
	concurrency int
}

// NewAuthService creates a new auth service. users is used by Login to load
// the profile of the freshly authenticated account.
func NewAuthService(client gateway.Requester, users gateway.UsersClient) *AuthService {
	return &AuthService{
		client:      client,
		users:       users,
		concurrency: constants.DefaultConcurrencyLimit,
	}
}

// Login implements gateway.AuthClient.Login. The tokens land in the cookie
// jar; the returned payload is the current user's profile.
func (s *AuthService) Login(ctx context.Context, credentials *gateway.LoginCredentials) *gateway.Envelope[gateway.UserProfile] {
	resp, err := s.client.Post(ctx, "/login", credentials)

	login := normalize[gateway.LoginResult](resp, err, "Login failed")
	if !login.Success {
		return gateway.Failure[gateway.UserProfile](login)
	}

	profile := s.users.GetCurrentUserProfile(ctx)
	if !profile.Success {
		if profile.Message == "" {
			profile.Message = "Failed to fetch user profile"
		}

		return profile
	}

	return gateway.Success(profile.Value(), gateway.WithMessage("Login successful"))
}

// Logout implements gateway.AuthClient.Logout.
func (s *AuthService) Logout(ctx context.Context) *gateway.Envelope[gateway.Empty] {
	resp, err := s.client.Post(ctx, "/logout", nil)

	return normalize[gateway.Empty](resp, err, "Error while logout!")
}

// Register implements gateway.AuthClient.Register.
func (s *AuthService) Register(ctx context.Context, payload *gateway.RegisterData) *gateway.Envelope[gateway.AuthEntity] {
	resp, err := s.client.Post(ctx, "/register", payload)

	return normalize[gateway.AuthEntity](resp, err, "Registration failed")
}

// ResetPassword implements gateway.AuthClient.ResetPassword.
func (s *AuthService) ResetPassword(ctx context.Context, payload *gateway.ResetPassword) *gateway.Envelope[gateway.Empty] {
	resp, err := s.client.Post(ctx, "/reset-password", payload)
	env := normalize[gateway.Empty](resp, err, "Password reset failed")

	return relabel(env, "Password reset successful")
}

// ListUsers implements gateway.AuthClient.ListUsers.
func (s *AuthService) ListUsers(ctx context.Context, params *gateway.QueryParams) *gateway.Envelope[gateway.PaginatedData[gateway.AuthDashboard]] {
	resp, err := s.client.Get(ctx, "/users", params.ToValues())

	return normalize[gateway.PaginatedData[gateway.AuthDashboard]](resp, err, "Failed to fetch users")
}

// UpdateUser implements gateway.AuthClient.UpdateUser.
func (s *AuthService) UpdateUser(ctx context.Context, userID string, payload *gateway.AuthDashboardUpdate) *gateway.Envelope[gateway.AuthDashboard] {
	if userID == "" {
		return missingUserID[gateway.AuthDashboard]()
	}

	resp, err := s.client.Patch(ctx, "/users/"+url.PathEscape(userID), payload)

	return normalize[gateway.AuthDashboard](resp, err, "Update failed")
}

// DeleteUser implements gateway.AuthClient.DeleteUser.
func (s *AuthService) DeleteUser(ctx context.Context, userID string) *gateway.Envelope[gateway.Empty] {
	if userID == "" {
		return missingUserID[gateway.Empty]()
	}

	resp, err := s.client.Delete(ctx, "/users/"+url.PathEscape(userID))

	return normalize[gateway.Empty](resp, err, "Failed to delete user")
}

// BulkDeleteUsers implements gateway.AuthClient.BulkDeleteUsers. Deletions
// run concurrently, at most DefaultConcurrencyLimit at a time. A partial
// failure is reported as a 207 handled error whose meta lists the outcome
// of every id.
func (s *AuthService) BulkDeleteUsers(ctx context.Context, userIDs []string) *gateway.Envelope[gateway.BulkDeleteResult] {
	outcomes := make([]bool, len(userIDs))

	var group errgroup.Group

	group.SetLimit(s.concurrency)

	for i, id := range userIDs {
		group.Go(func() error {
			outcomes[i] = s.DeleteUser(ctx, id).Success

			return nil
		})
	}

	_ = group.Wait()

	result := gateway.BulkDeleteResult{
		Deleted: []string{},
		Failed:  []string{},
	}

	for i, id := range userIDs {
		if outcomes[i] {
			result.Deleted = append(result.Deleted, id)
		} else {
			result.Failed = append(result.Failed, id)
		}
	}

	if len(result.Failed) > 0 {
		return gateway.HandledError[gateway.BulkDeleteResult]("Some users could not be deleted",
			gateway.WithStatusCode(constants.HTTPStatusMultiStatus),
			gateway.WithMeta(result),
		)
	}

	return gateway.Success(result, gateway.WithMessage("All users deleted successfully"))
}
