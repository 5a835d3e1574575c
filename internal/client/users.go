package client

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/quillpost/gateway-client/internal/constants"
	"github.com/quillpost/gateway-client/pkg/gateway"
)

// UsersService implements gateway.UsersClient over the /users client.
type UsersService struct {
	client gateway.Requester
}

// NewUsersService creates a new users service.
func NewUsersService(client gateway.Requester) *UsersService {
	return &UsersService{
		client: client,
	}
}

// GetCurrentUserProfile implements gateway.UsersClient.GetCurrentUserProfile.
func (s *UsersService) GetCurrentUserProfile(ctx context.Context) *gateway.Envelope[gateway.UserProfile] {
	resp, err := s.client.Get(ctx, "/me", nil)
	env := normalize[gateway.UserProfile](resp, err, "Failed to fetch user profile")

	return relabel(env, "Profile fetched successfully")
}

// GetUserProfileByID implements gateway.UsersClient.GetUserProfileByID.
func (s *UsersService) GetUserProfileByID(ctx context.Context, userID string) *gateway.Envelope[gateway.UserProfile] {
	if userID == "" {
		return missingUserID[gateway.UserProfile]()
	}

	resp, err := s.client.Get(ctx, "/profile/"+url.PathEscape(userID), nil)
	env := normalize[gateway.UserProfile](resp, err, "Failed to fetch user profile")

	return relabel(env, "User profile fetched")
}

// GetUserByID implements gateway.UsersClient.GetUserByID.
func (s *UsersService) GetUserByID(ctx context.Context, userID string) *gateway.Envelope[gateway.UserDashboard] {
	if userID == "" {
		return missingUserID[gateway.UserDashboard]()
	}

	resp, err := s.client.Get(ctx, "/"+url.PathEscape(userID), nil)
	env := normalize[gateway.UserDashboard](resp, err, "Failed to fetch user")

	return relabel(env, "User fetched successfully")
}

// UpdateAccountDetails implements gateway.UsersClient.UpdateAccountDetails.
func (s *UsersService) UpdateAccountDetails(ctx context.Context, userID string, payload *gateway.UpdateUser) *gateway.Envelope[gateway.UpdateUser] {
	if userID == "" {
		return missingUserID[gateway.UpdateUser]()
	}

	resp, err := s.client.Patch(ctx, "/"+url.PathEscape(userID), payload)
	env := normalize[gateway.UpdateUser](resp, err, "Failed to update account")

	return relabel(env, "Account updated successfully")
}

// UpdateAvatar implements gateway.UsersClient.UpdateAvatar. The file is
// sent as the "avatar" field of a multipart form.
func (s *UsersService) UpdateAvatar(ctx context.Context, userID, filename string, file io.Reader) *gateway.Envelope[gateway.UpdateUser] {
	if userID == "" {
		return missingUserID[gateway.UpdateUser]()
	}

	body, contentType, err := avatarForm(filename, file)
	if err != nil {
		return gateway.UnhandledError[gateway.UpdateUser]("Failed to update avatar: "+err.Error(), nil)
	}

	// The form is sent as bytes so a replay after refresh resends it whole.
	resp, err := s.client.Request(ctx, http.MethodPatch, "/"+url.PathEscape(userID)+"/avatar", body, map[string]string{
		constants.HeaderContentType: contentType,
	})
	env := normalize[gateway.UpdateUser](resp, err, "Failed to update avatar")

	return relabel(env, "Avatar updated successfully")
}

func avatarForm(filename string, file io.Reader) ([]byte, string, error) {
	var buf bytes.Buffer

	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("avatar", filename)
	if err != nil {
		return nil, "", err
	}

	_, err = io.Copy(part, file)
	if err != nil {
		return nil, "", err
	}

	err = writer.Close()
	if err != nil {
		return nil, "", err
	}

	return buf.Bytes(), writer.FormDataContentType(), nil
}

// FollowUser implements gateway.UsersClient.FollowUser.
func (s *UsersService) FollowUser(ctx context.Context, targetUserID string) *gateway.Envelope[gateway.Empty] {
	if targetUserID == "" {
		return missingUserID[gateway.Empty]()
	}

	resp, err := s.client.Post(ctx, "/follow/"+url.PathEscape(targetUserID), nil)
	env := normalize[gateway.Empty](resp, err, "Failed to follow user")

	return relabel(env, "User followed successfully")
}

// UnfollowUser implements gateway.UsersClient.UnfollowUser.
func (s *UsersService) UnfollowUser(ctx context.Context, targetUserID string) *gateway.Envelope[gateway.Empty] {
	if targetUserID == "" {
		return missingUserID[gateway.Empty]()
	}

	resp, err := s.client.Delete(ctx, "/unfollow/"+url.PathEscape(targetUserID))
	env := normalize[gateway.Empty](resp, err, "Failed to unfollow user")

	return relabel(env, "User unfollowed successfully")
}

// GetFollowers implements gateway.UsersClient.GetFollowers.
func (s *UsersService) GetFollowers(ctx context.Context, userID string) *gateway.Envelope[[]gateway.FollowUser] {
	if userID == "" {
		return missingUserID[[]gateway.FollowUser]()
	}

	resp, err := s.client.Get(ctx, "/"+url.PathEscape(userID)+"/followers", nil)
	env := normalize[[]gateway.FollowUser](resp, err, "Failed to fetch followers")

	return relabel(env, "Followers fetched")
}

// GetFollowing implements gateway.UsersClient.GetFollowing.
func (s *UsersService) GetFollowing(ctx context.Context, userID string) *gateway.Envelope[[]gateway.FollowUser] {
	if userID == "" {
		return missingUserID[[]gateway.FollowUser]()
	}

	resp, err := s.client.Get(ctx, "/"+url.PathEscape(userID)+"/following", nil)
	env := normalize[[]gateway.FollowUser](resp, err, "Failed to fetch following")

	return relabel(env, "Following fetched")
}

func missingUserID[T any]() *gateway.Envelope[T] {
	return gateway.HandledError[T](gateway.ErrUserIDRequired.Error())
}
