package client_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/quillpost/gateway-client/internal/client"
	gwhttp "github.com/quillpost/gateway-client/internal/http"
	"github.com/quillpost/gateway-client/pkg/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUsersService(t *testing.T, handler http.HandlerFunc) *UsersService {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewUsersService(gwhttp.NewClient(server.URL, nil, gwhttp.WithPrefix("/users")))
}

func TestUsersService_Routes(t *testing.T) {
	t.Parallel()

	type call func(ctx context.Context, s *UsersService) (bool, string)

	tests := []struct {
		name        string
		method      string
		path        string
		wantMessage string
		call        call
	}{
		{
			name: "current profile", method: http.MethodGet, path: "/users/me", wantMessage: "Profile fetched successfully",
			call: func(ctx context.Context, s *UsersService) (bool, string) {
				env := s.GetCurrentUserProfile(ctx)

				return env.Success, env.Message
			},
		},
		{
			name: "profile by id", method: http.MethodGet, path: "/users/profile/u1", wantMessage: "User profile fetched",
			call: func(ctx context.Context, s *UsersService) (bool, string) {
				env := s.GetUserProfileByID(ctx, "u1")

				return env.Success, env.Message
			},
		},
		{
			name: "user by id", method: http.MethodGet, path: "/users/u1", wantMessage: "User fetched successfully",
			call: func(ctx context.Context, s *UsersService) (bool, string) {
				env := s.GetUserByID(ctx, "u1")

				return env.Success, env.Message
			},
		},
		{
			name: "update account", method: http.MethodPatch, path: "/users/u1", wantMessage: "Account updated successfully",
			call: func(ctx context.Context, s *UsersService) (bool, string) {
				env := s.UpdateAccountDetails(ctx, "u1", &gateway.UpdateUser{Bio: "hello"})

				return env.Success, env.Message
			},
		},
		{
			name: "follow", method: http.MethodPost, path: "/users/follow/u2", wantMessage: "User followed successfully",
			call: func(ctx context.Context, s *UsersService) (bool, string) {
				env := s.FollowUser(ctx, "u2")

				return env.Success, env.Message
			},
		},
		{
			name: "unfollow", method: http.MethodDelete, path: "/users/unfollow/u2", wantMessage: "User unfollowed successfully",
			call: func(ctx context.Context, s *UsersService) (bool, string) {
				env := s.UnfollowUser(ctx, "u2")

				return env.Success, env.Message
			},
		},
		{
			name: "followers", method: http.MethodGet, path: "/users/u1/followers", wantMessage: "Followers fetched",
			call: func(ctx context.Context, s *UsersService) (bool, string) {
				env := s.GetFollowers(ctx, "u1")

				return env.Success, env.Message
			},
		},
		{
			name: "following", method: http.MethodGet, path: "/users/u1/following", wantMessage: "Following fetched",
			call: func(ctx context.Context, s *UsersService) (bool, string) {
				env := s.GetFollowing(ctx, "u1")

				return env.Success, env.Message
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			service := newUsersService(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.method, r.Method)
				assert.Equal(t, tt.path, r.URL.Path)
				writeEnvelope(w, http.StatusOK, map[string]any{"success": true, "message": "backend says ok"})
			})

			success, message := tt.call(context.Background(), service)

			assert.True(t, success)
			assert.Equal(t, tt.wantMessage, message)
		})
	}
}

func TestUsersService_DecodesPayload(t *testing.T) {
	t.Parallel()

	service := newUsersService(t, func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "ok",
			"data": []map[string]any{
				{"id": "u2", "name": "Grace"},
				{"id": "u3", "name": "Linus"},
			},
		})
	})

	env := service.GetFollowers(context.Background(), "u1")

	require.True(t, env.Success)
	require.Len(t, env.Value(), 2)
	assert.Equal(t, "Grace", env.Value()[0].Name)
}

func TestUsersService_EscapesIDs(t *testing.T) {
	t.Parallel()

	service := newUsersService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/profile/a%2Fb", r.URL.EscapedPath())
		writeEnvelope(w, http.StatusOK, map[string]any{"success": true})
	})

	env := service.GetUserProfileByID(context.Background(), "a/b")
	assert.True(t, env.Success)
}

func TestUsersService_EmptyIDs(t *testing.T) {
	t.Parallel()

	service := newUsersService(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected")
	})

	ctx := context.Background()

	envelopes := []*gateway.Envelope[gateway.Empty]{
		service.FollowUser(ctx, ""),
		service.UnfollowUser(ctx, ""),
	}
	for _, env := range envelopes {
		assert.Equal(t, gateway.KindHandledError, env.Kind())
		assert.Equal(t, "user id is required", env.Message)
		assert.Equal(t, http.StatusBadRequest, env.StatusCode)
	}

	assert.False(t, service.GetUserByID(ctx, "").Success)
	assert.False(t, service.GetFollowing(ctx, "").Success)
	assert.False(t, service.UpdateAvatar(ctx, "", "a.png", strings.NewReader("x")).Success)
}

func TestUsersService_HandledError(t *testing.T) {
	t.Parallel()

	service := newUsersService(t, func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, http.StatusNotFound, map[string]any{
			"success":    false,
			"message":    "User not found",
			"statusCode": http.StatusNotFound,
			"errors":     []map[string]any{{"field": "id", "message": "unknown"}},
		})
	})

	env := service.GetUserByID(context.Background(), "missing")

	assert.Equal(t, gateway.KindHandledError, env.Kind())
	assert.Equal(t, "User not found", env.Message)
	assert.Equal(t, http.StatusNotFound, env.StatusCode)
	assert.NotNil(t, env.Errors)
	assert.Nil(t, env.Data)
}

func TestUsersService_UnhandledError(t *testing.T) {
	t.Parallel()

	service := newUsersService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	})

	env := service.GetCurrentUserProfile(context.Background())

	assert.Equal(t, gateway.KindUnhandledError, env.Kind())
	assert.Equal(t, http.StatusInternalServerError, env.StatusCode)
	assert.Contains(t, env.Message, "502")
}

func TestUsersService_UpdateAvatar(t *testing.T) {
	t.Parallel()

	service := newUsersService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/users/u1/avatar", r.URL.Path)
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data; boundary="))

		file, header, err := r.FormFile("avatar")
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()

		content, _ := io.ReadAll(file)
		assert.Equal(t, "me.png", header.Filename)
		assert.Equal(t, "png-bytes", string(content))

		writeEnvelope(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "uploaded",
			"data":    map[string]any{"avatar": "https://cdn.quill.dev/u1.png"},
		})
	})

	env := service.UpdateAvatar(context.Background(), "u1", "me.png", strings.NewReader("png-bytes"))

	require.True(t, env.Success, env.Message)
	assert.Equal(t, "Avatar updated successfully", env.Message)
	assert.Equal(t, "https://cdn.quill.dev/u1.png", env.Value().Avatar)
}

func TestUsersService_UpdateAccountDetailsBody(t *testing.T) {
	t.Parallel()

	service := newUsersService(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any

		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"name": "Ada", "bio": "math"}, body)
		writeEnvelope(w, http.StatusOK, map[string]any{"success": true, "data": body})
	})

	env := service.UpdateAccountDetails(context.Background(), "u1", &gateway.UpdateUser{Name: "Ada", Bio: "math"})

	require.True(t, env.Success)
	assert.Equal(t, "Ada", env.Value().Name)
}
