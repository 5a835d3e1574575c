package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/quillpost/gateway-client/internal/constants"
	"github.com/quillpost/gateway-client/pkg/gateway"
	"github.com/spf13/cobra"
)

// NewUsersCommand creates the users command group
func NewUsersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user", "u"},
		Short:   "Manage user profiles",
		Long:    "View and update profiles, avatars and follow relationships",
	}

	cmd.AddCommand(newUsersMeCommand())
	cmd.AddCommand(newUsersProfileCommand())
	cmd.AddCommand(newUsersGetCommand())
	cmd.AddCommand(newUsersUpdateCommand())
	cmd.AddCommand(newUsersAvatarCommand())
	cmd.AddCommand(newUsersFollowCommand())
	cmd.AddCommand(newUsersUnfollowCommand())
	cmd.AddCommand(newUsersFollowersCommand())
	cmd.AddCommand(newUsersFollowingCommand())

	return cmd
}

func newUsersMeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show your profile",
		Long:  "Display the profile of the logged in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), func(s *cliSession) error {
				env := s.gw.Users().GetCurrentUserProfile(cmd.Context())

				return renderEnvelope(env, []string{"Property", "Value"}, profileRows)
			})
		},
	}
}

func newUsersProfileCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "profile USER_ID",
		Short: "Show a public profile",
		Long:  "Display the public profile of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), func(s *cliSession) error {
				env := s.gw.Users().GetUserProfileByID(cmd.Context(), args[0])

				return renderEnvelope(env, []string{"Property", "Value"}, profileRows)
			})
		},
	}
}

func newUsersGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get USER_ID",
		Short: "Get user details",
		Long:  "Display the dashboard view of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), func(s *cliSession) error {
				env := s.gw.Users().GetUserByID(cmd.Context(), args[0])

				return renderEnvelope(env, []string{"Property", "Value"}, func(user gateway.UserDashboard) [][]string {
					return append(profileRows(user.UserProfile),
						[]string{"Status", orNotAvailable(user.Status)},
						[]string{"Blogs", fmt.Sprint(user.BlogCount)},
						[]string{"Updated", formatTime(user.UpdatedAt)},
					)
				})
			})
		},
	}
}

func newUsersUpdateCommand() *cobra.Command {
	var name, username, bio string

	cmd := &cobra.Command{
		Use:   "update USER_ID",
		Short: "Update account details",
		Long:  "Update the name, username or bio of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := &gateway.UpdateUser{Name: name, Username: username, Bio: bio}
			if *payload == (gateway.UpdateUser{}) {
				return constants.ErrNothingToUpdate
			}

			return run(cmd.Context(), func(s *cliSession) error {
				env := s.gw.Users().UpdateAccountDetails(cmd.Context(), args[0], payload)

				return renderEnvelope(env, []string{"Property", "Value"}, updateUserRows)
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new display name")
	cmd.Flags().StringVar(&username, "username", "", "new username")
	cmd.Flags().StringVar(&bio, "bio", "", "new bio")

	return cmd
}

func newUsersAvatarCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "avatar USER_ID",
		Short: "Upload an avatar",
		Long:  "Upload an image file as the account avatar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return constants.ErrAvatarRequired
			}

			// #nosec G304
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("failed to open avatar file: %w", err)
			}
			defer func() { _ = f.Close() }()

			return run(cmd.Context(), func(s *cliSession) error {
				env := s.gw.Users().UpdateAvatar(cmd.Context(), args[0], filepath.Base(file), f)

				return renderEnvelope(env, []string{"Property", "Value"}, updateUserRows)
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "image file to upload")

	return cmd
}

func newUsersFollowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "follow USER_ID",
		Short: "Follow a user",
		Long:  "Start following a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), func(s *cliSession) error {
				return renderEnvelope[gateway.Empty](s.gw.Users().FollowUser(cmd.Context(), args[0]), nil, nil)
			})
		},
	}
}

func newUsersUnfollowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unfollow USER_ID",
		Short: "Unfollow a user",
		Long:  "Stop following a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), func(s *cliSession) error {
				return renderEnvelope[gateway.Empty](s.gw.Users().UnfollowUser(cmd.Context(), args[0]), nil, nil)
			})
		},
	}
}

func newUsersFollowersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "followers USER_ID",
		Short: "List followers",
		Long:  "List the users following a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), func(s *cliSession) error {
				return renderEnvelope(s.gw.Users().GetFollowers(cmd.Context(), args[0]), followHeaders, followRows)
			})
		},
	}
}

func newUsersFollowingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "following USER_ID",
		Short: "List followed users",
		Long:  "List the users a user follows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), func(s *cliSession) error {
				return renderEnvelope(s.gw.Users().GetFollowing(cmd.Context(), args[0]), followHeaders, followRows)
			})
		},
	}
}

var followHeaders = []string{"ID", "Name", "Username"}

func followRows(users []gateway.FollowUser) [][]string {
	rows := make([][]string, 0, len(users))
	for _, user := range users {
		rows = append(rows, []string{user.ID, user.Name, orNotAvailable(user.Username)})
	}

	return rows
}

func updateUserRows(user gateway.UpdateUser) [][]string {
	return [][]string{
		{"Name", orNotAvailable(user.Name)},
		{"Username", orNotAvailable(user.Username)},
		{"Bio", orNotAvailable(user.Bio)},
		{"Avatar", orNotAvailable(user.Avatar)},
	}
}
