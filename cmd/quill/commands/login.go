package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/quillpost/gateway-client/internal/constants"
	"github.com/quillpost/gateway-client/pkg/gateway"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewLoginCommand creates the login command
func NewLoginCommand() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the gateway",
		Long:  "Authenticate with the configured gateway and store the session cookies",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				email = prompt("Email: ")
			}

			if email == "" {
				return constants.ErrEmailRequired
			}

			if password == "" {
				var err error

				password, err = readPassword("Password: ")
				if err != nil {
					return err
				}
			}

			if password == "" {
				return constants.ErrPasswordRequired
			}

			return run(cmd.Context(), func(s *cliSession) error {
				env := s.gw.Auth().Login(cmd.Context(), &gateway.LoginCredentials{Email: email, Password: password})

				return renderEnvelope(env, []string{"Property", "Value"}, profileRows)
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when omitted)")

	return cmd
}

// NewLogoutCommand creates the logout command
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out of the gateway",
		Long:  "End the gateway session and remove the stored session cookies",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer session.close()

			env := session.gw.Auth().Logout(cmd.Context())

			// The local session is dropped even when the gateway call fails.
			err = session.end()
			if err != nil {
				return err
			}

			return renderEnvelope[gateway.Empty](env, nil, nil)
		},
	}
}

// NewRegisterCommand creates the register command
func NewRegisterCommand() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new account",
		Long:  "Create a new account on the configured gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return constants.ErrEmailRequired
			}

			if password == "" {
				var err error

				password, err = readPassword("Password: ")
				if err != nil {
					return err
				}
			}

			if password == "" {
				return constants.ErrPasswordRequired
			}

			return run(cmd.Context(), func(s *cliSession) error {
				env := s.gw.Auth().Register(cmd.Context(), &gateway.RegisterData{Name: name, Email: email, Password: password})

				return renderEnvelope(env, []string{"Property", "Value"}, authEntityRows)
			})
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when omitted)")

	return cmd
}

// NewResetPasswordCommand creates the reset-password command
func NewResetPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password",
		Short: "Change the account password",
		Long:  "Change the password of the logged in account. Both passwords are prompted for",
		RunE: func(cmd *cobra.Command, args []string) error {
			oldPassword, err := readPassword("Current password: ")
			if err != nil {
				return err
			}

			newPassword, err := readPassword("New password: ")
			if err != nil {
				return err
			}

			if oldPassword == "" || newPassword == "" {
				return constants.ErrPasswordRequired
			}

			return run(cmd.Context(), func(s *cliSession) error {
				env := s.gw.Auth().ResetPassword(cmd.Context(), &gateway.ResetPassword{
					OldPassword: oldPassword,
					NewPassword: newPassword,
				})

				return renderEnvelope[gateway.Empty](env, nil, nil)
			})
		},
	}
}

func prompt(label string) string {
	fmt.Print(label)

	reader := bufio.NewReader(os.Stdin)
	value, _ := reader.ReadString('\n')

	return strings.TrimSpace(value)
}

func readPassword(label string) (string, error) {
	fmt.Print(label)

	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()

	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	return string(password), nil
}

func authEntityRows(entity gateway.AuthEntity) [][]string {
	return [][]string{
		{"ID", entity.ID},
		{"Email", entity.Email},
		{"Role", orNotAvailable(entity.Role)},
		{"Status", orNotAvailable(entity.Status)},
		{"Created", formatTime(entity.CreatedAt)},
	}
}
