package commands

import (
	"strconv"
	"time"

	"github.com/quillpost/gateway-client/internal/auth"
	"github.com/quillpost/gateway-client/internal/constants"
	"github.com/spf13/cobra"
)

// sessionInfo is the printable form of the stored session.
type sessionInfo struct {
	Endpoint        string `json:"endpoint"                  yaml:"endpoint"`
	Authenticated   bool   `json:"authenticated"             yaml:"authenticated"`
	HasAccessToken  bool   `json:"hasAccessToken"            yaml:"has_access_token"`
	HasRefreshToken bool   `json:"hasRefreshToken"           yaml:"has_refresh_token"`
	Subject         string `json:"subject,omitempty"         yaml:"subject,omitempty"`
	Email           string `json:"email,omitempty"           yaml:"email,omitempty"`
	Role            string `json:"role,omitempty"            yaml:"role,omitempty"`
	ExpiresIn       string `json:"expiresIn,omitempty"       yaml:"expires_in,omitempty"`
	AccessTokenHint string `json:"accessTokenHint,omitempty" yaml:"access_token_hint,omitempty"`
}

// NewSessionCommand creates the session command group
func NewSessionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect the stored session",
		Long:  "Inspect, verify and clear the session cookies stored for the configured gateway",
	}

	cmd.AddCommand(newSessionShowCommand())
	cmd.AddCommand(newSessionSyncCommand())
	cmd.AddCommand(newSessionClearCommand())

	return cmd
}

func newSessionShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the stored session",
		Long:  "Decode the stored access token without contacting the gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer session.close()

			inspected, err := auth.InspectSession(session.gw.Jar(), session.endpoint, constants.RefreshTokenPath)
			if err != nil {
				return err
			}

			info := describeSession(inspected)

			return outputValue(info, []string{"Property", "Value"}, sessionRows(info))
		},
	}
}

func newSessionSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Verify the session with the gateway",
		Long:  "Fetch the current profile, refreshing the access token when it has expired",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), func(s *cliSession) error {
				return renderEnvelope(s.gw.SyncSession(cmd.Context()), []string{"Property", "Value"}, profileRows)
			})
		},
	}
}

func newSessionClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget the stored session",
		Long:  "Remove the stored session cookies without contacting the gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := DefaultSessionStore()
			if err != nil {
				return err
			}

			err = store.Clear()
			if err != nil {
				return err
			}

			return outputConfigUpdateResult("Cleared", "session", "")
		},
	}
}

func describeSession(session *auth.Session) sessionInfo {
	info := sessionInfo{
		Endpoint:        session.Endpoint,
		Authenticated:   session.Authenticated(),
		HasAccessToken:  session.HasAccessToken,
		HasRefreshToken: session.HasRefreshToken,
	}

	if session.Access != nil {
		info.Subject = session.Access.Subject
		info.Email = session.Access.Email
		info.Role = session.Access.Role
		info.AccessTokenHint = maskValue(session.Access.Raw)

		if session.Access.Valid() {
			info.ExpiresIn = session.Access.ExpiresIn().Round(time.Second).String()
		} else {
			info.ExpiresIn = "expired"
		}
	}

	return info
}

func sessionRows(info sessionInfo) [][]string {
	return [][]string{
		{"Endpoint", info.Endpoint},
		{"Authenticated", strconv.FormatBool(info.Authenticated)},
		{"Access Token", strconv.FormatBool(info.HasAccessToken)},
		{"Refresh Token", strconv.FormatBool(info.HasRefreshToken)},
		{"Subject", orNotAvailable(info.Subject)},
		{"Email", orNotAvailable(info.Email)},
		{"Role", orNotAvailable(info.Role)},
		{"Expires In", orNotAvailable(info.ExpiresIn)},
		{"Token", orNotAvailable(info.AccessTokenHint)},
	}
}
