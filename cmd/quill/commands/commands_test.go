package commands

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func subcommandNames(cmd *cobra.Command) []string {
	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}

	return names
}

func findSubcommand(cmd *cobra.Command, name string) *cobra.Command {
	for _, sub := range cmd.Commands() {
		if sub.Name() == name {
			return sub
		}
	}

	return nil
}

func TestNewLoginCommand(t *testing.T) {
	cmd := NewLoginCommand()
	assert.Equal(t, "login", cmd.Use)
	assert.Equal(t, "Log in to the gateway", cmd.Short)
	assert.NotNil(t, cmd.RunE)

	for _, flagName := range []string{"email", "password"} {
		assert.NotNil(t, cmd.Flags().Lookup(flagName), "Flag %s should exist", flagName)
	}

	assert.Equal(t, "p", cmd.Flags().Lookup("password").Shorthand)
	assert.Empty(t, cmd.Flags().Lookup("email").Shorthand)
}

func TestNewLogoutCommand(t *testing.T) {
	cmd := NewLogoutCommand()
	assert.Equal(t, "logout", cmd.Use)
	assert.NotNil(t, cmd.RunE)
}

func TestNewRegisterCommand(t *testing.T) {
	cmd := NewRegisterCommand()
	assert.Equal(t, "register", cmd.Use)

	for _, flagName := range []string{"name", "email", "password"} {
		assert.NotNil(t, cmd.Flags().Lookup(flagName), "Flag %s should exist", flagName)
	}
}

func TestNewResetPasswordCommand(t *testing.T) {
	cmd := NewResetPasswordCommand()
	assert.Equal(t, "reset-password", cmd.Use)
	assert.Nil(t, cmd.Flags().Lookup("password"))
	assert.NotNil(t, cmd.RunE)
}

func TestNewUsersCommand(t *testing.T) {
	cmd := NewUsersCommand()
	assert.Equal(t, "users", cmd.Use)
	assert.Equal(t, []string{"user", "u"}, cmd.Aliases)
	assert.Equal(t, "Manage user profiles", cmd.Short)

	assert.ElementsMatch(t, []string{
		"me", "profile", "get", "update", "avatar", "follow", "unfollow", "followers", "following",
	}, subcommandNames(cmd))
}

func TestUsersSubcommands(t *testing.T) {
	tests := []struct {
		name  string
		use   string
		flags []string
	}{
		{name: "me", use: "me"},
		{name: "profile", use: "profile USER_ID"},
		{name: "get", use: "get USER_ID"},
		{name: "update", use: "update USER_ID", flags: []string{"name", "username", "bio"}},
		{name: "avatar", use: "avatar USER_ID", flags: []string{"file"}},
		{name: "follow", use: "follow USER_ID"},
		{name: "unfollow", use: "unfollow USER_ID"},
		{name: "followers", use: "followers USER_ID"},
		{name: "following", use: "following USER_ID"},
	}

	users := NewUsersCommand()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := findSubcommand(users, tt.name)
			require.NotNil(t, cmd)

			assert.Equal(t, tt.use, cmd.Use)
			assert.NotNil(t, cmd.RunE)

			for _, flagName := range tt.flags {
				assert.NotNil(t, cmd.Flags().Lookup(flagName), "Flag %s should exist", flagName)
			}

			if tt.use != "me" {
				assert.Error(t, cmd.Args(cmd, nil))
				assert.NoError(t, cmd.Args(cmd, []string{"u1"}))
			}
		})
	}
}

func TestNewAdminCommand(t *testing.T) {
	cmd := NewAdminCommand()
	assert.Equal(t, "admin", cmd.Use)

	users := findSubcommand(cmd, "users")
	require.NotNil(t, users)
	assert.ElementsMatch(t, []string{"list", "update", "delete"}, subcommandNames(users))

	list := findSubcommand(users, "list")
	for _, flagName := range []string{"page", "limit", "search", "sort-by", "sort-order"} {
		assert.NotNil(t, list.Flags().Lookup(flagName), "Flag %s should exist", flagName)
	}

	update := findSubcommand(users, "update")
	for _, flagName := range []string{"role", "status", "verified"} {
		assert.NotNil(t, update.Flags().Lookup(flagName), "Flag %s should exist", flagName)
	}

	del := findSubcommand(users, "delete")
	assert.Error(t, del.Args(del, nil))
	assert.NoError(t, del.Args(del, []string{"a", "b", "c"}))
}

func TestNewRequestCommand(t *testing.T) {
	cmd := NewRequestCommand()
	assert.Equal(t, "request METHOD PATH", cmd.Use)
	assert.Equal(t, "/blogs", cmd.Flags().Lookup("prefix").DefValue)
	assert.NotNil(t, cmd.Flags().Lookup("data"))
	assert.NotNil(t, cmd.Flags().Lookup("stats"))
	assert.Error(t, cmd.Args(cmd, []string{"GET"}))
}

func TestNewSessionCommand(t *testing.T) {
	cmd := NewSessionCommand()
	assert.Equal(t, "session", cmd.Use)
	assert.ElementsMatch(t, []string{"show", "sync", "clear"}, subcommandNames(cmd))
}

func TestNewConfigCommand(t *testing.T) {
	cmd := NewConfigCommand()
	assert.Equal(t, "config", cmd.Use)
	assert.ElementsMatch(t, []string{"show", "set", "unset", "clear"}, subcommandNames(cmd))

	set := findSubcommand(cmd, "set")
	assert.Equal(t, "set KEY VALUE", set.Use)
	assert.Error(t, set.Args(set, []string{"endpoint"}))
}

func TestNewVersionCommand(t *testing.T) {
	cmd := NewVersionCommand("1.2.3", "abc123", "2026-01-01")
	assert.Equal(t, "version", cmd.Use)
	assert.Equal(t, "Display version information", cmd.Short)
	assert.NotNil(t, cmd.RunE)
}
