package commands

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/quillpost/gateway-client/internal/constants"
	"github.com/quillpost/gateway-client/pkg/gateway"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewAdminCommand creates the admin command group
func NewAdminCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrative operations",
		Long:  "Manage the credential records of all accounts. Requires an admin session",
	}

	users := &cobra.Command{
		Use:   "users",
		Short: "Manage accounts",
		Long:  "List, update and delete account credential records",
	}

	users.AddCommand(newAdminUsersListCommand())
	users.AddCommand(newAdminUsersUpdateCommand())
	users.AddCommand(newAdminUsersDeleteCommand())

	cmd.AddCommand(users)

	return cmd
}

var authDashboardHeaders = []string{"ID", "Email", "Role", "Status", "Verified", "Last Login"}

func authDashboardRow(user gateway.AuthDashboard) []string {
	return []string{
		user.ID,
		user.Email,
		user.Role,
		user.Status,
		strconv.FormatBool(user.IsVerified),
		formatTime(user.LastLogin),
	}
}

func newAdminUsersListCommand() *cobra.Command {
	params := &gateway.QueryParams{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Long:  "List account credential records page by page",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), func(s *cliSession) error {
				env := s.gw.Auth().ListUsers(cmd.Context(), params)

				err := renderEnvelope(env, authDashboardHeaders, func(page gateway.PaginatedData[gateway.AuthDashboard]) [][]string {
					rows := make([][]string, 0, len(page.Data))
					for _, user := range page.Data {
						rows = append(rows, authDashboardRow(user))
					}

					return rows
				})
				if err != nil {
					return err
				}

				if viper.GetString("output") == constants.FormatTable {
					meta := env.Value().Meta
					fmt.Printf("Page %d of %d (%d total)\n", meta.Page, meta.TotalPages, meta.Total)
				}

				return nil
			})
		},
	}

	cmd.Flags().IntVar(&params.Page, "page", 0, "page number")
	cmd.Flags().IntVar(&params.Limit, "limit", 0, "page size")
	cmd.Flags().StringVar(&params.Search, "search", "", "search term")
	cmd.Flags().StringVar(&params.SortBy, "sort-by", "", "field to sort by")
	cmd.Flags().StringVar(&params.SortOrder, "sort-order", "", "sort order (asc or desc)")

	return cmd
}

func newAdminUsersUpdateCommand() *cobra.Command {
	var (
		role     string
		status   string
		verified string
	)

	cmd := &cobra.Command{
		Use:   "update USER_ID",
		Short: "Update an account",
		Long:  "Change the role, status or verification of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := dashboardUpdate(role, status, verified)
			if err != nil {
				return err
			}

			return run(cmd.Context(), func(s *cliSession) error {
				env := s.gw.Auth().UpdateUser(cmd.Context(), args[0], payload)

				return renderEnvelope(env, authDashboardHeaders, func(user gateway.AuthDashboard) [][]string {
					return [][]string{authDashboardRow(user)}
				})
			})
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "new role")
	cmd.Flags().StringVar(&status, "status", "", "new status")
	cmd.Flags().StringVar(&verified, "verified", "", "mark the account verified (true or false)")

	return cmd
}

// dashboardUpdate builds a partial update from the flags that were set.
func dashboardUpdate(role, status, verified string) (*gateway.AuthDashboardUpdate, error) {
	payload := &gateway.AuthDashboardUpdate{}

	if role != "" {
		payload.Role = &role
	}

	if status != "" {
		payload.Status = &status
	}

	if verified != "" {
		isVerified, err := strconv.ParseBool(verified)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", constants.ErrInvalidBoolFlag, verified)
		}

		payload.IsVerified = &isVerified
	}

	if payload.Role == nil && payload.Status == nil && payload.IsVerified == nil {
		return nil, constants.ErrNothingToUpdate
	}

	return payload, nil
}

func newAdminUsersDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete USER_ID...",
		Short: "Delete accounts",
		Long:  "Delete one or more accounts. Several IDs are deleted concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), func(s *cliSession) error {
				if len(args) == 1 {
					return renderEnvelope[gateway.Empty](s.gw.Auth().DeleteUser(cmd.Context(), args[0]), nil, nil)
				}

				env := s.gw.Auth().BulkDeleteUsers(cmd.Context(), args)
				if env.Success {
					return renderEnvelope(env, []string{"ID", "Result"}, bulkDeleteRows)
				}

				result, ok := env.Meta.(gateway.BulkDeleteResult)
				if !ok {
					return envelopeError(env)
				}

				err := outputValue(result, []string{"ID", "Result"}, bulkDeleteRows(result))

				return errors.Join(envelopeError(env), err)
			})
		},
	}
}

func bulkDeleteRows(result gateway.BulkDeleteResult) [][]string {
	rows := make([][]string, 0, len(result.Deleted)+len(result.Failed))

	for _, id := range result.Deleted {
		rows = append(rows, []string{id, "deleted"})
	}

	for _, id := range result.Failed {
		rows = append(rows, []string{id, "failed"})
	}

	return rows
}
