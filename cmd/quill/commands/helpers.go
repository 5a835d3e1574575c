package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/quillpost/gateway-client/internal/constants"
	"github.com/quillpost/gateway-client/pkg/gateway"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// outputValue prints v as JSON or YAML, or rows as a table.
func outputValue(v any, headers []string, rows [][]string) error {
	switch viper.GetString("output") {
	case constants.FormatJSON:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", strings.Repeat(" ", constants.JSONIndentSize))

		err := encoder.Encode(v)
		if err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}

		return nil
	case constants.FormatYAML:
		err := yaml.NewEncoder(os.Stdout).Encode(v)
		if err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}

		return nil
	default:
		return renderTable(headers, rows)
	}
}

func renderTable(headers []string, rows [][]string) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header(headers)

	for _, row := range rows {
		err := table.Append(row)
		if err != nil {
			return fmt.Errorf("failed to append table row: %w", err)
		}
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// renderEnvelope prints a successful envelope, or turns a failed one into an
// error. rows may be nil for calls without a payload worth tabulating.
func renderEnvelope[T any](env *gateway.Envelope[T], headers []string, rows func(T) [][]string) error {
	if !env.Success {
		return envelopeError(env)
	}

	if viper.GetString("output") == constants.FormatJSON || viper.GetString("output") == constants.FormatYAML {
		return outputValue(env, nil, nil)
	}

	_, _ = fmt.Fprintln(os.Stdout, env.Message)

	if rows == nil {
		return nil
	}

	return renderTable(headers, rows(env.Value()))
}

func envelopeError[T any](env *gateway.Envelope[T]) error {
	err := fmt.Errorf("%w: %s (status: %d)", constants.ErrRequestFailed, env.Message, env.StatusCode)

	if env.Errors == nil {
		return err
	}

	details, marshalErr := json.Marshal(env.Errors)
	if marshalErr != nil {
		return err
	}

	return fmt.Errorf("%w: %s", err, details)
}

func orNotAvailable(value string) string {
	if value == "" {
		return constants.NotAvailable
	}

	return value
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return constants.NotAvailable
	}

	return t.Local().Format(time.RFC3339)
}

func maskValue(value string) string {
	const visible = 6

	if len(value) <= visible {
		return constants.MaskedSecret
	}

	return value[:visible] + constants.MaskedSecret
}

func profileRows(profile gateway.UserProfile) [][]string {
	return [][]string{
		{"ID", profile.ID},
		{"Name", profile.Name},
		{"Username", orNotAvailable(profile.Username)},
		{"Email", orNotAvailable(profile.Email)},
		{"Role", orNotAvailable(profile.Role)},
		{"Bio", orNotAvailable(profile.Bio)},
		{"Followers", fmt.Sprint(profile.FollowersCount)},
		{"Following", fmt.Sprint(profile.FollowingCount)},
		{"Created", formatTime(profile.CreatedAt)},
	}
}
