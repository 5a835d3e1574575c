package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/quillpost/gateway-client/internal/constants"
	"github.com/quillpost/gateway-client/pkg/gateway"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const configDirName = ".quill"

// Config represents the CLI configuration.
type Config struct {
	Endpoint        string `json:"endpoint,omitempty"         yaml:"endpoint,omitempty"`
	Output          string `json:"output"                     yaml:"output"`
	Verbose         bool   `json:"verbose"                    yaml:"verbose"`
	LogLevel        string `json:"log_level,omitempty"        yaml:"log_level,omitempty"`
	LogFormat       string `json:"log_format,omitempty"       yaml:"log_format,omitempty"`
	RefreshTopology string `json:"refresh_topology,omitempty" yaml:"refresh_topology,omitempty"`
	Timeout         string `json:"timeout,omitempty"          yaml:"timeout,omitempty"`
	RetryMax        int    `json:"retry_max,omitempty"        yaml:"retry_max,omitempty"`
	UserAgent       string `json:"user_agent,omitempty"       yaml:"user_agent,omitempty"`
	NATSURL         string `json:"nats_url,omitempty"         yaml:"nats_url,omitempty"`
	NATSSubject     string `json:"nats_subject,omitempty"     yaml:"nats_subject,omitempty"`
}

// configKeys lists the keys accepted by 'config set' and 'config unset'.
var configKeys = []string{
	"endpoint", "output", "verbose", "log_level", "log_format", "refresh_topology",
	"timeout", "retry_max", "user_agent", "nats_url", "nats_subject",
}

// ConfigDir returns ~/.quill.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, configDirName), nil
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage the gateway endpoint, output format, logging and notification settings",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())
	cmd.AddCommand(newConfigClearCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the current CLI configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			return outputValue(config, []string{"Property", "Value"}, configRows(config))
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value. Keys: " + fmt.Sprint(configKeys),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := setConfigValue(config, args[0], args[1])
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return err
			}

			return outputConfigUpdateResult("Set", args[0], args[1])
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Reset a configuration value to its default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := unsetConfigValue(config, args[0])
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return err
			}

			return outputConfigUpdateResult("Unset", args[0], "")
		},
	}
}

func newConfigClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear configuration",
		Long:  "Remove the configuration file and the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			configFile, err := configFilePath()
			if err != nil {
				return err
			}

			err = os.Remove(configFile)
			if err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove config file: %w", err)
			}

			store, err := DefaultSessionStore()
			if err != nil {
				return err
			}

			err = store.Clear()
			if err != nil {
				return err
			}

			return outputConfigUpdateResult("Cleared", "all configuration", "")
		},
	}
}

func loadConfig() *Config {
	output := viper.GetString("output")
	if output == "" {
		output = constants.FormatTable
	}

	return &Config{
		Endpoint:        viper.GetString("endpoint"),
		Output:          output,
		Verbose:         viper.GetBool("verbose"),
		LogLevel:        viper.GetString("log_level"),
		LogFormat:       viper.GetString("log_format"),
		RefreshTopology: viper.GetString("refresh_topology"),
		Timeout:         viper.GetString("timeout"),
		RetryMax:        viper.GetInt("retry_max"),
		UserAgent:       viper.GetString("user_agent"),
		NATSURL:         viper.GetString("nats_url"),
		NATSSubject:     viper.GetString("nats_subject"),
	}
}

func configFilePath() (string, error) {
	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		return configFile, nil
	}

	configDir, err := ConfigDir()
	if err != nil {
		return "", err
	}

	err = os.MkdirAll(configDir, constants.ConfigDirPerm)
	if err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.yml"), nil
}

func saveConfigStruct(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func setConfigValue(config *Config, key, value string) error {
	switch key {
	case "endpoint":
		config.Endpoint = value
	case "output":
		if !slices.Contains([]string{constants.FormatTable, constants.FormatJSON, constants.FormatYAML}, value) {
			return fmt.Errorf("%w: %s", constants.ErrInvalidFormat, value)
		}

		config.Output = value
	case "verbose":
		verbose, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s", constants.ErrInvalidBoolFlag, value)
		}

		config.Verbose = verbose
	case "log_level":
		config.LogLevel = value
	case "log_format":
		config.LogFormat = value
	case "refresh_topology":
		if !gateway.RefreshTopology(value).Valid() {
			return fmt.Errorf("%w: %s", gateway.ErrUnknownTopology, value)
		}

		config.RefreshTopology = value
	case "timeout":
		_, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", value, err)
		}

		config.Timeout = value
	case "retry_max":
		retryMax, err := strconv.Atoi(value)
		if err != nil || retryMax < 0 {
			return fmt.Errorf("invalid retry_max %q: must be a non-negative integer", value)
		}

		config.RetryMax = retryMax
	case "user_agent":
		config.UserAgent = value
	case "nats_url":
		config.NATSURL = value
	case "nats_subject":
		config.NATSSubject = value
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return nil
}

func unsetConfigValue(config *Config, key string) error {
	if !slices.Contains(configKeys, key) {
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	defaults := &Config{Output: constants.FormatTable}

	switch key {
	case "endpoint":
		config.Endpoint = defaults.Endpoint
	case "output":
		config.Output = defaults.Output
	case "verbose":
		config.Verbose = defaults.Verbose
	case "log_level":
		config.LogLevel = defaults.LogLevel
	case "log_format":
		config.LogFormat = defaults.LogFormat
	case "refresh_topology":
		config.RefreshTopology = defaults.RefreshTopology
	case "timeout":
		config.Timeout = defaults.Timeout
	case "retry_max":
		config.RetryMax = defaults.RetryMax
	case "user_agent":
		config.UserAgent = defaults.UserAgent
	case "nats_url":
		config.NATSURL = defaults.NATSURL
	case "nats_subject":
		config.NATSSubject = defaults.NATSSubject
	}

	return nil
}

func configRows(config *Config) [][]string {
	return [][]string{
		{"Endpoint", orNotAvailable(config.Endpoint)},
		{"Output", config.Output},
		{"Verbose", strconv.FormatBool(config.Verbose)},
		{"Log Level", orNotAvailable(config.LogLevel)},
		{"Log Format", orNotAvailable(config.LogFormat)},
		{"Refresh Topology", orNotAvailable(config.RefreshTopology)},
		{"Timeout", orNotAvailable(config.Timeout)},
		{"Retry Max", strconv.Itoa(config.RetryMax)},
		{"User Agent", orNotAvailable(config.UserAgent)},
		{"NATS URL", orNotAvailable(config.NATSURL)},
		{"NATS Subject", orNotAvailable(config.NATSSubject)},
	}
}

// outputConfigUpdateResult outputs configuration update results in the requested format.
func outputConfigUpdateResult(action, key, value string) error {
	result := map[string]string{
		"action": action,
		"key":    key,
	}

	if value != "" {
		result["value"] = value
	}

	switch viper.GetString("output") {
	case constants.FormatJSON:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		err := encoder.Encode(result)
		if err != nil {
			return fmt.Errorf("failed to encode config result as JSON: %w", err)
		}

		return nil
	case constants.FormatYAML:
		err := yaml.NewEncoder(os.Stdout).Encode(result)
		if err != nil {
			return fmt.Errorf("failed to encode config result as YAML: %w", err)
		}

		return nil
	default:
		rows := [][]string{{"Action", action}, {"Key", key}}
		if value != "" {
			rows = append(rows, []string{"Value", value})
		}

		return renderTable([]string{"Property", "Value"}, rows)
	}
}
