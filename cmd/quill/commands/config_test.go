package commands

import (
	"testing"

	"github.com/quillpost/gateway-client/internal/constants"
	"github.com/quillpost/gateway-client/pkg/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetConfigValue(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr error
		check   func(t *testing.T, config *Config)
	}{
		{
			name: "endpoint", key: "endpoint", value: "http://localhost:5000/api/v1",
			check: func(t *testing.T, config *Config) {
				assert.Equal(t, "http://localhost:5000/api/v1", config.Endpoint)
			},
		},
		{
			name: "output", key: "output", value: "yaml",
			check: func(t *testing.T, config *Config) { assert.Equal(t, "yaml", config.Output) },
		},
		{name: "unknown output", key: "output", value: "xml", wantErr: constants.ErrInvalidFormat},
		{
			name: "verbose", key: "verbose", value: "true",
			check: func(t *testing.T, config *Config) { assert.True(t, config.Verbose) },
		},
		{name: "verbose not a bool", key: "verbose", value: "loud", wantErr: constants.ErrInvalidBoolFlag},
		{
			name: "topology", key: "refresh_topology", value: "per-client",
			check: func(t *testing.T, config *Config) { assert.Equal(t, "per-client", config.RefreshTopology) },
		},
		{name: "unknown topology", key: "refresh_topology", value: "global", wantErr: gateway.ErrUnknownTopology},
		{
			name: "timeout", key: "timeout", value: "30s",
			check: func(t *testing.T, config *Config) { assert.Equal(t, "30s", config.Timeout) },
		},
		{
			name: "retry max", key: "retry_max", value: "3",
			check: func(t *testing.T, config *Config) { assert.Equal(t, 3, config.RetryMax) },
		},
		{
			name: "nats url", key: "nats_url", value: "nats://localhost:4222",
			check: func(t *testing.T, config *Config) { assert.Equal(t, "nats://localhost:4222", config.NATSURL) },
		},
		{name: "unknown key", key: "color", value: "red", wantErr: constants.ErrUnknownConfigKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{Output: constants.FormatTable}

			err := setConfigValue(config, tt.key, tt.value)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			tt.check(t, config)
		})
	}
}

func TestSetConfigValue_RejectsBadNumbers(t *testing.T) {
	config := &Config{}

	assert.Error(t, setConfigValue(config, "timeout", "soon"))
	assert.Error(t, setConfigValue(config, "retry_max", "-1"))
	assert.Error(t, setConfigValue(config, "retry_max", "many"))
	assert.Zero(t, config.RetryMax)
}

func TestUnsetConfigValue(t *testing.T) {
	config := &Config{
		Endpoint:        "http://localhost:5000",
		Output:          constants.FormatJSON,
		RefreshTopology: "none",
		RetryMax:        2,
	}

	require.NoError(t, unsetConfigValue(config, "endpoint"))
	require.NoError(t, unsetConfigValue(config, "output"))
	require.NoError(t, unsetConfigValue(config, "retry_max"))

	assert.Empty(t, config.Endpoint)
	assert.Equal(t, constants.FormatTable, config.Output)
	assert.Zero(t, config.RetryMax)
	assert.Equal(t, "none", config.RefreshTopology)

	assert.ErrorIs(t, unsetConfigValue(config, "color"), constants.ErrUnknownConfigKey)
}

func TestConfigRows(t *testing.T) {
	rows := configRows(&Config{Output: constants.FormatTable, RetryMax: 1})

	assert.Len(t, rows, len(configKeys))
	assert.Equal(t, []string{"Endpoint", constants.NotAvailable}, rows[0])
	assert.Equal(t, []string{"Retry Max", "1"}, rows[7])
}
