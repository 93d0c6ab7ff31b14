package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Jacobbrewer1/broker/pkg/commands"
	"github.com/Jacobbrewer1/broker/pkg/dataaccess"
	"github.com/stretchr/testify/require"
)

func env(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := ParseConfig(nil, env(map[string]string{EnvBotToken: "token"}))
	require.NoError(t, err)

	require.Equal(t, "token", cfg.BotToken)
	require.Equal(t, dataaccess.BackendFile, cfg.Backend)
	require.Equal(t, defaultStateFile, cfg.StateFile)
	require.Equal(t, defaultMonitoringPort, cfg.MonitoringPort)
	require.Equal(t, defaultPrefix, cfg.Prefix)
	require.Equal(t, commands.VariantLite, cfg.Variant)
	require.Equal(t, float64(defaultDMRate), cfg.DMRate)
	require.Empty(t, cfg.Keys)
}

func TestParseConfig_File(t *testing.T) {
	path := writeConfig(t, `
prefix: "?"
owner_id: "1234"
variant: full
state_file: /var/lib/broker/state.json
keys:
  ABC123: lifetime
  XYZ789: 3-month
`)

	cfg, err := ParseConfig(nil, env(map[string]string{
		EnvBotToken:   "token",
		EnvConfigPath: path,
	}))
	require.NoError(t, err)

	require.Equal(t, path, cfg.ConfigPath)
	require.Equal(t, "?", cfg.Prefix)
	require.Equal(t, "1234", cfg.OwnerID)
	require.Equal(t, commands.VariantFull, cfg.Variant)
	require.Equal(t, "/var/lib/broker/state.json", cfg.StateFile)
	require.Equal(t, map[string]string{"ABC123": "lifetime", "XYZ789": "3-month"}, cfg.Keys)
}

func TestParseConfig_Precedence(t *testing.T) {
	path := writeConfig(t, "state_file: from-file.json\nbackend: file\n")

	cfg, err := ParseConfig(
		[]string{"--config", path, "--state", "from-flag.json"},
		env(map[string]string{
			EnvBotToken:  "token",
			EnvStateFile: "from-env.json",
		}),
	)
	require.NoError(t, err)
	require.Equal(t, "from-flag.json", cfg.StateFile)

	cfg, err = ParseConfig([]string{"--config", path}, env(map[string]string{
		EnvBotToken:  "token",
		EnvStateFile: "from-env.json",
	}))
	require.NoError(t, err)
	require.Equal(t, "from-env.json", cfg.StateFile)
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
		want error
	}{
		{
			name: "missing token",
			env:  map[string]string{},
			want: ErrMissingToken,
		},
		{
			name: "unknown backend",
			args: []string{"--backend", "postgres"},
			env:  map[string]string{EnvBotToken: "token"},
			want: ErrUnknownBackend,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig(tt.args, env(tt.env))
			require.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestParseConfig_BackendRequirements(t *testing.T) {
	_, err := ParseConfig([]string{"--backend", "mongo"}, env(map[string]string{EnvBotToken: "token"}))
	require.Error(t, err)

	cfg, err := ParseConfig([]string{"--backend", "redis"}, env(map[string]string{
		EnvBotToken: "token",
		EnvRedisUrl: "redis://localhost:6379/0",
	}))
	require.NoError(t, err)
	require.Equal(t, dataaccess.BackendRedis, cfg.Backend)
	require.Equal(t, dataaccess.DefaultRedisKey, cfg.RedisKey)
}

func TestParseConfig_UnknownVariant(t *testing.T) {
	path := writeConfig(t, "variant: mega\n")

	_, err := ParseConfig([]string{"--config", path}, env(map[string]string{EnvBotToken: "token"}))
	require.ErrorIs(t, err, ErrUnknownVariant)
}
