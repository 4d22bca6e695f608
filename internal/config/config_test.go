package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 18711, cfg.Gateway.Port)
	assert.Equal(t, "loopback", cfg.Gateway.Bind)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, 45, cfg.Governance.CooldownSeconds)
	assert.Equal(t, 4, cfg.Governance.RecentMessages)
	assert.Equal(t, 6, cfg.Governance.RecentTurns)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `gateway:
  port: 9999
store:
  driver: memory
governance:
  cooldownSeconds: 10
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Gateway.Port)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, 10, cfg.Governance.CooldownSeconds)
	// Untouched fields still get defaults.
	assert.Equal(t, "loopback", cfg.Gateway.Bind)
}

func TestLoad_ExpandsEnvVarsInCredentials(t *testing.T) {
	t.Setenv("TEST_OFFICED_KEY", "sk-expanded")

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `backends:
  claude:
    apiKey: ${TEST_OFFICED_KEY}
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-expanded", cfg.Backends.Claude.APIKey)
}

func TestLoad_UnsetEnvVarLeftVerbatim(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `backends:
  claude:
    apiKey: ${DEFINITELY_NOT_SET_ANYWHERE}
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "${DEFINITELY_NOT_SET_ANYWHERE}", cfg.Backends.Claude.APIKey)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("OFFICED_GATEWAY_PORT", "4242")
	t.Setenv("OFFICED_LOG_LEVEL", "DEBUG")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 4242, cfg.Gateway.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestValidate_DefaultsAreClean(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Empty(t, Validate(&cfg))
}

func TestValidate_CatchesProblems(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	cfg.Gateway.Port = 0
	cfg.Gateway.Bind = "lan" // needs a token
	cfg.Logging.Level = "verbose"
	cfg.Store.Driver = "postgres"

	issues := Validate(&cfg)
	paths := make([]string, len(issues))
	for i, issue := range issues {
		paths[i] = issue.Path
	}
	assert.ElementsMatch(t, []string{
		"gateway.port", "gateway.auth.token", "logging.level", "store.driver",
	}, paths)
}

func TestValidate_IRCRequiredFields(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	cfg.Notify.IRC = &IRCNotify{}

	issues := Validate(&cfg)
	require.Len(t, issues, 3)
}

func TestResolvePaths_HomeOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("OFFICED_HOME", dir)

	paths, err := ResolvePaths()
	require.NoError(t, err)
	assert.Equal(t, dir, paths.Base)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), paths.Config)

	require.NoError(t, paths.EnsureDirs())
	info, err := os.Stat(paths.Data)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestRawPathHelpers(t *testing.T) {
	raw := map[string]any{}

	path, err := ParseConfigPath("gateway.auth.token")
	require.NoError(t, err)

	SetValueAtPath(raw, path, "tok")
	val, ok := GetValueAtPath(raw, path)
	require.True(t, ok)
	assert.Equal(t, "tok", val)

	assert.True(t, UnsetValueAtPath(raw, path))
	_, ok = GetValueAtPath(raw, path)
	assert.False(t, ok)

	_, err = ParseConfigPath("gateway..port")
	assert.Error(t, err)
	_, err = ParseConfigPath("__proto__.x")
	assert.Error(t, err)
}
