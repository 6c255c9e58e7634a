package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapEnv(m map[string]string) Lookup {
	return func(name string) (string, bool) {
		v, ok := m[name]
		return v, ok
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nphase.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  address: ":9000"
  shutdown_timeout: 3s
logging:
  level: debug
rate_limit:
  rps: 2
  burst: 4
api_keys: [one, two]
`), 0o600))

	cfg, err := LoadConfig(path, mapEnv(nil))
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Address)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 2.0, cfg.RateLimit.RPS)
	assert.Equal(t, 4, cfg.RateLimit.Burst)
	assert.Equal(t, []string{"one", "two"}, cfg.APIKeys)

	cfg, err = LoadConfig(path, mapEnv(map[string]string{
		"NPHASE_ADDR":             ":9100",
		"NPHASE_LOG_LEVEL":        "warn",
		"NPHASE_SHUTDOWN_TIMEOUT": "1m",
		"NPHASE_RATE_RPS":         "0.5",
		"NPHASE_RATE_BURST":       "1",
		"NPHASE_API_KEYS":         " three , ,four",
	}))
	require.NoError(t, err)
	assert.Equal(t, ":9100", cfg.Server.Address)
	assert.Equal(t, time.Minute, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 0.5, cfg.RateLimit.RPS)
	assert.Equal(t, 1, cfg.RateLimit.Burst)
	assert.Equal(t, []string{"three", "four"}, cfg.APIKeys)
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("server: [nope"), 0o600))
	_, err := LoadConfig(bad, nil)
	assert.ErrorContains(t, err, "parse config")

	_, err = LoadConfig("", mapEnv(map[string]string{"NPHASE_RATE_BURST": "many"}))
	assert.ErrorContains(t, err, "NPHASE_RATE_BURST")

	_, err = LoadConfig("", mapEnv(map[string]string{"NPHASE_LOG_LEVEL": "loud"}))
	assert.ErrorContains(t, err, "unknown log level")
}

func TestEnvironment(t *testing.T) {
	dir := t.TempDir()
	dotenv := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(dotenv, []byte("NPHASE_TEST_ONLY_FILE=file\nNPHASE_TEST_BOTH=file\n"), 0o600))
	t.Setenv("NPHASE_TEST_BOTH", "process")

	env, err := Environment(dotenv)
	require.NoError(t, err)
	v, ok := env("NPHASE_TEST_ONLY_FILE")
	assert.True(t, ok)
	assert.Equal(t, "file", v)
	v, _ = env("NPHASE_TEST_BOTH")
	assert.Equal(t, "process", v)
	_, ok = env("NPHASE_TEST_NOWHERE")
	assert.False(t, ok)

	env, err = Environment(filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	_, ok = env("NPHASE_TEST_ONLY_FILE")
	assert.False(t, ok)
}
