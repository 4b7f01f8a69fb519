package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
server:
  port: 8081
  mode: release
redis:
  addr: redis.internal:6379
store:
  backend: file
  file_root: /data/chunks
  max_spheres: 4
lookup:
  default_nucleus: "13C"
  estimate_tolerance: 1.5
  estimate_min_match: 2
  estimate_cap: 25
log:
  level: debug
  format: json
`

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "nmrhose.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad_ValidFile(t *testing.T) {
	path := writeTempConfig(t, sampleYAML)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "redis.internal:6379", cfg.Redis.Addr)
	assert.Equal(t, 1.5, cfg.Lookup.EstimateTolerance)
	assert.Equal(t, 2, cfg.Lookup.EstimateMinMatch)
	assert.Equal(t, 25, cfg.Lookup.EstimateCap)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidConfigFailsValidation(t *testing.T) {
	path := writeTempConfig(t, "server:\n  port: 999999\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadFromEnv_AppliesDefaultsWhenUnset(t *testing.T) {
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultStoreBackend, cfg.Store.Backend)
}

func TestLoadFromEnv_OverridesViaEnvVar(t *testing.T) {
	t.Setenv("NMRHOSE_SERVER_PORT", "9100")
	t.Setenv("NMRHOSE_REDIS_ADDR", "envredis:6379")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "envredis:6379", cfg.Redis.Addr)
}

func TestMustLoad_PanicsOnError(t *testing.T) {
	assert.Panics(t, func() {
		MustLoad(filepath.Join(t.TempDir(), "missing.yaml"))
	})
}
