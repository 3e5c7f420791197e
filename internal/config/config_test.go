// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("httpserver:\n  address: \":10001\"\n"))
	require.NoError(t, err)

	assert.Equal(t, ":10001", cfg.HTTPServer.Address)
	assert.Equal(t, 30*time.Second, cfg.HTTPServer.ReadTimeout)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, "accounts:", cfg.Store.Redis.Prefix)
}

func TestParseFullFile(t *testing.T) {
	data := `
httpserver:
  address: ":9000"
  workers: 4
  shutdownTimeout: 3s
store:
  backend: redis
  redis:
    address: "redis:6379"
    db: 2
  breaker:
    enabled: true
    consecutiveFailures: 3
    timeout: 1m
logging:
  level: debug
  environment: development
`
	cfg, err := Parse([]byte(data))
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.HTTPServer.Workers)
	assert.Equal(t, 3*time.Second, cfg.HTTPServer.ShutdownTimeout)
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "redis:6379", cfg.Store.Redis.Address)
	assert.Equal(t, 2, cfg.Store.Redis.DB)
	assert.True(t, cfg.Store.Breaker.Enabled)
	assert.Equal(t, uint32(3), cfg.Store.Breaker.ConsecutiveFailures)
	assert.Equal(t, time.Minute, cfg.Store.Breaker.Timeout)
	assert.Equal(t, "development", cfg.Logging.Environment)
}

func TestParseEnvSubstitution(t *testing.T) {
	t.Setenv("MT_STORE_PATH", "/tmp/accounts.json")

	cfg, err := Parse([]byte(`
store:
  backend: snapshot
  path: ${MT_STORE_PATH}
httpserver:
  address: "${MT_UNSET_ADDR:-:7070}"
`))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/accounts.json", cfg.Store.Path)
	assert.Equal(t, ":7070", cfg.HTTPServer.Address)
}

func TestParseValidation(t *testing.T) {
	tests := map[string]string{
		"unknown backend":  "store:\n  backend: rocksdb\n",
		"negative workers": "httpserver:\n  workers: -1\n",
		"empty redis addr": "store:\n  backend: redis\n  redis:\n    address: \"\"\n",
		"empty snapshot":   "store:\n  backend: snapshot\n  path: \"\"\n",
		"malformed yaml":   "httpserver: [\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			require.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorIs(t, err, ErrFileNotFound)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  backend: snapshot\n  path: accounts.json\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendSnapshot, cfg.Store.Backend)
	assert.Equal(t, "accounts.json", cfg.Store.Path)
}
