package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 120*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, 5.0, cfg.Server.RateLimitRPS)
	assert.Equal(t, 10, cfg.Server.RateLimitBurst)
	assert.Equal(t, 10, cfg.Server.BatchConcurrency)
	assert.Equal(t, 15*time.Second, cfg.Fetcher.Timeout)
	assert.Equal(t, 5*time.Second, cfg.Fetcher.DialTimeout)
	assert.Equal(t, int64(5*1024*1024), cfg.Fetcher.MaxBodyBytes)
	assert.Empty(t, cfg.Database.DSN)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, uint32(5), cfg.Breaker.MaxFailures)
	assert.Equal(t, 30*time.Second, cfg.Breaker.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  address: ":9090"
fetcher:
  timeout: 8s
database:
  dsn: postgres://irps@localhost/irps?sslmode=disable
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("IRPS_FETCHER_TIMEOUT", "3s")
	t.Setenv("IRPS_BREAKER_MAX_FAILURES", "2")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, 3*time.Second, cfg.Fetcher.Timeout, "env wins over file")
	assert.Equal(t, "postgres://irps@localhost/irps?sslmode=disable", cfg.Database.DSN)
	assert.Equal(t, uint32(2), cfg.Breaker.MaxFailures)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("IRPS_FETCHER_TIMEOUT", "0s")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetcher.timeout")
}

func TestValidate(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	bad := *cfg
	bad.Fetcher.MaxBodyBytes = 0
	bad.Server.Address = ""
	err = bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_body_bytes")
	assert.Contains(t, err.Error(), "server.address")
}
