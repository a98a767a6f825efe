package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.Equal(t, 20*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 10, cfg.Feed.PageSize)
	assert.True(t, cfg.Follow.AllowSelfFollow)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
cache:
  driver: redis
  ttl: 5s
follow:
  allow_self_follow: false
`), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("APP_SERVER_PORT", "9100")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "redis", cfg.Cache.Driver)
	assert.Equal(t, 5*time.Second, cfg.Cache.TTL)
	assert.False(t, cfg.Follow.AllowSelfFollow)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database: DatabaseConfig{Driver: "sqlite"},
			Cache:    CacheConfig{Driver: "memory", TTL: time.Second},
			Feed:     FeedConfig{PageSize: 10},
		}
	}
	require.NoError(t, valid().Validate())

	c := valid()
	c.Database.Driver = "mysql"
	assert.Error(t, c.Validate())

	c = valid()
	c.Cache.Driver = "memcached"
	assert.Error(t, c.Validate())

	c = valid()
	c.Feed.PageSize = 0
	assert.Error(t, c.Validate())

	c = valid()
	c.Cache.TTL = 0
	assert.Error(t, c.Validate())

	c = valid()
	c.JWT.Secret = DefaultJWTSecret
	assert.NoError(t, c.Validate(), "debug mode keeps the development secret")
	c.Server.Mode = "release"
	assert.Error(t, c.Validate())
	c.JWT.Secret = ""
	assert.Error(t, c.Validate())
	c.JWT.Secret = "a-real-secret"
	assert.NoError(t, c.Validate())
}

func TestLoad_ReleaseRequiresSecret(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("APP_SERVER_MODE", "release")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("APP_JWT_SECRET", "s3cr3t-for-release")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "release", cfg.Server.Mode)
}
