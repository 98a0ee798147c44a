package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, "transitledger-backend", cfg.App.Name)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 3, cfg.External.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.External.RequestTimeout)
	assert.Equal(t, "1005", cfg.Accounts.Cash)
	assert.Equal(t, "1010", cfg.Accounts.TripReceivable)
	assert.Equal(t, 30*time.Minute, cfg.Scheduler.SyncInterval)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	t.Run("defaults pass", func(t *testing.T) {
		require.NoError(t, base().validate())
	})

	t.Run("idle conns cannot exceed open conns", func(t *testing.T) {
		cfg := base()
		cfg.Database.MaxIdleConns = 50
		assert.Error(t, cfg.validate())
	})

	t.Run("production requires password", func(t *testing.T) {
		cfg := base()
		cfg.App.Env = "production"
		cfg.Database.SSLMode = "require"
		cfg.External.APIKey = "key"
		assert.Error(t, cfg.validate())

		cfg.Database.Password = "secret"
		assert.NoError(t, cfg.validate())
	})

	t.Run("production rejects sslmode disable", func(t *testing.T) {
		cfg := base()
		cfg.App.Env = "production"
		cfg.Database.Password = "secret"
		cfg.External.APIKey = "key"
		assert.Error(t, cfg.validate())
	})

	t.Run("production rejects wildcard CORS origin", func(t *testing.T) {
		cfg := base()
		cfg.App.Env = "production"
		cfg.Database.Password = "secret"
		cfg.Database.SSLMode = "require"
		cfg.External.APIKey = "key"
		cfg.HTTP.CORSAllowOrigins = []string{"*"}
		assert.Error(t, cfg.validate())
	})

	t.Run("audit sink needs a base url", func(t *testing.T) {
		cfg := base()
		cfg.Audit.Enabled = true
		assert.Error(t, cfg.validate())

		cfg.Audit.BaseURL = "http://audit:9000"
		assert.NoError(t, cfg.validate())
	})
}

func TestDSNEscapesCredentials(t *testing.T) {
	d := &DatabaseConfig{
		Host:     "db.internal",
		Port:     5432,
		User:     "app",
		Password: "p@ss:word/1",
		DBName:   "transitledger",
		SSLMode:  "require",
	}
	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "p%40ss%3Aword%2F1")
	assert.Contains(t, dsn, "sslmode=require")
}

func TestRedisAddr(t *testing.T) {
	r := &RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", r.Addr())
}
