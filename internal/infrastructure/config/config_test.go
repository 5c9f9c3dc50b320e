package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"SECRET_KEY": "s3cret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 72*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.True(t, cfg.Auth.SessionCheck)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Mongo.Enabled)
	assert.Equal(t, 4, cfg.Audit.Workers)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"SECRET_KEY":          "s3cret",
		"PORT":                "9090",
		"ENV":                 "production",
		"TOKEN_TTL":           "1h",
		"TOKEN_SESSION_CHECK": "false",
		"REDIS_ENABLED":       "true",
		"REDIS_ADDR":          "cache:6379",
		"DATABASE_URL":        "postgres://u:p@db/users",
	}))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Addr())
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.False(t, cfg.Auth.SessionCheck)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, "postgres://u:p@db/users", cfg.Postgres.DSN)
}

func TestLoadFrom_MissingSecret(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	assert.Error(t, err)
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("SECRET_KEY", "from-env")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Auth.SecretKey)
	assert.Equal(t, "debug", cfg.LogLevel)
}
