package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "5001", cfg.App.Port)
	assert.Equal(t, "sqlite://data/auth.db", cfg.Database.URL)
	assert.Equal(t, 60*time.Minute, cfg.JWT.ExpirationTime)
	assert.Equal(t, 12, cfg.Auth.ShortTokenLength)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.Redis.Enabled)
	assert.True(t, cfg.UsesDefaultSecret())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("JWT_EXPIRATION", "15m")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/auth")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_HOST", "cache")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.App.Port)
	assert.Equal(t, "s3cr3t", cfg.JWT.Secret)
	assert.Equal(t, 15*time.Minute, cfg.JWT.ExpirationTime)
	assert.Equal(t, "postgres://u:p@db:5432/auth", cfg.Database.URL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "cache:6379", cfg.RedisAddress())
	assert.False(t, cfg.UsesDefaultSecret())
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			App:      AppConfig{Environment: "development"},
			Database: DatabaseConfig{URL: "sqlite://x.db"},
			JWT:      JWTConfig{Secret: "k", ExpirationTime: time.Hour},
			Auth:     AuthConfig{ShortTokenLength: 12},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "empty secret", mutate: func(c *Config) { c.JWT.Secret = "" }, wantErr: true},
		{name: "zero ttl", mutate: func(c *Config) { c.JWT.ExpirationTime = 0 }, wantErr: true},
		{name: "default secret in production", mutate: func(c *Config) {
			c.App.Environment = "production"
			c.JWT.Secret = DefaultJWTSecret
		}, wantErr: true},
		{name: "default secret in development", mutate: func(c *Config) { c.JWT.Secret = DefaultJWTSecret }},
		{name: "bad short token length", mutate: func(c *Config) { c.Auth.ShortTokenLength = 0 }, wantErr: true},
		{name: "short token longer than column", mutate: func(c *Config) { c.Auth.ShortTokenLength = 80 }, wantErr: true},
		{name: "short token at column size", mutate: func(c *Config) { c.Auth.ShortTokenLength = 64 }},
		{name: "empty database url", mutate: func(c *Config) { c.Database.URL = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
