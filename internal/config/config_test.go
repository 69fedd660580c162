package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("POSTGRES_DB", "bens_teste")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.local,http://b.local")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "bens_teste", cfg.Database.Database)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, 24, cfg.JWT.AccessTokenTTL)
	assert.Equal(t, "pt_BR", cfg.I18n.DefaultLocale)
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.Frontend.AllowedOrigins)
	assert.Contains(t, cfg.Database.DSN(), "dbname=bens_teste")
}

func TestValidateProduction(t *testing.T) {
	cfg := &Config{Environment: "production"}
	cfg.JWT = JWTConfig{SecretKey: defaultJWTSecret, AccessTokenTTL: 1, RefreshTokenTTL: 1}
	assert.Error(t, cfg.Validate())

	cfg.JWT.SecretKey = "s3cr3t"
	assert.Error(t, cfg.Validate(), "database password is required")

	cfg.Database.Password = "pw"
	assert.NoError(t, cfg.Validate())
}

func TestValidateTTL(t *testing.T) {
	cfg := &Config{JWT: JWTConfig{SecretKey: "x", AccessTokenTTL: 0, RefreshTokenTTL: 1}}
	assert.Error(t, cfg.Validate())
}
