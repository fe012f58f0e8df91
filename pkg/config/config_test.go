package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, "attendease-api", cfg.JWT.Issuer)
	assert.Empty(t, cfg.JWT.Audience)
	assert.Equal(t, 5*time.Minute, cfg.Dashboard.CacheTTL)
	assert.Equal(t, 10000, cfg.Exports.MaxRows)
}

func TestLoadJWTAudienceSplitsCommaList(t *testing.T) {
	t.Setenv("JWT_AUDIENCE", "attendease-web, attendease-mobile")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"attendease-web", "attendease-mobile"}, cfg.JWT.Audience)
}

func TestLoadParsesDurationsWithFallback(t *testing.T) {
	t.Setenv("JWT_EXPIRATION", "not-a-duration")
	t.Setenv("REFRESH_TOKEN_EXPIRATION", "48h")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, 48*time.Hour, cfg.JWT.RefreshExpiration)
}
