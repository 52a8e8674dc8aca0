package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	for _, key := range []string{"SERVER_PORT", "JWT_SECRET", "AUTHORITY_URL", "LLM_MODEL", "MAX_ROW_COUNT", "HTTP_TIMEOUT_SECONDS", "RATE_LIMIT_PER_MINUTE"} {
		t.Setenv(key, "")
	}
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("AUTHORITY_URL", DefaultAuthorityURL)
	t.Setenv("LLM_MODEL", DefaultLLMModel)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, DefaultAuthorityURL, cfg.AuthorityURL)
	assert.Equal(t, DefaultLLMModel, cfg.LLMModel)
	assert.Equal(t, DefaultMaxRowCount, cfg.MaxRowCount)
	assert.Equal(t, time.Duration(0), cfg.HTTPTimeout)
	assert.Equal(t, 8*time.Hour, cfg.JWTExpiration)
	assert.Equal(t, DefaultRateLimit, cfg.RateLimitPerMinute)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_EXPIRATION_HOURS", "2")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "45")
	t.Setenv("LLM_TEMPERATURE", "0.2")
	t.Setenv("LLM_MAX_TOKENS", "1200")
	t.Setenv("MAX_ROW_COUNT", "-3")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "0")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Hour, cfg.JWTExpiration)
	assert.Equal(t, 45*time.Second, cfg.HTTPTimeout)
	assert.InDelta(t, 0.2, cfg.LLMTemperature, 1e-9)
	assert.Equal(t, 1200, cfg.LLMMaxTokens)
	assert.Equal(t, DefaultMaxRowCount, cfg.MaxRowCount, "non-positive row cap falls back to default")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, DefaultRateLimit, cfg.RateLimitPerMinute)
}

func TestValidateServer(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.ValidateServer())

	cfg.JWTSecret = "secret"
	assert.Error(t, cfg.ValidateServer())

	cfg.OperatorPasswordHash = "$2a$10$abc"
	assert.NoError(t, cfg.ValidateServer())
}
