package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("PORT", "8080")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/sales?sslmode=disable")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("GO_ENV", "dev")
	t.Setenv("LLM_API_URL", "")
	t.Setenv("LLM_TIMEOUT", "")
	t.Setenv("FORECAST_CRON", "")
	t.Setenv("TIMEZONE", "")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.LLMTimeout)
	assert.Equal(t, 2*time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, "0 2 * * *", cfg.ForecastCron)
	assert.Equal(t, "Asia/Shanghai", cfg.Timezone)
	assert.False(t, cfg.LLMEnabled())
}

func TestLoad_PostgresFieldsRequiredWithoutURL(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("POSTGRES_PORT", "5432")
	t.Setenv("POSTGRES_USER", "")

	_, err := Load()
	assert.EqualError(t, err, "POSTGRES_USER is required")
}

func TestLoad_InvalidPort(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("POSTGRES_PORT", "abc")

	_, err := Load()
	assert.ErrorContains(t, err, "POSTGRES_PORT must be number")
}

func TestLoad_LLMRequiresKey(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("LLM_API_URL", "https://api.example.com/v1/chat/completions")
	t.Setenv("LLM_API_KEY", "")

	_, err := Load()
	assert.ErrorContains(t, err, "LLM_API_KEY")
}

func TestLoad_LLMTimeout(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("LLM_TIMEOUT", "45s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, cfg.LLMTimeout)
}

func TestLoad_InvalidTimeout(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("LLM_TIMEOUT", "soon")

	_, err := Load()
	assert.ErrorContains(t, err, "LLM_TIMEOUT")
}
