package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "campusmart-webclient", cfg.Service.Name)
	assert.Equal(t, "8080", cfg.Service.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "http://localhost:8002/api/v1", cfg.API.BaseURL)
	assert.Equal(t, "cm_sid", cfg.Session.CookieName)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTTL)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, 10*time.Second, cfg.GetShutdownTimeoutDuration())
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("API_BASE_URL", "https://api.campusmart.example/api/v1")
	t.Setenv("SESSION_IDLE_TTL", "5m")
	t.Setenv("TRACING_ENABLED", "true")
	t.Setenv("TRACING_SAMPLE_RATE", "0.5")
	t.Setenv("DATABASE_URL", "postgres://app@localhost:5432/campusmart")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Service.Port)
	assert.Equal(t, "https://api.campusmart.example/api/v1", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Minute, cfg.Session.IdleTTL)
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, 0.5, cfg.Tracing.SampleRate)
	assert.Equal(t, "postgres://app@localhost:5432/campusmart", cfg.Storage.DatabaseURL)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("SESSION_IDLE_TTL", "soon")
	t.Setenv("TRACING_SAMPLE_RATE", "lots")

	cfg := Load()

	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTTL)
	assert.Equal(t, 0.1, cfg.Tracing.SampleRate)
}

func TestValidate(t *testing.T) {
	cfg := Load()
	require.NoError(t, cfg.Validate())

	cfg.API.BaseURL = ""
	assert.Error(t, cfg.Validate())

	cfg = Load()
	cfg.Tracing.SampleRate = 1.5
	assert.Error(t, cfg.Validate())

	cfg = Load()
	cfg.Session.IdleTTL = 0
	assert.Error(t, cfg.Validate())
}
