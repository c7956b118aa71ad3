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
	assert.Equal(t, int64(20*1024*1024), cfg.Upload.MaxFileSizeBytes)
	assert.Equal(t, 20, cfg.Upload.MaxFiles)
	assert.Equal(t, int64(8<<20), cfg.Upload.MultipartMemory)
	assert.Equal(t, "fichiers.json", cfg.Data.RecordsFile)
	assert.Equal(t, SessionBackendMemory, cfg.Session.Backend)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.Equal(t, "adminToken", cfg.Session.CookieName)
	assert.False(t, cfg.SMTP.Enabled())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SESSION_BACKEND", " Redis ")
	t.Setenv("SESSION_TTL", "15m")
	t.Setenv("UPLOAD_URL_PREFIX", "files/")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_USER", "ops@example.com")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, SessionBackendRedis, cfg.Session.Backend)
	assert.Equal(t, 15*time.Minute, cfg.Session.TTL)
	assert.Equal(t, "/files", cfg.Upload.URLPrefix)
	assert.Equal(t, "ops@example.com", cfg.SMTP.From)
	assert.Equal(t, "ops@example.com", cfg.SMTP.To)
	assert.True(t, cfg.SMTP.Enabled())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("soon", time.Minute))
	assert.Equal(t, 2*time.Second, parseDuration("2s", time.Minute))
}
