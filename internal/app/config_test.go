package app

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SESSION_SECRET", "session-secret")
	t.Setenv("CSRF_SECRET", "csrf-secret")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000/api/v1", cfg.APIBaseURL)
	assert.Equal(t, "/auth/login", cfg.AuthLoginPath)
	assert.Equal(t, "/login", cfg.LoginPath)
	assert.Equal(t, 15*time.Second, cfg.APITimeout)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.MetricsEnabled)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigRequiresSecrets(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("CSRF_SECRET", "csrf-secret")
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigRejectsRelativeLoginPath(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LOGIN_PATH", "login")
	_, err := LoadConfig()
	assert.EqualError(t, err, "login path must be absolute")
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("API_BASE_URL", "https://api.quantix.co/api/v1")
	t.Setenv("API_TIMEOUT", "3s")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "https://api.quantix.co/api/v1", cfg.APIBaseURL)
	assert.Equal(t, 3*time.Second, cfg.APITimeout)
}

func TestLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&Config{LogFormat: "json"}, &buf).Debug("api call", "path", "/users")
	assert.True(t, strings.HasPrefix(buf.String(), "{"), buf.String())

	buf.Reset()
	newLogger(&Config{AppEnv: "production"}, &buf).Debug("hidden")
	assert.Empty(t, buf.String())
}

func TestTestModeFollowsEnv(t *testing.T) {
	t.Setenv(testModeEnv, "1")
	RefreshTestMode()
	assert.True(t, InTestMode())

	t.Setenv(testModeEnv, "")
	RefreshTestMode()
	assert.False(t, InTestMode())
}
