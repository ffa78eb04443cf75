package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>Quantix</h1>"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets", "app.css"), []byte("body{}"), 0o644))
	return dir
}

func TestServesExistingFiles(t *testing.T) {
	h := newHandler(staticDir(t))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/app.css", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "body{}", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")
}

func TestUnknownPathsFallBackToIndex(t *testing.T) {
	h := newHandler(staticDir(t))

	for _, target := range []string{"/", "/clientes", "/assets", "/reportes/ventas"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusOK, rec.Code, target)
		assert.Equal(t, "<h1>Quantix</h1>", rec.Body.String(), target)
	}
}

func TestStaticConfigDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "STATIC_DIR", "LOG_FORMAT"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	cfg, err := loadStaticConfig()
	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, ".", cfg.Dir)
	assert.Equal(t, "pretty", cfg.LogFormat)
}

func TestStaticConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("STATIC_DIR", "/srv/quantix")
	t.Setenv("LOG_FORMAT", "json")
	cfg, err := loadStaticConfig()
	require.NoError(t, err)
	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, "/srv/quantix", cfg.Dir)
	assert.Equal(t, "json", cfg.LogFormat)
}
