package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/chatlore/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 60*time.Second, cfg.Server.RequestTimeout)
	assert.Empty(t, cfg.Gemini.APIKey)
	assert.Equal(t, "gemini-2.0-flash", cfg.Gemini.Model)
	assert.Equal(t, 3, cfg.Gemini.MaxAttempts)
	assert.InDelta(t, 0.3, cfg.Search.ClusterEps, 1e-9)
	assert.Equal(t, 2, cfg.Search.ClusterMinPoints)
	assert.Equal(t, "cosine", cfg.Search.ClusterMetric)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
log:
  level: debug
  format: text
server:
  addr: ":9090"
gemini:
  api_key: test-key
  temperature: 1.5
search:
  cluster_eps: 0.5
  cluster_metric: euclidean
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))
	t.Chdir(dir)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "test-key", cfg.Gemini.APIKey)
	assert.InDelta(t, 1.5, cfg.Gemini.Temperature, 1e-6)
	assert.InDelta(t, 0.5, cfg.Search.ClusterEps, 1e-9)
	assert.Equal(t, "euclidean", cfg.Search.ClusterMetric)

	// Values the file does not mention keep their defaults.
	assert.Equal(t, "gemini-2.0-flash", cfg.Gemini.Model)
	assert.Equal(t, 2, cfg.Search.ClusterMinPoints)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CHATLORE_LOG_LEVEL", "warn")
	t.Setenv("CHATLORE_GEMINI_API_KEY", "env-key")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "env-key", cfg.Gemini.APIKey)
}

func TestLoadValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "bad log level",
			content: "log:\n  level: verbose\n",
		},
		{
			name:    "bad cluster metric",
			content: "search:\n  cluster_metric: manhattan\n",
		},
		{
			name:    "negative eps",
			content: "search:\n  cluster_eps: -0.1\n",
		},
		{
			name:    "temperature out of range",
			content: "gemini:\n  temperature: 5\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(tt.content), 0o600))
			t.Chdir(dir)

			_, err := config.Load()
			require.Error(t, err)
			assert.ErrorIs(t, err, config.ErrConfiguration)
		})
	}
}
