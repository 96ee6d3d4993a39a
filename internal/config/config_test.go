package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_OverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "soundclusters.yaml")
	doc := `
log_level: debug
server:
  addr: ":9090"
  read_header_timeout: 5s
artifacts:
  dataset: tracks.csv
  columns:
    id: track_id
    title: name
    artist: artists
    cluster: label
storage:
  driver: memory
dashboard:
  memoize: false
  warm_workers: 0
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadHeaderTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout, "unset keys keep defaults")
	assert.Equal(t, "tracks.csv", cfg.Artifacts.Dataset)
	assert.Equal(t, "data/scaler.yaml", cfg.Artifacts.Scaler)
	assert.Equal(t, "label", cfg.Artifacts.Columns.Cluster)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.False(t, cfg.Dashboard.Memoize)
	assert.Equal(t, 0, cfg.Dashboard.WarmWorkers)
	assert.Equal(t, 8, cfg.Dashboard.SampleRows)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	typo := filepath.Join(dir, "typo.yaml")
	require.NoError(t, os.WriteFile(typo, []byte("sever:\n  addr: \":1\"\n"), 0o600))
	_, err = Load(typo)
	assert.ErrorContains(t, err, "sever")

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	cfg, err := Load(empty)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"SOUNDCLUSTERS_ADDR":         ":7000",
		"SOUNDCLUSTERS_DATASET":      "/data/x.csv",
		"STORAGE_DRIVER":             "none",
		"SPOTIFY_CLIENT_ID":          "id",
		"SPOTIFY_CLIENT_SECRET":      "secret",
		"OLLAMA_HOST":                "http://ollama:11434",
		"SOUNDCLUSTERS_MEMOIZE":      "false",
		"SOUNDCLUSTERS_WARM_WORKERS": "many",
	}
	cfg := Default()
	cfg.ApplyEnv(func(k string) string { return env[k] })

	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "/data/x.csv", cfg.Artifacts.Dataset)
	assert.Equal(t, DriverNone, cfg.Storage.Driver)
	assert.True(t, cfg.Spotify.Enabled())
	assert.True(t, cfg.Ollama.Enabled())
	assert.False(t, cfg.Dashboard.Memoize)
	assert.Equal(t, 2, cfg.Dashboard.WarmWorkers, "unparseable values are ignored")
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnv_OverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "soundclusters.yaml")
	doc := `
spotify:
  max_retries: 7
  retry_backoff: 2s
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	tests := []struct {
		name        string
		env         map[string]string
		wantRetries int
		wantBackoff time.Duration
	}{
		{"file only", nil, 7, 2 * time.Second},
		{
			"env wins",
			map[string]string{"SPOTIFY_MAX_RETRIES": "2", "SPOTIFY_RETRY_BACKOFF_MS": "150"},
			2, 150 * time.Millisecond,
		},
		{
			"bad env keeps file",
			map[string]string{"SPOTIFY_MAX_RETRIES": "0", "SPOTIFY_RETRY_BACKOFF_MS": "soon"},
			7, 2 * time.Second,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(path)
			require.NoError(t, err)
			cfg.ApplyEnv(func(k string) string { return tt.env[k] })

			assert.Equal(t, tt.wantRetries, cfg.Spotify.MaxRetries)
			assert.Equal(t, tt.wantBackoff, cfg.Spotify.RetryBackoff)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"no addr", func(c *Config) { c.Server.Addr = "" }, "server.addr"},
		{"no model", func(c *Config) { c.Artifacts.Model = "" }, "artifacts"},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "postgres" }, "postgres"},
		{"sqlite without path", func(c *Config) { c.Storage.Path = "" }, "storage.path"},
		{"zero rows", func(c *Config) { c.Dashboard.MoodRows = 0 }, "mood_rows"},
		{"negative workers", func(c *Config) { c.Dashboard.WarmWorkers = -1 }, "warm_workers"},
		{"no retries", func(c *Config) { c.Spotify.MaxRetries = 0 }, "spotify.max_retries"},
		{"half credentials", func(c *Config) { c.Spotify.ClientID = "id" }, "client_secret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}
