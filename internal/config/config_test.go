package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadWritesDefaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "armusic")
	m := NewManager(dir, zap.NewNop())

	require.NoError(t, m.Load())

	data, err := os.ReadFile(m.GetPath())
	require.NoError(t, err)
	var written Config
	require.NoError(t, json.Unmarshal(data, &written))
	assert.Equal(t, BackendFile, written.Store.Backend)
	assert.Empty(t, written.DataDir, "derived data dir is not written back")

	cfg := m.Get()
	assert.Equal(t, filepath.Join(dir, "data"), cfg.DataDir)
	assert.Equal(t, 100, cfg.Playback.DefaultVolume)
	assert.Equal(t, 250*time.Millisecond, cfg.Playback.Tick())
	assert.Equal(t, 15*time.Second, cfg.Providers.Timeout())
	assert.False(t, cfg.HTTP.Enabled)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	partial := `{"playback":{"defaultVolume":40},"providers":{"searchUrl":"http://search.local/api"}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(partial), 0600))

	m := NewManager(dir, zap.NewNop())
	require.NoError(t, m.Load())

	cfg := m.Get()
	assert.Equal(t, 40, cfg.Playback.DefaultVolume)
	assert.Equal(t, 250, cfg.Playback.TickMs, "missing keys keep defaults")
	assert.Equal(t, "http://search.local/api", cfg.Providers.SearchURL)
	assert.Equal(t, BackendFile, cfg.Store.Backend)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("ARMUSIC_STORE_BACKEND", "redis")
	t.Setenv("ARMUSIC_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("ARMUSIC_LYRICS_URL", "http://lyrics.local")
	t.Setenv("ARMUSIC_HTTP_ADDR", "127.0.0.1:9000")

	m := NewManager(t.TempDir(), zap.NewNop())
	require.NoError(t, m.Load())

	cfg := m.Get()
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Store.RedisURL)
	assert.Equal(t, "http://lyrics.local", cfg.Providers.LyricsURL)
	assert.True(t, cfg.HTTP.Enabled)
	assert.Equal(t, "127.0.0.1:9000", cfg.HTTP.Addr)

	data, err := os.ReadFile(m.GetPath())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "lyrics.local", "overrides are not persisted")
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		config string
	}{
		{"malformed", `{"store":`},
		{"unknown backend", `{"store":{"backend":"sqlite"}}`},
		{"redis without url", `{"store":{"backend":"redis"}}`},
		{"volume out of range", `{"playback":{"defaultVolume":140}}`},
		{"zero tick", `{"playback":{"tickMs":0}}`},
		{"http without addr", `{"http":{"enabled":true,"addr":""}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(tt.config), 0600))
			assert.Error(t, NewManager(dir, zap.NewNop()).Load())
		})
	}
}
