// Package config handles daemon configuration file management.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Store backends
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config represents the daemon configuration
type Config struct {
	// DataDir is where the file store keeps persisted state
	DataDir string `json:"dataDir"`

	Store     StoreConfig     `json:"store"`
	Providers ProvidersConfig `json:"providers"`
	Playback  PlaybackConfig  `json:"playback"`
	HTTP      HTTPConfig      `json:"http"`
	Media     MediaConfig     `json:"media"`
}

// StoreConfig selects the durable key-value backend
type StoreConfig struct {
	// Backend is one of "file", "redis" or "memory" (default: file)
	Backend string `json:"backend"`

	RedisURL    string `json:"redisUrl,omitempty"`
	RedisPrefix string `json:"redisPrefix,omitempty"`
}

// ProvidersConfig holds the endpoints of the network providers.
// An empty endpoint disables that provider.
type ProvidersConfig struct {
	SearchURL  string `json:"searchUrl"`
	SuggestURL string `json:"suggestUrl"`
	LyricsURL  string `json:"lyricsUrl"`
	ArtURL     string `json:"artUrl"`

	// TimeoutSeconds bounds each provider request (default: 15)
	TimeoutSeconds int `json:"timeoutSeconds"`
}

// Timeout returns the provider request timeout
func (p ProvidersConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// PlaybackConfig contains playback-related settings
type PlaybackConfig struct {
	// DefaultVolume level 0 - 100 (default: 100)
	DefaultVolume int `json:"defaultVolume"`

	// TickMs is the position update interval of the media clock (default: 250)
	TickMs int `json:"tickMs"`
}

// Tick returns the media clock interval
func (p PlaybackConfig) Tick() time.Duration {
	return time.Duration(p.TickMs) * time.Millisecond
}

// HTTPConfig controls the HTTP control API
type HTTPConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr"`
}

// MediaConfig controls OS media session integration
type MediaConfig struct {
	Enabled bool `json:"enabled"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Backend:     BackendFile,
			RedisPrefix: "armusic",
		},
		Providers: ProvidersConfig{
			TimeoutSeconds: 15,
		},
		Playback: PlaybackConfig{
			DefaultVolume: 100,
			TickMs:        250,
		},
		HTTP: HTTPConfig{
			Enabled: false,
			Addr:    "127.0.0.1:7337",
		},
		Media: MediaConfig{
			Enabled: true,
		},
	}
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendFile, BackendMemory:
	case BackendRedis:
		if c.Store.RedisURL == "" {
			return fmt.Errorf("store backend %q requires redisUrl", c.Store.Backend)
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Playback.DefaultVolume < 0 || c.Playback.DefaultVolume > 100 {
		return fmt.Errorf("defaultVolume %d out of range 0-100", c.Playback.DefaultVolume)
	}
	if c.Playback.TickMs <= 0 {
		return fmt.Errorf("tickMs must be positive, got %d", c.Playback.TickMs)
	}
	if c.Providers.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeoutSeconds must be positive, got %d", c.Providers.TimeoutSeconds)
	}
	if c.HTTP.Enabled && c.HTTP.Addr == "" {
		return fmt.Errorf("http enabled without addr")
	}
	return nil
}

// envOverrides maps environment variables onto config fields
var envOverrides = []struct {
	name  string
	apply func(c *Config, v string)
}{
	{"ARMUSIC_STORE_BACKEND", func(c *Config, v string) { c.Store.Backend = v }},
	{"ARMUSIC_REDIS_URL", func(c *Config, v string) { c.Store.RedisURL = v }},
	{"ARMUSIC_SEARCH_URL", func(c *Config, v string) { c.Providers.SearchURL = v }},
	{"ARMUSIC_SUGGEST_URL", func(c *Config, v string) { c.Providers.SuggestURL = v }},
	{"ARMUSIC_LYRICS_URL", func(c *Config, v string) { c.Providers.LyricsURL = v }},
	{"ARMUSIC_ART_URL", func(c *Config, v string) { c.Providers.ArtURL = v }},
	{"ARMUSIC_HTTP_ADDR", func(c *Config, v string) {
		c.HTTP.Addr = v
		c.HTTP.Enabled = true
	}},
}

// Manager handles loading and saving configuration
type Manager struct {
	configDir  string
	configPath string
	config     *Config
	logger     *zap.Logger
}

// NewManager creates a new configuration manager
func NewManager(configDir string, logger *zap.Logger) *Manager {
	return &Manager{
		configDir:  configDir,
		configPath: filepath.Join(configDir, "config.json"),
		config:     DefaultConfig(),
		logger:     logger.Named("config"),
	}
}

// Load reads the configuration from disk, writing the defaults on first start,
// then applies environment overrides. Overrides are never written back.
func (m *Manager) Load() error {
	// Ensure config directory exists
	if err := os.MkdirAll(m.configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	config := DefaultConfig() // Start with defaults
	data, err := os.ReadFile(m.configPath)
	switch {
	case os.IsNotExist(err):
		m.config = config
		if err := m.Save(); err != nil {
			return err
		}
		m.logger.Info("Wrote default config", zap.String("path", m.configPath))
	case err != nil:
		return fmt.Errorf("failed to read config: %w", err)
	default:
		if err := json.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
	}

	for _, o := range envOverrides {
		if v, ok := os.LookupEnv(o.name); ok && v != "" {
			o.apply(config, v)
			m.logger.Debug("Applied environment override", zap.String("var", o.name))
		}
	}
	if config.DataDir == "" {
		config.DataDir = filepath.Join(m.configDir, "data")
	}

	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", m.configPath, err)
	}

	m.config = config
	return nil
}

// Save writes the configuration to disk
func (m *Manager) Save() error {
	// Ensure config directory exists
	if err := os.MkdirAll(m.configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Marshal to JSON with indentation
	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(m.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Get returns the current configuration
func (m *Manager) Get() *Config {
	return m.config
}

// GetPath returns the config file path
func (m *Manager) GetPath() string {
	return m.configPath
}
