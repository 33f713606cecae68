package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	// Companion media server (enables remote progress reporting when configured)
	Server ServerConfig `koanf:"server"`

	// Engine tuning
	Engine EngineConfig `koanf:"engine"`
}

// ServerConfig holds the companion server connection settings.
type ServerConfig struct {
	URL   string `koanf:"url"`   // e.g., "http://localhost:8096"
	Token string `koanf:"token"` // API token
}

// EngineConfig holds position-engine tuning knobs.
type EngineConfig struct {
	AudioFlushSecs     int `koanf:"audio_flush_secs"`     // periodic flush while listening (default: 5)
	TextFlushSecs      int `koanf:"text_flush_secs"`      // periodic flush while reading (default: 10)
	SettleDelayMS      int `koanf:"settle_delay_ms"`      // suppression tail after a seek (default: 600)
	SuppressDeadlineMS int `koanf:"suppress_deadline_ms"` // hard suppression timeout (default: 5000)
	IndexSamples       int `koanf:"index_samples"`        // location index granularity (default: 1500)
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	configPaths := getConfigPaths()

	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	// Normalize server URL (remove trailing slash)
	cfg.Server.URL = strings.TrimSuffix(cfg.Server.URL, "/")

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/ribbon/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "ribbon", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

// HasServerConfig returns true if remote progress reporting is configured.
func (c *Config) HasServerConfig() bool {
	return c.Server.URL != "" && c.Server.Token != ""
}

// GetEngineConfig returns the engine configuration with defaults applied.
func (c *Config) GetEngineConfig() EngineConfig {
	cfg := c.Engine

	// Apply defaults
	if cfg.AudioFlushSecs <= 0 {
		cfg.AudioFlushSecs = 5
	}
	if cfg.TextFlushSecs <= 0 {
		cfg.TextFlushSecs = 10
	}
	if cfg.SettleDelayMS <= 0 {
		cfg.SettleDelayMS = 600
	}
	if cfg.SuppressDeadlineMS <= 0 {
		cfg.SuppressDeadlineMS = 5000
	}
	if cfg.IndexSamples <= 0 {
		cfg.IndexSamples = 1500
	}

	return cfg
}
