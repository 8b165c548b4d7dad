// Package config loads runtime settings from .scriptsync.yaml, SCRIPTSYNC_*
// environment variables and command line flags.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "SCRIPTSYNC"

// AssistConfig selects the optional formatting backend.
type AssistConfig struct {
	Provider string `mapstructure:"provider"`
	Model    string `mapstructure:"model"`
	URL      string `mapstructure:"url"`
	APIKey   string `mapstructure:"api_key"`
}

// Config holds all runtime configuration.
type Config struct {
	ThrottleInterval  time.Duration `mapstructure:"throttle_interval"`
	HoldDuration      time.Duration `mapstructure:"hold_duration"`
	AutoScroll        bool          `mapstructure:"autoscroll"`
	AutoLinkMinLength int           `mapstructure:"autolink_min_length"`
	SnapshotCacheSize int           `mapstructure:"snapshot_cache_size"`
	DBPath            string        `mapstructure:"db_path"`
	LogLevel          string        `mapstructure:"log_level"`
	Verbose           bool          `mapstructure:"verbose"`
	Assist            AssistConfig  `mapstructure:"assist"`
}

// DefaultDBPath is ~/.scriptsync/sessions.db.
func DefaultDBPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".scriptsync", "sessions.db")
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("throttle_interval", 33*time.Millisecond)
	viper.SetDefault("hold_duration", 2*time.Second)
	viper.SetDefault("autoscroll", true)
	viper.SetDefault("autolink_min_length", 0)
	viper.SetDefault("snapshot_cache_size", 4096)
	viper.SetDefault("db_path", DefaultDBPath())
	viper.SetDefault("log_level", "info")
	viper.SetDefault("verbose", false)
	viper.SetDefault("assist.provider", "")
	viper.SetDefault("assist.model", "")
	viper.SetDefault("assist.url", "")
	viper.SetDefault("assist.api_key", "")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.ThrottleInterval < 0 {
		cfg.ThrottleInterval = 0
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath()
	}
	return cfg, nil
}
