package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config represents the application configuration. CLI flags override
// these values; the file only supplies session defaults.
type Config struct {
	Scramble  ScrambleConfig  `mapstructure:"scramble"`
	Keystream KeystreamConfig `mapstructure:"keystream"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	History   HistoryConfig   `mapstructure:"history"`
	Monitor   MonitorConfig   `mapstructure:"monitor"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// ScrambleConfig holds the scrambling session defaults
type ScrambleConfig struct {
	Segments    int  `mapstructure:"segments"`     // Segments per line
	Permutation bool `mapstructure:"permutation"`  // Enable segment permutation
	Inversion   bool `mapstructure:"inversion"`    // Enable per-segment inversion
	Shift       bool `mapstructure:"shift"`        // Enable per-segment circular shift
	Workers     int  `mapstructure:"workers"`      // Parallel line workers per frame
}

// KeystreamConfig selects the keystream backend. Selection happens once
// at session start, never per call.
type KeystreamConfig struct {
	Backend  string `mapstructure:"backend"`   // "chacha20" or "prng"
	StreamID uint64 `mapstructure:"stream_id"` // Session stream identifier
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// HistoryConfig holds the session history database configuration
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// MonitorConfig holds the progress monitor web server configuration
type MonitorConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

// MetricsConfig holds the Prometheus exposition server configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

// Load loads configuration from file and environment variables
func Load(configFile string) (*Config, error) {
	setDefaults()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("ghostlink")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/ghostlink")
	}

	viper.SetEnvPrefix("GHOSTLINK")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// No config file is fine, defaults apply
		} else if os.IsNotExist(err) {
			// File explicitly specified but missing - also fine
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Scramble defaults
	viper.SetDefault("scramble.segments", 16)
	viper.SetDefault("scramble.permutation", true)
	viper.SetDefault("scramble.inversion", true)
	viper.SetDefault("scramble.shift", true)
	viper.SetDefault("scramble.workers", 4)

	// Keystream defaults
	viper.SetDefault("keystream.backend", "chacha20")
	viper.SetDefault("keystream.stream_id", 0)

	// Logging defaults
	viper.SetDefault("logging.level", "info")

	// History defaults
	viper.SetDefault("history.enabled", false)
	viper.SetDefault("history.path", "ghostlink.db")

	// Monitor defaults
	viper.SetDefault("monitor.enabled", false)
	viper.SetDefault("monitor.host", "127.0.0.1")
	viper.SetDefault("monitor.port", 8089)

	// Metrics defaults
	viper.SetDefault("metrics.enabled", false)
	viper.SetDefault("metrics.port", 9099)
	viper.SetDefault("metrics.path", "/metrics")
}
