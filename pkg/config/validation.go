package config

import "fmt"

// validate validates the configuration
func validate(cfg *Config) error {
	if cfg.Scramble.Segments <= 0 {
		return fmt.Errorf("scramble.segments must be positive")
	}
	if cfg.Scramble.Segments > 256 {
		return fmt.Errorf("scramble.segments must be at most 256")
	}
	if cfg.Scramble.Workers < 0 {
		return fmt.Errorf("scramble.workers must not be negative")
	}

	switch cfg.Keystream.Backend {
	case "chacha20", "prng":
	default:
		return fmt.Errorf("keystream.backend must be chacha20 or prng, got %q", cfg.Keystream.Backend)
	}

	if cfg.History.Enabled && cfg.History.Path == "" {
		return fmt.Errorf("history.path is required when history is enabled")
	}

	if cfg.Monitor.Enabled {
		if cfg.Monitor.Port <= 0 || cfg.Monitor.Port > 65535 {
			return fmt.Errorf("monitor.port must be between 1 and 65535")
		}
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Port <= 0 || cfg.Metrics.Port > 65535 {
			return fmt.Errorf("metrics.port must be between 1 and 65535")
		}
		if cfg.Metrics.Path == "" {
			return fmt.Errorf("metrics.path is required when metrics are enabled")
		}
	}

	return nil
}
