package config

import (
	"fmt"
	"strings"

	"github.com/kilianp07/evrace/infra/logger"
)

// LoggingConfig selects the log verbosity.
type LoggingConfig struct {
	Level string `json:"level"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
}

// Validate checks mandatory fields.
func (c LoggingConfig) Validate() error {
	switch strings.ToLower(c.Level) {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("unknown level %s", c.Level)
	}
}

// Logger converts the section for logger.Configure.
func (c LoggingConfig) Logger() logger.Config {
	return logger.Config{Level: c.Level}
}
