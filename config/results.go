package config

import (
	"fmt"
	"slices"

	"github.com/kilianp07/evrace/core/factory"
	"github.com/kilianp07/evrace/core/results"
)

// ResultsConfig defines settings for the scenario result store and rotation.
type ResultsConfig struct {
	// Backend selects the store type: "none", "jsonl", "rotating_jsonl" or "sqlite".
	Backend string `json:"backend"`
	// Path is the file location of the store.
	Path string `json:"path"`
	// MaxSizeMB triggers rotation when the file exceeds this size in megabytes.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *ResultsConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
	if c.Path == "" && c.Backend != "none" {
		c.Path = "results.jsonl"
	}
}

// Validate checks mandatory fields.
func (c ResultsConfig) Validate() error {
	if !slices.Contains(results.Backends(), c.Backend) {
		return fmt.Errorf("unknown backend %s", c.Backend)
	}
	if c.Backend != "none" && c.Path == "" {
		return fmt.Errorf("path is required")
	}
	return nil
}

// Module converts the section to the store factory input.
func (c ResultsConfig) Module() factory.ModuleConfig {
	return factory.ModuleConfig{Type: c.Backend, Conf: map[string]any{
		"path":         c.Path,
		"max_size_mb":  c.MaxSizeMB,
		"max_backups":  c.MaxBackups,
		"max_age_days": c.MaxAgeDays,
	}}
}
