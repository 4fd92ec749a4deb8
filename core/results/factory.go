package results

import (
	"fmt"

	"github.com/kilianp07/evrace/core/factory"
)

// Options configures a store backend. Rotation settings only apply to the
// rotating_jsonl backend.
type Options struct {
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

var backends = factory.NewRegistry[Store]()

func init() {
	_ = backends.Register("none", func(map[string]any) (Store, error) {
		return NopStore{}, nil
	})
	_ = backends.Register("jsonl", func(conf map[string]any) (Store, error) {
		o, err := decodeOptions(conf)
		if err != nil {
			return nil, err
		}
		return NewJSONLStore(o.Path)
	})
	_ = backends.Register("rotating_jsonl", func(conf map[string]any) (Store, error) {
		o, err := decodeOptions(conf)
		if err != nil {
			return nil, err
		}
		return NewRotatingJSONLStore(o.Path, o.MaxSizeMB, o.MaxBackups, o.MaxAgeDays)
	})
	_ = backends.Register("sqlite", func(conf map[string]any) (Store, error) {
		o, err := decodeOptions(conf)
		if err != nil {
			return nil, err
		}
		return NewSQLiteStore(o.Path)
	})
}

func decodeOptions(conf map[string]any) (Options, error) {
	var o Options
	if err := factory.Decode(conf, &o); err != nil {
		return o, err
	}
	if o.Path == "" {
		return o, fmt.Errorf("results store: path is required")
	}
	return o, nil
}

// Backends lists the available store types.
func Backends() []string { return backends.Names() }

// Open creates the store named by cfg.Type. An empty type disables storage.
func Open(cfg factory.ModuleConfig) (Store, error) {
	if cfg.Type == "" {
		return NopStore{}, nil
	}
	s, err := backends.Create(cfg)
	if err != nil {
		return nil, fmt.Errorf("results store: %w", err)
	}
	return s, nil
}
