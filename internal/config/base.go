package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	ShutdownTimeout string `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	Log      LogConfig      `mapstructure:"log"      yaml:"log"`
	Document DocumentConfig `mapstructure:"document" yaml:"document"`
	Palette  PaletteConfig  `mapstructure:"palette"  yaml:"palette"`
	Search   SearchConfig   `mapstructure:"search"   yaml:"search"`
	Seed     SeedConfig     `mapstructure:"seed"     yaml:"seed"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}

	setDefaults()

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the settings that cannot be corrected later.
func (cfg *Config) Validate() error {
	switch strings.ToLower(cfg.Document.Type) {
	case "sqlite":
		if cfg.Document.SQLite.Path == "" {
			return fmt.Errorf("document.sqlite.path is required")
		}
	default:
		return fmt.Errorf("unsupported document type '%s'", cfg.Document.Type)
	}

	if cfg.Search.MaxDepth < 1 {
		return fmt.Errorf("search.max_depth must be at least 1, got %d", cfg.Search.MaxDepth)
	}

	for i, f := range cfg.Seed.Filters {
		if f.Name == "" {
			return fmt.Errorf("seed.filters[%d]: name is required", i)
		}
		switch strings.ToLower(f.Kind) {
		case "property", "group":
		default:
			return fmt.Errorf("seed.filters[%d]: unknown kind '%s'", i, f.Kind)
		}
	}

	return nil
}
