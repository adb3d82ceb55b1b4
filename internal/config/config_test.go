package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestLoadConfig_Defaults(t *testing.T) {
	resetViper(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	def := GetDefault()
	assert.Equal(t, def.Document, cfg.Document)
	assert.Equal(t, 100, cfg.Search.MaxDepth)
	assert.True(t, cfg.Palette.Refresh)
	assert.Equal(t, []string{"0", "Defpoints"}, cfg.Seed.Layers)
	require.Len(t, cfg.Seed.Filters, 1)
	assert.Equal(t, "All Used Layers", cfg.Seed.Filters[0].Name)
	assert.False(t, cfg.Seed.Filters[0].AllowDelete)
}

func TestLoadConfig_Overrides(t *testing.T) {
	resetViper(t)
	viper.Set("document.sqlite.path", "/tmp/other.db")
	viper.Set("search.max_depth", 7)
	viper.Set("palette.refresh", false)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/other.db", cfg.Document.SQLite.Path)
	assert.Equal(t, 7, cfg.Search.MaxDepth)
	assert.False(t, cfg.Palette.Refresh)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown document type", func(c *Config) { c.Document.Type = "dwg" }},
		{"missing sqlite path", func(c *Config) { c.Document.SQLite.Path = "" }},
		{"zero depth", func(c *Config) { c.Search.MaxDepth = 0 }},
		{"unnamed seed filter", func(c *Config) { c.Seed.Filters[0].Name = "" }},
		{"unknown seed kind", func(c *Config) { c.Seed.Filters[0].Kind = "layer" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefault()
			require.NoError(t, cfg.Validate())
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDefault_YAML(t *testing.T) {
	data, err := yaml.Marshal(GetDefault())
	require.NoError(t, err)

	var back Config
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, GetDefault(), back)
	assert.Contains(t, string(data), "max_depth: 100")
}
