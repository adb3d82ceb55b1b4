package config

// DocumentConfig selects the store holding the active drawing's layer table
// and filter tree.
type DocumentConfig struct {
	Type   string               `mapstructure:"type"   yaml:"type"`
	Name   string               `mapstructure:"name"   yaml:"name"`
	SQLite DocumentSQLiteConfig `mapstructure:"sqlite" yaml:"sqlite"`
}

type DocumentSQLiteConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// PaletteConfig controls the layer palette refresh after changes.
type PaletteConfig struct {
	Refresh bool `mapstructure:"refresh" yaml:"refresh"`
}

// SearchConfig bounds tree traversal.
type SearchConfig struct {
	MaxDepth int `mapstructure:"max_depth" yaml:"max_depth"`
}

// SeedConfig describes the layers and filters every new document starts with.
type SeedConfig struct {
	Layers  []string           `mapstructure:"layers"  yaml:"layers"`
	Filters []SeedFilterConfig `mapstructure:"filters" yaml:"filters"`
}

type SeedFilterConfig struct {
	Name        string   `mapstructure:"name"         yaml:"name"`
	Kind        string   `mapstructure:"kind"         yaml:"kind"`
	Parent      string   `mapstructure:"parent"       yaml:"parent,omitempty"`
	Expression  string   `mapstructure:"expression"   yaml:"expression,omitempty"`
	Layers      []string `mapstructure:"layers"       yaml:"layers,omitempty"`
	AllowDelete bool     `mapstructure:"allow_delete" yaml:"allow_delete"`
	AllowNested bool     `mapstructure:"allow_nested" yaml:"allow_nested"`
}
