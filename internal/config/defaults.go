package config

import "github.com/spf13/viper"

func GetDefault() Config {
	return Config{
		ShutdownTimeout: "10s",

		Log: LogConfig{
			Level:      "WARN",
			TimeFormat: "2006-01-02 15:04:05",
			File:       "",
			NoColor:    false,
			JSON:       false,
			NoTerminal: false,
			Rotation: LogRotationConfig{
				MaxSize:    128,
				MaxBackups: 5,
				MaxAge:     16,
				Compress:   false,
			},
		},

		Document: DocumentConfig{
			Type: "sqlite",
			Name: "Drawing1",
			SQLite: DocumentSQLiteConfig{
				Path: "./drawing.db",
			},
		},

		Palette: PaletteConfig{
			Refresh: true,
		},

		Search: SearchConfig{
			MaxDepth: 100,
		},

		Seed: SeedConfig{
			Layers: []string{"0", "Defpoints"},
			Filters: []SeedFilterConfig{
				{
					Name:        "All Used Layers",
					Kind:        "property",
					Expression:  `USED=="True"`,
					AllowDelete: false,
					AllowNested: false,
				},
			},
		},
	}
}

func setDefaults() {
	defaults := GetDefault()

	viper.SetDefault("shutdown_timeout", defaults.ShutdownTimeout)

	viper.SetDefault("log.level", defaults.Log.Level)
	viper.SetDefault("log.time_format", defaults.Log.TimeFormat)
	viper.SetDefault("log.file", defaults.Log.File)
	viper.SetDefault("log.no_color", defaults.Log.NoColor)
	viper.SetDefault("log.json", defaults.Log.JSON)
	viper.SetDefault("log.no_terminal", defaults.Log.NoTerminal)
	viper.SetDefault("log.rotation.max_size", defaults.Log.Rotation.MaxSize)
	viper.SetDefault("log.rotation.max_backups", defaults.Log.Rotation.MaxBackups)
	viper.SetDefault("log.rotation.max_age", defaults.Log.Rotation.MaxAge)
	viper.SetDefault("log.rotation.compress", defaults.Log.Rotation.Compress)

	viper.SetDefault("document.type", defaults.Document.Type)
	viper.SetDefault("document.name", defaults.Document.Name)
	viper.SetDefault("document.sqlite.path", defaults.Document.SQLite.Path)

	viper.SetDefault("palette.refresh", defaults.Palette.Refresh)
	viper.SetDefault("search.max_depth", defaults.Search.MaxDepth)

	viper.SetDefault("seed.layers", defaults.Seed.Layers)
	viper.SetDefault("seed.filters", defaults.Seed.Filters)
}
