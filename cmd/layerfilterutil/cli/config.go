package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var configPaths = []string{".", "./config", "/etc/layerfilterutil", "$HOME/.layerfilterutil"}

func initConfig(path string) error {
	// Load .env files from current directory
	envFiles := []string{".env", ".env.local"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err != nil {
			// Silently ignore missing .env files
			continue
		}
	}

	if path != "" {
		viper.SetConfigFile(path)
		configDir := filepath.Dir(path)
		for _, envFile := range envFiles {
			godotenv.Load(filepath.Join(configDir, envFile)) // Ignore errors
		}
	} else {
		viper.SetConfigName("layerfilterutil")
		viper.SetConfigType("yaml")
		for _, configPath := range configPaths {
			viper.AddConfigPath(configPath)
			for _, envFile := range envFiles {
				godotenv.Load(filepath.Join(configPath, envFile)) // Ignore errors
			}
		}
	}

	viper.SetEnvPrefix("LAYERFILTERUTIL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}
