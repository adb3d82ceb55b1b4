package setup

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/JeffStuy/cs-layerfilterutil/internal/config"
)

func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management utilities",
		Long: `Manage layerfilterutil configuration files.

This command provides utilities for generating and validating the
configuration that selects the document and seeds new documents.`,
	}

	cmd.AddCommand(newConfigGenerateCommand())
	cmd.AddCommand(newConfigValidateCommand())

	return cmd
}

func newConfigGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an example configuration file",
		Long: `Generate an example configuration file holding every default.

The file can be customized and passed with --config, or placed in one
of the directories searched by default.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputDir, _ := cmd.Flags().GetString("output")
			overwrite, _ := cmd.Flags().GetBool("overwrite")
			out := cmd.OutOrStdout()

			// Create output directory if it doesn't exist
			if err := os.MkdirAll(outputDir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}

			filename := filepath.Join(outputDir, "layerfilterutil.yaml")

			if _, err := os.Stat(filename); err == nil && !overwrite {
				fmt.Fprintf(out, "Skipping %s (file exists, use --overwrite to replace)\n", filename)
				return nil
			}

			data, err := yaml.Marshal(config.GetDefault())
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}

			if err := os.WriteFile(filename, data, 0644); err != nil {
				return fmt.Errorf("failed to write config file %s: %w", filename, err)
			}

			fmt.Fprintf(out, "Generated %s\n", filename)
			return nil
		},
	}

	cmd.Flags().String("output", ".", "output directory for configuration files")
	cmd.Flags().Bool("overwrite", false, "overwrite existing files")

	return cmd
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the loaded configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration is valid (document: %s)\n", cfg.Document.SQLite.Path)
			return nil
		},
	}
}
