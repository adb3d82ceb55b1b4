package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func NewRootCommand(info VersionInfo) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:           "layerfilterutil",
		Short:         "Layer filter utility",
		Long:          "Manage the layer filter tree of a drawing document: list, find, add and delete property and group filters.",
		SilenceErrors: true,
		SilenceUsage:  true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(path)
		},
	}

	cmd.PersistentFlags().StringVar(&path, "config", "", "config file (default is ./layerfilterutil.yaml)")
	cmd.PersistentFlags().String("document", "", "path of the drawing document database")
	cmd.PersistentFlags().Bool("no-color", false, "Disables colored command output")
	cmd.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")

	viper.BindPFlag("document.sqlite.path", cmd.PersistentFlags().Lookup("document"))
	viper.BindPFlag("log.level", cmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.no_color", cmd.PersistentFlags().Lookup("no-color"))

	cmd.Version = fmt.Sprintf("%s.%s", info.Version, info.Commit)

	return cmd
}
