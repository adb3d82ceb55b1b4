package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

type VersionInfo struct {
	Version string
	Commit  string
}

func NewVersionCommand(info VersionInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "layerfilterutil %s (%s)\n", info.Version, info.Commit)
			return err
		},
	}
}
