package document

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/JeffStuy/cs-layerfilterutil/internal/session"
	"github.com/JeffStuy/cs-layerfilterutil/pkg/db/store"
)

func NewLayerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layer",
		Short: "Manage the document layer table",
		Long:  "List and create the layers that group filters refer to.",
	}

	cmd.AddCommand(newLayerListCommand())
	cmd.AddCommand(newLayerAddCommand())

	return cmd
}

func newLayerListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List the layer table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *session.Session) error {
				layers, err := s.Store().ListLayers(ctx)
				if err != nil {
					return err
				}

				table := tablewriter.NewWriter(cmd.OutOrStdout())
				table.Header([]string{"Position", "Name"})
				for _, l := range layers {
					if err := table.Append([]string{strconv.Itoa(l.Position), l.Name}); err != nil {
						return err
					}
				}
				return table.Render()
			})
		},
	}
}

func newLayerAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name> [name...]",
		Short: "Add layers to the layer table",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *session.Session) error {
				for _, name := range args {
					layer, err := s.Store().CreateLayer(ctx, name)
					if errors.Is(err, store.ErrLayerExists) {
						fmt.Fprintf(cmd.ErrOrStderr(), "Skipping %s (layer exists)\n", name)
						continue
					}
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Added layer %s\n", layer.Name)
				}
				return nil
			})
		},
	}
}
