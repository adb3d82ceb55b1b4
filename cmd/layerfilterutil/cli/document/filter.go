package document

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JeffStuy/cs-layerfilterutil/internal/command"
	"github.com/JeffStuy/cs-layerfilterutil/internal/criteria"
)

func NewFilterCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Manage layer filters",
		Long:  "List, find, add and delete the layer filters saved with the document.",
	}

	cmd.AddCommand(newFilterListCommand())
	cmd.AddCommand(newFilterFindCommand())
	cmd.AddCommand(newFilterAddCommand())
	cmd.AddCommand(newFilterRemoveCommand())
	cmd.AddCommand(newFilterUsageCommand())

	return cmd
}

func newFilterListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List every layer filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd, command.List{})
		},
	}

	addOutputFlag(cmd)
	return cmd
}

func newFilterFindCommand() *cobra.Command {
	var where []string

	cmd := &cobra.Command{
		Use:   "find [name]",
		Short: "Find layer filters by name or criteria",
		Long: `Find a single layer filter by name, or every filter matching the criteria
given with --where. Each criterion reads "<field> <operator> <value>", where
field is one of: layer name, parent name, is group, allow delete,
allow nested, nest count.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := findCommand(args, where)
			if err != nil {
				return err
			}
			return execute(cmd, c)
		},
	}

	cmd.Flags().StringArrayVarP(&where, "where", "w", nil, "criterion to match, may be repeated")
	addOutputFlag(cmd)
	return cmd
}

func findCommand(args, where []string) (command.Command, error) {
	if len(where) == 0 {
		if len(args) == 0 {
			return nil, fmt.Errorf("a filter name or at least one --where criterion is required")
		}
		return command.FindOne{Filter: args[0]}, nil
	}

	set, err := criteria.ParseTokens(where)
	if err != nil {
		return nil, err
	}
	if len(args) > 0 {
		set = set.With(criteria.NameIs(args[0]))
	}
	return command.Find{Criteria: set}, nil
}

func newFilterAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a layer filter",
	}

	cmd.AddCommand(newFilterAddPropertyCommand())
	cmd.AddCommand(newFilterAddGroupCommand())

	return cmd
}

func newFilterAddPropertyCommand() *cobra.Command {
	var parent string

	cmd := &cobra.Command{
		Use:   "property <name> <expression>",
		Short: "Add a property filter",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd, command.AddProperty{
				Filter:     args[0],
				Parent:     parent,
				Expression: args[1],
			})
		},
	}

	cmd.Flags().StringVarP(&parent, "parent", "p", "", "name of the filter to nest under")
	addOutputFlag(cmd)
	return cmd
}

func newFilterAddGroupCommand() *cobra.Command {
	var parent string

	cmd := &cobra.Command{
		Use:   "group <name> <layer> [layer...]",
		Short: "Add a group filter",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd, command.AddGroup{
				Filter: args[0],
				Parent: parent,
				Layers: args[1:],
			})
		},
	}

	cmd.Flags().StringVarP(&parent, "parent", "p", "", "name of the filter to nest under")
	addOutputFlag(cmd)
	return cmd
}

func newFilterRemoveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <name|*>",
		Short: "Delete a layer filter, or every deletable filter with *",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == command.DeleteAllName {
				return execute(cmd, command.DeleteAll{})
			}
			return execute(cmd, command.Delete{Filter: args[0]})
		},
	}

	addOutputFlag(cmd)
	return cmd
}

func newFilterUsageCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Print the scripting usage text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return command.WriteUsage(cmd.OutOrStdout())
		},
	}
}
