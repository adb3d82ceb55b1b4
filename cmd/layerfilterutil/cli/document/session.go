package document

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JeffStuy/cs-layerfilterutil/internal/command"
	"github.com/JeffStuy/cs-layerfilterutil/internal/config"
	"github.com/JeffStuy/cs-layerfilterutil/internal/session"
	"github.com/JeffStuy/cs-layerfilterutil/pkg/resbuf"
)

// withSession opens the configured document for the duration of fn.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, s *session.Session) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx := cmd.Context()
	s := session.New(cfg, session.WithUsage(cmd.OutOrStdout()))
	if err := s.Open(ctx); err != nil {
		s.Close(ctx)
		return fmt.Errorf("failed to open document: %w", err)
	}
	defer s.Close(ctx)

	return fn(ctx, s)
}

// execute runs c and prints the result. Domain failures print the nil
// result and a reason on stderr; only internal failures fail the command.
func execute(cmd *cobra.Command, c command.Command) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	return withSession(cmd, func(ctx context.Context, s *session.Session) error {
		atoms, err := s.Execute(ctx, c)
		if err != nil {
			kind := command.Kind(err)
			if kind == "Internal" {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", kind, err)
			atoms = nil
		}
		return render(cmd.OutOrStdout(), format, atoms)
	})
}

func NewCallCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call [arguments...]",
		Short: "Call the utility with LISP arguments",
		Long: `Call the utility the way a drawing script does, passing the arguments as
LISP text. The arguments are joined with spaces before they are read.

Examples:
  layerfilterutil call '"list"'
  layerfilterutil call '"add" "Walls" "Group" nil ("A-WALL" "A-WALL-PATT")'
  layerfilterutil call '"find" ("nest count >= 1")'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}

			atoms, err := resbuf.ReadArgs(strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("failed to read arguments: %w", err)
			}

			return withSession(cmd, func(ctx context.Context, s *session.Session) error {
				return render(cmd.OutOrStdout(), format, s.Call(ctx, atoms))
			})
		},
	}

	addOutputFlag(cmd)
	return cmd
}

