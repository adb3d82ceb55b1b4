package document

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/JeffStuy/cs-layerfilterutil/pkg/resbuf"
)

const (
	outputLisp  = "lisp"
	outputAtoms = "atoms"
	outputTable = "table"
)

func addOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", outputLisp, "output format (lisp, atoms, table)")
}

func outputFormat(cmd *cobra.Command) (string, error) {
	format, _ := cmd.Flags().GetString("output")
	switch format = strings.ToLower(format); format {
	case outputLisp, outputAtoms, outputTable:
		return format, nil
	default:
		return "", fmt.Errorf("unknown output format '%s'", format)
	}
}

// render writes a result stream in the requested format.
func render(w io.Writer, format string, atoms []resbuf.Atom) error {
	switch format {
	case outputAtoms:
		if len(atoms) == 0 {
			_, err := fmt.Fprintln(w, resbuf.Nil())
			return err
		}
		_, err := io.WriteString(w, resbuf.Dump(atoms))
		return err
	case outputTable:
		records, err := resbuf.DecodeResponse(atoms)
		if err != nil {
			return err
		}
		if records == nil {
			_, err := fmt.Fprintln(w, "nil")
			return err
		}
		return renderTable(w, records)
	default:
		text, err := resbuf.Format(atoms)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, text)
		return err
	}
}

func renderTable(w io.Writer, records []resbuf.Record) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Name", "Type", "Parent", "Definition", "Delete", "Nested", "Children"})

	for _, r := range records {
		kind, definition := "Property", r.Expression
		if r.IsGroup {
			kind, definition = "Group", strings.Join(r.Layers, ", ")
		}
		parent := r.ParentName
		if parent == "" {
			parent = "-"
		}
		if err := table.Append([]string{
			r.Name,
			kind,
			parent,
			definition,
			strconv.FormatBool(r.AllowDelete),
			strconv.FormatBool(r.AllowNested),
			strconv.Itoa(r.NestCount),
		}); err != nil {
			return err
		}
	}

	return table.Render()
}
