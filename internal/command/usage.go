package command

import (
	"fmt"
	"io"
)

// FunctionName is the name callers invoke the utility by.
const FunctionName = "layerFilterUtil"

var usageLines = []struct {
	title string
	calls []string
}{
	{"Display Usage:", []string{`(%s) or`, `(%s "usage")`}},
	{"List all of the layer filters:", []string{`(%s "list")`}},
	{"Find a layer filter:", []string{`(%s "find" "FilterNameToFind")`}},
	{"Find layer filters by criteria:", []string{`(%s "find" '("layer name = Name" "nest count >= 1"))`}},
	{"Add a top level property filter:", []string{`(%s "add" "FilterNameToAdd" "Property" nil "Expression")`}},
	{"Add a property filter to an existing filter:", []string{`(%s "add" "FilterNameToAdd" "Property" "ExistingFilterName" "Expression")`}},
	{"Add a top level group filter:", []string{`(%s "add" "FilterNameToAdd" "Group" nil "LayerName" "LayerName")`}},
	{"Add a group filter to an existing filter:", []string{`(%s "add" "FilterNameToAdd" "Group" "ExistingFilterName" "LayerName" "LayerName")`}},
	{"Delete a layer filter:", []string{`(%s "delete" "FilterNameToDelete")`}},
	{"Delete all allowable layer filters:", []string{`(%s "delete" "*")`}},
}

// WriteUsage prints the calling convention to w.
func WriteUsage(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "Usage:"); err != nil {
		return err
	}
	for _, u := range usageLines {
		fmt.Fprintf(w, "● %s\n", u.title)
		for _, call := range u.calls {
			fmt.Fprintf(w, "\t\t"+call+"\n", FunctionName)
		}
	}
	fmt.Fprintln(w, "● The case of names does not matter except that, when a")
	fmt.Fprintln(w, "\tfilter is added, the case of the name is used.")
	_, err := fmt.Fprintln(w, "● Returns a list when successful or nil when unsuccessful")
	return err
}
