// Package command turns a caller's positional arguments into typed commands
// and runs them against the registry, producing the response stream.
package command

import (
	"github.com/JeffStuy/cs-layerfilterutil/internal/criteria"
)

// Command is one decoded request.
type Command interface {
	// Name is the calling-convention verb the command was decoded from.
	Name() string
	// Mutates reports whether a successful run changes the tree.
	Mutates() bool
}

type List struct{}

type FindOne struct {
	Filter string
}

type Find struct {
	Criteria criteria.Set
}

type AddProperty struct {
	Filter     string
	Parent     string
	Expression string
}

type AddGroup struct {
	Filter string
	Parent string
	Layers []string
}

type Delete struct {
	Filter string
}

type DeleteAll struct{}

type Usage struct{}

func (List) Name() string        { return "list" }
func (FindOne) Name() string     { return "find" }
func (Find) Name() string        { return "find" }
func (AddProperty) Name() string { return "add" }
func (AddGroup) Name() string    { return "add" }
func (Delete) Name() string      { return "delete" }
func (DeleteAll) Name() string   { return "delete" }
func (Usage) Name() string       { return "usage" }

func (List) Mutates() bool        { return false }
func (FindOne) Mutates() bool     { return false }
func (Find) Mutates() bool        { return false }
func (AddProperty) Mutates() bool { return true }
func (AddGroup) Mutates() bool    { return true }
func (Delete) Mutates() bool      { return true }
func (DeleteAll) Mutates() bool   { return true }
func (Usage) Mutates() bool       { return false }
