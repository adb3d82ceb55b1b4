package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JeffStuy/cs-layerfilterutil/internal/criteria"
	"github.com/JeffStuy/cs-layerfilterutil/internal/filtertree"
	"github.com/JeffStuy/cs-layerfilterutil/pkg/resbuf"
)

// ErrMalformedArguments is returned for calls whose shape or atom types do not
// fit any command.
var ErrMalformedArguments = errors.New("malformed arguments")

// DeleteAllName is the filter name that requests a bulk delete.
const DeleteAllName = "*"

// Decode maps the positional arguments of one call onto a Command. The first
// argument is the verb, matched case-insensitively; no arguments at all ask
// for usage.
func Decode(atoms []resbuf.Atom) (Command, error) {
	if len(atoms) == 0 {
		return Usage{}, nil
	}

	args, err := resbuf.Parse(atoms)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedArguments, err)
	}
	if args[0].Kind != resbuf.ValueText {
		return nil, fmt.Errorf("%w: function name is not text", ErrMalformedArguments)
	}

	verb := strings.ToLower(args[0].Text)
	switch verb {
	case "list":
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: list takes no arguments", ErrMalformedArguments)
		}
		return List{}, nil
	case "find":
		return decodeFind(args[1:])
	case "add":
		return decodeAdd(args[1:])
	case "delete":
		return decodeDelete(args[1:])
	case "usage":
		return Usage{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown function %q", ErrMalformedArguments, args[0].Text)
	}
}

// find "Name" | find ("token" ...)
func decodeFind(args []resbuf.Value) (Command, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: find takes a name or a criteria list", ErrMalformedArguments)
	}

	switch arg := args[0]; arg.Kind {
	case resbuf.ValueText:
		return FindOne{Filter: arg.Text}, nil
	case resbuf.ValueList:
		tokens, err := texts(arg.Items)
		if err != nil || len(tokens) == 0 {
			return nil, fmt.Errorf("%w: criteria must be a non-empty list of text", ErrMalformedArguments)
		}
		set, err := criteria.ParseTokens(tokens)
		if err != nil {
			return nil, err
		}
		return Find{Criteria: set}, nil
	default:
		return nil, fmt.Errorf("%w: find takes a name or a criteria list", ErrMalformedArguments)
	}
}

// add Name Type Parent Payload...
func decodeAdd(args []resbuf.Value) (Command, error) {
	if len(args) < 4 {
		return nil, fmt.Errorf("%w: add needs a name, type, parent and payload", ErrMalformedArguments)
	}
	if args[0].Kind != resbuf.ValueText || args[1].Kind != resbuf.ValueText {
		return nil, fmt.Errorf("%w: filter name and type must be text", ErrMalformedArguments)
	}

	var parent string
	switch args[2].Kind {
	case resbuf.ValueText:
		parent = args[2].Text
	case resbuf.ValueNil:
	default:
		return nil, fmt.Errorf("%w: parent must be text or nil", ErrMalformedArguments)
	}

	name := args[0].Text
	kind, ok := filtertree.ParseKind(args[1].Text)
	if !ok {
		return nil, fmt.Errorf("%w: unknown filter type %q", ErrMalformedArguments, args[1].Text)
	}

	payload := args[3:]
	switch kind {
	case filtertree.KindProperty:
		if len(payload) != 1 || payload[0].Kind != resbuf.ValueText {
			return nil, fmt.Errorf("%w: property filter takes exactly one expression", ErrMalformedArguments)
		}
		return AddProperty{Filter: name, Parent: parent, Expression: payload[0].Text}, nil

	default:
		items := payload
		if len(payload) == 1 && payload[0].Kind == resbuf.ValueList {
			items = payload[0].Items
		}
		layers, err := texts(items)
		if err != nil || len(layers) == 0 {
			return nil, fmt.Errorf("%w: group filter takes one or more layer names", ErrMalformedArguments)
		}
		return AddGroup{Filter: name, Parent: parent, Layers: layers}, nil
	}
}

// delete "Name" | delete "*"
func decodeDelete(args []resbuf.Value) (Command, error) {
	if len(args) != 1 || args[0].Kind != resbuf.ValueText {
		return nil, fmt.Errorf("%w: delete takes exactly one filter name", ErrMalformedArguments)
	}
	if args[0].Text == DeleteAllName {
		return DeleteAll{}, nil
	}
	return Delete{Filter: args[0].Text}, nil
}

func texts(values []resbuf.Value) ([]string, error) {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v.Kind != resbuf.ValueText {
			return nil, ErrMalformedArguments
		}
		out = append(out, v.Text)
	}
	return out, nil
}
