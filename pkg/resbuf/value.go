package resbuf

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedStream is returned for atom sequences that do not nest properly.
var ErrMalformedStream = errors.New("malformed result buffer")

// ValueKind discriminates the shapes a parsed Value can take.
type ValueKind int

const (
	ValueList ValueKind = iota
	ValueDotted
	ValueText
	ValueInt
	ValueNil
	ValueT
)

// Value is the tree form of an atom stream. Lists and dotted lists keep their
// elements in Items; for a dotted list the last item is the tail.
type Value struct {
	Kind  ValueKind
	Items []Value
	Text  string
	Int   int32
}

// Parse turns a flat atom stream into the sequence of top-level values it
// encodes.
func Parse(atoms []Atom) ([]Value, error) {
	var out []Value
	pos := 0
	for pos < len(atoms) {
		v, next, err := parseValue(atoms, pos)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		pos = next
	}
	return out, nil
}

func parseValue(atoms []Atom, pos int) (Value, int, error) {
	a := atoms[pos]
	switch a.Type {
	case TypeListBegin:
		return parseList(atoms, pos+1)
	case TypeText:
		return Value{Kind: ValueText, Text: a.Text}, pos + 1, nil
	case TypeInt16, TypeInt32:
		return Value{Kind: ValueInt, Int: a.Int}, pos + 1, nil
	case TypeNil:
		return Value{Kind: ValueNil}, pos + 1, nil
	case TypeT:
		return Value{Kind: ValueT}, pos + 1, nil
	case TypeListEnd, TypeDottedPair:
		return Value{}, pos, fmt.Errorf("%w: unexpected %s at atom %d", ErrMalformedStream, a.Type, pos)
	default:
		return Value{}, pos, fmt.Errorf("%w: unsupported atom type %s at atom %d", ErrMalformedStream, a.Type, pos)
	}
}

func parseList(atoms []Atom, pos int) (Value, int, error) {
	start := pos - 1
	list := Value{Kind: ValueList}
	for pos < len(atoms) {
		switch atoms[pos].Type {
		case TypeListEnd:
			return list, pos + 1, nil
		case TypeDottedPair:
			if len(list.Items) < 2 {
				return Value{}, pos, fmt.Errorf("%w: dotted pair at atom %d closes a list with %d element(s)",
					ErrMalformedStream, pos, len(list.Items))
			}
			list.Kind = ValueDotted
			return list, pos + 1, nil
		}
		item, next, err := parseValue(atoms, pos)
		if err != nil {
			return Value{}, pos, err
		}
		list.Items = append(list.Items, item)
		pos = next
	}
	return Value{}, pos, fmt.Errorf("%w: list opened at atom %d is never closed", ErrMalformedStream, start)
}

// Validate checks that every list in the stream is closed exactly once.
func Validate(atoms []Atom) error {
	_, err := Parse(atoms)
	return err
}

// Depth returns the nesting depth after each atom. A well formed stream
// ends at depth zero and never goes below it.
func Depth(atoms []Atom) []int {
	out := make([]int, len(atoms))
	depth := 0
	for i, a := range atoms {
		switch a.Type {
		case TypeListBegin:
			depth++
		case TypeListEnd, TypeDottedPair:
			depth--
		}
		out[i] = depth
	}
	return out
}

// Format renders a stream as LISP text. An empty stream is the nil result.
func Format(atoms []Atom) (string, error) {
	if len(atoms) == 0 {
		return "nil", nil
	}
	values, err := Parse(atoms)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.String()
	}
	return strings.Join(parts, " "), nil
}

func (v Value) String() string {
	var b strings.Builder
	v.write(&b)
	return b.String()
}

func (v Value) write(b *strings.Builder) {
	switch v.Kind {
	case ValueText:
		b.WriteString(quote(v.Text))
	case ValueInt:
		b.WriteString(strconv.Itoa(int(v.Int)))
	case ValueNil:
		b.WriteString("nil")
	case ValueT:
		b.WriteString("T")
	case ValueList, ValueDotted:
		b.WriteByte('(')
		for i, item := range v.Items {
			if i > 0 {
				b.WriteByte(' ')
				if v.Kind == ValueDotted && i == len(v.Items)-1 {
					b.WriteString(". ")
				}
			}
			item.write(b)
		}
		b.WriteByte(')')
	}
}

func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// Dump lists the atoms one per line, indented by nesting depth, in the form
// a host debugger shows a result buffer.
func Dump(atoms []Atom) string {
	var b strings.Builder
	depth := 0
	for _, a := range atoms {
		if a.Type == TypeListEnd || a.Type == TypeDottedPair {
			depth--
		}
		if depth > 0 {
			b.WriteString(strings.Repeat("  ", depth))
		}
		b.WriteString(a.String())
		b.WriteByte('\n')
		if a.Type == TypeListBegin {
			depth++
		}
	}
	return b.String()
}
