package resbuf

import (
	"fmt"
	"strconv"
	"strings"
)

// ReadArgs reads LISP call arguments, as typed after the function name, into
// atoms. It understands strings, integers, nil, T, parenthesised lists,
// dotted tails and a quote before a list:
//
//	"add" "G1" "group" nil '("0" "Walls")
func ReadArgs(input string) ([]Atom, error) {
	r := &reader{input: input}
	if err := r.run(); err != nil {
		return nil, err
	}
	return r.atoms, nil
}

type listState struct {
	items  int
	dotted bool
	tail   bool
}

type reader struct {
	input string
	pos   int
	atoms []Atom
	open  []listState
}

func (r *reader) run() error {
	for r.pos < len(r.input) {
		ch := r.input[r.pos]

		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			r.pos++

		case ch == ';':
			for r.pos < len(r.input) && r.input[r.pos] != '\n' {
				r.pos++
			}

		case ch == '\'':
			r.pos++
			if r.pos >= len(r.input) || r.input[r.pos] != '(' {
				return fmt.Errorf("quote at position %d must precede a list", r.pos-1)
			}

		case ch == '(':
			if err := r.beforeValue(); err != nil {
				return err
			}
			r.atoms = append(r.atoms, ListBegin())
			r.open = append(r.open, listState{})
			r.pos++

		case ch == ')':
			if len(r.open) == 0 {
				return fmt.Errorf("unbalanced ')' at position %d", r.pos)
			}
			top := r.open[len(r.open)-1]
			r.open = r.open[:len(r.open)-1]
			if top.dotted {
				if !top.tail {
					return fmt.Errorf("dotted list closed without a tail at position %d", r.pos)
				}
				r.atoms = append(r.atoms, DottedPair())
			} else {
				r.atoms = append(r.atoms, ListEnd())
			}
			r.pos++

		case ch == '.' && r.isDelimited(r.pos+1):
			if len(r.open) == 0 {
				return fmt.Errorf("'.' outside a list at position %d", r.pos)
			}
			top := &r.open[len(r.open)-1]
			if top.items == 0 || top.dotted {
				return fmt.Errorf("misplaced '.' at position %d", r.pos)
			}
			top.dotted = true
			r.pos++

		case ch == '"':
			s, err := r.readString()
			if err != nil {
				return err
			}
			if err := r.beforeValue(); err != nil {
				return err
			}
			r.atoms = append(r.atoms, Text(s))

		default:
			word := r.readWord()
			if word == "" {
				return fmt.Errorf("unexpected character %q at position %d", ch, r.pos)
			}
			a, err := wordAtom(word)
			if err != nil {
				return err
			}
			if err := r.beforeValue(); err != nil {
				return err
			}
			r.atoms = append(r.atoms, a)
		}
	}

	if len(r.open) > 0 {
		return fmt.Errorf("%d list(s) not closed", len(r.open))
	}
	return nil
}

// beforeValue records that a value is about to be added to the innermost list.
func (r *reader) beforeValue() error {
	if len(r.open) == 0 {
		return nil
	}
	top := &r.open[len(r.open)-1]
	if top.dotted {
		if top.tail {
			return fmt.Errorf("more than one value after '.' at position %d", r.pos)
		}
		top.tail = true
	}
	top.items++
	return nil
}

func (r *reader) isDelimited(pos int) bool {
	if pos >= len(r.input) {
		return true
	}
	switch r.input[pos] {
	case ' ', '\t', '\n', '\r', '(', ')', '"':
		return true
	}
	return false
}

func (r *reader) readString() (string, error) {
	start := r.pos
	r.pos++
	var b strings.Builder
	for r.pos < len(r.input) {
		ch := r.input[r.pos]
		if ch == '\\' && r.pos+1 < len(r.input) {
			r.pos++
			switch esc := r.input[r.pos]; esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte(esc)
			}
			r.pos++
			continue
		}
		if ch == '"' {
			r.pos++
			return b.String(), nil
		}
		b.WriteByte(ch)
		r.pos++
	}
	return "", fmt.Errorf("unterminated string starting at position %d", start)
}

func (r *reader) readWord() string {
	start := r.pos
	for r.pos < len(r.input) && !r.isDelimited(r.pos) {
		r.pos++
	}
	return r.input[start:r.pos]
}

func wordAtom(word string) (Atom, error) {
	switch strings.ToLower(word) {
	case "nil":
		return Nil(), nil
	case "t":
		return T(), nil
	}
	n, err := strconv.ParseInt(word, 10, 32)
	if err != nil {
		return Atom{}, fmt.Errorf("unsupported symbol %q", word)
	}
	return Int(int(n)), nil
}
