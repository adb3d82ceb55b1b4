// Package resbuf implements the flat result-buffer protocol spoken with the
// host's LISP environment: a sequence of typed atoms in which nested lists
// are expressed with ListBegin/ListEnd markers and dotted pairs are closed by
// a DottedPair atom instead of a ListEnd.
package resbuf

import (
	"fmt"
	"strconv"
)

// TypeCode is the host data type of an atom.
type TypeCode int16

const (
	TypeNone       TypeCode = 5000
	TypeInt16      TypeCode = 5003
	TypeText       TypeCode = 5005
	TypeInt32      TypeCode = 5010
	TypeListBegin  TypeCode = 5016
	TypeListEnd    TypeCode = 5017
	TypeDottedPair TypeCode = 5018
	TypeNil        TypeCode = 5019
	TypeT          TypeCode = 5021
)

func (c TypeCode) String() string {
	switch c {
	case TypeNone:
		return "None"
	case TypeInt16:
		return "Int16"
	case TypeText:
		return "Text"
	case TypeInt32:
		return "Int32"
	case TypeListBegin:
		return "ListBegin"
	case TypeListEnd:
		return "ListEnd"
	case TypeDottedPair:
		return "DottedPair"
	case TypeNil:
		return "Nil"
	case TypeT:
		return "T"
	default:
		return strconv.Itoa(int(c))
	}
}

// Atom is one typed value in a result buffer. Int carries Int16 and Int32
// values, Text carries Text values; structural atoms carry neither.
type Atom struct {
	Type TypeCode
	Int  int32
	Text string
}

func ListBegin() Atom  { return Atom{Type: TypeListBegin} }
func ListEnd() Atom    { return Atom{Type: TypeListEnd} }
func DottedPair() Atom { return Atom{Type: TypeDottedPair} }
func Nil() Atom        { return Atom{Type: TypeNil} }
func T() Atom          { return Atom{Type: TypeT} }

func Text(s string) Atom { return Atom{Type: TypeText, Text: s} }

func Int16(v int16) Atom { return Atom{Type: TypeInt16, Int: int32(v)} }

func Int32(v int32) Atom { return Atom{Type: TypeInt32, Int: v} }

// Int picks the narrowest integer atom that holds v.
func Int(v int) Atom {
	if v >= -32768 && v <= 32767 {
		return Int16(int16(v))
	}
	return Int32(int32(v))
}

// Bool widens a flag to a 16-bit 0/1; the protocol has no boolean atom.
func Bool(v bool) Atom {
	if v {
		return Int16(1)
	}
	return Int16(0)
}

// IsText reports whether the atom is a text atom.
func (a Atom) IsText() bool { return a.Type == TypeText }

// IsInt reports whether the atom is a 16- or 32-bit integer.
func (a Atom) IsInt() bool { return a.Type == TypeInt16 || a.Type == TypeInt32 }

func (a Atom) String() string {
	switch a.Type {
	case TypeText:
		return fmt.Sprintf("%s(%q)", a.Type, a.Text)
	case TypeInt16, TypeInt32:
		return fmt.Sprintf("%s(%d)", a.Type, a.Int)
	default:
		return a.Type.String()
	}
}
