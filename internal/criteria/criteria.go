// Package criteria implements the predicate language used to search and
// bulk-delete layer filters.
//
// A criteria token has the shape
//
//	<field> <operator> <value>
//
// where field is one of the six two-word phrases ("layer name",
// "parent name", "is group", "allow delete", "allow nested", "nest count"),
// operator is one of = == <= >= != < > (an omitted operator means equality)
// and value is the rest of the token. Values may not contain any of the
// characters in ReservedChars, so they stay embeddable as bare list tokens.
//
// A Set holds at most one predicate per field. An absent predicate is a
// wildcard and a Set matches a Candidate when every present predicate does.
package criteria

import (
	"errors"
	"strings"
)

// ErrMalformedCriteria is returned for tokens that do not follow the grammar
// or carry a value the field cannot interpret.
var ErrMalformedCriteria = errors.New("malformed criteria")

// ReservedChars may not appear in criteria values or filter names.
const ReservedChars = `<>/\":;?*|='`

// Field is one of the six searchable filter attributes.
type Field int

const (
	FieldLayerName Field = iota
	FieldParentName
	FieldIsGroup
	FieldAllowDelete
	FieldAllowNested
	FieldNestCount

	fieldCount
)

var fieldPhrases = [fieldCount][2]string{
	FieldLayerName:   {"layer", "name"},
	FieldParentName:  {"parent", "name"},
	FieldIsGroup:     {"is", "group"},
	FieldAllowDelete: {"allow", "delete"},
	FieldAllowNested: {"allow", "nested"},
	FieldNestCount:   {"nest", "count"},
}

func (f Field) String() string {
	if f < 0 || f >= fieldCount {
		return "unknown"
	}
	return fieldPhrases[f][0] + " " + fieldPhrases[f][1]
}

func (f Field) isName() bool {
	return f == FieldLayerName || f == FieldParentName
}

func (f Field) isFlag() bool {
	return f == FieldIsGroup || f == FieldAllowDelete || f == FieldAllowNested
}

// Operator is a comparison operator. OpDefault is an omitted operator and
// compares like OpEq.
type Operator int

const (
	OpDefault Operator = iota
	OpEq
	OpEqEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

var operatorText = map[Operator]string{
	OpDefault: "",
	OpEq:      "=",
	OpEqEq:    "==",
	OpNe:      "!=",
	OpLt:      "<",
	OpLe:      "<=",
	OpGt:      ">",
	OpGe:      ">=",
}

func (o Operator) String() string {
	return operatorText[o]
}

// ParseOperator maps operator text to an Operator.
func ParseOperator(s string) (Operator, bool) {
	for op, text := range operatorText {
		if text == s {
			return op, true
		}
	}
	return 0, false
}

func (o Operator) isEquality() bool {
	return o == OpDefault || o == OpEq || o == OpEqEq
}

// Candidate is the view of a filter the matcher evaluates.
type Candidate struct {
	Name        string
	ParentName  string
	IsGroup     bool
	AllowDelete bool
	AllowNested bool
	NestCount   int
}

// Predicate is one parsed criteria token.
type Predicate struct {
	Field    Field
	Operator Operator
	Value    string
}

func (p Predicate) String() string {
	var b strings.Builder
	b.WriteString(p.Field.String())
	b.WriteByte(' ')
	if p.Operator != OpDefault {
		b.WriteString(p.Operator.String())
		b.WriteByte(' ')
	}
	b.WriteString(p.Value)
	return b.String()
}

// Set is a conjunction of at most one predicate per field.
type Set struct {
	preds [fieldCount]*Predicate
}

// With returns a copy of s with p replacing any predicate on the same field.
func (s Set) With(p Predicate) Set {
	if p.Field < 0 || p.Field >= fieldCount {
		return s
	}
	pc := p
	s.preds[p.Field] = &pc
	return s
}

// Get returns the predicate on f, if any.
func (s Set) Get(f Field) (Predicate, bool) {
	if f < 0 || f >= fieldCount || s.preds[f] == nil {
		return Predicate{}, false
	}
	return *s.preds[f], true
}

// Len returns the number of predicates in the set.
func (s Set) Len() int {
	n := 0
	for _, p := range s.preds {
		if p != nil {
			n++
		}
	}
	return n
}

// Predicates returns the predicates in field order.
func (s Set) Predicates() []Predicate {
	out := make([]Predicate, 0, fieldCount)
	for _, p := range s.preds {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out
}

func (s Set) String() string {
	preds := s.Predicates()
	parts := make([]string, len(preds))
	for i, p := range preds {
		parts[i] = p.String()
	}
	return strings.Join(parts, " AND ")
}

// NameIs matches filters named exactly name.
func NameIs(name string) Predicate {
	return Predicate{Field: FieldLayerName, Operator: OpEq, Value: name}
}

// ParentIs matches filters nested directly under the filter named name.
func ParentIs(name string) Predicate {
	return Predicate{Field: FieldParentName, Operator: OpEq, Value: name}
}

// IsGroup matches group filters (true) or property filters (false).
func IsGroup(v bool) Predicate {
	return Predicate{Field: FieldIsGroup, Operator: OpEq, Value: formatBool(v)}
}

// AllowDeleteIs matches on the allow-delete flag.
func AllowDeleteIs(v bool) Predicate {
	return Predicate{Field: FieldAllowDelete, Operator: OpEq, Value: formatBool(v)}
}

// AllowNestedIs matches on the allow-nested flag.
func AllowNestedIs(v bool) Predicate {
	return Predicate{Field: FieldAllowNested, Operator: OpEq, Value: formatBool(v)}
}

// NestCount compares the number of nested filters against n.
func NestCount(op Operator, n int) Predicate {
	return Predicate{Field: FieldNestCount, Operator: op, Value: itoa(n)}
}
