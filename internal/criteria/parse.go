package criteria

import (
	"fmt"
	"regexp"
	"strings"
)

// tokenPattern splits a criteria token into field phrase, operator and value.
// Longer operators come first so "<=" is never read as "<" followed by "=".
var tokenPattern = regexp.MustCompile(
	`^\s*((?i:layer\s+name|parent\s+name|is\s+group|allow\s+delete|allow\s+nested|nest\s+count))\b` +
		`\s*(==|<=|>=|!=|=|<|>)?\s*(.*?)\s*$`)

var phraseFields = map[string]Field{}

func init() {
	for f := Field(0); f < fieldCount; f++ {
		phraseFields[f.String()] = f
	}
}

// ParseToken parses a single criteria token such as "nest count >= 2".
func ParseToken(token string) (Predicate, error) {
	m := tokenPattern.FindStringSubmatch(token)
	if m == nil {
		return Predicate{}, fmt.Errorf("%w: %q does not start with a known field", ErrMalformedCriteria, token)
	}

	phrase := strings.ToLower(strings.Join(strings.Fields(m[1]), " "))
	field, ok := phraseFields[phrase]
	if !ok {
		return Predicate{}, fmt.Errorf("%w: unknown field %q", ErrMalformedCriteria, m[1])
	}

	op, _ := ParseOperator(m[2])
	value := m[3]
	if strings.ContainsAny(value, ReservedChars) {
		return Predicate{}, fmt.Errorf("%w: value %q contains a reserved character", ErrMalformedCriteria, value)
	}

	p := Predicate{Field: field, Operator: op, Value: value}
	if err := p.validate(); err != nil {
		return Predicate{}, err
	}
	return p, nil
}

// ParseTokens parses every token into one Set. A later token on a field
// replaces an earlier one.
func ParseTokens(tokens []string) (Set, error) {
	var s Set
	for _, tok := range tokens {
		p, err := ParseToken(tok)
		if err != nil {
			return Set{}, err
		}
		s = s.With(p)
	}
	return s, nil
}

func (p Predicate) validate() error {
	switch {
	case p.Field.isFlag():
		if !p.Operator.isEquality() && p.Operator != OpNe {
			return fmt.Errorf("%w: %s does not support operator %q", ErrMalformedCriteria, p.Field, p.Operator)
		}
		if _, ok := parseBool(p.Value); !ok {
			return fmt.Errorf("%w: %s expects true or false, got %q", ErrMalformedCriteria, p.Field, p.Value)
		}
	case p.Field == FieldNestCount:
		if _, ok := parseCount(p.Value); !ok {
			return fmt.Errorf("%w: %s expects a non-negative integer, got %q", ErrMalformedCriteria, p.Field, p.Value)
		}
	}
	return nil
}
