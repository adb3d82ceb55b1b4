package criteria

import (
	"strconv"
	"strings"
)

// Match reports whether c satisfies every predicate in s. A predicate that
// cannot be evaluated fails the whole set.
func (s Set) Match(c Candidate) bool {
	for _, p := range s.preds {
		if p == nil {
			continue
		}
		ok, valid := p.eval(c)
		if !valid || !ok {
			return false
		}
	}
	return true
}

// Match evaluates a single predicate against c.
func (p Predicate) Match(c Candidate) bool {
	ok, valid := p.eval(c)
	return valid && ok
}

func (p Predicate) eval(c Candidate) (matched bool, valid bool) {
	switch p.Field {
	case FieldLayerName:
		return compareNames(c.Name, p.Operator, p.Value)
	case FieldParentName:
		return compareNames(c.ParentName, p.Operator, p.Value)
	case FieldIsGroup:
		return compareFlags(c.IsGroup, p.Operator, p.Value)
	case FieldAllowDelete:
		return compareFlags(c.AllowDelete, p.Operator, p.Value)
	case FieldAllowNested:
		return compareFlags(c.AllowNested, p.Operator, p.Value)
	case FieldNestCount:
		n, ok := parseCount(p.Value)
		if !ok {
			return false, false
		}
		return compareInts(c.NestCount, p.Operator, n)
	}
	return false, false
}

// compareNames compares a stored name against a criteria value. Equality is
// case-sensitive; ordering ignores case.
func compareNames(name string, op Operator, value string) (bool, bool) {
	if value == "" {
		return false, true
	}
	switch op {
	case OpDefault, OpEq, OpEqEq:
		return name == value, true
	case OpNe:
		return name != value, true
	case OpLt:
		return foldCompare(name, value) < 0, true
	case OpLe:
		return name == value || foldCompare(name, value) < 0, true
	case OpGt:
		return foldCompare(name, value) > 0, true
	case OpGe:
		return name == value || foldCompare(name, value) > 0, true
	}
	return false, false
}

func foldCompare(a, b string) int {
	return strings.Compare(strings.ToUpper(a), strings.ToUpper(b))
}

func compareFlags(flag bool, op Operator, value string) (bool, bool) {
	want, ok := parseBool(value)
	if !ok {
		return false, false
	}
	switch op {
	case OpDefault, OpEq, OpEqEq:
		return flag == want, true
	case OpNe:
		return flag != want, true
	}
	return false, false
}

func compareInts(have int, op Operator, want int) (bool, bool) {
	switch op {
	case OpDefault, OpEq, OpEqEq:
		return have == want, true
	case OpNe:
		return have != want, true
	case OpLt:
		return have < want, true
	case OpLe:
		return have <= want, true
	case OpGt:
		return have > want, true
	case OpGe:
		return have >= want, true
	}
	return false, false
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "1":
		return true, true
	case "false", "nil", "no", "0":
		return false, true
	}
	return false, false
}

func formatBool(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// parseCount accepts plain decimal digits only.
func parseCount(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
