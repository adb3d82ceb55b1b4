package resbuf

import (
	"strings"

	"github.com/JeffStuy/cs-layerfilterutil/internal/filtertree"
)

// DXF-style group codes identifying each field of an encoded filter.
const (
	TagName        = 300
	TagExpression  = 301
	TagParent      = 302
	TagLayers      = 303
	TagAllowDelete = 290
	TagAllowNested = 291
	TagIsGroup     = 292
	TagNestCount   = 90
)

// LayerSeparator terminates every layer name in a group's layer list.
const LayerSeparator = "/"

// Encode builds the response stream for a result set:
//
//	ListBegin Int16(N) ListBegin <item>... ListEnd ListEnd
//
// An empty result set has no stream and encodes to nil. Counts beyond the
// 16-bit range are written as Int32 rather than truncated.
func Encode(filters []filtertree.View) []Atom {
	if len(filters) == 0 {
		return nil
	}

	buf := make([]Atom, 0, 5+len(filters)*30)
	buf = append(buf, ListBegin(), Int(len(filters)), ListBegin())
	for _, f := range filters {
		buf = AppendFilter(buf, f)
	}
	buf = append(buf, ListEnd(), ListEnd())
	return buf
}

// AppendFilter appends one filter as a list of dotted pairs.
func AppendFilter(buf []Atom, f filtertree.View) []Atom {
	buf = append(buf, ListBegin())
	buf = appendPair(buf, TagName, Text(f.Name))

	switch f.Kind {
	case filtertree.KindGroup:
		buf = appendPair(buf, TagLayers, Text(JoinLayers(f.LayerNames())))
	default:
		buf = appendPair(buf, TagExpression, Text(f.Expression))
	}

	buf = appendPair(buf, TagAllowDelete, Bool(f.AllowDelete))
	buf = appendPair(buf, TagParent, Text(f.ParentName))
	buf = appendPair(buf, TagIsGroup, Bool(f.IsGroup()))
	buf = appendPair(buf, TagAllowNested, Bool(f.AllowNested))
	buf = appendPair(buf, TagNestCount, Int(f.ChildCount))
	return append(buf, ListEnd())
}

func appendPair(buf []Atom, tag int16, value Atom) []Atom {
	return append(buf, ListBegin(), Int16(tag), value, DottedPair())
}

// JoinLayers writes every name followed by the separator. An empty list is
// a lone separator.
func JoinLayers(names []string) string {
	if len(names) == 0 {
		return LayerSeparator
	}
	var b strings.Builder
	for _, n := range names {
		b.WriteString(n)
		b.WriteString(LayerSeparator)
	}
	return b.String()
}

// SplitLayers reverses JoinLayers.
func SplitLayers(s string) []string {
	if s == LayerSeparator || s == "" {
		return nil
	}
	parts := strings.Split(strings.TrimSuffix(s, LayerSeparator), LayerSeparator)
	return parts
}
