package resbuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/JeffStuy/cs-layerfilterutil/internal/filtertree"
)

func TestInt_PicksNarrowestType(t *testing.T) {
	assert.Equal(t, TypeInt16, Int(0).Type)
	assert.Equal(t, TypeInt16, Int(32767).Type)
	assert.Equal(t, TypeInt16, Int(-32768).Type)
	assert.Equal(t, TypeInt32, Int(32768).Type)
	assert.Equal(t, int32(70000), Int(70000).Int)

	assert.Equal(t, Int16(1), Bool(true))
	assert.Equal(t, Int16(0), Bool(false))
}

func TestEncode_Empty(t *testing.T) {
	assert.Nil(t, Encode(nil))
	assert.Nil(t, Encode([]filtertree.View{}))

	s, err := Format(Encode(nil))
	require.NoError(t, err)
	assert.Equal(t, "nil", s)
}

func TestEncode_PropertyFilter(t *testing.T) {
	atoms := Encode([]filtertree.View{{
		Name:        "A",
		Kind:        filtertree.KindProperty,
		Expression:  `NAME=="W*"`,
		AllowDelete: true,
		AllowNested: true,
	}})

	s, err := Format(atoms)
	require.NoError(t, err)
	assert.Equal(t,
		`(1 (((300 . "A") (301 . "NAME==\"W*\"") (290 . 1) (302 . "") (292 . 0) (291 . 1) (90 . 0))))`,
		s)

	assert.Equal(t, TypeListBegin, atoms[0].Type)
	assert.Equal(t, Int16(1), atoms[1])
	assert.Equal(t, TypeListBegin, atoms[2].Type)
	assert.Equal(t, TypeListEnd, atoms[len(atoms)-1].Type)
	assert.Equal(t, TypeListEnd, atoms[len(atoms)-2].Type)
}

func TestEncode_GroupFilter(t *testing.T) {
	atoms := Encode([]filtertree.View{{
		Name:       "G1",
		Kind:       filtertree.KindGroup,
		Layers:     []filtertree.LayerRef{{ID: 1, Name: "0"}, {ID: 2, Name: "Walls"}},
		ParentName: "G0",
		ChildCount: 3,
	}})

	s, err := Format(atoms)
	require.NoError(t, err)
	assert.Equal(t,
		`(1 (((300 . "G1") (303 . "0/Walls/") (290 . 0) (302 . "G0") (292 . 1) (291 . 0) (90 . 3))))`,
		s)
}

func TestEncode_WidensLargeCounts(t *testing.T) {
	filters := make([]filtertree.View, 40000)
	for i := range filters {
		filters[i] = filtertree.View{Name: "F", Kind: filtertree.KindProperty, ChildCount: 40000}
	}

	atoms := Encode(filters)
	assert.Equal(t, Int32(40000), atoms[1])
	require.NoError(t, ValidateResponse(atoms))

	records, err := DecodeResponse(atoms)
	require.NoError(t, err)
	require.Len(t, records, 40000)
	assert.Equal(t, 40000, records[0].NestCount)

	small := Encode(filters[:2])
	assert.Equal(t, Int16(2), small[1])
}

func TestJoinSplitLayers(t *testing.T) {
	assert.Equal(t, "/", JoinLayers(nil))
	assert.Equal(t, "0/", JoinLayers([]string{"0"}))
	assert.Equal(t, "0/Walls/", JoinLayers([]string{"0", "Walls"}))

	assert.Nil(t, SplitLayers("/"))
	assert.Nil(t, SplitLayers(""))
	assert.Equal(t, []string{"0", "Walls"}, SplitLayers("0/Walls/"))
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		atoms []Atom
	}{
		{"unclosed list", []Atom{ListBegin(), Int16(1)}},
		{"stray end", []Atom{ListEnd()}},
		{"short dotted pair", []Atom{ListBegin(), Int16(1), DottedPair()}},
		{"unknown type", []Atom{{Type: TypeNone}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, Validate(tt.atoms), ErrMalformedStream)
		})
	}
}

func TestDepth(t *testing.T) {
	atoms := []Atom{ListBegin(), Int16(1), ListBegin(), Text("x"), Int16(2), DottedPair(), ListEnd()}
	assert.Equal(t, []int{1, 1, 2, 2, 2, 1, 0}, Depth(atoms))
}

func TestDump(t *testing.T) {
	out := Dump([]Atom{ListBegin(), Int16(300), Text("A"), DottedPair()})
	assert.Equal(t, "ListBegin\n  Int16(300)\n  Text(\"A\")\nDottedPair\n", out)
}

func TestReadArgs(t *testing.T) {
	tests := []struct {
		input string
		want  []Atom
	}{
		{`"list"`, []Atom{Text("list")}},
		{`"find" "Walls"`, []Atom{Text("find"), Text("Walls")}},
		{`"find" '("layer name = A" "nest count > 1")`, []Atom{
			Text("find"), ListBegin(), Text("layer name = A"), Text("nest count > 1"), ListEnd(),
		}},
		{`"add" "P" "property" nil "NAME==\"W*\""`, []Atom{
			Text("add"), Text("P"), Text("property"), Nil(), Text(`NAME=="W*"`),
		}},
		{`(1 . "a") T -5 70000`, []Atom{
			ListBegin(), Int16(1), Text("a"), DottedPair(), T(), Int16(-5), Int32(70000),
		}},
		{"  ; comment only\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ReadArgs(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadArgs_Errors(t *testing.T) {
	for _, input := range []string{
		`"open`,
		`(`,
		`)`,
		`( . 1)`,
		`(1 . )`,
		`(1 . 2 3)`,
		`. 1`,
		`'x`,
		`foo`,
	} {
		_, err := ReadArgs(input)
		assert.Error(t, err, input)
	}
}

func TestDecodeResponse(t *testing.T) {
	views := []filtertree.View{
		{Name: "A", Kind: filtertree.KindProperty, Expression: "e", AllowDelete: true, AllowNested: true, ChildCount: 1},
		{Name: "G", Kind: filtertree.KindGroup, Layers: []filtertree.LayerRef{{Name: "0"}}, ParentName: "A"},
	}

	records, err := DecodeResponse(Encode(views))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, Record{Name: "A", Expression: "e", AllowDelete: true, AllowNested: true, NestCount: 1}, records[0])
	assert.Equal(t, Record{Name: "G", Layers: []string{"0"}, ParentName: "A", IsGroup: true}, records[1])

	none, err := DecodeResponse(nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestValidateResponse_RejectsBrokenShapes(t *testing.T) {
	good := Encode([]filtertree.View{{Name: "A", Expression: "e"}})
	require.NoError(t, ValidateResponse(good))

	badCount := append([]Atom(nil), good...)
	badCount[1] = Int16(2)
	assert.ErrorIs(t, ValidateResponse(badCount), ErrMalformedStream)

	both := []Atom{ListBegin(), Int16(1), ListBegin(), ListBegin()}
	both = appendPair(both, TagName, Text("A"))
	both = appendPair(both, TagExpression, Text("e"))
	both = appendPair(both, TagLayers, Text("/"))
	both = appendPair(both, TagAllowDelete, Bool(true))
	both = appendPair(both, TagParent, Text(""))
	both = appendPair(both, TagIsGroup, Bool(true))
	both = appendPair(both, TagAllowNested, Bool(true))
	both = appendPair(both, TagNestCount, Int(0))
	both = append(both, ListEnd(), ListEnd(), ListEnd())
	assert.ErrorIs(t, ValidateResponse(both), ErrMalformedStream)
}

func drawView(t *rapid.T, i int) filtertree.View {
	v := filtertree.View{
		Name:        rapid.StringMatching(`[A-Za-z0-9 _-]{1,12}`).Draw(t, "name"),
		AllowDelete: rapid.Bool().Draw(t, "allowDelete"),
		AllowNested: rapid.Bool().Draw(t, "allowNested"),
		ParentName:  rapid.StringMatching(`[A-Za-z0-9]{0,6}`).Draw(t, "parent"),
		ChildCount:  rapid.IntRange(0, 40000).Draw(t, "children"),
	}
	if rapid.Bool().Draw(t, "group") {
		v.Kind = filtertree.KindGroup
		for _, n := range rapid.SliceOfN(rapid.StringMatching(`[A-Za-z0-9]{1,6}`), 0, 4).Draw(t, "layers") {
			v.Layers = append(v.Layers, filtertree.LayerRef{Name: n})
		}
	} else {
		v.Kind = filtertree.KindProperty
		v.Expression = rapid.String().Draw(t, "expr")
	}
	return v
}

// Every encoded result set is balanced, carries its own count and decodes
// back to the same filters.
func TestEncode_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(t, "n")
		views := make([]filtertree.View, n)
		for i := range views {
			views[i] = drawView(t, i)
		}

		atoms := Encode(views)

		depth := Depth(atoms)
		for i, d := range depth {
			if d < 0 {
				t.Fatalf("depth below zero at atom %d", i)
			}
		}
		if depth[len(depth)-1] != 0 {
			t.Fatalf("stream ends at depth %d", depth[len(depth)-1])
		}

		values, err := Parse(atoms)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if len(values) != 1 || len(values[0].Items) != 2 {
			t.Fatalf("expected a single two element list")
		}
		if int(values[0].Items[0].Int) != n || len(values[0].Items[1].Items) != n {
			t.Fatalf("count does not match item list")
		}

		records, err := DecodeResponse(atoms)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		for i, r := range records {
			v := views[i]
			if r.Name != v.Name || r.IsGroup != v.IsGroup() || r.NestCount != v.ChildCount ||
				r.AllowDelete != v.AllowDelete || r.AllowNested != v.AllowNested || r.ParentName != v.ParentName {
				t.Fatalf("record %d differs: %+v vs %+v", i, r, v)
			}
			if v.IsGroup() {
				if JoinLayers(r.Layers) != JoinLayers(v.LayerNames()) {
					t.Fatalf("record %d layers differ", i)
				}
			} else if r.Expression != v.Expression {
				t.Fatalf("record %d expression differs", i)
			}
		}
	})
}

// Formatted text reads back to the same atoms.
func TestFormatReadArgs_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		atoms := Encode([]filtertree.View{drawView(t, 0)})
		text, err := Format(atoms)
		if err != nil {
			t.Fatalf("format: %v", err)
		}
		back, err := ReadArgs(text)
		if err != nil {
			t.Fatalf("read %q: %v", text, err)
		}
		if len(back) != len(atoms) {
			t.Fatalf("read %d atoms, want %d", len(back), len(atoms))
		}
		for i := range atoms {
			if back[i] != atoms[i] {
				t.Fatalf("atom %d: got %s want %s", i, back[i], atoms[i])
			}
		}
	})
}
