package filtertree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestAttach_RootAndNested(t *testing.T) {
	tree := NewTree()

	a, err := tree.Attach(NewPropertyNode("A", `NAME=="A*"`), RootID)
	require.NoError(t, err)
	b, err := tree.Attach(NewPropertyNode("B", `NAME=="B*"`), a)
	require.NoError(t, err)

	assert.Equal(t, 2, tree.Len())
	assert.Equal(t, []NodeID{a}, tree.Children(RootID))
	assert.Equal(t, []NodeID{b}, tree.Children(a))

	va, ok := tree.Node(a)
	require.True(t, ok)
	assert.Equal(t, "A", va.Name)
	assert.Equal(t, "", va.ParentName)
	assert.Equal(t, RootID, va.Parent)
	assert.Equal(t, 1, va.ChildCount)
	assert.True(t, va.AllowDelete)
	assert.True(t, va.AllowNested)

	vb, ok := tree.Node(b)
	require.True(t, ok)
	assert.Equal(t, "A", vb.ParentName)
	assert.Equal(t, `NAME=="B*"`, vb.Expression)
	assert.False(t, vb.IsGroup())
}

func TestAttach_NestingRules(t *testing.T) {
	layers := []LayerRef{{ID: 1, Name: "0"}}

	tests := []struct {
		name    string
		parent  *Node
		child   func() *Node
		wantErr error
	}{
		{
			name:   "property under property",
			parent: NewPropertyNode("P", "x"),
			child:  func() *Node { return NewPropertyNode("C", "y") },
		},
		{
			name:   "property under group",
			parent: NewGroupNode("G", layers),
			child:  func() *Node { return NewPropertyNode("C", "y") },
		},
		{
			name:   "group under group",
			parent: NewGroupNode("G", layers),
			child:  func() *Node { return NewGroupNode("C", layers) },
		},
		{
			name:    "group under property",
			parent:  NewPropertyNode("P", "x"),
			child:   func() *Node { return NewGroupNode("C", layers) },
			wantErr: ErrNestingDenied,
		},
		{
			name:    "group under nesting property",
			parent:  NewPropertyNode("P", "x", WithAllowNested(true)),
			child:   func() *Node { return NewGroupNode("C", layers) },
			wantErr: ErrNestingDenied,
		},
		{
			name:    "property under non-nesting parent",
			parent:  NewPropertyNode("P", "x", WithAllowNested(false)),
			child:   func() *Node { return NewPropertyNode("C", "y") },
			wantErr: ErrNestingDenied,
		},
		{
			name:    "group under non-nesting group",
			parent:  NewGroupNode("G", layers, WithAllowNested(false)),
			child:   func() *Node { return NewGroupNode("C", layers) },
			wantErr: ErrNestingDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := NewTree()
			pid, err := tree.Attach(tt.parent, RootID)
			require.NoError(t, err)

			_, err = tree.Attach(tt.child(), pid)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, 0, tree.ChildCount(pid))
				assert.Equal(t, 1, tree.Len())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, tree.ChildCount(pid))
		})
	}
}

func TestAttach_UnknownParent(t *testing.T) {
	tree := NewTree()
	_, err := tree.Attach(NewPropertyNode("A", "x"), NodeID(42))
	require.ErrorIs(t, err, ErrUnknownNode)
}

func TestDetach(t *testing.T) {
	tree := NewTree()
	a, _ := tree.Attach(NewPropertyNode("A", "x"), RootID)
	b, _ := tree.Attach(NewPropertyNode("B", "y"), a)
	c, _ := tree.Attach(NewPropertyNode("C", "z"), RootID)

	v, err := tree.Detach(a)
	require.NoError(t, err)
	assert.Equal(t, "A", v.Name)
	assert.Equal(t, 1, v.ChildCount)

	assert.Equal(t, []NodeID{c}, tree.Children(RootID))
	assert.Equal(t, 1, tree.Len())
	_, ok := tree.Node(b)
	assert.False(t, ok, "subtree is released with its owner")

	_, err = tree.Detach(a)
	require.ErrorIs(t, err, ErrUnknownNode)
}

func TestDetach_Denied(t *testing.T) {
	tree := NewTree()
	locked, _ := tree.Attach(NewPropertyNode("Locked", "x", WithAllowDelete(false)), RootID)
	parent, _ := tree.Attach(NewPropertyNode("Parent", "y"), RootID)
	_, _ = tree.Attach(NewPropertyNode("Inner", "z", WithAllowDelete(false)), parent)

	_, err := tree.Detach(locked)
	require.ErrorIs(t, err, ErrDeleteDenied)

	_, err = tree.Detach(parent)
	require.ErrorIs(t, err, ErrDeleteDenied)

	_, err = tree.Detach(RootID)
	require.ErrorIs(t, err, ErrDeleteDenied)

	assert.Equal(t, 3, tree.Len())
}

func TestGroupSnapshotCopiesLayers(t *testing.T) {
	layers := []LayerRef{{ID: 1, Name: "Layer0"}, {ID: 2, Name: "Layer1"}}
	tree := NewTree()
	g, err := tree.Attach(NewGroupNode("G1", layers), RootID)
	require.NoError(t, err)

	layers[0].Name = "changed"

	v, ok := tree.Node(g)
	require.True(t, ok)
	assert.True(t, v.IsGroup())
	assert.Equal(t, []string{"Layer0", "Layer1"}, v.LayerNames())

	v.Layers[1].Name = "mutated"
	again, _ := tree.Node(g)
	assert.Equal(t, "Layer1", again.Layers[1].Name)
}

func TestWalk_PreOrder(t *testing.T) {
	tree := NewTree()
	a, _ := tree.Attach(NewPropertyNode("A", ""), RootID)
	_, _ = tree.Attach(NewPropertyNode("A1", ""), a)
	a2, _ := tree.Attach(NewPropertyNode("A2", ""), a)
	_, _ = tree.Attach(NewPropertyNode("A2x", ""), a2)
	_, _ = tree.Attach(NewPropertyNode("B", ""), RootID)

	var names []string
	var depths []int
	tree.Walk(func(v View, depth int) bool {
		names = append(names, v.Name)
		depths = append(depths, depth)
		return true
	})
	assert.Equal(t, []string{"A", "A1", "A2", "A2x", "B"}, names)
	assert.Equal(t, []int{1, 2, 2, 3, 1}, depths)

	names = nil
	tree.Walk(func(v View, _ int) bool {
		names = append(names, v.Name)
		return v.Name != "A"
	})
	assert.Equal(t, []string{"A", "B"}, names)
}

func TestParseKind(t *testing.T) {
	k, ok := ParseKind("Property")
	require.True(t, ok)
	assert.Equal(t, KindProperty, k)

	k, ok = ParseKind(" GROUP ")
	require.True(t, ok)
	assert.Equal(t, KindGroup, k)

	_, ok = ParseKind("layer")
	assert.False(t, ok)
}

// Any sequence of attaches and detaches keeps Len equal to the number of
// reachable nodes and never orphans a live handle.
func TestTreeInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tree := NewTree()
		live := []NodeID{RootID}

		steps := rapid.IntRange(1, 60).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			if rapid.Bool().Draw(t, "attach") || len(live) == 1 {
				parent := live[rapid.IntRange(0, len(live)-1).Draw(t, "parent")]
				var n *Node
				if rapid.Bool().Draw(t, "group") {
					n = NewGroupNode("g", nil, WithAllowDelete(rapid.Bool().Draw(t, "del")))
				} else {
					n = NewPropertyNode("p", "", WithAllowDelete(rapid.Bool().Draw(t, "del")))
				}
				if id, err := tree.Attach(n, parent); err == nil {
					live = append(live, id)
				}
				continue
			}
			victim := live[rapid.IntRange(1, len(live)-1).Draw(t, "victim")]
			_, _ = tree.Detach(victim)
			kept := live[:0]
			for _, id := range live {
				if id == RootID {
					kept = append(kept, id)
					continue
				}
				if _, ok := tree.Node(id); ok {
					kept = append(kept, id)
				}
			}
			live = kept
		}

		seen := 0
		tree.Walk(func(View, int) bool {
			seen++
			return true
		})
		if seen != tree.Len() {
			t.Fatalf("walk saw %d nodes, Len reports %d", seen, tree.Len())
		}
		if seen != len(live)-1 {
			t.Fatalf("walk saw %d nodes, %d handles are live", seen, len(live)-1)
		}
	})
}
