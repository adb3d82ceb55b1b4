package filtertree

import (
	"errors"
	"fmt"
)

var (
	// ErrNestingDenied is returned when a parent cannot own the node being attached.
	ErrNestingDenied = errors.New("nesting denied")
	// ErrDeleteDenied is returned when a node, or a node below it, is not deletable.
	ErrDeleteDenied = errors.New("delete denied")
	// ErrUnknownNode is returned for handles that do not address a live node.
	ErrUnknownNode = errors.New("unknown node")
)

// Tree owns every filter node in an arena. Slot 0 is the synthetic root whose
// children are the top-level filters. Released slots are never reused, so a
// stale handle can only ever resolve to nothing.
type Tree struct {
	nodes []*Node
	count int
}

// NewTree returns a tree holding only the root.
func NewTree() *Tree {
	root := &Node{allowNested: true}
	return &Tree{nodes: []*Node{root}}
}

// Len returns the number of filters in the tree, excluding the root.
func (t *Tree) Len() int {
	return t.count
}

func (t *Tree) lookup(id NodeID) *Node {
	if int(id) >= len(t.nodes) {
		return nil
	}
	return t.nodes[id]
}

// Children returns a copy of the ordered child handles of id.
func (t *Tree) Children(id NodeID) []NodeID {
	n := t.lookup(id)
	if n == nil || len(n.children) == 0 {
		return nil
	}
	out := make([]NodeID, len(n.children))
	copy(out, n.children)
	return out
}

// ChildCount returns the number of direct children of id.
func (t *Tree) ChildCount(id NodeID) int {
	n := t.lookup(id)
	if n == nil {
		return 0
	}
	return len(n.children)
}

// Node returns a snapshot of the filter addressed by id. The root has no snapshot.
func (t *Tree) Node(id NodeID) (View, bool) {
	if id == RootID {
		return View{}, false
	}
	n := t.lookup(id)
	if n == nil {
		return View{}, false
	}

	v := View{
		ID:          id,
		Name:        n.name,
		Kind:        n.payload.Kind(),
		AllowDelete: n.allowDelete,
		AllowNested: n.allowNested,
		Parent:      n.parent,
		ChildCount:  len(n.children),
	}
	if n.parent != RootID {
		if p := t.lookup(n.parent); p != nil {
			v.ParentName = p.name
		}
	}

	switch p := n.payload.(type) {
	case PropertyPayload:
		v.Expression = p.Expression
	case GroupPayload:
		v.Layers = make([]LayerRef, len(p.Layers))
		copy(v.Layers, p.Layers)
	}
	return v, true
}

// Attach makes node a child of parent, appending it to the parent's
// collection, and returns its handle.
func (t *Tree) Attach(node *Node, parent NodeID) (NodeID, error) {
	if node == nil {
		return 0, fmt.Errorf("attach: nil node")
	}
	p := t.lookup(parent)
	if p == nil {
		return 0, fmt.Errorf("attach %q: parent %d: %w", node.name, parent, ErrUnknownNode)
	}

	if parent != RootID {
		if !p.allowNested {
			return 0, fmt.Errorf("attach %q under %q: parent does not allow nested filters: %w",
				node.name, p.name, ErrNestingDenied)
		}
		if node.Kind() == KindGroup && p.Kind() != KindGroup {
			return 0, fmt.Errorf("attach group %q under property filter %q: %w",
				node.name, p.name, ErrNestingDenied)
		}
	}

	id := NodeID(len(t.nodes))
	node.parent = parent
	node.children = nil
	t.nodes = append(t.nodes, node)
	p.children = append(p.children, id)
	t.count++
	return id, nil
}

// Detach removes id, with its subtree, from the collection that owns it and
// returns the snapshot taken just before removal.
func (t *Tree) Detach(id NodeID) (View, error) {
	if id == RootID {
		return View{}, fmt.Errorf("detach root: %w", ErrDeleteDenied)
	}
	n := t.lookup(id)
	if n == nil {
		return View{}, fmt.Errorf("detach %d: %w", id, ErrUnknownNode)
	}
	if !n.allowDelete {
		return View{}, fmt.Errorf("detach %q: %w", n.name, ErrDeleteDenied)
	}
	if blocker, ok := t.firstUndeletable(id); ok {
		return View{}, fmt.Errorf("detach %q: nested filter %q cannot be deleted: %w",
			n.name, blocker, ErrDeleteDenied)
	}

	view, _ := t.Node(id)

	owner := t.lookup(n.parent)
	for i, child := range owner.children {
		if child == id {
			owner.children = append(owner.children[:i], owner.children[i+1:]...)
			break
		}
	}
	t.release(id)
	return view, nil
}

// firstUndeletable finds a non-deletable node strictly below id.
func (t *Tree) firstUndeletable(id NodeID) (string, bool) {
	stack := t.Children(id)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := t.lookup(cur)
		if n == nil {
			continue
		}
		if !n.allowDelete {
			return n.name, true
		}
		stack = append(stack, n.children...)
	}
	return "", false
}

func (t *Tree) release(id NodeID) {
	stack := []NodeID{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := t.lookup(cur)
		if n == nil {
			continue
		}
		stack = append(stack, n.children...)
		t.nodes[cur] = nil
		t.count--
	}
}

// Walk visits every filter in pre-order, passing the node's depth (1 for
// top-level filters). Returning false from fn skips the node's subtree.
func (t *Tree) Walk(fn func(v View, depth int) bool) {
	type frame struct {
		id    NodeID
		depth int
	}

	top := t.Children(RootID)
	stack := make([]frame, 0, len(top))
	for i := len(top) - 1; i >= 0; i-- {
		stack = append(stack, frame{top[i], 1})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		v, ok := t.Node(f.id)
		if !ok {
			continue
		}
		if !fn(v, f.depth) {
			continue
		}
		children := t.Children(f.id)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{children[i], f.depth + 1})
		}
	}
}
