package filtertree

import "strings"

// NodeID is a handle into the tree's node arena. RootID addresses the synthetic root.
type NodeID uint32

const RootID NodeID = 0

// Kind discriminates the two filter payload shapes.
type Kind int

const (
	KindProperty Kind = iota
	KindGroup
)

func (k Kind) String() string {
	switch k {
	case KindProperty:
		return "property"
	case KindGroup:
		return "group"
	default:
		return "unknown"
	}
}

// ParseKind maps "property" or "group" (any case) to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "property":
		return KindProperty, true
	case "group":
		return KindGroup, true
	}
	return 0, false
}

// Payload is the kind-specific part of a filter node.
type Payload interface {
	Kind() Kind
}

// PropertyPayload selects layers by a free-text filter expression.
type PropertyPayload struct {
	Expression string
}

func (PropertyPayload) Kind() Kind { return KindProperty }

// GroupPayload selects an explicit list of layers.
type GroupPayload struct {
	Layers []LayerRef
}

func (GroupPayload) Kind() Kind { return KindGroup }

// LayerRef identifies a layer in the external layer table. Name is the
// table's spelling at the time the reference was resolved or loaded.
type LayerRef struct {
	ID   uint64
	Name string
}

// Node is a filter that is not yet owned by a tree. It becomes part of the
// tree through Tree.Attach and must not be reused afterwards.
type Node struct {
	name        string
	allowDelete bool
	allowNested bool
	payload     Payload

	parent   NodeID
	children []NodeID
}

// NodeOption customises a node at construction time.
type NodeOption func(*Node)

// WithAllowDelete sets whether the node may ever be removed.
func WithAllowDelete(allow bool) NodeOption {
	return func(n *Node) {
		n.allowDelete = allow
	}
}

// WithAllowNested sets whether the node may own nested filters.
func WithAllowNested(allow bool) NodeOption {
	return func(n *Node) {
		n.allowNested = allow
	}
}

// NewPropertyNode builds a property filter. New filters are deletable and
// accept nested filters unless an option says otherwise.
func NewPropertyNode(name, expression string, opts ...NodeOption) *Node {
	return newNode(name, PropertyPayload{Expression: expression}, opts)
}

// NewGroupNode builds a group filter over the given layers.
func NewGroupNode(name string, layers []LayerRef, opts ...NodeOption) *Node {
	refs := make([]LayerRef, len(layers))
	copy(refs, layers)
	return newNode(name, GroupPayload{Layers: refs}, opts)
}

func newNode(name string, payload Payload, opts []NodeOption) *Node {
	n := &Node{
		name:        name,
		allowDelete: true,
		allowNested: true,
		payload:     payload,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Node) Name() string      { return n.name }
func (n *Node) Kind() Kind        { return n.payload.Kind() }
func (n *Node) AllowDelete() bool { return n.allowDelete }
func (n *Node) AllowNested() bool { return n.allowNested }

// View is a read-only snapshot of one node.
type View struct {
	ID          NodeID
	Name        string
	Kind        Kind
	Expression  string
	Layers      []LayerRef
	AllowDelete bool
	AllowNested bool
	Parent      NodeID
	ParentName  string
	ChildCount  int
}

// IsGroup reports whether the snapshot is a group filter.
func (v View) IsGroup() bool { return v.Kind == KindGroup }

// LayerNames returns the names of the referenced layers in order.
func (v View) LayerNames() []string {
	names := make([]string, 0, len(v.Layers))
	for _, l := range v.Layers {
		names = append(names, l.Name)
	}
	return names
}
