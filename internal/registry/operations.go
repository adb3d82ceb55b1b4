package registry

import (
	"fmt"

	"github.com/JeffStuy/cs-layerfilterutil/internal/criteria"
	"github.com/JeffStuy/cs-layerfilterutil/internal/filtertree"
)

// List returns every filter in pre-order.
func (r *Registry) List() []filtertree.View {
	r.mu.Lock()
	defer r.mu.Unlock()

	views := r.search(criteria.Set{})
	r.log.Debug("Listed %d filter(s)", len(views))
	return views
}

// Find returns the filters satisfying every predicate in set, in pre-order.
func (r *Registry) Find(set criteria.Set) []filtertree.View {
	r.mu.Lock()
	defer r.mu.Unlock()

	views := r.search(set)
	r.log.Debug("Found %d filter(s) where %s", len(views), set)
	return views
}

// FindOne returns the single filter called name.
func (r *Registry) FindOne(name string) (filtertree.View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, err := r.findOne(name)
	if err != nil {
		return filtertree.View{}, fmt.Errorf("find %q: %w", name, err)
	}
	return v, nil
}

// AddProperty creates a property filter under the filter called parent, or at
// the top level when parent is empty.
func (r *Registry) AddProperty(name, parent, expression string, opts ...filtertree.NodeOption) (filtertree.View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.add(filtertree.NewPropertyNode(name, expression, opts...), parent)
}

// AddGroup creates a group filter over layers, which the caller has already
// resolved against the layer table.
func (r *Registry) AddGroup(name, parent string, layers []filtertree.LayerRef, opts ...filtertree.NodeOption) (filtertree.View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(layers) == 0 {
		return filtertree.View{}, fmt.Errorf("add group %q: %w", name, ErrNoLayersResolved)
	}
	return r.add(filtertree.NewGroupNode(name, layers, opts...), parent)
}

func (r *Registry) add(node *filtertree.Node, parent string) (filtertree.View, error) {
	name := node.Name()
	if err := ValidateName(name); err != nil {
		return filtertree.View{}, fmt.Errorf("add %s: %w", node.Kind(), err)
	}

	if r.hasName(name) {
		return filtertree.View{}, fmt.Errorf("add %s %q: %w", node.Kind(), name, ErrDuplicateName)
	}

	parentID := filtertree.RootID
	if parent != "" {
		p, err := r.findOne(parent)
		if err != nil {
			return filtertree.View{}, fmt.Errorf("add %s %q: parent %q: %w", node.Kind(), name, parent, err)
		}
		parentID = p.ID
	}

	id, err := r.tree.Attach(node, parentID)
	if err != nil {
		return filtertree.View{}, err
	}

	v, _ := r.tree.Node(id)
	r.log.Info("Added %s filter '%s' under '%s'", v.Kind, v.Name, parentLabel(v.ParentName))
	return v, nil
}

// Delete removes the filter called name together with its nested filters.
func (r *Registry) Delete(name string) (filtertree.View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	target, err := r.findOne(name)
	if err != nil {
		return filtertree.View{}, fmt.Errorf("delete %q: %w", name, err)
	}

	v, err := r.tree.Detach(target.ID)
	if err != nil {
		return filtertree.View{}, err
	}

	r.log.Info("Deleted filter '%s' from '%s'", v.Name, parentLabel(v.ParentName))
	return v, nil
}

// DeleteAll removes every deletable filter. Non-deletable filters keep their
// whole subtree, and a deletable filter is only removed once it has no
// nested filters left. The removed filters are returned in pre-order, as they
// were before the sweep.
func (r *Registry) DeleteAll() ([]filtertree.View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	before := r.search(criteria.Set{})

	removed := make(map[filtertree.NodeID]bool)
	r.sweep(filtertree.RootID, 1, removed)

	if len(removed) == 0 {
		return nil, fmt.Errorf("delete all: %w", ErrNotFound)
	}

	out := make([]filtertree.View, 0, len(removed))
	for _, v := range before {
		if removed[v.ID] {
			out = append(out, v)
		}
	}

	r.log.Info("Deleted %d filter(s), %d remain", len(out), r.tree.Len())
	return out, nil
}

// sweep removes deletable leaves bottom-up below parent, staying within the
// depth limit.
func (r *Registry) sweep(parent filtertree.NodeID, depth int, removed map[filtertree.NodeID]bool) {
	if depth > r.maxDepth {
		return
	}

	for _, id := range r.tree.Children(parent) {
		v, ok := r.tree.Node(id)
		if !ok || !v.AllowDelete {
			continue
		}

		r.sweep(id, depth+1, removed)
		if r.tree.ChildCount(id) > 0 {
			continue
		}
		if _, err := r.tree.Detach(id); err != nil {
			r.log.Warn("Unable to delete filter '%s': %v", v.Name, err)
			continue
		}
		removed[id] = true
	}
}

func parentLabel(name string) string {
	if name == "" {
		return "<root>"
	}
	return name
}
