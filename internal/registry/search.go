package registry

import (
	"github.com/JeffStuy/cs-layerfilterutil/internal/criteria"
	"github.com/JeffStuy/cs-layerfilterutil/internal/filtertree"
)

// candidate maps a snapshot onto the fields the matcher understands.
func candidate(v filtertree.View) criteria.Candidate {
	return criteria.Candidate{
		Name:        v.Name,
		ParentName:  v.ParentName,
		IsGroup:     v.IsGroup(),
		AllowDelete: v.AllowDelete,
		AllowNested: v.AllowNested,
		NestCount:   v.ChildCount,
	}
}

// search collects, in pre-order, every node matching set. Each node is tested
// on its own; a non-matching parent does not hide its children.
func (r *Registry) search(set criteria.Set) []filtertree.View {
	var out []filtertree.View
	if r.collect(filtertree.RootID, 1, set, &out) {
		r.log.Debug("Search truncated below depth %d", r.maxDepth)
	}
	return out
}

// collect walks the children of parent at the given depth and reports
// whether any branch was cut off by the depth limit.
func (r *Registry) collect(parent filtertree.NodeID, depth int, set criteria.Set, out *[]filtertree.View) bool {
	children := r.tree.Children(parent)
	if len(children) == 0 {
		return false
	}
	if depth > r.maxDepth {
		return true
	}

	truncated := false
	for _, id := range children {
		v, ok := r.tree.Node(id)
		if !ok {
			continue
		}
		if set.Match(candidate(v)) {
			*out = append(*out, v)
		}
		if r.collect(id, depth+1, set, out) {
			truncated = true
		}
	}
	return truncated
}

// hasName reports whether any node at any depth is called name. Unlike
// search it is not bounded by the depth limit.
func (r *Registry) hasName(name string) bool {
	found := false
	r.tree.Walk(func(v filtertree.View, _ int) bool {
		if v.Name == name {
			found = true
		}
		return !found
	})
	return found
}

// findOne resolves name to exactly one node.
func (r *Registry) findOne(name string) (filtertree.View, error) {
	matches := r.search(criteria.Set{}.With(criteria.NameIs(name)))
	switch len(matches) {
	case 0:
		return filtertree.View{}, ErrNotFound
	case 1:
		return matches[0], nil
	default:
		return filtertree.View{}, ErrAmbiguousMatch
	}
}
