// Package registry implements the filter operations requested by callers:
// listing, searching, adding and deleting filters while enforcing the
// uniqueness, nesting and deletion rules of the tree.
package registry

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/JeffStuy/cs-layerfilterutil/internal/criteria"
	"github.com/JeffStuy/cs-layerfilterutil/internal/filtertree"
	"github.com/JeffStuy/cs-layerfilterutil/pkg/log"
)

// MaxDepth bounds every search. Branches below it are silently skipped.
const MaxDepth = 100

var (
	ErrDuplicateName    = errors.New("duplicate filter name")
	ErrNotFound         = errors.New("filter not found")
	ErrAmbiguousMatch   = errors.New("filter name is ambiguous")
	ErrNoLayersResolved = errors.New("no layers resolved")
	ErrInvalidName      = errors.New("invalid filter name")

	ErrNestingDenied     = filtertree.ErrNestingDenied
	ErrDeleteDenied      = filtertree.ErrDeleteDenied
	ErrMalformedCriteria = criteria.ErrMalformedCriteria
)

// Registry serialises all access to one filter tree.
type Registry struct {
	mu       sync.Mutex
	tree     *filtertree.Tree
	log      log.LoggerService
	maxDepth int
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger operations report to.
func WithLogger(logger log.LoggerService) Option {
	return func(r *Registry) {
		if logger != nil {
			r.log = logger
		}
	}
}

// WithMaxDepth overrides MaxDepth. Values below one are ignored.
func WithMaxDepth(depth int) Option {
	return func(r *Registry) {
		if depth > 0 {
			r.maxDepth = depth
		}
	}
}

// New wraps tree. A nil tree starts empty.
func New(tree *filtertree.Tree, opts ...Option) *Registry {
	if tree == nil {
		tree = filtertree.NewTree()
	}
	r := &Registry{
		tree:     tree,
		log:      log.NewDiscardLogger(),
		maxDepth: MaxDepth,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Tree exposes the underlying tree for persistence. Callers must not mutate
// it while operations are running.
func (r *Registry) Tree() *filtertree.Tree {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.tree
}

// Len returns the number of filters held.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.tree.Len()
}

// ValidateName rejects names that are empty or contain a character reserved
// by the criteria grammar.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	}
	if i := strings.IndexAny(name, criteria.ReservedChars); i >= 0 {
		return fmt.Errorf("%w: %q contains reserved character %q", ErrInvalidName, name, name[i])
	}
	return nil
}
