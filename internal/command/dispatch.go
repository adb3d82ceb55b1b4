package command

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/JeffStuy/cs-layerfilterutil/internal/criteria"
	"github.com/JeffStuy/cs-layerfilterutil/internal/filtertree"
	"github.com/JeffStuy/cs-layerfilterutil/internal/registry"
	"github.com/JeffStuy/cs-layerfilterutil/pkg/log"
	"github.com/JeffStuy/cs-layerfilterutil/pkg/resbuf"
)

// LayerResolver looks layer names up in the document's layer table.
// Unknown names are dropped rather than reported.
type LayerResolver interface {
	ResolveLayers(ctx context.Context, names []string) ([]filtertree.LayerRef, error)
}

// TreeWriter stores the tree back into the document after a change.
type TreeWriter interface {
	SaveFilterTree(ctx context.Context, tree *filtertree.Tree) error
}

// Notifier is told after every successful change so that views of the tree
// can be refreshed.
type Notifier interface {
	Refresh(ctx context.Context) error
}

// Dispatcher runs decoded commands against a registry.
type Dispatcher struct {
	registry *registry.Registry
	layers   LayerResolver
	writer   TreeWriter
	notifier Notifier
	usage    io.Writer
	log      log.LoggerService
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

func WithLayerResolver(r LayerResolver) DispatcherOption {
	return func(d *Dispatcher) { d.layers = r }
}

func WithTreeWriter(w TreeWriter) DispatcherOption {
	return func(d *Dispatcher) { d.writer = w }
}

func WithNotifier(n Notifier) DispatcherOption {
	return func(d *Dispatcher) { d.notifier = n }
}

// WithUsage sets where usage text is written. Usage is discarded otherwise.
func WithUsage(w io.Writer) DispatcherOption {
	return func(d *Dispatcher) { d.usage = w }
}

func WithLogger(l log.LoggerService) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.log = l
		}
	}
}

func NewDispatcher(reg *registry.Registry, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		registry: reg,
		usage:    io.Discard,
		log:      log.NewDiscardLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Call is the caller-facing entry point: any failure, from decoding to
// storing the document, is reported as the nil stream.
func (d *Dispatcher) Call(ctx context.Context, args []resbuf.Atom) []resbuf.Atom {
	cmd, err := Decode(args)
	if err != nil {
		d.log.Debug("Rejected call (%s): %v", Kind(err), err)
		return nil
	}

	out, err := d.Execute(ctx, cmd)
	if err != nil {
		d.log.Warn("Command '%s' failed (%s): %v", cmd.Name(), Kind(err), err)
		return nil
	}
	return out
}

// Execute runs cmd and encodes its result. Domain failures are returned as
// the registry's typed errors.
func (d *Dispatcher) Execute(ctx context.Context, cmd Command) ([]resbuf.Atom, error) {
	switch c := cmd.(type) {
	case List:
		return resbuf.Encode(d.registry.List()), nil

	case FindOne:
		v, err := d.registry.FindOne(c.Filter)
		if err != nil {
			return nil, err
		}
		return resbuf.Encode([]filtertree.View{v}), nil

	case Find:
		return resbuf.Encode(d.registry.Find(c.Criteria)), nil

	case AddProperty:
		if _, err := d.registry.AddProperty(c.Filter, c.Parent, c.Expression); err != nil {
			return nil, err
		}
		return d.afterAdd(ctx, c.Filter)

	case AddGroup:
		refs, err := d.resolve(ctx, c.Layers)
		if err != nil {
			return nil, err
		}
		if _, err := d.registry.AddGroup(c.Filter, c.Parent, refs); err != nil {
			return nil, err
		}
		return d.afterAdd(ctx, c.Filter)

	case Delete:
		v, err := d.registry.Delete(c.Filter)
		if err != nil {
			return nil, err
		}
		if err := d.commit(ctx); err != nil {
			return nil, err
		}
		return resbuf.Encode([]filtertree.View{v}), nil

	case DeleteAll:
		removed, err := d.registry.DeleteAll()
		if err != nil {
			return nil, err
		}
		if err := d.commit(ctx); err != nil {
			return nil, err
		}
		return resbuf.Encode(removed), nil

	case Usage:
		if err := WriteUsage(d.usage); err != nil {
			d.log.Warn("Unable to write usage: %v", err)
		}
		return nil, nil

	default:
		return nil, fmt.Errorf("%w: unsupported command %T", ErrMalformedArguments, cmd)
	}
}

// afterAdd stores the change and answers with the new filter, looked up again
// by name.
func (d *Dispatcher) afterAdd(ctx context.Context, name string) ([]resbuf.Atom, error) {
	if err := d.commit(ctx); err != nil {
		return nil, err
	}
	v, err := d.registry.FindOne(name)
	if err != nil {
		return nil, err
	}
	return resbuf.Encode([]filtertree.View{v}), nil
}

func (d *Dispatcher) resolve(ctx context.Context, names []string) ([]filtertree.LayerRef, error) {
	if d.layers == nil {
		return nil, fmt.Errorf("resolve layers: %w", registry.ErrNoLayersResolved)
	}
	refs, err := d.layers.ResolveLayers(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("resolve layers: %w", err)
	}
	if len(refs) < len(names) {
		d.log.Debug("Resolved %d of %d layer name(s)", len(refs), len(names))
	}
	return refs, nil
}

// commit writes the tree back and then asks for a refresh. The refresh
// outcome does not affect the call.
func (d *Dispatcher) commit(ctx context.Context) error {
	if d.writer != nil {
		if err := d.writer.SaveFilterTree(ctx, d.registry.Tree()); err != nil {
			return fmt.Errorf("save filter tree: %w", err)
		}
	}
	if d.notifier != nil {
		if err := d.notifier.Refresh(ctx); err != nil {
			d.log.Debug("Refresh failed: %v", err)
		}
	}
	return nil
}

// Kind names the failure class of err for logging.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMalformedArguments):
		return "MalformedArguments"
	case errors.Is(err, criteria.ErrMalformedCriteria):
		return "MalformedCriteria"
	case errors.Is(err, registry.ErrDuplicateName):
		return "DuplicateName"
	case errors.Is(err, registry.ErrNestingDenied):
		return "NestingDenied"
	case errors.Is(err, registry.ErrNoLayersResolved):
		return "NoLayersResolved"
	case errors.Is(err, registry.ErrNotFound):
		return "NotFound"
	case errors.Is(err, registry.ErrAmbiguousMatch):
		return "AmbiguousMatch"
	case errors.Is(err, registry.ErrDeleteDenied):
		return "DeleteDenied"
	case errors.Is(err, registry.ErrInvalidName):
		return "InvalidName"
	default:
		return "Internal"
	}
}
