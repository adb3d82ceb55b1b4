// Package session opens the active document and runs caller requests
// against it, one at a time.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"sync"
	"time"

	"github.com/mwantia/fabric/pkg/container"

	"github.com/JeffStuy/cs-layerfilterutil/internal/command"
	"github.com/JeffStuy/cs-layerfilterutil/internal/config"
	"github.com/JeffStuy/cs-layerfilterutil/internal/filtertree"
	"github.com/JeffStuy/cs-layerfilterutil/internal/palette"
	"github.com/JeffStuy/cs-layerfilterutil/internal/registry"
	"github.com/JeffStuy/cs-layerfilterutil/pkg/db/store"
	"github.com/JeffStuy/cs-layerfilterutil/pkg/log"
	"github.com/JeffStuy/cs-layerfilterutil/pkg/resbuf"
)

var ErrNotOpen = errors.New("session is not open")

type Session struct {
	mutex sync.Mutex

	cfg   *config.Config
	sc    *container.ServiceContainer
	log   log.LoggerService
	usage io.Writer

	store      store.DocumentStore
	registry   *registry.Registry
	notifier   *palette.Notifier
	dispatcher *command.Dispatcher
}

type Option func(*Session)

// WithLogger replaces the logger built from the log configuration.
func WithLogger(logger log.LoggerService) Option {
	return func(s *Session) {
		if logger != nil {
			s.log = logger
		}
	}
}

// WithUsage sets where usage text is written. Defaults to stderr.
func WithUsage(w io.Writer) Option {
	return func(s *Session) {
		if w != nil {
			s.usage = w
		}
	}
}

func New(cfg *config.Config, opts ...Option) *Session {
	s := &Session{
		cfg:   cfg,
		sc:    container.NewServiceContainer(),
		usage: os.Stderr,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = log.NewLoggerService("layerfilterutil", cfg.Log)
	}
	return s
}

func (s *Session) setupServices(st *store.SQLiteStore) error {
	errs := container.Errors{}

	s.log.Debug("Registering 'LoggerService'...")
	errs.Add(container.Register[log.LoggerServiceImpl](s.sc,
		container.With[log.LoggerService](),
		container.WithInstance(s.log)))

	s.log.Debug("Registering 'DocumentStore'...")
	errs.Add(container.Register[store.SQLiteStore](s.sc,
		container.With[store.DocumentStore](),
		container.WithInstance(st)))

	return errs.Errors()
}

// named resolves a component logger through the service container and falls
// back to the session logger.
func (s *Session) named(ctx context.Context, name string) log.LoggerService {
	field := reflect.StructField{Name: name}
	resolved, err := log.NewLoggerTagProcessor().Process(ctx, s.sc, field, "logger:"+name)
	if err != nil {
		s.log.Debug("Using fallback logger for '%s': %v", name, err)
		return s.log.Named(name)
	}
	if logger, ok := resolved.(log.LoggerService); ok {
		return logger
	}
	return s.log.Named(name)
}

// Open connects the document store, seeds a new document and loads the
// filter tree.
func (s *Session) Open(ctx context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	st, err := store.NewSQLiteStore(store.SQLiteConfig{
		Path:         s.cfg.Document.SQLite.Path,
		DocumentName: s.cfg.Document.Name,
	})
	if err != nil {
		return err
	}

	s.store = st

	if err := s.setupServices(st); err != nil {
		return fmt.Errorf("failed to register services: %w", err)
	}

	if err := st.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect document store: %w", err)
	}
	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate document store: %w", err)
	}

	tree, err := st.LoadFilterTree(ctx)
	if err != nil {
		return err
	}

	s.registry = registry.New(tree,
		registry.WithLogger(s.named(ctx, "registry")),
		registry.WithMaxDepth(s.cfg.Search.MaxDepth))

	if err := s.seed(ctx); err != nil {
		return fmt.Errorf("failed to seed document: %w", err)
	}

	s.notifier = palette.NewNotifier(s.cfg.Palette, st, s.named(ctx, "palette"))
	s.dispatcher = command.NewDispatcher(s.registry,
		command.WithLayerResolver(st),
		command.WithTreeWriter(st),
		command.WithNotifier(s.notifier),
		command.WithUsage(s.usage),
		command.WithLogger(s.named(ctx, "command")))

	s.log.Debug("Opened document '%s' with %d filter(s)", s.cfg.Document.Name, s.registry.Len())
	return nil
}

// seed writes the configured layers and filters into a document that has
// never been initialized.
func (s *Session) seed(ctx context.Context) error {
	doc, err := s.store.GetDocument(ctx)
	if err != nil {
		return err
	}
	if doc.Initialized() {
		return nil
	}

	for _, name := range s.cfg.Seed.Layers {
		if _, err := s.store.CreateLayer(ctx, name); err != nil && !errors.Is(err, store.ErrLayerExists) {
			return err
		}
	}

	for _, f := range s.cfg.Seed.Filters {
		opts := []filtertree.NodeOption{
			filtertree.WithAllowDelete(f.AllowDelete),
			filtertree.WithAllowNested(f.AllowNested),
		}

		kind, ok := filtertree.ParseKind(f.Kind)
		if !ok {
			return fmt.Errorf("seed filter '%s': unknown kind '%s'", f.Name, f.Kind)
		}
		switch kind {
		case filtertree.KindGroup:
			refs, rerr := s.store.ResolveLayers(ctx, f.Layers)
			if rerr != nil {
				return rerr
			}
			_, err = s.registry.AddGroup(f.Name, f.Parent, refs, opts...)
		default:
			_, err = s.registry.AddProperty(f.Name, f.Parent, f.Expression, opts...)
		}

		if errors.Is(err, registry.ErrDuplicateName) {
			continue
		}
		if err != nil {
			return fmt.Errorf("seed filter '%s': %w", f.Name, err)
		}
	}

	if err := s.store.SaveFilterTree(ctx, s.registry.Tree()); err != nil {
		return err
	}

	s.log.Info("Initialized document '%s'", s.cfg.Document.Name)
	return s.store.MarkInitialized(ctx)
}

// Call runs one request in the caller's calling convention. Any failure is
// the nil stream.
func (s *Session) Call(ctx context.Context, args []resbuf.Atom) []resbuf.Atom {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.dispatcher == nil {
		s.log.Warn("Call rejected: %v", ErrNotOpen)
		return nil
	}
	return s.dispatcher.Call(ctx, args)
}

// Execute runs an already decoded command and reports why it failed.
func (s *Session) Execute(ctx context.Context, cmd command.Command) ([]resbuf.Atom, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.dispatcher == nil {
		return nil, ErrNotOpen
	}
	return s.dispatcher.Execute(ctx, cmd)
}

// Store returns the document store backing the session.
func (s *Session) Store() store.DocumentStore {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.store
}

// Close releases the document store within the configured shutdown timeout.
func (s *Session) Close(ctx context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	timeout, err := time.ParseDuration(s.cfg.ShutdownTimeout)
	if err != nil {
		// Set default of 10 seconds if error
		timeout = 10 * time.Second
	}

	shutdown, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var errs []error
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close document store: %w", err))
		}
		s.store = nil
	}
	if err := s.sc.Cleanup(shutdown); err != nil {
		errs = append(errs, fmt.Errorf("failed to complete service container cleanup: %w", err))
	}
	s.dispatcher = nil

	return errors.Join(errs...)
}
