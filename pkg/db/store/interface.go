package store

import (
	"context"
	"errors"

	"github.com/JeffStuy/cs-layerfilterutil/internal/filtertree"
	"github.com/JeffStuy/cs-layerfilterutil/pkg/db/models"
)

// ErrLayerExists is returned when a layer name is already in the table,
// compared case-insensitively.
var ErrLayerExists = errors.New("layer already exists")

// DocumentStore is the active document: its layer table and the filter tree
// saved with it.
type DocumentStore interface {
	// Lifecycle
	Connect(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error
	Health(ctx context.Context) error

	// Document operations
	GetDocument(ctx context.Context) (*models.Document, error)
	Revision(ctx context.Context) (int64, error)
	MarkInitialized(ctx context.Context) error

	// Layer operations
	CreateLayer(ctx context.Context, name string) (*models.Layer, error)
	ListLayers(ctx context.Context) ([]models.Layer, error)
	ResolveLayers(ctx context.Context, names []string) ([]filtertree.LayerRef, error)

	// Filter tree operations
	LoadFilterTree(ctx context.Context) (*filtertree.Tree, error)
	SaveFilterTree(ctx context.Context, tree *filtertree.Tree) error
}
