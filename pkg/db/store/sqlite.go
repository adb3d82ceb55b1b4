package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/JeffStuy/cs-layerfilterutil/internal/filtertree"
	"github.com/JeffStuy/cs-layerfilterutil/pkg/db/migrations"
	"github.com/JeffStuy/cs-layerfilterutil/pkg/db/models"
)

// documentID is the primary key of the single document row.
const documentID = 1

// SQLiteStore keeps a document in a single SQLite file.
type SQLiteStore struct {
	db   *gorm.DB
	path string
	name string
}

type SQLiteConfig struct {
	Path         string
	DocumentName string
	LogLevel     logger.LogLevel
}

// NewSQLiteStore opens the document file at cfg.Path. GORM logging is silent
// unless cfg.LogLevel asks otherwise.
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if cfg.LogLevel == 0 {
		cfg.LogLevel = logger.Silent
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger:  logger.Default.LogMode(cfg.LogLevel),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open document '%s': %w", cfg.Path, err)
	}

	return &SQLiteStore{db: db, path: cfg.Path, name: cfg.DocumentName}, nil
}

// DB exposes the GORM handle for schema tooling.
func (s *SQLiteStore) DB() *gorm.DB {
	return s.db
}

func (s *SQLiteStore) sqlDB() (*sql.DB, error) {
	sqlDB, err := s.db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB, nil
}

// Connect limits the pool to the single writer SQLite allows and pings the file.
func (s *SQLiteStore) Connect(ctx context.Context) error {
	sqlDB, err := s.sqlDB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return sqlDB.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.sqlDB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Migrate brings the schema up to date and creates the document row on first use.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if err := migrations.NewMigrator(s.db).Migrate(ctx); err != nil {
		return err
	}

	var doc models.Document
	return s.db.WithContext(ctx).
		Where(models.Document{ID: documentID}).
		Attrs(models.Document{Name: s.name}).
		FirstOrCreate(&doc).Error
}

func (s *SQLiteStore) Health(ctx context.Context) error {
	sqlDB, err := s.sqlDB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Document operations

func (s *SQLiteStore) GetDocument(ctx context.Context) (*models.Document, error) {
	var doc models.Document
	if err := s.db.WithContext(ctx).First(&doc, documentID).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// Revision returns how many times the filter tree has been saved.
func (s *SQLiteStore) Revision(ctx context.Context) (int64, error) {
	doc, err := s.GetDocument(ctx)
	if err != nil {
		return 0, err
	}
	return doc.Revision, nil
}

func (s *SQLiteStore) MarkInitialized(ctx context.Context) error {
	return s.db.WithContext(ctx).
		Model(&models.Document{}).
		Where("id = ?", documentID).
		Update("initialized_at", time.Now().UTC()).Error
}

// Layer operations

func (s *SQLiteStore) CreateLayer(ctx context.Context, name string) (*models.Layer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("layer name is required")
	}

	layer := &models.Layer{Name: name}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Layer{}).Where("LOWER(name) = LOWER(?)", name).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return fmt.Errorf("layer '%s': %w", name, ErrLayerExists)
		}

		var count int64
		if err := tx.Model(&models.Layer{}).Count(&count).Error; err != nil {
			return err
		}
		layer.Position = int(count)

		return tx.Create(layer).Error
	})
	if err != nil {
		return nil, err
	}
	return layer, nil
}

func (s *SQLiteStore) ListLayers(ctx context.Context) ([]models.Layer, error) {
	var layers []models.Layer
	err := s.db.WithContext(ctx).Order("position").Find(&layers).Error
	return layers, err
}

// ResolveLayers returns the layers whose names appear in names, compared
// case-insensitively, in layer table order. Unknown names are dropped.
func (s *SQLiteStore) ResolveLayers(ctx context.Context, names []string) ([]filtertree.LayerRef, error) {
	layers, err := s.ListLayers(ctx)
	if err != nil {
		return nil, err
	}

	var refs []filtertree.LayerRef
	for _, layer := range layers {
		for _, name := range names {
			if strings.EqualFold(layer.Name, name) {
				refs = append(refs, filtertree.LayerRef{ID: uint64(layer.ID), Name: layer.Name})
				break
			}
		}
	}
	return refs, nil
}

// Filter tree operations

// LoadFilterTree rebuilds the saved tree. Rows that cannot be reached from a
// top-level filter are ignored.
func (s *SQLiteStore) LoadFilterTree(ctx context.Context) (*filtertree.Tree, error) {
	var rows []models.Filter
	err := s.db.WithContext(ctx).
		Preload("Layers", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Layers.Layer").
		Order("position").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load filters: %w", err)
	}

	children := make(map[uint][]*models.Filter)
	for i := range rows {
		var parent uint
		if rows[i].ParentID != nil {
			parent = *rows[i].ParentID
		}
		children[parent] = append(children[parent], &rows[i])
	}

	tree := filtertree.NewTree()
	type pending struct {
		row    uint
		parent filtertree.NodeID
	}
	queue := []pending{{row: 0, parent: filtertree.RootID}}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		for _, row := range children[next.row] {
			node, err := nodeFromRow(row)
			if err != nil {
				return nil, err
			}
			id, err := tree.Attach(node, next.parent)
			if err != nil {
				return nil, fmt.Errorf("failed to restore filter '%s': %w", row.Name, err)
			}
			queue = append(queue, pending{row: row.ID, parent: id})
		}
	}
	return tree, nil
}

func nodeFromRow(row *models.Filter) (*filtertree.Node, error) {
	opts := []filtertree.NodeOption{
		filtertree.WithAllowDelete(row.AllowDelete),
		filtertree.WithAllowNested(row.AllowNested),
	}

	kind, ok := filtertree.ParseKind(row.Kind)
	if !ok {
		return nil, fmt.Errorf("filter '%s' has unknown kind '%s'", row.Name, row.Kind)
	}
	if kind == filtertree.KindProperty {
		return filtertree.NewPropertyNode(row.Name, row.Expression, opts...), nil
	}

	refs := make([]filtertree.LayerRef, 0, len(row.Layers))
	for _, link := range row.Layers {
		if link.Layer.ID == 0 {
			continue
		}
		refs = append(refs, filtertree.LayerRef{ID: uint64(link.Layer.ID), Name: link.Layer.Name})
	}
	return filtertree.NewGroupNode(row.Name, refs, opts...), nil
}

// SaveFilterTree replaces the stored tree with tree and bumps the document
// revision, all in one transaction.
func (s *SQLiteStore) SaveFilterTree(ctx context.Context, tree *filtertree.Tree) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.FilterLayer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&models.Filter{}).Error; err != nil {
			return err
		}

		ids := make(map[filtertree.NodeID]uint)
		positions := make(map[filtertree.NodeID]int)

		var walkErr error
		tree.Walk(func(v filtertree.View, _ int) bool {
			if walkErr != nil {
				return false
			}
			row := models.Filter{
				Name:        v.Name,
				Kind:        v.Kind.String(),
				Expression:  v.Expression,
				AllowDelete: v.AllowDelete,
				AllowNested: v.AllowNested,
				Position:    positions[v.Parent],
			}
			positions[v.Parent]++
			if v.Parent != filtertree.RootID {
				parentID := ids[v.Parent]
				row.ParentID = &parentID
			}

			if err := tx.Omit("Layers").Create(&row).Error; err != nil {
				walkErr = fmt.Errorf("failed to save filter '%s': %w", v.Name, err)
				return false
			}
			ids[v.ID] = row.ID

			if len(v.Layers) == 0 {
				return true
			}
			links := make([]models.FilterLayer, 0, len(v.Layers))
			for i, l := range v.Layers {
				links = append(links, models.FilterLayer{FilterID: row.ID, LayerID: uint(l.ID), Position: i})
			}
			if err := tx.Omit("Layer").Create(&links).Error; err != nil {
				walkErr = fmt.Errorf("failed to save layers of '%s': %w", v.Name, err)
				return false
			}
			return true
		})
		if walkErr != nil {
			return walkErr
		}

		return tx.Model(&models.Document{}).
			Where("id = ?", documentID).
			UpdateColumn("revision", gorm.Expr("revision + ?", 1)).Error
	})
}
