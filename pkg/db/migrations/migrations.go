// Package migrations versions the schema of a document file.
package migrations

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/JeffStuy/cs-layerfilterutil/pkg/db/models"
)

// ErrNothingToRollback is returned by Rollback on a document without
// applied schema versions.
var ErrNothingToRollback = errors.New("no schema version to roll back")

// Migration moves the document schema one version up or down.
type Migration struct {
	Version     int
	Description string
	Up          func(*gorm.DB) error
	Down        func(*gorm.DB) error
}

// schemaVersion is one applied migration.
type schemaVersion struct {
	Version     int    `gorm:"primaryKey;autoIncrement:false"`
	Description string `gorm:"type:text"`
	AppliedAt   int64  `gorm:"autoCreateTime"`
}

func (schemaVersion) TableName() string { return "schema_versions" }

// MigrationStatus reports whether a known migration has been applied.
type MigrationStatus struct {
	Version     int
	Description string
	Applied     bool
}

type Migrator struct {
	db         *gorm.DB
	migrations []Migration
}

func NewMigrator(db *gorm.DB) *Migrator {
	return newMigrator(db, documentSchema())
}

func newMigrator(db *gorm.DB, migrations []Migration) *Migrator {
	sorted := append([]Migration(nil), migrations...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })
	return &Migrator{db: db, migrations: sorted}
}

func (m *Migrator) applied(ctx context.Context) (map[int]bool, error) {
	if err := m.db.WithContext(ctx).AutoMigrate(&schemaVersion{}); err != nil {
		return nil, fmt.Errorf("failed to create schema version table: %w", err)
	}

	var rows []schemaVersion
	if err := m.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to read schema versions: %w", err)
	}

	versions := make(map[int]bool, len(rows))
	for _, r := range rows {
		versions[r.Version] = true
	}
	return versions, nil
}

// Migrate applies every pending migration in version order, each in its own
// transaction.
func (m *Migrator) Migrate(ctx context.Context) error {
	versions, err := m.applied(ctx)
	if err != nil {
		return err
	}

	for _, mig := range m.migrations {
		if versions[mig.Version] {
			continue
		}
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := mig.Up(tx); err != nil {
				return err
			}
			return tx.Create(&schemaVersion{Version: mig.Version, Description: mig.Description}).Error
		})
		if err != nil {
			return fmt.Errorf("schema version %d (%s) failed: %w", mig.Version, mig.Description, err)
		}
	}
	return nil
}

// Rollback reverts the newest applied migration.
func (m *Migrator) Rollback(ctx context.Context) error {
	versions, err := m.applied(ctx)
	if err != nil {
		return err
	}

	for i := len(m.migrations) - 1; i >= 0; i-- {
		mig := m.migrations[i]
		if !versions[mig.Version] {
			continue
		}
		return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := mig.Down(tx); err != nil {
				return fmt.Errorf("rollback of schema version %d failed: %w", mig.Version, err)
			}
			return tx.Delete(&schemaVersion{}, mig.Version).Error
		})
	}
	return ErrNothingToRollback
}

func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	versions, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}

	statuses := make([]MigrationStatus, 0, len(m.migrations))
	for _, mig := range m.migrations {
		statuses = append(statuses, MigrationStatus{
			Version:     mig.Version,
			Description: mig.Description,
			Applied:     versions[mig.Version],
		})
	}
	return statuses, nil
}

func documentSchema() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Document, layer table and filter tree",
			Up: func(db *gorm.DB) error {
				return db.AutoMigrate(&models.Document{}, &models.Layer{}, &models.Filter{}, &models.FilterLayer{})
			},
			Down: func(db *gorm.DB) error {
				return db.Migrator().DropTable(&models.FilterLayer{}, &models.Filter{}, &models.Layer{}, &models.Document{})
			},
		},
		{
			Version:     2,
			Description: "Case-insensitive layer name index",
			Up: func(db *gorm.DB) error {
				return db.Exec("CREATE INDEX IF NOT EXISTS idx_layers_name_nocase ON layers (name COLLATE NOCASE)").Error
			},
			Down: func(db *gorm.DB) error {
				return db.Exec("DROP INDEX IF EXISTS idx_layers_name_nocase").Error
			},
		},
	}
}
