package models

import (
	"time"
)

// Filter is one node of the stored filter tree. Top-level filters have no
// parent; siblings are ordered by Position.
type Filter struct {
	ID          uint   `gorm:"primaryKey"`
	ParentID    *uint  `gorm:"index:idx_parent_position"`
	Position    int    `gorm:"not null;index:idx_parent_position"`
	Name        string `gorm:"type:text;not null"`
	Kind        string `gorm:"type:text;not null"` // "property" or "group"
	Expression  string `gorm:"type:text"`
	AllowDelete bool   `gorm:"not null"`
	AllowNested bool   `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships
	Layers []FilterLayer `gorm:"foreignKey:FilterID;constraint:OnDelete:CASCADE"`
}

// FilterLayer links a group filter to one of its layers.
type FilterLayer struct {
	ID       uint `gorm:"primaryKey"`
	FilterID uint `gorm:"not null;index:idx_filter_layers"`
	LayerID  uint `gorm:"not null"`
	Position int  `gorm:"not null"`

	// Relationships
	Layer Layer `gorm:"foreignKey:LayerID;references:ID"`
}
