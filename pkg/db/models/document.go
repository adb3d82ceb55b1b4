package models

import (
	"time"

	"gorm.io/gorm"
)

// Document is the active drawing. A store holds exactly one.
type Document struct {
	ID       uint   `gorm:"primaryKey"`
	Name     string `gorm:"type:text;not null"`
	Revision int64  `gorm:"not null"`

	// Set once the seed layers and filters have been written
	InitializedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// Initialized reports whether the document has been seeded.
func (d *Document) Initialized() bool {
	return d.InitializedAt != nil
}
