package models

import (
	"time"

	"gorm.io/gorm"
)

// Layer is one entry of the document's layer table. Position keeps the
// table order, which is the order group filters list their layers in.
type Layer struct {
	ID       uint   `gorm:"primaryKey"`
	Name     string `gorm:"type:text;not null;index"`
	Position int    `gorm:"not null;index"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
