package models

import (
	"time"

	"gorm.io/datatypes"
)

// RoleCollectionModel holds the whole serialized role collection as one
// document row. The document is rewritten in full on every mutation; there
// is no per-role row.
type RoleCollectionModel struct {
	ID        uint           `gorm:"primaryKey"`
	Key       string         `gorm:"uniqueIndex;size:64;not null"`
	Document  datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

func (RoleCollectionModel) TableName() string {
	return "role_collections"
}
