package models

import (
	"time"
)

// StorageEntry is one key of the shared key/value store when it is backed by the database
type StorageEntry struct {
	Key       string    `gorm:"primaryKey;size:191" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (StorageEntry) TableName() string {
	return "storage_entries"
}
