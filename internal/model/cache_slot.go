package model

import "time"

// CacheSlot is a named key-value slot holding a whole JSON-encoded collection.
type CacheSlot struct {
	Name      string `gorm:"primaryKey"`
	Value     string `gorm:"type:text"`
	UpdatedAt time.Time
}
