package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"studentresults/internal/model"
)

// GormCache stores the collection as JSON in one row of the cache_slots table.
type GormCache struct {
	db   *gorm.DB
	name string
}

func NewGormCache(db *gorm.DB, name string) *GormCache {
	if name == "" {
		name = StudentsKey
	}
	return &GormCache{db: db, name: name}
}

// Load returns an empty collection when the slot has never been written.
func (c *GormCache) Load(ctx context.Context) ([]model.StudentRecord, error) {
	var slot model.CacheSlot
	err := c.db.WithContext(ctx).Where("name = ?", c.name).First(&slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []model.StudentRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load slot %q: %w", c.name, err)
	}

	records := []model.StudentRecord{}
	if slot.Value == "" {
		return records, nil
	}
	if err := json.Unmarshal([]byte(slot.Value), &records); err != nil {
		return nil, fmt.Errorf("decode slot %q: %w", c.name, err)
	}
	return records, nil
}

func (c *GormCache) Save(ctx context.Context, records []model.StudentRecord) error {
	if records == nil {
		records = []model.StudentRecord{}
	}
	value, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode slot %q: %w", c.name, err)
	}

	slot := model.CacheSlot{Name: c.name, Value: string(value)}
	err = c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&slot).Error
	if err != nil {
		return fmt.Errorf("save slot %q: %w", c.name, err)
	}
	return nil
}
