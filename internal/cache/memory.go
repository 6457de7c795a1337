package cache

import (
	"context"
	"sync"

	"studentresults/internal/model"
)

// MemoryCache keeps the collection in process memory.
type MemoryCache struct {
	mu      sync.RWMutex
	records []model.StudentRecord
}

func NewMemoryCache(seed ...model.StudentRecord) *MemoryCache {
	return &MemoryCache{records: clone(seed)}
}

func (m *MemoryCache) Load(_ context.Context) ([]model.StudentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return clone(m.records), nil
}

func (m *MemoryCache) Save(_ context.Context, records []model.StudentRecord) error {
	m.mu.Lock()
	m.records = clone(records)
	m.mu.Unlock()
	return nil
}
