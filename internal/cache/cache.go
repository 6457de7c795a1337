// Package cache holds the local persistent mirror of the student collection.
// The whole collection is read and written at once under a single key.
package cache

import (
	"context"

	"studentresults/internal/model"
)

// StudentsKey is the slot name the student collection is stored under.
const StudentsKey = "students"

// Cache is a single slot holding the entire record collection.
type Cache interface {
	Load(ctx context.Context) ([]model.StudentRecord, error)
	Save(ctx context.Context, records []model.StudentRecord) error
}

func clone(records []model.StudentRecord) []model.StudentRecord {
	out := make([]model.StudentRecord, len(records))
	copy(out, records)
	return out
}
