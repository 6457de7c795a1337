package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"studentresults/internal/availability"
	"studentresults/internal/cache"
	"studentresults/internal/model"
)

// Remote is the primary store.
type Remote interface {
	List(ctx context.Context) ([]model.StudentRecord, error)
	Get(ctx context.Context, id int) (model.StudentRecord, error)
	Create(ctx context.Context, data model.StudentData) (model.StudentRecord, error)
	Update(ctx context.Context, id int, data model.StudentData) (model.StudentRecord, error)
	Delete(ctx context.Context, id int) error
}

// RecordService routes each operation to the remote store when it is
// available and to the local cache otherwise. Any remote error falls back to
// the local cache; the returned Source tells the caller which one answered.
//
// Local read-modify-write cycles are serialized, so a RecordService is safe
// for concurrent use.
type RecordService struct {
	remote       Remote
	local        cache.Cache
	availability availability.Strategy
	logger       *zap.Logger

	mtx sync.Mutex
}

func NewRecordService(remote Remote, local cache.Cache, strategy availability.Strategy, logger *zap.Logger) *RecordService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordService{
		remote:       remote,
		local:        local,
		availability: strategy,
		logger:       logger,
	}
}

// ListAll returns every record. A successful remote list replaces the local
// cache wholesale.
func (s *RecordService) ListAll(ctx context.Context) ([]model.StudentRecord, model.Source, error) {
	if s.online(ctx, "list") {
		records, err := s.remote.List(ctx)
		if err == nil {
			if err := s.mirror(ctx, records); err != nil {
				s.logger.Warn("failed to mirror remote records", zap.Error(err))
			}
			return records, model.SourceRemote, nil
		}
		s.fallback("list", err)
	}

	records, err := s.load(ctx, "list")
	if err != nil {
		return nil, model.SourceLocal, err
	}
	return records, model.SourceLocal, nil
}

// GetByID never writes to the local cache.
func (s *RecordService) GetByID(ctx context.Context, id int) (model.StudentRecord, model.Source, error) {
	if s.online(ctx, "get") {
		rec, err := s.remote.Get(ctx, id)
		if err == nil {
			return rec, model.SourceRemote, nil
		}
		s.fallback("get", err)
	}

	records, err := s.load(ctx, "get")
	if err != nil {
		return model.StudentRecord{}, model.SourceLocal, err
	}
	if i := indexOf(records, id); i >= 0 {
		return records[i], model.SourceLocal, nil
	}
	return model.StudentRecord{}, model.SourceLocal, &model.Error{Kind: model.KindLocalNotFound, Op: "get", ID: id}
}

// Create returns the remote record as-is without caching it; the next
// ListAll brings the cache up to date. Locally the identifier is one past the
// highest cached identifier.
func (s *RecordService) Create(ctx context.Context, data model.StudentData) (model.StudentRecord, model.Source, error) {
	if s.online(ctx, "create") {
		rec, err := s.remote.Create(ctx, data)
		if err == nil {
			return rec, model.SourceRemote, nil
		}
		s.fallback("create", err)
	}

	var created model.StudentRecord
	err := s.mutate(ctx, "create", func(records []model.StudentRecord) ([]model.StudentRecord, error) {
		created = data.WithID(nextID(records))
		return append(records, created), nil
	})
	if err != nil {
		return model.StudentRecord{}, model.SourceLocal, err
	}
	return created, model.SourceLocal, nil
}

// Update replaces the record with the given identifier. A record missing from
// the local cache is reported as KindLocalNotFound.
func (s *RecordService) Update(ctx context.Context, id int, data model.StudentData) (model.StudentRecord, model.Source, error) {
	if s.online(ctx, "update") {
		rec, err := s.remote.Update(ctx, id, data)
		if err == nil {
			return rec, model.SourceRemote, nil
		}
		s.fallback("update", err)
	}

	updated := data.WithID(id)
	err := s.mutate(ctx, "update", func(records []model.StudentRecord) ([]model.StudentRecord, error) {
		i := indexOf(records, id)
		if i < 0 {
			return nil, &model.Error{Kind: model.KindLocalNotFound, Op: "update", ID: id}
		}
		records[i] = updated
		return records, nil
	})
	if err != nil {
		return model.StudentRecord{}, model.SourceLocal, err
	}
	return updated, model.SourceLocal, nil
}

// Delete succeeds even when the identifier is not cached.
func (s *RecordService) Delete(ctx context.Context, id int) (bool, model.Source, error) {
	if s.online(ctx, "delete") {
		err := s.remote.Delete(ctx, id)
		if err == nil {
			return true, model.SourceRemote, nil
		}
		s.fallback("delete", err)
	}

	err := s.mutate(ctx, "delete", func(records []model.StudentRecord) ([]model.StudentRecord, error) {
		kept := records[:0]
		for _, r := range records {
			if r.ID != id {
				kept = append(kept, r)
			}
		}
		return kept, nil
	})
	if err != nil {
		return false, model.SourceLocal, err
	}
	return true, model.SourceLocal, nil
}

func (s *RecordService) online(ctx context.Context, op string) bool {
	if s.remote == nil {
		return false
	}
	if s.availability.Available(ctx) {
		return true
	}
	s.logger.Info("remote unavailable, working offline", zap.String("op", op))
	return false
}

func (s *RecordService) fallback(op string, err error) {
	s.logger.Warn("remote operation failed, using local cache", zap.String("op", op), zap.Error(err))
}

func (s *RecordService) load(ctx context.Context, op string) ([]model.StudentRecord, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	records, err := s.local.Load(ctx)
	if err != nil {
		return nil, &model.Error{Kind: model.KindStorageFailure, Op: op, Err: err}
	}
	return records, nil
}

func (s *RecordService) mirror(ctx context.Context, records []model.StudentRecord) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if err := s.local.Save(ctx, records); err != nil {
		return &model.Error{Kind: model.KindStorageFailure, Op: "list", Err: err}
	}
	return nil
}

// mutate runs fn against the cached collection and persists its result.
// Errors returned by fn are passed through untouched.
func (s *RecordService) mutate(ctx context.Context, op string, fn func([]model.StudentRecord) ([]model.StudentRecord, error)) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	records, err := s.local.Load(ctx)
	if err != nil {
		return &model.Error{Kind: model.KindStorageFailure, Op: op, Err: err}
	}

	next, err := fn(records)
	if err != nil {
		return err
	}

	if err := s.local.Save(ctx, next); err != nil {
		return &model.Error{Kind: model.KindStorageFailure, Op: op, Err: err}
	}
	return nil
}

func indexOf(records []model.StudentRecord, id int) int {
	for i, r := range records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func nextID(records []model.StudentRecord) int {
	highest := 0
	for _, r := range records {
		if r.ID > highest {
			highest = r.ID
		}
	}
	return highest + 1
}
