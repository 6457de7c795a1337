package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"studentresults/internal/model"
	"studentresults/internal/rules"
)

const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusError      = "error"
)

// ErrImportInProgress is returned when a file of the same name is still being imported.
var ErrImportInProgress = errors.New("import already in progress")

// Creator is the part of RecordService an import needs.
type Creator interface {
	Create(ctx context.Context, data model.StudentData) (model.StudentRecord, model.Source, error)
}

// RowError explains why one CSV row was not imported. Row is the 1-based line
// number, counting the header.
type RowError struct {
	Row     int               `json:"row"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type ProgressInfo struct {
	FileName     string     `json:"fileName"`
	TotalRecords int        `json:"totalRecords"`
	Processed    int        `json:"processed"`
	Imported     int        `json:"imported"`
	Failed       int        `json:"failed"`
	Offline      int        `json:"offline"`
	Status       string     `json:"status"`
	Error        string     `json:"error,omitempty"`
	RowErrors    []RowError `json:"rowErrors,omitempty"`
	StartTime    time.Time  `json:"startTime"`
	EndTime      time.Time  `json:"endTime"`
}

func (p *ProgressInfo) clone() *ProgressInfo {
	c := *p
	c.RowErrors = append([]RowError(nil), p.RowErrors...)
	return &c
}

// ImportService bulk-creates records from CSV files through a Creator.
type ImportService struct {
	store   Creator
	workers int
	logger  *zap.Logger

	fileProgressMap  map[string]*ProgressInfo
	fileProgressLock sync.RWMutex
}

func NewImportService(store Creator, workers int, logger *zap.Logger) *ImportService {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{
		store:           store,
		workers:         workers,
		logger:          logger,
		fileProgressMap: make(map[string]*ProgressInfo),
	}
}

var columnAliases = map[string]string{
	"rollno":  "rollNo",
	"roll_no": "rollNo",
	"roll":    "rollNo",
	"name":    "name",
	"section": "section",
	"marks":   "marks",
	"grade":   "grade",
}

// ImportCSV reads a header row then one record per line. Rows failing
// validation or creation are recorded and skipped; the rest are created.
func (s *ImportService) ImportCSV(ctx context.Context, fileName string, r io.Reader) (*ProgressInfo, error) {
	startTime := time.Now()

	s.fileProgressLock.Lock()
	if p, ok := s.fileProgressMap[fileName]; ok && p.Status == StatusProcessing {
		s.fileProgressLock.Unlock()
		return nil, fmt.Errorf("%s: %w", fileName, ErrImportInProgress)
	}
	s.fileProgressMap[fileName] = &ProgressInfo{
		FileName:  fileName,
		Status:    StatusProcessing,
		StartTime: startTime,
	}
	s.fileProgressLock.Unlock()

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty file")
		}
		return s.fail(fileName, fmt.Errorf("read header: %w", err))
	}
	columns, err := mapColumns(header)
	if err != nil {
		return s.fail(fileName, err)
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return s.fail(fileName, fmt.Errorf("read rows: %w", err))
	}

	s.withProgress(fileName, func(p *ProgressInfo) {
		p.TotalRecords = len(rows)
	})
	s.logger.Info("importing records", zap.String("file", fileName), zap.Int("rows", len(rows)), zap.Int("workers", s.workers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, row := range rows {
		if gctx.Err() != nil {
			break
		}
		line, row := i+2, row
		g.Go(func() error {
			s.importRow(gctx, fileName, line, formFromRow(columns, row))
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return s.fail(fileName, err)
	}

	var result *ProgressInfo
	s.withProgress(fileName, func(p *ProgressInfo) {
		p.Status = StatusCompleted
		p.EndTime = time.Now()
		sort.Slice(p.RowErrors, func(i, j int) bool { return p.RowErrors[i].Row < p.RowErrors[j].Row })
		result = p.clone()
	})

	s.logger.Info("import completed",
		zap.String("file", fileName),
		zap.Int("imported", result.Imported),
		zap.Int("failed", result.Failed),
		zap.Duration("elapsed", time.Since(startTime)))

	return result, nil
}

func (s *ImportService) importRow(ctx context.Context, fileName string, line int, form rules.Form) {
	data, err := rules.Check(form)
	if err != nil {
		s.rowFailed(fileName, line, err)
		return
	}

	_, source, err := s.store.Create(ctx, data)
	if err != nil {
		s.rowFailed(fileName, line, err)
		return
	}

	s.withProgress(fileName, func(p *ProgressInfo) {
		p.Processed++
		p.Imported++
		if source == model.SourceLocal {
			p.Offline++
		}
	})
}

func (s *ImportService) rowFailed(fileName string, line int, err error) {
	rowErr := RowError{Row: line, Message: err.Error()}
	var e *model.Error
	if errors.As(err, &e) && e.Kind == model.KindValidation {
		rowErr.Message = "invalid record"
		rowErr.Fields = e.Fields
	}

	s.withProgress(fileName, func(p *ProgressInfo) {
		p.Processed++
		p.Failed++
		p.RowErrors = append(p.RowErrors, rowErr)
	})
}

func (s *ImportService) fail(fileName string, err error) (*ProgressInfo, error) {
	var result *ProgressInfo
	s.withProgress(fileName, func(p *ProgressInfo) {
		p.Status = StatusError
		p.Error = err.Error()
		p.EndTime = time.Now()
		result = p.clone()
	})
	s.logger.Error("import failed", zap.String("file", fileName), zap.Error(err))
	return result, err
}

func (s *ImportService) withProgress(fileName string, fn func(*ProgressInfo)) {
	s.fileProgressLock.Lock()
	defer s.fileProgressLock.Unlock()

	if progress, exists := s.fileProgressMap[fileName]; exists {
		fn(progress)
	}
}

// GetFileProgress returns a copy of the progress for fileName, or nil.
func (s *ImportService) GetFileProgress(fileName string) *ProgressInfo {
	s.fileProgressLock.RLock()
	defer s.fileProgressLock.RUnlock()

	if progress, exists := s.fileProgressMap[fileName]; exists {
		return progress.clone()
	}
	return nil
}

// GetAllFileProgress returns copies ordered by file name.
func (s *ImportService) GetAllFileProgress() []*ProgressInfo {
	s.fileProgressLock.RLock()
	defer s.fileProgressLock.RUnlock()

	result := make([]*ProgressInfo, 0, len(s.fileProgressMap))
	for _, progress := range s.fileProgressMap {
		result = append(result, progress.clone())
	}
	sort.Slice(result, func(i, j int) bool { return result[i].FileName < result[j].FileName })
	return result
}

func mapColumns(header []string) (map[string]int, error) {
	columns := map[string]int{}
	for i, h := range header {
		if field, ok := columnAliases[strings.ToLower(strings.TrimSpace(h))]; ok {
			columns[field] = i
		}
	}

	var missing []string
	for _, field := range []string{"rollNo", "name", "section", "marks"} {
		if _, ok := columns[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return columns, nil
}

func formFromRow(columns map[string]int, row []string) rules.Form {
	cell := func(field string) string {
		i, ok := columns[field]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}
	return rules.Form{
		RollNo:  cell("rollNo"),
		Name:    cell("name"),
		Section: cell("section"),
		Marks:   cell("marks"),
		Grade:   cell("grade"),
	}
}
