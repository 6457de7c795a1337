package handler

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"studentresults/internal/service"
)

const maxUploadSize = 100 << 20 // 100MB

// Importer runs CSV imports and reports their progress.
type Importer interface {
	ImportCSV(ctx context.Context, fileName string, r io.Reader) (*service.ProgressInfo, error)
	GetFileProgress(fileName string) *service.ProgressInfo
	GetAllFileProgress() []*service.ProgressInfo
}

type UploadHandler struct {
	importer Importer
	logger   *zap.Logger
	wg       sync.WaitGroup
}

func NewUploadHandler(importer Importer, logger *zap.Logger) *UploadHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadHandler{importer: importer, logger: logger}
}

// UploadCSV accepts multipart "files" and imports each in the background.
func (h *UploadHandler) UploadCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "File too large or bad request", http.StatusRequestEntityTooLarge)
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		http.Error(w, "No files uploaded", http.StatusBadRequest)
		return
	}

	fileNames := make([]string, 0, len(files))
	for _, fh := range files {
		file, err := fh.Open()
		if err != nil {
			h.logger.Warn("failed to open uploaded file", zap.String("file", fh.Filename), zap.Error(err))
			continue
		}
		content, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			h.logger.Warn("failed to read uploaded file", zap.String("file", fh.Filename), zap.Error(err))
			continue
		}

		name := filepath.Base(fh.Filename)
		fileNames = append(fileNames, name)

		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			if _, err := h.importer.ImportCSV(context.Background(), name, bytes.NewReader(content)); err != nil {
				h.logger.Error("import failed", zap.String("file", name), zap.Error(err))
			}
		}()
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"message": "Files uploaded successfully and processing started",
		"files":   fileNames,
	})
}

// Wait blocks until every background import has finished.
func (h *UploadHandler) Wait() {
	h.wg.Wait()
}

// GetFileProgress returns the progress for a specific file
func (h *UploadHandler) GetFileProgress(w http.ResponseWriter, r *http.Request) {
	fileName := r.URL.Query().Get("fileName")
	if fileName == "" {
		http.Error(w, "fileName parameter is required", http.StatusBadRequest)
		return
	}

	progress := h.importer.GetFileProgress(filepath.Base(fileName))
	if progress == nil {
		http.Error(w, "File not found or not being processed", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, progress)
}

func (h *UploadHandler) GetAllProgress(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.importer.GetAllFileProgress())
}
