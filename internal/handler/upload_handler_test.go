package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"studentresults/internal/service"
)

type MockImporter struct {
	mock.Mock
}

func (m *MockImporter) ImportCSV(ctx context.Context, fileName string, r io.Reader) (*service.ProgressInfo, error) {
	args := m.Called(ctx, fileName, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ProgressInfo), args.Error(1)
}

func (m *MockImporter) GetFileProgress(fileName string) *service.ProgressInfo {
	args := m.Called(fileName)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*service.ProgressInfo)
}

func (m *MockImporter) GetAllFileProgress() []*service.ProgressInfo {
	args := m.Called()
	return args.Get(0).([]*service.ProgressInfo)
}

func TestUploadCSV(t *testing.T) {
	importer := new(MockImporter)
	importer.On("ImportCSV", mock.Anything, "test.csv", mock.Anything).Return(&service.ProgressInfo{}, nil)
	h := NewUploadHandler(importer, zap.NewNop())

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", "test.csv")
	require.NoError(t, err)
	part.Write([]byte("rollNo,name,section,marks\n1,Alice,A,95\n"))
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()

	h.UploadCSV(w, req)
	h.Wait()

	assert.Equal(t, http.StatusAccepted, w.Code)
	importer.AssertCalled(t, "ImportCSV", mock.Anything, "test.csv", mock.Anything)

	var response struct {
		Files []string `json:"files"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, []string{"test.csv"}, response.Files)
}

func TestUploadCSV_NoFiles(t *testing.T) {
	h := NewUploadHandler(new(MockImporter), zap.NewNop())

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()

	h.UploadCSV(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "No files uploaded")
}

func TestGetFileProgress(t *testing.T) {
	importer := new(MockImporter)
	importer.On("GetFileProgress", "test.csv").Return(&service.ProgressInfo{
		FileName:     "test.csv",
		TotalRecords: 100,
		Processed:    50,
		Status:       service.StatusProcessing,
	})
	importer.On("GetFileProgress", "nonexistent.csv").Return(nil)
	router := NewRouter(NewStudentHandler(new(MockStudentStore)), NewUploadHandler(importer, zap.NewNop()), []string{"*"}, zap.NewNop())

	w := serve(router, http.MethodGet, "/progress/file?fileName=test.csv", "")
	require.Equal(t, http.StatusOK, w.Code)

	var response service.ProgressInfo
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "test.csv", response.FileName)
	assert.Equal(t, 100, response.TotalRecords)
	assert.Equal(t, 50, response.Processed)

	w = serve(router, http.MethodGet, "/progress/file?fileName=nonexistent.csv", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(router, http.MethodGet, "/progress/file", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAllProgress(t *testing.T) {
	importer := new(MockImporter)
	importer.On("GetAllFileProgress").Return([]*service.ProgressInfo{
		{FileName: "file1.csv", Status: service.StatusProcessing},
		{FileName: "file2.csv", Status: service.StatusCompleted},
	})
	h := NewUploadHandler(importer, zap.NewNop())

	w := httptest.NewRecorder()
	h.GetAllProgress(w, httptest.NewRequest(http.MethodGet, "/progress", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var response []*service.ProgressInfo
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Len(t, response, 2)
	assert.Equal(t, "completed", response[1].Status)
	importer.AssertExpectations(t)
}
