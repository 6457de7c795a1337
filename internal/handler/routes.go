package handler

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// NewRouter wires the student and import endpoints behind CORS and panic
// recovery.
func NewRouter(students *StudentHandler, uploads *UploadHandler, allowedOrigins []string, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := mux.NewRouter()

	r.HandleFunc("/students", students.ListStudents).Methods(http.MethodGet)
	r.HandleFunc("/students", students.CreateStudent).Methods(http.MethodPost)
	r.HandleFunc("/students/preview", students.PreviewStudent).Methods(http.MethodPost)
	r.HandleFunc("/students/{id:[0-9]+}", students.GetStudent).Methods(http.MethodGet)
	r.HandleFunc("/students/{id:[0-9]+}", students.UpdateStudent).Methods(http.MethodPut)
	r.HandleFunc("/students/{id:[0-9]+}", students.DeleteStudent).Methods(http.MethodDelete)

	r.HandleFunc("/upload", uploads.UploadCSV).Methods(http.MethodPost)
	r.HandleFunc("/progress", uploads.GetAllProgress).Methods(http.MethodGet)
	r.HandleFunc("/progress/file", uploads.GetFileProgress).Methods(http.MethodGet)

	cors := handlers.CORS(
		handlers.AllowedOrigins(allowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
		handlers.ExposedHeaders([]string{HeaderSource, HeaderOfflineNotice}),
	)
	recovery := handlers.RecoveryHandler(handlers.RecoveryLogger(zapRecoveryLogger{logger}))

	return recovery(cors(r))
}

type zapRecoveryLogger struct {
	logger *zap.Logger
}

func (l zapRecoveryLogger) Println(v ...interface{}) {
	l.logger.Sugar().Error(v...)
}
