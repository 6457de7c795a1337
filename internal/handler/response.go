package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"studentresults/internal/model"
)

const (
	HeaderSource        = "X-Data-Source"
	HeaderOfflineNotice = "X-Offline-Notice"
	OfflineNotice       = "working offline"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func setSource(w http.ResponseWriter, source model.Source) {
	w.Header().Set(HeaderSource, string(source))
	if source == model.SourceLocal {
		w.Header().Set(HeaderOfflineNotice, OfflineNotice)
	}
}

// writeError maps a store error to a status code.
func writeError(w http.ResponseWriter, err error) {
	var e *model.Error
	if !errors.As(err, &e) {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	switch e.Kind {
	case model.KindValidation:
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{"errors": e.Fields})
	case model.KindLocalNotFound:
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": "student not found"})
	default:
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{"error": e.Error()})
	}
}
