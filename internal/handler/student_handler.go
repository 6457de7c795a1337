package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"studentresults/internal/model"
	"studentresults/internal/rules"
	"studentresults/internal/service"
)

// StudentStore is the record store the handlers drive.
type StudentStore interface {
	ListAll(ctx context.Context) ([]model.StudentRecord, model.Source, error)
	GetByID(ctx context.Context, id int) (model.StudentRecord, model.Source, error)
	Create(ctx context.Context, data model.StudentData) (model.StudentRecord, model.Source, error)
	Update(ctx context.Context, id int, data model.StudentData) (model.StudentRecord, model.Source, error)
	Delete(ctx context.Context, id int) (bool, model.Source, error)
}

type StudentHandler struct {
	store StudentStore
}

func NewStudentHandler(store StudentStore) *StudentHandler {
	return &StudentHandler{store: store}
}

// formPayload accepts marks as either a JSON number or a string.
type formPayload struct {
	RollNo  string      `json:"rollNo"`
	Name    string      `json:"name"`
	Section string      `json:"section"`
	Marks   interface{} `json:"marks"`
	Grade   string      `json:"grade"`
}

func (p formPayload) form() rules.Form {
	f := rules.Form{RollNo: p.RollNo, Name: p.Name, Section: p.Section, Grade: p.Grade}
	switch m := p.Marks.(type) {
	case float64:
		f.Marks = strconv.FormatFloat(m, 'f', -1, 64)
	case string:
		f.Marks = m
	case nil:
	default:
		f.Marks = fmt.Sprint(m)
	}
	return f
}

type studentView struct {
	Data    model.StudentRecord `json:"data"`
	Passing bool                `json:"passing"`
	Tier    rules.Tier          `json:"tier"`
	Source  model.Source        `json:"source"`
}

func newStudentView(rec model.StudentRecord, source model.Source) studentView {
	return studentView{
		Data:    rec,
		Passing: rules.IsPassing(rec.Marks),
		Tier:    rules.PerformanceTier(rec.Marks),
		Source:  source,
	}
}

func (h *StudentHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	sortBy := query.Get("sort_by")
	if sortBy != "" && !service.IsSortField(sortBy) {
		http.Error(w, "unknown sort_by field", http.StatusBadRequest)
		return
	}
	sortOrder := query.Get("sort_order")
	if sortOrder == "" {
		sortOrder = "asc"
	}

	students, source, err := h.store.ListAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	filtered := service.ApplyQuery(students, service.ListQuery{
		Search:    query.Get("search"),
		Section:   query.Get("section"),
		Grade:     query.Get("grade"),
		SortBy:    sortBy,
		SortOrder: sortOrder,
	})

	response := map[string]interface{}{
		"data":    filtered,
		"total":   len(students),
		"summary": service.Summarize(students),
		"source":  source,
	}

	setSource(w, source)
	writeJSON(w, http.StatusOK, response)
}

func (h *StudentHandler) GetStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := studentID(w, r)
	if !ok {
		return
	}

	rec, source, err := h.store.GetByID(r.Context(), id)
	setSource(w, source)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newStudentView(rec, source))
}

func (h *StudentHandler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	data, ok := decodeForm(w, r)
	if !ok {
		return
	}

	rec, source, err := h.store.Create(r.Context(), data)
	setSource(w, source)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newStudentView(rec, source))
}

func (h *StudentHandler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := studentID(w, r)
	if !ok {
		return
	}
	data, ok := decodeForm(w, r)
	if !ok {
		return
	}

	rec, source, err := h.store.Update(r.Context(), id, data)
	setSource(w, source)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newStudentView(rec, source))
}

func (h *StudentHandler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := studentID(w, r)
	if !ok {
		return
	}

	deleted, source, err := h.store.Delete(r.Context(), id)
	setSource(w, source)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": deleted, "source": source})
}

// PreviewStudent evaluates a form without storing it.
func (h *StudentHandler) PreviewStudent(w http.ResponseWriter, r *http.Request) {
	var p formPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	f := rules.AutoGrade(p.form())
	response := map[string]interface{}{
		"grade":  f.Grade,
		"errors": rules.Validate(f),
	}
	if data, err := rules.Check(f); err == nil {
		response["passing"] = rules.IsPassing(data.Marks)
		response["tier"] = rules.PerformanceTier(data.Marks)
	}

	writeJSON(w, http.StatusOK, response)
}

func decodeForm(w http.ResponseWriter, r *http.Request) (model.StudentData, bool) {
	var p formPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return model.StudentData{}, false
	}

	data, err := rules.Check(p.form())
	if err != nil {
		writeError(w, err)
		return model.StudentData{}, false
	}
	return data, true
}

func studentID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id < 1 {
		http.Error(w, "invalid student id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
