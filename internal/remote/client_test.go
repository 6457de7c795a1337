package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studentresults/internal/model"
)

// fakeAPI is an in-memory students resource.
type fakeAPI struct {
	mu      sync.Mutex
	records []model.StudentRecord
	nextID  int
}

func newFakeAPI(t *testing.T, seed ...model.StudentRecord) *httptest.Server {
	api := &fakeAPI{records: seed, nextID: 100}
	r := mux.NewRouter()
	r.HandleFunc("/students", func(w http.ResponseWriter, _ *http.Request) {}).Methods(http.MethodHead)
	r.HandleFunc("/students", api.list).Methods(http.MethodGet)
	r.HandleFunc("/students", api.create).Methods(http.MethodPost)
	r.HandleFunc("/students/{id}", api.get).Methods(http.MethodGet)
	r.HandleFunc("/students/{id}", api.update).Methods(http.MethodPut)
	r.HandleFunc("/students/{id}", api.delete).Methods(http.MethodDelete)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func (a *fakeAPI) list(w http.ResponseWriter, _ *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	json.NewEncoder(w).Encode(a.records)
}

func (a *fakeAPI) get(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, rec := range a.records {
		if rec.ID == id {
			json.NewEncoder(w).Encode(rec)
			return
		}
	}
	http.NotFound(w, r)
}

func (a *fakeAPI) create(w http.ResponseWriter, r *http.Request) {
	var data model.StudentData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	rec := data.WithID(a.nextID)
	a.nextID++
	a.records = append(a.records, rec)
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(rec)
}

func (a *fakeAPI) update(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	var data model.StudentData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, rec := range a.records {
		if rec.ID == id {
			a.records[i] = data.WithID(id)
			json.NewEncoder(w).Encode(a.records[i])
			return
		}
	}
	http.NotFound(w, r)
}

func (a *fakeAPI) delete(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, rec := range a.records {
		if rec.ID == id {
			a.records = append(a.records[:i], a.records[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	http.NotFound(w, r)
}

func TestClientCRUD(t *testing.T) {
	srv := newFakeAPI(t, model.StudentRecord{ID: 1, RollNo: "1", Name: "Alice", Section: "A", Marks: 90, Grade: "A+"})
	c := NewClient(WithBaseURL(srv.URL + "/students/"))
	ctx := context.Background()

	require.NoError(t, c.Probe(ctx))

	list, err := c.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	created, err := c.Create(ctx, model.StudentData{RollNo: "2", Name: "Bob", Section: "B", Marks: 55, Grade: "C"})
	require.NoError(t, err)
	assert.Equal(t, 100, created.ID)

	got, err := c.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	updated, err := c.Update(ctx, created.ID, model.StudentData{RollNo: "2", Name: "Bob", Section: "B", Marks: 65, Grade: "B"})
	require.NoError(t, err)
	assert.Equal(t, 65.0, updated.Marks)
	assert.Equal(t, created.ID, updated.ID)

	require.NoError(t, c.Delete(ctx, created.ID))

	list, err = c.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestClientNotFoundIsRemoteFailure(t *testing.T) {
	srv := newFakeAPI(t)
	c := NewClient(WithBaseURL(srv.URL + "/students"))

	_, err := c.Get(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.KindRemoteFailure))

	var e *model.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "get", e.Op)
	assert.Equal(t, 42, e.ID)
}

func TestProbeFailures(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	err := NewClient(WithBaseURL(down.URL)).Probe(context.Background())
	assert.True(t, model.IsKind(err, model.KindProbeFailure))

	closed := httptest.NewServer(http.NotFoundHandler())
	url := closed.URL
	closed.Close()

	err = NewClient(WithBaseURL(url)).Probe(context.Background())
	assert.True(t, model.IsKind(err, model.KindProbeFailure))
}

func TestNewOptionsDefaults(t *testing.T) {
	o := NewOptions()
	assert.Equal(t, DefaultBaseURL, o.BaseURL)
	assert.Nil(t, o.HTTPClient)

	hc := &http.Client{}
	o = NewOptions(WithHTTPClient(hc), WithBaseURL("http://api/students"))
	assert.Same(t, hc, o.HTTPClient)
	assert.Equal(t, "http://api/students", o.BaseURL)
}
