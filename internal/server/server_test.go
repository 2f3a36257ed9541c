package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tutorials/internal/metrics"
	"tutorials/internal/model"
	"tutorials/internal/service"
	"tutorials/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestServer returns a server backed by a MemoryStore seeded with
// Spring Boot Tutorial (id 1, published) and Java Tutorial (id 2).
func newTestServer(t *testing.T) (*Server, *store.MemoryStore) {
	t.Helper()

	st := store.NewMemoryStore()
	ctx := context.Background()
	spring := model.Tutorial{Title: "Spring Boot Tutorial", Description: "Spring Boot Description", Published: true}
	java := model.Tutorial{Title: "Java Tutorial", Description: "Java Description"}
	require.NoError(t, st.Save(ctx, &spring))
	require.NoError(t, st.Save(ctx, &java))

	svc := service.New(st, zap.NewNop())
	return NewServer(svc, metrics.New(), zap.NewNop(), Options{}), st
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeTutorials(t *testing.T, rec *httptest.ResponseRecorder) []model.Tutorial {
	t.Helper()
	var out []model.Tutorial
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func decodeTutorial(t *testing.T, rec *httptest.ResponseRecorder) model.Tutorial {
	t.Helper()
	var out model.Tutorial
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestServer_CreateTutorial(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/tutorials",
		`{"id":1,"title":"Spring Boot @WebMvcTest","description":"Description","published":true}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	got := decodeTutorial(t, rec)
	assert.Equal(t, int64(3), got.ID, "id comes from the store, not the body")
	assert.Equal(t, "Spring Boot @WebMvcTest", got.Title)
	assert.False(t, got.Published)
}

func TestServer_CreateTutorial_BadBody(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/tutorials", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_GetTutorial(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/tutorials/1", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"id":1,"title":"Spring Boot Tutorial","description":"Spring Boot Description","published":true}`,
		rec.Body.String())
}

func TestServer_GetTutorial_NotFound(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/tutorials/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_GetTutorial_InvalidID(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/tutorials/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_ListTutorials(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/tutorials", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeTutorials(t, rec), 2)
}

func TestServer_ListTutorials_WithFilter(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/tutorials?title=Spring", "")

	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeTutorials(t, rec)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)
}

func TestServer_ListTutorials_NoContentWhenFilterMatchesNothing(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/tutorials?title=BezKoder", "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestServer_ListTutorials_NoContentWhenEmpty(t *testing.T) {
	s, st := newTestServer(t)
	require.NoError(t, st.DeleteAll(context.Background()))

	rec := do(t, s, http.MethodGet, "/api/tutorials", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestServer_ListPublished(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/tutorials/published", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeTutorials(t, rec)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)

	rec = do(t, s, http.MethodGet, "/api/tutorials/published?published=false", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got = decodeTutorials(t, rec)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)

	rec = do(t, s, http.MethodGet, "/api/tutorials/published?published=maybe", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_UpdateTutorial(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPut, "/api/tutorials/2",
		`{"title":"Updated","description":"Updated","published":true}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.Tutorial{ID: 2, Title: "Updated", Description: "Updated", Published: true}, decodeTutorial(t, rec))
}

func TestServer_UpdateTutorial_NotFound(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPut, "/api/tutorials/99", `{"title":"Updated"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_DeleteTutorial(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodDelete, "/api/tutorials/1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodDelete, "/api/tutorials/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_DeleteAllTutorials(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodDelete, "/api/tutorials", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/tutorials", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestServer_HealthAndMetrics(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	do(t, s, http.MethodGet, "/api/tutorials/1", "")
	rec = do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/api/tutorials/{id}"`)
}

// failingService errors on every call.
type failingService struct{}

var errStore = errors.New("connection refused")

func (failingService) List(context.Context) ([]model.Tutorial, error) { return nil, errStore }
func (failingService) ListByTitle(context.Context, string) ([]model.Tutorial, error) {
	return nil, errStore
}
func (failingService) ListByPublished(context.Context, bool) ([]model.Tutorial, error) {
	return nil, errStore
}
func (failingService) Get(context.Context, int64) (model.Tutorial, bool, error) {
	return model.Tutorial{}, false, errStore
}
func (failingService) Create(context.Context, model.TutorialInput) (model.Tutorial, error) {
	return model.Tutorial{}, errStore
}
func (failingService) Update(context.Context, int64, model.TutorialInput) (model.Tutorial, bool, error) {
	return model.Tutorial{}, false, errStore
}
func (failingService) Delete(context.Context, int64) bool { return false }
func (failingService) DeleteAll(context.Context) error    { return errStore }

func TestServer_StoreFailuresAre500(t *testing.T) {
	s := NewServer(failingService{}, nil, zap.NewNop(), Options{})

	cases := []struct {
		method, target, body string
	}{
		{http.MethodGet, "/api/tutorials", ""},
		{http.MethodGet, "/api/tutorials?title=x", ""},
		{http.MethodGet, "/api/tutorials/published", ""},
		{http.MethodGet, "/api/tutorials/1", ""},
		{http.MethodPost, "/api/tutorials", `{"title":"x"}`},
		{http.MethodPut, "/api/tutorials/1", `{"title":"x"}`},
		{http.MethodDelete, "/api/tutorials", ""},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.target, func(t *testing.T) {
			rec := do(t, s, tc.method, tc.target, tc.body)
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.NotContains(t, rec.Body.String(), errStore.Error())
		})
	}
}
