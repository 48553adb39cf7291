package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/dto"
	internalmiddleware "github.com/noah-isme/timetable-api/internal/middleware"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/scheduler"
	"github.com/noah-isme/timetable-api/internal/service"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

const timetableID = "3f0c9a4e-7b2d-4c61-8e5a-1d9b6f2a7c48"

type timetableServiceMock struct {
	generateErr error
	latest      *models.Timetable
	cacheHit    bool
	filter      models.ListFilter
	exportFmt   string
	deleted     string
	calls       int
}

func (m *timetableServiceMock) Generate(ctx context.Context) (*dto.GenerateTimetableResponse, error) {
	if m.generateErr != nil {
		return nil, m.generateErr
	}
	return &dto.GenerateTimetableResponse{
		TimetableID:    timetableID,
		FitnessScore:   90,
		SessionsPlaced: 9,
		Shortfalls:     []scheduler.Shortfall{{SubjectID: "sub-1", Required: 3, Placed: 2}},
		Overloads:      []scheduler.Overload{},
	}, nil
}

func (m *timetableServiceMock) List(ctx context.Context, filter models.ListFilter) ([]models.Timetable, *models.Pagination, error) {
	m.filter = filter
	return []models.Timetable{{ID: "tt-1"}}, &models.Pagination{Skip: filter.Skip, Limit: filter.Limit, Count: 1}, nil
}

func (m *timetableServiceMock) Get(ctx context.Context, id string) (*models.Timetable, bool, error) {
	m.calls++
	if id != timetableID {
		return nil, false, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
	}
	return &models.Timetable{ID: id}, m.cacheHit, nil
}

func (m *timetableServiceMock) Latest(ctx context.Context) (*models.Timetable, bool, error) {
	if m.latest == nil {
		return nil, false, appErrors.Clone(appErrors.ErrNotFound, "No timetables found")
	}
	return m.latest, m.cacheHit, nil
}

func (m *timetableServiceMock) Activate(ctx context.Context, id string) (*models.Timetable, error) {
	m.calls++
	return &models.Timetable{ID: id, IsActive: true}, nil
}

func (m *timetableServiceMock) Delete(ctx context.Context, id string) error {
	m.calls++
	m.deleted = id
	return nil
}

func (m *timetableServiceMock) Export(ctx context.Context, id, format string) (*service.ExportFile, error) {
	m.calls++
	m.exportFmt = format
	return &service.ExportFile{Filename: "timetable-" + id + ".csv", ContentType: "text/csv", Body: []byte("Day,Start\n")}, nil
}

func newTimetableRouter(mock *timetableServiceMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(internalmiddleware.WithResponseMeta())
	NewTimetableHandler(mock).Register(router.Group("/api/v1"))
	return router
}

func decodeEnvelope(t *testing.T, body []byte) map[string]interface{} {
	t.Helper()
	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &envelope))
	return envelope
}

func TestTimetableHandlerGenerateCreated(t *testing.T) {
	router := newTimetableRouter(&timetableServiceMock{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/generate", nil))

	require.Equal(t, http.StatusCreated, w.Code)
	data := decodeEnvelope(t, w.Body.Bytes())["data"].(map[string]interface{})
	assert.Equal(t, timetableID, data["timetableId"])
	assert.Equal(t, 90.0, data["fitnessScore"])
	assert.Len(t, data["shortfalls"], 1)
}

func TestTimetableHandlerGenerateInsufficientResources(t *testing.T) {
	mock := &timetableServiceMock{
		generateErr: appErrors.As(appErrors.ErrInsufficientResources, scheduler.ErrInsufficientResources, scheduler.ErrInsufficientResources.Error()),
	}
	router := newTimetableRouter(mock)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/generate", nil))

	require.Equal(t, http.StatusBadRequest, w.Code)
	errBody := decodeEnvelope(t, w.Body.Bytes())["error"].(map[string]interface{})
	assert.Equal(t, "INSUFFICIENT_RESOURCES", errBody["code"])
}

func TestTimetableHandlerLatestNotFound(t *testing.T) {
	router := newTimetableRouter(&timetableServiceMock{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/timetables/latest", nil))

	require.Equal(t, http.StatusNotFound, w.Code)
	errBody := decodeEnvelope(t, w.Body.Bytes())["error"].(map[string]interface{})
	assert.Equal(t, "No timetables found", errBody["message"])
}

func TestTimetableHandlerLatestReportsCacheHit(t *testing.T) {
	router := newTimetableRouter(&timetableServiceMock{latest: &models.Timetable{ID: "tt-9"}, cacheHit: true})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/timetables/latest", nil))

	require.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w.Body.Bytes())
	assert.Equal(t, "tt-9", envelope["data"].(map[string]interface{})["id"])
	assert.Equal(t, true, envelope["meta"].(map[string]interface{})["cache_hit"])
}

func TestTimetableHandlerGetNotFound(t *testing.T) {
	mock := &timetableServiceMock{}
	router := newTimetableRouter(mock)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/timetables/9e8d7c6b-5a4f-4e3d-8c2b-1a0f9e8d7c6b", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 1, mock.calls)
}

func TestTimetableHandlerMalformedIDSkipsService(t *testing.T) {
	mock := &timetableServiceMock{}
	router := newTimetableRouter(mock)

	requests := []*http.Request{
		httptest.NewRequest(http.MethodGet, "/api/v1/timetables/abc", nil),
		httptest.NewRequest(http.MethodPost, "/api/v1/timetables/tt-1/activate", nil),
		httptest.NewRequest(http.MethodDelete, "/api/v1/timetables/42", nil),
		httptest.NewRequest(http.MethodGet, "/api/v1/timetables/tt-1/export", nil),
	}
	for _, req := range requests {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusNotFound, w.Code, req.URL.Path)
		errBody := decodeEnvelope(t, w.Body.Bytes())["error"].(map[string]interface{})
		assert.Equal(t, "timetable not found", errBody["message"])
	}
	assert.Zero(t, mock.calls)
	assert.Empty(t, mock.deleted)
}

func TestTimetableHandlerListParsesWindow(t *testing.T) {
	mock := &timetableServiceMock{}
	router := newTimetableRouter(mock)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/timetables?skip=10&limit=250", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ListFilter{Skip: 10, Limit: models.DefaultListLimit}, mock.filter)
	pagination := decodeEnvelope(t, w.Body.Bytes())["pagination"].(map[string]interface{})
	assert.Equal(t, 10.0, pagination["skip"])
}

func TestTimetableHandlerActivateAndDelete(t *testing.T) {
	mock := &timetableServiceMock{}
	router := newTimetableRouter(mock)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/timetables/"+timetableID+"/activate", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeEnvelope(t, w.Body.Bytes())["data"].(map[string]interface{})["is_active"])

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/timetables/"+timetableID, nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, timetableID, mock.deleted)
}

func TestTimetableHandlerExportStreamsFile(t *testing.T) {
	mock := &timetableServiceMock{}
	router := newTimetableRouter(mock)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/timetables/"+timetableID+"/export", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", mock.exportFmt)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="timetable-`+timetableID+`.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "Day,Start\n", w.Body.String())
}
