package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

// catalogServiceMock embeds the interface so tests only implement what they call.
type catalogServiceMock struct {
	catalogService
	subjectReq dto.CreateSubjectRequest
	roomErr    error
	filter     models.ListFilter
	lookups    []string
}

func (m *catalogServiceMock) CreateSubject(ctx context.Context, req dto.CreateSubjectRequest) (*models.Subject, error) {
	m.subjectReq = req
	return &models.Subject{ID: "sub-1", Name: req.Name, FacultyID: req.FacultyID}, nil
}

func (m *catalogServiceMock) CreateClassroom(ctx context.Context, req dto.CreateClassroomRequest) (*models.Classroom, error) {
	if m.roomErr != nil {
		return nil, m.roomErr
	}
	return &models.Classroom{ID: "room-1", Name: req.Name}, nil
}

func (m *catalogServiceMock) ListFaculties(ctx context.Context, filter models.ListFilter) ([]models.Faculty, *models.Pagination, error) {
	m.filter = filter
	return []models.Faculty{{ID: "fac-1"}}, &models.Pagination{Skip: filter.Skip, Limit: filter.Limit, Count: 1}, nil
}

func (m *catalogServiceMock) GetSemester(ctx context.Context, id string) (*models.Semester, error) {
	m.lookups = append(m.lookups, id)
	return nil, appErrors.Clone(appErrors.ErrNotFound, "semester not found")
}

func newCatalogRouter(mock *catalogServiceMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewCatalogHandler(mock).Register(router.Group("/api/v1"))
	return router
}

func TestCatalogHandlerCreateSubject(t *testing.T) {
	mock := &catalogServiceMock{}
	router := newCatalogRouter(mock)

	body := []byte(`{"name":"Algorithms","code":"CS102","credit_hours":4,"weekly_frequency":4,"semester_id":"5b1f6a53-2c4e-4f0a-9d7e-0c1f3b8a6e21","faculty_id":"8d2e4c17-93a1-4b6f-b0e5-7f4a2c9d1e30"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/subjects", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 4, mock.subjectReq.WeeklyFrequency)
	require.NotNil(t, mock.subjectReq.FacultyID)
	assert.Equal(t, "8d2e4c17-93a1-4b6f-b0e5-7f4a2c9d1e30", *mock.subjectReq.FacultyID)
}

func TestCatalogHandlerRejectsMalformedJSON(t *testing.T) {
	router := newCatalogRouter(&catalogServiceMock{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/subjects", bytes.NewReader([]byte(`{"name":`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCatalogHandlerDuplicateClassroom(t *testing.T) {
	router := newCatalogRouter(&catalogServiceMock{roomErr: appErrors.Clone(appErrors.ErrConflict, "classroom already exists")})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/classrooms", bytes.NewReader([]byte(`{"name":"Room 101","capacity":60,"room_type":"Lecture"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCatalogHandlerListIgnoresBadWindow(t *testing.T) {
	mock := &catalogServiceMock{}
	router := newCatalogRouter(mock)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/faculties?skip=abc&limit=5", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ListFilter{Skip: 0, Limit: 5}, mock.filter)
}

func TestCatalogHandlerGetMissing(t *testing.T) {
	mock := &catalogServiceMock{}
	router := newCatalogRouter(mock)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/semesters/5b1f6a53-2c4e-4f0a-9d7e-0c1f3b8a6e21", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, []string{"5b1f6a53-2c4e-4f0a-9d7e-0c1f3b8a6e21"}, mock.lookups)
}

func TestCatalogHandlerGetMalformedID(t *testing.T) {
	mock := &catalogServiceMock{}
	router := newCatalogRouter(mock)

	for _, path := range []string{"/api/v1/semesters/missing", "/api/v1/subjects/1", "/api/v1/classrooms/not-a-uuid"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
	assert.Empty(t, mock.lookups)
}
