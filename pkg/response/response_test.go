package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

func TestJSONWritesEnvelope(t *testing.T) {
	c, w := newContext()
	JSON(c, http.StatusOK, map[string]string{"id": "tt-1"}, &models.Pagination{Skip: 0, Limit: 10, Count: 1}, map[string]interface{}{"cache": "hit"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "tt-1", body["data"].(map[string]interface{})["id"])
	assert.Equal(t, "hit", body["meta"].(map[string]interface{})["cache"])
	assert.NotNil(t, body["pagination"])
	assert.NotContains(t, body, "error")
}

func TestJSONOmitsEmptyMeta(t *testing.T) {
	c, w := newContext()
	JSON(c, http.StatusOK, "ok", nil, map[string]interface{}{})

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotContains(t, body, "meta")
	assert.NotContains(t, body, "pagination")
}

func TestErrorUsesAppErrorStatus(t *testing.T) {
	c, w := newContext()
	Error(c, appErrors.Clone(appErrors.ErrInsufficientResources, "need at least one classroom"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.Equal(t, appErrors.ErrInsufficientResources.Code, body.Error.Code)
}

func TestErrorFallsBackToInternal(t *testing.T) {
	c, w := newContext()
	Error(c, errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAttachment(t *testing.T) {
	c, w := newContext()
	Attachment(c, "timetable.csv", "text/csv", []byte("Day,Start\n"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="timetable.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, "Day,Start\n", w.Body.String())
}
