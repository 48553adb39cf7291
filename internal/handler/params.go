package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/response"
)

// listFilterFromQuery reads skip and limit, ignoring values that do not parse.
func listFilterFromQuery(c *gin.Context) models.ListFilter {
	filter := models.ListFilter{Limit: models.DefaultListLimit}
	if skip, err := strconv.Atoi(c.DefaultQuery("skip", "0")); err == nil {
		filter.Skip = skip
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(models.DefaultListLimit))); err == nil {
		filter.Limit = limit
	}
	return filter.Normalize()
}

// pathID returns the :id parameter. A value that is not a UUID cannot name a
// stored record, so it is answered with 404 and ok is false.
func pathID(c *gin.Context, entity string) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, entity+" not found"))
		return "", false
	}
	return id, true
}
