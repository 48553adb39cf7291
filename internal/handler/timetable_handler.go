package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/middleware"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/service"
	"github.com/noah-isme/timetable-api/pkg/response"
)

type timetableService interface {
	Generate(ctx context.Context) (*dto.GenerateTimetableResponse, error)
	List(ctx context.Context, filter models.ListFilter) ([]models.Timetable, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Timetable, bool, error)
	Latest(ctx context.Context) (*models.Timetable, bool, error)
	Activate(ctx context.Context, id string) (*models.Timetable, error)
	Delete(ctx context.Context, id string) error
	Export(ctx context.Context, id, format string) (*service.ExportFile, error)
}

// TimetableHandler exposes timetable generation and retrieval.
type TimetableHandler struct {
	service timetableService
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(service timetableService) *TimetableHandler {
	return &TimetableHandler{service: service}
}

// Register mounts the timetable routes on the group.
func (h *TimetableHandler) Register(group *gin.RouterGroup) {
	group.POST("/generate", h.Generate)
	group.GET("/timetables", h.List)
	group.GET("/timetables/latest", h.Latest)
	group.GET("/timetables/:id", h.Get)
	group.POST("/timetables/:id/activate", h.Activate)
	group.DELETE("/timetables/:id", h.Delete)
	group.GET("/timetables/:id/export", h.Export)
}

// Generate godoc
// @Summary Generate a timetable
// @Description Places every subject's weekly sessions over the whole catalog and stores the result.
// @Tags Timetables
// @Produce json
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	result, err := h.service.Generate(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// List godoc
// @Summary List timetables
// @Tags Timetables
// @Produce json
// @Param skip query int false "Rows to skip"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} response.Envelope
// @Router /timetables [get]
func (h *TimetableHandler) List(c *gin.Context) {
	items, pagination, err := h.service.List(c.Request.Context(), listFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Latest godoc
// @Summary Most recently generated timetable
// @Tags Timetables
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/latest [get]
func (h *TimetableHandler) Latest(c *gin.Context) {
	start := time.Now()
	timetable, cacheHit, err := h.service.Latest(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respondCached(c, timetable, cacheHit, start)
}

// Get godoc
// @Summary Get timetable
// @Tags Timetables
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/{id} [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	start := time.Now()
	id, ok := pathID(c, "timetable")
	if !ok {
		return
	}
	timetable, cacheHit, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respondCached(c, timetable, cacheHit, start)
}

// Activate godoc
// @Summary Mark timetable as the active one
// @Tags Timetables
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/{id}/activate [post]
func (h *TimetableHandler) Activate(c *gin.Context) {
	id, ok := pathID(c, "timetable")
	if !ok {
		return
	}
	timetable, err := h.service.Activate(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetable, nil)
}

// Delete godoc
// @Summary Delete timetable and its sessions
// @Tags Timetables
// @Param id path string true "Timetable ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /timetables/{id} [delete]
func (h *TimetableHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "timetable")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export timetable sessions
// @Tags Timetables
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Timetable ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/{id}/export [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	id, ok := pathID(c, "timetable")
	if !ok {
		return
	}
	file, err := h.service.Export(c.Request.Context(), id, c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

func (h *TimetableHandler) respondCached(c *gin.Context, timetable *models.Timetable, cacheHit bool, start time.Time) {
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, timetable, nil, meta)
}
