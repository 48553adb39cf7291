package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/response"
)

type catalogService interface {
	CreateDepartment(ctx context.Context, req dto.CreateDepartmentRequest) (*models.Department, error)
	ListDepartments(ctx context.Context, filter models.ListFilter) ([]models.Department, *models.Pagination, error)
	GetDepartment(ctx context.Context, id string) (*models.Department, error)
	CreateCourse(ctx context.Context, req dto.CreateCourseRequest) (*models.Course, error)
	ListCourses(ctx context.Context, filter models.ListFilter) ([]models.Course, *models.Pagination, error)
	GetCourse(ctx context.Context, id string) (*models.Course, error)
	CreateSemester(ctx context.Context, req dto.CreateSemesterRequest) (*models.Semester, error)
	ListSemesters(ctx context.Context, filter models.ListFilter) ([]models.Semester, *models.Pagination, error)
	GetSemester(ctx context.Context, id string) (*models.Semester, error)
	CreateFaculty(ctx context.Context, req dto.CreateFacultyRequest) (*models.Faculty, error)
	ListFaculties(ctx context.Context, filter models.ListFilter) ([]models.Faculty, *models.Pagination, error)
	GetFaculty(ctx context.Context, id string) (*models.Faculty, error)
	CreateClassroom(ctx context.Context, req dto.CreateClassroomRequest) (*models.Classroom, error)
	ListClassrooms(ctx context.Context, filter models.ListFilter) ([]models.Classroom, *models.Pagination, error)
	GetClassroom(ctx context.Context, id string) (*models.Classroom, error)
	CreateSubject(ctx context.Context, req dto.CreateSubjectRequest) (*models.Subject, error)
	ListSubjects(ctx context.Context, filter models.ListFilter) ([]models.Subject, *models.Pagination, error)
	GetSubject(ctx context.Context, id string) (*models.Subject, error)
}

// CatalogHandler exposes the reference data endpoints.
type CatalogHandler struct {
	service catalogService
}

// NewCatalogHandler constructs the handler.
func NewCatalogHandler(service catalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// Register mounts the catalog routes on the group.
func (h *CatalogHandler) Register(group *gin.RouterGroup) {
	group.POST("/departments", h.CreateDepartment)
	group.GET("/departments", h.ListDepartments)
	group.GET("/departments/:id", h.GetDepartment)
	group.POST("/courses", h.CreateCourse)
	group.GET("/courses", h.ListCourses)
	group.GET("/courses/:id", h.GetCourse)
	group.POST("/semesters", h.CreateSemester)
	group.GET("/semesters", h.ListSemesters)
	group.GET("/semesters/:id", h.GetSemester)
	group.POST("/faculties", h.CreateFaculty)
	group.GET("/faculties", h.ListFaculties)
	group.GET("/faculties/:id", h.GetFaculty)
	group.POST("/classrooms", h.CreateClassroom)
	group.GET("/classrooms", h.ListClassrooms)
	group.GET("/classrooms/:id", h.GetClassroom)
	group.POST("/subjects", h.CreateSubject)
	group.GET("/subjects", h.ListSubjects)
	group.GET("/subjects/:id", h.GetSubject)
}

func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.As(appErrors.ErrValidation, err, "invalid payload"))
		return false
	}
	return true
}

// CreateDepartment godoc
// @Summary Create department
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body dto.CreateDepartmentRequest true "Department payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /departments [post]
func (h *CatalogHandler) CreateDepartment(c *gin.Context) {
	var req dto.CreateDepartmentRequest
	if !bindJSON(c, &req) {
		return
	}
	department, err := h.service.CreateDepartment(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, department)
}

// ListDepartments godoc
// @Summary List departments
// @Tags Catalog
// @Produce json
// @Param skip query int false "Rows to skip"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} response.Envelope
// @Router /departments [get]
func (h *CatalogHandler) ListDepartments(c *gin.Context) {
	items, pagination, err := h.service.ListDepartments(c.Request.Context(), listFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// GetDepartment godoc
// @Summary Get department
// @Tags Catalog
// @Produce json
// @Param id path string true "Department ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /departments/{id} [get]
func (h *CatalogHandler) GetDepartment(c *gin.Context) {
	id, ok := pathID(c, "department")
	if !ok {
		return
	}
	department, err := h.service.GetDepartment(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, department, nil)
}

// CreateCourse godoc
// @Summary Create course
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body dto.CreateCourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /courses [post]
func (h *CatalogHandler) CreateCourse(c *gin.Context) {
	var req dto.CreateCourseRequest
	if !bindJSON(c, &req) {
		return
	}
	course, err := h.service.CreateCourse(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// ListCourses godoc
// @Summary List courses
// @Tags Catalog
// @Produce json
// @Param skip query int false "Rows to skip"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CatalogHandler) ListCourses(c *gin.Context) {
	items, pagination, err := h.service.ListCourses(c.Request.Context(), listFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// GetCourse godoc
// @Summary Get course
// @Tags Catalog
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CatalogHandler) GetCourse(c *gin.Context) {
	id, ok := pathID(c, "course")
	if !ok {
		return
	}
	course, err := h.service.GetCourse(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// CreateSemester godoc
// @Summary Create semester
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body dto.CreateSemesterRequest true "Semester payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /semesters [post]
func (h *CatalogHandler) CreateSemester(c *gin.Context) {
	var req dto.CreateSemesterRequest
	if !bindJSON(c, &req) {
		return
	}
	semester, err := h.service.CreateSemester(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, semester)
}

// ListSemesters godoc
// @Summary List semesters
// @Tags Catalog
// @Produce json
// @Param skip query int false "Rows to skip"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} response.Envelope
// @Router /semesters [get]
func (h *CatalogHandler) ListSemesters(c *gin.Context) {
	items, pagination, err := h.service.ListSemesters(c.Request.Context(), listFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// GetSemester godoc
// @Summary Get semester
// @Tags Catalog
// @Produce json
// @Param id path string true "Semester ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /semesters/{id} [get]
func (h *CatalogHandler) GetSemester(c *gin.Context) {
	id, ok := pathID(c, "semester")
	if !ok {
		return
	}
	semester, err := h.service.GetSemester(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, semester, nil)
}

// CreateFaculty godoc
// @Summary Create faculty member
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body dto.CreateFacultyRequest true "Faculty payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /faculties [post]
func (h *CatalogHandler) CreateFaculty(c *gin.Context) {
	var req dto.CreateFacultyRequest
	if !bindJSON(c, &req) {
		return
	}
	faculty, err := h.service.CreateFaculty(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, faculty)
}

// ListFaculties godoc
// @Summary List faculty members
// @Tags Catalog
// @Produce json
// @Param skip query int false "Rows to skip"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} response.Envelope
// @Router /faculties [get]
func (h *CatalogHandler) ListFaculties(c *gin.Context) {
	items, pagination, err := h.service.ListFaculties(c.Request.Context(), listFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// GetFaculty godoc
// @Summary Get faculty member
// @Tags Catalog
// @Produce json
// @Param id path string true "Faculty ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /faculties/{id} [get]
func (h *CatalogHandler) GetFaculty(c *gin.Context) {
	id, ok := pathID(c, "faculty")
	if !ok {
		return
	}
	faculty, err := h.service.GetFaculty(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, faculty, nil)
}

// CreateClassroom godoc
// @Summary Create classroom
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body dto.CreateClassroomRequest true "Classroom payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /classrooms [post]
func (h *CatalogHandler) CreateClassroom(c *gin.Context) {
	var req dto.CreateClassroomRequest
	if !bindJSON(c, &req) {
		return
	}
	classroom, err := h.service.CreateClassroom(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, classroom)
}

// ListClassrooms godoc
// @Summary List classrooms
// @Tags Catalog
// @Produce json
// @Param skip query int false "Rows to skip"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} response.Envelope
// @Router /classrooms [get]
func (h *CatalogHandler) ListClassrooms(c *gin.Context) {
	items, pagination, err := h.service.ListClassrooms(c.Request.Context(), listFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// GetClassroom godoc
// @Summary Get classroom
// @Tags Catalog
// @Produce json
// @Param id path string true "Classroom ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classrooms/{id} [get]
func (h *CatalogHandler) GetClassroom(c *gin.Context) {
	id, ok := pathID(c, "classroom")
	if !ok {
		return
	}
	classroom, err := h.service.GetClassroom(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classroom, nil)
}

// CreateSubject godoc
// @Summary Create subject
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body dto.CreateSubjectRequest true "Subject payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /subjects [post]
func (h *CatalogHandler) CreateSubject(c *gin.Context) {
	var req dto.CreateSubjectRequest
	if !bindJSON(c, &req) {
		return
	}
	subject, err := h.service.CreateSubject(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, subject)
}

// ListSubjects godoc
// @Summary List subjects
// @Tags Catalog
// @Produce json
// @Param skip query int false "Rows to skip"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} response.Envelope
// @Router /subjects [get]
func (h *CatalogHandler) ListSubjects(c *gin.Context) {
	items, pagination, err := h.service.ListSubjects(c.Request.Context(), listFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// GetSubject godoc
// @Summary Get subject
// @Tags Catalog
// @Produce json
// @Param id path string true "Subject ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /subjects/{id} [get]
func (h *CatalogHandler) GetSubject(c *gin.Context) {
	id, ok := pathID(c, "subject")
	if !ok {
		return
	}
	subject, err := h.service.GetSubject(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subject, nil)
}
