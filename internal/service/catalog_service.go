package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

const (
	pqForeignKeyViolation = "23503"
	pqUniqueViolation     = "23505"
	pqInvalidText         = "22P02"
)

type departmentRepository interface {
	Create(ctx context.Context, department *models.Department) error
	List(ctx context.Context, filter models.ListFilter) ([]models.Department, error)
	FindByID(ctx context.Context, id string) (*models.Department, error)
}

type courseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	List(ctx context.Context, filter models.ListFilter) ([]models.Course, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type semesterRepository interface {
	Create(ctx context.Context, semester *models.Semester) error
	List(ctx context.Context, filter models.ListFilter) ([]models.Semester, error)
	FindByID(ctx context.Context, id string) (*models.Semester, error)
}

type facultyRepository interface {
	Create(ctx context.Context, faculty *models.Faculty) error
	List(ctx context.Context, filter models.ListFilter) ([]models.Faculty, error)
	FindByID(ctx context.Context, id string) (*models.Faculty, error)
}

type classroomRepository interface {
	Create(ctx context.Context, classroom *models.Classroom) error
	List(ctx context.Context, filter models.ListFilter) ([]models.Classroom, error)
	FindByID(ctx context.Context, id string) (*models.Classroom, error)
}

type subjectRepository interface {
	Create(ctx context.Context, subject *models.Subject) error
	List(ctx context.Context, filter models.ListFilter) ([]models.Subject, error)
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

// CatalogRepositories groups the stores behind the catalog endpoints.
type CatalogRepositories struct {
	Departments departmentRepository
	Courses     courseRepository
	Semesters   semesterRepository
	Faculties   facultyRepository
	Classrooms  classroomRepository
	Subjects    subjectRepository
}

// CatalogService manages the reference data the timetable generator consumes.
type CatalogService struct {
	repos     CatalogRepositories
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCatalogService constructs the catalog service.
func NewCatalogService(repos CatalogRepositories, validate *validator.Validate, logger *zap.Logger) *CatalogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{repos: repos, validator: validate, logger: logger}
}

// CreateDepartment registers a department.
func (s *CatalogService) CreateDepartment(ctx context.Context, req dto.CreateDepartmentRequest) (*models.Department, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.As(appErrors.ErrValidation, err, "invalid department payload")
	}
	department := &models.Department{Name: strings.TrimSpace(req.Name)}
	if err := s.repos.Departments.Create(ctx, department); err != nil {
		return nil, s.writeError(err, "department")
	}
	s.logger.Info("department created", zap.String("department_id", department.ID))
	return department, nil
}

// ListDepartments returns a window of departments.
func (s *CatalogService) ListDepartments(ctx context.Context, filter models.ListFilter) ([]models.Department, *models.Pagination, error) {
	filter = filter.Normalize()
	items, err := s.repos.Departments.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.As(appErrors.ErrInternal, err, "failed to list departments")
	}
	return items, paginate(filter, len(items)), nil
}

// GetDepartment returns a department by id.
func (s *CatalogService) GetDepartment(ctx context.Context, id string) (*models.Department, error) {
	department, err := s.repos.Departments.FindByID(ctx, id)
	if err != nil {
		return nil, readError(err, "department")
	}
	return department, nil
}

// CreateCourse registers a course.
func (s *CatalogService) CreateCourse(ctx context.Context, req dto.CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.As(appErrors.ErrValidation, err, "invalid course payload")
	}
	course := &models.Course{Name: strings.TrimSpace(req.Name), DepartmentID: req.DepartmentID}
	if err := s.repos.Courses.Create(ctx, course); err != nil {
		return nil, s.writeError(err, "course")
	}
	s.logger.Info("course created", zap.String("course_id", course.ID))
	return course, nil
}

// ListCourses returns a window of courses.
func (s *CatalogService) ListCourses(ctx context.Context, filter models.ListFilter) ([]models.Course, *models.Pagination, error) {
	filter = filter.Normalize()
	items, err := s.repos.Courses.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.As(appErrors.ErrInternal, err, "failed to list courses")
	}
	return items, paginate(filter, len(items)), nil
}

// GetCourse returns a course by id.
func (s *CatalogService) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.repos.Courses.FindByID(ctx, id)
	if err != nil {
		return nil, readError(err, "course")
	}
	return course, nil
}

// CreateSemester registers a semester.
func (s *CatalogService) CreateSemester(ctx context.Context, req dto.CreateSemesterRequest) (*models.Semester, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.As(appErrors.ErrValidation, err, "invalid semester payload")
	}
	semester := &models.Semester{Name: strings.TrimSpace(req.Name), CourseID: req.CourseID}
	if err := s.repos.Semesters.Create(ctx, semester); err != nil {
		return nil, s.writeError(err, "semester")
	}
	s.logger.Info("semester created", zap.String("semester_id", semester.ID))
	return semester, nil
}

// ListSemesters returns a window of semesters.
func (s *CatalogService) ListSemesters(ctx context.Context, filter models.ListFilter) ([]models.Semester, *models.Pagination, error) {
	filter = filter.Normalize()
	items, err := s.repos.Semesters.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.As(appErrors.ErrInternal, err, "failed to list semesters")
	}
	return items, paginate(filter, len(items)), nil
}

// GetSemester returns a semester by id.
func (s *CatalogService) GetSemester(ctx context.Context, id string) (*models.Semester, error) {
	semester, err := s.repos.Semesters.FindByID(ctx, id)
	if err != nil {
		return nil, readError(err, "semester")
	}
	return semester, nil
}

// CreateFaculty registers a faculty member.
func (s *CatalogService) CreateFaculty(ctx context.Context, req dto.CreateFacultyRequest) (*models.Faculty, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.As(appErrors.ErrValidation, err, "invalid faculty payload")
	}
	faculty := &models.Faculty{
		Name:            strings.TrimSpace(req.Name),
		DepartmentID:    req.DepartmentID,
		MaxHoursPerWeek: models.DefaultMaxHoursPerWeek,
	}
	if req.MaxHoursPerWeek != nil {
		faculty.MaxHoursPerWeek = *req.MaxHoursPerWeek
	}
	if err := s.repos.Faculties.Create(ctx, faculty); err != nil {
		return nil, s.writeError(err, "faculty")
	}
	s.logger.Info("faculty created", zap.String("faculty_id", faculty.ID))
	return faculty, nil
}

// ListFaculties returns a window of faculty members.
func (s *CatalogService) ListFaculties(ctx context.Context, filter models.ListFilter) ([]models.Faculty, *models.Pagination, error) {
	filter = filter.Normalize()
	items, err := s.repos.Faculties.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.As(appErrors.ErrInternal, err, "failed to list faculties")
	}
	return items, paginate(filter, len(items)), nil
}

// GetFaculty returns a faculty member by id.
func (s *CatalogService) GetFaculty(ctx context.Context, id string) (*models.Faculty, error) {
	faculty, err := s.repos.Faculties.FindByID(ctx, id)
	if err != nil {
		return nil, readError(err, "faculty")
	}
	return faculty, nil
}

// CreateClassroom registers a classroom. Names are unique.
func (s *CatalogService) CreateClassroom(ctx context.Context, req dto.CreateClassroomRequest) (*models.Classroom, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.As(appErrors.ErrValidation, err, "invalid classroom payload")
	}
	classroom := &models.Classroom{
		Name:     strings.TrimSpace(req.Name),
		Capacity: req.Capacity,
		RoomType: strings.TrimSpace(req.RoomType),
	}
	if err := s.repos.Classrooms.Create(ctx, classroom); err != nil {
		return nil, s.writeError(err, "classroom")
	}
	s.logger.Info("classroom created", zap.String("classroom_id", classroom.ID))
	return classroom, nil
}

// ListClassrooms returns a window of classrooms.
func (s *CatalogService) ListClassrooms(ctx context.Context, filter models.ListFilter) ([]models.Classroom, *models.Pagination, error) {
	filter = filter.Normalize()
	items, err := s.repos.Classrooms.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.As(appErrors.ErrInternal, err, "failed to list classrooms")
	}
	return items, paginate(filter, len(items)), nil
}

// GetClassroom returns a classroom by id.
func (s *CatalogService) GetClassroom(ctx context.Context, id string) (*models.Classroom, error) {
	classroom, err := s.repos.Classrooms.FindByID(ctx, id)
	if err != nil {
		return nil, readError(err, "classroom")
	}
	return classroom, nil
}

// CreateSubject registers a subject. An empty faculty id is stored as NULL.
func (s *CatalogService) CreateSubject(ctx context.Context, req dto.CreateSubjectRequest) (*models.Subject, error) {
	if req.FacultyID != nil {
		facultyID := strings.TrimSpace(*req.FacultyID)
		req.FacultyID = &facultyID
		if facultyID == "" {
			req.FacultyID = nil
		}
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.As(appErrors.ErrValidation, err, "invalid subject payload")
	}
	subject := &models.Subject{
		Name:            strings.TrimSpace(req.Name),
		Code:            strings.TrimSpace(req.Code),
		CreditHours:     req.CreditHours,
		WeeklyFrequency: req.WeeklyFrequency,
		SemesterID:      req.SemesterID,
		FacultyID:       req.FacultyID,
	}
	if err := s.repos.Subjects.Create(ctx, subject); err != nil {
		return nil, s.writeError(err, "subject")
	}
	s.logger.Info("subject created",
		zap.String("subject_id", subject.ID),
		zap.Int("weekly_frequency", subject.WeeklyFrequency),
	)
	return subject, nil
}

// ListSubjects returns a window of subjects.
func (s *CatalogService) ListSubjects(ctx context.Context, filter models.ListFilter) ([]models.Subject, *models.Pagination, error) {
	filter = filter.Normalize()
	items, err := s.repos.Subjects.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.As(appErrors.ErrInternal, err, "failed to list subjects")
	}
	return items, paginate(filter, len(items)), nil
}

// GetSubject returns a subject by id.
func (s *CatalogService) GetSubject(ctx context.Context, id string) (*models.Subject, error) {
	subject, err := s.repos.Subjects.FindByID(ctx, id)
	if err != nil {
		return nil, readError(err, "subject")
	}
	return subject, nil
}

func (s *CatalogService) writeError(err error, entity string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqForeignKeyViolation:
			return appErrors.As(appErrors.ErrValidation, err, entity+" references an unknown record")
		case pqUniqueViolation:
			return appErrors.As(appErrors.ErrConflict, err, entity+" already exists")
		case pqInvalidText:
			return appErrors.As(appErrors.ErrValidation, err, entity+" references a malformed id")
		}
	}
	s.logger.Error("catalog write failed", zap.String("entity", entity), zap.Error(err))
	return appErrors.As(appErrors.ErrInternal, err, "failed to create "+entity)
}

func readError(err error, entity string) error {
	if errors.Is(err, sql.ErrNoRows) || isMalformedID(err) {
		return appErrors.Clone(appErrors.ErrNotFound, entity+" not found")
	}
	return appErrors.As(appErrors.ErrInternal, err, "failed to load "+entity)
}

// isMalformedID reports whether Postgres rejected an id that does not parse as a UUID.
func isMalformedID(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pqInvalidText
}

func paginate(filter models.ListFilter, count int) *models.Pagination {
	return &models.Pagination{Skip: filter.Skip, Limit: filter.Limit, Count: count}
}
