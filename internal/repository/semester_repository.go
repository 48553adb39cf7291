package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-api/internal/models"
)

const semesterColumns = `id, name, course_id, created_at`

// SemesterRepository persists semesters (student cohorts).
type SemesterRepository struct {
	db *sqlx.DB
}

// NewSemesterRepository constructs the repository.
func NewSemesterRepository(db *sqlx.DB) *SemesterRepository {
	return &SemesterRepository{db: db}
}

// Create inserts a semester.
func (r *SemesterRepository) Create(ctx context.Context, semester *models.Semester) error {
	if semester.ID == "" {
		semester.ID = uuid.NewString()
	}
	if semester.CreatedAt.IsZero() {
		semester.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO semesters (id, name, course_id, created_at) VALUES (:id, :name, :course_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, semester); err != nil {
		return fmt.Errorf("insert semester: %w", err)
	}
	return nil
}

// List returns a skip/limit window ordered by creation.
func (r *SemesterRepository) List(ctx context.Context, filter models.ListFilter) ([]models.Semester, error) {
	filter = filter.Normalize()
	query := `SELECT ` + semesterColumns + ` FROM semesters ORDER BY created_at ASC, id ASC LIMIT $1 OFFSET $2`
	var semesters []models.Semester
	if err := r.db.SelectContext(ctx, &semesters, query, filter.Limit, filter.Skip); err != nil {
		return nil, fmt.Errorf("list semesters: %w", err)
	}
	return semesters, nil
}

// ListAll returns every semester.
func (r *SemesterRepository) ListAll(ctx context.Context) ([]models.Semester, error) {
	query := `SELECT ` + semesterColumns + ` FROM semesters ORDER BY created_at ASC, id ASC`
	var semesters []models.Semester
	if err := r.db.SelectContext(ctx, &semesters, query); err != nil {
		return nil, fmt.Errorf("list all semesters: %w", err)
	}
	return semesters, nil
}

// FindByID loads a semester.
func (r *SemesterRepository) FindByID(ctx context.Context, id string) (*models.Semester, error) {
	query := `SELECT ` + semesterColumns + ` FROM semesters WHERE id = $1`
	var semester models.Semester
	if err := r.db.GetContext(ctx, &semester, query, id); err != nil {
		return nil, err
	}
	return &semester, nil
}
