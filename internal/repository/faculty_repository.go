package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-api/internal/models"
)

const facultyColumns = `id, name, department_id, max_hours_per_week, created_at`

// FacultyRepository persists teaching staff.
type FacultyRepository struct {
	db *sqlx.DB
}

// NewFacultyRepository constructs the repository.
func NewFacultyRepository(db *sqlx.DB) *FacultyRepository {
	return &FacultyRepository{db: db}
}

// Create inserts a faculty member.
func (r *FacultyRepository) Create(ctx context.Context, faculty *models.Faculty) error {
	if faculty.ID == "" {
		faculty.ID = uuid.NewString()
	}
	if faculty.MaxHoursPerWeek <= 0 {
		faculty.MaxHoursPerWeek = models.DefaultMaxHoursPerWeek
	}
	if faculty.CreatedAt.IsZero() {
		faculty.CreatedAt = time.Now().UTC()
	}
	const query = `
INSERT INTO faculties (id, name, department_id, max_hours_per_week, created_at)
VALUES (:id, :name, :department_id, :max_hours_per_week, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, faculty); err != nil {
		return fmt.Errorf("insert faculty: %w", err)
	}
	return nil
}

// List returns a skip/limit window ordered by creation.
func (r *FacultyRepository) List(ctx context.Context, filter models.ListFilter) ([]models.Faculty, error) {
	filter = filter.Normalize()
	query := `SELECT ` + facultyColumns + ` FROM faculties ORDER BY created_at ASC, id ASC LIMIT $1 OFFSET $2`
	var faculties []models.Faculty
	if err := r.db.SelectContext(ctx, &faculties, query, filter.Limit, filter.Skip); err != nil {
		return nil, fmt.Errorf("list faculties: %w", err)
	}
	return faculties, nil
}

// ListAll returns every faculty member.
func (r *FacultyRepository) ListAll(ctx context.Context) ([]models.Faculty, error) {
	query := `SELECT ` + facultyColumns + ` FROM faculties ORDER BY created_at ASC, id ASC`
	var faculties []models.Faculty
	if err := r.db.SelectContext(ctx, &faculties, query); err != nil {
		return nil, fmt.Errorf("list all faculties: %w", err)
	}
	return faculties, nil
}

// FindByID loads a faculty member.
func (r *FacultyRepository) FindByID(ctx context.Context, id string) (*models.Faculty, error) {
	query := `SELECT ` + facultyColumns + ` FROM faculties WHERE id = $1`
	var faculty models.Faculty
	if err := r.db.GetContext(ctx, &faculty, query, id); err != nil {
		return nil, err
	}
	return &faculty, nil
}
