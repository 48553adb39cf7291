package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-api/internal/models"
)

const subjectColumns = `id, name, code, credit_hours, weekly_frequency, semester_id, faculty_id, created_at`

// SubjectRepository persists subjects.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new repository instance.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// Create inserts a subject.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	if subject.CreatedAt.IsZero() {
		subject.CreatedAt = time.Now().UTC()
	}
	const query = `
INSERT INTO subjects (id, name, code, credit_hours, weekly_frequency, semester_id, faculty_id, created_at)
VALUES (:id, :name, :code, :credit_hours, :weekly_frequency, :semester_id, :faculty_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("insert subject: %w", err)
	}
	return nil
}

// List returns a skip/limit window ordered by creation.
func (r *SubjectRepository) List(ctx context.Context, filter models.ListFilter) ([]models.Subject, error) {
	filter = filter.Normalize()
	query := `SELECT ` + subjectColumns + ` FROM subjects ORDER BY created_at ASC, id ASC LIMIT $1 OFFSET $2`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, filter.Limit, filter.Skip); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// ListAll returns every subject.
func (r *SubjectRepository) ListAll(ctx context.Context) ([]models.Subject, error) {
	query := `SELECT ` + subjectColumns + ` FROM subjects ORDER BY created_at ASC, id ASC`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query); err != nil {
		return nil, fmt.Errorf("list all subjects: %w", err)
	}
	return subjects, nil
}

// FindByID returns a subject by id.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	query := `SELECT ` + subjectColumns + ` FROM subjects WHERE id = $1`
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		return nil, err
	}
	return &subject, nil
}
