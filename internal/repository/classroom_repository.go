package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-api/internal/models"
)

const classroomColumns = `id, name, capacity, room_type, created_at`

// ClassroomRepository persists rooms.
type ClassroomRepository struct {
	db *sqlx.DB
}

// NewClassroomRepository constructs the repository.
func NewClassroomRepository(db *sqlx.DB) *ClassroomRepository {
	return &ClassroomRepository{db: db}
}

// Create inserts a classroom. Names are unique.
func (r *ClassroomRepository) Create(ctx context.Context, classroom *models.Classroom) error {
	if classroom.ID == "" {
		classroom.ID = uuid.NewString()
	}
	if classroom.CreatedAt.IsZero() {
		classroom.CreatedAt = time.Now().UTC()
	}
	const query = `
INSERT INTO classrooms (id, name, capacity, room_type, created_at)
VALUES (:id, :name, :capacity, :room_type, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, classroom); err != nil {
		return fmt.Errorf("insert classroom: %w", err)
	}
	return nil
}

// List returns a skip/limit window ordered by creation.
func (r *ClassroomRepository) List(ctx context.Context, filter models.ListFilter) ([]models.Classroom, error) {
	filter = filter.Normalize()
	query := `SELECT ` + classroomColumns + ` FROM classrooms ORDER BY created_at ASC, id ASC LIMIT $1 OFFSET $2`
	var classrooms []models.Classroom
	if err := r.db.SelectContext(ctx, &classrooms, query, filter.Limit, filter.Skip); err != nil {
		return nil, fmt.Errorf("list classrooms: %w", err)
	}
	return classrooms, nil
}

// ListAll returns every classroom.
func (r *ClassroomRepository) ListAll(ctx context.Context) ([]models.Classroom, error) {
	query := `SELECT ` + classroomColumns + ` FROM classrooms ORDER BY created_at ASC, id ASC`
	var classrooms []models.Classroom
	if err := r.db.SelectContext(ctx, &classrooms, query); err != nil {
		return nil, fmt.Errorf("list all classrooms: %w", err)
	}
	return classrooms, nil
}

// FindByID loads a classroom.
func (r *ClassroomRepository) FindByID(ctx context.Context, id string) (*models.Classroom, error) {
	query := `SELECT ` + classroomColumns + ` FROM classrooms WHERE id = $1`
	var classroom models.Classroom
	if err := r.db.GetContext(ctx, &classroom, query, id); err != nil {
		return nil, err
	}
	return &classroom, nil
}
