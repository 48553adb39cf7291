package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-api/internal/models"
)

const timetableColumns = `id, created_at, fitness_score, is_active`

// TimetableRepository persists generated timetables.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

func (r *TimetableRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts a timetable row, assigning an id and timestamp when missing.
func (r *TimetableRepository) Create(ctx context.Context, exec sqlx.ExtContext, timetable *models.Timetable) error {
	if timetable == nil {
		return fmt.Errorf("timetable payload is nil")
	}
	if timetable.ID == "" {
		timetable.ID = uuid.NewString()
	}
	if timetable.CreatedAt.IsZero() {
		timetable.CreatedAt = time.Now().UTC()
	}

	const query = `
INSERT INTO timetables (id, created_at, fitness_score, is_active)
VALUES (:id, :created_at, :fitness_score, :is_active)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, timetable); err != nil {
		return fmt.Errorf("insert timetable: %w", err)
	}
	return nil
}

// Finalize stores the final fitness score and creation timestamp of a run.
func (r *TimetableRepository) Finalize(ctx context.Context, exec sqlx.ExtContext, id string, score float64, createdAt time.Time) error {
	const query = `UPDATE timetables SET fitness_score = $1, created_at = $2 WHERE id = $3`
	result, err := r.exec(exec).ExecContext(ctx, query, score, createdAt, id)
	if err != nil {
		return fmt.Errorf("finalize timetable: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("timetable rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// List returns timetables oldest first.
func (r *TimetableRepository) List(ctx context.Context, filter models.ListFilter) ([]models.Timetable, error) {
	filter = filter.Normalize()
	query := `SELECT ` + timetableColumns + ` FROM timetables ORDER BY created_at ASC, id ASC LIMIT $1 OFFSET $2`
	var timetables []models.Timetable
	if err := r.db.SelectContext(ctx, &timetables, query, filter.Limit, filter.Skip); err != nil {
		return nil, fmt.Errorf("list timetables: %w", err)
	}
	return timetables, nil
}

// FindByID loads a timetable without its sessions.
func (r *TimetableRepository) FindByID(ctx context.Context, id string) (*models.Timetable, error) {
	query := `SELECT ` + timetableColumns + ` FROM timetables WHERE id = $1`
	var timetable models.Timetable
	if err := r.db.GetContext(ctx, &timetable, query, id); err != nil {
		return nil, err
	}
	return &timetable, nil
}

// FindLatest loads the most recently generated timetable.
func (r *TimetableRepository) FindLatest(ctx context.Context) (*models.Timetable, error) {
	query := `SELECT ` + timetableColumns + ` FROM timetables ORDER BY created_at DESC, id DESC LIMIT 1`
	var timetable models.Timetable
	if err := r.db.GetContext(ctx, &timetable, query); err != nil {
		return nil, err
	}
	return &timetable, nil
}

// Activate marks one timetable active and clears the flag everywhere else.
func (r *TimetableRepository) Activate(ctx context.Context, id string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin activate timetable: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `UPDATE timetables SET is_active = FALSE WHERE is_active AND id <> $1`, id); err != nil {
		return fmt.Errorf("deactivate timetables: %w", err)
	}
	result, err := tx.ExecContext(ctx, `UPDATE timetables SET is_active = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("activate timetable: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("timetable rows affected: %w", err)
	}
	if affected == 0 {
		err = sql.ErrNoRows
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit activate timetable: %w", err)
	}
	return nil
}

// Delete removes a timetable; its sessions go with it through ON DELETE CASCADE.
func (r *TimetableRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM timetables WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete timetable: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("timetable rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
