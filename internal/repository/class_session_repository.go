package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-api/internal/models"
)

const sessionColumns = `id, timetable_id, subject_id, faculty_id, classroom_id, day_of_week, start_time, end_time`

// dayOrder sorts weekday names in calendar order inside SQL.
const dayOrder = `CASE day_of_week WHEN 'Monday' THEN 1 WHEN 'Tuesday' THEN 2 WHEN 'Wednesday' THEN 3 WHEN 'Thursday' THEN 4 WHEN 'Friday' THEN 5 ELSE 6 END`

// ClassSessionRepository manages sessions of generated timetables.
type ClassSessionRepository struct {
	db *sqlx.DB
}

// NewClassSessionRepository builds repository.
func NewClassSessionRepository(db *sqlx.DB) *ClassSessionRepository {
	return &ClassSessionRepository{db: db}
}

func (r *ClassSessionRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// InsertBatch stores sessions one row at a time inside the caller's transaction.
func (r *ClassSessionRepository) InsertBatch(ctx context.Context, exec sqlx.ExtContext, sessions []models.ClassSession) error {
	if len(sessions) == 0 {
		return nil
	}
	target := r.exec(exec)

	const query = `
INSERT INTO class_sessions (id, timetable_id, subject_id, faculty_id, classroom_id, day_of_week, start_time, end_time)
VALUES (:id, :timetable_id, :subject_id, :faculty_id, :classroom_id, :day_of_week, :start_time, :end_time)`

	for i := range sessions {
		session := &sessions[i]
		if session.ID == "" {
			session.ID = uuid.NewString()
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, session); err != nil {
			return fmt.Errorf("insert class session: %w", err)
		}
	}
	return nil
}

// ListByTimetable returns sessions ordered by day then start hour.
func (r *ClassSessionRepository) ListByTimetable(ctx context.Context, timetableID string) ([]models.ClassSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM class_sessions WHERE timetable_id = $1 ORDER BY ` + dayOrder + `, start_time ASC, classroom_id ASC`
	var sessions []models.ClassSession
	if err := r.db.SelectContext(ctx, &sessions, query, timetableID); err != nil {
		return nil, fmt.Errorf("list class sessions: %w", err)
	}
	return sessions, nil
}

// ListByTimetables returns sessions of several timetables keyed by timetable id.
func (r *ClassSessionRepository) ListByTimetables(ctx context.Context, timetableIDs []string) (map[string][]models.ClassSession, error) {
	result := make(map[string][]models.ClassSession, len(timetableIDs))
	if len(timetableIDs) == 0 {
		return result, nil
	}
	query, args, err := sqlx.In(`SELECT `+sessionColumns+` FROM class_sessions WHERE timetable_id IN (?) ORDER BY timetable_id, `+dayOrder+`, start_time ASC, classroom_id ASC`, timetableIDs)
	if err != nil {
		return nil, fmt.Errorf("build class sessions query: %w", err)
	}
	var sessions []models.ClassSession
	if err := r.db.SelectContext(ctx, &sessions, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list class sessions: %w", err)
	}
	for _, session := range sessions {
		result[session.TimetableID] = append(result[session.TimetableID], session)
	}
	return result, nil
}
