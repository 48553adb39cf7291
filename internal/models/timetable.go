package models

import "time"

// Timetable is the output of one generation run.
type Timetable struct {
	ID           string         `db:"id" json:"id"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	FitnessScore float64        `db:"fitness_score" json:"fitness_score"`
	IsActive     bool           `db:"is_active" json:"is_active"`
	Sessions     []ClassSession `db:"-" json:"sessions"`
}

// ClassSession is a single placed hour inside a timetable.
type ClassSession struct {
	ID          string  `db:"id" json:"id"`
	TimetableID string  `db:"timetable_id" json:"timetable_id"`
	SubjectID   string  `db:"subject_id" json:"subject_id"`
	FacultyID   *string `db:"faculty_id" json:"faculty_id"`
	ClassroomID string  `db:"classroom_id" json:"classroom_id"`
	DayOfWeek   string  `db:"day_of_week" json:"day_of_week"`
	StartTime   int     `db:"start_time" json:"start_time"`
	EndTime     int     `db:"end_time" json:"end_time"`
}
