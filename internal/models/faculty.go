package models

import "time"

// DefaultMaxHoursPerWeek applies when a faculty member is created without a limit.
const DefaultMaxHoursPerWeek = 40

// Faculty is a teaching staff member.
type Faculty struct {
	ID              string    `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	DepartmentID    string    `db:"department_id" json:"department_id"`
	MaxHoursPerWeek int       `db:"max_hours_per_week" json:"max_hours_per_week"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
