package models

import "time"

// Subject is taught WeeklyFrequency one-hour sessions per week to a semester.
type Subject struct {
	ID              string    `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	Code            string    `db:"code" json:"code"`
	CreditHours     int       `db:"credit_hours" json:"credit_hours"`
	WeeklyFrequency int       `db:"weekly_frequency" json:"weekly_frequency"`
	SemesterID      string    `db:"semester_id" json:"semester_id"`
	FacultyID       *string   `db:"faculty_id" json:"faculty_id"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
