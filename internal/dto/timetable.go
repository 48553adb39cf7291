package dto

import "github.com/noah-isme/timetable-api/internal/scheduler"

// GenerateTimetableResponse summarises a generation run.
type GenerateTimetableResponse struct {
	TimetableID    string                `json:"timetableId"`
	FitnessScore   float64               `json:"fitnessScore"`
	SessionsPlaced int                   `json:"sessionsPlaced"`
	Shortfalls     []scheduler.Shortfall `json:"shortfalls"`
	Overloads      []scheduler.Overload  `json:"overloads"`
}
