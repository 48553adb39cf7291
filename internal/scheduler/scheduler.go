// Package scheduler places weekly class sessions into a five day timetable
// grid using a randomized greedy heuristic and scores the result.
package scheduler

import (
	"errors"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// Day is a teaching weekday.
type Day string

const (
	Monday    Day = "Monday"
	Tuesday   Day = "Tuesday"
	Wednesday Day = "Wednesday"
	Thursday  Day = "Thursday"
	Friday    Day = "Friday"
)

// Weekdays lists the days sessions may be placed on, in calendar order.
var Weekdays = []Day{Monday, Tuesday, Wednesday, Thursday, Friday}

const (
	// StartHour is the first hour a session may start at.
	StartHour = 9
	// EndHour is the exclusive end of the working day.
	EndHour = 17
	// SessionLength is the fixed duration of every session in hours.
	SessionLength = 1

	// MaxAttempts bounds the slot draws spent on a single subject.
	MaxAttempts = 1000

	// InitialFitness is the score of a plan with no penalties.
	InitialFitness = 100.0
	// ShortfallPenalty is subtracted for every session that could not be placed.
	ShortfallPenalty = 10.0
	// OverloadPenalty is subtracted once per faculty-day booked above DailyLoadLimit.
	OverloadPenalty = 2.0
	// DailyLoadLimit is the number of sessions a faculty member can teach in
	// one day before the overload penalty applies.
	DailyLoadLimit = 4
)

// ErrInsufficientResources is returned when there is nothing to schedule or
// nowhere to schedule it.
var ErrInsufficientResources = errors.New("need at least one classroom and one subject to generate a timetable")

// Subject is a unit of weekly teaching demand.
type Subject struct {
	ID              string
	WeeklyFrequency int
	SemesterID      string
	FacultyID       *string
}

// Input carries the identities the generator schedules against.
type Input struct {
	Subjects   []Subject
	Faculties  []string
	Classrooms []string
	Semesters  []string
}

// Session is one placed hour of teaching.
type Session struct {
	SubjectID   string
	FacultyID   *string
	ClassroomID string
	Day         Day
	StartHour   int
	EndHour     int
}

// Shortfall reports a subject that could not reach its weekly frequency.
type Shortfall struct {
	SubjectID string `json:"subjectId"`
	Required  int    `json:"required"`
	Placed    int    `json:"placed"`
}

// Missing returns the number of sessions that could not be placed.
func (s Shortfall) Missing() int {
	return s.Required - s.Placed
}

// Overload reports a faculty-day above DailyLoadLimit.
type Overload struct {
	FacultyID string `json:"facultyId"`
	Day       Day    `json:"day"`
	Sessions  int    `json:"sessions"`
}

// Plan is the outcome of a single generation run.
type Plan struct {
	Sessions   []Session
	Shortfalls []Shortfall
	Overloads  []Overload
	Fitness    float64
	Attempts   int
}

// Generator runs the placement heuristic. A Generator is not safe for
// concurrent use because the random source is shared between runs.
type Generator struct {
	rng    *rand.Rand
	logger *zap.Logger
}

// NewGenerator builds a generator drawing from rng. A nil rng is replaced by a
// time-seeded source.
func NewGenerator(rng *rand.Rand, logger *zap.Logger) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{rng: rng, logger: logger}
}

// Generate places every subject's weekly sessions and scores the result.
func (g *Generator) Generate(in Input) (*Plan, error) {
	if len(in.Classrooms) == 0 || len(in.Subjects) == 0 {
		return nil, ErrInsufficientResources
	}

	classrooms := newRegistry(in.Classrooms)
	faculties := newRegistry(in.Faculties)
	semesters := newRegistry(in.Semesters)

	subjects := make([]Subject, len(in.Subjects))
	copy(subjects, in.Subjects)
	g.rng.Shuffle(len(subjects), func(i, j int) {
		subjects[i], subjects[j] = subjects[j], subjects[i]
	})

	plan := &Plan{Fitness: InitialFitness}
	hours := EndHour - StartHour

	for _, subject := range subjects {
		placed := 0
		attempts := 0
		for placed < subject.WeeklyFrequency && attempts < MaxAttempts {
			attempts++

			day := Weekdays[g.rng.Intn(len(Weekdays))]
			start := StartHour + g.rng.Intn(hours)
			slot := interval{start: start, end: start + SessionLength}
			room := in.Classrooms[g.rng.Intn(len(in.Classrooms))]

			if !classrooms.isFree(room, day, slot) {
				continue
			}
			if subject.FacultyID != nil && !faculties.isFree(*subject.FacultyID, day, slot) {
				continue
			}
			if !semesters.isFree(subject.SemesterID, day, slot) {
				continue
			}

			plan.Sessions = append(plan.Sessions, Session{
				SubjectID:   subject.ID,
				FacultyID:   subject.FacultyID,
				ClassroomID: room,
				Day:         day,
				StartHour:   slot.start,
				EndHour:     slot.end,
			})
			classrooms.book(room, day, slot)
			if subject.FacultyID != nil {
				faculties.book(*subject.FacultyID, day, slot)
			}
			semesters.book(subject.SemesterID, day, slot)
			placed++
		}
		plan.Attempts += attempts

		if placed < subject.WeeklyFrequency {
			shortfall := Shortfall{SubjectID: subject.ID, Required: subject.WeeklyFrequency, Placed: placed}
			plan.Shortfalls = append(plan.Shortfalls, shortfall)
			plan.Fitness -= float64(shortfall.Missing()) * ShortfallPenalty
			g.logger.Debug("subject under-placed",
				zap.String("subject_id", subject.ID),
				zap.Int("required", shortfall.Required),
				zap.Int("placed", placed),
			)
		}
	}

	seen := make(map[string]bool, len(in.Faculties))
	for _, facultyID := range in.Faculties {
		if seen[facultyID] {
			continue
		}
		seen[facultyID] = true
		for _, day := range Weekdays {
			if count := faculties.load(facultyID, day); count > DailyLoadLimit {
				plan.Overloads = append(plan.Overloads, Overload{FacultyID: facultyID, Day: day, Sessions: count})
				plan.Fitness -= OverloadPenalty
			}
		}
	}

	plan.Fitness = math.Max(0, plan.Fitness)
	return plan, nil
}
