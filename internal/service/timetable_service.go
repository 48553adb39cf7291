package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/scheduler"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/export"
	"github.com/noah-isme/timetable-api/pkg/middleware/requestid"
)

type timetableRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, timetable *models.Timetable) error
	Finalize(ctx context.Context, exec sqlx.ExtContext, id string, score float64, createdAt time.Time) error
	List(ctx context.Context, filter models.ListFilter) ([]models.Timetable, error)
	FindByID(ctx context.Context, id string) (*models.Timetable, error)
	FindLatest(ctx context.Context) (*models.Timetable, error)
	Activate(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type classSessionRepository interface {
	InsertBatch(ctx context.Context, exec sqlx.ExtContext, sessions []models.ClassSession) error
	ListByTimetable(ctx context.Context, timetableID string) ([]models.ClassSession, error)
	ListByTimetables(ctx context.Context, timetableIDs []string) (map[string][]models.ClassSession, error)
}

type subjectLister interface {
	ListAll(ctx context.Context) ([]models.Subject, error)
}

type facultyLister interface {
	ListAll(ctx context.Context) ([]models.Faculty, error)
}

type classroomLister interface {
	ListAll(ctx context.Context) ([]models.Classroom, error)
}

type semesterLister interface {
	ListAll(ctx context.Context) ([]models.Semester, error)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// TimetableSources are the catalog readers a generation run draws from.
type TimetableSources struct {
	Subjects   subjectLister
	Faculties  facultyLister
	Classrooms classroomLister
	Semesters  semesterLister
}

// TimetableServiceConfig tunes generation, caching and exports.
type TimetableServiceConfig struct {
	// Seed fixes the generator's random source; zero seeds from the clock.
	Seed        int64
	CacheTTL    time.Duration
	ExportTitle string
}

// ExportFile is a rendered timetable ready to be streamed to a client.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// TimetableService generates, stores and serves timetables.
type TimetableService struct {
	timetables timetableRepository
	sessions   classSessionRepository
	sources    TimetableSources
	tx         txProvider
	cache      *CacheService
	metrics    *MetricsService
	logger     *zap.Logger
	cfg        TimetableServiceConfig

	mu        sync.Mutex
	generator *scheduler.Generator
}

// NewTimetableService wires the timetable workflow.
func NewTimetableService(
	timetables timetableRepository,
	sessions classSessionRepository,
	sources TimetableSources,
	tx txProvider,
	cache *CacheService,
	metrics *MetricsService,
	logger *zap.Logger,
	cfg TimetableServiceConfig,
) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ExportTitle == "" {
		cfg.ExportTitle = "Weekly Timetable"
	}
	var rng *rand.Rand
	if cfg.Seed != 0 {
		rng = rand.New(rand.NewSource(cfg.Seed))
	}
	return &TimetableService{
		timetables: timetables,
		sessions:   sessions,
		sources:    sources,
		tx:         tx,
		cache:      cache,
		metrics:    metrics,
		logger:     logger,
		cfg:        cfg,
		generator:  scheduler.NewGenerator(rng, logger.Named("scheduler")),
	}
}

// Generate builds a timetable from the whole catalog and persists it with
// its sessions in a single transaction.
func (s *TimetableService) Generate(ctx context.Context) (*dto.GenerateTimetableResponse, error) {
	start := time.Now()

	input, err := s.loadInput(ctx)
	if err != nil {
		s.metrics.RecordGeneration(GenerationFailed, time.Since(start), 0, 0, 0, 0)
		return nil, err
	}

	plan, err := s.plan(input)
	if err != nil {
		if errors.Is(err, scheduler.ErrInsufficientResources) {
			s.metrics.RecordGeneration(GenerationInsufficient, time.Since(start), 0, 0, 0, 0)
			s.logger.Warn("timetable generation rejected",
				zap.String("request_id", requestid.FromContext(ctx)),
				zap.Int("subjects", len(input.Subjects)),
				zap.Int("classrooms", len(input.Classrooms)),
			)
			return nil, appErrors.As(appErrors.ErrInsufficientResources, err, err.Error())
		}
		s.metrics.RecordGeneration(GenerationFailed, time.Since(start), 0, 0, 0, 0)
		return nil, appErrors.As(appErrors.ErrInternal, err, "failed to generate timetable")
	}

	timetable, err := s.persist(ctx, plan)
	if err != nil {
		s.metrics.RecordGeneration(GenerationFailed, time.Since(start), 0, 0, 0, 0)
		return nil, err
	}

	s.invalidate(ctx)

	missing := 0
	for _, shortfall := range plan.Shortfalls {
		missing += shortfall.Missing()
	}
	duration := time.Since(start)
	s.metrics.RecordGeneration(GenerationSucceeded, duration, plan.Fitness, len(plan.Sessions), missing, len(plan.Overloads))
	s.logger.Info("timetable generated",
		zap.String("request_id", requestid.FromContext(ctx)),
		zap.String("timetable_id", timetable.ID),
		zap.Float64("fitness_score", plan.Fitness),
		zap.Int("sessions", len(plan.Sessions)),
		zap.Int("unplaced", missing),
		zap.Int("overloads", len(plan.Overloads)),
		zap.Int("attempts", plan.Attempts),
		zap.Duration("duration", duration),
	)

	shortfalls := plan.Shortfalls
	if shortfalls == nil {
		shortfalls = []scheduler.Shortfall{}
	}
	overloads := plan.Overloads
	if overloads == nil {
		overloads = []scheduler.Overload{}
	}
	return &dto.GenerateTimetableResponse{
		TimetableID:    timetable.ID,
		FitnessScore:   timetable.FitnessScore,
		SessionsPlaced: len(plan.Sessions),
		Shortfalls:     shortfalls,
		Overloads:      overloads,
	}, nil
}

func (s *TimetableService) loadInput(ctx context.Context) (scheduler.Input, error) {
	var input scheduler.Input
	loadStart := time.Now()
	defer func() { s.metrics.ObserveDBQuery("load_catalog", time.Since(loadStart)) }()

	subjects, err := s.sources.Subjects.ListAll(ctx)
	if err != nil {
		return input, appErrors.As(appErrors.ErrInternal, err, "failed to load subjects")
	}
	faculties, err := s.sources.Faculties.ListAll(ctx)
	if err != nil {
		return input, appErrors.As(appErrors.ErrInternal, err, "failed to load faculties")
	}
	classrooms, err := s.sources.Classrooms.ListAll(ctx)
	if err != nil {
		return input, appErrors.As(appErrors.ErrInternal, err, "failed to load classrooms")
	}
	semesters, err := s.sources.Semesters.ListAll(ctx)
	if err != nil {
		return input, appErrors.As(appErrors.ErrInternal, err, "failed to load semesters")
	}

	input.Subjects = make([]scheduler.Subject, 0, len(subjects))
	for _, subject := range subjects {
		input.Subjects = append(input.Subjects, scheduler.Subject{
			ID:              subject.ID,
			WeeklyFrequency: subject.WeeklyFrequency,
			SemesterID:      subject.SemesterID,
			FacultyID:       subject.FacultyID,
		})
	}
	for _, faculty := range faculties {
		input.Faculties = append(input.Faculties, faculty.ID)
	}
	for _, classroom := range classrooms {
		input.Classrooms = append(input.Classrooms, classroom.ID)
	}
	for _, semester := range semesters {
		input.Semesters = append(input.Semesters, semester.ID)
	}
	return input, nil
}

func (s *TimetableService) persist(ctx context.Context, plan *scheduler.Plan) (timetable *models.Timetable, err error) {
	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	persistStart := time.Now()
	defer func() { s.metrics.ObserveDBQuery("persist_timetable", time.Since(persistStart)) }()

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.As(appErrors.ErrInternal, err, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	timetable = &models.Timetable{FitnessScore: scheduler.InitialFitness}
	if err = s.timetables.Create(ctx, tx, timetable); err != nil {
		err = appErrors.As(appErrors.ErrInternal, err, "failed to create timetable")
		return nil, err
	}

	rows := make([]models.ClassSession, 0, len(plan.Sessions))
	for _, session := range plan.Sessions {
		rows = append(rows, models.ClassSession{
			TimetableID: timetable.ID,
			SubjectID:   session.SubjectID,
			FacultyID:   session.FacultyID,
			ClassroomID: session.ClassroomID,
			DayOfWeek:   string(session.Day),
			StartTime:   session.StartHour,
			EndTime:     session.EndHour,
		})
	}
	if err = s.sessions.InsertBatch(ctx, tx, rows); err != nil {
		err = appErrors.As(appErrors.ErrInternal, err, "failed to persist class sessions")
		return nil, err
	}

	createdAt := time.Now().UTC()
	if err = s.timetables.Finalize(ctx, tx, timetable.ID, plan.Fitness, createdAt); err != nil {
		err = appErrors.As(appErrors.ErrInternal, err, "failed to record fitness score")
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.As(appErrors.ErrInternal, err, "failed to commit timetable")
		return nil, err
	}

	timetable.FitnessScore = plan.Fitness
	timetable.CreatedAt = createdAt
	timetable.Sessions = rows
	return timetable, nil
}

// List returns a window of timetables with their sessions.
func (s *TimetableService) List(ctx context.Context, filter models.ListFilter) ([]models.Timetable, *models.Pagination, error) {
	filter = filter.Normalize()
	timetables, err := s.timetables.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.As(appErrors.ErrInternal, err, "failed to list timetables")
	}
	if len(timetables) > 0 {
		ids := make([]string, 0, len(timetables))
		for _, timetable := range timetables {
			ids = append(ids, timetable.ID)
		}
		grouped, err := s.sessions.ListByTimetables(ctx, ids)
		if err != nil {
			return nil, nil, appErrors.As(appErrors.ErrInternal, err, "failed to load class sessions")
		}
		for i := range timetables {
			timetables[i].Sessions = nonNilSessions(grouped[timetables[i].ID])
		}
	}
	if timetables == nil {
		timetables = []models.Timetable{}
	}
	return timetables, paginate(filter, len(timetables)), nil
}

// Get returns a timetable with sessions. The boolean reports a cache hit.
func (s *TimetableService) Get(ctx context.Context, id string) (*models.Timetable, bool, error) {
	return Remember(ctx, s.cache, timetableCacheKey(id), s.cfg.CacheTTL, func(ctx context.Context) (*models.Timetable, error) {
		return s.load(ctx, id)
	})
}

// plan runs the generator. The lock covers only the shared random source, so
// catalog reads and persistence of concurrent requests overlap.
func (s *TimetableService) plan(input scheduler.Input) (*scheduler.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generator.Generate(input)
}

// Latest returns the most recently generated timetable. The boolean reports a cache hit.
func (s *TimetableService) Latest(ctx context.Context) (*models.Timetable, bool, error) {
	return Remember(ctx, s.cache, latestTimetableKey, s.cfg.CacheTTL, s.loadLatest)
}

func (s *TimetableService) loadLatest(ctx context.Context) (*models.Timetable, error) {
	timetable, err := s.timetables.FindLatest(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "No timetables found")
		}
		return nil, appErrors.As(appErrors.ErrInternal, err, "failed to load latest timetable")
	}
	if err := s.attachSessions(ctx, timetable); err != nil {
		return nil, err
	}
	return timetable, nil
}

// Activate marks the timetable as the single active one.
func (s *TimetableService) Activate(ctx context.Context, id string) (*models.Timetable, error) {
	if err := s.timetables.Activate(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isMalformedID(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.As(appErrors.ErrInternal, err, "failed to activate timetable")
	}
	s.invalidate(ctx)
	s.logger.Info("timetable activated", zap.String("timetable_id", id))
	return s.load(ctx, id)
}

// Delete removes a timetable and its sessions.
func (s *TimetableService) Delete(ctx context.Context, id string) error {
	if err := s.timetables.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isMalformedID(err) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return appErrors.As(appErrors.ErrInternal, err, "failed to delete timetable")
	}
	s.invalidate(ctx)
	s.logger.Info("timetable deleted", zap.String("timetable_id", id))
	return nil
}

// Export renders a timetable's sessions as CSV or PDF.
func (s *TimetableService) Export(ctx context.Context, id, rawFormat string) (*ExportFile, error) {
	format, err := export.ParseFormat(rawFormat)
	if err != nil {
		return nil, appErrors.As(appErrors.ErrValidation, err, err.Error())
	}
	timetable, _, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	table, err := s.exportTable(ctx, timetable)
	if err != nil {
		return nil, err
	}
	body, err := export.Render(format, table)
	if err != nil {
		return nil, appErrors.As(appErrors.ErrInternal, err, "failed to render timetable export")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("timetable-%s.%s", timetable.ID, format),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}

func (s *TimetableService) exportTable(ctx context.Context, timetable *models.Timetable) (export.Table, error) {
	subjects, err := s.sources.Subjects.ListAll(ctx)
	if err != nil {
		return export.Table{}, appErrors.As(appErrors.ErrInternal, err, "failed to load subjects")
	}
	faculties, err := s.sources.Faculties.ListAll(ctx)
	if err != nil {
		return export.Table{}, appErrors.As(appErrors.ErrInternal, err, "failed to load faculties")
	}
	classrooms, err := s.sources.Classrooms.ListAll(ctx)
	if err != nil {
		return export.Table{}, appErrors.As(appErrors.ErrInternal, err, "failed to load classrooms")
	}

	subjectNames := make(map[string]string, len(subjects))
	for _, subject := range subjects {
		subjectNames[subject.ID] = fmt.Sprintf("%s (%s)", subject.Name, subject.Code)
	}
	facultyNames := make(map[string]string, len(faculties))
	for _, faculty := range faculties {
		facultyNames[faculty.ID] = faculty.Name
	}
	roomNames := make(map[string]string, len(classrooms))
	for _, classroom := range classrooms {
		roomNames[classroom.ID] = classroom.Name
	}

	table := export.Table{
		Title:    s.cfg.ExportTitle,
		Subtitle: fmt.Sprintf("Generated %s, fitness %.1f", timetable.CreatedAt.UTC().Format(time.RFC3339), timetable.FitnessScore),
		Headers:  []string{"Day", "Start", "End", "Subject", "Faculty", "Classroom"},
		Rows:     make([][]string, 0, len(timetable.Sessions)),
	}
	for _, session := range timetable.Sessions {
		faculty := "-"
		if session.FacultyID != nil {
			faculty = lookupName(facultyNames, *session.FacultyID)
		}
		table.Rows = append(table.Rows, []string{
			session.DayOfWeek,
			fmt.Sprintf("%02d:00", session.StartTime),
			fmt.Sprintf("%02d:00", session.EndTime),
			lookupName(subjectNames, session.SubjectID),
			faculty,
			lookupName(roomNames, session.ClassroomID),
		})
	}
	return table, nil
}

func (s *TimetableService) load(ctx context.Context, id string) (*models.Timetable, error) {
	timetable, err := s.timetables.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isMalformedID(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.As(appErrors.ErrInternal, err, "failed to load timetable")
	}
	if err := s.attachSessions(ctx, timetable); err != nil {
		return nil, err
	}
	return timetable, nil
}

func (s *TimetableService) attachSessions(ctx context.Context, timetable *models.Timetable) error {
	sessions, err := s.sessions.ListByTimetable(ctx, timetable.ID)
	if err != nil {
		return appErrors.As(appErrors.ErrInternal, err, "failed to load class sessions")
	}
	timetable.Sessions = nonNilSessions(sessions)
	return nil
}

func (s *TimetableService) invalidate(ctx context.Context) {
	_ = s.cache.Invalidate(ctx, TimetableCachePattern)
}

func nonNilSessions(sessions []models.ClassSession) []models.ClassSession {
	if sessions == nil {
		return []models.ClassSession{}
	}
	return sessions
}

// Unknown ids fall back to the raw id so exports stay complete.
func lookupName(names map[string]string, id string) string {
	if name, ok := names[id]; ok {
		return name
	}
	return id
}
