package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/models"
)

var sessionRowColumns = []string{"id", "timetable_id", "subject_id", "faculty_id", "classroom_id", "day_of_week", "start_time", "end_time"}

func TestClassSessionRepositoryInsertBatch(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewClassSessionRepository(db)
	faculty := "fac-1"

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO class_sessions")).
		WithArgs(sqlmock.AnyArg(), "tt-1", "sub-1", "fac-1", "room-1", "Monday", 9, 10).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO class_sessions")).
		WithArgs(sqlmock.AnyArg(), "tt-1", "sub-2", nil, "room-2", "Friday", 16, 17).
		WillReturnResult(sqlmock.NewResult(1, 1))

	sessions := []models.ClassSession{
		{TimetableID: "tt-1", SubjectID: "sub-1", FacultyID: &faculty, ClassroomID: "room-1", DayOfWeek: "Monday", StartTime: 9, EndTime: 10},
		{TimetableID: "tt-1", SubjectID: "sub-2", ClassroomID: "room-2", DayOfWeek: "Friday", StartTime: 16, EndTime: 17},
	}
	require.NoError(t, repo.InsertBatch(context.Background(), nil, sessions))
	for _, session := range sessions {
		assert.NotEmpty(t, session.ID)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassSessionRepositoryInsertBatchEmpty(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewClassSessionRepository(db)

	require.NoError(t, repo.InsertBatch(context.Background(), nil, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassSessionRepositoryListByTimetable(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewClassSessionRepository(db)

	rows := sqlmock.NewRows(sessionRowColumns).
		AddRow("s-1", "tt-1", "sub-1", "fac-1", "room-1", "Monday", 9, 10).
		AddRow("s-2", "tt-1", "sub-2", nil, "room-1", "Tuesday", 11, 12)
	mock.ExpectQuery(regexp.QuoteMeta("FROM class_sessions WHERE timetable_id = $1")).
		WithArgs("tt-1").
		WillReturnRows(rows)

	sessions, err := repo.ListByTimetable(context.Background(), "tt-1")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Nil(t, sessions[1].FacultyID)
	assert.Equal(t, 12, sessions[1].EndTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassSessionRepositoryListByTimetablesGroups(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewClassSessionRepository(db)

	rows := sqlmock.NewRows(sessionRowColumns).
		AddRow("s-1", "tt-1", "sub-1", "fac-1", "room-1", "Monday", 9, 10).
		AddRow("s-2", "tt-2", "sub-1", "fac-1", "room-1", "Monday", 10, 11).
		AddRow("s-3", "tt-2", "sub-2", "fac-2", "room-2", "Monday", 10, 11)
	mock.ExpectQuery(regexp.QuoteMeta("FROM class_sessions WHERE timetable_id IN (?, ?)")).
		WithArgs("tt-1", "tt-2").
		WillReturnRows(rows)

	grouped, err := repo.ListByTimetables(context.Background(), []string{"tt-1", "tt-2"})
	require.NoError(t, err)
	assert.Len(t, grouped["tt-1"], 1)
	assert.Len(t, grouped["tt-2"], 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
