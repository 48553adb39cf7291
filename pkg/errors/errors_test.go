package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	typed := Clone(ErrInsufficientResources, "no classrooms")
	wrapped := fmt.Errorf("generate: %w", typed)

	got := FromError(wrapped)
	assert.Equal(t, "INSUFFICIENT_RESOURCES", got.Code)
	assert.Equal(t, http.StatusBadRequest, got.Status)
	assert.Equal(t, "no classrooms", got.Message)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	got := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.Equal(t, http.StatusInternalServerError, got.Status)
	assert.EqualError(t, got, "internal server error: boom")
}

func TestCloneDoesNotMutateOriginal(t *testing.T) {
	clone := Clone(ErrNotFound, "timetable not found")
	assert.Equal(t, "timetable not found", clone.Message)
	assert.Equal(t, "resource not found", ErrNotFound.Message)
	assert.Nil(t, Clone(nil, "x"))
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("dial tcp")
	err := Wrap(cause, ErrInternal.Code, ErrInternal.Status, "failed to load subjects")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to load subjects: dial tcp", err.Error())
}

func TestAsKeepsKindAndCause(t *testing.T) {
	cause := errors.New("no rows")
	err := As(ErrNotFound, cause, "timetable not found")
	assert.Equal(t, ErrNotFound.Code, err.Code)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.ErrorIs(t, err, cause)

	assert.Equal(t, ErrInternal.Message, As(ErrInternal, cause, "").Message)
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("activate: %w", Clone(ErrNotFound, "timetable not found"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrConflict)
	assert.NotErrorIs(t, errors.New("plain"), ErrNotFound)
}
