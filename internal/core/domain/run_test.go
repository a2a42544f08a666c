package domain_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/forge/internal/core/domain"
)

func TestBuildRun(t *testing.T) {
	run := domain.NewBuildRun("build")

	_, err := uuid.Parse(run.ID)
	require.NoError(t, err)
	assert.Equal(t, "build", run.Target)
	assert.False(t, run.StartedAt.IsZero())

	assert.False(t, run.Completed("clean"))
	run.MarkCompleted("clean")
	run.MarkCompleted("clean")
	assert.True(t, run.Completed("clean"))
	assert.Equal(t, 1, run.CompletedCount())

	other := domain.NewBuildRun("build")
	assert.NotEqual(t, run.ID, other.ID)
	assert.False(t, other.Completed("clean"))
}

func TestAsync(t *testing.T) {
	boom := errors.New("boom")
	action := domain.Async(func(context.Context) error { return boom })

	err := <-action(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestCompleted(t *testing.T) {
	require.NoError(t, <-domain.Completed(nil))
}

func TestTaskError(t *testing.T) {
	cause := domain.Annotate(domain.ErrDeleteFailed, "path", "dist")
	err := error(&domain.TaskError{Task: "clean", RunID: "r1", Err: cause})

	require.ErrorIs(t, err, domain.ErrTaskActionFailed)
	require.ErrorIs(t, err, domain.ErrDeleteFailed)
	assert.Contains(t, err.Error(), `task "clean" failed`)

	var taskErr *domain.TaskError
	require.ErrorAs(t, err, &taskErr)
	assert.Equal(t, "clean", taskErr.Task)
}

func TestAnnotate(t *testing.T) {
	assert.NoError(t, domain.Annotate(nil, "k", "v"))

	err := domain.Annotate(domain.ErrInvalidPattern, "category", "a", "pattern", "[")
	require.ErrorIs(t, err, domain.ErrInvalidPattern)
	assert.Equal(t, domain.ErrInvalidPattern.Error(), err.Error())
}

func TestFileError(t *testing.T) {
	cause := domain.Annotate(domain.ErrCompileFailed, "exit_code", 1)
	err := error(&domain.FileError{Path: "src/Main.elm", Err: cause})

	require.ErrorIs(t, err, domain.ErrFileProcessingFailed)
	require.ErrorIs(t, err, domain.ErrCompileFailed)
	assert.Equal(t, "failed to process file src/Main.elm: compiler failed", err.Error())

	var fileErr *domain.FileError
	require.ErrorAs(t, err, &fileErr)
	assert.Equal(t, map[string]any{"file": "src/Main.elm"}, fileErr.Metadata())
	assert.Equal(t, cause, fileErr.Cause())
}
