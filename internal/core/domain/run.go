package domain

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// BuildRun is one execution of a resolved task order.
// A task completes at most once per run.
type BuildRun struct {
	ID        string
	Target    string
	StartedAt time.Time

	mu        sync.Mutex
	completed map[string]bool
}

// NewBuildRun creates a run for the given target task.
func NewBuildRun(target string) *BuildRun {
	return &BuildRun{
		ID:        uuid.NewString(),
		Target:    target,
		StartedAt: time.Now(),
		completed: make(map[string]bool),
	}
}

// Completed reports whether the task already completed in this run.
func (r *BuildRun) Completed(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completed[name]
}

// MarkCompleted records the task as completed.
func (r *BuildRun) MarkCompleted(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed[name] = true
}

// CompletedCount returns the number of completed tasks.
func (r *BuildRun) CompletedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.completed)
}
