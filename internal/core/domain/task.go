package domain

import "context"

// Completion delivers the single outcome of an action. A nil error means success.
type Completion <-chan error

// Action starts the work of a task and returns its completion signal.
// An action may return before its work is done; the executor waits on the completion.
type Action func(ctx context.Context) Completion

// Task represents a named unit of work in the build.
type Task struct {
	Name         string
	Dependencies []string
	Action       Action
	Description  string
}

// Async runs fn on its own goroutine and signals its result through the returned completion.
func Async(fn func(ctx context.Context) error) Action {
	return func(ctx context.Context) Completion {
		done := make(chan error, 1)
		go func() {
			done <- fn(ctx)
		}()
		return done
	}
}

// Completed returns an already resolved completion carrying err.
func Completed(err error) Completion {
	done := make(chan error, 1)
	done <- err
	return done
}
