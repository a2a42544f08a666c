// Package executor runs the tasks of a graph in dependency order.
package executor

import (
	"context"
	"fmt"
	"io"
	"slices"

	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports"
)

type outputKey struct{}

// Output returns the writer for the output of the task running in ctx.
// Outside of a task it returns io.Discard.
func Output(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok {
		return w
	}
	return io.Discard
}

// Executor runs tasks one at a time. A task starts only after all of its
// dependencies have signalled completion.
type Executor struct {
	tracer ports.Tracer
	logger ports.Logger
}

// New creates an Executor.
func New(tracer ports.Tracer, logger ports.Logger) *Executor {
	return &Executor{tracer: tracer, logger: logger}
}

// Run executes name and everything it depends on within a fresh build run.
func (e *Executor) Run(ctx context.Context, graph *domain.Graph, name string) (*domain.BuildRun, error) {
	run := domain.NewBuildRun(name)
	return run, e.Execute(ctx, graph, run)
}

// Execute runs run.Target and its dependencies. Tasks already completed in
// run are not executed again. The first failing task stops the run and its
// error is returned as a *domain.TaskError.
func (e *Executor) Execute(ctx context.Context, graph *domain.Graph, run *domain.BuildRun) error {
	order, deps, err := Plan(graph, run.Target)
	if err != nil {
		return err
	}
	e.tracer.EmitPlan(ctx, order, deps, []string{run.Target})

	for _, name := range order {
		if run.Completed(name) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		task, _ := graph.Task(name)
		if err := e.executeTask(ctx, task, run); err != nil {
			return &domain.TaskError{Task: name, RunID: run.ID, Err: err}
		}
		run.MarkCompleted(name)
	}

	e.logger.Debug(fmt.Sprintf("run %s finished %d of %d tasks", run.ID, run.CompletedCount(), len(order)))
	return nil
}

func (e *Executor) executeTask(ctx context.Context, task domain.Task, run *domain.BuildRun) error {
	ctx, span := e.tracer.Start(ctx, task.Name,
		ports.WithAttribute(ports.TaskAttribute, task.Name),
		ports.WithAttribute(ports.RunIDAttribute, run.ID),
	)
	defer span.End()

	if task.Action == nil {
		return nil
	}

	e.logger.Debug("running task " + task.Name)
	done := task.Action(context.WithValue(ctx, outputKey{}, io.Writer(span)))
	if done == nil {
		return nil
	}

	select {
	case err := <-done:
		if err != nil {
			span.RecordError(err)
		}
		return err
	case <-ctx.Done():
		span.RecordError(ctx.Err())
		return ctx.Err()
	}
}

// Plan returns the execution order and dependency map of target without running anything.
func Plan(graph *domain.Graph, target string) ([]string, map[string][]string, error) {
	order, err := graph.ResolveOrder(target)
	if err != nil {
		return nil, nil, err
	}
	deps := make(map[string][]string, len(order))
	for _, name := range order {
		task, _ := graph.Task(name)
		deps[name] = slices.Clone(task.Dependencies)
	}
	return order, deps, nil
}
