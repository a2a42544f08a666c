// Package watch maps file changes to task runs.
package watch

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gobwas/glob"
	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports"
)

// RunFunc executes task in a fresh build run.
type RunFunc func(ctx context.Context, task string) error

// ResultFunc observes the outcome of a triggered run.
type ResultFunc func(task string, err error)

type subscription struct {
	pattern string
	matcher glob.Glob
	task    string
}

// queue serializes the runs of one task name.
type queue struct {
	pending int
	running bool
}

// Dispatcher turns change notifications into task runs. Runs of the same
// task never overlap and are never dropped. Different tasks run concurrently.
type Dispatcher struct {
	root   string
	run    RunFunc
	logger ports.Logger

	// OnResult, when set, is called after every triggered run.
	OnResult ResultFunc

	subsMu sync.RWMutex
	subs   []subscription

	mu     sync.Mutex
	queues map[string]*queue
	closed bool
	wg     sync.WaitGroup
}

// New creates a Dispatcher for the project at root.
func New(root string, run RunFunc, logger ports.Logger) *Dispatcher {
	return &Dispatcher{
		root:   root,
		run:    run,
		logger: logger,
		queues: make(map[string]*queue),
	}
}

// Watch runs task whenever a path matching pattern changes.
// Patterns are relative to the project root and use '/' as separator.
func (d *Dispatcher) Watch(pattern, task string) error {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return domain.Annotate(domain.ErrInvalidPattern, "pattern", pattern, "reason", err.Error())
	}

	d.subsMu.Lock()
	d.subs = append(d.subs, subscription{pattern: pattern, matcher: g, task: task})
	d.subsMu.Unlock()
	return nil
}

// Notify enqueues one run for every task subscribed to any of paths.
// It returns the matched task names in subscription order. Nothing is
// enqueued after Close or once ctx is done.
func (d *Dispatcher) Notify(ctx context.Context, paths []string) []string {
	matched := d.match(paths)
	for _, task := range matched {
		d.enqueue(ctx, task)
	}
	return matched
}

// Wait blocks until every queued run has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Close stops accepting notifications and waits for queued runs to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) match(paths []string) []string {
	rels := make([]string, 0, len(paths))
	for _, p := range paths {
		if rel, ok := d.relative(p); ok {
			rels = append(rels, rel)
		}
	}

	d.subsMu.RLock()
	defer d.subsMu.RUnlock()

	seen := make(map[string]bool)
	var tasks []string
	for _, sub := range d.subs {
		if seen[sub.task] {
			continue
		}
		for _, rel := range rels {
			if sub.matcher.Match(rel) {
				seen[sub.task] = true
				tasks = append(tasks, sub.task)
				break
			}
		}
	}
	return tasks
}

func (d *Dispatcher) relative(p string) (string, bool) {
	if !filepath.IsAbs(p) {
		return filepath.ToSlash(filepath.Clean(p)), true
	}
	rel, err := filepath.Rel(d.root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (d *Dispatcher) enqueue(ctx context.Context, task string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed || ctx.Err() != nil {
		return
	}

	q, ok := d.queues[task]
	if !ok {
		q = &queue{}
		d.queues[task] = q
	}
	q.pending++
	if q.running {
		return
	}

	q.running = true
	d.wg.Add(1)
	go d.drain(ctx, task, q)
}

func (d *Dispatcher) drain(ctx context.Context, task string, q *queue) {
	defer d.wg.Done()

	for {
		d.mu.Lock()
		if ctx.Err() != nil {
			q.pending = 0
		}
		if q.pending == 0 {
			q.running = false
			d.mu.Unlock()
			return
		}
		q.pending--
		d.mu.Unlock()

		d.logger.Debug("change detected, running " + task)
		err := d.run(ctx, task)
		if err != nil && ctx.Err() == nil {
			d.logger.Error(err)
		}
		if d.OnResult != nil {
			d.OnResult(task, err)
		}
	}
}
