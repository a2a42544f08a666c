// Package domain contains the core domain models of the build: tasks, the task graph,
// path categories and build runs.
package domain

import (
	"slices"
)

// visitState tracks a task during depth-first traversal.
type visitState uint8

const (
	unvisited visitState = iota
	visiting
	visited
)

// Graph represents the dependency graph of tasks.
type Graph struct {
	tasks map[string]Task
	names []string
}

// NewGraph creates a new empty Graph.
func NewGraph() *Graph {
	return &Graph{
		tasks: make(map[string]Task),
	}
}

// Register adds a task whose dependencies must all be registered already.
func (g *Graph) Register(name string, deps []string, action Action) error {
	return g.RegisterTask(Task{Name: name, Dependencies: deps, Action: action})
}

// RegisterTask is Register for a fully described task.
func (g *Graph) RegisterTask(t Task) error {
	if t.Name == "" {
		return ErrEmptyTaskName
	}
	if _, exists := g.tasks[t.Name]; exists {
		return Annotate(ErrTaskAlreadyExists, "task", t.Name)
	}
	for _, dep := range t.Dependencies {
		if _, ok := g.tasks[dep]; !ok {
			return Annotate(ErrUnknownDependency, "task", t.Name, "dependency", dep)
		}
	}
	t.Dependencies = slices.Clone(t.Dependencies)
	g.insert(t)
	return nil
}

// AddTask adds a task without checking its dependencies.
// Dependencies that never get registered are reported by ResolveOrder.
func (g *Graph) AddTask(t *Task) error {
	if t.Name == "" {
		return ErrEmptyTaskName
	}
	if _, exists := g.tasks[t.Name]; exists {
		return Annotate(ErrTaskAlreadyExists, "task", t.Name)
	}
	task := *t
	task.Dependencies = slices.Clone(t.Dependencies)
	g.insert(task)
	return nil
}

func (g *Graph) insert(t Task) {
	g.tasks[t.Name] = t
	g.names = append(g.names, t.Name)
}

// Task returns the task registered under name.
func (g *Graph) Task(name string) (Task, bool) {
	t, ok := g.tasks[name]
	return t, ok
}

// Names returns the task names in registration order.
func (g *Graph) Names() []string {
	return slices.Clone(g.names)
}

// Len returns the number of registered tasks.
func (g *Graph) Len() int {
	return len(g.tasks)
}

// ResolveOrder returns every task reachable from name exactly once,
// with dependencies before dependents. Dependencies are visited in declared order.
func (g *Graph) ResolveOrder(name string) ([]string, error) {
	if _, ok := g.tasks[name]; !ok {
		return nil, Annotate(ErrTaskNotFound, "task", name)
	}
	w := g.newWalk()
	if err := w.visit(name); err != nil {
		return nil, err
	}
	return w.order, nil
}

// Validate resolves every registered task, including disconnected ones.
func (g *Graph) Validate() error {
	w := g.newWalk()
	for _, name := range g.names {
		if w.state[name] != unvisited {
			continue
		}
		if err := w.visit(name); err != nil {
			return err
		}
	}
	return nil
}

type walk struct {
	g     *Graph
	state map[string]visitState
	path  []string
	order []string
}

func (g *Graph) newWalk() *walk {
	return &walk{
		g:     g,
		state: make(map[string]visitState, len(g.tasks)),
		order: make([]string, 0, len(g.tasks)),
	}
}

func (w *walk) visit(u string) error {
	w.state[u] = visiting
	w.path = append(w.path, u)

	for _, dep := range w.g.tasks[u].Dependencies {
		if _, ok := w.g.tasks[dep]; !ok {
			return Annotate(ErrUnknownDependency, "task", u, "dependency", dep)
		}
		switch w.state[dep] {
		case visiting:
			return w.cycleError(dep)
		case unvisited:
			if err := w.visit(dep); err != nil {
				return err
			}
		case visited:
		}
	}

	w.state[u] = visited
	w.path = w.path[:len(w.path)-1]
	w.order = append(w.order, u)
	return nil
}

// cycleError builds the cycle from the first occurrence of dep on the current path.
func (w *walk) cycleError(dep string) error {
	start := slices.Index(w.path, dep)
	cycle := make([]string, 0, len(w.path)-start+1)
	cycle = append(cycle, w.path[start:]...)
	cycle = append(cycle, dep)
	return &CycleError{Cycle: cycle}
}
