package app

import (
	"sync"

	"go.trai.ch/forge/internal/adapters/watcher" //nolint:depguard // Wired in app layer
	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/engine/watch"
)

// session holds the state shared by the tasks of one command invocation.
type session struct {
	project   *domain.Project
	graph     *domain.Graph
	initTasks []string

	mu     sync.Mutex
	server bool
	loop   *watchLoop
}

// watchLoop is the change pipeline armed by the watch task.
type watchLoop struct {
	debouncer  *watcher.Debouncer
	dispatcher *watch.Dispatcher
}

// stop drops pending changes and waits for triggered runs to finish.
func (l *watchLoop) stop() {
	l.debouncer.Stop()
	l.dispatcher.Close()
}

func newSession(project *domain.Project) *session {
	return &session{project: project}
}

func (s *session) setServing() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.server = true
}

func (s *session) serving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.server
}

func (s *session) setWatchLoop(l *watchLoop) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loop = l
}

func (s *session) activeLoop() *watchLoop {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loop
}

// live reports whether the run left long-running services behind.
func (s *session) live() bool {
	return s.serving() || s.activeLoop() != nil
}
