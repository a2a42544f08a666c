// Package app implements the application layer for forge.
package app

import (
	"context"
	"os"
	"path/filepath"

	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports"
	"go.trai.ch/forge/internal/engine/executor"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// GlobalOptions are the settings shared by every command.
type GlobalOptions struct {
	ConfigPath string
	Verbose    bool
	JSON       bool
}

// Adapters groups the file and process adapters driven by the build tasks.
type Adapters struct {
	Resolver ports.InputResolver
	Pipe     ports.Pipe
	Compiler ports.Compiler
	Remover  ports.Remover
	Server   ports.DevServer
	Watcher  ports.Watcher
}

// TaskInfo describes a task for listings.
type TaskInfo struct {
	Name         string
	Dependencies []string
	Description  string
}

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	executor     *executor.Executor
	logger       ports.Logger
	renderer     ports.Renderer
	adapters     Adapters

	configPath string
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	exec *executor.Executor,
	log ports.Logger,
	renderer ports.Renderer,
	adapters Adapters,
) *App {
	return &App{
		configLoader: loader,
		executor:     exec,
		logger:       log,
		renderer:     renderer,
		adapters:     adapters,
	}
}

type verboseSetter interface {
	SetVerbose(verbose bool)
}

type jsonSetter interface {
	SetJSON(enabled bool)
}

// Configure applies the global command line options.
func (a *App) Configure(opts GlobalOptions) {
	a.configPath = opts.ConfigPath
	if l, ok := a.logger.(jsonSetter); ok {
		l.SetJSON(opts.JSON)
	}
	if l, ok := a.logger.(verboseSetter); ok {
		l.SetVerbose(opts.Verbose)
	}
}

// Run loads the project and executes target with its dependencies. When the
// run started the dev server or the watcher, Run blocks until ctx is done.
func (a *App) Run(ctx context.Context, target string) error {
	project, err := a.load()
	if err != nil {
		return err
	}

	sess := newSession(project)
	graph, err := a.buildGraph(sess)
	if err != nil {
		return err
	}
	sess.graph = graph

	if err := a.renderer.Start(ctx); err != nil {
		return err
	}
	_, err = a.executor.Run(ctx, graph, target)
	_ = a.renderer.Stop()
	if err != nil {
		return err
	}

	if !sess.live() {
		return nil
	}
	return a.waitForShutdown(ctx, sess)
}

// Tasks lists the tasks of the project. With an empty target every task is
// listed in registration order, otherwise the resolution order of target.
func (a *App) Tasks(target string) ([]TaskInfo, error) {
	project, err := a.load()
	if err != nil {
		return nil, err
	}

	sess := newSession(project)
	graph, err := a.buildGraph(sess)
	if err != nil {
		return nil, err
	}

	names := graph.Names()
	if target != "" {
		names, _, err = executor.Plan(graph, target)
		if err != nil {
			return nil, err
		}
	}

	infos := make([]TaskInfo, 0, len(names))
	for _, name := range names {
		task, _ := graph.Task(name)
		infos = append(infos, TaskInfo{
			Name:         task.Name,
			Dependencies: task.Dependencies,
			Description:  task.Description,
		})
	}
	return infos, nil
}

func (a *App) load() (*domain.Project, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, domain.Annotate(domain.ErrFailedToGetRoot, "reason", err.Error())
	}

	project, err := a.configLoader.Load(cwd, a.configPath)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	return project, nil
}

func (a *App) waitForShutdown(ctx context.Context, sess *session) error {
	g, gctx := errgroup.WithContext(ctx)
	if sess.serving() {
		g.Go(a.adapters.Server.Wait)
	}
	if loop := sess.activeLoop(); loop != nil {
		a.logger.Info("Watching for changes. Press Ctrl+C to stop.")
		g.Go(func() error {
			<-gctx.Done()
			err := a.adapters.Watcher.Stop()
			loop.stop()
			return err
		})
	}
	return g.Wait()
}

func (a *App) outputDir(p *domain.Project) string {
	return filepath.Join(p.Root, filepath.FromSlash(p.Paths.Output()))
}
