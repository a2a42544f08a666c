package app

import (
	"context"
	"fmt"
	"path/filepath"

	"go.trai.ch/forge/internal/adapters/watcher" //nolint:depguard // Wired in app layer
	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports"
	"go.trai.ch/forge/internal/engine/executor"
	"go.trai.ch/forge/internal/engine/watch"
)

// buildGraph registers the task vocabulary of a project:
// clean, <category>-init, <category>, build, default, serve, watch, dev.
func (a *App) buildGraph(sess *session) (*domain.Graph, error) {
	p := sess.project
	g := domain.NewGraph()

	tasks := []domain.Task{{
		Name:        domain.TaskClean,
		Description: "Remove the output directory " + p.Paths.Output(),
		Action:      domain.Async(a.clean(p)),
	}}

	categories := p.Paths.Categories()
	categoryNames := make([]string, 0, len(categories))
	for _, c := range categories {
		if c.Compile && len(p.Compiler.Init) > 0 {
			name := domain.InitTaskName(c.Name)
			sess.initTasks = append(sess.initTasks, name)
			tasks = append(tasks, domain.Task{
				Name:        name,
				Description: "Prepare the compiler for " + c.Name,
				Action:      domain.Async(a.initCompiler(p)),
			})
		}
	}
	for _, c := range categories {
		var deps []string
		verb := "Copy"
		if c.Compile {
			verb = "Compile"
			if len(p.Compiler.Init) > 0 {
				deps = []string{domain.InitTaskName(c.Name)}
			}
		}
		categoryNames = append(categoryNames, c.Name)
		tasks = append(tasks, domain.Task{
			Name:         c.Name,
			Dependencies: deps,
			Description:  fmt.Sprintf("%s %s into %s", verb, c.Pattern, p.Paths.DestDir(c)),
			Action:       domain.Async(a.processCategory(p, c)),
		})
	}

	tasks = append(tasks,
		domain.Task{
			Name:         domain.TaskBuild,
			Dependencies: categoryNames,
			Description:  "Build every category",
		},
		domain.Task{
			Name:         domain.TaskDefault,
			Dependencies: []string{domain.TaskBuild},
			Description:  "Alias for build",
		},
		domain.Task{
			Name:        domain.TaskServe,
			Description: "Serve the output directory on " + p.Server.Address,
			Action:      domain.Async(a.serve(sess)),
		},
		domain.Task{
			Name:        domain.TaskWatch,
			Description: "Rebuild categories when their files change",
			Action:      domain.Async(a.watch(sess)),
		},
		domain.Task{
			Name:         domain.TaskDev,
			Dependencies: []string{domain.TaskBuild, domain.TaskServe, domain.TaskWatch},
			Description:  "Build, serve and rebuild on change",
		},
	)

	for _, t := range tasks {
		if err := g.RegisterTask(t); err != nil {
			return nil, err
		}
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func (a *App) clean(p *domain.Project) func(context.Context) error {
	return func(ctx context.Context) error {
		return a.adapters.Remover.RemoveAll(ctx, p.Root, p.Paths.Output())
	}
}

func (a *App) initCompiler(p *domain.Project) func(context.Context) error {
	return func(ctx context.Context) error {
		return a.adapters.Compiler.Init(ctx, p.Compiler, p.Root, executor.Output(ctx))
	}
}

func (a *App) processCategory(p *domain.Project, c domain.Category) func(context.Context) error {
	return func(ctx context.Context) error {
		out := executor.Output(ctx)

		files, err := a.adapters.Resolver.ResolveInputs([]string{c.Pattern}, p.Root, a.outputDir(p))
		if err != nil {
			return err
		}
		if len(files) == 0 {
			_, _ = fmt.Fprintf(out, "no files match %s\n", c.Pattern)
			return nil
		}

		spec := ports.PipeSpec{
			Root:    p.Root,
			Files:   files,
			Base:    filepath.Join(p.Root, filepath.FromSlash(c.Base())),
			DestDir: filepath.Join(p.Root, p.Paths.DestDir(c)),
			Policy:  p.ErrorPolicy,
		}
		if c.Compile {
			spec.Ext = p.Compiler.Ext
			spec.Transform = func(ctx context.Context, src, dst string) error {
				return a.adapters.Compiler.Compile(ctx, p.Compiler, p.Root, src, dst, out)
			}
		}

		res, err := a.adapters.Pipe.Run(ctx, spec)
		_, _ = fmt.Fprintf(out, "%d written, %d unchanged, %d failed\n",
			len(res.Written), len(res.Skipped), len(res.Failed))
		return err
	}
}

func (a *App) serve(sess *session) func(context.Context) error {
	return func(ctx context.Context) error {
		p := sess.project
		if err := a.adapters.Server.Start(ctx, p.Server, a.outputDir(p)); err != nil {
			return err
		}
		sess.setServing()
		return nil
	}
}

func (a *App) watch(sess *session) func(context.Context) error {
	return func(ctx context.Context) error {
		p := sess.project

		d := watch.New(p.Root, a.rebuild(sess), a.logger)
		for _, c := range p.Paths.Categories() {
			if err := d.Watch(c.Pattern, c.Name); err != nil {
				return err
			}
		}
		d.OnResult = func(_ string, err error) {
			if err == nil && sess.serving() {
				a.adapters.Server.Reload()
			}
		}

		if err := a.adapters.Watcher.Start(ctx, p.Root, a.outputDir(p)); err != nil {
			return err
		}

		debouncer := watcher.NewDebouncer(p.Watch.Debounce, func(paths []string) {
			d.Notify(ctx, paths)
		})
		go func() {
			for event := range a.adapters.Watcher.Events() {
				debouncer.Add(event.Path)
			}
		}()

		sess.setWatchLoop(&watchLoop{debouncer: debouncer, dispatcher: d})
		return nil
	}
}

// rebuild runs a category in a fresh build run. Compiler init tasks already
// ran in the initial build and are not repeated.
func (a *App) rebuild(sess *session) watch.RunFunc {
	return func(ctx context.Context, task string) error {
		run := domain.NewBuildRun(task)
		for _, name := range sess.initTasks {
			run.MarkCompleted(name)
		}
		err := a.executor.Execute(ctx, sess.graph, run)
		_ = a.renderer.Stop()
		return err
	}
}
