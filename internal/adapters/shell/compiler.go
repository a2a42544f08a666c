// Package shell runs the external compiler configured for compile categories.
package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports"
)

var _ ports.Compiler = (*Compiler)(nil)

// Argument placeholders substituted in compiler commands.
const (
	PlaceholderInput  = "{input}"
	PlaceholderOutput = "{output}"
	PlaceholderOutDir = "{outdir}"
)

// Compiler implements ports.Compiler using os/exec.
type Compiler struct {
	logger ports.Logger
}

// NewCompiler creates a new Compiler.
func NewCompiler(logger ports.Logger) *Compiler {
	return &Compiler{logger: logger}
}

// Init runs cfg.Init in dir. An empty init command does nothing.
func (c *Compiler) Init(ctx context.Context, cfg domain.CompilerConfig, dir string, out io.Writer) error {
	if len(cfg.Init) == 0 {
		return nil
	}
	if err := c.run(ctx, cfg.Init, cfg.Env, dir, out); err != nil {
		return c.wrap(domain.ErrCompilerInitFailed, cfg.Init, err)
	}
	return nil
}

// Compile runs cfg.Cmd for one input file, with placeholders substituted.
func (c *Compiler) Compile(
	ctx context.Context,
	cfg domain.CompilerConfig,
	dir, input, output string,
	out io.Writer,
) error {
	if len(cfg.Cmd) == 0 {
		return domain.ErrMissingCompiler
	}

	args := Expand(cfg.Cmd, input, output)
	if err := c.run(ctx, args, cfg.Env, dir, out); err != nil {
		return c.wrap(domain.ErrCompileFailed, args, err)
	}
	return nil
}

// Expand substitutes the placeholders in args.
func Expand(args []string, input, output string) []string {
	r := strings.NewReplacer(
		PlaceholderInput, input,
		PlaceholderOutput, output,
		PlaceholderOutDir, filepath.Dir(output),
	)
	expanded := make([]string, len(args))
	for i, arg := range args {
		expanded[i] = r.Replace(arg)
	}
	return expanded
}

func (c *Compiler) run(ctx context.Context, args []string, env map[string]string, dir string, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	c.logger.Debug("exec: " + strings.Join(args, " "))

	logOut := &logWriter{logger: c.logger, prefix: filepath.Base(args[0])}
	defer logOut.flush()
	w := io.MultiWriter(out, logOut)

	cmd := exec.CommandContext(ctx, args[0], args[1:]...) //nolint:gosec // user provided command
	cmd.Dir = dir
	cmd.Env = resolveEnvironment(os.Environ(), env)
	cmd.Stdout = w
	cmd.Stderr = w
	return cmd.Run()
}

func (c *Compiler) wrap(sentinel error, args []string, err error) error {
	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}
	return domain.Annotate(sentinel,
		"command", strings.Join(args, " "),
		"exit_code", exitCode,
		"reason", err.Error(),
	)
}

// resolveEnvironment overlays overrides on the system environment.
// The result is sorted for a stable child environment.
func resolveEnvironment(sysEnv []string, overrides map[string]string) []string {
	envMap := make(map[string]string, len(sysEnv)+len(overrides))
	for _, entry := range sysEnv {
		if k, v, ok := strings.Cut(entry, "="); ok {
			envMap[k] = v
		}
	}
	for k, v := range overrides {
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	slices.Sort(result)
	return result
}
