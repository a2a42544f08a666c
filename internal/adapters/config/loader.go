// Package config provides the configuration loader for forge.
package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gobwas/glob"
	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load reads forge.yaml and returns the validated project.
func (l *Loader) Load(cwd, configPath string) (*domain.Project, error) {
	path, err := l.findConfiguration(cwd, configPath)
	if err != nil {
		return nil, err
	}

	var forgefile Forgefile
	if err := readAndUnmarshalYAML(path, &forgefile); err != nil {
		return nil, err
	}

	project, err := l.buildProject(path, &forgefile)
	if err != nil {
		return nil, domain.Annotate(err, "config", path)
	}
	return project, nil
}

// findConfiguration returns the explicit configPath, or the nearest forge.yaml
// found by walking up from cwd.
func (l *Loader) findConfiguration(cwd, configPath string) (string, error) {
	if configPath != "" {
		if !filepath.IsAbs(configPath) {
			configPath = filepath.Join(cwd, configPath)
		}
		if _, err := os.Stat(configPath); err != nil {
			return "", domain.Annotate(domain.ErrConfigNotFound, "path", configPath)
		}
		return filepath.Clean(configPath), nil
	}

	currentDir := cwd
	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return "", domain.Annotate(domain.ErrConfigNotFound, "cwd", cwd)
}

func (l *Loader) buildProject(configPath string, f *Forgefile) (*domain.Project, error) {
	root, err := filepath.Abs(resolveRoot(configPath, f.Root))
	if err != nil {
		return nil, domain.Annotate(domain.ErrFailedToGetRoot, "reason", err.Error())
	}

	categories := make([]domain.Category, 0, len(f.Categories))
	for _, dto := range f.Categories {
		if _, err := glob.Compile(dto.Pattern, '/'); err != nil {
			return nil, domain.Annotate(domain.ErrInvalidPattern,
				"category", dto.Name, "pattern", dto.Pattern, "reason", err.Error())
		}
		categories = append(categories, domain.Category{
			Name:    dto.Name,
			Pattern: dto.Pattern,
			Dest:    dto.Dest,
			Compile: dto.Compile,
		})
	}

	paths, err := domain.NewPathSet(f.Dest, categories...)
	if err != nil {
		return nil, err
	}

	if paths.HasCompiled() && len(f.Compiler.Cmd) == 0 {
		return nil, domain.ErrMissingCompiler
	}
	if !paths.HasCompiled() && len(f.Compiler.Cmd) > 0 {
		l.Logger.Warn("compiler is configured but no category sets compile: true")
	}

	policy, err := parseErrorPolicy(f.Errors)
	if err != nil {
		return nil, err
	}

	debounce, err := parseDebounce(f.Watch.Debounce)
	if err != nil {
		return nil, err
	}

	inject := true
	if f.Server.Inject != nil {
		inject = *f.Server.Inject
	}
	address := f.Server.Address
	if address == "" {
		address = domain.DefaultServerAddress
	}

	return &domain.Project{
		Root:  root,
		Paths: paths,
		Compiler: domain.CompilerConfig{
			Init: f.Compiler.Init,
			Cmd:  f.Compiler.Cmd,
			Ext:  f.Compiler.Ext,
			Env:  f.Compiler.Env,
		},
		Server:      domain.ServerConfig{Address: address, Inject: inject},
		Watch:       domain.WatchConfig{Debounce: debounce},
		ErrorPolicy: policy,
	}, nil
}

func parseErrorPolicy(value string) (domain.ErrorPolicy, error) {
	switch domain.ErrorPolicy(value) {
	case "", domain.PolicyTolerant:
		return domain.PolicyTolerant, nil
	case domain.PolicyFailFast:
		return domain.PolicyFailFast, nil
	default:
		return "", domain.Annotate(domain.ErrInvalidErrorPolicy, "errors", value)
	}
}

func parseDebounce(value string) (time.Duration, error) {
	if value == "" {
		return domain.DefaultDebounceWindow, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return 0, domain.Annotate(domain.ErrInvalidDebounce, "debounce", value)
	}
	return d, nil
}

func resolveRoot(configPath, configuredRoot string) string {
	configDir := filepath.Dir(configPath)
	if configuredRoot == "" {
		return filepath.Clean(configDir)
	}
	if filepath.IsAbs(configuredRoot) {
		return filepath.Clean(configuredRoot)
	}
	return filepath.Clean(filepath.Join(configDir, configuredRoot))
}

// readAndUnmarshalYAML reads a YAML file and decodes it into target, rejecting unknown fields.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is validated by caller
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return domain.Annotate(domain.ErrConfigReadFailed, "path", configPath, "reason", err.Error())
	}

	dec := yaml.NewDecoder(bytes.NewReader(configFile))
	dec.KnownFields(true)
	if parseErr := dec.Decode(target); parseErr != nil && !errors.Is(parseErr, io.EOF) {
		return domain.Annotate(domain.ErrConfigParseFailed, "path", configPath, "reason", parseErr.Error())
	}

	return nil
}
