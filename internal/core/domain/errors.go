package domain

import (
	"fmt"
	"strings"

	"go.trai.ch/zerr"
)

var (
	// ErrTaskAlreadyExists is returned when attempting to register a task with a name that already exists.
	ErrTaskAlreadyExists = zerr.New("task already exists")

	// ErrUnknownDependency is returned when a task references a dependency that is not registered.
	ErrUnknownDependency = zerr.New("unknown dependency")

	// ErrCycleDetected is returned when a cycle is detected in the task dependency graph.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrTaskNotFound is returned when a requested task is not found in the graph.
	ErrTaskNotFound = zerr.New("task not found")

	// ErrEmptyTaskName is returned when a task is registered without a name.
	ErrEmptyTaskName = zerr.New("task name must not be empty")

	// ErrTaskActionFailed is returned when a task action signals an error.
	ErrTaskActionFailed = zerr.New("task action failed")

	// ErrDeleteFailed is returned when the output tree cannot be removed.
	ErrDeleteFailed = zerr.New("failed to delete output directory")

	// ErrOutputPathOutsideRoot is returned when an output path is outside the project root.
	ErrOutputPathOutsideRoot = zerr.New("output path is outside project root")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigNotFound is returned when the config file cannot be found.
	ErrConfigNotFound = zerr.New("could not find forge.yaml")

	// ErrFailedToGetRoot is returned when the project root path cannot be determined.
	ErrFailedToGetRoot = zerr.New("failed to get absolute path of project root")

	// ErrNoCategories is returned when the configuration declares no path categories.
	ErrNoCategories = zerr.New("no path categories configured")

	// ErrInvalidCategoryName is returned when a category name contains invalid characters.
	ErrInvalidCategoryName = zerr.New("category name can only contain alphanumeric characters, hyphens and underscores")

	// ErrReservedTaskName is returned when a category would shadow a built-in task.
	ErrReservedTaskName = zerr.New("category name is reserved")

	// ErrDuplicateCategory is returned when two categories share a name.
	ErrDuplicateCategory = zerr.New("duplicate category name")

	// ErrInvalidPattern is returned when a category pattern is not a valid glob.
	ErrInvalidPattern = zerr.New("invalid glob pattern")

	// ErrDestinationOutsideRoot is returned when a category destination escapes the output root.
	ErrDestinationOutsideRoot = zerr.New("category destination is outside the output root")

	// ErrOverlappingDestinations is returned when two categories write to overlapping directories.
	ErrOverlappingDestinations = zerr.New("category destinations overlap")

	// ErrMissingCompiler is returned when a compile category exists but no compiler command is configured.
	ErrMissingCompiler = zerr.New("compile category requires compiler.cmd")

	// ErrInvalidErrorPolicy is returned when the error policy is not recognized.
	ErrInvalidErrorPolicy = zerr.New("invalid error policy, expected 'tolerant' or 'fail-fast'")

	// ErrInvalidDebounce is returned when the watch debounce window cannot be parsed.
	ErrInvalidDebounce = zerr.New("invalid watch debounce duration")

	// ErrInputResolutionFailed is returned when input resolution fails.
	ErrInputResolutionFailed = zerr.New("failed to resolve inputs")

	// ErrFileProcessingFailed is returned when a single file cannot be copied or transformed.
	ErrFileProcessingFailed = zerr.New("failed to process file")

	// ErrCompileFailed is returned when the external compiler exits with an error.
	ErrCompileFailed = zerr.New("compiler failed")

	// ErrCompilerInitFailed is returned when the compiler init command fails.
	ErrCompilerInitFailed = zerr.New("compiler init failed")

	// ErrServerStartFailed is returned when the dev server cannot listen.
	ErrServerStartFailed = zerr.New("failed to start dev server")

	// ErrWatcherStartFailed is returned when the file watcher cannot be started.
	ErrWatcherStartFailed = zerr.New("failed to start file watcher")
)

// Annotate attaches key/value metadata to a sentinel error.
// The returned error still matches the sentinel with errors.Is.
func Annotate(err error, kv ...any) error {
	if err == nil {
		return nil
	}
	out := zerr.Wrap(err, "")
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		out = zerr.With(out, key, kv[i+1])
	}
	return out
}

// CycleError reports a dependency cycle. Cycle starts and ends with the same task.
type CycleError struct {
	Cycle []string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCycleDetected.Error(), strings.Join(e.Cycle, " -> "))
}

// Is reports whether target is ErrCycleDetected.
func (e *CycleError) Is(target error) bool {
	return target == ErrCycleDetected
}

// Tasks returns the distinct task names taking part in the cycle.
func (e *CycleError) Tasks() []string {
	if len(e.Cycle) < 2 {
		return e.Cycle
	}
	return e.Cycle[:len(e.Cycle)-1]
}

// TaskError reports the failure of a single task action within a build run.
type TaskError struct {
	Task  string
	RunID string
	Err   error
}

// Error implements the error interface.
func (e *TaskError) Error() string {
	return fmt.Sprintf("task %q failed: %v", e.Task, e.Err)
}

// Message returns the failure line without the cause.
func (e *TaskError) Message() string {
	return fmt.Sprintf("task %q failed", e.Task)
}

// Cause returns the action's error.
func (e *TaskError) Cause() error {
	return e.Err
}

// Unwrap exposes both ErrTaskActionFailed and the action's own error.
func (e *TaskError) Unwrap() []error {
	return []error{ErrTaskActionFailed, e.Err}
}

// FileError reports the failure of one file in a copy or compile pass.
type FileError struct {
	// Path is the file's path relative to the project root.
	Path string
	Err  error
}

// Error implements the error interface.
func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", ErrFileProcessingFailed.Error(), e.Path, e.Err)
}

// Message returns the failure line without the cause.
func (e *FileError) Message() string {
	return ErrFileProcessingFailed.Error()
}

// Metadata returns the failed file.
func (e *FileError) Metadata() map[string]any {
	return map[string]any{"file": e.Path}
}

// Cause returns the underlying error.
func (e *FileError) Cause() error {
	return e.Err
}

// Unwrap exposes both ErrFileProcessingFailed and the underlying error.
func (e *FileError) Unwrap() []error {
	return []error{ErrFileProcessingFailed, e.Err}
}
