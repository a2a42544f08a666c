package domain

import "time"

// ErrorPolicy controls how the copy/transform pipe reacts to per-file failures.
type ErrorPolicy string

const (
	// PolicyTolerant processes every file and reports all failures afterwards.
	PolicyTolerant ErrorPolicy = "tolerant"
	// PolicyFailFast stops at the first failed file.
	PolicyFailFast ErrorPolicy = "fail-fast"
)

// DefaultDebounceWindow is the default time window for coalescing file events.
const DefaultDebounceWindow = 50 * time.Millisecond

// DefaultServerAddress is the address the dev server listens on by default.
const DefaultServerAddress = "127.0.0.1:3000"

// CompilerConfig describes the external compiler for compile categories.
// Command arguments may contain the {input}, {output} and {outdir} placeholders.
type CompilerConfig struct {
	Init []string
	Cmd  []string
	Ext  string
	Env  map[string]string
}

// ServerConfig configures the development server.
type ServerConfig struct {
	Address string
	Inject  bool
}

// WatchConfig configures the file watch loop.
type WatchConfig struct {
	Debounce time.Duration
}

// Project is the fully loaded configuration of a build.
type Project struct {
	// Root is the absolute project root. Patterns and the output root are relative to it.
	Root        string
	Paths       PathSet
	Compiler    CompilerConfig
	Server      ServerConfig
	Watch       WatchConfig
	ErrorPolicy ErrorPolicy
}
