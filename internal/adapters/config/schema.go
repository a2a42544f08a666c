package config

// Forgefile represents the structure of the forge.yaml configuration file.
type Forgefile struct {
	Version    string        `yaml:"version"`
	Root       string        `yaml:"root"`
	Dest       string        `yaml:"dest"`
	Errors     string        `yaml:"errors"`
	Categories []CategoryDTO `yaml:"categories"`
	Compiler   CompilerDTO   `yaml:"compiler"`
	Server     ServerDTO     `yaml:"server"`
	Watch      WatchDTO      `yaml:"watch"`
}

// CategoryDTO represents a path category in the configuration.
type CategoryDTO struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
	Dest    string `yaml:"dest"`
	Compile bool   `yaml:"compile"`
}

// CompilerDTO represents the external compiler used by compile categories.
type CompilerDTO struct {
	Init []string          `yaml:"init"`
	Cmd  []string          `yaml:"cmd"`
	Ext  string            `yaml:"ext"`
	Env  map[string]string `yaml:"env"`
}

// ServerDTO represents the development server settings.
type ServerDTO struct {
	Address string `yaml:"address"`
	Inject  *bool  `yaml:"inject"`
}

// WatchDTO represents the watch loop settings.
type WatchDTO struct {
	Debounce string `yaml:"debounce"`
}
