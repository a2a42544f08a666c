package domain

const (
	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "forge.yaml"

	// DefaultOutputDir is the output root used when the configuration names none.
	DefaultOutputDir = "dist"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// Built-in task names.
const (
	TaskClean   = "clean"
	TaskBuild   = "build"
	TaskDefault = "default"
	TaskServe   = "serve"
	TaskWatch   = "watch"
	TaskDev     = "dev"

	// InitSuffix is appended to a compile category name to form its init task.
	InitSuffix = "-init"
)

// ReservedTaskNames lists the names categories may not use.
var ReservedTaskNames = []string{TaskClean, TaskBuild, TaskDefault, TaskServe, TaskWatch, TaskDev}

// InitTaskName returns the name of the compiler init task for a category.
func InitTaskName(category string) string {
	return category + InitSuffix
}
