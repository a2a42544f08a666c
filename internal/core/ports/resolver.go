package ports

// InputResolver defines the interface for resolving input files.
//
//go:generate mockgen -destination=mocks/mock_resolver.go -package=mocks -source=resolver.go
type InputResolver interface {
	// ResolveInputs resolves the given glob patterns, relative to root, to a sorted list
	// of absolute file paths. Patterns without matches contribute nothing.
	// Files below the directories in ignore, absolute or relative to root, are never returned.
	ResolveInputs(patterns []string, root string, ignore ...string) ([]string, error)
}
