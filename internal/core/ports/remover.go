package ports

import "context"

// Remover deletes directory trees.
//
//go:generate mockgen -source=remover.go -destination=mocks/mock_remover.go -package=mocks
type Remover interface {
	// RemoveAll deletes path and everything below it. path must lie inside root.
	// A missing path is not an error.
	RemoveAll(ctx context.Context, root, path string) error
}
