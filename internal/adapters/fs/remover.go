package fs

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports"
)

var _ ports.Remover = (*Remover)(nil)

// Remover deletes directory trees inside the project root.
type Remover struct{}

// NewRemover creates a new Remover.
func NewRemover() *Remover {
	return &Remover{}
}

// RemoveAll deletes path, which may be absolute or relative to root.
// Paths resolving to root itself or outside of it are refused.
func (r *Remover) RemoveAll(_ context.Context, root, path string) error {
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	path = filepath.Clean(path)

	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return domain.Annotate(domain.ErrOutputPathOutsideRoot, "path", path, "root", root)
	}

	if err := os.RemoveAll(path); err != nil {
		return domain.Annotate(domain.ErrDeleteFailed, "path", rel, "reason", err.Error())
	}
	return nil
}
