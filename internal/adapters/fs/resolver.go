package fs

import (
	"path/filepath"
	"slices"

	"github.com/gobwas/glob"
	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports"
)

var _ ports.InputResolver = (*Resolver)(nil)

// Resolver implements ports.InputResolver with '/'-separated globs.
// '*' stays within one path segment, '**' crosses segments.
type Resolver struct {
	walker *Walker
}

// NewResolver creates a new Resolver.
func NewResolver(walker *Walker) *Resolver {
	return &Resolver{walker: walker}
}

// ResolveInputs returns the sorted absolute paths of files below root matching any pattern.
// Directories in ignore are not walked, so the output tree never feeds back into a build.
func (r *Resolver) ResolveInputs(patterns []string, root string, ignore ...string) ([]string, error) {
	seen := make(map[string]bool)

	skip := make([]string, 0, len(ignore))
	for _, dir := range ignore {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(root, dir)
		}
		skip = append(skip, dir)
	}

	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, domain.Annotate(domain.ErrInputResolutionFailed,
				"pattern", pattern, "reason", err.Error())
		}

		base := filepath.Join(root, filepath.FromSlash(domain.PatternBase(pattern)))
		for path := range r.walker.WalkFiles(base, skip...) {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				continue
			}
			if g.Match(filepath.ToSlash(rel)) {
				seen[path] = true
			}
		}
	}

	result := make([]string, 0, len(seen))
	for path := range seen {
		result = append(result, path)
	}
	slices.Sort(result)
	return result, nil
}
