// Package fs provides file system adapters for resolving, copying and removing files.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
)

// skippedDirectories are never descended into.
var skippedDirectories = map[string]bool{
	".git":         true,
	".jj":          true,
	"node_modules": true,
}

// Walker walks directory trees.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields every regular file below root, skipping VCS and dependency
// directories as well as any directory listed in ignores (absolute paths).
// A missing root yields nothing.
func (w *Walker) WalkFiles(root string, ignores ...string) iter.Seq[string] {
	skip := make(map[string]bool, len(ignores))
	for _, dir := range ignores {
		skip[filepath.Clean(dir)] = true
	}

	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if d != nil && d.IsDir() && path != root {
					return filepath.SkipDir
				}
				return nil //nolint:nilerr // unreadable entries are skipped
			}

			if d.IsDir() {
				if path != root && (skippedDirectories[d.Name()] || skip[path]) {
					return filepath.SkipDir
				}
				return nil
			}

			if !d.Type().IsRegular() {
				return nil
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}
