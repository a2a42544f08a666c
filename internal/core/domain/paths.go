package domain

import (
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
)

var validCategoryNameRegex = regexp.MustCompile("^[a-zA-Z0-9_-]+$")

// Category maps a logical group of source files to a destination inside the output root.
type Category struct {
	// Name is the category name, which is also the name of its build task.
	Name string
	// Pattern is a '/'-separated glob relative to the project root.
	Pattern string
	// Dest is the destination directory relative to the output root. Empty means the output root.
	Dest string
	// Compile routes matched files through the configured compiler instead of copying them.
	Compile bool
}

// Base returns the static directory prefix of the pattern, the part before the first glob segment.
// Output paths preserve the layout of matched files relative to Base.
func (c Category) Base() string {
	return PatternBase(c.Pattern)
}

// Recursive reports whether the pattern can match files below its base directory.
func (c Category) Recursive() bool {
	_, rest := splitPattern(c.Pattern)
	return strings.Contains(rest, "/") || strings.Contains(rest, "**")
}

// PatternBase returns the static directory prefix of a '/'-separated glob pattern.
func PatternBase(pattern string) string {
	base, _ := splitPattern(pattern)
	return base
}

func splitPattern(pattern string) (string, string) {
	segments := strings.Split(pattern, "/")
	for i, seg := range segments {
		if strings.ContainsAny(seg, "*?[{") {
			base := path.Join(segments[:i]...)
			if base == "" {
				base = "."
			}
			return base, strings.Join(segments[i:], "/")
		}
	}
	// A literal path: its directory is the base.
	return path.Dir(pattern), path.Base(pattern)
}

// PathSet is the immutable mapping from categories to source patterns and destinations.
type PathSet struct {
	output     string
	categories []Category
}

// NewPathSet validates the categories and returns the PathSet.
// An empty output root defaults to DefaultOutputDir.
func NewPathSet(output string, categories ...Category) (PathSet, error) {
	if output == "" {
		output = DefaultOutputDir
	}
	output = path.Clean(filepath.ToSlash(output))
	if output == "." || path.IsAbs(output) || escapes(output) {
		return PathSet{}, Annotate(ErrOutputPathOutsideRoot, "output", output)
	}

	if len(categories) == 0 {
		return PathSet{}, ErrNoCategories
	}

	cats := make([]Category, 0, len(categories))
	seen := make(map[string]bool, len(categories))
	for _, c := range categories {
		if err := validateCategory(c); err != nil {
			return PathSet{}, err
		}
		if seen[c.Name] {
			return PathSet{}, Annotate(ErrDuplicateCategory, "category", c.Name)
		}
		seen[c.Name] = true

		c.Dest = path.Clean(filepath.ToSlash(c.Dest))
		if c.Dest == "" {
			c.Dest = "."
		}
		if path.IsAbs(c.Dest) || escapes(c.Dest) {
			return PathSet{}, Annotate(ErrDestinationOutsideRoot, "category", c.Name, "dest", c.Dest)
		}
		cats = append(cats, c)
	}

	if err := checkOverlaps(cats); err != nil {
		return PathSet{}, err
	}

	return PathSet{output: output, categories: cats}, nil
}

func validateCategory(c Category) error {
	if !validCategoryNameRegex.MatchString(c.Name) {
		return Annotate(ErrInvalidCategoryName, "category", c.Name)
	}
	if slices.Contains(ReservedTaskNames, c.Name) || strings.HasSuffix(c.Name, InitSuffix) {
		return Annotate(ErrReservedTaskName, "category", c.Name)
	}
	p := filepath.ToSlash(c.Pattern)
	if p == "" || path.IsAbs(p) || escapes(path.Clean(p)) {
		return Annotate(ErrInvalidPattern, "category", c.Name, "pattern", c.Pattern)
	}
	return nil
}

// checkOverlaps rejects a destination nested inside another category's destination.
// Two categories may share a destination only when neither writes below it.
func checkOverlaps(cats []Category) error {
	for i := range cats {
		for j := i + 1; j < len(cats); j++ {
			a, b := cats[i], cats[j]
			switch {
			case a.Dest == b.Dest:
				if a.Recursive() || b.Recursive() {
					return overlapError(a, b)
				}
			case within(a.Dest, b.Dest), within(b.Dest, a.Dest):
				return overlapError(a, b)
			}
		}
	}
	return nil
}

func overlapError(a, b Category) error {
	return Annotate(ErrOverlappingDestinations, "category", a.Name, "other", b.Name, "dest", b.Dest)
}

// within reports whether child lies strictly below parent. Both are cleaned slash paths.
func within(child, parent string) bool {
	if parent == "." {
		return child != "."
	}
	return strings.HasPrefix(child, parent+"/")
}

func escapes(p string) bool {
	return p == ".." || strings.HasPrefix(p, "../")
}

// Output returns the output root relative to the project root.
func (p PathSet) Output() string {
	return p.output
}

// Categories returns the categories in declaration order.
func (p PathSet) Categories() []Category {
	return slices.Clone(p.categories)
}

// DestDir returns the destination directory of c relative to the project root, in OS form.
func (p PathSet) DestDir(c Category) string {
	return filepath.FromSlash(path.Join(p.output, c.Dest))
}

// HasCompiled reports whether any category routes files through the compiler.
func (p PathSet) HasCompiled() bool {
	return slices.ContainsFunc(p.categories, func(c Category) bool { return c.Compile })
}
