package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/forge/internal/adapters/fs"
	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports"
)

func TestResolver_ResolveInputs(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/Main.elm":           "module Main",
		"src/Page/Home.elm":      "module Page.Home",
		"src/index.html":         "<html>",
		"src/main.css":           "body{}",
		"src/themes/dark.css":    "body{}",
		"assets/fonts/a.woff":    "font",
		"assets/fonts/sub/b.ttf": "font",
	})
	r := fs.NewResolver(fs.NewWalker())

	abs := func(rel string) string { return filepath.Join(root, filepath.FromSlash(rel)) }

	tests := []struct {
		name     string
		patterns []string
		want     []string
	}{
		{
			name:     "flat pattern stays in its directory",
			patterns: []string{"src/*.elm"},
			want:     []string{abs("src/Main.elm")},
		},
		{
			name:     "brace alternatives",
			patterns: []string{"src/*.{html,css}"},
			want:     []string{abs("src/index.html"), abs("src/main.css")},
		},
		{
			name:     "recursive pattern",
			patterns: []string{"assets/fonts/**/*.{woff,ttf}"},
			want:     []string{abs("assets/fonts/sub/b.ttf")},
		},
		{
			name:     "literal path",
			patterns: []string{"src/index.html"},
			want:     []string{abs("src/index.html")},
		},
		{
			name:     "overlapping patterns are deduplicated and sorted",
			patterns: []string{"src/**/*.css", "src/*.css"},
			want:     []string{abs("src/main.css"), abs("src/themes/dark.css")},
		},
		{
			name:     "no matches",
			patterns: []string{"src/*.js"},
			want:     []string{},
		},
		{
			name:     "missing base directory",
			patterns: []string{"lib/*.elm"},
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ResolveInputs(tt.patterns, root)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolver_ResolveInputs_InvalidPattern(t *testing.T) {
	r := fs.NewResolver(fs.NewWalker())
	_, err := r.ResolveInputs([]string{"src/["}, t.TempDir())
	require.ErrorIs(t, err, domain.ErrInputResolutionFailed)
}

func TestResolver_ResolveInputs_IgnoresDirectories(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.css":            "a{}",
		"dist/a.css":       "a{}",
		"public/b.css":     "b{}",
		"styles/c.css":     "c{}",
		"styles/sub/d.css": "d{}",
	})
	r := fs.NewResolver(fs.NewWalker())

	got, err := r.ResolveInputs([]string{"**.css"}, root, filepath.Join(root, "dist"), "public")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.css"),
		filepath.Join(root, "styles", "c.css"),
		filepath.Join(root, "styles", "sub", "d.css"),
	}, got)
}

func TestResolver_RepeatedBuildsDoNotReadOutput(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.css": "a{}"})
	dest := filepath.Join(root, "dist")
	r := fs.NewResolver(fs.NewWalker())

	for range 3 {
		files, err := r.ResolveInputs([]string{"**.css"}, root, dest)
		require.NoError(t, err)
		require.Equal(t, []string{filepath.Join(root, "a.css")}, files)

		_, err = fs.NewPipe().Run(context.Background(), ports.PipeSpec{
			Root:    root,
			Files:   files,
			Base:    root,
			DestDir: dest,
		})
		require.NoError(t, err)
	}

	assert.FileExists(t, filepath.Join(dest, "a.css"))
	_, err := os.Stat(filepath.Join(dest, "dist"))
	assert.True(t, os.IsNotExist(err), "output tree must not contain a copy of itself")
}
