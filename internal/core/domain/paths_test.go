package domain_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/forge/internal/core/domain"
)

func TestCategory_Base(t *testing.T) {
	tests := []struct {
		pattern   string
		base      string
		recursive bool
	}{
		{pattern: "src/*.elm", base: "src", recursive: false},
		{pattern: "src/*.{html,css}", base: "src", recursive: false},
		{pattern: "*.html", base: ".", recursive: false},
		{pattern: "assets/fonts/**/*.woff", base: "assets/fonts", recursive: true},
		{pattern: "src/*/style.css", base: "src", recursive: true},
		{pattern: "src/index.html", base: "src", recursive: false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			c := domain.Category{Name: "c", Pattern: tt.pattern}
			assert.Equal(t, tt.base, c.Base())
			assert.Equal(t, tt.recursive, c.Recursive())
		})
	}
}

func TestNewPathSet(t *testing.T) {
	ps, err := domain.NewPathSet("",
		domain.Category{Name: "compiledSource", Pattern: "src/*.elm", Compile: true},
		domain.Category{Name: "staticAssets", Pattern: "src/*.{html,css}"},
	)
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultOutputDir, ps.Output())
	require.Len(t, ps.Categories(), 2)
	assert.True(t, ps.HasCompiled())

	c := ps.Categories()[1]
	assert.Equal(t, "staticAssets", c.Name)
	assert.Equal(t, ".", c.Dest)
	assert.Equal(t, "dist", ps.DestDir(c))
}

func TestNewPathSet_SubdirectoryDestinations(t *testing.T) {
	ps, err := domain.NewPathSet("public",
		domain.Category{Name: "scripts", Pattern: "src/*.elm", Dest: "js", Compile: true},
		domain.Category{Name: "styles", Pattern: "src/**/*.css", Dest: "css"},
		domain.Category{Name: "fonts", Pattern: "fonts/*.{woff,ttf}", Dest: "fonts/"},
	)
	require.NoError(t, err)

	c := ps.Categories()[2]
	assert.Equal(t, "fonts", c.Dest)
	assert.Equal(t, filepath.Join("public", "fonts"), ps.DestDir(c))
	assert.True(t, ps.HasCompiled())
}

func TestNewPathSet_Errors(t *testing.T) {
	tests := []struct {
		name       string
		output     string
		categories []domain.Category
		want       error
	}{
		{
			name: "no categories",
			want: domain.ErrNoCategories,
		},
		{
			name:       "output is project root",
			output:     ".",
			categories: []domain.Category{{Name: "a", Pattern: "*.html"}},
			want:       domain.ErrOutputPathOutsideRoot,
		},
		{
			name:       "output escapes project root",
			output:     "../site",
			categories: []domain.Category{{Name: "a", Pattern: "*.html"}},
			want:       domain.ErrOutputPathOutsideRoot,
		},
		{
			name:       "invalid name",
			categories: []domain.Category{{Name: "static assets", Pattern: "*.html"}},
			want:       domain.ErrInvalidCategoryName,
		},
		{
			name:       "reserved name",
			categories: []domain.Category{{Name: "build", Pattern: "*.html"}},
			want:       domain.ErrReservedTaskName,
		},
		{
			name:       "init suffix",
			categories: []domain.Category{{Name: "elm-init", Pattern: "*.elm"}},
			want:       domain.ErrReservedTaskName,
		},
		{
			name: "duplicate name",
			categories: []domain.Category{
				{Name: "a", Pattern: "*.html"},
				{Name: "a", Pattern: "*.css", Dest: "css"},
			},
			want: domain.ErrDuplicateCategory,
		},
		{
			name:       "empty pattern",
			categories: []domain.Category{{Name: "a"}},
			want:       domain.ErrInvalidPattern,
		},
		{
			name:       "pattern outside root",
			categories: []domain.Category{{Name: "a", Pattern: "../*.html"}},
			want:       domain.ErrInvalidPattern,
		},
		{
			name:       "destination escapes output",
			categories: []domain.Category{{Name: "a", Pattern: "*.html", Dest: "../x"}},
			want:       domain.ErrDestinationOutsideRoot,
		},
		{
			name: "nested destination",
			categories: []domain.Category{
				{Name: "staticAssets", Pattern: "src/*.{html,css}"},
				{Name: "fonts", Pattern: "src/fonts/*.woff", Dest: "fonts"},
			},
			want: domain.ErrOverlappingDestinations,
		},
		{
			name: "shared destination with recursive pattern",
			categories: []domain.Category{
				{Name: "staticAssets", Pattern: "src/**/*.html"},
				{Name: "compiledSource", Pattern: "src/*.elm", Compile: true},
			},
			want: domain.ErrOverlappingDestinations,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewPathSet(tt.output, tt.categories...)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPathSet_CategoriesIsCopy(t *testing.T) {
	ps, err := domain.NewPathSet("dist", domain.Category{Name: "a", Pattern: "*.html"})
	require.NoError(t, err)

	cats := ps.Categories()
	cats[0].Name = "mutated"

	assert.Equal(t, "a", ps.Categories()[0].Name)
}
