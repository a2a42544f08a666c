package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/forge/internal/adapters/config"
	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func createFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
	require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
	return path
}

func newLoader(t *testing.T) (*config.Loader, *mocks.MockLogger) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	return config.NewLoader(mockLogger), mockLogger
}

const fullConfig = `
dest: public
errors: fail-fast
categories:
  - name: compiledSource
    pattern: src/*.elm
    dest: js
    compile: true
  - name: staticAssets
    pattern: "src/*.{html,css}"
compiler:
  init: [elm, package, install, --yes]
  cmd: [elm, make, "{input}", --output, "{output}"]
  ext: .js
  env:
    ELM_HOME: .elm
server:
  address: 127.0.0.1:8080
  inject: false
watch:
  debounce: 200ms
`

func TestLoader_Load_Full(t *testing.T) {
	loader, _ := newLoader(t)
	root := t.TempDir()
	createFile(t, root, domain.ConfigFileName, fullConfig)

	project, err := loader.Load(root, "")
	require.NoError(t, err)

	assert.Equal(t, root, project.Root)
	assert.Equal(t, "public", project.Paths.Output())
	assert.Equal(t, domain.PolicyFailFast, project.ErrorPolicy)

	cats := project.Paths.Categories()
	require.Len(t, cats, 2)
	assert.Equal(t, domain.Category{Name: "compiledSource", Pattern: "src/*.elm", Dest: "js", Compile: true}, cats[0])
	assert.Equal(t, "staticAssets", cats[1].Name)
	assert.Equal(t, ".", cats[1].Dest)

	assert.Equal(t, []string{"elm", "package", "install", "--yes"}, project.Compiler.Init)
	assert.Equal(t, []string{"elm", "make", "{input}", "--output", "{output}"}, project.Compiler.Cmd)
	assert.Equal(t, ".js", project.Compiler.Ext)
	assert.Equal(t, map[string]string{"ELM_HOME": ".elm"}, project.Compiler.Env)

	assert.Equal(t, domain.ServerConfig{Address: "127.0.0.1:8080", Inject: false}, project.Server)
	assert.Equal(t, 200*time.Millisecond, project.Watch.Debounce)
}

func TestLoader_Load_Defaults(t *testing.T) {
	loader, _ := newLoader(t)
	root := t.TempDir()
	createFile(t, root, domain.ConfigFileName, `
categories:
  - name: staticAssets
    pattern: "src/*.{html,css}"
`)

	project, err := loader.Load(root, "")
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultOutputDir, project.Paths.Output())
	assert.Equal(t, domain.PolicyTolerant, project.ErrorPolicy)
	assert.Equal(t, domain.DefaultServerAddress, project.Server.Address)
	assert.True(t, project.Server.Inject)
	assert.Equal(t, domain.DefaultDebounceWindow, project.Watch.Debounce)
	assert.False(t, project.Paths.HasCompiled())
}

func TestLoader_Load_DiscoversUpwards(t *testing.T) {
	loader, _ := newLoader(t)
	root := t.TempDir()
	createFile(t, root, domain.ConfigFileName, `
categories:
  - name: staticAssets
    pattern: "src/*.html"
`)
	nested := filepath.Join(root, "src", "pages")
	require.NoError(t, os.MkdirAll(nested, domain.DirPerm))

	project, err := loader.Load(nested, "")
	require.NoError(t, err)
	assert.Equal(t, root, project.Root)
}

func TestLoader_Load_ExplicitPathAndRoot(t *testing.T) {
	loader, _ := newLoader(t)
	dir := t.TempDir()
	site := filepath.Join(dir, "site")
	require.NoError(t, os.MkdirAll(site, domain.DirPerm))
	createFile(t, dir, "configs/site.yaml", `
root: ../site
categories:
  - name: staticAssets
    pattern: "*.html"
`)

	project, err := loader.Load(dir, filepath.Join("configs", "site.yaml"))
	require.NoError(t, err)
	assert.Equal(t, site, project.Root)
}

func TestLoader_Load_NotFound(t *testing.T) {
	loader, _ := newLoader(t)

	_, err := loader.Load(t.TempDir(), "")
	require.ErrorIs(t, err, domain.ErrConfigNotFound)

	_, err = loader.Load(t.TempDir(), "missing.yaml")
	require.ErrorIs(t, err, domain.ErrConfigNotFound)
}

func TestLoader_Load_WarnsAboutUnusedCompiler(t *testing.T) {
	loader, mockLogger := newLoader(t)
	mockLogger.EXPECT().Warn("compiler is configured but no category sets compile: true")

	root := t.TempDir()
	createFile(t, root, domain.ConfigFileName, `
categories:
  - name: staticAssets
    pattern: "src/*.html"
compiler:
  cmd: [elm, make, "{input}"]
`)

	_, err := loader.Load(root, "")
	require.NoError(t, err)
}

func TestLoader_Load_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{
			name:    "malformed yaml",
			content: "categories: [",
			want:    domain.ErrConfigParseFailed,
		},
		{
			name:    "unknown field",
			content: "categorys: []",
			want:    domain.ErrConfigParseFailed,
		},
		{
			name:    "empty file",
			content: "",
			want:    domain.ErrNoCategories,
		},
		{
			name: "invalid glob",
			content: `
categories:
  - name: broken
    pattern: "src/[.html"
`,
			want: domain.ErrInvalidPattern,
		},
		{
			name: "compile category without compiler",
			content: `
categories:
  - name: compiledSource
    pattern: src/*.elm
    compile: true
`,
			want: domain.ErrMissingCompiler,
		},
		{
			name: "unknown error policy",
			content: `
errors: ignore
categories:
  - name: staticAssets
    pattern: "*.html"
`,
			want: domain.ErrInvalidErrorPolicy,
		},
		{
			name: "bad debounce",
			content: `
watch:
  debounce: soon
categories:
  - name: staticAssets
    pattern: "*.html"
`,
			want: domain.ErrInvalidDebounce,
		},
		{
			name: "reserved category name",
			content: `
categories:
  - name: watch
    pattern: "*.html"
`,
			want: domain.ErrReservedTaskName,
		},
		{
			name: "nested destinations",
			content: `
categories:
  - name: staticAssets
    pattern: "src/*.html"
  - name: fonts
    pattern: "fonts/*.woff"
    dest: fonts
`,
			want: domain.ErrOverlappingDestinations,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader, _ := newLoader(t)
			root := t.TempDir()
			createFile(t, root, domain.ConfigFileName, tt.content)

			_, err := loader.Load(root, "")
			require.ErrorIs(t, err, tt.want)
		})
	}
}
