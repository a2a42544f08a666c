package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `root: .
dest: dist
categories:
  - name: staticAssets
    pattern: "src/*.{html,css}"
`

func TestRun(t *testing.T) {
	tests := []struct {
		name         string
		config       string
		args         []string
		expectedExit int
		expectedFile string
	}{
		{
			name:         "build copies static assets",
			config:       testConfig,
			args:         []string{"build"},
			expectedExit: 0,
			expectedFile: "dist/index.html",
		},
		{
			name:         "no arguments runs the default task",
			config:       testConfig,
			expectedExit: 0,
			expectedFile: "dist/index.html",
		},
		{
			name:         "missing config",
			args:         []string{"build"},
			expectedExit: 1,
		},
		{
			name:         "invalid config",
			config:       "categories: [",
			args:         []string{"build"},
			expectedExit: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "src"), 0o750))
			require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "src", "index.html"), []byte("<p>hi</p>"), 0o600))
			if tt.config != "" {
				require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "forge.yaml"), []byte(tt.config), 0o600))
			}
			t.Chdir(tmpDir)

			assert.Equal(t, tt.expectedExit, run(tt.args))
			if tt.expectedFile != "" {
				assert.FileExists(t, filepath.Join(tmpDir, filepath.FromSlash(tt.expectedFile)))
			}
		})
	}
}
