package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.trai.ch/forge/internal/adapters/watcher"
	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports"
	"go.trai.ch/forge/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func startWatcher(t *testing.T, root string, ignore ...string) <-chan ports.WatchEvent {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(gomock.Any()).AnyTimes()

	w, err := watcher.NewWatcher(log)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		_ = w.Stop()
	})
	require.NoError(t, w.Start(ctx, root, ignore...))

	events := make(chan ports.WatchEvent, 100)
	go func() {
		for ev := range w.Events() {
			events <- ev
		}
	}()
	return events
}

func waitFor(t *testing.T, events <-chan ports.WatchEvent, path string) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Path == path {
				return
			}
		case <-timeout:
			t.Fatalf("no event for %s", path)
		}
	}
}

func TestWatcher_ReportsChangesInNestedDirectories(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	require.NoError(t, os.MkdirAll(src, domain.DirPerm))

	events := startWatcher(t, root, domain.DefaultOutputDir)

	file := filepath.Join(src, "main.css")
	require.NoError(t, os.WriteFile(file, []byte("body{}"), domain.FilePerm))
	waitFor(t, events, file)
}

func TestWatcher_WatchesNewDirectories(t *testing.T) {
	root := t.TempDir()
	events := startWatcher(t, root)

	dir := filepath.Join(root, "assets")
	require.NoError(t, os.Mkdir(dir, domain.DirPerm))
	waitFor(t, events, dir)

	file := filepath.Join(dir, "logo.svg")
	require.NoError(t, os.WriteFile(file, []byte("<svg/>"), domain.FilePerm))
	waitFor(t, events, file)
}

func TestWatcher_IgnoresOutputDirectory(t *testing.T) {
	root := t.TempDir()
	dist := filepath.Join(root, "dist")
	require.NoError(t, os.MkdirAll(dist, domain.DirPerm))

	events := startWatcher(t, root, "dist")

	require.NoError(t, os.WriteFile(filepath.Join(dist, "index.html"), []byte("x"), domain.FilePerm))
	marker := filepath.Join(root, "marker.txt")
	require.NoError(t, os.WriteFile(marker, []byte("x"), domain.FilePerm))

	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev := <-events:
			require.NotContains(t, ev.Path, dist+string(filepath.Separator))
			if ev.Path == marker {
				return
			}
		case <-timeout:
			t.Fatal("no event for marker file")
		}
	}
}
