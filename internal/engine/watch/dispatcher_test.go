package watch_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports/mocks"
	"go.trai.ch/forge/internal/engine/watch"
	"go.uber.org/mock/gomock"
)

// runLog records task runs and whether any two runs of one task overlapped.
type runLog struct {
	mu       sync.Mutex
	active   map[string]int
	runs     map[string]int
	overlaps int
}

func newRunLog() *runLog {
	return &runLog{active: map[string]int{}, runs: map[string]int{}}
}

func (l *runLog) run(d time.Duration, fail map[string]error) watch.RunFunc {
	return func(_ context.Context, task string) error {
		l.mu.Lock()
		l.active[task]++
		if l.active[task] > 1 {
			l.overlaps++
		}
		l.mu.Unlock()

		time.Sleep(d)

		l.mu.Lock()
		l.active[task]--
		l.runs[task]++
		l.mu.Unlock()
		return fail[task]
	}
}

func quietLogger(t *testing.T) *mocks.MockLogger {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	return log
}

func TestDispatcher_RapidEventsRunSerially(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		l := newRunLog()
		d := watch.New("/project", l.run(time.Second, nil), quietLogger(t))
		require.NoError(t, d.Watch("src/*.{html,css}", "staticAssets"))

		ctx := context.Background()
		d.Notify(ctx, []string{"/project/src/index.html"})
		d.Notify(ctx, []string{"/project/src/main.css"})
		d.Wait()

		assert.Equal(t, 2, l.runs["staticAssets"])
		assert.Zero(t, l.overlaps)
	})
}

func TestDispatcher_QueuedRunsAreNotDropped(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		l := newRunLog()
		d := watch.New("/project", l.run(time.Second, nil), quietLogger(t))
		require.NoError(t, d.Watch("src/*.elm", "compiledSource"))

		ctx := context.Background()
		for range 5 {
			d.Notify(ctx, []string{"/project/src/Main.elm"})
			time.Sleep(100 * time.Millisecond)
		}
		d.Wait()

		assert.Equal(t, 5, l.runs["compiledSource"])
		assert.Zero(t, l.overlaps)
	})
}

func TestDispatcher_DifferentTasksRunConcurrently(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		l := newRunLog()
		d := watch.New("/project", l.run(time.Second, nil), quietLogger(t))
		require.NoError(t, d.Watch("src/*.elm", "compiledSource"))
		require.NoError(t, d.Watch("src/*.{html,css}", "staticAssets"))

		start := time.Now()
		tasks := d.Notify(context.Background(), []string{"/project/src/Main.elm", "/project/src/index.html"})
		d.Wait()

		assert.Equal(t, []string{"compiledSource", "staticAssets"}, tasks)
		assert.Equal(t, time.Second, time.Since(start))
		assert.Equal(t, 1, l.runs["compiledSource"])
		assert.Equal(t, 1, l.runs["staticAssets"])
	})
}

func TestDispatcher_FailureKeepsWatching(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		log := mocks.NewMockLogger(ctrl)
		log.EXPECT().Debug(gomock.Any()).AnyTimes()

		boom := &domain.TaskError{Task: "staticAssets", Err: domain.ErrFileProcessingFailed}
		log.EXPECT().Error(boom).Times(2)

		l := newRunLog()
		d := watch.New("/project", l.run(time.Millisecond, map[string]error{"staticAssets": boom}), log)
		require.NoError(t, d.Watch("src/*.css", "staticAssets"))

		var mu sync.Mutex
		var results []error
		d.OnResult = func(task string, err error) {
			mu.Lock()
			defer mu.Unlock()
			assert.Equal(t, "staticAssets", task)
			results = append(results, err)
		}

		ctx := context.Background()
		d.Notify(ctx, []string{"/project/src/main.css"})
		d.Wait()
		d.Notify(ctx, []string{"/project/src/main.css"})
		d.Wait()

		require.Len(t, results, 2)
		assert.True(t, errors.Is(results[1], domain.ErrFileProcessingFailed))
	})
}

func TestDispatcher_Matching(t *testing.T) {
	root := filepath.FromSlash("/project")
	d := watch.New(root, func(context.Context, string) error { return nil }, quietLogger(t))
	require.NoError(t, d.Watch("src/*.elm", "compiledSource"))
	require.NoError(t, d.Watch("src/**/*.css", "styles"))
	require.NoError(t, d.Watch("src/*.elm", "compiledSource"))

	tests := []struct {
		name  string
		paths []string
		want  []string
	}{
		{name: "absolute path", paths: []string{filepath.Join(root, "src", "Main.elm")}, want: []string{"compiledSource"}},
		{name: "relative path", paths: []string{"src/Main.elm"}, want: []string{"compiledSource"}},
		{name: "nested file", paths: []string{"src/themes/dark/site.css"}, want: []string{"styles"}},
		{name: "flat pattern does not recurse", paths: []string{"src/pages/Home.elm"}, want: nil},
		{name: "outside root", paths: []string{filepath.FromSlash("/elsewhere/src/Main.elm")}, want: nil},
		{name: "duplicate subscriptions enqueue once", paths: []string{"src/A.elm", "src/B.elm"}, want: []string{"compiledSource"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Notify(context.Background(), tt.paths)
			d.Wait()
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDispatcher_InvalidPattern(t *testing.T) {
	d := watch.New("/project", nil, quietLogger(t))
	err := d.Watch("src/[", "broken")
	require.ErrorIs(t, err, domain.ErrInvalidPattern)
}

func TestDispatcher_IgnoresNotificationsAfterShutdown(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		l := newRunLog()
		d := watch.New("/project", l.run(time.Millisecond, nil), quietLogger(t))
		require.NoError(t, d.Watch("src/*.css", "staticAssets"))

		ctx, cancel := context.WithCancel(context.Background())
		d.Notify(ctx, []string{"/project/src/main.css"})
		d.Wait()

		cancel()
		d.Notify(ctx, []string{"/project/src/main.css"})
		d.Wait()

		d.Close()
		d.Notify(context.Background(), []string{"/project/src/main.css"})
		d.Wait()

		assert.Equal(t, 1, l.runs["staticAssets"])
	})
}

func TestDispatcher_CancelledRunIsNotLogged(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		log := mocks.NewMockLogger(ctrl)
		log.EXPECT().Debug(gomock.Any()).AnyTimes()
		log.EXPECT().Error(gomock.Any()).Times(0)

		ctx, cancel := context.WithCancel(context.Background())
		run := func(ctx context.Context, _ string) error {
			cancel()
			return ctx.Err()
		}
		d := watch.New("/project", run, log)
		require.NoError(t, d.Watch("src/*.css", "staticAssets"))

		d.Notify(ctx, []string{"/project/src/main.css"})
		d.Close()
	})
}
