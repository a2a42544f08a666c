package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/forge/internal/adapters/telemetry"
	"go.trai.ch/forge/internal/core/ports"
	"go.trai.ch/forge/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestBridge_ReportsTaskSpans(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)

	var startedID string
	gomock.InOrder(
		renderer.EXPECT().
			OnTaskStart(gomock.Any(), "", "staticAssets", gomock.Any()).
			Do(func(spanID, _, _ string, _ time.Time) { startedID = spanID }),
		renderer.EXPECT().
			OnTaskComplete(gomock.Any(), gomock.Any(), nil).
			Do(func(spanID string, _ time.Time, _ error) {
				assert.Equal(t, startedID, spanID)
			}),
		renderer.EXPECT().Stop().Return(nil),
	)

	p := telemetry.NewProvider(renderer)
	_, span := p.Tracer().Start(context.Background(), "staticAssets",
		ports.WithAttribute(ports.TaskAttribute, "staticAssets"))
	span.End()

	require.NoError(t, p.Shutdown(context.Background()))
	assert.NotEmpty(t, startedID)
}

func TestBridge_ReportsFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)

	renderer.EXPECT().OnTaskStart(gomock.Any(), gomock.Any(), "clean", gomock.Any())
	renderer.EXPECT().
		OnTaskComplete(gomock.Any(), gomock.Any(), gomock.Any()).
		Do(func(_ string, _ time.Time, err error) {
			require.Error(t, err)
			assert.Equal(t, "failed to delete output directory", err.Error())
		})
	renderer.EXPECT().Stop().Return(nil)

	p := telemetry.NewProvider(renderer)
	_, span := p.Tracer().Start(context.Background(), "clean",
		ports.WithAttribute(ports.TaskAttribute, "clean"))
	span.RecordError(errors.New("failed to delete output directory"))
	span.End()

	require.NoError(t, p.Shutdown(context.Background()))
}

func TestBridge_IgnoresUnmarkedSpans(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)
	renderer.EXPECT().Stop().Return(nil)

	p := telemetry.NewProvider(renderer)
	_, span := p.Tracer().Start(context.Background(), "run")
	span.End()

	require.NoError(t, p.Shutdown(context.Background()))
}

func TestBridge_NilRenderer(t *testing.T) {
	b := telemetry.NewBridge(nil)
	require.NoError(t, b.ForceFlush(context.Background()))
	require.NoError(t, b.Shutdown(context.Background()))
}
