package logger_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/forge/internal/adapters/logger"
)

func TestPrettyHandler(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var buf bytes.Buffer
	l := slog.New(logger.NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	l.With("task", "build").WithGroup("run").Debug("sh: compiled", "file", "Main.elm")
	l.Info("ready")
	l.Error("broken")

	assert.Equal(t, "● sh: compiled\nready\n✗ broken\n", buf.String())
}

func TestPrettyHandler_DefaultLevel(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var buf bytes.Buffer
	l := slog.New(logger.NewPrettyHandler(&buf, nil))
	l.Debug("hidden")
	l.Warn("shown")

	assert.Equal(t, "! shown\n", buf.String())
}
