package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/forge/internal/ui/output"
	"go.trai.ch/forge/internal/ui/style"
)

// PrettyHandler is a slog.Handler printing one marked, colored message per record.
// Attributes and groups are dropped: forge reports structured context through
// error chains, which Logger.Error renders into the message itself.
type PrettyHandler struct {
	mu    *sync.Mutex
	out   *termenv.Output
	level slog.Leveler
}

// NewPrettyHandler creates a PrettyHandler writing to w, or to stderr when w is nil.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if w == nil {
		w = os.Stderr
	}
	h := &PrettyHandler{mu: &sync.Mutex{}, out: output.New(w), level: slog.LevelInfo}
	if opts != nil && opts.Level != nil {
		h.level = opts.Level
	}
	return h
}

func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	marker, color := decoration(r.Level)
	line := r.Message
	if marker != "" {
		line = marker + " " + line
	}
	styled := h.out.String(line).Foreground(termenv.RGBColor(string(color))).String()

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.WriteString(styled + "\n")
	return err
}

func (h *PrettyHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h *PrettyHandler) WithGroup(string) slog.Handler { return h }

// decoration maps a level to its marker and color. Info lines carry no marker.
func decoration(level slog.Level) (string, lipgloss.Color) {
	switch {
	case level >= slog.LevelError:
		return style.Cross, style.Red
	case level >= slog.LevelWarn:
		return style.Warning, style.Yellow
	case level < slog.LevelInfo:
		return style.Dot, style.Iris
	default:
		return "", style.Slate
	}
}
