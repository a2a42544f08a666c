package shell

import (
	"bytes"
	"strings"

	"go.trai.ch/forge/internal/core/ports"
)

// logWriter forwards complete lines of command output to the logger at debug level.
type logWriter struct {
	logger ports.Logger
	prefix string
	buf    bytes.Buffer
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	for {
		i := bytes.IndexByte(w.buf.Bytes(), '\n')
		if i < 0 {
			break
		}
		line := string(w.buf.Next(i + 1))
		w.emit(strings.TrimRight(line, "\r\n"))
	}
	return len(p), nil
}

// flush emits a trailing line without newline.
func (w *logWriter) flush() {
	if w.buf.Len() == 0 {
		return
	}
	w.emit(w.buf.String())
	w.buf.Reset()
}

func (w *logWriter) emit(line string) {
	w.logger.Debug(w.prefix + ": " + line)
}
