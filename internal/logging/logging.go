// Package logging provides the compositor's diagnostic stream: slog with a
// handler that stamps every record with the time elapsed since startup, the
// format the log has carried since the first release.
package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Handler formats records as "[   12.345 W] msg key=value". One line per
// record, a single level char, elapsed time since process start.
type Handler struct {
	mu     *sync.Mutex
	w      io.Writer
	level  slog.Level
	start  time.Time
	prefix string // preformatted attrs from WithAttrs
	groups string
}

// NewHandler builds a handler writing to w at the given level.
func NewHandler(w io.Writer, level slog.Level) *Handler {
	return NewHandlerAt(w, level, time.Now())
}

// NewHandlerAt is NewHandler with an explicit start instant.
func NewHandlerAt(w io.Writer, level slog.Level, start time.Time) *Handler {
	return &Handler{
		mu:    &sync.Mutex{},
		w:     w,
		level: level,
		start: start,
	}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *Handler) Handle(_ context.Context, rec slog.Record) error {
	elapsed := rec.Time.Sub(h.start)
	if rec.Time.IsZero() {
		elapsed = time.Since(h.start)
	}
	if elapsed < 0 {
		elapsed = 0
	}
	ms := elapsed.Milliseconds()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "[%6d.%03d %c] %s", ms/1000, ms%1000, levelChar(rec.Level), rec.Message)
	buf.WriteString(h.prefix)
	rec.Attrs(func(a slog.Attr) bool {
		h.appendAttr(&buf, a)
		return true
	})
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	var buf bytes.Buffer
	buf.WriteString(h.prefix)
	for _, a := range attrs {
		h.appendAttr(&buf, a)
	}
	clone.prefix = buf.String()
	return &clone
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = h.groups + name + "."
	return &clone
}

func (h *Handler) appendAttr(buf *bytes.Buffer, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}
	fmt.Fprintf(buf, " %s%s=%v", h.groups, a.Key, a.Value.Resolve())
}

func levelChar(level slog.Level) byte {
	switch {
	case level < slog.LevelInfo:
		return 'd'
	case level < slog.LevelWarn:
		return 'i'
	case level < slog.LevelError:
		return 'W'
	default:
		return '!'
	}
}

// Setup builds the root logger. With a path the stream goes to that file,
// append mode; otherwise it stays on stderr. The returned func closes the
// file, call it on shutdown.
func Setup(path string) (*slog.Logger, func(), error) {
	w := io.Writer(os.Stderr)
	closer := func() {}
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = f
		closer = func() { f.Close() }
	}
	return slog.New(NewHandler(w, slog.LevelDebug)), closer, nil
}
