// Package logger provides slog handlers tuned for terminal use. The
// ColorHandler colors output by level and highlights store activity
// (loads, imports, exports) in green so long-running jobs are easy to
// follow.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// ANSI escape sequences used by ColorHandler.
const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiGray   = "\033[90m"
)

// storeActivityMarkers pick out messages that report progress against
// the graph store. Matched messages render green regardless of level
// (warnings and errors keep their own color).
var storeActivityMarkers = []string{
	"loaded",
	"imported",
	"exported",
	"linked",
	"persist",
}

// ColorHandler is a slog.Handler that writes human-readable, colored
// lines. It is safe for concurrent use.
type ColorHandler struct {
	opts   slog.HandlerOptions
	prefix string // preformatted attrs from WithAttrs
	groups []string

	mu *sync.Mutex
	w  io.Writer
}

// NewColorHandler returns a handler writing colored lines to w. A nil
// opts uses slog.LevelInfo.
func NewColorHandler(w io.Writer, opts *slog.HandlerOptions) *ColorHandler {
	h := &ColorHandler{
		mu: &sync.Mutex{},
		w:  w,
	}
	if opts != nil {
		h.opts = *opts
	}
	if h.opts.Level == nil {
		h.opts.Level = slog.LevelInfo
	}
	return h
}

// Enabled implements slog.Handler.
func (h *ColorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

// Handle implements slog.Handler.
func (h *ColorHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	if !r.Time.IsZero() {
		b.WriteString(ansiGray)
		b.WriteString(r.Time.Format("15:04:05.000"))
		b.WriteString(ansiReset)
		b.WriteByte(' ')
	}

	color := levelColor(r.Level)
	if r.Level < slog.LevelWarn && isStoreActivity(r.Message) {
		color = ansiGreen
	}

	b.WriteString(color)
	fmt.Fprintf(&b, "%-5s", r.Level.String())
	b.WriteByte(' ')
	b.WriteString(r.Message)
	b.WriteString(ansiReset)

	b.WriteString(h.prefix)
	r.Attrs(func(a slog.Attr) bool {
		h.appendAttr(&b, a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

// WithAttrs implements slog.Handler.
func (h *ColorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	var b strings.Builder
	for _, a := range attrs {
		h.appendAttr(&b, a)
	}
	h2 := *h
	h2.prefix = h.prefix + b.String()
	return &h2
}

// WithGroup implements slog.Handler.
func (h *ColorHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.groups = append(append([]string{}, h.groups...), name)
	return &h2
}

func (h *ColorHandler) appendAttr(b *strings.Builder, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	key := a.Key
	if len(h.groups) > 0 {
		key = strings.Join(h.groups, ".") + "." + key
	}
	fmt.Fprintf(b, " %s%s=%s%v", ansiGray, key, ansiReset, a.Value)
}

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return ansiRed
	case level >= slog.LevelWarn:
		return ansiYellow
	case level < slog.LevelInfo:
		return ansiGray
	default:
		return ""
	}
}

func isStoreActivity(msg string) bool {
	lower := strings.ToLower(msg)
	for _, marker := range storeActivityMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// NewLogger builds a logger at the given level. Format "json" selects
// the standard JSON handler; anything else gets the colored text
// handler. Output goes to stderr.
func NewLogger(level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(NewColorHandler(os.Stderr, opts))
}

// NewDefaultLogger returns a colored stderr logger at the given level.
func NewDefaultLogger(level slog.Level) *slog.Logger {
	return NewLogger(level, "text")
}

// ParseLevel maps a level name to its slog value. Unknown names fall
// back to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
