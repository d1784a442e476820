package logger

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"log/slog"
	"os"
)

// SetupPrettySlog returns a slog logger with colorless human-readable output
// for local runs. Dev and prod environments use the JSON handler instead.
func SetupPrettySlog() *slog.Logger {
	h := &prettyHandler{
		opts: &slog.HandlerOptions{Level: slog.LevelDebug},
		l:    log.New(os.Stdout, "", log.Ltime),
	}
	return slog.New(h)
}

type prettyHandler struct {
	opts  *slog.HandlerOptions
	l     *log.Logger
	attrs []slog.Attr
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make(map[string]any, r.NumAttrs()+len(h.attrs))
	for _, a := range h.attrs {
		fields[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		fields[a.Key] = a.Value.Any()
		return true
	})

	suffix := ""
	if len(fields) > 0 {
		b, err := json.MarshalIndent(fields, "", "  ")
		if err != nil {
			return err
		}
		suffix = " " + string(b)
	}

	h.l.Printf("%s %s%s", r.Level.String(), r.Message, suffix)
	return nil
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &prettyHandler{opts: h.opts, l: h.l, attrs: merged}
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	// Groups are flattened; local output doesn't need nesting.
	return h
}

// Discard returns a logger that drops everything, handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
