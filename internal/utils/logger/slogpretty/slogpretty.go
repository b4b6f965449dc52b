package slogpretty

import (
	"context"
	"encoding/json"
	"io"
	stdlog "log"
	"sync"

	"github.com/fatih/color"
	"golang.org/x/exp/slog"
)

type Options struct {
	Level slog.Leveler
}

// Handler prints one colored line per record followed by its attributes as JSON.
type Handler struct {
	slog.Handler
	mu    *sync.Mutex
	l     *stdlog.Logger
	attrs []slog.Attr
	group string
}

func (o Options) NewHandler(out io.Writer) *Handler {
	return &Handler{
		Handler: slog.NewJSONHandler(out, &slog.HandlerOptions{Level: o.Level}),
		mu:      &sync.Mutex{},
		l:       stdlog.New(out, "", 0),
	}
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	level := r.Level.String() + ":"

	switch {
	case r.Level >= slog.LevelError:
		level = color.RedString(level)
	case r.Level >= slog.LevelWarn:
		level = color.YellowString(level)
	case r.Level >= slog.LevelInfo:
		level = color.BlueString(level)
	default:
		level = color.MagentaString(level)
	}

	fields := make(map[string]any, r.NumAttrs()+len(h.attrs))
	for _, a := range h.attrs {
		fields[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		fields[h.key(a.Key)] = a.Value.Any()
		return true
	})

	var b []byte
	if len(fields) > 0 {
		var err error
		b, err = json.MarshalIndent(fields, "", "  ")
		if err != nil {
			return err
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.l.Println(
		r.Time.Format("[15:04:05.000]"),
		level,
		color.CyanString(r.Message),
		color.WhiteString(string(b)),
	)

	return nil
}

func (h *Handler) key(k string) string {
	if h.group == "" {
		return k
	}
	return h.group + "." + k
}

// WithAttrs stores keys already qualified by the current group, so a later
// WithGroup does not move them.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	for _, a := range attrs {
		merged = append(merged, slog.Attr{Key: h.key(a.Key), Value: a.Value})
	}
	return &Handler{
		Handler: h.Handler.WithAttrs(attrs),
		mu:      h.mu,
		l:       h.l,
		attrs:   merged,
		group:   h.group,
	}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}
	return &Handler{
		Handler: h.Handler.WithGroup(name),
		mu:      h.mu,
		l:       h.l,
		attrs:   h.attrs,
		group:   group,
	}
}
