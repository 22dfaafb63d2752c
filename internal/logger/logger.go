// Package logger provides slog helpers for the app.
package logger

import (
	"context"
	"log/slog"
	"os"
)

// LevelFatal records are written and then terminate the process.
const LevelFatal = slog.Level(12)

type ExitOnLevel struct {
	lvl  slog.Level
	exit func(code int)
	slog.Handler
}

// New returns a logger that writes JSON in production and text otherwise.
func New(level slog.Level, production bool) *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource:   production,
		Level:       level,
		ReplaceAttr: renameFatal,
	}
	var h slog.Handler
	if production {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(newExitOnLevel(h, LevelFatal, os.Exit))
}

func newExitOnLevel(h slog.Handler, lvl slog.Level, exit func(int)) *ExitOnLevel {
	return &ExitOnLevel{lvl: lvl, exit: exit, Handler: h}
}

func (h *ExitOnLevel) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.lvl || h.Handler.Enabled(ctx, level)
}

//nolint:gocritic // slog.Handler requires Record by value.
func (h *ExitOnLevel) Handle(ctx context.Context, r slog.Record) error {
	err := h.Handler.Handle(ctx, r)
	if r.Level >= h.lvl {
		h.exit(1)
	}
	return err
}

func (h *ExitOnLevel) WithAttrs(attrs []slog.Attr) slog.Handler {
	return newExitOnLevel(h.Handler.WithAttrs(attrs), h.lvl, h.exit)
}

func (h *ExitOnLevel) WithGroup(name string) slog.Handler {
	return newExitOnLevel(h.Handler.WithGroup(name), h.lvl, h.exit)
}

func renameFatal(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if lvl, ok := a.Value.Any().(slog.Level); ok && lvl >= LevelFatal {
		a.Value = slog.StringValue("FATAL")
	}
	return a
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("err", "nil")
	}
	return slog.String("err", err.Error())
}
