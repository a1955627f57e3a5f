// Package slog adapts the standard library's log/slog to the feedcache
// Logger interface.
package slog

import (
	"context"
	stdslog "log/slog"

	feedcache "github.com/jltournay/farmer-power-platform-sub003"
)

type Logger struct{ L *stdslog.Logger }

var _ feedcache.Logger = Logger{}

func New(l *stdslog.Logger) Logger { return Logger{L: l} }

func (s Logger) Debug(msg string, f feedcache.Fields) {
	s.L.LogAttrs(context.Background(), stdslog.LevelDebug, msg, attrs(f)...)
}
func (s Logger) Info(msg string, f feedcache.Fields) {
	s.L.LogAttrs(context.Background(), stdslog.LevelInfo, msg, attrs(f)...)
}
func (s Logger) Warn(msg string, f feedcache.Fields) {
	s.L.LogAttrs(context.Background(), stdslog.LevelWarn, msg, attrs(f)...)
}
func (s Logger) Error(msg string, f feedcache.Fields) {
	s.L.LogAttrs(context.Background(), stdslog.LevelError, msg, attrs(f)...)
}

func attrs(f feedcache.Fields) []stdslog.Attr {
	if len(f) == 0 {
		return nil
	}
	out := make([]stdslog.Attr, 0, len(f))
	for k, v := range f {
		out = append(out, stdslog.Any(k, v))
	}
	return out
}
