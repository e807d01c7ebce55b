// Package slogx provides the small per-component logger wrapper reused by
// endpoint, handshake, sender, receiver and session, matching the teacher
// repository's recurring pattern of a lightweight logger value embedded in
// each engine rather than a single shared logging facade.
package slogx

import (
	"context"
	"log/slog"
)

// LevelTrace sits below slog.LevelDebug for the high-volume per-segment
// traces (duplicate/out-of-order/ack bookkeeping) that are too noisy for
// ordinary debug logging.
const LevelTrace slog.Level = slog.LevelDebug - 4

// Logger wraps a *slog.Logger, tolerating a nil handler so components work
// without a logger configured.
type Logger struct {
	Log *slog.Logger
}

func (l Logger) enabled(level slog.Level) bool {
	return l.Log != nil && l.Log.Handler().Enabled(context.Background(), level)
}

func (l Logger) log(level slog.Level, msg string, attrs ...slog.Attr) {
	if l.Log == nil {
		return
	}
	l.Log.LogAttrs(context.Background(), level, msg, attrs...)
}

func (l Logger) Trace(msg string, attrs ...slog.Attr) {
	if l.enabled(LevelTrace) {
		l.log(LevelTrace, msg, attrs...)
	}
}

func (l Logger) Debug(msg string, attrs ...slog.Attr) { l.log(slog.LevelDebug, msg, attrs...) }
func (l Logger) Info(msg string, attrs ...slog.Attr)  { l.log(slog.LevelInfo, msg, attrs...) }
func (l Logger) Warn(msg string, attrs ...slog.Attr)  { l.log(slog.LevelWarn, msg, attrs...) }
func (l Logger) Error(msg string, attrs ...slog.Attr) { l.log(slog.LevelError, msg, attrs...) }
