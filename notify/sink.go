// Package notify delivers short user-facing notifications ("toasts").
//
// Notifications are fire-and-forget: a Sink never returns an error to the
// caller. Sinks that can fail log the failure themselves.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Level is the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelDanger  Level = "danger"
)

// ParseLevel validates a level string.
func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case LevelInfo, LevelSuccess, LevelDanger:
		return Level(s), nil
	default:
		return "", fmt.Errorf("unknown notification level %q", s)
	}
}

// Notification is a single delivered message.
type Notification struct {
	Seq     uint64    `json:"seq"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// Sink receives notifications.
type Sink interface {
	Notify(level Level, message string)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(level Level, message string)

// Notify implements Sink.
func (f SinkFunc) Notify(level Level, message string) {
	f(level, message)
}

// Multi fans a notification out to every sink in order. Nil sinks are ignored.
type Multi []Sink

// Notify implements Sink.
func (m Multi) Notify(level Level, message string) {
	for _, s := range m {
		if s != nil {
			s.Notify(level, message)
		}
	}
}

// LogSink writes notifications to a structured logger.
type LogSink struct {
	Logger *slog.Logger
}

// Notify implements Sink.
func (s LogSink) Notify(level Level, message string) {
	lvl := slog.LevelInfo
	if level == LevelDanger {
		lvl = slog.LevelWarn
	}
	s.Logger.Log(context.Background(), lvl, "notification", "toast_level", string(level), "message", message)
}

// Discard drops all notifications.
var Discard Sink = SinkFunc(func(Level, string) {})
