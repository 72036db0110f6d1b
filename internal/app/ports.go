package app

import "github.com/evanschultz/kanboard/internal/domain"

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() domain.ID

// Logger receives debug traces for absorbed no-ops and applied gestures.
type Logger interface {
	Debug(msg string, keyvals ...any)
}

// nopLogger discards all trace output.
type nopLogger struct{}

// Debug discards one trace event.
func (nopLogger) Debug(string, ...any) {}
