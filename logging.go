package prefs

import "time"

// UpdateLogEvent describes one update attempt for logging.
type UpdateLogEvent struct {
	Key      string
	Kind     string
	Revision string
	Duration time.Duration
	Err      error
}

// UpdateLogger records cell update events.
type UpdateLogger interface {
	LogUpdate(UpdateLogEvent)
}

// UpdateLoggerFunc adapts a function to UpdateLogger.
type UpdateLoggerFunc func(UpdateLogEvent)

// LogUpdate implements UpdateLogger.
func (f UpdateLoggerFunc) LogUpdate(event UpdateLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopUpdateLogger struct{}

func (noopUpdateLogger) LogUpdate(UpdateLogEvent) {}

// WithUpdateLogger attaches an update logger to the cell.
func WithUpdateLogger[T any](logger UpdateLogger) CellOption[T] {
	return func(cfg *cellConfig[T]) {
		if logger == nil {
			cfg.logger = noopUpdateLogger{}
			return
		}
		cfg.logger = logger
	}
}
