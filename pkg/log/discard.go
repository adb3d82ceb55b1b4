package log

import "io"

// NewDiscardLogger returns a logger that drops every entry. Components fall
// back to it when no logger is injected.
func NewDiscardLogger() LoggerService {
	return &LoggerServiceImpl{
		sink:  &sink{writer: io.Discard, exit: func(int) {}},
		level: Fatal + 1,
	}
}
