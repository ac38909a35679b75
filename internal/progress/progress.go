// Package progress defines the ProgressIndicator interface the segment
// assembler reports through, and a logging-backed default implementation.
package progress

import "github.com/soltixdb/segmentmerge/internal/logging"

// Indicator receives lifecycle events from a running merge. Calls are
// made synchronously from the single merge goroutine; an implementation
// must not block the merge (§5 of the design: no suspension points).
type Indicator interface {
	Start(message string)
	Progress(message string)
	StartSection(section string)
	StopSection(section string)
	Stop()
}

// NoopIndicator discards every event; the default when the caller
// supplies none.
type NoopIndicator struct{}

func (NoopIndicator) Start(string)        {}
func (NoopIndicator) Progress(string)     {}
func (NoopIndicator) StartSection(string) {}
func (NoopIndicator) StopSection(string)  {}
func (NoopIndicator) Stop()               {}

// LoggingIndicator forwards every event to internal/logging at Debug
// level, with the active section name carried as a field.
type LoggingIndicator struct {
	logger  *logging.Logger
	section string
}

// NewLoggingIndicator builds an indicator that logs through the supplied
// logger, or the package global if logger is nil.
func NewLoggingIndicator(logger *logging.Logger) *LoggingIndicator {
	if logger == nil {
		logger = logging.Global()
	}
	return &LoggingIndicator{logger: logger}
}

func (l *LoggingIndicator) Start(message string) {
	l.logger.Debug("merge started", "message", message)
}

func (l *LoggingIndicator) Progress(message string) {
	l.logger.Debug("merge progress", "section", l.section, "message", message)
}

func (l *LoggingIndicator) StartSection(section string) {
	l.section = section
	l.logger.Debug("section started", "section", section)
}

func (l *LoggingIndicator) StopSection(section string) {
	l.logger.Debug("section stopped", "section", section)
	if l.section == section {
		l.section = ""
	}
}

func (l *LoggingIndicator) Stop() {
	l.logger.Debug("merge stopped")
}
