package logging

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger with the key-value call signature the
// driver and segment packages use at every tier/phase boundary and
// segment-build completion.
type Logger struct {
	zl     zerolog.Logger
	fields map[string]interface{}
}

var global *Logger

func init() {
	global = NewDevelopment()
}

// NewDevelopment creates a logger with pretty console output, debug
// level, and no configuration dependency. It backs the package-level
// global logger until a merge run replaces it with one built by
// NewFromConfig.
func NewDevelopment() *Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}

	zl := zerolog.New(output).
		Level(zerolog.DebugLevel).
		With().
		Timestamp().
		Logger()

	return &Logger{
		zl:     zl,
		fields: make(map[string]interface{}),
	}
}

// SetGlobal replaces the package-level global logger, used by
// cmd/segmentmerge once it has built one from the loaded Config.
func SetGlobal(logger *Logger) {
	global = logger
}

// Global returns the package-level global logger.
func Global() *Logger {
	return global
}

func (l *Logger) applyStoredFields(e *zerolog.Event) {
	for k, v := range l.fields {
		e.Interface(k, v)
	}
}

func (l *Logger) applyCallFields(e *zerolog.Event, fields []interface{}) {
	for i := 0; i+1 < len(fields); i += 2 {
		key, _ := fields[i].(string)
		value := fields[i+1]
		if key == "error" {
			if err, ok := value.(error); ok {
				e.Str("error", err.Error())
				continue
			}
		}
		e.Interface(key, value)
	}
}

// Debug logs a debug message. fields is a flat key, value, key, value...
// list, following the call sites in internal/segment and
// internal/container.
func (l *Logger) Debug(msg string, fields ...interface{}) {
	e := l.zl.Debug()
	l.applyStoredFields(e)
	l.applyCallFields(e, fields)
	e.Msg(msg)
}

// Info logs an info message with the same key-value field convention
// as Debug.
func (l *Logger) Info(msg string, fields ...interface{}) {
	e := l.zl.Info()
	l.applyStoredFields(e)
	l.applyCallFields(e, fields)
	e.Msg(msg)
}

// Warn logs a warning. internal/driver uses it for recoverable merge
// failures, such as a temporary phase directory that could not be
// cleaned up.
func (l *Logger) Warn(msg string, fields ...interface{}) {
	e := l.zl.Warn()
	l.applyStoredFields(e)
	l.applyCallFields(e, fields)
	e.Msg(msg)
}

// Error logs an error. internal/driver uses it before wrapping and
// returning a phase failure to its caller.
func (l *Logger) Error(msg string, fields ...interface{}) {
	e := l.zl.Error()
	l.applyStoredFields(e)
	l.applyCallFields(e, fields)
	e.Msg(msg)
}

// Fatal logs a message at fatal level and calls os.Exit(1). Reserved
// for cmd/segmentmerge's startup and usage failures; library code
// should return an error instead.
func (l *Logger) Fatal(msg string, fields ...interface{}) {
	e := l.zl.Fatal()
	l.applyStoredFields(e)
	l.applyCallFields(e, fields)
	e.Msg(msg)
}

// With returns a child logger carrying fields in addition to any this
// logger already carries.
func (l *Logger) With(fields ...interface{}) *Logger {
	newFields := make(map[string]interface{}, len(l.fields)+len(fields)/2)
	for k, v := range l.fields {
		newFields[k] = v
	}
	for i := 0; i+1 < len(fields); i += 2 {
		if key, ok := fields[i].(string); ok {
			newFields[key] = fields[i+1]
		}
	}
	return &Logger{zl: l.zl, fields: newFields}
}

// WithContext returns a logger carrying the operation/phase identifiers
// stashed on ctx by WithOperationID and WithPhaseID, so every line a
// merge tier logs can be correlated back to it.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	fields := extractContextFields(ctx)
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}

// Debug logs a debug message using the global logger.
func Debug(msg string, fields ...interface{}) {
	global.Debug(msg, fields...)
}

// Info logs an info message using the global logger.
func Info(msg string, fields ...interface{}) {
	global.Info(msg, fields...)
}
