package logging

import "context"

type contextKey string

const (
	operationIDKey contextKey = "operation_id"
	phaseIDKey     contextKey = "phase_id"
)

// FromContext returns the logger DebugCtx/InfoCtx/WarnCtx/ErrorCtx log
// through before attaching ctx's operation/phase fields.
func FromContext(ctx context.Context) *Logger {
	return global
}

// WithOperationID tags ctx with the identifier of the merge run in
// progress, assigned once per driver.Build call, so every log line it
// produces can be correlated back to that run.
func WithOperationID(ctx context.Context, operationID string) context.Context {
	return context.WithValue(ctx, operationIDKey, operationID)
}

// WithPhaseID tags ctx with the multi-phase driver's current tier and
// phase index, formatted like "tier=1/phase=2".
func WithPhaseID(ctx context.Context, phaseID string) context.Context {
	return context.WithValue(ctx, phaseIDKey, phaseID)
}

func extractContextFields(ctx context.Context) []interface{} {
	var fields []interface{}

	if operationID, ok := ctx.Value(operationIDKey).(string); ok && operationID != "" {
		fields = append(fields, "operation_id", operationID)
	}

	if phaseID, ok := ctx.Value(phaseIDKey).(string); ok && phaseID != "" {
		fields = append(fields, "phase_id", phaseID)
	}

	return fields
}

// DebugCtx logs a debug message through the logger and fields attached
// to ctx by WithOperationID/WithPhaseID.
func DebugCtx(ctx context.Context, msg string, fields ...interface{}) {
	FromContext(ctx).WithContext(ctx).Debug(msg, fields...)
}

// InfoCtx is DebugCtx at info level.
func InfoCtx(ctx context.Context, msg string, fields ...interface{}) {
	FromContext(ctx).WithContext(ctx).Info(msg, fields...)
}

// WarnCtx is DebugCtx at warn level.
func WarnCtx(ctx context.Context, msg string, fields ...interface{}) {
	FromContext(ctx).WithContext(ctx).Warn(msg, fields...)
}

// ErrorCtx is DebugCtx at error level.
func ErrorCtx(ctx context.Context, msg string, fields ...interface{}) {
	FromContext(ctx).WithContext(ctx).Error(msg, fields...)
}
