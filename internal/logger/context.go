package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

// logContextKey is the key for LogContext in context.Context
var logContextKey = contextKey{}

// LogContext holds request-scoped logging context
type LogContext struct {
	TraceID       string    // OpenTelemetry trace ID
	SpanID        string    // OpenTelemetry span ID
	Operation     string    // Orchestrator/worker operation name (submit, activate, conformance_check, ...)
	DeclarationID string    // Flight declaration UUID
	OperationalIntentID string // DSS-assigned operational intent id, once known
	ClientIP      string    // Operator API caller IP address (without port)
	Actor         string    // submitted-by / originating party
	StartTime     time.Time // For duration calculation
}

// WithContext returns a new context with the given LogContext
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a new LogContext with the given client IP
func NewLogContext(clientIP string) *LogContext {
	return &LogContext{
		ClientIP:  clientIP,
		StartTime: time.Now(),
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	return &LogContext{
		TraceID:             lc.TraceID,
		SpanID:              lc.SpanID,
		Operation:           lc.Operation,
		DeclarationID:       lc.DeclarationID,
		OperationalIntentID: lc.OperationalIntentID,
		ClientIP:            lc.ClientIP,
		Actor:               lc.Actor,
		StartTime:           lc.StartTime,
	}
}

// WithOperation returns a copy with the operation set
func (lc *LogContext) WithOperation(operation string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Operation = operation
	}
	return clone
}

// WithDeclaration returns a copy with the declaration id set
func (lc *LogContext) WithDeclaration(declarationID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.DeclarationID = declarationID
	}
	return clone
}

// WithActor returns a copy with the actor identity set
func (lc *LogContext) WithActor(actor string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Actor = actor
	}
	return clone
}

// WithTrace returns a copy with trace info set
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TraceID = traceID
		clone.SpanID = spanID
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
