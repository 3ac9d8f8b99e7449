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
	TraceID    string    // OpenTelemetry trace ID
	SpanID     string    // OpenTelemetry span ID
	Procedure  string    // Provider request kind (GETMETADATA, READFILE, etc.)
	Mount      string    // Mount ID the request targets
	Path       string    // Remote resource path
	ClientAddr string    // Connected host address
	RequestID  uint64    // Provider frame request ID
	StartTime  time.Time // For duration calculation
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

// NewLogContext creates a new LogContext for a connection from clientAddr
func NewLogContext(clientAddr string) *LogContext {
	return &LogContext{
		ClientAddr: clientAddr,
		StartTime:  time.Now(),
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	clone := *lc
	return &clone
}

// WithProcedure returns a copy with the procedure set
func (lc *LogContext) WithProcedure(procedure string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Procedure = procedure
	}
	return clone
}

// WithMount returns a copy with the mount ID set
func (lc *LogContext) WithMount(mount string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Mount = mount
	}
	return clone
}

// WithPath returns a copy with the remote path set
func (lc *LogContext) WithPath(path string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Path = path
	}
	return clone
}

// WithRequestID returns a copy with the provider request ID set
func (lc *LogContext) WithRequestID(id uint64) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.RequestID = id
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
