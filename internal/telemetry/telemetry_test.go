package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, "davmount", cfg.ServiceName)
	assert.Equal(t, "dev", cfg.ServiceVersion)
	assert.Equal(t, "localhost:4317", cfg.Endpoint)
	assert.True(t, cfg.Insecure)
	assert.Equal(t, 1.0, cfg.SampleRate)
}

func TestInitDisabled(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.Enabled = false

	shutdown, err := Init(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	// Should be able to call shutdown without error
	err = shutdown(ctx)
	assert.NoError(t, err)

	// Should not be enabled
	assert.False(t, IsEnabled())
}

func TestTracerReturnsNoOp(t *testing.T) {
	// Reset state
	tracer = nil
	enabled = false

	// Without initialization, should return no-op tracer
	tr := Tracer()
	require.NotNil(t, tr)
}

func TestStartSpan(t *testing.T) {
	ctx := context.Background()

	// Even without initialization, StartSpan should work (no-op)
	newCtx, span := StartSpan(ctx, "test.operation")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)

	// Should be able to end the span
	span.End()
}

func TestSpanFromContext(t *testing.T) {
	ctx := context.Background()

	// Should return a span even without active span
	span := SpanFromContext(ctx)
	require.NotNil(t, span)
}

func TestAddEvent(t *testing.T) {
	ctx := context.Background()

	// Should not panic with no active span
	require.NotPanics(t, func() {
		AddEvent(ctx, "test.event")
	})
}

func TestRecordError(t *testing.T) {
	ctx := context.Background()

	// Should not panic with nil error
	require.NotPanics(t, func() {
		RecordError(ctx, nil)
	})

	// Should not panic with error
	require.NotPanics(t, func() {
		RecordError(ctx, errors.New("test error"))
	})
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()

	// Should not panic
	require.NotPanics(t, func() {
		SetStatus(ctx, codes.Ok, "success")
	})

	require.NotPanics(t, func() {
		SetStatus(ctx, codes.Error, "failed")
	})
}

func TestSetAttributes(t *testing.T) {
	ctx := context.Background()

	// Should not panic
	require.NotPanics(t, func() {
		SetAttributes(ctx, ClientAddr("192.168.1.1:54321"))
	})
}

func TestTraceID(t *testing.T) {
	ctx := context.Background()

	// Without active span, should return empty string
	traceID := TraceID(ctx)
	assert.Equal(t, "", traceID)
}

func TestSpanID(t *testing.T) {
	ctx := context.Background()

	// Without active span, should return empty string
	spanID := SpanID(ctx)
	assert.Equal(t, "", spanID)
}

func TestAttributeHelpers(t *testing.T) {
	t.Run("ClientAddr", func(t *testing.T) {
		attr := ClientAddr("192.168.1.100:12345")
		assert.Equal(t, AttrClientAddr, string(attr.Key))
		assert.Equal(t, "192.168.1.100:12345", attr.Value.AsString())
	})

	t.Run("Procedure", func(t *testing.T) {
		attr := Procedure("READFILE")
		assert.Equal(t, AttrProcedure, string(attr.Key))
		assert.Equal(t, "READFILE", attr.Value.AsString())
	})

	t.Run("RequestID", func(t *testing.T) {
		attr := RequestID(42)
		assert.Equal(t, AttrRequestID, string(attr.Key))
		assert.Equal(t, int64(42), attr.Value.AsInt64())
	})

	t.Run("Status", func(t *testing.T) {
		attr := Status("NOT_FOUND")
		assert.Equal(t, AttrStatus, string(attr.Key))
		assert.Equal(t, "NOT_FOUND", attr.Value.AsString())
	})

	t.Run("MountID", func(t *testing.T) {
		attr := MountID("a1b2c3")
		assert.Equal(t, AttrMountID, string(attr.Key))
		assert.Equal(t, "a1b2c3", attr.Value.AsString())
	})

	t.Run("FSPath", func(t *testing.T) {
		attr := FSPath("/reports/q3.pdf")
		assert.Equal(t, AttrPath, string(attr.Key))
		assert.Equal(t, "/reports/q3.pdf", attr.Value.AsString())
	})

	t.Run("FSOffset", func(t *testing.T) {
		attr := FSOffset(1024)
		assert.Equal(t, AttrOffset, string(attr.Key))
		assert.Equal(t, int64(1024), attr.Value.AsInt64())
	})

	t.Run("FSLength", func(t *testing.T) {
		attr := FSLength(4096)
		assert.Equal(t, AttrLength, string(attr.Key))
		assert.Equal(t, int64(4096), attr.Value.AsInt64())
	})

	t.Run("FSSize", func(t *testing.T) {
		attr := FSSize(1048576)
		assert.Equal(t, AttrSize, string(attr.Key))
		assert.Equal(t, int64(1048576), attr.Value.AsInt64())
	})

	t.Run("RemoteMethod", func(t *testing.T) {
		attr := RemoteMethod("PROPFIND")
		assert.Equal(t, AttrRemoteMethod, string(attr.Key))
		assert.Equal(t, "PROPFIND", attr.Value.AsString())
	})

	t.Run("HTTPStatus", func(t *testing.T) {
		attr := HTTPStatus(207)
		assert.Equal(t, AttrHTTPStatus, string(attr.Key))
		assert.Equal(t, int64(207), attr.Value.AsInt64())
	})

	t.Run("CacheHit", func(t *testing.T) {
		attr := CacheHit(true)
		assert.Equal(t, AttrCacheHit, string(attr.Key))
		assert.True(t, attr.Value.AsBool())
	})

	t.Run("Session", func(t *testing.T) {
		attr := Session("sess-123")
		assert.Equal(t, AttrSession, string(attr.Key))
		assert.Equal(t, "sess-123", attr.Value.AsString())
	})
}

func TestStartProviderSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartProviderSpan(ctx, "READFILE", "a1b2c3")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()

	// With empty mount ID
	newCtx2, span2 := StartProviderSpan(ctx, "GETMETADATA", "")
	require.NotNil(t, newCtx2)
	require.NotNil(t, span2)
	span2.End()

	// With additional attributes
	newCtx3, span3 := StartProviderSpan(ctx, "WRITEFILE", "a1b2c3", FSOffset(0), FSLength(4096))
	require.NotNil(t, newCtx3)
	require.NotNil(t, span3)
	span3.End()
}

func TestStartRemoteSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartRemoteSpan(ctx, "PROPFIND", "/reports")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()

	// With additional attributes
	newCtx2, span2 := StartRemoteSpan(ctx, "GET", "/reports/q3.pdf", FSOffset(0), FSLength(1024))
	require.NotNil(t, newCtx2)
	require.NotNil(t, span2)
	span2.End()
}

func TestStartCacheSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartCacheSpan(ctx, "lookup")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()

	// With additional attributes
	newCtx2, span2 := StartCacheSpan(ctx, "invalidate", CacheHit(false))
	require.NotNil(t, newCtx2)
	require.NotNil(t, span2)
	span2.End()
}

func TestStartUploadSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartUploadSpan(ctx, "assemble", "sess-123")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()
}

func TestInitProfilingDisabled(t *testing.T) {
	shutdown, err := InitProfiling(ProfilingConfig{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	assert.NoError(t, shutdown())
	assert.False(t, IsProfilingEnabled())
}

func TestInitProfilingRejectsUnknownType(t *testing.T) {
	_, err := InitProfiling(ProfilingConfig{
		Enabled:      true,
		ServiceName:  "davmount",
		Endpoint:     "http://localhost:4040",
		ProfileTypes: []string{"cpu", "bogus"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown profile type")
}
