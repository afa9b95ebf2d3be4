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
	assert.Equal(t, "rhxd", cfg.ServiceName)
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

	err = shutdown(ctx)
	assert.NoError(t, err)

	assert.False(t, IsEnabled())
}

func TestTracerReturnsNoOp(t *testing.T) {
	tracer = nil
	enabled = false

	tr := Tracer()
	require.NotNil(t, tr)
}

func TestStartSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartSpan(ctx, "test.operation")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)

	span.End()
}

func TestSpanFromContext(t *testing.T) {
	ctx := context.Background()

	span := SpanFromContext(ctx)
	require.NotNil(t, span)
}

func TestAddEvent(t *testing.T) {
	ctx := context.Background()

	require.NotPanics(t, func() {
		AddEvent(ctx, "test.event")
	})
}

func TestRecordError(t *testing.T) {
	ctx := context.Background()

	require.NotPanics(t, func() {
		RecordError(ctx, nil)
	})

	require.NotPanics(t, func() {
		RecordError(ctx, errors.New("test error"))
	})
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()

	require.NotPanics(t, func() {
		SetStatus(ctx, codes.Ok, "success")
	})

	require.NotPanics(t, func() {
		SetStatus(ctx, codes.Error, "failed")
	})
}

func TestSetAttributes(t *testing.T) {
	ctx := context.Background()

	require.NotPanics(t, func() {
		SetAttributes(ctx, ClientAddr("192.168.1.1:6667"))
	})
}

func TestTraceID(t *testing.T) {
	ctx := context.Background()

	traceID := TraceID(ctx)
	assert.Equal(t, "", traceID)
}

func TestSpanID(t *testing.T) {
	ctx := context.Background()

	spanID := SpanID(ctx)
	assert.Equal(t, "", spanID)
}

func TestAttributeHelpers(t *testing.T) {
	t.Run("ClientAddr", func(t *testing.T) {
		attr := ClientAddr("192.168.1.100:12345")
		assert.Equal(t, AttrClientAddr, string(attr.Key))
		assert.Equal(t, "192.168.1.100:12345", attr.Value.AsString())
	})

	t.Run("ConnID", func(t *testing.T) {
		attr := ConnID("c0ffee")
		assert.Equal(t, AttrConnID, string(attr.Key))
		assert.Equal(t, "c0ffee", attr.Value.AsString())
	})

	t.Run("UserID", func(t *testing.T) {
		attr := UserID(42)
		assert.Equal(t, AttrUserID, string(attr.Key))
		assert.Equal(t, int64(42), attr.Value.AsInt64())
	})

	t.Run("Nickname", func(t *testing.T) {
		attr := Nickname("guest")
		assert.Equal(t, AttrNick, string(attr.Key))
		assert.Equal(t, "guest", attr.Value.AsString())
	})

	t.Run("TxnKind", func(t *testing.T) {
		attr := TxnKind(107)
		assert.Equal(t, AttrTxnKind, string(attr.Key))
		assert.Equal(t, int64(107), attr.Value.AsInt64())
	})

	t.Run("TxnID", func(t *testing.T) {
		attr := TxnID(0x12345678)
		assert.Equal(t, AttrTxnID, string(attr.Key))
		assert.Equal(t, int64(0x12345678), attr.Value.AsInt64())
	})

	t.Run("ErrorCode", func(t *testing.T) {
		attr := ErrorCode(3)
		assert.Equal(t, AttrErrorCode, string(attr.Key))
		assert.Equal(t, int64(3), attr.Value.AsInt64())
	})

	t.Run("EventKind", func(t *testing.T) {
		attr := EventKind("chat")
		assert.Equal(t, AttrEventKind, string(attr.Key))
		assert.Equal(t, "chat", attr.Value.AsString())
	})

	t.Run("Recipients", func(t *testing.T) {
		attr := Recipients(5)
		assert.Equal(t, AttrRecipients, string(attr.Key))
		assert.Equal(t, int64(5), attr.Value.AsInt64())
	})

	t.Run("Dropped", func(t *testing.T) {
		attr := Dropped(1)
		assert.Equal(t, AttrDropped, string(attr.Key))
		assert.Equal(t, int64(1), attr.Value.AsInt64())
	})
}

func TestStartConnectionSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartConnectionSpan(ctx, "c0ffee", "192.168.1.1:12345")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()
}

func TestStartTransactionSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartTransactionSpan(ctx, 107, 1)
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()

	newCtx2, span2 := StartTransactionSpan(ctx, 105, 2, UserID(7))
	require.NotNil(t, newCtx2)
	require.NotNil(t, span2)
	span2.End()
}

func TestStartBroadcastSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartBroadcastSpan(ctx, "chat")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()

	newCtx2, span2 := StartBroadcastSpan(ctx, "user_left", Recipients(3), Dropped(0))
	require.NotNil(t, newCtx2)
	require.NotNil(t, span2)
	span2.End()
}
