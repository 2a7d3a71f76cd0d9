package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func bufferLogger() (*zap.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(&buf), zapcore.DebugLevel)
	return zap.New(core), &buf
}

func TestWithContext(t *testing.T) {
	base := zap.NewExample()
	ctx := WithContext(context.Background(), base)

	assert.Same(t, base, FromContext(ctx))
}

func TestFromContext_NotFound(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
}

func TestFromContext_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), LoggerKey, "not a logger")
	assert.NotNil(t, FromContext(ctx))
}

func TestCorrelationFields(t *testing.T) {
	base, buf := bufferLogger()
	ctx := context.Background()

	ctx, _ = WithRequestID(ctx, base, "req-1")
	ctx, _ = WithIdempotencyKey(ctx, base, "idem-7")
	ctx, l := WithImportRunID(ctx, base, "run-9")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "idem-7", GetIdempotencyKey(ctx))
	assert.Equal(t, "run-9", GetImportRunID(ctx))

	l.Info("direct")
	assert.Contains(t, buf.String(), `"import_run_id":"run-9"`)
}

func TestGetters_Empty(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetIdempotencyKey(ctx))
	assert.Empty(t, GetImportRunID(ctx))
}

func TestTraceIDs_NoSpan(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx))
	assert.Empty(t, GetSpanID(ctx))

	base := zap.NewNop()
	assert.Same(t, base, WithTraceContext(ctx, base))
}

func TestTraceIDs_WithRecordingSpan(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "sale")
	defer span.End()

	assert.Len(t, GetTraceID(ctx), 32)
	assert.Len(t, GetSpanID(ctx), 16)

	base, buf := bufferLogger()
	WithTraceContext(ctx, base).Info("traced")
	assert.Contains(t, buf.String(), `"trace_id":"`+GetTraceID(ctx)+`"`)
}

func TestContextLogger_EnrichesWithContextFields(t *testing.T) {
	base, buf := bufferLogger()

	ctx := context.Background()
	ctx, _ = WithRequestID(ctx, base, "req-123")
	ctx, _ = WithIdempotencyKey(ctx, base, "key-456")
	ctx = WithContext(ctx, base)

	L(ctx).Info("sale recorded", zap.String("sale_id", "s-1"))

	output := buf.String()
	assert.Contains(t, output, `"request_id":"req-123"`)
	assert.Contains(t, output, `"idempotency_key":"key-456"`)
	assert.Contains(t, output, `"sale_id":"s-1"`)
	assert.Contains(t, output, `"msg":"sale recorded"`)
}

func TestContextLogger_EmptyContextFields(t *testing.T) {
	base, buf := bufferLogger()

	WithLogger(context.Background(), base).Info("test")

	output := buf.String()
	assert.Contains(t, output, `"msg":"test"`)
	assert.NotContains(t, output, `"request_id"`)
	assert.NotContains(t, output, `"idempotency_key"`)
}

func TestContextLogger_NilLogger(t *testing.T) {
	cl := &ContextLogger{ctx: context.Background()}

	assert.NotPanics(t, func() {
		cl.Info("test")
		cl.With(zap.Int("n", 1)).Warn("chained")
	})
}

func TestContextLogger_WithChaining(t *testing.T) {
	base, buf := bufferLogger()

	cl := WithLogger(context.Background(), base).
		With(zap.String("field1", "value1")).
		With(zap.String("field2", "value2"))
	cl.Debug("chained")
	cl.Error("failed")

	output := buf.String()
	assert.Contains(t, output, `"field1":"value1"`)
	assert.Contains(t, output, `"field2":"value2"`)
	assert.NotNil(t, cl.Zap())
}
