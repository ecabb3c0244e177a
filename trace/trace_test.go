package trace

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/ceyewan/flake/xerrors"
)

func setupRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	shutdown := install(tp)
	t.Cleanup(func() { _ = shutdown(context.Background()) })
	return recorder
}

func TestInitValidate(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *Config
		wantCode string
	}{
		{name: "nil", cfg: nil, wantCode: "config_required"},
		{name: "sampler", cfg: &Config{Sampler: 1.5}, wantCode: "sampler_out_of_range"},
		{name: "batcher", cfg: &Config{Sampler: 1, Batcher: "eager"}, wantCode: "unknown_batcher"},
		{name: "endpoint", cfg: &Config{Enabled: true, Sampler: 1}, wantCode: "endpoint_required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Init(context.Background(), tt.cfg)
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.Equal(t, tt.wantCode, xerrors.GetCode(err))
		})
	}
}

func TestInitEnabled(t *testing.T) {
	// otlptracegrpc 惰性建连，没有 Collector 也能创建
	shutdown, err := Init(context.Background(), DefaultConfig("flake-test"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}

func TestDiscard(t *testing.T) {
	shutdown, err := Discard("flake-test")
	require.NoError(t, err)
	defer shutdown(context.Background())

	ctx, span := otel.Tracer("test").Start(context.Background(), "op")
	defer span.End()
	assert.Len(t, TraceIDFromContext(ctx), 32)
}

func TestTraceIDFromContext(t *testing.T) {
	assert.Empty(t, TraceIDFromContext(context.Background()))
}

func TestGinMiddleware(t *testing.T) {
	recorder := setupRecorder(t)
	gin.SetMode(gin.TestMode)

	var traceID string
	r := gin.New()
	r.Use(GinMiddleware("flake-test"))
	r.GET("/v1/snowflakes/:id", func(c *gin.Context) {
		traceID = TraceIDFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/snowflakes/1", nil))
	require.Equal(t, http.StatusOK, w.Code)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, spans[0].SpanContext().TraceID().String(), traceID)
	assert.Contains(t, spans[0].Name(), "/v1/snowflakes/:id")
}

func TestGinMiddlewarePropagation(t *testing.T) {
	recorder := setupRecorder(t)
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(GinMiddleware("flake-test"))
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	const parent = "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("traceparent", parent)
	r.ServeHTTP(httptest.NewRecorder(), req)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", spans[0].SpanContext().TraceID().String())
	assert.Equal(t, "00f067aa0ba902b7", spans[0].Parent().SpanID().String())
}

func TestAnnotate(t *testing.T) {
	recorder := setupRecorder(t)

	// 没有 Span 时直接忽略
	Annotate(context.Background(), AttrSnowflake.String("1"))

	ctx, span := otel.Tracer("flake-test").Start(context.Background(), "generate")
	Annotate(ctx, AttrSnowflake.String("130660958208131072"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Contains(t, spans[0].Attributes(), AttrSnowflake.String("130660958208131072"))
}
