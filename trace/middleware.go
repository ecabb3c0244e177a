package trace

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// AttrSnowflake 记录请求处理的雪花 ID
const AttrSnowflake = attribute.Key("flake.snowflake")

// GinMiddleware 为每个请求创建 Server Span，使用全局 TracerProvider
func GinMiddleware(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}

// TraceIDFromContext 返回当前 Span 的 TraceID，没有有效 Span 时返回空串
func TraceIDFromContext(ctx context.Context) string {
	sc := oteltrace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

// Annotate 在当前 Span 上写入属性，ctx 中没有正在记录的 Span 时不做任何事
func Annotate(ctx context.Context, attrs ...attribute.KeyValue) {
	span := oteltrace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(attrs...)
}
