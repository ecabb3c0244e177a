package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ceyewan/flake/clog"
	"github.com/ceyewan/flake/metrics"
	"github.com/ceyewan/flake/ratelimit"
	"github.com/ceyewan/flake/trace"
)

const (
	// HeaderRequestID 请求标识头，客户端未携带时由服务端生成
	HeaderRequestID = "X-Request-ID"
	// ContextKeyRequestID 请求标识在 gin.Context 与 request context 中的键
	ContextKeyRequestID = clog.ContextKeyRequestID
)

// MetricRateLimited 被限流拒绝的请求数
const MetricRateLimited = "flake_server_rate_limited_total"

// requestID 为每个请求注入 X-Request-ID
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ContextKeyRequestID, id)
		c.Header(HeaderRequestID, id)
		ctx := context.WithValue(c.Request.Context(), ContextKeyRequestID, id)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// ContextKeyTraceID TraceID 在 request context 中的键
const ContextKeyTraceID = clog.ContextKeyTraceID

// traceContext 把 otelgin 创建的 Span 的 TraceID 以字符串写入 context，供日志提取
func traceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := trace.TraceIDFromContext(c.Request.Context()); id != "" {
			ctx := context.WithValue(c.Request.Context(), ContextKeyTraceID, id)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

// accessLog 请求结束后写访问日志，4xx 为 Warn，5xx 为 Error
func accessLog(logger clog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []clog.Field{
			clog.String("method", c.Request.Method),
			clog.String("path", c.Request.URL.Path),
			clog.String("route", c.FullPath()),
			clog.Int("status", status),
			clog.Duration("latency", time.Since(start)),
			clog.String("client_ip", c.ClientIP()),
		}
		if last := c.Errors.Last(); last != nil {
			fields = append(fields, clog.Error(last.Err))
		}

		ctx := c.Request.Context()
		switch {
		case status >= http.StatusInternalServerError:
			logger.ErrorContext(ctx, "request failed", fields...)
		case status >= http.StatusBadRequest:
			logger.WarnContext(ctx, "request rejected", fields...)
		default:
			logger.InfoContext(ctx, "request completed", fields...)
		}
	}
}

// globalKey 全局限流器只使用一个桶
const globalKey = "global"

// rateLimit 全局令牌桶与按客户端的令牌桶，任一耗尽即返回 429
// global 或 clients 为 nil 时跳过对应检查，取不到客户端标识时跳过按客户端的检查
func rateLimit(global, clients *ratelimit.Limiter, rejected metrics.Counter, logger clog.Logger) gin.HandlerFunc {
	allow := func(c *gin.Context, l *ratelimit.Limiter, key string) bool {
		ok, err := l.Allow(c.Request.Context(), key)
		if err != nil {
			logger.WarnContext(c.Request.Context(), "rate limit check skipped", clog.String("key", key), clog.Error(err))
			return true
		}
		return ok
	}

	return func(c *gin.Context) {
		scope := ""
		if global != nil && !allow(c, global, globalKey) {
			scope = "global"
		}
		if scope == "" && clients != nil {
			if key := clientKey(c); key != "" && !allow(c, clients, key) {
				scope = "client"
			}
		}
		if scope == "" {
			c.Next()
			return
		}

		rejected.Inc(c.Request.Context(), metrics.L(metrics.LabelScope, scope))
		render(c, http.StatusTooManyRequests, newErrorBody(CodeRateLimited, "rate limit exceeded", scope))
		c.Abort()
	}
}

// clientKey 按客户端限流的键：ClientIP，解析不出时退回原始 RemoteAddr
func clientKey(c *gin.Context) string {
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return c.Request.RemoteAddr
}

// recovery panic 时记录日志并返回 500
func recovery(logger clog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, err any) {
		logger.ErrorContext(c.Request.Context(), "panic recovered", clog.Any("panic", err))
		render(c, http.StatusInternalServerError, newErrorBody(CodeInternal, http.StatusText(http.StatusInternalServerError), ""))
		c.Abort()
	})
}
