package server

import (
	"github.com/ceyewan/flake/clog"
	"github.com/ceyewan/flake/metrics"
)

// Option 服务初始化选项函数
type Option func(*options)

type options struct {
	logger      clog.Logger
	meter       metrics.Meter
	serviceName string
	tracing     bool
}

// WithLogger 设置 Logger，自动添加 "server" 命名空间
func WithLogger(logger clog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger.WithNamespace("server")
		}
	}
}

// WithMeter 设置 Meter
func WithMeter(meter metrics.Meter) Option {
	return func(o *options) {
		if meter != nil {
			o.meter = meter
		}
	}
}

// WithServiceName 设置指标与 Span 中的服务名，默认 "flaked"
func WithServiceName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.serviceName = name
		}
	}
}

// WithTracing 为每个请求创建 Server Span，并把 TraceID 写入日志上下文
// Span 由全局 TracerProvider 创建，见 trace.Init
func WithTracing() Option {
	return func(o *options) {
		o.tracing = true
	}
}

func applyOptions(opts ...Option) *options {
	o := &options{
		logger:      clog.Discard(),
		meter:       metrics.Discard(),
		serviceName: "flaked",
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
