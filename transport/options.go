package transport

import (
	"github.com/ceyewan/flake/clog"
	"github.com/ceyewan/flake/metrics"
)

// Option Encoder 初始化选项函数
type Option func(*options)

type options struct {
	codec  TextCodec
	logger clog.Logger
	meter  metrics.Meter
}

// WithCodec 替换默认的 Base64 编解码器
func WithCodec(codec TextCodec) Option {
	return func(o *options) {
		if codec != nil {
			o.codec = codec
		}
	}
}

// WithLogger 设置 Logger
func WithLogger(logger clog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
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
