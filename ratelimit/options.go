package ratelimit

import "github.com/ceyewan/flake/clog"

// Option 限流器初始化选项函数
type Option func(*options)

type options struct {
	logger clog.Logger
}

// WithLogger 设置 Logger
func WithLogger(logger clog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
