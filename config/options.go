package config

import "github.com/ceyewan/flake/clog"

// Option 加载器选项
type Option func(*options)

type options struct {
	logger   clog.Logger
	defaults map[string]any
}

// WithLogger 设置 Logger，用于记录加载与热更新过程
func WithLogger(logger clog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithDefaults 设置默认值，key 使用点号分隔 (server.addr)
//
// 只有注册过的 key 才能在 Unmarshal 时被同名环境变量覆盖，
// 因此需要纯环境变量部署时应为每个字段提供默认值。
func WithDefaults(defaults map[string]any) Option {
	return func(o *options) {
		for k, v := range defaults {
			o.defaults[k] = v
		}
	}
}

func applyOptions(opts ...Option) *options {
	o := &options{
		logger:   clog.Discard(),
		defaults: make(map[string]any),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
