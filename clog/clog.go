// Package clog 是 flake 的结构化日志组件，底层为 log/slog。
//
// 调用方只依赖 Logger 接口；命名空间与 Context 字段通过 Option 配置：
//
//	logger, _ := clog.New(&clog.Config{Level: "info", Format: "json"},
//	    clog.WithNamespace("flaked"),
//	    clog.WithStandardContext(), // trace_id, request_id
//	)
//	logger.With(clog.Component("snowflake")).Info("snowflake generated", clog.Snowflake(id))
//
// Output 支持 stdout、stderr 和文件路径，级别可以在运行时通过 SetLevel 调整。
package clog

import "fmt"

// New 按 config 创建 Logger，config 为 nil 时使用 NewDevDefaultConfig
func New(config *Config, opts ...Option) (Logger, error) {
	if config == nil {
		config = NewDevDefaultConfig()
	}
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("clog: invalid config: %w", err)
	}
	return newLogger(config, applyOptions(opts...))
}

// Must 同 New，出错时 panic
func Must(config *Config, opts ...Option) Logger {
	logger, err := New(config, opts...)
	if err != nil {
		panic(err)
	}
	return logger
}
