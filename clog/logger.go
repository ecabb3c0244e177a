package clog

import "context"

// Logger 结构化日志接口
//
// With 与 WithNamespace 返回的子 Logger 共享同一个 handler，SetLevel 对它们同时生效。
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)

	// 带 Context 的版本会额外提取 WithContextField 配置的字段
	DebugContext(ctx context.Context, msg string, fields ...Field)
	InfoContext(ctx context.Context, msg string, fields ...Field)
	WarnContext(ctx context.Context, msg string, fields ...Field)
	ErrorContext(ctx context.Context, msg string, fields ...Field)
	FatalContext(ctx context.Context, msg string, fields ...Field)

	With(fields ...Field) Logger
	WithNamespace(parts ...string) Logger

	// SetLevel 只接受五个命名级别
	SetLevel(level Level) error

	// Flush 同步文件输出
	Flush()
}
