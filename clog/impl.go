package clog

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"slices"
	"time"
)

// logger 共享 handler，With/WithNamespace 只复制属性与命名空间
type logger struct {
	handler *clogHandler
	opts    *options
	attrs   []slog.Attr
}

func newLogger(config *Config, opts *options) (Logger, error) {
	h, err := newHandler(config, opts)
	if err != nil {
		return nil, err
	}
	return &logger{handler: h, opts: opts}, nil
}

func (l *logger) Debug(msg string, fields ...Field) { l.log(context.Background(), DebugLevel, msg, fields) }

func (l *logger) Info(msg string, fields ...Field) { l.log(context.Background(), InfoLevel, msg, fields) }

func (l *logger) Warn(msg string, fields ...Field) { l.log(context.Background(), WarnLevel, msg, fields) }

func (l *logger) Error(msg string, fields ...Field) { l.log(context.Background(), ErrorLevel, msg, fields) }

func (l *logger) Fatal(msg string, fields ...Field) { l.log(context.Background(), FatalLevel, msg, fields) }

func (l *logger) DebugContext(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, DebugLevel, msg, fields)
}

func (l *logger) InfoContext(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, InfoLevel, msg, fields)
}

func (l *logger) WarnContext(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, WarnLevel, msg, fields)
}

func (l *logger) ErrorContext(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, ErrorLevel, msg, fields)
}

func (l *logger) FatalContext(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, FatalLevel, msg, fields)
}

func (l *logger) With(fields ...Field) Logger {
	return &logger{handler: l.handler, opts: l.opts, attrs: slices.Concat(l.attrs, fields)}
}

func (l *logger) WithNamespace(parts ...string) Logger {
	opts := *l.opts
	opts.namespaceParts = slices.Concat(l.opts.namespaceParts, parts)
	return &logger{handler: l.handler, opts: &opts, attrs: l.attrs}
}

func (l *logger) SetLevel(level Level) error { return l.handler.SetLevel(level) }

func (l *logger) Flush() { l.handler.Flush() }

// log 属性顺序：With 字段、调用字段、Context 字段、namespace
func (l *logger) log(ctx context.Context, level Level, msg string, fields []Field) {
	slogLevel := toSlogLevel(level)
	if !l.handler.Enabled(ctx, slogLevel) {
		return
	}

	attrs := make([]slog.Attr, 0, len(l.attrs)+len(fields)+len(l.opts.contextFields)+1)
	attrs = append(attrs, l.attrs...)
	attrs = append(attrs, fields...)
	extractContextFields(ctx, l.opts, &attrs)
	addNamespaceFields(l.opts, &attrs)

	// 跳过 runtime.Callers、log 和 Info 等外层方法
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:])
	record := slog.NewRecord(time.Now(), slogLevel, msg, pcs[0])
	record.AddAttrs(attrs...)

	_ = l.handler.Handle(ctx, record)
	if level == FatalLevel {
		l.handler.Flush()
		os.Exit(1)
	}
}
