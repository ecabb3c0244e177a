package clog

import (
	"log/slog"
	"time"
)

// Field 日志字段，即 slog.Attr
type Field = slog.Attr

// flake 日志中反复出现的字段名
const (
	KeyComponent = "component"
	KeySnowflake = "snowflake"
	KeyError     = "err_msg"
)

func String(k, v string) Field { return slog.String(k, v) }

func Int(k string, v int) Field { return slog.Int(k, v) }

func Int64(k string, v int64) Field { return slog.Int64(k, v) }

// Uint64 超过 2^53 的值在 JSON 输出中同样精确
func Uint64(k string, v uint64) Field { return slog.Uint64(k, v) }

func Float64(k string, v float64) Field { return slog.Float64(k, v) }

func Bool(k string, v bool) Field { return slog.Bool(k, v) }

func Time(k string, v time.Time) Field { return slog.Time(k, v) }

func Duration(k string, v time.Duration) Field { return slog.Duration(k, v) }

func Any(k string, v any) Field { return slog.Any(k, v) }

// Component 标记日志来自哪个组件，各包的子 Logger 用它区分来源
func Component(name string) Field { return slog.String(KeyComponent, name) }

// Snowflake 十进制雪花 ID 字段
func Snowflake(id string) Field { return slog.String(KeySnowflake, id) }

// Error 只记录错误消息：err_msg="..."，err 为 nil 时字段被 slog 忽略
func Error(err error) Field {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorWithCode 记录为嵌套组 error={msg="...", code="invalid_snowflake"}
func ErrorWithCode(err error, code string) Field {
	attrs := make([]any, 0, 2)
	if err != nil {
		attrs = append(attrs, slog.String("msg", err.Error()))
	}
	attrs = append(attrs, slog.String("code", code))
	return slog.Group("error", attrs...)
}
