package clog

import "bytes"

// Option 配置 Logger 的函数式选项
type Option func(*options)

type options struct {
	namespaceParts []string
	contextFields  []ContextField
	buffer         *bytes.Buffer // Output 为 "buffer" 时写入这里，测试用
}

// ContextField 从 ctx.Value(Key) 取值并记录为 FieldName
type ContextField struct {
	Key       any
	FieldName string
}

// 标准 Context 字段，server 中间件以字符串为键写入
const (
	ContextKeyTraceID   = "trace_id"
	ContextKeyRequestID = "request_id"
)

// WithNamespace 追加命名空间，多段以 "." 连接：WithNamespace("flaked", "http") -> "flaked.http"
func WithNamespace(parts ...string) Option {
	return func(o *options) {
		o.namespaceParts = append(o.namespaceParts, parts...)
	}
}

// WithContextField 在 *Context 方法中提取 ctx.Value(key)，记录为 fieldName
func WithContextField(key any, fieldName string) Option {
	return func(o *options) {
		o.contextFields = append(o.contextFields, ContextField{Key: key, FieldName: fieldName})
	}
}

// WithStandardContext 提取 trace_id 与 request_id
func WithStandardContext() Option {
	return func(o *options) {
		for _, key := range []string{ContextKeyTraceID, ContextKeyRequestID} {
			o.contextFields = append(o.contextFields, ContextField{Key: key, FieldName: key})
		}
	}
}

func applyOptions(opts ...Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
