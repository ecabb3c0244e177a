package clog

import (
	"context"
	"log/slog"
	"strings"
)

// NamespaceKey 命名空间字段名
const NamespaceKey = "namespace"

func addNamespaceFields(opts *options, attrs *[]slog.Attr) {
	if opts == nil || len(opts.namespaceParts) == 0 {
		return
	}
	*attrs = append(*attrs, slog.String(NamespaceKey, strings.Join(opts.namespaceParts, ".")))
}

// extractContextFields 只追加 ctx 中存在的字段
func extractContextFields(ctx context.Context, opts *options, attrs *[]slog.Attr) {
	if ctx == nil || opts == nil {
		return
	}
	for _, cf := range opts.contextFields {
		if v := ctx.Value(cf.Key); v != nil {
			*attrs = append(*attrs, slog.Any(cf.FieldName, v))
		}
	}
}
