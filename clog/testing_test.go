package clog

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

// withBuffer 是一个测试专用选项，用于将日志输出写入指定的缓冲区
func withBuffer(buf *bytes.Buffer) Option {
	return func(o *options) {
		o.buffer = buf
	}
}

// newBufferLogger 创建输出到缓冲区的 JSON Logger
func newBufferLogger(t *testing.T, level string, opts ...Option) (Logger, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	logger, err := New(&Config{
		Level:  level,
		Format: "json",
		Output: "buffer",
	}, append([]Option{withBuffer(&buf)}, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return logger, &buf
}

// decodeLines 将缓冲区按行解析为 JSON 对象
func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("line %q is not valid JSON: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}
