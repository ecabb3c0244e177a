package clog

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNew 测试 Logger 创建
func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		opts    []Option
		wantErr bool
	}{
		{
			name:   "valid config",
			config: &Config{Level: "info", Format: "console", Output: "stdout"},
		},
		{
			name:   "nil config",
			config: nil,
		},
		{
			name:   "defaults filled",
			config: &Config{},
		},
		{
			name:    "invalid level",
			config:  &Config{Level: "verbose"},
			wantErr: true,
		},
		{
			name:    "invalid format",
			config:  &Config{Level: "info", Format: "xml"},
			wantErr: true,
		},
		{
			name:    "buffer output without buffer",
			config:  &Config{Output: "buffer"},
			wantErr: true,
		},
		{
			name:   "with options",
			config: NewProdDefaultConfig(),
			opts:   []Option{WithNamespace("flaked"), WithStandardContext()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.config, tt.opts...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestMust(t *testing.T) {
	assert.NotPanics(t, func() { Must(NewProdDefaultConfig()) })
	assert.Panics(t, func() { Must(&Config{Level: "nope"}) })
}

// TestLoggerLevels 测试级别过滤与级别名称
func TestLoggerLevels(t *testing.T) {
	logger, buf := newBufferLogger(t, "debug")

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 4)
	for i, want := range []string{"DEBUG", "INFO", "WARN", "ERROR"} {
		assert.Equal(t, want, entries[i]["level"])
	}
}

// TestLoggerSetLevel 测试动态设置日志级别
func TestLoggerSetLevel(t *testing.T) {
	logger, buf := newBufferLogger(t, "info")
	child := logger.With(String("component", "snowflake"))

	logger.Debug("hidden")
	logger.Info("shown")

	require.NoError(t, logger.SetLevel(DebugLevel))
	child.Debug("child debug after set")

	require.NoError(t, logger.SetLevel(ErrorLevel))
	logger.Warn("hidden again")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "INFO", entries[0]["level"])
	assert.Equal(t, "child debug after set", entries[1]["msg"])

	assert.Error(t, logger.SetLevel(Level(42)))
}

// TestLoggerFields 测试字段输出
func TestLoggerFields(t *testing.T) {
	logger, buf := newBufferLogger(t, "debug")

	logger.Info("snowflake generated",
		Snowflake("130660958208131072"),
		Component("snowflake"),
		Int("worker_id", 1),
		Int64("epoch", 1420070400000),
		Uint64("raw", 18446744073709551615),
		Bool("wrapped", false),
		ErrorWithCode(errors.New("bad input"), "invalid_snowflake"),
	)

	dec := json.NewDecoder(strings.NewReader(strings.TrimSpace(buf.String())))
	dec.UseNumber()
	var entry map[string]any
	require.NoError(t, dec.Decode(&entry))

	assert.Equal(t, "130660958208131072", entry["snowflake"])
	assert.Equal(t, "snowflake", entry["component"])
	assert.Equal(t, json.Number("1"), entry["worker_id"])
	assert.Equal(t, json.Number("1420070400000"), entry["epoch"])
	assert.Equal(t, json.Number("18446744073709551615"), entry["raw"])
	assert.Equal(t, false, entry["wrapped"])

	group, ok := entry["error"].(map[string]any)
	require.True(t, ok, "error should be a group, got %T", entry["error"])
	assert.Equal(t, "bad input", group["msg"])
	assert.Equal(t, "invalid_snowflake", group["code"])
}

func TestErrorField(t *testing.T) {
	assert.Equal(t, "err_msg", Error(errors.New("x")).Key)
	assert.Equal(t, "", Error(nil).Key)

	group := ErrorWithCode(nil, "dependency_required")
	assert.Equal(t, "error", group.Key)
	assert.Len(t, group.Value.Group(), 1)
}

func TestLevelText(t *testing.T) {
	text, err := WarnLevel.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "warn", string(text))

	_, err = Level(3).MarshalText()
	assert.Error(t, err)

	var l Level
	require.NoError(t, l.UnmarshalText([]byte(" WARNING ")))
	assert.Equal(t, WarnLevel, l)
	assert.Error(t, l.UnmarshalText([]byte("loud")))

	assert.Equal(t, "INFO", levelLabel(slog.LevelInfo))
	assert.Equal(t, "WARN", levelLabel(slog.LevelInfo+1))
	assert.Equal(t, "FATAL", levelLabel(slog.Level(FatalLevel)))
}

type ctxKey string

// TestLoggerWithContext 测试 Context 字段提取
func TestLoggerWithContext(t *testing.T) {
	logger, buf := newBufferLogger(t, "debug",
		WithStandardContext(),
		WithContextField(ctxKey("tenant"), "tenant"),
	)

	ctx := context.WithValue(context.Background(), "request_id", "req-1")
	ctx = context.WithValue(ctx, ctxKey("tenant"), "acme")

	logger.InfoContext(ctx, "with context")
	logger.Info("without context")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "req-1", entries[0]["request_id"])
	assert.Equal(t, "acme", entries[0]["tenant"])
	assert.NotContains(t, entries[1], "request_id")
}

// TestLoggerWithNamespace 测试命名空间
func TestLoggerWithNamespace(t *testing.T) {
	logger, buf := newBufferLogger(t, "debug", WithNamespace("flaked"))

	httpLogger := logger.WithNamespace("server", "http")
	httpLogger.Info("namespaced")
	logger.Info("root")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "flaked.server.http", entries[0][NamespaceKey])
	assert.Equal(t, "flaked", entries[1][NamespaceKey])
}

// TestLoggerWith 测试预设字段不会串到兄弟 Logger
func TestLoggerWith(t *testing.T) {
	logger, buf := newBufferLogger(t, "debug")

	base := logger.With(String("component", "snowflake"))
	a := base.With(String("op", "generate"))
	b := base.With(String("op", "deconstruct"))

	a.Info("a")
	b.Info("b")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "snowflake", entries[0]["component"])
	assert.Equal(t, "generate", entries[0]["op"])
	assert.Equal(t, "deconstruct", entries[1]["op"])
}

func TestAddSourceCaller(t *testing.T) {
	logger, buf := newBufferLogger(t, "debug")
	logger.Info("no caller")
	assert.NotContains(t, decodeLines(t, buf)[0], "caller")
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flake.log")
	logger, err := New(&Config{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)

	logger.Info("to file")
	logger.Flush()
}

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"debug", "INFO", "Warn", "error", "fatal"} {
		level, err := ParseLevel(s)
		require.NoError(t, err)
		assert.Equal(t, strings.ToLower(s), level.String())
	}

	level, err := ParseLevel("verbose")
	assert.Error(t, err)
	assert.Equal(t, InfoLevel, level)
	assert.Equal(t, "level(9)", Level(9).String())
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	logger.Info("nothing")
	assert.Equal(t, logger, logger.With(String("k", "v")))
	assert.Equal(t, logger, logger.WithNamespace("x"))
	assert.NoError(t, logger.SetLevel(DebugLevel))
	logger.Flush()
}
