package clog

import (
	"fmt"
	"log/slog"
	"strings"
)

// Level 日志级别，数值与 slog.Level 对齐，Fatal 在 Error 之上再加 4
type Level int

const (
	DebugLevel Level = Level(slog.LevelDebug)
	InfoLevel  Level = Level(slog.LevelInfo)
	WarnLevel  Level = Level(slog.LevelWarn)
	ErrorLevel Level = Level(slog.LevelError)
	FatalLevel Level = Level(slog.LevelError + 4)
)

var levelNames = map[Level]string{
	DebugLevel: "debug",
	InfoLevel:  "info",
	WarnLevel:  "warn",
	ErrorLevel: "error",
	FatalLevel: "fatal",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// valid 只有五个命名级别可以用于 SetLevel
func (l Level) valid() bool {
	_, ok := levelNames[l]
	return ok
}

// MarshalText 让 Level 以名称形式出现在 YAML/JSON 中
func (l Level) MarshalText() ([]byte, error) {
	if !l.valid() {
		return nil, fmt.Errorf("unknown log level: %d", int(l))
	}
	return []byte(l.String()), nil
}

func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseLevel 解析级别名称，忽略大小写和首尾空白；"warning" 视同 "warn"
//
// 无法识别时返回 InfoLevel 和错误。
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "warning" {
		name = "warn"
	}
	for l, n := range levelNames {
		if n == name {
			return l, nil
		}
	}
	return InfoLevel, fmt.Errorf("unknown log level: %s", s)
}

func toSlogLevel(l Level) slog.Level {
	if !l.valid() {
		return slog.LevelInfo
	}
	return slog.Level(l)
}
