// Package testkit 提供各包测试共用的依赖：Logger、Meter 与可断言的 CaptureMeter。
package testkit

import (
	"context"
	"testing"

	"github.com/ceyewan/flake/clog"
	"github.com/ceyewan/flake/metrics"
)

// Kit 包含通用的测试依赖
type Kit struct {
	Ctx    context.Context
	Logger clog.Logger
	Meter  *CaptureMeter
}

// NewKit 返回一个包含默认依赖的测试工具包
func NewKit(t *testing.T) *Kit {
	t.Helper()
	return &Kit{
		Ctx:    t.Context(),
		Logger: NewLogger(),
		Meter:  NewCaptureMeter(),
	}
}

// NewLogger 返回一个用于测试的 logger
// 只输出 warn 及以上，避免淹没测试输出
func NewLogger() clog.Logger {
	logger, err := clog.New(&clog.Config{Level: "warn", Format: "console", Output: "stderr"},
		clog.WithNamespace("test"))
	if err != nil {
		return clog.Discard()
	}
	return logger
}

// NewMeter 返回不暴露端口的真实 Meter，用于冒烟测试 OTel 管线
func NewMeter() metrics.Meter {
	cfg := metrics.NewDevDefaultConfig("test")
	cfg.Port = 0
	meter, err := metrics.New(cfg)
	if err != nil {
		return metrics.Discard()
	}
	return meter
}
