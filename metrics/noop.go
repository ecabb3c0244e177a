package metrics

import "context"

// noop 同时实现 Meter 与全部指标接口，Enabled 为 false 或未注入 Meter 时使用
type noop struct{}

func (noop) Counter(string, string, ...MetricOption) (Counter, error) { return noop{}, nil }

func (noop) Gauge(string, string, ...MetricOption) (Gauge, error) { return noop{}, nil }

func (noop) Histogram(string, string, ...MetricOption) (Histogram, error) { return noop{}, nil }

func (noop) Shutdown(context.Context) error { return nil }

func (noop) Inc(context.Context, ...Label) {}

func (noop) Dec(context.Context, ...Label) {}

func (noop) Add(context.Context, float64, ...Label) {}

func (noop) Set(context.Context, float64, ...Label) {}

func (noop) Record(context.Context, float64, ...Label) {}
