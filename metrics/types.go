// Package metrics 为 flake 的各组件提供统一的指标收集能力。
// 基于 OpenTelemetry 构建，对外只暴露 Counter、Gauge、Histogram 三种指标接口。
//
// 设计要点：
//   - 扁平化设计，组件通过 Meter 接口按需创建指标
//   - 禁用时返回 noop 实现，调用方无需判空
//   - 内置 Prometheus 导出器，Port > 0 时自动暴露 HTTP 采集端点
//
// 快速开始：
//
//	meter, err := metrics.New(&metrics.Config{
//	    Enabled:     true,
//	    ServiceName: "flaked",
//	    Version:     "v0.1.0",
//	    Port:        9090,
//	    Path:        "/metrics",
//	})
//	if err != nil {
//	    return err
//	}
//	defer meter.Shutdown(ctx)
//
//	generated, _ := meter.Counter("flake_snowflake_generated_total", "生成的雪花 ID 总数")
//	generated.Inc(ctx, metrics.L("worker_id", "1"))
package metrics

import "context"

// Counter 计数器接口，只增不减
//
// 典型场景：生成的 ID 数量、解码失败次数、HTTP 请求总数。
type Counter interface {
	// Inc 将计数器增加 1
	Inc(ctx context.Context, labels ...Label)

	// Add 将计数器增加给定的值，负数会被忽略
	Add(ctx context.Context, val float64, labels ...Label)
}

// Gauge 仪表盘接口，记录可任意增减的瞬时值
//
// 使用示例：
//
//	gauge, _ := meter.Gauge("flake_increment_current", "当前自增计数器的值")
//	gauge.Set(ctx, 17)
//	gauge.Inc(ctx)
//	gauge.Dec(ctx)
type Gauge interface {
	// Set 将 gauge 设置为给定的值，覆盖之前的值
	Set(ctx context.Context, val float64, labels ...Label)

	// Inc 将 gauge 增加 1
	Inc(ctx context.Context, labels ...Label)

	// Dec 将 gauge 减少 1
	Dec(ctx context.Context, labels ...Label)
}

// Histogram 直方图接口，记录值的分布
//
// 使用示例：
//
//	histogram, _ := meter.Histogram(
//	    "http_server_request_duration_seconds",
//	    "HTTP 请求耗时",
//	    metrics.WithUnit("s"),
//	    metrics.WithBuckets([]float64{0.001, 0.01, 0.1, 1}),
//	)
//	histogram.Record(ctx, 0.012, metrics.L("route", "/v1/snowflakes"))
type Histogram interface {
	// Record 在直方图中记录一个值
	Record(ctx context.Context, val float64, labels ...Label)
}

// Meter 指标创建工厂接口
//
// 一个 Meter 实例通常对应一个进程。通过 Meter 创建的指标是并发安全的，
// 同名指标重复创建时返回同一个底层 instrument。
type Meter interface {
	// Counter 创建计数器，name 应符合 Prometheus 命名规范（如 flake_snowflake_generated_total）
	Counter(name string, desc string, opts ...MetricOption) (Counter, error)

	// Gauge 创建仪表盘
	Gauge(name string, desc string, opts ...MetricOption) (Gauge, error)

	// Histogram 创建直方图
	Histogram(name string, desc string, opts ...MetricOption) (Histogram, error)

	// Shutdown 刷新并关闭 Meter，同时停止 Prometheus 采集端点
	// 通常在进程退出时调用
	Shutdown(ctx context.Context) error
}

// MetricOption 指标配置选项函数类型
type MetricOption func(*MetricOptions)

// MetricOptions 指标选项
type MetricOptions struct {
	// Unit 指标单位，建议使用 UCUM 代码，如 "s"、"By"、"{request}"
	Unit string

	// Buckets 直方图的显式桶边界，仅对 Histogram 生效
	Buckets []float64
}

// WithUnit 设置指标的单位
func WithUnit(unit string) MetricOption {
	return func(o *MetricOptions) {
		o.Unit = unit
	}
}

// WithBuckets 设置直方图桶边界，边界需要严格递增
func WithBuckets(buckets []float64) MetricOption {
	return func(o *MetricOptions) {
		o.Buckets = append([]float64(nil), buckets...)
	}
}

func applyMetricOptions(opts []MetricOption) *MetricOptions {
	o := &MetricOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
