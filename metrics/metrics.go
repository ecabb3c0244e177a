package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"

	"github.com/ceyewan/flake/clog"
	"github.com/ceyewan/flake/xerrors"
)

// instrumentationName OTel Meter 的 instrumentation scope 名称
const instrumentationName = "github.com/ceyewan/flake"

// ============================================================================
// 工厂函数
// ============================================================================

// New 创建 Meter 实例
//
// cfg.Enabled 为 false 时返回 noop Meter。每个 Meter 使用独立的 Prometheus Registry，
// 同一进程内创建多个 Meter 不会互相冲突。
func New(cfg *Config, opts ...Option) (Meter, error) {
	if cfg == nil {
		return nil, xerrors.WithCode(xerrors.Wrap(ErrInvalidConfig, "config is required"), "config_required")
	}
	if !cfg.Enabled {
		return Discard(), nil
	}

	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	o := applyOptions(opts...)

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(cfg.Version),
		),
	)
	if err != nil {
		return nil, xerrors.Wrap(err, "create resource")
	}

	registry := promclient.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, xerrors.Wrap(err, "create prometheus exporter")
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)

	if cfg.Runtime {
		if err := runtime.Start(runtime.WithMeterProvider(mp)); err != nil {
			_ = mp.Shutdown(context.Background())
			return nil, xerrors.Wrap(err, "start runtime metrics")
		}
	}

	m := &meterImpl{
		meter:    mp.Meter(instrumentationName),
		provider: mp,
		logger:   o.logger,
	}

	if cfg.Port > 0 {
		if err := m.serve(cfg, registry); err != nil {
			_ = mp.Shutdown(context.Background())
			return nil, err
		}
	}

	return m, nil
}

// Must 类似 New，但出错时 panic
// 仅用于初始化阶段
func Must(cfg *Config, opts ...Option) Meter {
	m, err := New(cfg, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to create metrics: %v", err))
	}
	return m
}

// Discard 返回一个静默的 Meter，所有指标操作都是空操作
func Discard() Meter {
	return noop{}
}

// ============================================================================
// Meter 实现
// ============================================================================

type meterImpl struct {
	meter    metric.Meter
	provider *sdkmetric.MeterProvider
	server   *http.Server
	logger   clog.Logger
}

// serve 同步监听端口，端口被占用时 New 直接返回错误
func (m *meterImpl) serve(cfg *Config, registry *promclient.Registry) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return xerrors.Wrapf(err, "listen metrics endpoint :%d", cfg.Port)
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	m.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	m.logger.Info("prometheus endpoint listening",
		clog.String("addr", ln.Addr().String()),
		clog.String("path", cfg.Path),
	)
	go func() {
		if err := m.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("prometheus endpoint stopped", clog.Error(err))
		}
	}()
	return nil
}

func (m *meterImpl) Counter(name string, desc string, opts ...MetricOption) (Counter, error) {
	o := applyMetricOptions(opts)
	c, err := m.meter.Float64Counter(name, metric.WithDescription(desc), metric.WithUnit(o.Unit))
	if err != nil {
		return nil, xerrors.Wrapf(err, "create counter %q", name)
	}
	return otelCounter{c}, nil
}

func (m *meterImpl) Gauge(name string, desc string, opts ...MetricOption) (Gauge, error) {
	o := applyMetricOptions(opts)
	g, err := m.meter.Float64Gauge(name, metric.WithDescription(desc), metric.WithUnit(o.Unit))
	if err != nil {
		return nil, xerrors.Wrapf(err, "create gauge %q", name)
	}
	return &otelGauge{g: g, values: make(map[string]float64)}, nil
}

func (m *meterImpl) Histogram(name string, desc string, opts ...MetricOption) (Histogram, error) {
	o := applyMetricOptions(opts)
	histOpts := []metric.Float64HistogramOption{metric.WithDescription(desc), metric.WithUnit(o.Unit)}
	if len(o.Buckets) > 0 {
		histOpts = append(histOpts, metric.WithExplicitBucketBoundaries(o.Buckets...))
	}
	h, err := m.meter.Float64Histogram(name, histOpts...)
	if err != nil {
		return nil, xerrors.Wrapf(err, "create histogram %q", name)
	}
	return otelHistogram{h}, nil
}

// Shutdown 先关采集端点，再关 MeterProvider
func (m *meterImpl) Shutdown(ctx context.Context) error {
	var serverErr error
	if m.server != nil {
		serverErr = xerrors.Wrap(m.server.Shutdown(ctx), "shutdown metrics server")
	}
	return xerrors.Combine(serverErr, xerrors.Wrap(m.provider.Shutdown(ctx), "shutdown meter provider"))
}

// ============================================================================
// 指标实现
// ============================================================================

type otelCounter struct{ c metric.Float64Counter }

func (c otelCounter) Inc(ctx context.Context, labels ...Label) { c.Add(ctx, 1, labels...) }

// Add 忽略负值，Counter 只增不减
func (c otelCounter) Add(ctx context.Context, val float64, labels ...Label) {
	if val < 0 {
		return
	}
	c.c.Add(ctx, val, withLabels(labels))
}

// otelGauge OTel 同步 Gauge 只有 Record，Inc/Dec 依赖本地保存的当前值
type otelGauge struct {
	g      metric.Float64Gauge
	mu     sync.Mutex
	values map[string]float64
}

func (g *otelGauge) Set(ctx context.Context, val float64, labels ...Label) {
	g.update(ctx, labels, func(float64) float64 { return val })
}

func (g *otelGauge) Inc(ctx context.Context, labels ...Label) {
	g.update(ctx, labels, func(v float64) float64 { return v + 1 })
}

func (g *otelGauge) Dec(ctx context.Context, labels ...Label) {
	g.update(ctx, labels, func(v float64) float64 { return v - 1 })
}

func (g *otelGauge) update(ctx context.Context, labels []Label, next func(float64) float64) {
	key := labelKey(labels)
	g.mu.Lock()
	val := next(g.values[key])
	g.values[key] = val
	g.mu.Unlock()
	g.g.Record(ctx, val, withLabels(labels))
}

type otelHistogram struct{ h metric.Float64Histogram }

func (h otelHistogram) Record(ctx context.Context, val float64, labels ...Label) {
	h.h.Record(ctx, val, withLabels(labels))
}

func withLabels(labels []Label) metric.MeasurementOption {
	return metric.WithAttributes(toAttributes(labels)...)
}

func toAttributes(labels []Label) []attribute.KeyValue {
	if len(labels) == 0 {
		return nil
	}
	attrs := make([]attribute.KeyValue, len(labels))
	for i, l := range labels {
		attrs[i] = attribute.String(l.Key, l.Value)
	}
	return attrs
}

// labelKey 标签顺序不同视为不同的键
func labelKey(labels []Label) string {
	var b strings.Builder
	for i, l := range labels {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(l.Key)
		b.WriteByte('=')
		b.WriteString(l.Value)
	}
	return b.String()
}
