package metrics

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/ceyewan/flake/xerrors"
)

const (
	MetricHTTPServerRequestTotal    = "http_server_requests_total"
	MetricHTTPServerDurationSeconds = "http_server_request_duration_seconds"
)

// DefaultHTTPDurationBuckets 生成/解析接口都是亚毫秒级操作，桶从 0.5ms 起步
var DefaultHTTPDurationBuckets = []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}

// HTTPServerMetricsConfig HTTP 服务端 RED 指标配置
type HTTPServerMetricsConfig struct {
	Service             string
	RequestTotalName    string
	RequestDurationName string
	DurationBuckets     []float64
	StaticLabels        []Label
}

// DefaultHTTPServerMetricsConfig 返回默认的 HTTP 服务端指标配置
func DefaultHTTPServerMetricsConfig(service string) *HTTPServerMetricsConfig {
	return &HTTPServerMetricsConfig{
		Service:             service,
		RequestTotalName:    MetricHTTPServerRequestTotal,
		RequestDurationName: MetricHTTPServerDurationSeconds,
		DurationBuckets:     DefaultHTTPDurationBuckets,
	}
}

// HTTPServerMetrics 请求总数与耗时分布，两者使用相同的标签
type HTTPServerMetrics struct {
	requestTotal Counter
	duration     Histogram
	baseLabels   []Label // 静态标签 + service + operation
}

// NewHTTPServerMetrics 在 m 上注册 HTTP 服务端指标
func NewHTTPServerMetrics(m Meter, cfg *HTTPServerMetricsConfig) (*HTTPServerMetrics, error) {
	if m == nil || cfg == nil {
		return nil, xerrors.WithCode(xerrors.Wrap(ErrInvalidConfig, "meter and config are required"), "config_required")
	}

	counter, err := m.Counter(orDefault(cfg.RequestTotalName, MetricHTTPServerRequestTotal),
		"Total number of HTTP requests.")
	if err != nil {
		return nil, xerrors.Wrap(err, "create http request counter")
	}

	opts := []MetricOption{WithUnit("s")}
	if len(cfg.DurationBuckets) > 0 {
		opts = append(opts, WithBuckets(cfg.DurationBuckets))
	}
	duration, err := m.Histogram(orDefault(cfg.RequestDurationName, MetricHTTPServerDurationSeconds),
		"HTTP request duration in seconds.", opts...)
	if err != nil {
		return nil, xerrors.Wrap(err, "create http request duration histogram")
	}

	base := make([]Label, 0, len(cfg.StaticLabels)+2)
	base = append(base, cfg.StaticLabels...)
	base = append(base,
		L(LabelService, orDefault(cfg.Service, "unknown")),
		L(LabelOperation, OperationHTTPServer),
	)
	return &HTTPServerMetrics{requestTotal: counter, duration: duration, baseLabels: base}, nil
}

// Observe 记录一次请求，route 须为路由模板（/v1/snowflakes/:id）而非原始路径
func (m *HTTPServerMetrics) Observe(ctx context.Context, method string, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodGet
	}

	labels := append(slices.Clip(m.baseLabels),
		L(LabelMethod, method),
		L(LabelRoute, orDefault(route, UnknownRoute)),
		L(LabelStatusClass, HTTPStatusClass(status)),
		L(LabelOutcome, HTTPOutcome(status)),
	)
	m.requestTotal.Inc(ctx, labels...)
	m.duration.Record(ctx, duration.Seconds(), labels...)
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}
