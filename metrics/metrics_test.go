package metrics

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/ceyewan/flake/clog"
	"github.com/ceyewan/flake/xerrors"
)

func shutdown(t *testing.T, m Meter) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

// TestNew 测试创建 Meter 实例
func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *Config
		opts     []Option
		wantErr  bool
		wantCode string
		wantNoop bool
	}{
		{
			name:     "nil config",
			cfg:      nil,
			wantErr:  true,
			wantCode: "config_required",
		},
		{
			name:     "disabled",
			cfg:      &Config{Enabled: false, ServiceName: "flaked"},
			wantNoop: true,
		},
		{
			name: "enabled without endpoint",
			cfg:  &Config{Enabled: true, ServiceName: "flaked", Version: "v0.1.0"},
		},
		{
			name: "with runtime metrics",
			cfg:  &Config{Enabled: true, ServiceName: "flaked", Runtime: true},
		},
		{
			name: "with logger option",
			cfg:  &Config{Enabled: true, ServiceName: "flaked"},
			opts: []Option{WithLogger(clog.Discard())},
		},
		{
			name: "nil logger ignored",
			cfg:  &Config{Enabled: true, ServiceName: "flaked"},
			opts: []Option{WithLogger(nil)},
		},
		{
			name:     "port out of range",
			cfg:      &Config{Enabled: true, Port: 70000, Path: "/metrics"},
			wantErr:  true,
			wantCode: "port_out_of_range",
		},
		{
			name:     "path without slash",
			cfg:      &Config{Enabled: true, Port: 9100, Path: "metrics"},
			wantErr:  true,
			wantCode: "path_must_start_with_slash",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meter, err := New(tt.cfg, tt.opts...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("New() error = %v, want ErrInvalidConfig", err)
				}
				if got := xerrors.GetCode(err); got != tt.wantCode {
					t.Errorf("GetCode() = %q, want %q", got, tt.wantCode)
				}
				return
			}
			if meter == nil {
				t.Fatal("New() returned nil meter")
			}
			if _, ok := meter.(noop); ok != tt.wantNoop {
				t.Errorf("noop = %v, want %v", ok, tt.wantNoop)
			}
			shutdown(t, meter)
		})
	}
}

func TestMust(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Must(nil) did not panic")
		}
	}()
	Must(nil)
}

// TestDiscard 所有操作都应正常返回但不产生效果
func TestDiscard(t *testing.T) {
	meter := Discard()
	ctx := context.Background()

	counter, err := meter.Counter("test", "test")
	if err != nil {
		t.Errorf("Counter() error = %v", err)
	}
	counter.Inc(ctx)
	counter.Add(ctx, 3)

	gauge, err := meter.Gauge("test", "test")
	if err != nil {
		t.Errorf("Gauge() error = %v", err)
	}
	gauge.Set(ctx, 100)
	gauge.Inc(ctx)
	gauge.Dec(ctx)

	histogram, err := meter.Histogram("test", "test", WithBuckets([]float64{1, 2}))
	if err != nil {
		t.Errorf("Histogram() error = %v", err)
	}
	histogram.Record(ctx, 0.123)

	if err := meter.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

// TestMeterInstruments 测试真实 Meter 的指标创建与记录
func TestMeterInstruments(t *testing.T) {
	meter, err := New(&Config{Enabled: true, ServiceName: "flaked", Version: "test"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer shutdown(t, meter)

	ctx := context.Background()

	counter, err := meter.Counter("flake_snowflake_generated_total", "生成的雪花 ID 总数", WithUnit("{id}"))
	if err != nil {
		t.Fatalf("Counter() error = %v", err)
	}
	counter.Inc(ctx, L(LabelOutcome, OutcomeSuccess))
	counter.Add(ctx, 5)
	counter.Add(ctx, -1)

	gauge, err := meter.Gauge("flake_increment_current", "当前自增计数器")
	if err != nil {
		t.Fatalf("Gauge() error = %v", err)
	}
	gauge.Set(ctx, 10, L("worker_id", "1"))
	gauge.Inc(ctx, L("worker_id", "1"))
	gauge.Dec(ctx, L("worker_id", "1"))
	gauge.Dec(ctx, L("worker_id", "1"))

	impl, ok := gauge.(*otelGauge)
	if !ok {
		t.Fatalf("gauge type = %T, want *otelGauge", gauge)
	}
	if got := impl.values[labelKey([]Label{L("worker_id", "1")})]; got != 9 {
		t.Errorf("gauge value = %v, want 9", got)
	}

	histogram, err := meter.Histogram("flake_latency_seconds", "耗时",
		WithUnit("s"),
		WithBuckets(DefaultHTTPDurationBuckets),
	)
	if err != nil {
		t.Fatalf("Histogram() error = %v", err)
	}
	histogram.Record(ctx, 0.0003, L(LabelRoute, "/v1/snowflakes"))
}

func TestMetricOptions(t *testing.T) {
	buckets := []float64{0.1, 1}
	o := applyMetricOptions([]MetricOption{WithUnit("s"), WithBuckets(buckets)})
	if o.Unit != "s" {
		t.Errorf("Unit = %q, want s", o.Unit)
	}
	buckets[0] = 42
	if o.Buckets[0] != 0.1 {
		t.Errorf("WithBuckets should copy its input, got %v", o.Buckets)
	}
}

func TestLabelKey(t *testing.T) {
	if got := labelKey(nil); got != "" {
		t.Errorf("labelKey(nil) = %q", got)
	}
	if got := labelKey([]Label{L("a", "1"), L("b", "2")}); got != "a=1|b=2" {
		t.Errorf("labelKey() = %q, want a=1|b=2", got)
	}
}

func TestDefaultConfigs(t *testing.T) {
	dev := NewDevDefaultConfig("flaked")
	if dev.ServiceName != "flaked" || dev.Version != "dev" || dev.Port != 9090 || dev.Path != "/metrics" {
		t.Errorf("NewDevDefaultConfig() = %+v", dev)
	}

	prod := NewProdDefaultConfig("flaked", "v1.2.3")
	if prod.Version != "v1.2.3" || !prod.Enabled || !prod.Runtime {
		t.Errorf("NewProdDefaultConfig() = %+v", prod)
	}

	cfg := &Config{Enabled: true, Port: 9100}
	cfg.setDefaults()
	if cfg.ServiceName != "flake" || cfg.Path != "/metrics" {
		t.Errorf("setDefaults() = %+v", cfg)
	}
}

func TestHTTPStatusClassAndOutcome(t *testing.T) {
	tests := []struct {
		status     int
		wantClass  string
		wantResult string
	}{
		{status: 200, wantClass: "2xx", wantResult: OutcomeSuccess},
		{status: 201, wantClass: "2xx", wantResult: OutcomeSuccess},
		{status: 302, wantClass: "3xx", wantResult: OutcomeSuccess},
		{status: 400, wantClass: "4xx", wantResult: OutcomeError},
		{status: 429, wantClass: "4xx", wantResult: OutcomeError},
		{status: 503, wantClass: "5xx", wantResult: OutcomeError},
		{status: 99, wantClass: "unknown", wantResult: OutcomeError},
	}

	for _, tc := range tests {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			if got := HTTPStatusClass(tc.status); got != tc.wantClass {
				t.Fatalf("HTTPStatusClass() = %q, want %q", got, tc.wantClass)
			}
			if got := HTTPOutcome(tc.status); got != tc.wantResult {
				t.Fatalf("HTTPOutcome() = %q, want %q", got, tc.wantResult)
			}
		})
	}
}

func TestOutcome(t *testing.T) {
	if got := Outcome(nil); got != OutcomeSuccess {
		t.Errorf("Outcome(nil) = %q", got)
	}
	if got := Outcome(errors.New("boom")); got != OutcomeError {
		t.Errorf("Outcome(err) = %q", got)
	}
}

func TestNewHTTPServerMetrics(t *testing.T) {
	if _, err := NewHTTPServerMetrics(nil, DefaultHTTPServerMetricsConfig("flaked")); err == nil {
		t.Error("NewHTTPServerMetrics(nil meter) error = nil")
	}
	if _, err := NewHTTPServerMetrics(Discard(), nil); err == nil {
		t.Error("NewHTTPServerMetrics(nil config) error = nil")
	}

	m, err := NewHTTPServerMetrics(Discard(), &HTTPServerMetricsConfig{})
	if err != nil {
		t.Fatalf("NewHTTPServerMetrics() error = %v", err)
	}
	if got := m.baseLabels[0]; got != L(LabelService, "unknown") {
		t.Errorf("service label = %+v, want unknown", got)
	}
	m.Observe(context.Background(), http.MethodPost, "/v1/snowflakes", 201, time.Millisecond)

	var nilMetrics *HTTPServerMetrics
	nilMetrics.Observe(context.Background(), http.MethodGet, "/", 200, time.Millisecond)
}
