package testkit

import (
	"context"
	"sync"

	"github.com/ceyewan/flake/metrics"
)

// Record 一次指标写入
type Record struct {
	Value  float64
	Labels []metrics.Label
}

// Label 返回 key 对应的标签值，不存在时返回空串
func (r Record) Label(key string) string {
	for _, l := range r.Labels {
		if l.Key == key {
			return l.Value
		}
	}
	return ""
}

// CaptureMeter 记录所有写入的 metrics.Meter 实现，并发安全
//
// Counter 的 Inc/Add、Gauge 的 Set/Inc/Dec、Histogram 的 Record 都按指标名追加一条 Record。
type CaptureMeter struct {
	mu      sync.Mutex
	records map[string][]Record
}

// NewCaptureMeter 创建 CaptureMeter
func NewCaptureMeter() *CaptureMeter {
	return &CaptureMeter{records: make(map[string][]Record)}
}

func (m *CaptureMeter) Counter(name string, _ string, _ ...metrics.MetricOption) (metrics.Counter, error) {
	return &captureInstrument{name: name, m: m}, nil
}

func (m *CaptureMeter) Gauge(name string, _ string, _ ...metrics.MetricOption) (metrics.Gauge, error) {
	return &captureInstrument{name: name, m: m}, nil
}

func (m *CaptureMeter) Histogram(name string, _ string, _ ...metrics.MetricOption) (metrics.Histogram, error) {
	return &captureInstrument{name: name, m: m}, nil
}

func (m *CaptureMeter) Shutdown(context.Context) error { return nil }

// Records 返回指标 name 的全部写入，按写入顺序
func (m *CaptureMeter) Records(name string) []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Record(nil), m.records[name]...)
}

// Sum 返回指标 name 所有写入值之和
func (m *CaptureMeter) Sum(name string) float64 {
	var sum float64
	for _, r := range m.Records(name) {
		sum += r.Value
	}
	return sum
}

func (m *CaptureMeter) record(name string, val float64, labels []metrics.Label) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[name] = append(m.records[name], Record{
		Value:  val,
		Labels: append([]metrics.Label(nil), labels...),
	})
}

type captureInstrument struct {
	name string
	m    *CaptureMeter
}

func (c *captureInstrument) Inc(_ context.Context, labels ...metrics.Label) {
	c.m.record(c.name, 1, labels)
}

func (c *captureInstrument) Add(_ context.Context, val float64, labels ...metrics.Label) {
	if val < 0 {
		return
	}
	c.m.record(c.name, val, labels)
}

func (c *captureInstrument) Set(_ context.Context, val float64, labels ...metrics.Label) {
	c.m.record(c.name, val, labels)
}

func (c *captureInstrument) Dec(_ context.Context, labels ...metrics.Label) {
	c.m.record(c.name, -1, labels)
}

func (c *captureInstrument) Record(_ context.Context, val float64, labels ...metrics.Label) {
	c.m.record(c.name, val, labels)
}
