package trace

import "github.com/ceyewan/flake/xerrors"

// ErrInvalidConfig 链路追踪配置非法
var ErrInvalidConfig = xerrors.New("trace: invalid config")

const (
	BatcherBatch  = "batch"  // 异步批量导出
	BatcherSimple = "simple" // 每个 Span 结束时同步导出
)

// Config 链路追踪配置
//
//	trace:
//	  enabled: false        # false 时只在本地生成 TraceID，不导出
//	  service_name: flaked
//	  endpoint: localhost:4317
//	  sampler: 1.0
//	  batcher: batch
//	  insecure: true
type Config struct {
	Enabled     bool    `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
	ServiceName string  `yaml:"service_name" json:"service_name" mapstructure:"service_name"`
	Endpoint    string  `yaml:"endpoint" json:"endpoint" mapstructure:"endpoint"`
	Sampler     float64 `yaml:"sampler" json:"sampler" mapstructure:"sampler"`
	Batcher     string  `yaml:"batcher" json:"batcher" mapstructure:"batcher"`
	Insecure    bool    `yaml:"insecure" json:"insecure" mapstructure:"insecure"`
}

// DefaultConfig 返回导出到本地 OTLP Collector 的默认配置
func DefaultConfig(serviceName string) *Config {
	return &Config{
		Enabled:     true,
		ServiceName: serviceName,
		Endpoint:    "localhost:4317",
		Sampler:     1.0,
		Batcher:     BatcherBatch,
		Insecure:    true,
	}
}

func (c *Config) setDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "flake"
	}
	if c.Batcher == "" {
		c.Batcher = BatcherBatch
	}
}

func (c *Config) validate() error {
	if c.Sampler < 0 || c.Sampler > 1 {
		return xerrors.WithCode(xerrors.Wrapf(ErrInvalidConfig, "sampler must be between 0 and 1, got %v", c.Sampler), "sampler_out_of_range")
	}
	if c.Batcher != BatcherBatch && c.Batcher != BatcherSimple {
		return xerrors.WithCode(xerrors.Wrapf(ErrInvalidConfig, "batcher must be %q or %q, got %q", BatcherBatch, BatcherSimple, c.Batcher), "unknown_batcher")
	}
	if c.Enabled && c.Endpoint == "" {
		return xerrors.WithCode(xerrors.Wrap(ErrInvalidConfig, "endpoint is required when tracing is enabled"), "endpoint_required")
	}
	return nil
}
