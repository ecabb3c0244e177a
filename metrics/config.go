package metrics

import (
	"strings"

	"github.com/ceyewan/flake/xerrors"
)

// ErrInvalidConfig 指标配置非法
var ErrInvalidConfig = xerrors.New("metrics: invalid config")

// Config 指标系统配置
//
// 典型配置（YAML）：
//
//	metrics:
//	  enabled: true
//	  service_name: "flaked"
//	  version: "v0.1.0"
//	  port: 9090
//	  path: "/metrics"
//	  runtime: true
type Config struct {
	// Enabled 为 false 时 New 返回 noop Meter
	Enabled bool `mapstructure:"enabled"`

	// ServiceName 写入 OpenTelemetry Resource 的 service.name
	ServiceName string `mapstructure:"service_name"`

	// Version 写入 OpenTelemetry Resource 的 service.version
	Version string `mapstructure:"version"`

	// Port Prometheus 采集端点监听端口，0 表示不启动 HTTP 服务
	Port int `mapstructure:"port"`

	// Path Prometheus 采集路径，必须以 "/" 开头
	Path string `mapstructure:"path"`

	// Runtime 为 true 时额外采集 Go 运行时指标（GC、goroutine、内存）
	Runtime bool `mapstructure:"runtime"`
}

// NewDevDefaultConfig 开发环境默认配置
func NewDevDefaultConfig(serviceName string) *Config {
	return &Config{
		Enabled:     true,
		ServiceName: serviceName,
		Version:     "dev",
		Port:        9090,
		Path:        "/metrics",
	}
}

// NewProdDefaultConfig 生产环境默认配置
func NewProdDefaultConfig(serviceName, version string) *Config {
	return &Config{
		Enabled:     true,
		ServiceName: serviceName,
		Version:     version,
		Port:        9090,
		Path:        "/metrics",
		Runtime:     true,
	}
}

func (c *Config) setDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "flake"
	}
	if c.Port > 0 && c.Path == "" {
		c.Path = "/metrics"
	}
}

func (c *Config) validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return xerrors.WithCode(xerrors.Wrapf(ErrInvalidConfig, "port %d", c.Port), "port_out_of_range")
	}
	if c.Port > 0 && !strings.HasPrefix(c.Path, "/") {
		return xerrors.WithCode(xerrors.Wrapf(ErrInvalidConfig, "path %q", c.Path), "path_must_start_with_slash")
	}
	return nil
}
