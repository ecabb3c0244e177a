package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ceyewan/flake/xerrors"
)

// ========================================
// 配置结构 (Configuration)
// ========================================

// Config HTTP 服务配置
//
//	server:
//	  addr: ":8080"
//	  mode: release
//	  read_timeout: 5s
//	  write_timeout: 5s
//	  shutdown_timeout: 10s
//	  rate_limit: 1000        # 全局 QPS，0 表示不限
//	  burst: 2000
//	  client_rate_limit: 50   # 单个客户端 IP 的 QPS，0 表示不限
//	  client_burst: 100
//	  client_idle_timeout: 5m
//	  max_clients: 10000
type Config struct {
	Addr            string        `yaml:"addr" json:"addr" mapstructure:"addr"`
	Mode            string        `yaml:"mode" json:"mode" mapstructure:"mode"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout" mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout" mapstructure:"shutdown_timeout"`

	RateLimit float64 `yaml:"rate_limit" json:"rate_limit" mapstructure:"rate_limit"`
	Burst     int     `yaml:"burst" json:"burst" mapstructure:"burst"`

	ClientRateLimit   float64       `yaml:"client_rate_limit" json:"client_rate_limit" mapstructure:"client_rate_limit"`
	ClientBurst       int           `yaml:"client_burst" json:"client_burst" mapstructure:"client_burst"`
	ClientIdleTimeout time.Duration `yaml:"client_idle_timeout" json:"client_idle_timeout" mapstructure:"client_idle_timeout"`
	MaxClients        int           `yaml:"max_clients" json:"max_clients" mapstructure:"max_clients"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	c := &Config{}
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.Mode == "" {
		c.Mode = gin.ReleaseMode
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 5 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 5 * time.Second
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
	if c.RateLimit > 0 && c.Burst <= 0 {
		c.Burst = int(c.RateLimit)
	}
	if c.ClientRateLimit > 0 && c.ClientBurst <= 0 {
		c.ClientBurst = int(c.ClientRateLimit)
	}
	if c.ClientIdleTimeout <= 0 {
		c.ClientIdleTimeout = 5 * time.Minute
	}
	if c.MaxClients <= 0 {
		c.MaxClients = 10000
	}
}

func (c *Config) validate() error {
	switch c.Mode {
	case gin.ReleaseMode, gin.DebugMode, gin.TestMode:
	default:
		return xerrors.WithCode(xerrors.Wrapf(ErrInvalidConfig, "mode %q", c.Mode), "invalid_mode")
	}
	if c.RateLimit < 0 || c.ClientRateLimit < 0 {
		return xerrors.WithCode(xerrors.Wrap(ErrInvalidConfig, "rate limit cannot be negative"), "negative_rate_limit")
	}
	if c.RateLimit > 0 && c.Burst < 1 || c.ClientRateLimit > 0 && c.ClientBurst < 1 {
		return xerrors.WithCode(xerrors.Wrap(ErrInvalidConfig, "burst must be positive"), "invalid_burst")
	}
	return nil
}
