package clog

import (
	"fmt"
	"strings"
)

// timeFormat 毫秒精度，与雪花 ID 的时间粒度一致
const timeFormat = "2006-01-02T15:04:05.000Z07:00"

// Config 日志配置
//
//	log:
//	  level: info          # debug|info|warn|error|fatal
//	  format: json         # json|console
//	  output: stdout       # stdout|stderr|<文件路径>
//	  addSource: false     # 记录 caller
//	  sourceRoot: ""       # caller 路径相对此目录显示
type Config struct {
	Level      string `json:"level" yaml:"level" mapstructure:"level"`
	Format     string `json:"format" yaml:"format" mapstructure:"format"`
	Output     string `json:"output" yaml:"output" mapstructure:"output"`
	AddSource  bool   `json:"addSource" yaml:"addSource" mapstructure:"addSource"`
	SourceRoot string `json:"sourceRoot" yaml:"sourceRoot" mapstructure:"sourceRoot"`
}

// NewDevDefaultConfig debug 级别，console 输出并带 caller
func NewDevDefaultConfig() *Config {
	return &Config{Level: "debug", Format: "console", Output: "stdout", AddSource: true}
}

// NewProdDefaultConfig info 级别，json 输出
func NewProdDefaultConfig() *Config {
	return &Config{Level: "info", Format: "json", Output: "stdout"}
}

func (c *Config) setDefaults() {
	if c.Level == "" {
		c.Level = InfoLevel.String()
	}
	if c.Format == "" {
		c.Format = "console"
	}
	if c.Output == "" {
		c.Output = "stdout"
	}
}

// validate 先补齐默认值再校验
func (c *Config) validate() error {
	c.setDefaults()
	if _, err := ParseLevel(c.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Format) {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("invalid format: %s, must be json or console", c.Format)
	}
}
