package config

import (
	"context"
	"strings"

	"github.com/ceyewan/flake/xerrors"
)

// DefaultEnvPrefix 默认环境变量前缀
const DefaultEnvPrefix = "FLAKE"

// Config 加载器配置
type Config struct {
	Name      string   // 配置文件名称（不含扩展名），默认 "config"
	Paths     []string // 配置文件搜索路径，默认 [".", "./config"]
	FileType  string   // 配置文件类型 (yaml, json, toml)，默认 yaml
	EnvPrefix string   // 环境变量前缀，默认 "FLAKE"
}

// validate 设置默认值并验证配置
func (c *Config) validate() error {
	if c.Name == "" {
		c.Name = "config"
	}
	if c.Paths == nil {
		c.Paths = []string{".", "./config"}
	}
	if c.FileType == "" {
		c.FileType = "yaml"
	}
	if c.EnvPrefix == "" {
		c.EnvPrefix = DefaultEnvPrefix
	}
	c.EnvPrefix = strings.ToUpper(c.EnvPrefix)

	switch c.FileType {
	case "yaml", "yml", "json", "toml":
	default:
		return xerrors.WithCode(xerrors.Wrapf(ErrInvalidConfig, "file type %q", c.FileType), "unsupported_file_type")
	}
	if strings.ContainsAny(c.Name, `/\`) {
		return xerrors.WithCode(xerrors.Wrapf(ErrInvalidConfig, "name %q must not contain path separators", c.Name), "invalid_name")
	}
	return nil
}

// New 创建配置加载器，cfg 为 nil 时使用默认配置
func New(cfg *Config, opts ...Option) (Loader, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return newLoader(cfg, opts...), nil
}

// MustLoad 创建并加载配置，失败时 panic
// 仅用于初始化阶段
func MustLoad(ctx context.Context, cfg *Config, opts ...Option) Loader {
	l, err := New(cfg, opts...)
	if err != nil {
		panic(err)
	}
	if err := l.Load(ctx); err != nil {
		panic(err)
	}
	return l
}
