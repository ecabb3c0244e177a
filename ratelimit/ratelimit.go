// Package ratelimit 提供按 key 隔离的单机令牌桶限流器。
//
// 每个 key 拥有独立的 golang.org/x/time/rate 令牌桶，桶保存在有界的
// otter 缓存中：空闲超过 IdleTimeout 的桶被淘汰，总数不超过 MaxKeys。
// 被淘汰的 key 再次出现时会得到一个满的新桶。
//
//	limiter, _ := ratelimit.New(&ratelimit.Config{
//	    Limit:   ratelimit.Limit{Rate: 50, Burst: 100},
//	    MaxKeys: 10000,
//	})
//	if ok, _ := limiter.Allow(ctx, clientIP); !ok {
//	    // 429
//	}
package ratelimit

import (
	"context"
	"time"

	"github.com/maypok86/otter/v2"
	"golang.org/x/time/rate"

	"github.com/ceyewan/flake/clog"
	"github.com/ceyewan/flake/xerrors"
)

// Limit 令牌桶参数
type Limit struct {
	Rate  float64 `yaml:"rate" json:"rate" mapstructure:"rate"`    // 每秒生成的令牌数
	Burst int     `yaml:"burst" json:"burst" mapstructure:"burst"` // 桶容量
}

func (l Limit) validate() error {
	if l.Rate <= 0 {
		return xerrors.WithCode(xerrors.Wrapf(ErrInvalidLimit, "rate %v", l.Rate), "non_positive_rate")
	}
	if l.Burst <= 0 {
		return xerrors.WithCode(xerrors.Wrapf(ErrInvalidLimit, "burst %d", l.Burst), "non_positive_burst")
	}
	return nil
}

// Config 限流器配置
type Config struct {
	Limit       Limit         `yaml:"limit" json:"limit" mapstructure:"limit"`
	MaxKeys     int           `yaml:"max_keys" json:"max_keys" mapstructure:"max_keys"`             // 默认 10000
	IdleTimeout time.Duration `yaml:"idle_timeout" json:"idle_timeout" mapstructure:"idle_timeout"` // 默认 5m
}

func (c *Config) setDefaults() {
	if c.MaxKeys <= 0 {
		c.MaxKeys = 10000
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 5 * time.Minute
	}
}

// Limiter 按 key 隔离的令牌桶限流器，并发安全
type Limiter struct {
	buckets *otter.Cache[string, *rate.Limiter]
	limit   Limit
	logger  clog.Logger
}

// New 创建限流器
func New(cfg *Config, opts ...Option) (*Limiter, error) {
	if cfg == nil {
		return nil, xerrors.WithCode(xerrors.Wrap(ErrInvalidLimit, "config is nil"), "config_required")
	}
	cfg.setDefaults()
	if err := cfg.Limit.validate(); err != nil {
		return nil, err
	}

	o := &options{logger: clog.Discard()}
	for _, opt := range opts {
		opt(o)
	}

	buckets, err := otter.New(&otter.Options[string, *rate.Limiter]{
		MaximumSize:      cfg.MaxKeys,
		ExpiryCalculator: otter.ExpiryAccessing[string, *rate.Limiter](cfg.IdleTimeout),
	})
	if err != nil {
		return nil, xerrors.Wrap(err, "create bucket cache")
	}

	logger := o.logger.With(clog.Component("ratelimit"))
	logger.Debug("rate limiter created",
		clog.Float64("rate", cfg.Limit.Rate),
		clog.Int("burst", cfg.Limit.Burst),
		clog.Int("max_keys", cfg.MaxKeys),
		clog.Duration("idle_timeout", cfg.IdleTimeout),
	)

	return &Limiter{
		buckets: buckets,
		limit:   cfg.Limit,
		logger:  logger,
	}, nil
}

// Limit 返回限流规则
func (l *Limiter) Limit() Limit {
	return l.limit
}

// Allow 尝试获取 1 个令牌，不阻塞
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	return l.AllowN(ctx, key, 1)
}

// AllowN 尝试获取 n 个令牌，不阻塞
func (l *Limiter) AllowN(ctx context.Context, key string, n int) (bool, error) {
	if key == "" {
		return false, ErrKeyEmpty
	}
	if n <= 0 {
		return false, xerrors.WithCode(xerrors.Wrapf(ErrInvalidLimit, "n must be positive, got %d", n), "non_positive_n")
	}

	allowed := l.bucket(key).AllowN(time.Now(), n)
	if !allowed {
		l.logger.DebugContext(ctx, "rate limit exceeded", clog.String("key", key), clog.Int("requested", n))
	}
	return allowed, nil
}

// Wait 阻塞直到获取 1 个令牌或 ctx 结束
func (l *Limiter) Wait(ctx context.Context, key string) error {
	if key == "" {
		return ErrKeyEmpty
	}
	return l.bucket(key).Wait(ctx)
}

func (l *Limiter) bucket(key string) *rate.Limiter {
	if b, ok := l.buckets.GetIfPresent(key); ok {
		return b
	}
	// 并发首次访问时只保留先写入的桶
	b, _ := l.buckets.SetIfAbsent(key, rate.NewLimiter(rate.Limit(l.limit.Rate), l.limit.Burst))
	return b
}
