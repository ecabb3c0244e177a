// Package snowflake 生成并解析 64 位时间有序的 snowflake ID。
//
// ID 以规范十进制字符串的形式对外暴露，位布局见 bitlayout 包。
// 生成器不依赖任何外部存储，也不保证跨进程唯一：worker / process 字段
// 只是写入 ID 的标签，由部署方自行保证不冲突。
//
// 使用示例:
//
//	gen, _ := snowflake.New(snowflake.DefaultConfig())
//	id, _ := gen.Generate()                    // "130660958208131072"
//	d, _ := gen.Deconstruct(id)
//	fmt.Println(d.Date, d.WorkerID, d.Increment)
package snowflake

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/ceyewan/flake/bitlayout"
	"github.com/ceyewan/flake/clog"
	"github.com/ceyewan/flake/metrics"
	"github.com/ceyewan/flake/xerrors"
)

// Generator snowflake 生成器
//
// 同一个 Generator 可以在多个 goroutine 间共享，计数器的读取、推进与回绕
// 在互斥锁内完成。
type Generator struct {
	mu    sync.Mutex
	state State

	epoch     time.Time
	epochMs   int64
	workerID  int64
	processID int64

	clock  func() time.Time
	logger clog.Logger

	generated    metrics.Counter
	wrapped      metrics.Counter
	deconstructs metrics.Counter
}

// New 创建生成器，cfg 为 nil 时使用 DefaultConfig
func New(cfg *Config, opts ...Option) (*Generator, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	o := applyOptions(opts...)

	generated, err := o.meter.Counter(MetricGenerated, "Total number of generated snowflakes.")
	if err != nil {
		return nil, xerrors.Wrap(err, "create generated counter")
	}
	wrapped, err := o.meter.Counter(MetricIncrementWrapped, "Total number of increment counter wraparounds.")
	if err != nil {
		return nil, xerrors.Wrap(err, "create wrapped counter")
	}
	deconstructs, err := o.meter.Counter(MetricDeconstructed, "Total number of deconstruct calls.")
	if err != nil {
		return nil, xerrors.Wrap(err, "create deconstruct counter")
	}

	g := &Generator{
		state:        State{Increment: cfg.Increment},
		epoch:        time.UnixMilli(cfg.Epoch.UnixMilli()).UTC(),
		epochMs:      cfg.Epoch.UnixMilli(),
		workerID:     *cfg.WorkerID,
		processID:    *cfg.ProcessID,
		clock:        o.clock,
		logger:       o.logger.With(clog.Component("snowflake")),
		generated:    generated,
		wrapped:      wrapped,
		deconstructs: deconstructs,
	}

	g.logger.Info("snowflake generator created",
		clog.Int64("epoch", g.epochMs),
		clog.Int64("worker_id", g.workerID),
		clog.Int64("process_id", g.processID),
		clog.Int64("increment", cfg.Increment),
	)

	return g, nil
}

// Epoch 返回生成器使用的 epoch
func (g *Generator) Epoch() time.Time {
	return g.epoch
}

// EpochMillis 返回 epoch 的毫秒时间戳
func (g *Generator) EpochMillis() int64 {
	return g.epochMs
}

// Generate 以当前时钟生成 snowflake
func (g *Generator) Generate() (string, error) {
	return g.GenerateAt(g.clock())
}

// GenerateAt 以指定时刻生成 snowflake，不足 1ms 的部分向下取整
func (g *Generator) GenerateAt(t time.Time) (string, error) {
	d := t.Sub(g.epoch)
	if d < 0 {
		return "", xerrors.WithCode(
			xerrors.Wrapf(ErrInvalidTimestamp, "%s is before epoch %s", t.UTC().Format(time.RFC3339Nano), g.epoch.Format(time.RFC3339Nano)),
			"before_epoch")
	}
	// Duration 以纳秒计，正数下 Milliseconds 即为向下取整
	return g.generate(d.Milliseconds(), t.UnixMilli())
}

// GenerateMillis 以毫秒时间戳生成 snowflake，允许带小数，小数部分向下取整
func (g *Generator) GenerateMillis(ms float64) (string, error) {
	if math.IsNaN(ms) || math.IsInf(ms, 0) {
		return "", xerrors.WithCode(xerrors.Wrapf(ErrInvalidTimestamp, "timestamp %v", ms), "not_finite")
	}

	delta := math.Floor(ms) - float64(g.epochMs)
	if delta < 0 {
		return "", xerrors.WithCode(
			xerrors.Wrapf(ErrInvalidTimestamp, "timestamp %v is before epoch %d", ms, g.epochMs),
			"before_epoch")
	}
	if delta > bitlayout.MaxTimestamp {
		return "", timestampOverflow(ms)
	}
	return g.generate(int64(delta), int64(math.Floor(ms)))
}

// generate 在时间戳校验通过后才推进计数器，失败的调用没有副作用
func (g *Generator) generate(delta int64, at int64) (string, error) {
	if delta > bitlayout.MaxTimestamp {
		return "", timestampOverflow(at)
	}

	g.mu.Lock()
	increment, wrapped := g.state.Next()
	g.mu.Unlock()

	v, err := bitlayout.Compose(bitlayout.Fields{
		Timestamp: uint64(delta),
		Worker:    uint64(g.workerID),
		Process:   uint64(g.processID),
		Increment: uint64(increment),
	})
	if err != nil {
		// 各字段均已校验，走到这里说明位布局常量被改坏了
		return "", xerrors.Wrap(err, "compose snowflake")
	}

	ctx := context.Background()
	g.generated.Inc(ctx)
	if wrapped {
		g.wrapped.Inc(ctx)
		g.logger.Debug("increment counter wrapped", clog.Int64("timestamp", at))
	}

	return strconv.FormatUint(v, 10), nil
}

func timestampOverflow(at any) error {
	return xerrors.WithCode(
		xerrors.Wrapf(ErrInvalidTimestamp, "timestamp %v exceeds %d bits after epoch", at, bitlayout.TimestampBits),
		"timestamp_overflow")
}
