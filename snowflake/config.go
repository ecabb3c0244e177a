package snowflake

import (
	"time"

	"github.com/ceyewan/flake/bitlayout"
	"github.com/ceyewan/flake/xerrors"
)

// DefaultEpochMillis 默认 epoch：2015-01-01T00:00:00.000Z
const DefaultEpochMillis int64 = 1420070400000

// 默认的 worker / process 标识
const (
	DefaultWorkerID  int64 = 1
	DefaultProcessID int64 = 0
)

// ========================================
// 配置结构 (Configuration)
// ========================================

// Config 生成器配置
type Config struct {
	// Epoch 时间戳字段的起点，零值使用 DefaultEpochMillis
	Epoch time.Time `yaml:"epoch" json:"epoch" mapstructure:"epoch"`

	// WorkerID 写入 worker 字段 [0, 31]，nil 使用 DefaultWorkerID
	WorkerID *int64 `yaml:"worker_id" json:"worker_id" mapstructure:"worker_id"`

	// ProcessID 写入 process 字段 [0, 31]，nil 使用 DefaultProcessID
	ProcessID *int64 `yaml:"process_id" json:"process_id" mapstructure:"process_id"`

	// Increment 自增计数器初始值 [0, 4095]
	Increment int64 `yaml:"increment" json:"increment" mapstructure:"increment"`
}

// DefaultConfig 返回默认配置：epoch 2015-01-01、worker 1、process 0、increment 0
func DefaultConfig() *Config {
	return &Config{
		Epoch:     time.UnixMilli(DefaultEpochMillis).UTC(),
		WorkerID:  Tag(DefaultWorkerID),
		ProcessID: Tag(DefaultProcessID),
	}
}

// Tag 返回 v 的指针，用于填写 Config.WorkerID / Config.ProcessID
//
//	snowflake.New(&snowflake.Config{WorkerID: snowflake.Tag(0)})
func Tag(v int64) *int64 {
	return &v
}

func (c *Config) setDefaults() {
	if c.Epoch.IsZero() {
		c.Epoch = time.UnixMilli(DefaultEpochMillis).UTC()
	}
	// 0 是合法的标签值，只有未填写时才取默认
	if c.WorkerID == nil {
		c.WorkerID = Tag(DefaultWorkerID)
	}
	if c.ProcessID == nil {
		c.ProcessID = Tag(DefaultProcessID)
	}
}

func (c *Config) validate() error {
	if w := *c.WorkerID; w < 0 || w > bitlayout.MaxWorker {
		return xerrors.WithCode(xerrors.Wrapf(ErrInvalidConfig, "worker_id %d", w), "worker_id_out_of_range")
	}
	if p := *c.ProcessID; p < 0 || p > bitlayout.MaxProcess {
		return xerrors.WithCode(xerrors.Wrapf(ErrInvalidConfig, "process_id %d", p), "process_id_out_of_range")
	}
	if c.Increment < 0 || c.Increment > bitlayout.MaxIncrement {
		return xerrors.WithCode(xerrors.Wrapf(ErrInvalidConfig, "increment %d", c.Increment), "increment_out_of_range")
	}
	return nil
}
