// Package bitlayout 定义 snowflake 的 64 位字段布局，并提供十进制字符串与
// 二进制字符串之间的无损转换。
//
// 位布局（高位在前）：
//
//	63            22 21     17 16     12 11           0
//	+---------------+---------+---------+--------------+
//	| timestamp(42) | worker5 | process5| increment(12)|
//	+---------------+---------+---------+--------------+
//
// 所有运算都基于 uint64，覆盖 0 .. 2^64-1 的完整取值范围，不经过浮点数。
package bitlayout

import (
	"github.com/ceyewan/flake/xerrors"
)

// 字段位宽
const (
	TimestampBits = 42
	WorkerBits    = 5
	ProcessBits   = 5
	IncrementBits = 12

	// TotalBits 布局总位宽
	TotalBits = TimestampBits + WorkerBits + ProcessBits + IncrementBits
)

// 字段偏移量
const (
	IncrementShift = 0
	ProcessShift   = IncrementShift + IncrementBits
	WorkerShift    = ProcessShift + ProcessBits
	TimestampShift = WorkerShift + WorkerBits
)

// 字段最大值
const (
	MaxTimestamp = 1<<TimestampBits - 1
	MaxWorker    = 1<<WorkerBits - 1
	MaxProcess   = 1<<ProcessBits - 1
	MaxIncrement = 1<<IncrementBits - 1
)

// Fields 是 snowflake 拆分后的四个字段
//
// Timestamp 为相对 epoch 的毫秒偏移量，不是绝对时间。
type Fields struct {
	Timestamp uint64
	Worker    uint64
	Process   uint64
	Increment uint64
}

// Compose 将四个字段按布局拼成一个 64 位值
//
// 任一字段超出其位宽时返回 ErrFieldOverflow，不会截断到相邻字段。
func Compose(f Fields) (uint64, error) {
	switch {
	case f.Timestamp > MaxTimestamp:
		return 0, xerrors.WithCode(xerrors.Wrapf(ErrFieldOverflow, "timestamp %d exceeds %d bits", f.Timestamp, TimestampBits), "timestamp_overflow")
	case f.Worker > MaxWorker:
		return 0, xerrors.WithCode(xerrors.Wrapf(ErrFieldOverflow, "worker %d exceeds %d bits", f.Worker, WorkerBits), "worker_overflow")
	case f.Process > MaxProcess:
		return 0, xerrors.WithCode(xerrors.Wrapf(ErrFieldOverflow, "process %d exceeds %d bits", f.Process, ProcessBits), "process_overflow")
	case f.Increment > MaxIncrement:
		return 0, xerrors.WithCode(xerrors.Wrapf(ErrFieldOverflow, "increment %d exceeds %d bits", f.Increment, IncrementBits), "increment_overflow")
	}

	return f.Timestamp<<TimestampShift |
		f.Worker<<WorkerShift |
		f.Process<<ProcessShift |
		f.Increment<<IncrementShift, nil
}

// Split 将 64 位值拆分为四个字段
func Split(v uint64) Fields {
	return Fields{
		Timestamp: v >> TimestampShift & MaxTimestamp,
		Worker:    v >> WorkerShift & MaxWorker,
		Process:   v >> ProcessShift & MaxProcess,
		Increment: v >> IncrementShift & MaxIncrement,
	}
}
