package snowflake

import (
	"context"
	"time"

	"github.com/ceyewan/flake/bitlayout"
	"github.com/ceyewan/flake/metrics"
	"github.com/ceyewan/flake/xerrors"
)

// Deconstructed 是 snowflake 解析后的各字段
type Deconstructed struct {
	// Timestamp 绝对毫秒时间戳（偏移量 + epoch）
	Timestamp int64 `json:"timestamp" msgpack:"timestamp"`
	// Epoch 解析时使用的 epoch 毫秒时间戳
	Epoch int64 `json:"epoch" msgpack:"epoch"`
	// Date 与 Timestamp 对应的 UTC 时间
	Date      time.Time `json:"date" msgpack:"date"`
	WorkerID  int64     `json:"worker_id" msgpack:"worker_id"`
	ProcessID int64     `json:"process_id" msgpack:"process_id"`
	Increment int64     `json:"increment" msgpack:"increment"`
	// Binary 64 位补零二进制表示
	Binary string `json:"binary" msgpack:"binary"`
	// Snowflake 原始十进制字符串
	Snowflake string `json:"snowflake" msgpack:"snowflake"`
}

// Deconstruct 将规范十进制 snowflake 解析为各字段
//
// "0" 直接返回全零字段，Timestamp 等于 epoch。其它输入必须是不带符号、
// 空白和前导零的十进制数字串，且不超过 2^64-1，否则返回 ErrInvalidSnowflake，
// 错误码取自具体原因（empty_input / not_decimal / non_canonical / out_of_range）。
func (g *Generator) Deconstruct(s string) (*Deconstructed, error) {
	d, err := g.deconstruct(s)
	g.deconstructs.Inc(context.Background(), metrics.L(metrics.LabelOutcome, metrics.Outcome(err)))
	return d, err
}

func (g *Generator) deconstruct(s string) (*Deconstructed, error) {
	if s == "0" {
		return &Deconstructed{
			Timestamp: g.epochMs,
			Epoch:     g.epochMs,
			Date:      g.epoch,
			Binary:    bitlayout.FormatBits(0),
			Snowflake: s,
		}, nil
	}

	if len(s) > 1 && s[0] == '0' {
		return nil, xerrors.WithCode(xerrors.Wrapf(ErrInvalidSnowflake, "snowflake %q has leading zeros", s), "non_canonical")
	}

	v, err := bitlayout.ParseDecimal(s)
	if err != nil {
		return nil, xerrors.WithCode(xerrors.Wrapf(ErrInvalidSnowflake, "snowflake %q: %v", s, err), xerrors.GetCode(err))
	}

	f := bitlayout.Split(v)
	// 42 位偏移量加上 epoch 不会溢出 int64
	ts := int64(f.Timestamp) + g.epochMs

	return &Deconstructed{
		Timestamp: ts,
		Epoch:     g.epochMs,
		Date:      time.UnixMilli(ts).UTC(),
		WorkerID:  int64(f.Worker),
		ProcessID: int64(f.Process),
		Increment: int64(f.Increment),
		Binary:    bitlayout.FormatBits(v),
		Snowflake: s,
	}, nil
}
