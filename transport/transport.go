// Package transport 把 snowflake 编码为适合放进 URL、Header 或 Cookie 的传输串。
//
// Encode 先通过 Deconstructor 校验输入确实是合法 snowflake，再交给 TextCodec；
// Decode 反过来先还原文本再解析，因此两个方向都只接受合法值。
package transport

import (
	"context"

	"github.com/ceyewan/flake/clog"
	"github.com/ceyewan/flake/metrics"
	"github.com/ceyewan/flake/snowflake"
	"github.com/ceyewan/flake/xerrors"
)

// Deconstructor 解析 snowflake，*snowflake.Generator 实现了该接口
type Deconstructor interface {
	Deconstruct(s string) (*snowflake.Deconstructed, error)
}

// Encoder 传输编码器
type Encoder struct {
	deconstructor Deconstructor
	codec         TextCodec
	logger        clog.Logger
	operations    metrics.Counter
}

// NewEncoder 创建传输编码器，默认使用 std Base64
func NewEncoder(d Deconstructor, opts ...Option) (*Encoder, error) {
	if d == nil {
		return nil, xerrors.WithCode(xerrors.Wrap(ErrInvalidCodec, "deconstructor is nil"), "deconstructor_required")
	}

	o := &options{
		logger: clog.Discard(),
		meter:  metrics.Discard(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.codec == nil {
		codec, err := NewBase64Codec(EncodingStd)
		if err != nil {
			return nil, err
		}
		o.codec = codec
	}

	operations, err := o.meter.Counter(MetricOperations, "Total number of transport encode/decode operations.")
	if err != nil {
		return nil, xerrors.Wrap(err, "create transport counter")
	}

	return &Encoder{
		deconstructor: d,
		codec:         o.codec,
		logger:        o.logger.With(clog.Component("transport")),
		operations:    operations,
	}, nil
}

// Encode 将合法 snowflake 编码为传输串
//
// 空输入返回 snowflake.ErrInvalidSnowflake；其它校验错误原样透传自 Deconstruct。
func (e *Encoder) Encode(s string) (string, error) {
	t, err := e.encode(s)
	e.observe(operationEncode, err)
	return t, err
}

func (e *Encoder) encode(s string) (string, error) {
	if s == "" {
		return "", xerrors.WithCode(xerrors.Wrap(snowflake.ErrInvalidSnowflake, "empty snowflake"), "empty_input")
	}
	if _, err := e.deconstructor.Deconstruct(s); err != nil {
		return "", err
	}
	return e.codec.EncodeText(s), nil
}

// Decode 将传输串还原并解析为各字段
//
// 空串或编解码失败返回 ErrMalformedTransportString；还原出的文本不是合法
// snowflake 时透传 Deconstruct 的错误。
func (e *Encoder) Decode(t string) (*snowflake.Deconstructed, error) {
	d, err := e.decode(t)
	e.observe(operationDecode, err)
	return d, err
}

func (e *Encoder) decode(t string) (*snowflake.Deconstructed, error) {
	if t == "" {
		return nil, xerrors.WithCode(xerrors.Wrap(ErrMalformedTransportString, "empty transport string"), "empty_input")
	}

	s, err := e.codec.DecodeText(t)
	if err != nil {
		return nil, xerrors.WithCode(xerrors.Wrapf(ErrMalformedTransportString, "transport string %q: %v", t, err), "decode_failed")
	}

	e.logger.Debug("transport string decoded", clog.Snowflake(s))
	return e.deconstructor.Deconstruct(s)
}

func (e *Encoder) observe(operation string, err error) {
	e.operations.Inc(context.Background(),
		metrics.L(metrics.LabelOperation, operation),
		metrics.L(metrics.LabelOutcome, metrics.Outcome(err)),
	)
}
