package transport

import "github.com/ceyewan/flake/xerrors"

var (
	// ErrMalformedTransportString 传输串为空或无法被编解码器还原
	ErrMalformedTransportString = xerrors.New("transport: malformed transport string")

	// ErrInvalidCodec 未知的编码方式
	ErrInvalidCodec = xerrors.New("transport: invalid codec")
)
