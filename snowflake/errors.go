package snowflake

import "github.com/ceyewan/flake/xerrors"

var (
	// ErrInvalidTimestamp 时间戳无法编码：NaN/Inf、早于 epoch，或偏移量超过 42 位
	ErrInvalidTimestamp = xerrors.New("snowflake: invalid timestamp")

	// ErrInvalidSnowflake 输入不是规范的十进制 snowflake 字符串
	ErrInvalidSnowflake = xerrors.New("snowflake: invalid snowflake")

	// ErrInvalidConfig 生成器配置非法
	ErrInvalidConfig = xerrors.New("snowflake: invalid config")
)
