package bitlayout

import "github.com/ceyewan/flake/xerrors"

var (
	// ErrInvalidInput 转换输入为空、包含非法字符或超出 64 位
	ErrInvalidInput = xerrors.New("bitlayout: invalid input")

	// ErrFieldOverflow 字段值超出布局中的位宽
	ErrFieldOverflow = xerrors.New("bitlayout: field overflow")
)
