package config

import (
	"fmt"

	"github.com/ceyewan/flake/xerrors"
)

var (
	// ErrInvalidConfig 加载器配置非法
	ErrInvalidConfig = xerrors.New("config: invalid loader config")

	// ErrValidationFailed 加载后的配置未通过校验
	ErrValidationFailed = xerrors.New("config: validation failed")

	// ErrLoadFailed 配置文件存在但无法读取或解析
	ErrLoadFailed = xerrors.New("config: load failed")
)

// IsValidationFailed 检查错误是否为配置校验失败
func IsValidationFailed(err error) bool {
	return xerrors.Is(err, ErrValidationFailed)
}

// IsLoadFailed 检查错误是否为配置读取失败
func IsLoadFailed(err error) bool {
	return xerrors.Is(err, ErrLoadFailed)
}

// wrapLoadError 包装加载错误，保留原始原因
func wrapLoadError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrLoadFailed, fmt.Sprintf(format, args...), err)
}
