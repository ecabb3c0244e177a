// Package xerrors 提供 flake 各组件共用的错误处理工具。
//
// 约定：
//   - 每个包用 xerrors.New 声明哨兵错误 (ErrInvalidSnowflake 等)
//   - 用 Wrapf 附加出错的输入，保持 errors.Is 可用
//   - 需要机器可读分类时用 WithCode，调用方用 GetCode 取出
package xerrors

import (
	"errors"
	"fmt"
)

// 标准库函数再导出，调用方只需引入一个错误包
var (
	New = errors.New
	Is  = errors.Is
	As  = errors.As
)

// ========================================
// 包装
// ========================================

// Wrap 在 err 前加上 msg，err 为 nil 时返回 nil
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &wrapped{msg: msg, cause: err}
}

// Wrapf 同 Wrap，msg 由 format 与 args 生成
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &wrapped{msg: fmt.Sprintf(format, args...), cause: err}
}

type wrapped struct {
	msg   string
	cause error
}

func (w *wrapped) Error() string { return w.msg + ": " + w.cause.Error() }

func (w *wrapped) Unwrap() error { return w.cause }

// ========================================
// 错误码
// ========================================

// CodedError 携带机器可读错误码，HTTP 层把 Code 作为 reason 返回
type CodedError struct {
	Code  string
	Cause error
}

// WithCode 给 err 附加错误码，err 为 nil 时返回 nil
func WithCode(err error, code string) error {
	if err == nil {
		return nil
	}
	return &CodedError{Code: code, Cause: err}
}

func (e *CodedError) Error() string {
	if e.Cause == nil {
		return "[" + e.Code + "]"
	}
	return "[" + e.Code + "] " + e.Cause.Error()
}

func (e *CodedError) Unwrap() error { return e.Cause }

// GetCode 返回错误链上最外层的错误码，没有时返回空串
func GetCode(err error) string {
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ""
}

// HasCode 判断错误链上是否存在 code，不限于最外层
func HasCode(err error, code string) bool {
	for _, c := range Codes(err) {
		if c == code {
			return true
		}
	}
	return false
}

// Codes 按从外到内的顺序返回错误链上的全部错误码
func Codes(err error) []string {
	var codes []string
	var walk func(error)
	walk = func(err error) {
		for err != nil {
			if coded, ok := err.(*CodedError); ok {
				codes = append(codes, coded.Code)
			}
			if multi, ok := err.(interface{ Unwrap() []error }); ok {
				for _, e := range multi.Unwrap() {
					walk(e)
				}
				return
			}
			err = errors.Unwrap(err)
		}
	}
	walk(err)
	return codes
}

// ========================================
// 聚合
// ========================================

// MultiError 多个错误的集合，errors.Is/As 会遍历其中每一个
type MultiError struct {
	Errors []error
}

func (m *MultiError) Error() string {
	switch len(m.Errors) {
	case 0:
		return "no errors"
	case 1:
		return m.Errors[0].Error()
	}
	return fmt.Sprintf("%v (and %d more errors)", m.Errors[0], len(m.Errors)-1)
}

func (m *MultiError) Unwrap() []error { return m.Errors }

// Combine 丢弃 nil 后合并 errs：全部为 nil 返回 nil，只剩一个时原样返回
func Combine(errs ...error) error {
	kept := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			kept = append(kept, err)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	if len(kept) == 1 {
		return kept[0]
	}
	return &MultiError{Errors: kept}
}

// Must 在 err 不为 nil 时 panic，只在初始化阶段使用
func Must[T any](v T, err error) T {
	if err != nil {
		panic("must: " + err.Error())
	}
	return v
}
