package bitlayout

import (
	"errors"
	"strconv"
	"strings"

	"github.com/ceyewan/flake/xerrors"
)

// DecimalFromBinary 将 '0'/'1' 组成的二进制字符串转换为十进制字符串
//
// 输入长度不限，前导零会被忽略，但有效位不能超过 64 位。
// 全零输入返回 "0"，保证 0 .. 2^64-1 范围内的往返转换严格一致。
//
// 返回的错误均包装 ErrInvalidInput：
//   - empty_input: 输入为空
//   - not_binary: 包含 '0'/'1' 之外的字符
//   - out_of_range: 有效位超过 64 位
func DecimalFromBinary(bits string) (string, error) {
	if bits == "" {
		return "", xerrors.WithCode(ErrInvalidInput, "empty_input")
	}
	for i := 0; i < len(bits); i++ {
		if bits[i] != '0' && bits[i] != '1' {
			return "", xerrors.WithCode(xerrors.Wrapf(ErrInvalidInput, "binary %q", bits), "not_binary")
		}
	}

	// 有效位数按去掉前导零后的长度计算
	significant := strings.TrimLeft(bits, "0")
	if significant == "" {
		return "0", nil
	}
	if len(significant) > TotalBits {
		return "", xerrors.WithCode(xerrors.Wrapf(ErrInvalidInput, "binary %q has %d significant bits", bits, len(significant)), "out_of_range")
	}

	v, err := strconv.ParseUint(significant, 2, TotalBits)
	if err != nil {
		return "", xerrors.WithCode(xerrors.Wrapf(ErrInvalidInput, "binary %q", bits), "not_binary")
	}
	return strconv.FormatUint(v, 10), nil
}

// BinaryFromDecimal 将十进制数字字符串转换为 64 位补零的二进制字符串
//
// 本层容忍前导零，规范形式的校验由调用方负责。
//
// 返回的错误均包装 ErrInvalidInput：
//   - empty_input: 输入为空
//   - not_decimal: 包含非数字字符（含符号与空白）
//   - out_of_range: 数值超过 2^64-1
func BinaryFromDecimal(decimal string) (string, error) {
	v, err := ParseDecimal(decimal)
	if err != nil {
		return "", err
	}
	return FormatBits(v), nil
}

// ParseDecimal 将十进制数字字符串解析为 uint64
//
// 错误约定与 BinaryFromDecimal 相同。
func ParseDecimal(decimal string) (uint64, error) {
	if decimal == "" {
		return 0, xerrors.WithCode(ErrInvalidInput, "empty_input")
	}
	for i := 0; i < len(decimal); i++ {
		if decimal[i] < '0' || decimal[i] > '9' {
			return 0, xerrors.WithCode(xerrors.Wrapf(ErrInvalidInput, "decimal %q", decimal), "not_decimal")
		}
	}

	v, err := strconv.ParseUint(decimal, 10, TotalBits)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, xerrors.WithCode(xerrors.Wrapf(ErrInvalidInput, "decimal %q exceeds 64 bits", decimal), "out_of_range")
		}
		return 0, xerrors.WithCode(xerrors.Wrapf(ErrInvalidInput, "decimal %q", decimal), "not_decimal")
	}
	return v, nil
}

// FormatBits 返回 v 的 64 位补零二进制表示
func FormatBits(v uint64) string {
	s := strconv.FormatUint(v, 2)
	if len(s) >= TotalBits {
		return s
	}
	return strings.Repeat("0", TotalBits-len(s)) + s
}
