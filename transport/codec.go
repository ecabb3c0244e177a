package transport

import (
	"encoding/base64"
	"strings"

	"github.com/ceyewan/flake/xerrors"
)

// TextCodec 文本编解码器
//
// DecodeText 必须是 EncodeText 的严格逆运算：每个合法传输串只对应一个原文，
// 否则 Decode(Encode(s)) == s 的往返保证不成立。
type TextCodec interface {
	EncodeText(s string) string
	DecodeText(t string) (string, error)
}

// 支持的 Base64 变体
const (
	EncodingStd    = "std"     // 标准字母表，带填充
	EncodingURL    = "url"     // URL 安全字母表，带填充
	EncodingRawStd = "raw_std" // 标准字母表，无填充
	EncodingRawURL = "raw_url" // URL 安全字母表，无填充
)

// Config 传输编码配置
type Config struct {
	// Encoding Base64 变体：std | url | raw_std | raw_url，默认 std
	Encoding string `yaml:"encoding" json:"encoding" mapstructure:"encoding"`
}

// Base64Codec 基于 encoding/base64 的严格编解码器
type Base64Codec struct {
	name string
	enc  *base64.Encoding
}

// NewBase64Codec 按变体名创建编解码器，空字符串视为 std
func NewBase64Codec(variant string) (*Base64Codec, error) {
	name := strings.ToLower(strings.TrimSpace(variant))
	var enc *base64.Encoding
	switch name {
	case "", EncodingStd:
		name, enc = EncodingStd, base64.StdEncoding
	case EncodingURL:
		enc = base64.URLEncoding
	case EncodingRawStd:
		enc = base64.RawStdEncoding
	case EncodingRawURL:
		enc = base64.RawURLEncoding
	default:
		return nil, xerrors.WithCode(xerrors.Wrapf(ErrInvalidCodec, "encoding %q", variant), "unknown_encoding")
	}
	return &Base64Codec{name: name, enc: enc.Strict()}, nil
}

// Name 返回变体名
func (c *Base64Codec) Name() string {
	return c.name
}

func (c *Base64Codec) EncodeText(s string) string {
	return c.enc.EncodeToString([]byte(s))
}

// DecodeText 拒绝换行、非零填充位等非规范写法
//
// encoding/base64 解码时会跳过 \r 和 \n，这里通过重新编码比对排除这类输入。
func (c *Base64Codec) DecodeText(t string) (string, error) {
	b, err := c.enc.DecodeString(t)
	if err != nil {
		return "", err
	}
	if c.enc.EncodeToString(b) != t {
		return "", xerrors.New("non-canonical encoding")
	}
	return string(b), nil
}
