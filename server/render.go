package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/ceyewan/flake/snowflake"
	"github.com/ceyewan/flake/transport"
	"github.com/ceyewan/flake/xerrors"
)

// 错误响应中的 code 字段
const (
	CodeInvalidTimestamp         = "invalid_timestamp"
	CodeInvalidSnowflake         = "invalid_snowflake"
	CodeMalformedTransportString = "malformed_transport_string"
	CodeRateLimited              = "rate_limited"
	CodeNotFound                 = "not_found"
	CodeMethodNotAllowed         = "method_not_allowed"
	CodeInternal                 = "internal"
)

// ErrorBody 错误响应
type ErrorBody struct {
	Error ErrorInfo `json:"error" msgpack:"error"`
}

// ErrorInfo 错误详情，Reason 为底层错误码（例如 not_decimal）
type ErrorInfo struct {
	Code    string `json:"code" msgpack:"code"`
	Message string `json:"message" msgpack:"message"`
	Reason  string `json:"reason,omitempty" msgpack:"reason,omitempty"`
}

// render 按 Accept 头协商 JSON 或 MessagePack
func render(c *gin.Context, status int, body any) {
	switch c.NegotiateFormat(binding.MIMEJSON, binding.MIMEMSGPACK2, binding.MIMEMSGPACK) {
	case binding.MIMEMSGPACK2, binding.MIMEMSGPACK:
		data, err := msgpack.Marshal(body)
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, newErrorBody(CodeInternal, "encode response failed", ""))
			return
		}
		c.Data(status, binding.MIMEMSGPACK2, data)
	default:
		c.JSON(status, body)
	}
}

// renderError 把领域错误映射为 HTTP 状态码并中止后续处理
func renderError(c *gin.Context, err error) {
	status, code := classify(err)
	_ = c.Error(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		message = http.StatusText(status)
	}
	render(c, status, newErrorBody(code, message, xerrors.GetCode(err)))
	c.Abort()
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, transport.ErrMalformedTransportString):
		return http.StatusBadRequest, CodeMalformedTransportString
	case errors.Is(err, snowflake.ErrInvalidSnowflake):
		return http.StatusBadRequest, CodeInvalidSnowflake
	case errors.Is(err, snowflake.ErrInvalidTimestamp):
		return http.StatusBadRequest, CodeInvalidTimestamp
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

func newErrorBody(code, message, reason string) ErrorBody {
	return ErrorBody{Error: ErrorInfo{Code: code, Message: message, Reason: reason}}
}
