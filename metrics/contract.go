package metrics

import "strconv"

// 标签名，flake 各组件统一使用
const (
	LabelService     = "service"
	LabelOperation   = "operation"
	LabelMethod      = "method"
	LabelRoute       = "route"
	LabelStatusClass = "status_class"
	LabelOutcome     = "outcome"
	LabelErrorCode   = "error_code"
	LabelScope       = "scope" // 限流范围：global|client
)

// 标签值
const (
	OperationHTTPServer = "http.server"

	OutcomeSuccess = "success"
	OutcomeError   = "error"

	// UnknownRoute 未命中路由时的 route 标签，避免原始路径导致高基数
	UnknownRoute = "unknown"
)

// HTTPStatusClass 1xx..5xx，范围外为 unknown
func HTTPStatusClass(status int) string {
	if status < 100 || status >= 600 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}

// HTTPOutcome 2xx 和 3xx 视为成功
func HTTPOutcome(status int) string {
	if status >= 200 && status < 400 {
		return OutcomeSuccess
	}
	return OutcomeError
}

// Outcome err 为 nil 时为 success
func Outcome(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	return OutcomeError
}
