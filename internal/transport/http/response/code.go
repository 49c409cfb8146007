package response

import "net/http"

// 错误码直接使用 HTTP 状态码
const (
	CodeOK              = http.StatusOK
	CodeBadRequest      = http.StatusBadRequest
	CodeUnauthorized    = http.StatusUnauthorized
	CodeForbidden       = http.StatusForbidden
	CodeNotFound        = http.StatusNotFound
	CodeConflict        = http.StatusConflict
	CodeTooLarge        = http.StatusRequestEntityTooLarge
	CodeTooManyRequests = http.StatusTooManyRequests
	CodeServerError     = http.StatusInternalServerError
	CodeUnavailable     = http.StatusServiceUnavailable
	CodeTimeout         = http.StatusGatewayTimeout
)

// StatusOK 成功响应的 status 字段
const StatusOK = "OK"

// StatusText 未知码回落到 500 的文案
func StatusText(code int) string {
	if s := http.StatusText(code); s != "" {
		return s
	}
	return http.StatusText(CodeServerError)
}
