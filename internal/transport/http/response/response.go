package response

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// 金额以 JSON 数字输出（10.5 而非 "10.5"）
func init() { decimal.MarshalJSONWithoutQuotes = true }

// Resp 统一外层：{"status": "OK", "data": {...}}；失败时 status 为状态文案，msg 为详情
type Resp struct {
	Status string `json:"status"`
	Msg    string `json:"msg,omitempty"`
	Data   any    `json:"data"`
}

// New 构造函数（保证 data 不为 null）
func New(status, msg string, data any) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Status: status, Msg: msg, Data: data}
}

func OK(data any) Resp {
	return New(StatusOK, "", data)
}

// Error customMsg 为空时用状态文案
func Error(code int, customMsg string) Resp {
	text := StatusText(code)
	msg := customMsg
	if msg == "" {
		msg = text
	}
	return New(text, msg, nil)
}

// JSON 写成功响应
func JSON(c *gin.Context, data any) {
	c.JSON(CodeOK, OK(data))
}

// Abort 以 code 作为 HTTP 状态写错误并终止后续 handler
func Abort(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, Error(code, msg))
}
