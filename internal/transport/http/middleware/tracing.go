package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"shop-api/internal/transport/http/ez"
)

// Tracing otelgin 建 span；SpanAttributes 需挂在其后才能在 span 结束前补属性
func Tracing(serviceName string) []gin.HandlerFunc {
	return []gin.HandlerFunc{otelgin.Middleware(serviceName), SpanAttributes()}
}

// SpanAttributes 请求结束后补 request_id/user_id，4xx/5xx 标记为错误
func SpanAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		if rid := c.GetString(KeyRequestID); rid != "" {
			span.SetAttributes(attribute.String("request_id", rid))
		}
		if uid := ez.UserID(c); uid != "" {
			span.SetAttributes(attribute.String("user_id", uid))
		}
		if status := c.Writer.Status(); status >= http.StatusBadRequest {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
