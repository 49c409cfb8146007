package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"shop-api/internal/core/auth"
	"shop-api/internal/domain"
	"shop-api/internal/transport/http/ez"
)

func init() { gin.SetMode(gin.TestMode) }

func serve(r *gin.Engine, method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(200, c.GetString(KeyRequestID)) })

	w := serve(r, http.MethodGet, "/", "", nil)
	assert.NotEmpty(t, w.Header().Get(KeyRequestID))
	assert.Equal(t, w.Header().Get(KeyRequestID), w.Body.String())

	w = serve(r, http.MethodGet, "/", "", map[string]string{KeyRequestID: "abc"})
	assert.Equal(t, "abc", w.Body.String())

	w = serve(r, http.MethodGet, "/", "", map[string]string{KeyRequestID: strings.Repeat("x", 500)})
	assert.Len(t, w.Body.String(), maxRequestIDLen)
}

func TestAuthJWT(t *testing.T) {
	j := &auth.JWTer{Secret: []byte("k"), Issuer: "shop-test", TTL: time.Hour}
	r := gin.New()
	r.GET("/me", AuthJWT(j, ""), func(c *gin.Context) {
		c.String(200, ez.UserID(c)+"/"+c.GetString(ez.KeyRole))
	})
	r.GET("/admin", AuthJWT(j, domain.RoleAdmin), func(c *gin.Context) { c.String(200, "ok") })

	w := serve(r, http.MethodGet, "/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"Unauthorized"`)

	w = serve(r, http.MethodGet, "/me", "", map[string]string{"Authorization": "Bearer nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	tok, err := j.Issue("u1", domain.RoleUser)
	require.NoError(t, err)
	w = serve(r, http.MethodGet, "/me", "", map[string]string{"Authorization": "Bearer " + tok})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1/user", w.Body.String())

	w = serve(r, http.MethodGet, "/admin", "", map[string]string{"Authorization": "Bearer " + tok})
	assert.Equal(t, http.StatusForbidden, w.Code)

	adminTok, err := j.Issue("a1", domain.RoleAdmin)
	require.NoError(t, err)
	w = serve(r, http.MethodGet, "/admin", "", map[string]string{"Authorization": "Bearer " + adminTok})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitPerIP(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitPerIP(0.001, 1, time.Minute))
	r.GET("/", func(c *gin.Context) { c.Status(200) })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", "", nil).Code)
	w := serve(r, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "too many requests")

	// 其他 IP 有自己的桶
	other := map[string]string{"X-Forwarded-For": "10.0.0.2"}
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", "", other).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, http.MethodGet, "/", "", other).Code)
}

func TestIPLimiterEvictsIdleBuckets(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newIPLimiter(0.001, 1, time.Minute)
	l.now = func() time.Time { return clock }

	assert.True(t, l.allow("1.1.1.1"))
	assert.False(t, l.allow("1.1.1.1"))
	assert.True(t, l.allow("2.2.2.2"))
	assert.Equal(t, 2, l.size())

	clock = clock.Add(30 * time.Second)
	assert.True(t, l.allow("3.3.3.3"))
	assert.Equal(t, 3, l.size())

	// 1.1.1.1 / 2.2.2.2 空闲满一分钟被回收，3.3.3.3 仍保留
	clock = clock.Add(40 * time.Second)
	assert.True(t, l.allow("1.1.1.1"))
	assert.Equal(t, 2, l.size())
}

func TestMaxBodyBytes(t *testing.T) {
	r := gin.New()
	r.Use(MaxBodyBytes(8))
	r.POST("/", func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.String(499, err.Error())
			return
		}
		c.Status(200)
	})

	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/", "small", nil).Code)
	w := serve(r, http.MethodPost, "/", strings.Repeat("a", 64), nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(10 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) { <-c.Request.Context().Done() })
	r.GET("/fast", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusGatewayTimeout, serve(r, http.MethodGet, "/slow", "", nil).Code)
	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodGet, "/fast", "", nil).Code)
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	r := gin.New()
	r.Use(Recovery(zap.New(core)))
	r.GET("/", func(c *gin.Context) { panic("kaboom") })

	w := serve(r, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"status":"Internal Server Error","msg":"internal error","data":{}}`, w.Body.String())
	assert.GreaterOrEqual(t, logs.Len(), 1)
}

func TestConcurrencyLimitPasses(t *testing.T) {
	r := gin.New()
	r.Use(ConcurrencyLimit(1))
	r.GET("/", func(c *gin.Context) { c.Status(200) })
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", "", nil).Code)
	}
}

func TestAccessLogMasksSecrets(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(RequestID(), AccessLog(zap.New(core)))
	r.GET("/x", func(c *gin.Context) { c.String(200, "ok") })
	r.GET("/bad", func(c *gin.Context) { ez.Fail(c, domain.NotFound("nope")) })

	serve(r, http.MethodGet, "/x?token=abc&q=shoes", "", map[string]string{KeyRequestID: "rid-1"})
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zap.InfoLevel, entry.Level)
	ctx := entry.ContextMap()
	assert.Equal(t, "rid-1", ctx["rid"])
	assert.Equal(t, int64(200), ctx["status"])
	q := ctx["query"].(map[string][]string)
	assert.Equal(t, []string{"****"}, q["token"])
	assert.Equal(t, []string{"shoes"}, q["q"])

	serve(r, http.MethodGet, "/bad", "", nil)
	entry = logs.All()[1]
	assert.Equal(t, zap.WarnLevel, entry.Level)
	assert.Contains(t, entry.ContextMap()["errors"], "nope")
}

func TestSpanAttributes(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	r := gin.New()
	r.Use(RequestID())
	r.Use(func(c *gin.Context) {
		ctx, span := tp.Tracer("test").Start(c.Request.Context(), "req")
		defer span.End()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})
	r.Use(SpanAttributes())
	r.GET("/missing", func(c *gin.Context) {
		c.Set(ez.KeyUserID, "u9")
		ez.Fail(c, domain.NotFound("x"))
	})

	serve(r, http.MethodGet, "/missing", "", map[string]string{KeyRequestID: "rid-9"})
	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "rid-9", attrs["request_id"])
	assert.Equal(t, "u9", attrs["user_id"])
}

func TestTracingChain(t *testing.T) {
	assert.Len(t, Tracing("shop-api"), 2)
}
