package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"nexus-hvac-client/internal/config"
	"nexus-hvac-client/internal/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping/:id", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})
	r.POST("/echo", func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})
	return r
}

func TestRequestIDMiddleware(t *testing.T) {
	r := newRouter(RequestIDMiddleware())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping/1", nil))
	generated := w.Header().Get(RequestIDHeader)
	if generated == "" || w.Body.String() != generated {
		t.Errorf("generated id %q, body %q", generated, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/ping/1", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get(RequestIDHeader) != "abc-123" {
		t.Errorf("caller id not kept: %q", w.Header().Get(RequestIDHeader))
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	r := newRouter(rl.Middleware())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping/1", nil))
		codes = append(codes, w.Code)
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v", codes)
	}

	rl.sweep(time.Now().Add(time.Minute))
	if len(rl.limiters) != 0 {
		t.Errorf("idle limiter not swept")
	}
}

func TestLoggingMiddlewareCountsRoute(t *testing.T) {
	m := metrics.NewSimulatorMetrics(prometheus.NewRegistry())
	r := newRouter(RequestIDMiddleware(), LoggingMiddleware(zap.NewNop(), m))

	for i := 0; i < 2; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping/"+string(rune('a'+i)), nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	if got := testutil.ToFloat64(m.Requests.WithLabelValues("/ping/:id", "200")); got != 2 {
		t.Errorf("route count = %v", got)
	}
	if got := testutil.ToFloat64(m.Requests.WithLabelValues("unmatched", "404")); got != 1 {
		t.Errorf("unmatched count = %v", got)
	}
}

func TestRequestSizeLimit(t *testing.T) {
	r := newRouter(RequestSizeLimitMiddleware(16))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"a":"0123456789abcdef"}`)))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("code = %d", w.Code)
	}
}

func TestSecurityAndCORSHeaders(t *testing.T) {
	r := newRouter(SecurityHeadersMiddleware(), CORSMiddleware(&config.CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         60,
	}))

	req := httptest.NewRequest(http.MethodGet, "/ping/1", nil)
	req.Header.Set("Origin", "http://app.local")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing nosniff")
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("allow origin = %q", w.Header().Get("Access-Control-Allow-Origin"))
	}
}
