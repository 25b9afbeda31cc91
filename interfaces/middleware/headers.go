package middleware

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"
	"time"

	"clip-and-ship/domain/dto"
	"clip-and-ship/infrastructure/metrics"

	"github.com/gin-gonic/gin"
)

// ServiceKey guards service to service endpoints. The key is read from the
// X-Service-Key header or a Bearer token. An empty key rejects everything.
func ServiceKey(key string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		got := ctx.GetHeader("X-Service-Key")
		if got == "" {
			got, _ = bearer(ctx)
		}
		if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.Res{ResponseCode: "401", ResponseMessage: "Invalid service key"})
			return
		}
		ctx.Next()
	}
}

// SecurityHeaders sets the baseline response headers. The OAuth result page
// overrides the cross origin policies itself.
func SecurityHeaders() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		h := ctx.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if !strings.HasPrefix(ctx.Request.URL.Path, "/functions/youtube-oauth-callback") &&
			!strings.HasPrefix(ctx.Request.URL.Path, "/auth/youtube/callback") {
			h.Set("Cross-Origin-Opener-Policy", "same-origin-allow-popups")
		}
		ctx.Next()
	}
}

// Metrics records request count and latency per route.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := ctx.Request.Method
		m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(ctx.Writer.Status())).Inc()
		m.HTTPLatency.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
