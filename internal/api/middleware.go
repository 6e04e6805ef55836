package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgnsrekt/quantora_dash/internal/metrics"
)

const slowRequest = 2 * time.Second

// requestLogger logs each request once it completes and counts it in m.
// Event streams are long-lived and only logged at debug level.
func requestLogger(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			elapsed := time.Since(start)
			stream := r.URL.Path == "/events" || strings.HasPrefix(r.URL.Path, "/docs")
			if !stream {
				m.HTTPServed(ww.Status())
			}

			level := slog.LevelInfo
			switch {
			case ww.Status() >= 500:
				level = slog.LevelWarn
			case stream:
				level = slog.LevelDebug
			}
			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", elapsed.Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			}
			if elapsed > slowRequest && !stream {
				attrs = append(attrs, "slow", true)
			}
			slog.Log(r.Context(), level, "gateway request", attrs...)
		})
	}
}
