package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/architeacher/persons/pkg/logger"
)

const (
	skipAccessLogKey contextKey = "skip_access_log"

	healthPathPrefix = "/management/health"
)

type HealthCheckFilter struct {
	logHealthChecks bool
}

func NewHealthCheckFilter(logHealthChecks bool) *HealthCheckFilter {
	return &HealthCheckFilter{logHealthChecks: logHealthChecks}
}

// Middleware marks liveness and readiness probes so the access logger
// skips them.
func (h *HealthCheckFilter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.logHealthChecks && strings.HasPrefix(r.URL.Path, healthPathPrefix) {
			r = r.WithContext(context.WithValue(r.Context(), skipAccessLogKey, true))
		}

		next.ServeHTTP(w, r)
	})
}

func ShouldSkipAccessLog(ctx context.Context) bool {
	skip, ok := ctx.Value(skipAccessLogKey).(bool)

	return ok && skip
}

func AccessLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ShouldSkipAccessLog(r.Context()) {
				next.ServeHTTP(w, r)

				return
			}

			start := time.Now()
			wrapped := NewResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			reqLogger := log.WithContext(r.Context()).
				With().
				Str("component", "http").
				Logger()

			event := reqLogger.Info()
			if wrapped.StatusCode() >= http.StatusInternalServerError {
				event = reqLogger.Error()
			} else if wrapped.StatusCode() >= http.StatusBadRequest {
				event = reqLogger.Warn()
			}

			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("remote_addr", r.RemoteAddr).
				Str("user_agent", r.UserAgent()).
				Int("status", wrapped.StatusCode()).
				Uint64("bytes", wrapped.BytesWritten()).
				Int64("duration_ms", time.Since(start).Milliseconds())

			if r.URL.RawQuery != "" {
				event.Str("query", r.URL.RawQuery)
			}

			event.Msg("request completed")
		})
	}
}
