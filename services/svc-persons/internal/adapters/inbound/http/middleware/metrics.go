package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"

	"github.com/architeacher/persons/pkg/metrics"
)

const (
	httpMethodKey     = "http.method"
	httpRouteKey      = "http.route"
	httpStatusCodeKey = "http.status_code"

	httpRequestTotal    = "http_requests_total"
	httpRequestDuration = "http_request_duration_seconds"
	httpResponseSize    = "http_response_size_bytes"

	unmatchedRoute = "unmatched"
)

// Metrics records request counts, latencies and sizes labelled by the chi
// route pattern.
func Metrics(client metrics.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := NewResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			route := unmatchedRoute
			if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
				if pattern := routeCtx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}

			attrs := []attribute.KeyValue{
				attribute.String(httpMethodKey, r.Method),
				attribute.String(httpRouteKey, route),
				attribute.String(httpStatusCodeKey, strconv.Itoa(wrapped.StatusCode())),
			}

			client.Inc(r.Context(), httpRequestTotal, int64(1), attrs...)
			client.Observe(r.Context(), httpRequestDuration, time.Since(start).Seconds(), attrs...)
			client.Observe(r.Context(), httpResponseSize, float64(wrapped.BytesWritten()), attrs...)
		})
	}
}
