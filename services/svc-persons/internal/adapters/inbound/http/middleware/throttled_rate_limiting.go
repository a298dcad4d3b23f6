package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/throttled/throttled/v2"

	"github.com/architeacher/persons/pkg/logger"
	"github.com/architeacher/persons/services/svc-persons/internal/config"
)

const (
	RateLimitLimitHeader     = "RateLimit-Limit"
	RateLimitRemainingHeader = "RateLimit-Remaining"
	RateLimitResetHeader     = "RateLimit-Reset"
	RetryAfterHeader         = "Retry-After"
)

// ThrottledRateLimiting applies a GCRA quota per client IP. Store errors let
// the request through.
func ThrottledRateLimiting(
	cfg config.ThrottledRateLimiting,
	store throttled.GCRAStoreCtx,
	log logger.Logger,
) (func(http.Handler) http.Handler, error) {
	quota := throttled.RateQuota{
		MaxRate:  throttled.PerSec(int(cfg.RequestsPerSecond)),
		MaxBurst: int(cfg.BurstSize),
	}

	rateLimiter, err := throttled.NewGCRARateLimiterCtx(store, quota)
	if err != nil {
		return nil, fmt.Errorf("creating rate limiter: %w", err)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if shouldSkipRateLimit(r.URL.Path, cfg.SkipPaths) {
				next.ServeHTTP(w, r)

				return
			}

			limited, result, err := rateLimiter.RateLimitCtx(r.Context(), "ip:"+clientIP(r.RemoteAddr), 1)
			if err != nil {
				reqLogger := log.WithContext(r.Context())
				reqLogger.Warn().Err(err).Msg("rate limiter store error")
				next.ServeHTTP(w, r)

				return
			}

			w.Header().Set(RateLimitLimitHeader, strconv.Itoa(result.Limit))
			w.Header().Set(RateLimitRemainingHeader, strconv.Itoa(result.Remaining))
			w.Header().Set(RateLimitResetHeader, strconv.FormatInt(time.Now().Add(result.ResetAfter).Unix(), 10))

			if limited {
				w.Header().Set(RetryAfterHeader, strconv.Itoa(int(result.RetryAfter.Seconds())))
				writeError(w, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "too many requests, please try again later")

				return
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}

func shouldSkipRateLimit(path string, skipPaths []string) bool {
	for _, skipPath := range skipPaths {
		if skipPath != "" && strings.HasPrefix(path, skipPath) {
			return true
		}
	}

	return false
}

func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}

	return host
}
