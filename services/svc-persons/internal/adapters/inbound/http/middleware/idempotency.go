package middleware

import (
	"bytes"
	"io"
	"net/http"
	"slices"
	"time"

	"github.com/architeacher/persons/pkg/idempotency"
	"github.com/architeacher/persons/pkg/logger"
	"github.com/architeacher/persons/services/svc-persons/internal/config"
	"github.com/architeacher/persons/services/svc-persons/internal/ports"
)

const idempotencyNamespace = "persons"

// Idempotency replays the stored response of a successful request when the
// same Idempotency-Key is sent again with the same body. Cache failures are
// tolerated when cfg.GracefulDegraded is set.
func Idempotency(
	cache ports.IdempotencyCache,
	cfg config.Idempotency,
	log logger.Logger,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled || cache == nil || !slices.Contains(cfg.RequiredMethods, r.Method) {
				next.ServeHTTP(w, r)

				return
			}

			idempotencyKey := r.Header.Get(cfg.HeaderName)
			if idempotencyKey == "" {
				next.ServeHTTP(w, r)

				return
			}

			if err := idempotency.Validate(idempotencyKey); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_IDEMPOTENCY_KEY", err.Error())

				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", "request body could not be read")

				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			fingerprint := idempotency.Fingerprint(body)

			ctx := r.Context()
			reqLogger := log.WithContext(ctx).With().Str("idempotency_key", idempotencyKey).Logger()
			cacheKey := idempotency.BuildCacheKey(idempotencyNamespace, r.Method, r.URL.Path, idempotencyKey)

			degrade := func(err error, msg string) {
				reqLogger.Warn().Err(err).Msg(msg)

				if cfg.GracefulDegraded {
					next.ServeHTTP(w, r)

					return
				}

				writeError(w, http.StatusServiceUnavailable, "CACHE_UNAVAILABLE", "idempotency service temporarily unavailable")
			}

			cached, err := cache.Get(ctx, cacheKey)
			if err != nil {
				degrade(err, "idempotency cache get failed")

				return
			}

			if cached != nil {
				if cached.Fingerprint != "" && cached.Fingerprint != fingerprint {
					writeError(w, http.StatusUnprocessableEntity, "IDEMPOTENCY_KEY_REUSED",
						"idempotency key was already used with a different request body")

					return
				}

				writeCachedResponse(w, cfg, cached)

				return
			}

			acquired, err := cache.SetLock(ctx, cacheKey, cfg.LockTTL)
			if err != nil {
				degrade(err, "idempotency cache lock failed")

				return
			}

			if !acquired {
				writeError(w, http.StatusConflict, "REQUEST_IN_PROGRESS",
					"a request with this idempotency key is already being processed")

				return
			}

			defer func() {
				if releaseErr := cache.ReleaseLock(ctx, cacheKey); releaseErr != nil {
					reqLogger.Warn().Err(releaseErr).Msg("failed to release idempotency lock")
				}
			}()

			recorder := newResponseRecorder(w)
			next.ServeHTTP(recorder, r.WithContext(idempotency.WithKey(ctx, idempotencyKey)))

			if recorder.statusCode < http.StatusOK || recorder.statusCode >= http.StatusMultipleChoices {
				return
			}

			response := &ports.CachedResponse{
				StatusCode:  recorder.statusCode,
				Headers:     recorder.capturedHeaders(),
				Body:        recorder.body.Bytes(),
				Fingerprint: fingerprint,
				CreatedAt:   time.Now().UTC(),
			}

			if err := cache.Set(ctx, cacheKey, response, cfg.CacheTTL); err != nil {
				reqLogger.Warn().Err(err).Msg("failed to cache idempotent response")
			}
		})
	}
}

func writeCachedResponse(w http.ResponseWriter, cfg config.Idempotency, cached *ports.CachedResponse) {
	for key, value := range cached.Headers {
		w.Header().Set(key, value)
	}

	w.Header().Set(cfg.ReplayedHeader, "true")
	w.WriteHeader(cached.StatusCode)
	_, _ = w.Write(cached.Body)
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func newResponseRecorder(w http.ResponseWriter) *responseRecorder {
	return &responseRecorder{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
		body:           &bytes.Buffer{},
	}
}

func (r *responseRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)

	return r.ResponseWriter.Write(b)
}

// capturedHeaders keeps the first value of each header; the request id of
// the original response is not replayed.
func (r *responseRecorder) capturedHeaders() map[string]string {
	headers := make(map[string]string)

	for key, values := range r.ResponseWriter.Header() {
		if len(values) > 0 && key != RequestIDHeader {
			headers[key] = values[0]
		}
	}

	return headers
}
