package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/architeacher/persons/pkg/logger"
)

type contextKey string

const (
	RequestIDHeader = "X-Request-Id"
	UserLoginHeader = "X-User-Login"

	RequestIDKey contextKey = "requestID"
)

// RequestID reuses the caller's X-Request-Id or generates one, echoes it
// back and makes it visible to context loggers.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
			ctx = logger.WithRequestID(ctx, requestID)
			w.Header().Set(RequestIDHeader, requestID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}

	return ""
}

// UserLogin takes the acting login from X-User-Login. Requests without the
// header are audited as the system user.
func UserLogin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			login := r.Header.Get(UserLoginHeader)
			if login == "" {
				next.ServeHTTP(w, r)

				return
			}

			next.ServeHTTP(w, r.WithContext(logger.WithUserLogin(r.Context(), login)))
		})
	}
}
