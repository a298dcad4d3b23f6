package idempotency

import "context"

type contextKey struct{}

// FromContext returns the validated idempotency key of the current request.
func FromContext(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(contextKey{}).(string)

	return key, ok && key != ""
}

func WithKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, contextKey{}, key)
}
