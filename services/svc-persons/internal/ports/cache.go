package ports

import (
	"context"
	"time"

	"github.com/architeacher/persons/services/svc-persons/internal/domain/model"
)

type (
	// CountCache stores counts per criteria. Invalidate must make every
	// previously stored count unreachable.
	CountCache interface {
		Get(ctx context.Context, criteria *model.PersonCriteria) (int64, bool, error)
		Set(ctx context.Context, criteria *model.PersonCriteria, count int64, ttl time.Duration) error
		Invalidate(ctx context.Context) error
	}

	// CachedResponse is a stored HTTP response replayed for a repeated
	// idempotency key.
	CachedResponse struct {
		StatusCode  int               `json:"status_code"`
		Headers     map[string]string `json:"headers"`
		Body        []byte            `json:"body"`
		Fingerprint string            `json:"fingerprint"`
		CreatedAt   time.Time         `json:"created_at"`
	}

	IdempotencyCache interface {
		// Get returns nil, nil when the key is unknown.
		Get(ctx context.Context, key string) (*CachedResponse, error)
		Set(ctx context.Context, key string, response *CachedResponse, ttl time.Duration) error
		// SetLock returns false when another request holds the key.
		SetLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
		ReleaseLock(ctx context.Context, key string) error
	}
)
