package repos

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/throttled/throttled/v2"

	"github.com/architeacher/persons/services/svc-persons/internal/infrastructure"
)

const rateLimitKeyPrefix = "persons:ratelimit:"

// RateLimitStore keeps GCRA state in KeyDB so every replica shares one
// budget per client.
type RateLimitStore struct {
	client *infrastructure.KeydbClient
	prefix string
}

var _ throttled.GCRAStoreCtx = (*RateLimitStore)(nil)

func NewRateLimitStore(client *infrastructure.KeydbClient) *RateLimitStore {
	return &RateLimitStore{
		client: client,
		prefix: rateLimitKeyPrefix,
	}
}

// GetWithTime returns -1 for an absent key, as throttled expects.
func (s *RateLimitStore) GetWithTime(ctx context.Context, key string) (int64, time.Time, error) {
	now := time.Now()

	raw, err := s.client.Get(ctx, s.prefix+key)
	if err != nil {
		if errors.Is(err, infrastructure.ErrCacheMiss) {
			return -1, now, nil
		}

		return 0, now, err
	}

	value, err := strconv.ParseInt(string(raw), 10, 64)

	return value, now, err
}

func (s *RateLimitStore) SetIfNotExistsWithTTL(ctx context.Context, key string, value int64, ttl time.Duration) (bool, error) {
	return s.client.Lock(ctx, s.prefix+key, value, ttl)
}

func (s *RateLimitStore) CompareAndSwapWithTTL(ctx context.Context, key string, old, new int64, ttl time.Duration) (bool, error) {
	return s.client.CompareAndSwapInt64(ctx, s.prefix+key, old, new, ttl)
}
