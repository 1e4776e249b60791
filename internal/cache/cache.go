package cache

import (
	"context"
	"time"
)

// BytesCache is a key-value store; ok=false means the key is absent or expired.
type BytesCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error)
}
