// internal/sources/websearch/quota.go
package websearch

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

const (
	quotaKeyPrefix = "search:quota:websearch:"
	// Keys outlive their day so a late replica still sees the count.
	quotaTTL = 48 * time.Hour
)

// QuotaStore meters calls to the paid search API per UTC day.
type QuotaStore interface {
	// Consume takes one call from today's allowance and returns how many are left.
	// It returns ErrQuotaExhausted once the allowance is used up.
	Consume(ctx context.Context) (int, error)
}

func quotaKey(now time.Time) string {
	return quotaKeyPrefix + now.UTC().Format("20060102")
}

// RedisQuota shares the daily allowance across every replica through an INCR counter.
type RedisQuota struct {
	client redis.Cmdable
	limit  int
	now    func() time.Time
}

func NewRedisQuota(client redis.Cmdable, limit int, now func() time.Time) *RedisQuota {
	if now == nil {
		now = time.Now
	}
	return &RedisQuota{client: client, limit: limit, now: now}
}

func (q *RedisQuota) Consume(ctx context.Context) (int, error) {
	key := quotaKey(q.now())

	used, err := q.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("increment quota counter: %w", err)
	}
	if used == 1 {
		if err := q.client.Expire(ctx, key, quotaTTL).Err(); err != nil {
			return 0, fmt.Errorf("set quota expiry: %w", err)
		}
	}

	if int(used) > q.limit {
		return 0, fmt.Errorf("%w: %d of %d used", ErrQuotaExhausted, used, q.limit)
	}
	return q.limit - int(used), nil
}

// MemoryQuota keeps the allowance in process. Each replica gets the full limit.
type MemoryQuota struct {
	counters *cache.Cache
	limit    int
	now      func() time.Time
}

func NewMemoryQuota(limit int, now func() time.Time) *MemoryQuota {
	if now == nil {
		now = time.Now
	}
	return &MemoryQuota{
		counters: cache.New(quotaTTL, time.Hour),
		limit:    limit,
		now:      now,
	}
}

func (q *MemoryQuota) Consume(_ context.Context) (int, error) {
	key := quotaKey(q.now())

	// Add is a no-op when today's counter already exists.
	_ = q.counters.Add(key, 0, cache.DefaultExpiration)

	used, err := q.counters.IncrementInt(key, 1)
	if err != nil {
		return 0, fmt.Errorf("increment quota counter: %w", err)
	}
	if used > q.limit {
		return 0, fmt.Errorf("%w: %d of %d used", ErrQuotaExhausted, used, q.limit)
	}
	return q.limit - used, nil
}
