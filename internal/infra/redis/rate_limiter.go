package redis

import (
	"context"
	"strconv"
	"time"
)

// RateLimiter counts hits per key in fixed windows aligned to the clock.
// The window index is part of the Redis key, so a lost EXPIRE never blocks a
// caller past the current window.
type RateLimiter struct {
	client RedisClient
	now    func() time.Time
}

func NewRateLimiter(client RedisClient) *RateLimiter {
	return &RateLimiter{client: client, now: time.Now}
}

// Allow counts one hit for key and reports whether it is within limit.
// A non-positive limit or window disables limiting.
func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 || window <= 0 {
		return true, nil
	}
	bucket := r.now().UnixNano() / int64(window)
	k := key + ":" + strconv.FormatInt(bucket, 10)

	count, err := r.client.Incr(ctx, k)
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := r.client.Expire(ctx, k, window); err != nil {
			return false, err
		}
	}
	return count <= int64(limit), nil
}

// UserActionKey is the counter prefix for one user and action.
func UserActionKey(userID, action string) string {
	return "rate_limit:" + action + ":" + userID
}
