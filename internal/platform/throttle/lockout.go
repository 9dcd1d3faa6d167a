package throttle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Lockout counts failed logins per account. After max failures inside the
// window the account is locked until the counter expires.
type Lockout interface {
	Locked(ctx context.Context, account string) (bool, time.Duration, error)
	Fail(ctx context.Context, account string) error
	Reset(ctx context.Context, account string) error
}

// RedisLockout keeps one expiring counter per account.
type RedisLockout struct {
	client redis.Cmdable
	max    int
	window time.Duration
}

func NewRedisLockout(client redis.Cmdable, max int, window time.Duration) *RedisLockout {
	return &RedisLockout{client: client, max: max, window: window}
}

func (l *RedisLockout) key(account string) string {
	return "login_fail:" + strings.ToLower(strings.TrimSpace(account))
}

func (l *RedisLockout) Locked(ctx context.Context, account string) (bool, time.Duration, error) {
	if l.max <= 0 {
		return false, 0, nil
	}
	n, err := l.client.Get(ctx, l.key(account)).Int()
	if err == redis.Nil {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, fmt.Errorf("lockout check: %w", err)
	}
	if n < l.max {
		return false, 0, nil
	}
	ttl, err := l.client.PTTL(ctx, l.key(account)).Result()
	if err != nil || ttl < 0 {
		ttl = l.window
	}
	return true, ttl, nil
}

func (l *RedisLockout) Fail(ctx context.Context, account string) error {
	key := l.key(account)
	_, err := l.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, key)
		p.PExpire(ctx, key, l.window)
		return nil
	})
	if err != nil {
		return fmt.Errorf("lockout record: %w", err)
	}
	return nil
}

func (l *RedisLockout) Reset(ctx context.Context, account string) error {
	return l.client.Del(ctx, l.key(account)).Err()
}

// NopLockout never locks. It is used when Redis is not configured.
type NopLockout struct{}

func (NopLockout) Locked(context.Context, string) (bool, time.Duration, error) { return false, 0, nil }
func (NopLockout) Fail(context.Context, string) error                          { return nil }
func (NopLockout) Reset(context.Context, string) error                         { return nil }
