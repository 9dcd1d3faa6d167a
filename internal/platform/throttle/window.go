package throttle

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Window is a fixed-window counter in Redis. Every key gets one counter per
// window; the counter expires with its window so no cleanup is needed.
type Window struct {
	client redis.Cmdable
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewWindow counts in whole milliseconds; shorter windows are raised to 1ms.
func NewWindow(client redis.Cmdable, prefix string, limit int, window time.Duration) *Window {
	if window < time.Millisecond {
		window = time.Millisecond
	}
	return &Window{client: client, prefix: prefix, limit: limit, window: window, now: time.Now}
}

func (w *Window) Allow(ctx context.Context, key string) (Decision, error) {
	now := w.now()
	slot := now.UnixMilli() / w.window.Milliseconds()
	redisKey := fmt.Sprintf("%s:%s:%d", w.prefix, key, slot)

	var incr *redis.IntCmd
	_, err := w.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, redisKey)
		p.PExpire(ctx, redisKey, w.window)
		return nil
	})
	if err != nil {
		return Decision{Allowed: true, Limit: w.limit, Remaining: w.limit}, fmt.Errorf("rate window: %w", err)
	}

	count := int(incr.Val())
	end := time.UnixMilli((slot + 1) * w.window.Milliseconds())
	d := Decision{Limit: w.limit, Remaining: w.limit - count}
	if d.Remaining < 0 {
		d.Remaining = 0
	}
	if count > w.limit {
		d.RetryAfter = end.Sub(now)
		return d, nil
	}
	d.Allowed = true
	return d, nil
}
