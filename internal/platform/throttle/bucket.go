package throttle

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

type tokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

func (b *tokenBucket) take(now time.Time) (bool, float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens += elapsed * b.refillRate
	if b.tokens > b.maxTokens {
		b.tokens = b.maxTokens
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true, b.tokens
	}
	return false, b.tokens
}

func (b *tokenBucket) idle(now time.Time) time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return now.Sub(b.lastRefill)
}

// sweepEvery is how many Allow calls pass between idle-bucket sweeps.
const sweepEvery = 1024

// Bucket is the in-process fallback limiter: one token bucket per key that
// refills limit tokens per window. A bucket idle for a full window is back at
// capacity, so sweeping it loses nothing.
type Bucket struct {
	mu      sync.RWMutex
	buckets map[string]*tokenBucket
	limit   int
	rate    float64
	window  time.Duration
	calls   atomic.Uint64
	now     func() time.Time
}

func NewBucket(limit int, window time.Duration) *Bucket {
	if window <= 0 {
		window = time.Second
	}
	return &Bucket{
		buckets: make(map[string]*tokenBucket),
		limit:   limit,
		rate:    float64(limit) / window.Seconds(),
		window:  window,
		now:     time.Now,
	}
}

func (l *Bucket) sweep(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		if b.idle(now) >= l.window {
			delete(l.buckets, key)
		}
	}
}

func (l *Bucket) get(key string, now time.Time) *tokenBucket {
	l.mu.RLock()
	b, ok := l.buckets[key]
	l.mu.RUnlock()
	if ok {
		return b
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok := l.buckets[key]; ok {
		return b
	}
	b = &tokenBucket{
		tokens:     float64(l.limit),
		maxTokens:  float64(l.limit),
		refillRate: l.rate,
		lastRefill: now,
	}
	l.buckets[key] = b
	return b
}

func (l *Bucket) Allow(_ context.Context, key string) (Decision, error) {
	now := l.now()
	if l.calls.Add(1)%sweepEvery == 0 {
		l.sweep(now)
	}
	ok, left := l.get(key, now).take(now)
	d := Decision{Allowed: ok, Limit: l.limit, Remaining: int(left)}
	if !ok && l.rate > 0 {
		d.RetryAfter = time.Duration((1 - left) / l.rate * float64(time.Second))
	}
	return d, nil
}
