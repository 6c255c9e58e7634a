package nvelope

import (
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/muir/nphase"
)

// LimiterPool hands out one token bucket per key.
type LimiterPool struct {
	mu    sync.Mutex
	m     map[string]*rate.Limiter
	rps   rate.Limit
	burst int
}

// NewLimiterPool creates a pool.  Non-positive values fall back to
// 5 requests per second with a burst of 10.
func NewLimiterPool(rps float64, burst int) *LimiterPool {
	if rps <= 0 {
		rps = 5
	}
	if burst <= 0 {
		burst = 10
	}
	return &LimiterPool{
		m:     make(map[string]*rate.Limiter),
		rps:   rate.Limit(rps),
		burst: burst,
	}
}

// Get returns the limiter for key, creating it if needed.
func (p *LimiterPool) Get(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	if l, ok := p.m[key]; ok {
		return l
	}
	l := rate.NewLimiter(p.rps, p.burst)
	p.m[key] = l
	return l
}

// RateLimit is a step that fails with a TooManyRequests error when
// limiter has no token left.  It does not wait.
func RateLimit[P nphase.Phase](limiter *rate.Limiter) nphase.Middleware[P, P, error, struct{}] {
	return nphase.TryCatch[P](func(nphase.Request) (struct{}, error) {
		if !limiter.Allow() {
			return struct{}{}, TooManyRequests(errors.New("rate limit exceeded"))
		}
		return struct{}{}, nil
	}, func(err error) error { return err })
}

// RateLimitBy is RateLimit with a bucket per key, for example per
// client address.
func RateLimitBy[P nphase.Phase](pool *LimiterPool, key func(nphase.Request) string) nphase.Middleware[P, P, error, struct{}] {
	return nphase.TryCatch[P](func(r nphase.Request) (struct{}, error) {
		k := key(r)
		if !pool.Get(k).Allow() {
			return struct{}{}, TooManyRequests(errors.Errorf("rate limit exceeded for %s", k))
		}
		return struct{}{}, nil
	}, func(err error) error { return err })
}

// WaitRateLimit waits for a token, giving up when the request
// context is done.
func WaitRateLimit[P nphase.Phase](limiter *rate.Limiter) nphase.Middleware[P, P, error, struct{}] {
	return nphase.TryCatch[P](func(r nphase.Request) (struct{}, error) {
		if err := limiter.Wait(r.Context()); err != nil {
			return struct{}{}, TooManyRequests(errors.Wrap(err, "rate limit"))
		}
		return struct{}{}, nil
	}, func(err error) error { return err })
}
