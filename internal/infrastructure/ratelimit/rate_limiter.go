package ratelimit

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Actions with their own budgets. Anything else falls under ActionDefault.
const (
	ActionDefault    = "default"
	ActionSavedList  = "saved_list_write"
	ActionCart       = "cart_write"
	ActionPlaceOrder = "place_order"
	ActionReview     = "review_write"
)

// Policy is a sustained rate per minute with a burst.
type Policy struct {
	PerMinute int
	Burst     int
}

func (p Policy) limit() rate.Limit {
	if p.PerMinute <= 0 {
		return rate.Inf
	}
	return rate.Every(time.Minute / time.Duration(p.PerMinute))
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per (identity, action).
type RateLimiter struct {
	policies map[string]Policy
	buckets  map[string]*bucket
	mutex    sync.Mutex
	now      func() time.Time
}

// NewRateLimiter derives the per-action policies from the default budget.
func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 60
	}
	return &RateLimiter{
		policies: map[string]Policy{
			ActionDefault:    {PerMinute: perMinute, Burst: perMinute},
			ActionSavedList:  {PerMinute: perMinute, Burst: perMinute / 2},
			ActionCart:       {PerMinute: perMinute, Burst: perMinute / 2},
			ActionPlaceOrder: {PerMinute: 5, Burst: 2},
			ActionReview:     {PerMinute: 10, Burst: 3},
		},
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// SetPolicy overrides the budget of one action.
func (rl *RateLimiter) SetPolicy(action string, p Policy) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	rl.policies[action] = p
	for key := range rl.buckets {
		if strings.HasSuffix(key, ":"+action) {
			delete(rl.buckets, key)
		}
	}
}

func (rl *RateLimiter) policy(action string) Policy {
	if p, ok := rl.policies[action]; ok {
		return p
	}
	return rl.policies[ActionDefault]
}

// Allow consumes a token for identity and action. When no token is available
// it reports how long until one is.
func (rl *RateLimiter) Allow(identity, action string) (bool, time.Duration) {
	key := identity + ":" + action
	now := rl.now()

	rl.mutex.Lock()
	b, exists := rl.buckets[key]
	if !exists {
		p := rl.policy(action)
		burst := p.Burst
		if burst < 1 {
			burst = 1
		}
		b = &bucket{limiter: rate.NewLimiter(p.limit(), burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	rl.mutex.Unlock()

	r := b.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, time.Minute
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Cleanup removes buckets that have been idle for longer than idle.
func (rl *RateLimiter) Cleanup(idle time.Duration) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	for key, b := range rl.buckets {
		if now.Sub(b.lastSeen) > idle {
			delete(rl.buckets, key)
		}
	}
}

// StartCleanupRoutine runs Cleanup periodically until stop is closed.
func (rl *RateLimiter) StartCleanupRoutine(stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rl.Cleanup(time.Hour)
			case <-stop:
				return
			}
		}
	}()
}
