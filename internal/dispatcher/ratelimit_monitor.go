package dispatcher

import (
	"strconv"
	"sync"
	"time"

	"github.com/valyala/fasthttp"
)

type RateLimitBucket struct {
	Remaining int
	Limit     int
	ResetAt   time.Time
}

// RateLimitMonitor remembers the rate limit headers of the last response
// per route so callers can back off before the server rejects them.
type RateLimitMonitor struct {
	mu      sync.RWMutex
	buckets map[string]*RateLimitBucket
	now     func() time.Time
}

func NewRateLimitMonitor() *RateLimitMonitor {
	return &RateLimitMonitor{
		buckets: make(map[string]*RateLimitBucket),
		now:     time.Now,
	}
}

// CanExecute reports whether route still has budget. Unknown routes and
// buckets past their reset are always allowed.
func (rlm *RateLimitMonitor) CanExecute(route string) bool {
	rlm.mu.RLock()
	bucket, exists := rlm.buckets[route]
	rlm.mu.RUnlock()

	if !exists || rlm.now().After(bucket.ResetAt) {
		return true
	}
	return bucket.Remaining > 0
}

// Update reads X-RateLimit-* headers, or Retry-After on a 429, from resp.
// Responses without either leave the bucket untouched.
func (rlm *RateLimitMonitor) Update(resp *fasthttp.Response, route string) {
	remaining := string(resp.Header.Peek("X-RateLimit-Remaining"))
	limit := string(resp.Header.Peek("X-RateLimit-Limit"))
	reset := string(resp.Header.Peek("X-RateLimit-Reset"))
	retryAfter := string(resp.Header.Peek("Retry-After"))

	if remaining == "" && retryAfter == "" {
		return
	}

	bucket := &RateLimitBucket{}
	if remaining != "" {
		bucket.Remaining, _ = strconv.Atoi(remaining)
	}
	if limit != "" {
		bucket.Limit, _ = strconv.Atoi(limit)
	}
	if reset != "" {
		if resetUnix, err := strconv.ParseFloat(reset, 64); err == nil {
			bucket.ResetAt = time.Unix(0, int64(resetUnix*float64(time.Second)))
		}
	}
	if resp.StatusCode() == fasthttp.StatusTooManyRequests && retryAfter != "" {
		if secs, err := strconv.ParseFloat(retryAfter, 64); err == nil {
			bucket.Remaining = 0
			bucket.ResetAt = rlm.now().Add(time.Duration(secs * float64(time.Second)))
		}
	}

	rlm.mu.Lock()
	rlm.buckets[route] = bucket
	rlm.mu.Unlock()
}

func (rlm *RateLimitMonitor) GetBucket(route string) *RateLimitBucket {
	rlm.mu.RLock()
	defer rlm.mu.RUnlock()
	return rlm.buckets[route]
}
