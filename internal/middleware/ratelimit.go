package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	veditErrors "github.com/conneroisu/vedit/internal/errors"
	"github.com/conneroisu/vedit/internal/logging"
)

const (
	bucketIdleExpiry = 10 * time.Minute
	pruneInterval    = time.Minute
)

// RateLimiter implements per-client token bucket rate limiting
type RateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*tokenBucket
	perSecond float64
	burst     float64
	lastPrune time.Time
	now       func() time.Time
}

type tokenBucket struct {
	tokens     float64
	lastRefill time.Time
}

// RateLimitResult represents the result of a rate limit check
type RateLimitResult struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// NewRateLimiter allows requestsPerMinute per client with bursts of up to
// burst requests. burst below 1 becomes requestsPerMinute.
func NewRateLimiter(requestsPerMinute, burst int) *RateLimiter {
	if burst < 1 {
		burst = requestsPerMinute
	}
	return &RateLimiter{
		buckets:   make(map[string]*tokenBucket),
		perSecond: float64(requestsPerMinute) / 60,
		burst:     float64(burst),
		now:       time.Now,
	}
}

// Check consumes a token for key, usually the client IP.
func (rl *RateLimiter) Check(key string) RateLimitResult {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.prune(now)

	b, ok := rl.buckets[key]
	if !ok {
		b = &tokenBucket{tokens: rl.burst, lastRefill: now}
		rl.buckets[key] = b
	}

	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens = math.Min(rl.burst, b.tokens+elapsed*rl.perSecond)
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return RateLimitResult{Allowed: true, Remaining: int(b.tokens)}
	}

	wait := time.Duration((1 - b.tokens) / rl.perSecond * float64(time.Second))
	return RateLimitResult{RetryAfter: wait}
}

// Buckets reports how many clients are tracked.
func (rl *RateLimiter) Buckets() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

func (rl *RateLimiter) prune(now time.Time) {
	if now.Sub(rl.lastPrune) < pruneInterval {
		return
	}
	rl.lastPrune = now
	for key, b := range rl.buckets {
		if now.Sub(b.lastRefill) > bucketIdleExpiry {
			delete(rl.buckets, key)
		}
	}
}

// RateLimit rejects matching requests over the limit with 429. Requests for
// which match returns false pass through untouched.
func RateLimit(limiter *RateLimiter, logger logging.Logger, match func(*http.Request) bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if match != nil && !match(r) {
				next.ServeHTTP(w, r)
				return
			}

			clientIP := clientIP(r)
			result := limiter.Check(clientIP)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

			if !result.Allowed {
				retry := int(math.Ceil(result.RetryAfter.Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				logger.Warn(r.Context(),
					veditErrors.NewSecurityError("ERR_RATE_LIMITED", "rate limit exceeded"),
					"Rate limit exceeded",
					"client_ip", clientIP,
					"path", r.URL.Path,
				)
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP uses the connection address. Forwarding headers are not trusted.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
