package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig sizes the per-client token bucket.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained refill rate.
	RequestsPerSecond float64
	// Burst is the bucket depth: how many requests a quiet client may
	// fire back to back before the refill rate takes over.
	Burst int
}

// visitor is one client's bucket plus the recency stamp the sweep uses.
type visitor struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

const (
	sweepEvery = 5 * time.Minute
	visitorTTL = 10 * time.Minute
)

type rateLimiter struct {
	cfg       RateLimitConfig
	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
}

// RateLimiter enforces a per-client token bucket keyed on the dialing
// address. Rejected requests get 429 with the shared error envelope and
// a Retry-After hint; accepted ones carry X-RateLimit-* headers.
func RateLimiter(cfg RateLimitConfig) func(http.Handler) http.Handler {
	rl := &rateLimiter{
		cfg:       cfg,
		visitors:  make(map[string]*visitor),
		lastSweep: time.Now(),
	}
	return rl.middleware
}

// bucketFor returns the client's limiter, creating it on first sight.
// Stale visitors are pruned opportunistically under the same lock, so an
// idle server holds no timers and no background goroutine.
func (rl *rateLimiter) bucketFor(addr string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastSweep) > sweepEvery {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) > visitorTTL {
				delete(rl.visitors, k)
			}
		}
		rl.lastSweep = now
	}

	v, ok := rl.visitors[addr]
	if !ok {
		v = &visitor{bucket: rate.NewLimiter(rate.Limit(rl.cfg.RequestsPerSecond), rl.cfg.Burst)}
		rl.visitors[addr] = v
	}
	v.lastSeen = now
	return v.bucket
}

func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bucket := rl.bucketFor(clientIP(r))

		res := bucket.Reserve()
		if !res.OK() {
			writeRateLimited(w, 0)
			return
		}
		if delay := res.Delay(); delay > 0 {
			res.Cancel()
			writeRateLimited(w, int(delay.Seconds())+1)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.cfg.Burst))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(bucket.Tokens())))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Second).Unix(), 10))
		next.ServeHTTP(w, r)
	})
}

// clientIP keys the bucket on RemoteAddr with the port stripped.
// X-Forwarded-For is client-controlled and stays out of the key.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeRateLimited(w http.ResponseWriter, retryAfterSecs int) {
	if retryAfterSecs > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSecs))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    http.StatusTooManyRequests,
		"message": "rate limit exceeded",
	})
}
