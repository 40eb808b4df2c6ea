package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// multiLimiter keeps one token bucket per client key (IP address, or
// authenticated user id once BearerAuth has run) and evicts buckets
// that have gone idle for longer than ttl so long-lived servers don't
// accumulate one limiter per client forever.
type multiLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	ttl     time.Duration
	buckets map[string]*limiterBucket
}

type limiterBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newMultiLimiter(rps float64, burst int, ttl time.Duration) *multiLimiter {
	return &multiLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		ttl:     ttl,
		buckets: make(map[string]*limiterBucket),
	}
}

func (m *multiLimiter) allow(key string) bool {
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()

	b := m.buckets[key]
	if b == nil {
		b = &limiterBucket{limiter: rate.NewLimiter(m.limit, m.burst)}
		m.buckets[key] = b
	}
	b.lastSeen = now

	for k, v := range m.buckets {
		if now.Sub(v.lastSeen) > m.ttl {
			delete(m.buckets, k)
		}
	}
	return b.limiter.Allow()
}

// RateLimit builds a middleware that limits requests to rps per
// second with burst, keyed by authenticated user id when BearerAuth
// has already populated the context, falling back to client IP for
// the public auth endpoints.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	limiter := newMultiLimiter(rps, burst, 10*time.Minute)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := UserIDFromContext(r.Context())
			if key == "" {
				key = clientIP(r)
			}
			if !limiter.allow(key) {
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
