package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const rateLimiterSweepThreshold = 1024

// RateLimit 限制同一来源在固定窗口内的请求数量，超限时返回 429 与统一错误体。
func RateLimit(maxRequests int, window time.Duration, logger *zap.Logger) func(http.Handler) http.Handler {
	if maxRequests <= 0 || window <= 0 {
		return passthrough
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	limiter := newIPRateLimiter(maxRequests, window, time.Now)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)
			retryIn, ok := limiter.Allow(key)
			if !ok {
				logger.Warn("rate limit exceeded", zap.String("client", key), zap.String("path", r.URL.Path))
				writeRateLimited(w, retryIn)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func passthrough(next http.Handler) http.Handler {
	return next
}

func writeRateLimited(w http.ResponseWriter, retryIn time.Duration) {
	seconds := int(retryIn.Round(time.Second).Seconds())
	if seconds < 1 {
		seconds = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": "rate limit exceeded",
		"code":  "rate_limited",
	})
}

type ipRateLimiter struct {
	mu          sync.Mutex
	clients     map[string]*clientCounter
	maxRequests int
	window      time.Duration
	now         func() time.Time
}

type clientCounter struct {
	count   int
	expires time.Time
}

func newIPRateLimiter(maxRequests int, window time.Duration, now func() time.Time) *ipRateLimiter {
	return &ipRateLimiter{
		maxRequests: maxRequests,
		window:      window,
		clients:     make(map[string]*clientCounter),
		now:         now,
	}
}

// Allow 返回是否放行，拒绝时附带窗口剩余时间。
func (l *ipRateLimiter) Allow(key string) (time.Duration, bool) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.clients[key]
	if !ok || now.After(entry.expires) {
		if len(l.clients) >= rateLimiterSweepThreshold {
			l.cleanupLocked(now)
		}
		l.clients[key] = &clientCounter{
			count:   1,
			expires: now.Add(l.window),
		}
		return 0, true
	}

	if entry.count >= l.maxRequests {
		return entry.expires.Sub(now), false
	}

	entry.count++
	return 0, true
}

func (l *ipRateLimiter) cleanupLocked(now time.Time) {
	for key, entry := range l.clients {
		if now.After(entry.expires) {
			delete(l.clients, key)
		}
	}
}

func clientKey(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
