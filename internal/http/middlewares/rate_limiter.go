package middlewares

import (
	"context"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// LimiterStore counts hits per key in a fixed window.
type LimiterStore interface {
	Hit(ctx context.Context, key string, window time.Duration) (count int64, resetIn time.Duration, err error)
}

type RateLimiter struct {
	store  LimiterStore
	window time.Duration
	limit  int
	name   string
}

func NewRateLimiter(name string, limit int, window time.Duration, store LimiterStore) *RateLimiter {
	if store == nil {
		store = NewMemoryLimiterStore()
	}
	return &RateLimiter{
		store:  store,
		limit:  limit,
		window: window,
		name:   name,
	}
}

// Middleware returns a gin.HandlerFunc that enforces rate limit for a derived key.
// A failing store lets the request through.
func (rl *RateLimiter) Middleware(keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)
		if key == "" {
			// fallback to IP if key cannot be derived
			key = clientIP(c)
		}

		count, resetIn, err := rl.store.Hit(c.Request.Context(), "ratelimit:"+rl.name+":"+key, rl.window)
		if err != nil {
			slog.Default().WarnContext(c.Request.Context(), "ratelimit.store_error", "limiter", rl.name, "err", err)
			c.Next()
			return
		}

		if count > int64(rl.limit) {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(resetIn.Seconds()))))
			abortError(c, http.StatusTooManyRequests, "rate_limited", "Too many requests. Please try again shortly.")
			return
		}

		c.Next()
	}
}

type MemoryLimiterStore struct {
	mu      sync.Mutex
	clients map[string]*clientBucket
	now     func() time.Time
}

type clientBucket struct {
	count     int64
	windowEnd time.Time
}

func NewMemoryLimiterStore() *MemoryLimiterStore {
	return &MemoryLimiterStore{
		clients: make(map[string]*clientBucket),
		now:     time.Now,
	}
}

func (s *MemoryLimiterStore) Hit(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.clients[key]
	if !ok || !now.Before(b.windowEnd) {
		b = &clientBucket{windowEnd: now.Add(window)}
		s.clients[key] = b
	}
	b.count++

	return b.count, b.windowEnd.Sub(now), nil
}

// WindowCounter is implemented by redisclient.Client.
type WindowCounter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// RedisLimiterStore shares counters across API replicas.
type RedisLimiterStore struct {
	counter WindowCounter
}

func NewRedisLimiterStore(counter WindowCounter) *RedisLimiterStore {
	return &RedisLimiterStore{counter: counter}
}

func (s *RedisLimiterStore) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	return s.counter.IncrWindow(ctx, key, window)
}

// helper functions

// for unauthenticated endpoints: rate limit by IP
func KeyByIP(c *gin.Context) string {
	return clientIP(c)
}

// For authenticated endpoints: rate limit by userID if available
func KeyByUserOrIP(c *gin.Context) string {
	id, ok := UserIDFromContext(c)
	if ok && id != "" {
		return "user:" + id
	}
	return clientIP(c)
}

func clientIP(c *gin.Context) string {
	// Gin's ClientIP respects X-Forwarded-For / X-Real-IP if configured.
	ip := c.ClientIP()

	host, _, err := net.SplitHostPort(ip)
	if err == nil && host != "" {
		return host
	}
	return ip
}
