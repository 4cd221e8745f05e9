package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerWindow int           // Number of requests allowed per window
	Window            time.Duration // Time window for rate limiting
	KeyPrefix         string        // Redis key prefix
}

// Decision is the outcome of one rate limit check
type Decision struct {
	Allowed   bool
	Remaining int
	Reset     time.Duration
}

// Limiter decides whether a client may make another request
type Limiter interface {
	Allow(ctx context.Context, clientID string) (Decision, error)
}

// RedisLimiter is a fixed window counter shared by every instance
type RedisLimiter struct {
	client *redis.Client
	config RateLimitConfig
}

// NewRedisLimiter creates a limiter backed by redis
func NewRedisLimiter(client *redis.Client, config RateLimitConfig) *RedisLimiter {
	return &RedisLimiter{client: client, config: config}
}

// Allow increments the client's counter for the current window
func (l *RedisLimiter) Allow(ctx context.Context, clientID string) (Decision, error) {
	key := fmt.Sprintf("%s:%s", l.config.KeyPrefix, clientID)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	// Set expiry on first request
	if count == 1 {
		l.client.Expire(ctx, key, l.config.Window)
	}

	if count > int64(l.config.RequestsPerWindow) {
		ttl, err := l.client.TTL(ctx, key).Result()
		if err != nil || ttl < 0 {
			ttl = l.config.Window
		}
		return Decision{Allowed: false, Reset: ttl}, nil
	}

	return Decision{
		Allowed:   true,
		Remaining: l.config.RequestsPerWindow - int(count),
	}, nil
}

// LocalLimiter keeps a token bucket per client in process memory. It is
// used when no redis is configured. Buckets idle for a full window are
// dropped, since a new bucket would start just as full.
type LocalLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*clientBucket
	lastSweep time.Time
	now       func() time.Time
	config    RateLimitConfig
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLocalLimiter creates an in-process limiter
func NewLocalLimiter(config RateLimitConfig) *LocalLimiter {
	return &LocalLimiter{
		limiters: make(map[string]*clientBucket),
		now:      time.Now,
		config:   config,
	}
}

func (l *LocalLimiter) limiterFor(clientID string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.config.Window {
		l.evictIdle(now)
		l.lastSweep = now
	}

	bucket, ok := l.limiters[clientID]
	if !ok {
		every := l.config.Window / time.Duration(max(l.config.RequestsPerWindow, 1))
		bucket = &clientBucket{limiter: rate.NewLimiter(rate.Every(every), l.config.RequestsPerWindow)}
		l.limiters[clientID] = bucket
	}
	bucket.lastSeen = now
	return bucket.limiter
}

// evictIdle must be called with mu held
func (l *LocalLimiter) evictIdle(now time.Time) {
	for clientID, bucket := range l.limiters {
		if now.Sub(bucket.lastSeen) >= l.config.Window {
			delete(l.limiters, clientID)
		}
	}
}

// Allow takes one token from the client's bucket
func (l *LocalLimiter) Allow(ctx context.Context, clientID string) (Decision, error) {
	now := l.now()
	limiter := l.limiterFor(clientID, now)

	reservation := limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return Decision{Allowed: false, Reset: l.config.Window}, nil
	}
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return Decision{Allowed: false, Reset: delay}, nil
	}

	return Decision{
		Allowed:   true,
		Remaining: int(limiter.TokensAt(now)),
	}, nil
}

func clientIdentifier(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimitMiddleware rejects clients that exceed the limiter's budget.
// Limiter errors let the request through.
func RateLimitMiddleware(limiter Limiter, config RateLimitConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := clientIdentifier(r)

			decision, err := limiter.Allow(r.Context(), clientID)
			if err != nil {
				logger.Error("Rate limit check failed",
					zap.Error(err),
					zap.String("client_id", clientID),
				)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerWindow))

			if !decision.Allowed {
				logger.Warn("Rate limit exceeded",
					zap.String("client_id", clientID),
					zap.Int("limit", config.RequestsPerWindow),
				)

				retryAfter := int(decision.Reset.Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(decision.Reset).Unix(), 10))
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

				RespondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))

			next.ServeHTTP(w, r)
		})
	}
}
