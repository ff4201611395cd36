package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/mohitdudhat22/Task-Management-App/internal/logger"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window limiter keyed by user id when the request is
// authenticated and by client IP otherwise. With a Redis client it uses
// INCR/EXPIRE and fails open on Redis errors. Without one it counts in
// process.
type RateLimiter struct {
	rdb   *redis.Client
	local *localWindow
	now   func() time.Time
}

func NewRateLimiter(rdb *redis.Client) *RateLimiter {
	return &RateLimiter{rdb: rdb, local: newLocalWindow(), now: time.Now}
}

// ConnectRedis returns a client for addr, or nil when addr is empty or the
// server does not answer a ping.
func ConnectRedis(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, continuing without it", "addr", addr, "error", err)
		_ = rdb.Close()
		return nil
	}
	logger.Info("redis connected", "addr", addr)
	return rdb
}

// Middleware allows maxRequests per window.
// Redis key format: rl:<window_seconds>:<identifier>
func (l *RateLimiter) Middleware(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxRequests <= 0 {
			c.Next()
			return
		}

		ident := "ip:" + c.ClientIP()
		if uid := c.GetString(CtxUserID); uid != "" {
			ident = "user:" + uid
		}
		key := "rl:" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + ident

		var val int64
		if l.rdb == nil {
			val = int64(l.local.hit(key, window, l.now()))
		} else {
			ctx := c.Request.Context()
			n, err := l.rdb.Incr(ctx, key).Result()
			if err != nil {
				// on Redis error, fail-open (allow) but set header
				c.Header("X-RateLimit-Error", "redis-error")
				c.Next()
				return
			}
			if n == 1 {
				l.rdb.Expire(ctx, key, window)
			}
			val = n
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(maxRequests)-val), 10))

		if val > int64(maxRequests) {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": int(window.Seconds()),
			})
			return
		}

		RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}
