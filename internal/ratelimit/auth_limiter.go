package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alphaedge/backend/internal/config"
	redis "github.com/redis/go-redis/v9"
)

const keyAuthEndpoint = "auth:%s:%s"

// AuthLimiter throttles login and signup attempts per client address. It is
// nil when no redis address is configured; callers treat a nil limiter as
// always allowing.
type AuthLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewAuthLimiter(cfg config.Config) *AuthLimiter {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}
	if cfg.AuthRateLimit <= 0 || cfg.AuthRateBurst <= 0 {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})

	return &AuthLimiter{
		bucket: NewTokenBucket(client),
		rate:   cfg.AuthRateLimit,
		burst:  cfg.AuthRateBurst,
	}
}

// Allow reports whether another attempt from clientAddr against endpoint is
// within the limit. Redis failures open the limiter rather than block logins.
func (l *AuthLimiter) Allow(ctx context.Context, endpoint, clientAddr string) (bool, time.Duration) {
	if l == nil || l.bucket == nil {
		return true, 0
	}
	key := fmt.Sprintf(keyAuthEndpoint, endpoint, clientAddr)
	res, err := l.bucket.Allow(ctx, key, l.rate, l.burst)
	if err != nil {
		return true, 0
	}
	return res.Allowed, res.RetryAfter
}
