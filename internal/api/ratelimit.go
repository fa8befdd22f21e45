package api

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mgmcet/admission-portal/internal/config"
)

// RateLimiter applies a fixed-window limit on public submissions, keyed by
// client address. When Redis is unreachable the limiter fails open: losing
// the limit is better than losing submissions.
type RateLimiter struct {
	client   *redis.Client
	requests int
	window   time.Duration
}

// NewRateLimiter creates a limiter backed by Redis. A nil client disables
// limiting entirely.
func NewRateLimiter(client *redis.Client, cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		client:   client,
		requests: cfg.Requests,
		window:   cfg.Window,
	}
}

// Limit is the middleware applied to the submission endpoint.
func (l *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.client == nil || l.requests <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		key := "ratelimit:submit:" + clientAddress(r)
		count, err := l.client.Incr(r.Context(), key).Result()
		if err != nil {
			slog.Warn("rate limit check failed, allowing request", "error", err)
			next.ServeHTTP(w, r)
			return
		}
		if count == 1 {
			if err := l.client.Expire(r.Context(), key, l.window).Err(); err != nil {
				slog.Warn("rate limit window not set", "key", key, "error", err)
			}
		}

		if count > int64(l.requests) {
			slog.Warn("submission rate limited", "addr", clientAddress(r), "count", count)
			respondError(w, http.StatusTooManyRequests, "rate_limited", "too many submissions, please try again later")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientAddress(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
