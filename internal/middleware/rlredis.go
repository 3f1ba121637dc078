package middleware

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisLimiter struct {
	RDB    *redis.Client
	Limit  int
	Window time.Duration
	KeyFn  func(*http.Request) string
}

func NewRedisLimiter(rdb *redis.Client, limit int, window time.Duration, keyFn func(*http.Request) string) *RedisLimiter {
	if keyFn == nil {
		keyFn = IPKey
	}
	return &RedisLimiter{RDB: rdb, Limit: limit, Window: window, KeyFn: keyFn}
}

func (l *RedisLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := "rl:" + l.KeyFn(r)
		ctx := r.Context()
		pipe := l.RDB.TxPipeline()
		cnt := pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, l.Window)
		if _, err := pipe.Exec(ctx); err != nil {
			// fail open: the limiter must not take the API down with redis
			next.ServeHTTP(w, r)
			return
		}
		if int(cnt.Val()) > l.Limit {
			w.Header().Set("Retry-After", strconv.Itoa(int(l.Window.Seconds())))
			http.Error(w, "rate limit", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP expects chi's RealIP to have already rewritten RemoteAddr.
func clientIP(r *http.Request) net.IP {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return net.ParseIP(host)
}

func IPKey(r *http.Request) string {
	if ip := clientIP(r); ip != nil {
		return "ip:" + ip.String()
	}
	return "ip:" + r.RemoteAddr
}
