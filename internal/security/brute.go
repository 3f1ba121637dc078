package security

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Brute counts login attempts per (ip, username) in a fixed Redis window.
type Brute struct {
	RDB    *redis.Client
	Limit  int
	Window time.Duration
}

func ipOf(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (b Brute) Key(r *http.Request, username string) string {
	return "brute:" + ipOf(r) + ":" + strings.ToLower(strings.TrimSpace(username))
}

func (b Brute) Allow(ctx context.Context, r *http.Request, username string) (ok bool, remaining int, ttl time.Duration) {
	key := b.Key(r, username)
	pipe := b.RDB.TxPipeline()
	cnt := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, b.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, b.Limit, 0
	}
	v := int(cnt.Val())
	if v <= b.Limit {
		return true, b.Limit - v, 0
	}
	ttl, _ = b.RDB.TTL(ctx, key).Result()
	return false, 0, ttl
}

// Reset clears the counter after a successful login.
func (b Brute) Reset(ctx context.Context, r *http.Request, username string) {
	_ = b.RDB.Del(ctx, b.Key(r, username)).Err()
}

func JitterBackoff(base time.Duration) time.Duration {
	var b [8]byte
	_, _ = rand.Read(b[:])

	jit := time.Duration(binary.LittleEndian.Uint64(b[:])%250) * time.Millisecond
	return base + jit
}
