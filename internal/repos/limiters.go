package repos

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// NewUsernameLimiter allows a burst of 3 login attempts per username, then one
// every 2s.
func NewUsernameLimiter() func(string) bool {
	var m sync.Map
	return func(key string) bool {
		key = strings.ToLower(strings.TrimSpace(key))
		v, _ := m.LoadOrStore(key, rate.NewLimiter(rate.Every(2*time.Second), 3))
		return v.(*rate.Limiter).Allow()
	}
}
