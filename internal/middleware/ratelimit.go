package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type Limiter struct {
	r   rate.Limit
	b   int
	m   sync.Map // key -> *entry
	ttl time.Duration
}

func NewLimiter(r rate.Limit, burst int, ttl time.Duration) *Limiter {
	return &Limiter{r: r, b: burst, ttl: ttl}
}

type entry struct {
	lim *rate.Limiter
	mu  sync.Mutex
	ts  time.Time
}

func (l *Limiter) get(k string) *rate.Limiter {
	now := time.Now()
	v, _ := l.m.LoadOrStore(k, &entry{lim: rate.NewLimiter(l.r, l.b), ts: now})
	e := v.(*entry)
	e.mu.Lock()
	e.ts = now
	e.mu.Unlock()
	return e.lim
}

func (l *Limiter) Cleanup() {
	cut := time.Now().Add(-l.ttl)
	l.m.Range(func(key, value any) bool {
		e := value.(*entry)
		e.mu.Lock()
		stale := e.ts.Before(cut)
		e.mu.Unlock()
		if stale {
			l.m.Delete(key)
		}
		return true
	})
}

// StartCleanup evicts idle keys every interval until stop is called.
func (l *Limiter) StartCleanup(every time.Duration) (stop func()) {
	t := time.NewTicker(every)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-t.C:
				l.Cleanup()
			case <-done:
				return
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { t.Stop(); close(done) }) }
}

func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.get(IPKey(r)).Allow() {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "rate limit", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
