package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/Veysel440/go-auth-smoke/internal/config"
	"github.com/Veysel440/go-auth-smoke/internal/handlers"
	"github.com/Veysel440/go-auth-smoke/internal/jwtauth"
	"github.com/Veysel440/go-auth-smoke/internal/logging"
	"github.com/Veysel440/go-auth-smoke/internal/metrics"
	"github.com/Veysel440/go-auth-smoke/internal/middleware"
	"github.com/Veysel440/go-auth-smoke/internal/openapi"
	"github.com/Veysel440/go-auth-smoke/internal/repos"
	"github.com/Veysel440/go-auth-smoke/internal/security"
)

type Server struct {
	cfg   config.Config
	store repos.Store
	rdb   *redis.Client
	keys  jwtauth.KeyProvider
	mx    *metrics.Registry
	log   *slog.Logger

	stops []func()
}

// New wires the auth API over store. rdb may be nil, in which case rate
// limiting stays in process.
func New(cfg config.Config, store repos.Store, rdb *redis.Client) *Server {
	return &Server{
		cfg:   cfg,
		store: store,
		rdb:   rdb,
		keys:  jwtauth.FromConfig(cfg),
		mx:    metrics.New(),
		log:   logging.New(),
	}
}

func (s *Server) WithLogger(l *slog.Logger) *Server { s.log = l; return s }

func (s *Server) WithKeys(k jwtauth.KeyProvider) *Server { s.keys = k; return s }

func (s *Server) limiter(rps float64, burst int) func(http.Handler) http.Handler {
	if s.rdb != nil {
		return middleware.NewRedisLimiter(s.rdb, int(rps*60)+burst, time.Minute, middleware.IPKey).Middleware
	}
	l := middleware.NewLimiter(rate.Limit(rps), burst, 5*time.Minute)
	s.stops = append(s.stops, l.StartCleanup(time.Minute))
	return l.Middleware
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()

	r.Use(
		otelhttp.NewMiddleware("authstub"),
		middleware.RequestID,
	)
	// RealIP rewrites RemoteAddr from X-Forwarded-For / X-Real-IP, which the
	// metrics allowlist, the per-IP limiters and the brute guard all key on.
	// Only honour those headers when a trusted proxy sets them.
	if s.cfg.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(
		middleware.SecurityHeaders,
		middleware.BodyLimit(s.cfg.MaxBodyBytes),
		middleware.RecoverJSON(s.log),
		s.limiter(s.cfg.RateRPS, s.cfg.RateBurst),
		s.mx.MW,
		middleware.Logger(s.log),
	)

	hh := handlers.Health{Store: s.store}
	r.Get("/healthz", hh.Live)
	r.Get("/readyz", hh.Ready)

	r.Group(func(gr chi.Router) {
		gr.Use(middleware.AllowCIDR(s.cfg.MetricsCIDRs()...))
		gr.Handle("/metrics", s.mx.Handler())
	})

	if s.cfg.Env != "prod" {
		r.Handle("/openapi.yaml", openapi.Spec())
		r.Handle("/docs", openapi.UI())
	}

	au := &handlers.Auth{
		Cfg:     s.cfg,
		Users:   s.store,
		Keys:    s.keys,
		Limiter: repos.NewUsernameLimiter(),
		Metrics: repos.NewAuthMetrics(s.mx.Reg()),
		Mx:      s.mx,
	}
	if s.rdb != nil {
		au.Guard = security.Brute{RDB: s.rdb, Limit: s.cfg.BruteLimit, Window: s.cfg.BruteWindow}
	}

	r.Route("/api", func(ar chi.Router) {
		ar.Use(s.limiter(s.cfg.RateAuthRPS, s.cfg.RateAuthBurst))
		ar.Post("/register", au.Register)
		ar.Post("/login", au.Login)
		ar.With(middleware.RequireSession(s.keys, s.cfg.JWTIssuer)).Get("/session", au.Session)
	})

	return r
}

// Handler builds a fresh router; each call gets its own limiters and
// metrics registrations.
func (s *Server) Handler() http.Handler {
	s.mx = metrics.New()
	return s.router()
}

func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}
}

// Close stops background limiter cleanup.
func (s *Server) Close() {
	for _, stop := range s.stops {
		stop()
	}
	s.stops = nil
}
