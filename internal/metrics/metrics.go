package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg      *prometheus.Registry
	HttpDur  *prometheus.HistogramVec
	StoreErr *prometheus.CounterVec
}

func New() *Registry {
	r := prometheus.NewRegistry()
	httpDur := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)
	storeErr := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_errors_total",
			Help: "User store errors by operation",
		},
		[]string{"op"},
	)

	r.MustRegister(
		httpDur, storeErr,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Registry{reg: r, HttpDur: httpDur, StoreErr: storeErr}
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// MW labels by chi route pattern so unmatched paths collapse into one series.
func (r *Registry) MW(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := &wrap{ResponseWriter: w, status: 200}
		next.ServeHTTP(ww, req)
		route := "unmatched"
		if rc := chi.RouteContext(req.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		r.HttpDur.WithLabelValues(route, req.Method, strconv.Itoa(ww.status)).
			Observe(time.Since(start).Seconds())
	})
}

func (r *Registry) Reg() *prometheus.Registry { return r.reg }

type wrap struct {
	http.ResponseWriter
	status int
}

func (w *wrap) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
