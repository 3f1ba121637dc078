package repos

import "github.com/prometheus/client_golang/prometheus"

type AuthMetrics struct {
	Registered prometheus.Counter
	LoggedIn   prometheus.Counter
	Failed     *prometheus.CounterVec
}

func NewAuthMetrics(reg prometheus.Registerer) *AuthMetrics {
	m := &AuthMetrics{
		Registered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auth_registered_total", Help: "successful registrations",
		}),
		LoggedIn: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auth_login_total", Help: "successful logins",
		}),
		Failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_failed_total", Help: "failed auth attempts by reason",
		}, []string{"op", "reason"}),
	}
	reg.MustRegister(m.Registered, m.LoggedIn, m.Failed)
	return m
}
