package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks authentication outcomes.
type Metrics struct {
	Logins  *prometheus.CounterVec
	Logouts prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		Logins: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "medcert_auth_logins_total",
			Help: "Login attempts by outcome (success, invalid_credentials, suspended)",
		}, []string{"outcome"}),
		Logouts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medcert_auth_logouts_total",
			Help: "Total number of logouts",
		}),
	}
}

func (m *Metrics) IncrementLogin(outcome string) {
	m.Logins.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementLogout() {
	m.Logouts.Inc()
}
