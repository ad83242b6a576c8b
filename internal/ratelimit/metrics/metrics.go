package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Checks *prometheus.CounterVec
}

// New registers the rate limit collectors. Call it once per process.
func New() *Metrics {
	return &Metrics{
		Checks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "medcert_ratelimit_checks_total",
			Help: "Rate limit decisions by class and outcome (allowed, denied, error)",
		}, []string{"class", "outcome"}),
	}
}

func (m *Metrics) Observe(class, outcome string) {
	m.Checks.WithLabelValues(class, outcome).Inc()
}
