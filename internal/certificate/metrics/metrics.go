package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for certificate issuance and verification.
type Metrics struct {
	CertificatesIssued   prometheus.Counter
	IssueFailures        *prometheus.CounterVec
	Verifications        *prometheus.CounterVec
	IssueDuration        prometheus.Histogram
	VerificationDuration prometheus.Histogram
}

var latencyBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}

// New registers the certificate metrics with the default registry.
func New() *Metrics {
	return &Metrics{
		CertificatesIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medcert_certificates_issued_total",
			Help: "Total number of certificates issued",
		}),
		IssueFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "medcert_certificate_issue_failures_total",
			Help: "Failed issuance attempts by error code",
		}, []string{"code"}),
		Verifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "medcert_certificate_verifications_total",
			Help: "Verification attempts by outcome (valid, tampered, not_found, invalid)",
		}, []string{"outcome"}),
		IssueDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "medcert_certificate_issue_duration_seconds",
			Help:    "Duration of IssueCertificate operations",
			Buckets: latencyBuckets,
		}),
		VerificationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "medcert_certificate_verification_duration_seconds",
			Help:    "Duration of VerifyCertificate operations (public path)",
			Buckets: latencyBuckets,
		}),
	}
}

func (m *Metrics) IncrementIssued() {
	m.CertificatesIssued.Inc()
}

func (m *Metrics) IncrementIssueFailure(code string) {
	m.IssueFailures.WithLabelValues(code).Inc()
}

func (m *Metrics) IncrementVerification(outcome string) {
	m.Verifications.WithLabelValues(outcome).Inc()
}

// ObserveIssue records the duration of an issuance. Call with time.Now() at the start.
func (m *Metrics) ObserveIssue(start time.Time) {
	m.IssueDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveVerification(start time.Time) {
	m.VerificationDuration.Observe(time.Since(start).Seconds())
}
