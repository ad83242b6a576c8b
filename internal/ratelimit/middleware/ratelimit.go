package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/bossygit/digital-medical-certificate-system/internal/ratelimit/metrics"
	"github.com/bossygit/digital-medical-certificate-system/internal/ratelimit/models"
	audit "github.com/bossygit/digital-medical-certificate-system/pkg/platform/audit"
	"github.com/bossygit/digital-medical-certificate-system/pkg/platform/httputil"
	request "github.com/bossygit/digital-medical-certificate-system/pkg/platform/middleware/request"
	"github.com/bossygit/digital-medical-certificate-system/pkg/requestcontext"
)

// BucketStore records requests in a sliding window.
type BucketStore interface {
	Allow(ctx context.Context, key string, policy models.Policy) (*models.Result, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Middleware struct {
	buckets        BucketStore
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	disabled       bool
}

type Option func(*Middleware)

// WithDisabled turns every check into a pass-through, for demos and tests.
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(m *Middleware) {
		m.auditPublisher = publisher
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = mt
	}
}

func New(buckets BucketStore, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		buckets: buckets,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// PerIP limits requests per client IP under class. Store failures let the
// request through.
func (m *Middleware) PerIP(class string, policy models.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m.disabled || !policy.Enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := requestcontext.ClientIP(ctx)
			if ip == "" {
				ip = "unknown"
			}

			result, err := m.buckets.Allow(ctx, class+":ip:"+ip, policy)
			if err != nil {
				m.observe(class, "error")
				m.logger.ErrorContext(ctx, "rate limit check failed, allowing request",
					"class", class,
					"ip_prefix", anonymizeIP(ip),
					"request_id", request.GetRequestID(ctx),
					"error", err,
				)
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, result)
			if !result.Allowed {
				m.observe(class, "denied")
				m.emitExceeded(ctx, class, ip, result)
				writeRateLimitExceeded(w, result)
				return
			}
			m.observe(class, "allowed")
			next.ServeHTTP(w, r)
		})
	}
}

func (m *Middleware) observe(class, outcome string) {
	if m.metrics != nil {
		m.metrics.Observe(class, outcome)
	}
}

func (m *Middleware) emitExceeded(ctx context.Context, class, ip string, result *models.Result) {
	m.logger.WarnContext(ctx, string(audit.EventRateLimitExceeded),
		"event", audit.EventRateLimitExceeded,
		"log_type", "audit",
		"class", class,
		"ip_prefix", anonymizeIP(ip),
		"request_id", request.GetRequestID(ctx),
	)
	if m.auditPublisher == nil {
		return
	}
	err := m.auditPublisher.Emit(ctx, audit.Event{
		Action:     string(audit.EventRateLimitExceeded),
		TargetType: "endpoint_class",
		TargetID:   class,
		IP:         ip,
		UserAgent:  requestcontext.UserAgent(ctx),
		RequestID:  request.GetRequestID(ctx),
		Details:    map[string]any{"limit": result.Limit, "retry_after": result.RetryAfter},
	})
	if err != nil {
		m.logger.WarnContext(ctx, "failed to publish audit event", "action", audit.EventRateLimitExceeded, "error", err)
	}
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result *models.Result) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, &models.ExceededResponse{
		Error:            "rate_limit_exceeded",
		ErrorDescription: "too many requests from this address, try again later",
		RetryAfter:       result.RetryAfter,
	})
}

// anonymizeIP keeps the network part only: /24 for IPv4, /48 for IPv6.
func anonymizeIP(raw string) string {
	ip := net.ParseIP(raw)
	if ip == nil {
		return "invalid"
	}
	if v4 := ip.To4(); v4 != nil {
		return v4.Mask(net.CIDRMask(24, 32)).String()
	}
	return ip.Mask(net.CIDRMask(48, 128)).String()
}
