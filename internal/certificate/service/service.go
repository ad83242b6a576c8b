package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/bossygit/digital-medical-certificate-system/internal/certificate/metrics"
	"github.com/bossygit/digital-medical-certificate-system/internal/certificate/models"
	id "github.com/bossygit/digital-medical-certificate-system/pkg/domain"
	audit "github.com/bossygit/digital-medical-certificate-system/pkg/platform/audit"
	"github.com/bossygit/digital-medical-certificate-system/pkg/platform/tx"
	"github.com/bossygit/digital-medical-certificate-system/pkg/requestcontext"
)

// Store persists certificates. Certificates are immutable once written.
type Store interface {
	Create(ctx context.Context, cert *models.Certificate) (*models.Certificate, error)
	FindByPublicID(ctx context.Context, publicID id.PublicID) (*models.Certificate, error)
	FindByID(ctx context.Context, certID id.CertificateID) (*models.Certificate, error)
	ListByIssuer(ctx context.Context, issuerID id.UserID, page models.Page) ([]*models.Certificate, int, error)
	List(ctx context.Context, filter models.Filter, page models.Page) ([]*models.Certificate, int, error)
	CountByStatus(ctx context.Context) (map[models.Status]int, error)
	CountByIssuer(ctx context.Context, issuerID id.UserID, since time.Time) (int, error)
}

// IssuerDirectory answers who may issue and how an issuer is displayed.
// ResolveIssuer returns sentinel.ErrNotFound when the account has no active
// doctor profile. DisplayName returns "N/A" for unknown issuers.
type IssuerDirectory interface {
	ResolveIssuer(ctx context.Context, accountID id.UserID) (id.UserID, error)
	DisplayName(ctx context.Context, issuerID id.UserID) (string, error)
}

type QREncoder interface {
	Payload(publicID id.PublicID) string
	PNG(publicID id.PublicID) ([]byte, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service issues, verifies, and reads certificates.
type Service struct {
	certificates   Store
	issuers        IssuerDirectory
	qr             QREncoder
	tx             tx.Runner
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTxRunner sets the unit of work used for writes. Defaults to tx.Noop.
func WithTxRunner(runner tx.Runner) Option {
	return func(s *Service) {
		s.tx = runner
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// New constructs a Service. Store, directory, and encoder are required.
func New(certificates Store, issuers IssuerDirectory, qr QREncoder, opts ...Option) (*Service, error) {
	if certificates == nil {
		return nil, errors.New("certificate store is required")
	}
	if issuers == nil {
		return nil, errors.New("issuer directory is required")
	}
	if qr == nil {
		return nil, errors.New("QR encoder is required")
	}
	s := &Service{
		certificates: certificates,
		issuers:      issuers,
		qr:           qr,
		tx:           tx.Noop{},
		logger:       slog.Default(),
		tracer:       otel.Tracer("medcert/certificate"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// logAudit writes the audit line and publishes the event. Publication is
// best-effort: failures are logged and never reach the caller.
func (s *Service) logAudit(ctx context.Context, event audit.Event) {
	requestID := requestcontext.RequestID(ctx)
	event.RequestID = requestID
	if event.IP == "" {
		event.IP = requestcontext.ClientIP(ctx)
	}
	if event.UserAgent == "" {
		event.UserAgent = requestcontext.UserAgent(ctx)
	}
	s.logger.InfoContext(ctx, event.Action,
		"event", event.Action,
		"log_type", "audit",
		"request_id", requestID,
		"user_id", event.UserID,
		"target_id", event.TargetID,
	)
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish audit event",
			"request_id", requestID,
			"action", event.Action,
			"error", err,
		)
	}
}
