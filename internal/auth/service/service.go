package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/bossygit/digital-medical-certificate-system/internal/auth/metrics"
	"github.com/bossygit/digital-medical-certificate-system/internal/auth/models"
	jwttoken "github.com/bossygit/digital-medical-certificate-system/internal/jwt_token"
	audit "github.com/bossygit/digital-medical-certificate-system/pkg/platform/audit"
	"github.com/bossygit/digital-medical-certificate-system/pkg/requestcontext"
)

const defaultTokenTTL = 24 * time.Hour

type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type TokenGenerator interface {
	GenerateAccessToken(subject jwttoken.Subject, expiresIn time.Duration) (jwttoken.IssuedToken, error)
}

// TokenRevocationList remembers revoked access tokens until they would have
// expired anyway.
type TokenRevocationList interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service authenticates accounts and manages access token lifetime.
type Service struct {
	users          UserStore
	tokens         TokenGenerator
	trl            TokenRevocationList
	tokenTTL       time.Duration
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
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

// WithTokenTTL sets the access token lifetime. Defaults to 24h.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

func New(users UserStore, tokens TokenGenerator, trl TokenRevocationList, opts ...Option) (*Service, error) {
	if users == nil {
		return nil, errors.New("user store is required")
	}
	if tokens == nil {
		return nil, errors.New("token generator is required")
	}
	if trl == nil {
		return nil, errors.New("token revocation list is required")
	}
	s := &Service{
		users:    users,
		tokens:   tokens,
		trl:      trl,
		tokenTTL: defaultTokenTTL,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) logAudit(ctx context.Context, event audit.Event) {
	requestID := requestcontext.RequestID(ctx)
	event.RequestID = requestID
	event.IP = requestcontext.ClientIP(ctx)
	event.UserAgent = requestcontext.UserAgent(ctx)
	s.logger.InfoContext(ctx, event.Action,
		"event", event.Action,
		"log_type", "audit",
		"request_id", requestID,
		"user_id", event.UserID,
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

func (s *Service) recordLogin(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementLogin(outcome)
	}
}
