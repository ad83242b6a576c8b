package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	authmodels "github.com/bossygit/digital-medical-certificate-system/internal/auth/models"
	certmodels "github.com/bossygit/digital-medical-certificate-system/internal/certificate/models"
	doctormodels "github.com/bossygit/digital-medical-certificate-system/internal/doctor/models"
	id "github.com/bossygit/digital-medical-certificate-system/pkg/domain"
	audit "github.com/bossygit/digital-medical-certificate-system/pkg/platform/audit"
	"github.com/bossygit/digital-medical-certificate-system/pkg/platform/tx"
	"github.com/bossygit/digital-medical-certificate-system/pkg/requestcontext"
)

const defaultTempPasswordTTL = 48 * time.Hour

type AccountStore interface {
	Create(ctx context.Context, user *authmodels.User) (*authmodels.User, error)
	FindByEmail(ctx context.Context, email string) (*authmodels.User, error)
	Update(ctx context.Context, user *authmodels.User) error
	Delete(ctx context.Context, userID id.UserID) error
}

type DoctorStore interface {
	Create(ctx context.Context, profile *doctormodels.Profile) error
	FindByID(ctx context.Context, doctorID id.UserID) (*doctormodels.Doctor, error)
	FindByAgrement(ctx context.Context, agrementNumber string) (*doctormodels.Doctor, error)
	Update(ctx context.Context, profile *doctormodels.Profile) error
	List(ctx context.Context, page certmodels.Page) ([]*doctormodels.Doctor, int, error)
	Count(ctx context.Context) (doctormodels.Counts, error)
}

// Certificates is the read side of the certificate service.
type Certificates interface {
	Stats(ctx context.Context) (certmodels.Stats, error)
	ListAll(ctx context.Context, filter certmodels.Filter, page certmodels.Page) (*certmodels.ListResult, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// AuditReader lists recent audit entries for the administrator's trail.
type AuditReader interface {
	List(ctx context.Context, limit int) ([]audit.Event, error)
}

// Service backs the licensing authority's administration pages.
type Service struct {
	accounts        AccountStore
	doctors         DoctorStore
	certificates    Certificates
	tx              tx.Runner
	tempPasswordTTL time.Duration
	logger          *slog.Logger
	auditPublisher  AuditPublisher
	auditReader     AuditReader
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

func WithAuditReader(reader AuditReader) Option {
	return func(s *Service) {
		s.auditReader = reader
	}
}

func WithTxRunner(runner tx.Runner) Option {
	return func(s *Service) {
		s.tx = runner
	}
}

// WithTempPasswordTTL sets how long an onboarding password stays valid.
func WithTempPasswordTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tempPasswordTTL = ttl
		}
	}
}

func New(accounts AccountStore, doctors DoctorStore, certificates Certificates, opts ...Option) (*Service, error) {
	if accounts == nil {
		return nil, errors.New("account store is required")
	}
	if doctors == nil {
		return nil, errors.New("doctor store is required")
	}
	if certificates == nil {
		return nil, errors.New("certificate reader is required")
	}
	s := &Service{
		accounts:        accounts,
		doctors:         doctors,
		certificates:    certificates,
		tx:              tx.Noop{},
		tempPasswordTTL: defaultTempPasswordTTL,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) logAudit(ctx context.Context, event audit.Event) {
	requestID := requestcontext.RequestID(ctx)
	event.UserID = requestcontext.UserID(ctx)
	event.RequestID = requestID
	event.IP = requestcontext.ClientIP(ctx)
	event.UserAgent = requestcontext.UserAgent(ctx)
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
