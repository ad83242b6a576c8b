package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	authmodels "github.com/bossygit/digital-medical-certificate-system/internal/auth/models"
	certmodels "github.com/bossygit/digital-medical-certificate-system/internal/certificate/models"
	"github.com/bossygit/digital-medical-certificate-system/internal/doctor/models"
	id "github.com/bossygit/digital-medical-certificate-system/pkg/domain"
	dErrors "github.com/bossygit/digital-medical-certificate-system/pkg/domain-errors"
	audit "github.com/bossygit/digital-medical-certificate-system/pkg/platform/audit"
	"github.com/bossygit/digital-medical-certificate-system/pkg/platform/sentinel"
	"github.com/bossygit/digital-medical-certificate-system/pkg/platform/tx"
	"github.com/bossygit/digital-medical-certificate-system/pkg/requestcontext"
)

type ProfileReader interface {
	FindByID(ctx context.Context, doctorID id.UserID) (*models.Doctor, error)
}

// ProfileStore reads and writes doctor profiles.
type ProfileStore interface {
	ProfileReader
	Update(ctx context.Context, profile *models.Profile) error
}

// AccountStore writes the account half of a doctor.
type AccountStore interface {
	Update(ctx context.Context, user *authmodels.User) error
}

// Certificates is the slice of the certificate service a doctor's own
// pages need.
type Certificates interface {
	ListMine(ctx context.Context, issuerID id.UserID, page certmodels.Page) (*certmodels.ListResult, error)
	IssuerCounts(ctx context.Context, issuerID id.UserID, now time.Time) (certmodels.IssuerCounts, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service serves a doctor's own profile, history, and carnet.
type Service struct {
	profiles       ProfileStore
	accounts       AccountStore
	certificates   Certificates
	tx             tx.Runner
	logger         *slog.Logger
	auditPublisher AuditPublisher
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

func WithTxRunner(runner tx.Runner) Option {
	return func(s *Service) {
		s.tx = runner
	}
}

func New(profiles ProfileStore, accounts AccountStore, certificates Certificates, opts ...Option) (*Service, error) {
	if profiles == nil {
		return nil, errors.New("doctor profile store is required")
	}
	if accounts == nil {
		return nil, errors.New("account store is required")
	}
	if certificates == nil {
		return nil, errors.New("certificate reader is required")
	}
	s := &Service{
		profiles:     profiles,
		accounts:     accounts,
		certificates: certificates,
		tx:           tx.Noop{},
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) GetProfile(ctx context.Context, doctorID id.UserID) (*models.Doctor, error) {
	doctor, err := s.profiles.FindByID(ctx, doctorID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "doctor profile not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load doctor profile")
	}
	return doctor, nil
}

// UpdateProfile applies a doctor's own edits. Account and profile rows are
// written in one unit of work.
func (s *Service) UpdateProfile(ctx context.Context, doctorID id.UserID, patch models.ProfilePatch) (*models.Doctor, error) {
	patch.Normalize()
	if patch.IsEmpty() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "no fields to update")
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	var updated *models.Doctor
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		doctor, err := s.GetProfile(ctx, doctorID)
		if err != nil {
			return err
		}
		patch.Apply(doctor, requestcontext.Now(ctx).UTC())
		if err := s.accounts.Update(ctx, &doctor.Account); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update account")
		}
		if err := s.profiles.Update(ctx, &doctor.Profile); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update doctor profile")
		}
		updated = doctor
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, audit.Event{
		UserID:     doctorID,
		Action:     string(audit.EventDoctorProfileUpdated),
		TargetType: "doctor",
		TargetID:   doctorID.String(),
	})
	return updated, nil
}

// History is one page of a doctor's issued certificates.
type History struct {
	TotalItems   int
	TotalPages   int
	CurrentPage  int
	Certificates []certmodels.Summary
}

func (s *Service) CertificateHistory(ctx context.Context, doctorID id.UserID, page certmodels.Page) (*History, error) {
	list, err := s.certificates.ListMine(ctx, doctorID, page)
	if err != nil {
		return nil, err
	}
	return &History{
		TotalItems:   list.Total,
		TotalPages:   list.Page.TotalPages(list.Total),
		CurrentPage:  list.Page.Number,
		Certificates: list.Items,
	}, nil
}

// CarnetSummary counts certificates issued overall and in the current UTC year.
func (s *Service) CarnetSummary(ctx context.Context, doctorID id.UserID) (models.Carnet, error) {
	counts, err := s.certificates.IssuerCounts(ctx, doctorID, requestcontext.Now(ctx).UTC())
	if err != nil {
		return models.Carnet{}, err
	}
	return models.Carnet{TotalIssued: counts.Total, IssuedThisYear: counts.ThisYear}, nil
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
