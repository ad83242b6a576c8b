package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/bossygit/digital-medical-certificate-system/internal/certificate/models"
	id "github.com/bossygit/digital-medical-certificate-system/pkg/domain"
	dErrors "github.com/bossygit/digital-medical-certificate-system/pkg/domain-errors"
	audit "github.com/bossygit/digital-medical-certificate-system/pkg/platform/audit"
	"github.com/bossygit/digital-medical-certificate-system/pkg/platform/sentinel"
	"github.com/bossygit/digital-medical-certificate-system/pkg/requestcontext"
)

const targetTypeCertificate = "certificate"

// IssueCertificate creates, signs, and stores a certificate on behalf of the
// authenticated account. Nothing is persisted unless validation and issuer
// resolution both succeed.
func (s *Service) IssueCertificate(ctx context.Context, accountID id.UserID, cmd models.IssueCommand) (*models.IssueResult, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "certificate.Issue")
	defer span.End()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveIssue(start)
		}
	}()

	result, err := s.issue(ctx, accountID, cmd)
	if err != nil {
		code := dErrors.GetCode(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(code))
		if s.metrics != nil {
			s.metrics.IncrementIssueFailure(string(code))
		}
		s.logAudit(ctx, audit.Event{
			UserID:     accountID,
			Action:     string(audit.EventCertificateIssueFailed),
			TargetType: targetTypeCertificate,
			Details:    map[string]any{"reason": string(code)},
		})
		return nil, err
	}

	span.SetAttributes(attribute.String("certificate.public_id", result.PublicID.String()))
	if s.metrics != nil {
		s.metrics.IncrementIssued()
	}
	s.logAudit(ctx, audit.Event{
		UserID:     accountID,
		Action:     string(audit.EventCertificateIssued),
		TargetType: targetTypeCertificate,
		TargetID:   result.ID.String(),
		Details: map[string]any{
			"public_id": result.PublicID.String(),
			"applicant": result.ApplicantDisplayName,
		},
	})
	return result, nil
}

func (s *Service) issue(ctx context.Context, accountID id.UserID, cmd models.IssueCommand) (*models.IssueResult, error) {
	if accountID.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	cmd.Normalize()
	applicant, err := cmd.Applicant()
	if err != nil {
		return nil, err
	}

	issuerID, err := s.issuers.ResolveIssuer(ctx, accountID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeIssuerResolution, "authenticated account is not an active doctor")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve issuer")
	}

	now := requestcontext.Now(ctx).UTC()
	cert, err := models.NewCertificate(id.NewPublicID(), issuerID, applicant, now)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, dErrors.Message(err))
		}
		return nil, err
	}

	var stored *models.Certificate
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		created, err := s.certificates.Create(ctx, cert)
		if err != nil {
			return err
		}
		stored = created
		return nil
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "certificate identifier already in use")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store certificate")
	}

	return &models.IssueResult{
		ID:                   stored.ID,
		PublicID:             stored.PublicID,
		ScannablePayload:     s.qr.Payload(stored.PublicID),
		Status:               stored.Status,
		IssueDate:            stored.IssueDate,
		IsFit:                stored.IsFit,
		ApplicantDisplayName: stored.ApplicantDisplayName(),
	}, nil
}
