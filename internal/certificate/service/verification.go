package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/bossygit/digital-medical-certificate-system/internal/certificate/models"
	"github.com/bossygit/digital-medical-certificate-system/internal/certificate/signature"
	id "github.com/bossygit/digital-medical-certificate-system/pkg/domain"
	dErrors "github.com/bossygit/digital-medical-certificate-system/pkg/domain-errors"
	audit "github.com/bossygit/digital-medical-certificate-system/pkg/platform/audit"
	"github.com/bossygit/digital-medical-certificate-system/pkg/platform/sentinel"
)

const (
	unknownDoctorName       = "N/A"
	reasonInvalidIdentifier = "invalid_identifier"
)

// VerifyCertificate checks the stored record behind a public identifier
// against its digest. A digest mismatch is a normal outcome, not an error.
// Verification never changes the record.
func (s *Service) VerifyCertificate(ctx context.Context, rawPublicID string) (*models.VerificationResult, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "certificate.Verify")
	defer span.End()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveVerification(start)
		}
	}()

	publicID, err := id.ParsePublicID(rawPublicID)
	if err != nil {
		s.recordVerification("invalid")
		// The raw input is attacker-controlled and stays out of the trail.
		s.logAudit(ctx, audit.Event{
			Action:     string(audit.EventCertificateVerificationFailed),
			TargetType: targetTypeCertificate,
			Details:    map[string]any{"reason": reasonInvalidIdentifier},
		})
		return nil, err
	}
	span.SetAttributes(attribute.String("certificate.public_id", publicID.String()))

	cert, err := s.certificates.FindByPublicID(ctx, publicID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.recordVerification(string(models.ReasonNotFound))
			s.logAudit(ctx, audit.Event{
				Action:     string(audit.EventCertificateVerificationFailed),
				TargetType: targetTypeCertificate,
				TargetID:   publicID.String(),
				Details:    map[string]any{"reason": string(models.ReasonNotFound)},
			})
			return nil, dErrors.New(dErrors.CodeNotFound, "certificate not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load certificate")
	}

	if !cert.HasValidSignature() {
		// A digest that is not even hex of the right length points at a
		// damaged column rather than edited applicant fields.
		digest := "mismatch"
		if !signature.IsWellFormed(cert.Signature) {
			digest = "malformed"
		}
		span.SetAttributes(attribute.Bool("certificate.tampered", true))
		s.recordVerification(string(models.ReasonTampered))
		s.logger.WarnContext(ctx, "certificate signature "+digest,
			"public_id", publicID.String(),
			"certificate_id", cert.ID,
		)
		s.logAudit(ctx, audit.Event{
			Action:     string(audit.EventCertificateVerificationFailed),
			TargetType: targetTypeCertificate,
			TargetID:   cert.ID.String(),
			Details: map[string]any{
				"reason":    string(models.ReasonTampered),
				"digest":    digest,
				"public_id": publicID.String(),
			},
		})
		return &models.VerificationResult{IsValid: false, Reason: models.ReasonTampered}, nil
	}

	doctorName, err := s.issuers.DisplayName(ctx, cert.IssuerID)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to resolve doctor display name",
			"doctor_id", cert.IssuerID,
			"error", err,
		)
		doctorName = unknownDoctorName
	}

	s.recordVerification("valid")
	s.logAudit(ctx, audit.Event{
		Action:     string(audit.EventCertificateVerified),
		TargetType: targetTypeCertificate,
		TargetID:   cert.ID.String(),
		Details:    map[string]any{"public_id": publicID.String()},
	})
	return &models.VerificationResult{
		IsValid:     true,
		Certificate: models.NewRedactedView(cert, doctorName),
	}, nil
}

func (s *Service) recordVerification(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementVerification(outcome)
	}
}
