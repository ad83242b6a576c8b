package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bossygit/digital-medical-certificate-system/internal/certificate/models"
	id "github.com/bossygit/digital-medical-certificate-system/pkg/domain"
	dErrors "github.com/bossygit/digital-medical-certificate-system/pkg/domain-errors"
	audit "github.com/bossygit/digital-medical-certificate-system/pkg/platform/audit"
	"github.com/bossygit/digital-medical-certificate-system/pkg/platform/sentinel"
)

// GetCertificate returns the full record to an authorised viewer. Doctors
// see only their own certificates; anything else is reported as not found
// so that identifiers of other doctors' certificates cannot be probed.
func (s *Service) GetCertificate(ctx context.Context, viewerID id.UserID, role id.Role, certID id.CertificateID) (*models.Certificate, error) {
	if viewerID.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	cert, err := s.certificates.FindByID(ctx, certID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "certificate not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load certificate")
	}

	switch {
	case role.IsAdministrative():
	case role == id.RoleDoctor && cert.IsOwnedBy(viewerID):
	default:
		return nil, dErrors.New(dErrors.CodeNotFound, "certificate not found")
	}

	s.logAudit(ctx, audit.Event{
		UserID:     viewerID,
		Action:     string(audit.EventCertificateViewed),
		TargetType: targetTypeCertificate,
		TargetID:   cert.ID.String(),
	})
	return cert, nil
}

// ListMine returns the caller's own certificates, newest first.
func (s *Service) ListMine(ctx context.Context, issuerID id.UserID, page models.Page) (*models.ListResult, error) {
	if issuerID.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	certs, total, err := s.certificates.ListByIssuer(ctx, issuerID, page)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list certificates")
	}
	return toListResult(certs, total, page), nil
}

// ListAll returns certificates across all doctors for administrative views.
func (s *Service) ListAll(ctx context.Context, filter models.Filter, page models.Page) (*models.ListResult, error) {
	certs, total, err := s.certificates.List(ctx, filter, page)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list certificates")
	}
	return toListResult(certs, total, page), nil
}

// Stats counts certificates by status. Every status is present, even at zero.
func (s *Service) Stats(ctx context.Context) (models.Stats, error) {
	counts, err := s.certificates.CountByStatus(ctx)
	if err != nil {
		return models.Stats{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count certificates")
	}
	stats := models.NewStats()
	for status, n := range counts {
		if !status.IsValid() {
			continue
		}
		stats.ByStatus[status] = n
		stats.Total += n
	}
	return stats, nil
}

// IssuerCounts returns how many certificates an issuer has produced in total
// and since the start of the current UTC year. Both counts run concurrently.
func (s *Service) IssuerCounts(ctx context.Context, issuerID id.UserID, now time.Time) (models.IssuerCounts, error) {
	yearStart := time.Date(now.UTC().Year(), time.January, 1, 0, 0, 0, 0, time.UTC)

	var counts models.IssuerCounts
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.certificates.CountByIssuer(gctx, issuerID, time.Time{})
		counts.Total = n
		return err
	})
	g.Go(func() error {
		n, err := s.certificates.CountByIssuer(gctx, issuerID, yearStart)
		counts.ThisYear = n
		return err
	})
	if err := g.Wait(); err != nil {
		return models.IssuerCounts{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count certificates")
	}
	return counts, nil
}

// QRCode renders the scannable payload of an existing certificate as a PNG.
func (s *Service) QRCode(ctx context.Context, rawPublicID string) ([]byte, error) {
	publicID, err := id.ParsePublicID(rawPublicID)
	if err != nil {
		return nil, err
	}
	if _, err := s.certificates.FindByPublicID(ctx, publicID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "certificate not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load certificate")
	}
	return s.qr.PNG(publicID)
}

func toListResult(certs []*models.Certificate, total int, page models.Page) *models.ListResult {
	items := make([]models.Summary, 0, len(certs))
	for _, c := range certs {
		items = append(items, models.NewSummary(c))
	}
	return &models.ListResult{Items: items, Total: total, Page: page}
}
