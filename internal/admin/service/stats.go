package service

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/bossygit/digital-medical-certificate-system/internal/admin/models"
	certmodels "github.com/bossygit/digital-medical-certificate-system/internal/certificate/models"
	dErrors "github.com/bossygit/digital-medical-certificate-system/pkg/domain-errors"
	audit "github.com/bossygit/digital-medical-certificate-system/pkg/platform/audit"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

func (s *Service) CertificateStats(ctx context.Context) (certmodels.Stats, error) {
	return s.certificates.Stats(ctx)
}

// Dashboard gathers certificate and doctor counts concurrently.
func (s *Service) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	var dash models.Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := s.certificates.Stats(gctx)
		if err != nil {
			return err
		}
		dash.Certificates = stats
		return nil
	})
	g.Go(func() error {
		counts, err := s.doctors.Count(gctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count doctors")
		}
		dash.Doctors = counts
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &dash, nil
}

// ListCertificates lists every doctor's certificates, optionally narrowed
// to one status.
func (s *Service) ListCertificates(ctx context.Context, status string, page certmodels.Page) (*certmodels.ListResult, error) {
	var filter certmodels.Filter
	if status = strings.TrimSpace(status); status != "" {
		st, err := certmodels.ParseStatus(status)
		if err != nil {
			return nil, err
		}
		filter.Statuses = []certmodels.Status{st}
	}
	return s.certificates.ListAll(ctx, filter, page)
}

// RecentAudit returns the newest audit entries. It needs an audit reader.
func (s *Service) RecentAudit(ctx context.Context, limit int) ([]audit.Event, error) {
	if s.auditReader == nil {
		return nil, dErrors.New(dErrors.CodeNotImplemented, "audit listing is not available")
	}
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	limit = min(limit, maxAuditLimit)
	events, err := s.auditReader.List(ctx, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit events")
	}
	return events, nil
}
