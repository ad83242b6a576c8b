package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,IssuerDirectory,QREncoder,AuditPublisher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/bossygit/digital-medical-certificate-system/internal/certificate/models"
	"github.com/bossygit/digital-medical-certificate-system/internal/certificate/service/mocks"
	id "github.com/bossygit/digital-medical-certificate-system/pkg/domain"
	dErrors "github.com/bossygit/digital-medical-certificate-system/pkg/domain-errors"
	audit "github.com/bossygit/digital-medical-certificate-system/pkg/platform/audit"
	"github.com/bossygit/digital-medical-certificate-system/pkg/platform/sentinel"
	"github.com/bossygit/digital-medical-certificate-system/pkg/requestcontext"
)

// =============================================================================
// Certificate Service Test Suite
// =============================================================================
// Unit tests cover error translation and audit emission at the service
// boundary. End-to-end issuance and verification against a real store live in
// roundtrip_test.go.

type ServiceSuite struct {
	suite.Suite
	ctrl          *gomock.Controller
	mockStore     *mocks.MockStore
	mockIssuers   *mocks.MockIssuerDirectory
	mockQR        *mocks.MockQREncoder
	mockPublisher *mocks.MockAuditPublisher
	service       *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockStore = mocks.NewMockStore(s.ctrl)
	s.mockIssuers = mocks.NewMockIssuerDirectory(s.ctrl)
	s.mockQR = mocks.NewMockQREncoder(s.ctrl)
	s.mockPublisher = mocks.NewMockAuditPublisher(s.ctrl)

	svc, err := New(s.mockStore, s.mockIssuers, s.mockQR,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithAuditPublisher(s.mockPublisher),
	)
	s.Require().NoError(err)
	s.service = svc
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func fit(v bool) *bool { return &v }

func validCommand() models.IssueCommand {
	return models.IssueCommand{
		FirstName:       "Jean",
		LastName:        "Dupont",
		DateOfBirth:     "1990-05-01",
		Address:         "12 Avenue de la Paix, Brazzaville",
		MedicalFindings: "Vision 10/10, no contraindication",
		IsFit:           fit(true),
	}
}

func (s *ServiceSuite) TestNew() {
	s.Run("nil store is rejected", func() {
		_, err := New(nil, s.mockIssuers, s.mockQR)
		s.Require().Error(err)
	})
	s.Run("nil directory is rejected", func() {
		_, err := New(s.mockStore, nil, s.mockQR)
		s.Require().Error(err)
	})
	s.Run("nil encoder is rejected", func() {
		_, err := New(s.mockStore, s.mockIssuers, nil)
		s.Require().Error(err)
	})
}

func (s *ServiceSuite) TestIssueCertificate() {
	doctorID := id.UserID(7)
	now := time.Date(2025, 4, 15, 9, 30, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	s.Run("anonymous caller is unauthorized", func() {
		s.mockPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		_, err := s.service.IssueCertificate(ctx, 0, validCommand())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("missing fields are reported together and nothing is stored", func() {
		s.mockPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		cmd := models.IssueCommand{FirstName: "  ", DateOfBirth: "1990-13-45"}
		_, err := s.service.IssueCertificate(ctx, doctorID, cmd)

		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		fields := dErrors.Fields(err)
		s.Contains(fields, "applicant_first_name")
		s.Contains(fields, "applicant_last_name")
		s.Contains(fields, "applicant_address")
		s.Contains(fields, "medical_findings")
		s.Contains(fields, "is_fit")
		s.Equal("must be a valid date (YYYY-MM-DD)", fields["applicant_dob"])
	})

	s.Run("malformed expiry date is a validation error", func() {
		s.mockPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		cmd := validCommand()
		cmd.ExpiryDate = "next year"
		_, err := s.service.IssueCertificate(ctx, doctorID, cmd)
		s.Require().Error(err)
		s.Contains(dErrors.Fields(err), "expiry_date")
	})

	s.Run("a name carrying the signature delimiter is rejected before signing", func() {
		s.mockPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		cmd := validCommand()
		cmd.FirstName = "Jean|Marc"
		_, err := s.service.IssueCertificate(ctx, doctorID, cmd)
		s.Require().True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal(map[string]string{"applicant_first_name": "must not contain |"}, dErrors.Fields(err))
	})

	s.Run("an over-long name is a field error, not a store failure", func() {
		s.mockPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		cmd := validCommand()
		cmd.LastName = strings.Repeat("N", models.MaxApplicantNameLength+1)
		_, err := s.service.IssueCertificate(ctx, doctorID, cmd)
		s.Require().True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Contains(dErrors.Fields(err), "applicant_last_name")
	})

	s.Run("account without doctor profile fails before persistence", func() {
		s.mockIssuers.EXPECT().ResolveIssuer(gomock.Any(), doctorID).Return(id.UserID(0), sentinel.ErrNotFound)
		s.mockPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, e audit.Event) error {
				s.Equal(string(audit.EventCertificateIssueFailed), e.Action)
				s.Equal(string(dErrors.CodeIssuerResolution), e.Details["reason"])
				return nil
			})

		_, err := s.service.IssueCertificate(ctx, doctorID, validCommand())
		s.Require().ErrorIs(err, dErrors.New(dErrors.CodeIssuerResolution, "authenticated account is not an active doctor"))
	})

	s.Run("directory failure is internal", func() {
		s.mockIssuers.EXPECT().ResolveIssuer(gomock.Any(), doctorID).Return(id.UserID(0), assert.AnError)
		s.mockPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		_, err := s.service.IssueCertificate(ctx, doctorID, validCommand())
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("duplicate public identifier maps to conflict", func() {
		s.mockIssuers.EXPECT().ResolveIssuer(gomock.Any(), doctorID).Return(doctorID, nil)
		s.mockStore.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrConflict)
		s.mockPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		_, err := s.service.IssueCertificate(ctx, doctorID, validCommand())
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("success signs, stores, and returns the scannable payload", func() {
		s.mockIssuers.EXPECT().ResolveIssuer(gomock.Any(), doctorID).Return(doctorID, nil)
		s.mockStore.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, c *models.Certificate) (*models.Certificate, error) {
				s.Equal(doctorID, c.IssuerID)
				s.Equal(models.StatusIssued, c.Status)
				s.Equal(now, c.IssueDate)
				s.True(c.HasValidSignature())
				stored := *c
				stored.ID = 42
				return &stored, nil
			})
		s.mockQR.EXPECT().Payload(gomock.Any()).DoAndReturn(func(p id.PublicID) string {
			return "https://verify.example/api/verify/" + p.String()
		})
		s.mockPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, e audit.Event) error {
				s.Equal(string(audit.EventCertificateIssued), e.Action)
				s.Equal("42", e.TargetID)
				return nil
			})

		result, err := s.service.IssueCertificate(ctx, doctorID, validCommand())
		s.Require().NoError(err)
		s.Equal(id.CertificateID(42), result.ID)
		s.Equal("Jean Dupont", result.ApplicantDisplayName)
		s.True(result.IsFit)
		s.Equal("https://verify.example/api/verify/"+result.PublicID.String(), result.ScannablePayload)
	})

	s.Run("audit failure does not fail issuance", func() {
		s.mockIssuers.EXPECT().ResolveIssuer(gomock.Any(), doctorID).Return(doctorID, nil)
		s.mockStore.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, c *models.Certificate) (*models.Certificate, error) {
				stored := *c
				stored.ID = 43
				return &stored, nil
			})
		s.mockQR.EXPECT().Payload(gomock.Any()).Return("https://verify.example/x")
		s.mockPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(assert.AnError)

		_, err := s.service.IssueCertificate(ctx, doctorID, validCommand())
		s.Require().NoError(err)
	})

	s.Run("markup is stripped before signing", func() {
		s.mockIssuers.EXPECT().ResolveIssuer(gomock.Any(), doctorID).Return(doctorID, nil)
		s.mockStore.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, c *models.Certificate) (*models.Certificate, error) {
				s.Equal("Jean", c.ApplicantFirstName)
				s.True(c.HasValidSignature())
				stored := *c
				stored.ID = 44
				return &stored, nil
			})
		s.mockQR.EXPECT().Payload(gomock.Any()).Return("https://verify.example/x")
		s.mockPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		cmd := validCommand()
		cmd.FirstName = "<b>Jean</b>"
		_, err := s.service.IssueCertificate(ctx, doctorID, cmd)
		s.Require().NoError(err)
	})
}

func (s *ServiceSuite) TestVerifyCertificate() {
	ctx := context.Background()

	s.Run("malformed identifier is a validation error without store access", func() {
		s.mockPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, e audit.Event) error {
				s.Equal(string(audit.EventCertificateVerificationFailed), e.Action)
				s.Equal("invalid_identifier", e.Details["reason"])
				s.Empty(e.TargetID)
				s.NotContains(fmt.Sprint(e.Details), "<script>")
				return nil
			})

		_, err := s.service.VerifyCertificate(ctx, "<script>alert(1)</script>")
		s.Require().ErrorIs(err, dErrors.New(dErrors.CodeValidation, "invalid certificate identifier format"))
	})

	s.Run("unknown identifier is not found", func() {
		publicID := id.NewPublicID()
		s.mockStore.EXPECT().FindByPublicID(gomock.Any(), publicID).Return(nil, sentinel.ErrNotFound)
		s.mockPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		_, err := s.service.VerifyCertificate(ctx, publicID.String())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("store failure is internal", func() {
		publicID := id.NewPublicID()
		s.mockStore.EXPECT().FindByPublicID(gomock.Any(), publicID).Return(nil, assert.AnError)

		_, err := s.service.VerifyCertificate(ctx, publicID.String())
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("directory failure falls back to N/A", func() {
		cert := issuedCertificate(s.T(), 9)
		s.mockStore.EXPECT().FindByPublicID(gomock.Any(), cert.PublicID).Return(cert, nil)
		s.mockIssuers.EXPECT().DisplayName(gomock.Any(), cert.IssuerID).Return("", assert.AnError)
		s.mockPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		result, err := s.service.VerifyCertificate(ctx, cert.PublicID.String())
		s.Require().NoError(err)
		s.True(result.IsValid)
		s.Equal("N/A", result.Certificate.DoctorName)
	})

	s.Run("tampered record is reported and audited as a failure", func() {
		cert := issuedCertificate(s.T(), 9)
		cert.IsFit = false
		s.mockStore.EXPECT().FindByPublicID(gomock.Any(), cert.PublicID).Return(cert, nil)
		s.mockPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, e audit.Event) error {
				s.Equal(string(audit.EventCertificateVerificationFailed), e.Action)
				s.Equal("tampered", e.Details["reason"])
				s.Equal("mismatch", e.Details["digest"])
				return nil
			})

		result, err := s.service.VerifyCertificate(ctx, cert.PublicID.String())
		s.Require().NoError(err)
		s.False(result.IsValid)
		s.Equal(models.ReasonTampered, result.Reason)
		s.Nil(result.Certificate)
	})

	s.Run("a corrupted digest column is told apart from edited fields", func() {
		cert := issuedCertificate(s.T(), 9)
		cert.Signature = "not-a-digest"
		s.mockStore.EXPECT().FindByPublicID(gomock.Any(), cert.PublicID).Return(cert, nil)
		s.mockPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, e audit.Event) error {
				s.Equal("malformed", e.Details["digest"])
				return nil
			})

		result, err := s.service.VerifyCertificate(ctx, cert.PublicID.String())
		s.Require().NoError(err)
		s.False(result.IsValid)
	})
}

func (s *ServiceSuite) TestGetCertificate() {
	ctx := context.Background()
	owner := id.UserID(9)
	cert := issuedCertificate(s.T(), owner)

	s.Run("owner may view", func() {
		s.mockStore.EXPECT().FindByID(gomock.Any(), cert.ID).Return(cert, nil)
		s.mockPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		got, err := s.service.GetCertificate(ctx, owner, id.RoleDoctor, cert.ID)
		s.Require().NoError(err)
		s.Equal(cert.PublicID, got.PublicID)
	})

	s.Run("another doctor gets not found", func() {
		s.mockStore.EXPECT().FindByID(gomock.Any(), cert.ID).Return(cert, nil)

		_, err := s.service.GetCertificate(ctx, id.UserID(10), id.RoleDoctor, cert.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("staff may view any certificate", func() {
		s.mockStore.EXPECT().FindByID(gomock.Any(), cert.ID).Return(cert, nil)
		s.mockPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		_, err := s.service.GetCertificate(ctx, id.UserID(100), id.RoleStaff, cert.ID)
		s.Require().NoError(err)
	})

	s.Run("missing certificate is not found", func() {
		s.mockStore.EXPECT().FindByID(gomock.Any(), id.CertificateID(404)).Return(nil, sentinel.ErrNotFound)

		_, err := s.service.GetCertificate(ctx, owner, id.RoleDoctor, 404)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestStats() {
	s.Run("every status is present even when the store omits it", func() {
		s.mockStore.EXPECT().CountByStatus(gomock.Any()).Return(map[models.Status]int{
			models.StatusIssued:   3,
			models.StatusVerified: 1,
		}, nil)

		stats, err := s.service.Stats(context.Background())
		s.Require().NoError(err)
		s.Equal(4, stats.Total)
		s.Len(stats.ByStatus, len(models.AllStatuses))
		s.Equal(0, stats.ByStatus[models.StatusRevoked])
		s.Equal(0, stats.ByStatus[models.StatusExpired])
	})

	s.Run("store failure is internal", func() {
		s.mockStore.EXPECT().CountByStatus(gomock.Any()).Return(nil, assert.AnError)
		_, err := s.service.Stats(context.Background())
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestIssuerCounts() {
	issuer := id.UserID(9)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	yearStart := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	s.mockStore.EXPECT().CountByIssuer(gomock.Any(), issuer, time.Time{}).Return(12, nil)
	s.mockStore.EXPECT().CountByIssuer(gomock.Any(), issuer, yearStart).Return(5, nil)

	counts, err := s.service.IssuerCounts(context.Background(), issuer, now)
	s.Require().NoError(err)
	s.Equal(models.IssuerCounts{Total: 12, ThisYear: 5}, counts)
}

func issuedCertificate(t *testing.T, issuer id.UserID) *models.Certificate {
	t.Helper()
	cert, err := models.NewCertificate(id.NewPublicID(), issuer, models.Applicant{
		FirstName:       "Awa",
		LastName:        "Mabiala",
		DateOfBirth:     time.Date(1985, 2, 14, 0, 0, 0, 0, time.UTC),
		Address:         "Pointe-Noire",
		MedicalFindings: "Fit for category B",
		IsFit:           true,
	}, time.Now().UTC())
	if err != nil {
		t.Fatalf("build certificate: %v", err)
	}
	cert.ID = 77
	return cert
}
