package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks AccountStore,DoctorStore,Certificates,AuditPublisher,AuditReader

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/bossygit/digital-medical-certificate-system/internal/admin/models"
	"github.com/bossygit/digital-medical-certificate-system/internal/admin/service/mocks"
	authmodels "github.com/bossygit/digital-medical-certificate-system/internal/auth/models"
	certmodels "github.com/bossygit/digital-medical-certificate-system/internal/certificate/models"
	doctormodels "github.com/bossygit/digital-medical-certificate-system/internal/doctor/models"
	id "github.com/bossygit/digital-medical-certificate-system/pkg/domain"
	dErrors "github.com/bossygit/digital-medical-certificate-system/pkg/domain-errors"
	audit "github.com/bossygit/digital-medical-certificate-system/pkg/platform/audit"
	"github.com/bossygit/digital-medical-certificate-system/pkg/platform/sentinel"
	"github.com/bossygit/digital-medical-certificate-system/pkg/requestcontext"
	"github.com/bossygit/digital-medical-certificate-system/pkg/secrets"
)

type ServiceSuite struct {
	suite.Suite
	ctrl          *gomock.Controller
	mockAccounts  *mocks.MockAccountStore
	mockDoctors   *mocks.MockDoctorStore
	mockCerts     *mocks.MockCertificates
	mockPublisher *mocks.MockAuditPublisher
	mockReader    *mocks.MockAuditReader
	service       *Service
	now           time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockAccounts = mocks.NewMockAccountStore(s.ctrl)
	s.mockDoctors = mocks.NewMockDoctorStore(s.ctrl)
	s.mockCerts = mocks.NewMockCertificates(s.ctrl)
	s.mockPublisher = mocks.NewMockAuditPublisher(s.ctrl)
	s.mockReader = mocks.NewMockAuditReader(s.ctrl)
	s.now = time.Date(2025, 4, 15, 10, 0, 0, 0, time.UTC)

	svc, err := New(s.mockAccounts, s.mockDoctors, s.mockCerts,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithAuditPublisher(s.mockPublisher),
		WithAuditReader(s.mockReader),
		WithTempPasswordTTL(24*time.Hour),
	)
	s.Require().NoError(err)
	s.service = svc
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceSuite) ctx() context.Context {
	return requestcontext.WithTime(context.Background(), s.now)
}

func ptr(v string) *string { return &v }

func addCommand() models.AddDoctorCommand {
	return models.AddDoctorCommand{
		Email:          " Marie@Example.com ",
		FirstName:      "Marie",
		LastName:       "Nkounkou",
		AgrementNumber: "AGR-001",
		Specialty:      "General",
	}
}

func existingDoctor(doctorID id.UserID) *doctormodels.Doctor {
	return &doctormodels.Doctor{
		Account: authmodels.User{
			ID:        doctorID,
			Email:     "marie@example.com",
			Role:      id.RoleDoctor,
			FirstName: "Marie",
			LastName:  "Nkounkou",
			IsActive:  true,
		},
		Profile: doctormodels.Profile{DoctorID: doctorID, AgrementNumber: "AGR-001"},
	}
}

func (s *ServiceSuite) TestNew() {
	_, err := New(nil, s.mockDoctors, s.mockCerts)
	s.Error(err)
	_, err = New(s.mockAccounts, nil, s.mockCerts)
	s.Error(err)
	_, err = New(s.mockAccounts, s.mockDoctors, nil)
	s.Error(err)
}

func (s *ServiceSuite) TestAddDoctor() {
	s.Run("creates account and profile with a temporary password", func() {
		s.mockAccounts.EXPECT().FindByEmail(gomock.Any(), "marie@example.com").Return(nil, sentinel.ErrNotFound)
		s.mockDoctors.EXPECT().FindByAgrement(gomock.Any(), "AGR-001").Return(nil, sentinel.ErrNotFound)

		var accountHash string
		s.mockAccounts.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, u *authmodels.User) (*authmodels.User, error) {
				s.Equal(id.RoleDoctor, u.Role)
				s.True(u.IsActive)
				accountHash = u.PasswordHash
				created := *u
				created.ID = 12
				return &created, nil
			})
		s.mockDoctors.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, p *doctormodels.Profile) error {
				s.Equal(id.UserID(12), p.DoctorID)
				s.Equal(accountHash, p.TempPasswordHash)
				s.Require().NotNil(p.TempPasswordExpiry)
				s.Equal(s.now.Add(24*time.Hour), *p.TempPasswordExpiry)
				return nil
			})
		s.mockPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, e audit.Event) error {
				s.Equal(string(audit.EventAdminAddDoctor), e.Action)
				s.Equal("12", e.TargetID)
				for k := range e.Details {
					s.NotContains(k, "password")
				}
				return nil
			})

		res, err := s.service.AddDoctor(s.ctx(), addCommand())
		s.Require().NoError(err)
		s.Equal(id.UserID(12), res.DoctorID)
		s.Equal("marie@example.com", res.Email)
		s.NotEmpty(res.TemporaryPassword)
		s.NoError(secrets.Verify(res.TemporaryPassword, accountHash))
	})

	s.Run("missing fields are reported per field", func() {
		_, err := s.service.AddDoctor(s.ctx(), models.AddDoctorCommand{Email: "x@example.com"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		fields := dErrors.Fields(err)
		s.Contains(fields, "first_name")
		s.Contains(fields, "last_name")
		s.Contains(fields, "agrement_number")
	})

	s.Run("malformed email", func() {
		cmd := addCommand()
		cmd.Email = "not-an-address"
		_, err := s.service.AddDoctor(s.ctx(), cmd)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Contains(dErrors.Fields(err), "email")
	})

	s.Run("email already registered", func() {
		s.mockAccounts.EXPECT().FindByEmail(gomock.Any(), "marie@example.com").Return(&authmodels.User{ID: 3}, nil)
		_, err := s.service.AddDoctor(s.ctx(), addCommand())
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("agrement already registered", func() {
		s.mockAccounts.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrNotFound)
		s.mockDoctors.EXPECT().FindByAgrement(gomock.Any(), "AGR-001").Return(existingDoctor(4), nil)
		_, err := s.service.AddDoctor(s.ctx(), addCommand())
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("profile failure removes the account", func() {
		s.mockAccounts.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrNotFound)
		s.mockDoctors.EXPECT().FindByAgrement(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrNotFound)
		s.mockAccounts.EXPECT().Create(gomock.Any(), gomock.Any()).Return(&authmodels.User{ID: 13, Email: "marie@example.com"}, nil)
		s.mockDoctors.EXPECT().Create(gomock.Any(), gomock.Any()).Return(sentinel.ErrConflict)
		s.mockAccounts.EXPECT().Delete(gomock.Any(), id.UserID(13)).Return(nil)

		_, err := s.service.AddDoctor(s.ctx(), addCommand())
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *ServiceSuite) TestGetDoctor() {
	s.Run("not found", func() {
		s.mockDoctors.EXPECT().FindByID(gomock.Any(), id.UserID(9)).Return(nil, sentinel.ErrNotFound)
		_, err := s.service.GetDoctor(s.ctx(), 9)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("store failure is internal", func() {
		s.mockDoctors.EXPECT().FindByID(gomock.Any(), id.UserID(9)).Return(nil, errors.New("db down"))
		_, err := s.service.GetDoctor(s.ctx(), 9)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestUpdateDoctor() {
	s.Run("applies changes to account and profile", func() {
		s.mockDoctors.EXPECT().FindByID(gomock.Any(), id.UserID(5)).Return(existingDoctor(5), nil)
		s.mockAccounts.EXPECT().FindByEmail(gomock.Any(), "new@example.com").Return(nil, sentinel.ErrNotFound)
		s.mockDoctors.EXPECT().FindByAgrement(gomock.Any(), "AGR-777").Return(nil, sentinel.ErrNotFound)
		s.mockAccounts.EXPECT().Update(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, u *authmodels.User) error {
				s.Equal("new@example.com", u.Email)
				s.Equal("Jeanne", u.FirstName)
				return nil
			})
		s.mockDoctors.EXPECT().Update(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, p *doctormodels.Profile) error {
				s.Equal("AGR-777", p.AgrementNumber)
				return nil
			})
		s.mockPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		updated, err := s.service.UpdateDoctor(s.ctx(), 5, models.DoctorPatch{
			Email:          ptr("New@Example.com"),
			FirstName:      ptr("Jeanne"),
			AgrementNumber: ptr("AGR-777"),
		})
		s.Require().NoError(err)
		s.Equal("Dr Jeanne Nkounkou", updated.DisplayName())
	})

	s.Run("empty patch", func() {
		_, err := s.service.UpdateDoctor(s.ctx(), 5, models.DoctorPatch{})
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("email owned by someone else", func() {
		s.mockDoctors.EXPECT().FindByID(gomock.Any(), id.UserID(5)).Return(existingDoctor(5), nil)
		s.mockAccounts.EXPECT().FindByEmail(gomock.Any(), "taken@example.com").Return(&authmodels.User{ID: 6}, nil)
		_, err := s.service.UpdateDoctor(s.ctx(), 5, models.DoctorPatch{Email: ptr("taken@example.com")})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("keeping the same agrement is not a conflict", func() {
		s.mockDoctors.EXPECT().FindByID(gomock.Any(), id.UserID(5)).Return(existingDoctor(5), nil)
		s.mockDoctors.EXPECT().FindByAgrement(gomock.Any(), "AGR-001").Return(existingDoctor(5), nil)
		s.mockAccounts.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
		s.mockDoctors.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
		s.mockPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)
		_, err := s.service.UpdateDoctor(s.ctx(), 5, models.DoctorPatch{AgrementNumber: ptr("AGR-001")})
		s.NoError(err)
	})
}

func (s *ServiceSuite) TestSetDoctorStatus() {
	s.Run("suspend", func() {
		s.mockDoctors.EXPECT().FindByID(gomock.Any(), id.UserID(5)).Return(existingDoctor(5), nil)
		s.mockAccounts.EXPECT().Update(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, u *authmodels.User) error {
				s.False(u.IsActive)
				return nil
			})
		s.mockPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, e audit.Event) error {
				s.Equal(string(audit.EventAdminSuspendDoctor), e.Action)
				return nil
			})
		doctor, err := s.service.SetDoctorStatus(s.ctx(), 5, false)
		s.Require().NoError(err)
		s.False(doctor.Account.IsActive)
	})

	s.Run("audit failure does not fail the call", func() {
		s.mockDoctors.EXPECT().FindByID(gomock.Any(), id.UserID(5)).Return(existingDoctor(5), nil)
		s.mockAccounts.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
		s.mockPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("outbox full"))
		_, err := s.service.SetDoctorStatus(s.ctx(), 5, true)
		s.NoError(err)
	})
}

func (s *ServiceSuite) TestDashboard() {
	s.Run("combines certificate and doctor counts", func() {
		stats := certmodels.NewStats()
		stats.Total = 3
		stats.ByStatus[certmodels.StatusIssued] = 3
		s.mockCerts.EXPECT().Stats(gomock.Any()).Return(stats, nil)
		s.mockDoctors.EXPECT().Count(gomock.Any()).Return(doctormodels.Counts{Total: 2, Active: 1}, nil)

		dash, err := s.service.Dashboard(s.ctx())
		s.Require().NoError(err)
		s.Equal(3, dash.Certificates.Total)
		s.Equal(1, dash.Doctors.Active)
	})

	s.Run("any failure fails the dashboard", func() {
		s.mockCerts.EXPECT().Stats(gomock.Any()).Return(certmodels.NewStats(), nil)
		s.mockDoctors.EXPECT().Count(gomock.Any()).Return(doctormodels.Counts{}, errors.New("db down"))
		_, err := s.service.Dashboard(s.ctx())
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestListCertificates() {
	s.Run("status filter", func() {
		page := certmodels.NewPage(1, 20)
		s.mockCerts.EXPECT().ListAll(gomock.Any(), certmodels.Filter{Statuses: []certmodels.Status{certmodels.StatusRevoked}}, page).
			Return(&certmodels.ListResult{Page: page}, nil)
		_, err := s.service.ListCertificates(s.ctx(), "revoked", page)
		s.NoError(err)
	})

	s.Run("unknown status", func() {
		_, err := s.service.ListCertificates(s.ctx(), "lost", certmodels.NewPage(1, 20))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *ServiceSuite) TestRecentAudit() {
	s.Run("defaults and caps the limit", func() {
		s.mockReader.EXPECT().List(gomock.Any(), defaultAuditLimit).Return(nil, nil)
		_, err := s.service.RecentAudit(s.ctx(), 0)
		s.NoError(err)

		s.mockReader.EXPECT().List(gomock.Any(), maxAuditLimit).Return([]audit.Event{{Action: "logout"}}, nil)
		events, err := s.service.RecentAudit(s.ctx(), 10_000)
		s.NoError(err)
		s.Len(events, 1)
	})

	s.Run("without a reader", func() {
		svc, err := New(s.mockAccounts, s.mockDoctors, s.mockCerts)
		s.Require().NoError(err)
		_, err = svc.RecentAudit(s.ctx(), 10)
		s.True(dErrors.HasCode(err, dErrors.CodeNotImplemented))
	})
}
