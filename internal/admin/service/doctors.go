package service

import (
	"context"
	"errors"

	"github.com/bossygit/digital-medical-certificate-system/internal/admin/models"
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

const targetTypeDoctor = "doctor"

var (
	errEmailTaken    = dErrors.New(dErrors.CodeConflict, "email already registered")
	errAgrementTaken = dErrors.New(dErrors.CodeConflict, "agrement number already registered")
)

// AddDoctor creates the account and profile together and returns a
// temporary password the operator hands to the doctor.
func (s *Service) AddDoctor(ctx context.Context, cmd models.AddDoctorCommand) (*models.AddDoctorResult, error) {
	cmd.Normalize()
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	email := authmodels.NormalizeEmail(cmd.Email)
	if !authmodels.ValidEmail(email) {
		return nil, dErrors.WithFields(dErrors.CodeValidation, "invalid doctor", map[string]string{"email": "must be a valid address"})
	}

	if err := s.ensureEmailFree(ctx, email, 0); err != nil {
		return nil, err
	}
	if err := s.ensureAgrementFree(ctx, cmd.AgrementNumber, 0); err != nil {
		return nil, err
	}

	tempPassword, err := secrets.GenerateTemporaryPassword()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate temporary password")
	}
	hash, err := secrets.Hash(tempPassword)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash temporary password")
	}
	now := requestcontext.Now(ctx).UTC()
	expiresAt := now.Add(s.tempPasswordTTL)

	var created *authmodels.User
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		account, err := authmodels.NewUser(email, hash, id.RoleDoctor, cmd.FirstName, cmd.LastName, cmd.PhoneNumber, now)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeValidation, "invalid doctor")
		}
		created, err = s.accounts.Create(ctx, account)
		if err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return errEmailTaken
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create account")
		}

		profile, err := doctormodels.NewProfile(created.ID, cmd.AgrementNumber, cmd.Specialty, cmd.OfficeAddress, now)
		if err == nil {
			profile.SetTemporaryPassword(hash, expiresAt)
			err = s.doctors.Create(ctx, profile)
		}
		if err != nil {
			// In-memory stores have no rollback.
			if delErr := s.accounts.Delete(ctx, created.ID); delErr != nil {
				s.logger.WarnContext(ctx, "failed to remove account after profile error",
					"user_id", created.ID,
					"error", delErr,
				)
			}
			if errors.Is(err, sentinel.ErrConflict) {
				return errAgrementTaken
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create doctor profile")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, audit.Event{
		Action:     string(audit.EventAdminAddDoctor),
		TargetType: targetTypeDoctor,
		TargetID:   created.ID.String(),
		Details:    map[string]any{"email": created.Email, "agrement_number": cmd.AgrementNumber},
	})
	return &models.AddDoctorResult{
		DoctorID:          created.ID,
		Email:             created.Email,
		TemporaryPassword: tempPassword,
		ExpiresAt:         expiresAt,
	}, nil
}

func (s *Service) ensureEmailFree(ctx context.Context, email string, owner id.UserID) error {
	existing, err := s.accounts.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return nil
	case err != nil:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check email")
	case existing.ID != owner:
		return errEmailTaken
	}
	return nil
}

func (s *Service) ensureAgrementFree(ctx context.Context, agrement string, owner id.UserID) error {
	existing, err := s.doctors.FindByAgrement(ctx, agrement)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return nil
	case err != nil:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check agrement number")
	case existing.Profile.DoctorID != owner:
		return errAgrementTaken
	}
	return nil
}

// ListDoctors pages through doctors ordered by last then first name.
func (s *Service) ListDoctors(ctx context.Context, page certmodels.Page) (*models.DoctorList, error) {
	doctors, total, err := s.doctors.List(ctx, page)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list doctors")
	}
	return &models.DoctorList{Doctors: doctors, Total: total, Page: page}, nil
}

func (s *Service) GetDoctor(ctx context.Context, doctorID id.UserID) (*doctormodels.Doctor, error) {
	doctor, err := s.doctors.FindByID(ctx, doctorID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "doctor not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load doctor")
	}
	return doctor, nil
}

func (s *Service) UpdateDoctor(ctx context.Context, doctorID id.UserID, patch models.DoctorPatch) (*doctormodels.Doctor, error) {
	patch.Normalize()
	if patch.IsEmpty() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "no fields to update")
	}
	if patch.Email != nil {
		email := authmodels.NormalizeEmail(*patch.Email)
		if !authmodels.ValidEmail(email) {
			return nil, dErrors.WithFields(dErrors.CodeValidation, "invalid doctor update", map[string]string{"email": "must be a valid address"})
		}
		patch.Email = &email
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	var updated *doctormodels.Doctor
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		doctor, err := s.GetDoctor(ctx, doctorID)
		if err != nil {
			return err
		}
		if patch.Email != nil {
			if err := s.ensureEmailFree(ctx, *patch.Email, doctorID); err != nil {
				return err
			}
		}
		if patch.AgrementNumber != nil {
			if err := s.ensureAgrementFree(ctx, *patch.AgrementNumber, doctorID); err != nil {
				return err
			}
		}
		patch.Apply(doctor, requestcontext.Now(ctx).UTC())
		if err := s.accounts.Update(ctx, &doctor.Account); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return errEmailTaken
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update account")
		}
		if err := s.doctors.Update(ctx, &doctor.Profile); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return errAgrementTaken
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update doctor profile")
		}
		updated = doctor
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, audit.Event{
		Action:     string(audit.EventAdminUpdateDoctor),
		TargetType: targetTypeDoctor,
		TargetID:   doctorID.String(),
	})
	return updated, nil
}

// SetDoctorStatus activates or suspends a doctor. A suspended doctor can
// neither log in nor issue.
func (s *Service) SetDoctorStatus(ctx context.Context, doctorID id.UserID, active bool) (*doctormodels.Doctor, error) {
	var updated *doctormodels.Doctor
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		doctor, err := s.GetDoctor(ctx, doctorID)
		if err != nil {
			return err
		}
		doctor.Account.IsActive = active
		doctor.Account.UpdatedAt = requestcontext.Now(ctx).UTC()
		if err := s.accounts.Update(ctx, &doctor.Account); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update account status")
		}
		updated = doctor
		return nil
	})
	if err != nil {
		return nil, err
	}

	action := audit.EventAdminSuspendDoctor
	if active {
		action = audit.EventAdminActivateDoctor
	}
	s.logAudit(ctx, audit.Event{
		Action:     string(action),
		TargetType: targetTypeDoctor,
		TargetID:   doctorID.String(),
	})
	return updated, nil
}
