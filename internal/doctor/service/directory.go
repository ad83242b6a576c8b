package service

import (
	"context"
	"errors"

	id "github.com/bossygit/digital-medical-certificate-system/pkg/domain"
	"github.com/bossygit/digital-medical-certificate-system/pkg/platform/sentinel"
)

const unknownIssuerName = "N/A"

// Directory answers issuer questions for the certificate service: who may
// issue, and what name to print on a verification result.
type Directory struct {
	profiles ProfileReader
}

func NewDirectory(profiles ProfileReader) (*Directory, error) {
	if profiles == nil {
		return nil, errors.New("doctor profile store is required")
	}
	return &Directory{profiles: profiles}, nil
}

// ResolveIssuer returns the issuer id for an active doctor account with a
// profile, or sentinel.ErrNotFound.
func (d *Directory) ResolveIssuer(ctx context.Context, accountID id.UserID) (id.UserID, error) {
	doctor, err := d.profiles.FindByID(ctx, accountID)
	if err != nil {
		return 0, err
	}
	if doctor.Account.Role != id.RoleDoctor || !doctor.Account.IsActive {
		return 0, sentinel.ErrNotFound
	}
	return doctor.Profile.DoctorID, nil
}

// DisplayName returns "Dr First Last", or "N/A" when the issuer has no profile.
func (d *Directory) DisplayName(ctx context.Context, issuerID id.UserID) (string, error) {
	doctor, err := d.profiles.FindByID(ctx, issuerID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return unknownIssuerName, nil
	}
	if err != nil {
		return "", err
	}
	return doctor.DisplayName(), nil
}
