package service

import (
	"context"
	"errors"
	"time"

	authmodels "github.com/bossygit/digital-medical-certificate-system/internal/auth/models"
	id "github.com/bossygit/digital-medical-certificate-system/pkg/domain"
	dErrors "github.com/bossygit/digital-medical-certificate-system/pkg/domain-errors"
	"github.com/bossygit/digital-medical-certificate-system/pkg/platform/sentinel"
	"github.com/bossygit/digital-medical-certificate-system/pkg/secrets"
)

// SeedAdminCommand describes the first administrator account.
type SeedAdminCommand struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// SeedAdmin creates the administrator unless the email is already taken.
// It reports whether an account was created.
func SeedAdmin(ctx context.Context, accounts AccountStore, cmd SeedAdminCommand, now time.Time) (*authmodels.User, bool, error) {
	email := authmodels.NormalizeEmail(cmd.Email)
	existing, err := accounts.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return existing, false, nil
	case !errors.Is(err, sentinel.ErrNotFound):
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check existing admin")
	}

	if len(cmd.Password) < 8 {
		return nil, false, dErrors.WithFields(dErrors.CodeValidation, "invalid admin", map[string]string{"password": "must be at least 8 characters"})
	}
	hash, err := secrets.Hash(cmd.Password)
	if err != nil {
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}
	user, err := authmodels.NewUser(email, hash, id.RoleAdmin, cmd.FirstName, cmd.LastName, "", now)
	if err != nil {
		return nil, false, dErrors.Wrap(err, dErrors.CodeValidation, "invalid admin")
	}
	created, err := accounts.Create(ctx, user)
	if err != nil {
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create admin")
	}
	return created, true, nil
}
