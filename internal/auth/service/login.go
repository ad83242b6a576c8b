package service

import (
	"context"
	"errors"

	"github.com/bossygit/digital-medical-certificate-system/internal/auth/device"
	"github.com/bossygit/digital-medical-certificate-system/internal/auth/models"
	jwttoken "github.com/bossygit/digital-medical-certificate-system/internal/jwt_token"
	dErrors "github.com/bossygit/digital-medical-certificate-system/pkg/domain-errors"
	audit "github.com/bossygit/digital-medical-certificate-system/pkg/platform/audit"
	"github.com/bossygit/digital-medical-certificate-system/pkg/platform/sentinel"
	"github.com/bossygit/digital-medical-certificate-system/pkg/requestcontext"
	"github.com/bossygit/digital-medical-certificate-system/pkg/secrets"
)

const (
	loginOutcomeSuccess   = "success"
	loginOutcomeInvalid   = "invalid_credentials"
	loginOutcomeSuspended = "suspended"
)

// Login checks an email and password and issues an access token. Unknown
// email and wrong password produce the same error.
func (s *Service) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	email = models.NormalizeEmail(email)
	fields := make(map[string]string)
	if email == "" {
		fields["email"] = "is required"
	}
	if password == "" {
		fields["password"] = "is required"
	}
	if len(fields) > 0 {
		return nil, dErrors.WithFields(dErrors.CodeValidation, "email and password are required", fields)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, s.loginFailed(ctx, email, nil, "unknown_email")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	if err := secrets.Verify(password, user.PasswordHash); err != nil {
		return nil, s.loginFailed(ctx, email, user, "bad_password")
	}
	if !user.IsActive {
		s.recordLogin(loginOutcomeSuspended)
		s.logAudit(ctx, audit.Event{
			UserID:  user.ID,
			Action:  string(audit.EventLoginFailed),
			Details: map[string]any{"reason": "suspended", "device": s.deviceLabel(ctx)},
		})
		return nil, dErrors.New(dErrors.CodeForbidden, "account suspended")
	}

	issued, err := s.tokens.GenerateAccessToken(jwttoken.Subject{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}, s.tokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue access token")
	}

	s.recordLogin(loginOutcomeSuccess)
	s.logAudit(ctx, audit.Event{
		UserID:     user.ID,
		Action:     string(audit.EventLoginSucceeded),
		TargetType: "user",
		TargetID:   user.ID.String(),
		Details:    map[string]any{"role": user.Role.String(), "device": s.deviceLabel(ctx)},
	})
	return &models.LoginResult{Token: issued.Token, ExpiresIn: s.tokenTTL, User: user}, nil
}

func (s *Service) loginFailed(ctx context.Context, email string, user *models.User, reason string) error {
	s.recordLogin(loginOutcomeInvalid)
	event := audit.Event{
		Action:  string(audit.EventLoginFailed),
		Details: map[string]any{"reason": reason, "email": email, "device": s.deviceLabel(ctx)},
	}
	if user != nil {
		event.UserID = user.ID
	}
	s.logAudit(ctx, event)
	return dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
}

func (s *Service) deviceLabel(ctx context.Context) string {
	return device.ParseUserAgent(requestcontext.UserAgent(ctx))
}
