package service

import (
	"context"
	"time"

	dErrors "github.com/bossygit/digital-medical-certificate-system/pkg/domain-errors"
	audit "github.com/bossygit/digital-medical-certificate-system/pkg/platform/audit"
	"github.com/bossygit/digital-medical-certificate-system/pkg/requestcontext"
)

// Logout revokes the caller's current access token for the rest of its
// lifetime. A token that has already expired needs no entry.
func (s *Service) Logout(ctx context.Context) error {
	userID := requestcontext.UserID(ctx)
	jti := requestcontext.TokenID(ctx)
	if userID.IsZero() || jti == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	remaining := requestcontext.TokenExpiry(ctx).Sub(requestcontext.Now(ctx))
	if remaining > 0 {
		if err := s.trl.RevokeToken(ctx, jti, remaining.Round(time.Second)+time.Second); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke token")
		}
	}

	if s.metrics != nil {
		s.metrics.IncrementLogout()
	}
	s.logAudit(ctx, audit.Event{
		UserID:     userID,
		Action:     string(audit.EventLogout),
		TargetType: "user",
		TargetID:   userID.String(),
	})
	return nil
}

// IsTokenRevoked backs the auth middleware's revocation check.
func (s *Service) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	return s.trl.IsRevoked(ctx, jti)
}
