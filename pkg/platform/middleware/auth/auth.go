// Package auth authenticates bearer tokens on the protected API routes.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	id "github.com/bossygit/digital-medical-certificate-system/pkg/domain"
	dErrors "github.com/bossygit/digital-medical-certificate-system/pkg/domain-errors"
	"github.com/bossygit/digital-medical-certificate-system/pkg/platform/httputil"
	request "github.com/bossygit/digital-medical-certificate-system/pkg/platform/middleware/request"
	"github.com/bossygit/digital-medical-certificate-system/pkg/requestcontext"
)

type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// TokenRevocationChecker answers whether a token was withdrawn by logout.
type TokenRevocationChecker interface {
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// JWTClaims is the validated principal carried by an access token.
type JWTClaims struct {
	UserID    id.UserID
	Email     string
	Role      id.Role
	JTI       string
	ExpiresAt time.Time
}

// RequireAuth admits requests presenting a valid, unrevoked bearer token and
// records the principal and the token in the context. With a nil checker the
// revocation lookup is skipped; otherwise tokens must carry a jti.
func RequireAuth(validator JWTValidator, revocations TokenRevocationChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			deny := func(reason, description string, attrs ...any) {
				logger.WarnContext(ctx, "request rejected: "+reason,
					append(attrs, "request_id", request.GetRequestID(ctx))...)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, description))
			}

			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				deny("no bearer token", "Missing or invalid Authorization header")
				return
			}
			claims, err := validator.ValidateToken(raw)
			if err != nil {
				deny("token failed validation", "Invalid or expired token", "error", err)
				return
			}

			if revocations != nil {
				if claims.JTI == "" {
					deny("token has no jti", "Invalid or expired token", "user_id", claims.UserID)
					return
				}
				revoked, err := revocations.IsTokenRevoked(ctx, claims.JTI)
				switch {
				case err != nil:
					logger.ErrorContext(ctx, "revocation lookup failed",
						"error", err,
						"request_id", request.GetRequestID(ctx),
					)
					httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "token check failed"))
					return
				case revoked:
					deny("token revoked", "Token has been revoked", "jti", claims.JTI)
					return
				}
			}

			ctx = requestcontext.WithToken(requestcontext.WithPrincipal(ctx, claims.UserID, claims.Role), claims.JTI, claims.ExpiresAt)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
