// Package role gates routes on the authenticated account's role.
package role

import (
	"log/slog"
	"net/http"
	"slices"

	id "github.com/bossygit/digital-medical-certificate-system/pkg/domain"
	request "github.com/bossygit/digital-medical-certificate-system/pkg/platform/middleware/request"
	"github.com/bossygit/digital-medical-certificate-system/pkg/requestcontext"
)

// RequireRole must run after auth.RequireAuth. Anonymous requests get 401,
// authenticated requests with another role get 403.
func RequireRole(logger *slog.Logger, allowed ...id.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if requestcontext.UserID(ctx).IsZero() {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"authentication required"}`))
				return
			}
			current := requestcontext.Role(ctx)
			if !slices.Contains(allowed, current) {
				logger.WarnContext(ctx, "forbidden - role not allowed",
					"role", current,
					"user_id", requestcontext.UserID(ctx),
					"request_id", request.GetRequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden","error_description":"insufficient role"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
