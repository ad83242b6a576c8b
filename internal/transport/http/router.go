// Package httptransport assembles the module handlers into the public API.
// Handlers stay thin; this package only decides which routes sit behind
// which middleware.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	adminhandler "github.com/bossygit/digital-medical-certificate-system/internal/admin/handler"
	authhandler "github.com/bossygit/digital-medical-certificate-system/internal/auth/handler"
	certhandler "github.com/bossygit/digital-medical-certificate-system/internal/certificate/handler"
	doctorhandler "github.com/bossygit/digital-medical-certificate-system/internal/doctor/handler"
	platformmetrics "github.com/bossygit/digital-medical-certificate-system/internal/platform/metrics"
	platformmw "github.com/bossygit/digital-medical-certificate-system/internal/platform/middleware"
	id "github.com/bossygit/digital-medical-certificate-system/pkg/domain"
	"github.com/bossygit/digital-medical-certificate-system/pkg/platform/httputil"
	"github.com/bossygit/digital-medical-certificate-system/pkg/platform/middleware/metadata"
	request "github.com/bossygit/digital-medical-certificate-system/pkg/platform/middleware/request"
	"github.com/bossygit/digital-medical-certificate-system/pkg/platform/middleware/requesttime"
	"github.com/bossygit/digital-medical-certificate-system/pkg/platform/middleware/role"
)

const maxBodyBytes = 1 << 20

// HealthCheck reports whether a backing service is reachable.
type HealthCheck func(ctx context.Context) error

type Deps struct {
	Logger         *slog.Logger
	RequestTimeout time.Duration

	Auth         *authhandler.Handler
	Certificates *certhandler.Handler
	Doctors      *doctorhandler.Handler
	Admin        *adminhandler.Handler

	// RequireAuth validates the bearer token and sets the principal.
	RequireAuth func(http.Handler) http.Handler
	// VerifyLimit throttles the public verification routes.
	VerifyLimit func(http.Handler) http.Handler

	Metrics      *platformmetrics.Metrics
	HealthChecks map[string]HealthCheck
}

// NewRouter mounts every route under /api plus /health and /metrics.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(platformmw.Recovery(d.Logger))
	r.Use(platformmw.AccessLog(d.Logger))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)

	r.Get("/health", health(d.HealthChecks))
	r.Handle("/metrics", platformmetrics.Handler())

	r.Route("/api", func(r chi.Router) {
		if d.RequestTimeout > 0 {
			r.Use(platformmw.Timeout(d.RequestTimeout))
		}
		r.Use(platformmw.LimitBody(maxBodyBytes))
		r.Use(platformmw.ContentTypeJSON)

		d.Auth.RegisterPublic(r)
		r.Group(func(r chi.Router) {
			if d.VerifyLimit != nil {
				r.Use(d.VerifyLimit)
			}
			d.Certificates.RegisterPublic(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(d.RequireAuth)
			d.Auth.RegisterAuthenticated(r)

			r.Group(func(r chi.Router) {
				r.Use(role.RequireRole(d.Logger, id.RoleDoctor))
				d.Certificates.RegisterDoctor(r)
				d.Doctors.Register(r)
			})
			r.Group(func(r chi.Router) {
				r.Use(role.RequireRole(d.Logger, id.RoleDoctor, id.RoleStaff, id.RoleAdmin))
				d.Certificates.RegisterViewer(r)
			})
			d.Admin.Register(r)
		})
	})
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func health(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(checks))}
		status := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				resp.Checks[name] = "unavailable"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
