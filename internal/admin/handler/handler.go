package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bossygit/digital-medical-certificate-system/internal/admin/models"
	certhandler "github.com/bossygit/digital-medical-certificate-system/internal/certificate/handler"
	certmodels "github.com/bossygit/digital-medical-certificate-system/internal/certificate/models"
	doctormodels "github.com/bossygit/digital-medical-certificate-system/internal/doctor/models"
	id "github.com/bossygit/digital-medical-certificate-system/pkg/domain"
	dErrors "github.com/bossygit/digital-medical-certificate-system/pkg/domain-errors"
	audit "github.com/bossygit/digital-medical-certificate-system/pkg/platform/audit"
	"github.com/bossygit/digital-medical-certificate-system/pkg/platform/httputil"
	request "github.com/bossygit/digital-medical-certificate-system/pkg/platform/middleware/request"
	"github.com/bossygit/digital-medical-certificate-system/pkg/platform/middleware/role"
)

type Service interface {
	AddDoctor(ctx context.Context, cmd models.AddDoctorCommand) (*models.AddDoctorResult, error)
	ListDoctors(ctx context.Context, page certmodels.Page) (*models.DoctorList, error)
	GetDoctor(ctx context.Context, doctorID id.UserID) (*doctormodels.Doctor, error)
	UpdateDoctor(ctx context.Context, doctorID id.UserID, patch models.DoctorPatch) (*doctormodels.Doctor, error)
	SetDoctorStatus(ctx context.Context, doctorID id.UserID, active bool) (*doctormodels.Doctor, error)
	CertificateStats(ctx context.Context) (certmodels.Stats, error)
	Dashboard(ctx context.Context) (*models.Dashboard, error)
	ListCertificates(ctx context.Context, status string, page certmodels.Page) (*certmodels.ListResult, error)
	RecentAudit(ctx context.Context, limit int) ([]audit.Event, error)
}

type Handler struct {
	admin  Service
	logger *slog.Logger
}

func New(admin Service, logger *slog.Logger) *Handler {
	return &Handler{admin: admin, logger: logger}
}

// Register mounts the /admin routes. The router must already authenticate;
// reads are open to staff, writes and the audit trail to admins only.
func (h *Handler) Register(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(role.RequireRole(h.logger, id.RoleAdmin, id.RoleStaff))
			r.Get("/doctors", h.HandleListDoctors)
			r.Get("/doctors/{id}", h.HandleGetDoctor)
			r.Get("/stats", h.HandleStats)
			r.Get("/dashboard", h.HandleDashboard)
			r.Get("/certificates", h.HandleListCertificates)
		})
		r.Group(func(r chi.Router) {
			r.Use(role.RequireRole(h.logger, id.RoleAdmin))
			r.Post("/doctors", h.HandleAddDoctor)
			r.Put("/doctors/{id}", h.HandleUpdateDoctor)
			r.Patch("/doctors/{id}/status", h.HandleSetStatus)
			r.Get("/audit", h.HandleAudit)
			r.Post("/notifications/expiry", h.HandleExpiryNotifications)
		})
	})
}

func (h *Handler) HandleAddDoctor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req AddDoctorRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.admin.AddDoctor(ctx, req.toCommand())
	if err != nil {
		h.fail(ctx, w, "failed to add doctor", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, AddDoctorResponse{
		Message:           "doctor account created",
		DoctorID:          int64(res.DoctorID),
		UserID:            int64(res.DoctorID),
		Email:             res.Email,
		TemporaryPassword: res.TemporaryPassword,
		ExpiresAt:         res.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

func (h *Handler) HandleListDoctors(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, err := h.admin.ListDoctors(ctx, pageFrom(r))
	if err != nil {
		h.fail(ctx, w, "failed to list doctors", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDoctorListResponse(list))
}

func (h *Handler) HandleGetDoctor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	doctorID, err := id.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	doctor, err := h.admin.GetDoctor(ctx, doctorID)
	if err != nil {
		h.fail(ctx, w, "failed to load doctor", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDoctorResponse(doctor))
}

func (h *Handler) HandleUpdateDoctor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	doctorID, err := id.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req UpdateDoctorRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	doctor, err := h.admin.UpdateDoctor(ctx, doctorID, req.toPatch())
	if err != nil {
		h.fail(ctx, w, "failed to update doctor", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDoctorResponse(doctor))
}

func (h *Handler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	doctorID, err := id.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req StatusRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.IsActive == nil {
		httputil.WriteError(w, dErrors.WithFields(dErrors.CodeValidation, "invalid status update",
			map[string]string{"is_active": "is required"}))
		return
	}
	doctor, err := h.admin.SetDoctorStatus(ctx, doctorID, *req.IsActive)
	if err != nil {
		h.fail(ctx, w, "failed to change doctor status", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDoctorResponse(doctor))
}

func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats, err := h.admin.CertificateStats(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to load statistics", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toStatsResponse(stats))
}

func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dash, err := h.admin.Dashboard(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to load dashboard", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, DashboardResponse{
		StatsResponse: toStatsResponse(dash.Certificates),
		TotalDoctors:  dash.Doctors.Total,
		ActiveDoctors: dash.Doctors.Active,
	})
}

func (h *Handler) HandleListCertificates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, err := h.admin.ListCertificates(ctx, r.URL.Query().Get("status"), pageFrom(r))
	if err != nil {
		h.fail(ctx, w, "failed to list certificates", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, certhandler.ToListResponse(list))
}

func (h *Handler) HandleAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	events, err := h.admin.RecentAudit(ctx, httputil.QueryInt(r, "limit", 0))
	if err != nil {
		h.fail(ctx, w, "failed to list audit events", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAuditResponse(events))
}

func (h *Handler) HandleExpiryNotifications(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteError(w, dErrors.New(dErrors.CodeNotImplemented, "expiry notifications are not available yet"))
}

func pageFrom(r *http.Request) certmodels.Page {
	return certmodels.NewPage(httputil.QueryInt(r, "page", 1), httputil.QueryInt(r, "limit", certmodels.DefaultPageLimit))
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, msg, "request_id", request.GetRequestID(ctx), "error", err)
	}
	httputil.WriteError(w, err)
}
