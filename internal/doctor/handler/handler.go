package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	certmodels "github.com/bossygit/digital-medical-certificate-system/internal/certificate/models"
	"github.com/bossygit/digital-medical-certificate-system/internal/doctor/models"
	"github.com/bossygit/digital-medical-certificate-system/internal/doctor/service"
	id "github.com/bossygit/digital-medical-certificate-system/pkg/domain"
	dErrors "github.com/bossygit/digital-medical-certificate-system/pkg/domain-errors"
	"github.com/bossygit/digital-medical-certificate-system/pkg/platform/httputil"
	request "github.com/bossygit/digital-medical-certificate-system/pkg/platform/middleware/request"
	"github.com/bossygit/digital-medical-certificate-system/pkg/requestcontext"
)

// Service is the doctor self-service surface.
type Service interface {
	GetProfile(ctx context.Context, doctorID id.UserID) (*models.Doctor, error)
	UpdateProfile(ctx context.Context, doctorID id.UserID, patch models.ProfilePatch) (*models.Doctor, error)
	CertificateHistory(ctx context.Context, doctorID id.UserID, page certmodels.Page) (*service.History, error)
	CarnetSummary(ctx context.Context, doctorID id.UserID) (models.Carnet, error)
}

type Handler struct {
	doctors Service
	logger  *slog.Logger
}

func New(doctors Service, logger *slog.Logger) *Handler {
	return &Handler{doctors: doctors, logger: logger}
}

// Register mounts the doctor routes. The router must already require a
// doctor principal.
func (h *Handler) Register(r chi.Router) {
	r.Get("/doctor/profile", h.HandleGetProfile)
	r.Put("/doctor/profile", h.HandleUpdateProfile)
	r.Get("/doctor/certificates", h.HandleHistory)
	r.Get("/doctor/carnet", h.HandleCarnet)
}

func (h *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	doctor, err := h.doctors.GetProfile(ctx, requestcontext.UserID(ctx))
	if err != nil {
		h.fail(ctx, w, "failed to load doctor profile", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toProfileResponse(doctor))
}

func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req UpdateProfileRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	doctor, err := h.doctors.UpdateProfile(ctx, requestcontext.UserID(ctx), req.toPatch())
	if err != nil {
		h.fail(ctx, w, "failed to update doctor profile", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toProfileResponse(doctor))
}

func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := certmodels.NewPage(httputil.QueryInt(r, "page", 1), httputil.QueryInt(r, "limit", certmodels.DefaultPageLimit))
	history, err := h.doctors.CertificateHistory(ctx, requestcontext.UserID(ctx), page)
	if err != nil {
		h.fail(ctx, w, "failed to load certificate history", err)
		return
	}
	resp := HistoryResponse{
		TotalItems:   history.TotalItems,
		TotalPages:   history.TotalPages,
		CurrentPage:  history.CurrentPage,
		Certificates: make([]HistoryItem, 0, len(history.Certificates)),
	}
	for _, c := range history.Certificates {
		resp.Certificates = append(resp.Certificates, HistoryItem{
			ID:                 int64(c.ID),
			PublicID:           c.PublicID.String(),
			ApplicantFirstName: c.ApplicantFirstName,
			ApplicantLastName:  c.ApplicantLastName,
			IssueDate:          c.IssueDate.UTC().Format(time.RFC3339),
			Status:             string(c.Status),
			IsFit:              c.IsFit,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleCarnet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	carnet, err := h.doctors.CarnetSummary(ctx, requestcontext.UserID(ctx))
	if err != nil {
		h.fail(ctx, w, "failed to load carnet", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CarnetResponse{
		TotalCertificatesIssued:    carnet.TotalIssued,
		CertificatesIssuedThisYear: carnet.IssuedThisYear,
	})
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, msg, "request_id", request.GetRequestID(ctx), "error", err)
	}
	httputil.WriteError(w, err)
}
