package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bossygit/digital-medical-certificate-system/internal/certificate/models"
	id "github.com/bossygit/digital-medical-certificate-system/pkg/domain"
	dErrors "github.com/bossygit/digital-medical-certificate-system/pkg/domain-errors"
	"github.com/bossygit/digital-medical-certificate-system/pkg/platform/httputil"
	request "github.com/bossygit/digital-medical-certificate-system/pkg/platform/middleware/request"
	"github.com/bossygit/digital-medical-certificate-system/pkg/requestcontext"
)

// Service is the certificate surface exposed over HTTP.
type Service interface {
	IssueCertificate(ctx context.Context, accountID id.UserID, cmd models.IssueCommand) (*models.IssueResult, error)
	VerifyCertificate(ctx context.Context, rawPublicID string) (*models.VerificationResult, error)
	GetCertificate(ctx context.Context, viewerID id.UserID, role id.Role, certID id.CertificateID) (*models.Certificate, error)
	ListMine(ctx context.Context, issuerID id.UserID, page models.Page) (*models.ListResult, error)
	QRCode(ctx context.Context, rawPublicID string) ([]byte, error)
}

type Handler struct {
	certificates Service
	logger       *slog.Logger
}

func New(certificates Service, logger *slog.Logger) *Handler {
	return &Handler{certificates: certificates, logger: logger}
}

// RegisterDoctor mounts issuance and the doctor's own list. The router must
// already require a doctor principal.
func (h *Handler) RegisterDoctor(r chi.Router) {
	r.Post("/certificates", h.HandleIssue)
	r.Get("/certificates", h.HandleListMine)
}

// RegisterViewer mounts the full-record view for doctors and staff.
func (h *Handler) RegisterViewer(r chi.Router) {
	r.Get("/certificates/{id}", h.HandleGet)
}

// RegisterPublic mounts the unauthenticated verification routes.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/verify/{publicId}", h.HandleVerify)
	r.Get("/verify/{publicId}/qr.png", h.HandleQRCode)
}

func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req IssueRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	result, err := h.certificates.IssueCertificate(ctx, requestcontext.UserID(ctx), req.toCommand())
	if err != nil {
		h.fail(ctx, w, "failed to issue certificate", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toIssueResponse(result))
}

func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := models.NewPage(httputil.QueryInt(r, "page", 1), httputil.QueryInt(r, "limit", models.DefaultPageLimit))
	list, err := h.certificates.ListMine(ctx, requestcontext.UserID(ctx), page)
	if err != nil {
		h.fail(ctx, w, "failed to list certificates", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ToListResponse(list))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	certID, err := id.ParseCertificateID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	cert, err := h.certificates.GetCertificate(ctx, requestcontext.UserID(ctx), requestcontext.Role(ctx), certID)
	if err != nil {
		h.fail(ctx, w, "failed to load certificate", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCertificateResponse(cert))
}

// HandleVerify answers 200 for both valid and tampered records; the body's
// isValid tells them apart. An unknown identifier is a 404 with the same shape.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	result, err := h.certificates.VerifyCertificate(ctx, chi.URLParam(r, "publicId"))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			httputil.WriteJSON(w, http.StatusNotFound, VerifyResponse{
				IsValid: false,
				Reason:  string(models.ReasonNotFound),
			})
			return
		}
		h.fail(ctx, w, "failed to verify certificate", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toVerifyResponse(result))
}

func (h *Handler) HandleQRCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	png, err := h.certificates.QRCode(ctx, strings.TrimSpace(chi.URLParam(r, "publicId")))
	if err != nil {
		h.fail(ctx, w, "failed to render QR code", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, msg, "request_id", request.GetRequestID(ctx), "error", err)
	}
	httputil.WriteError(w, err)
}
