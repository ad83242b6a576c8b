package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bossygit/digital-medical-certificate-system/internal/auth/models"
	dErrors "github.com/bossygit/digital-medical-certificate-system/pkg/domain-errors"
	"github.com/bossygit/digital-medical-certificate-system/pkg/platform/httputil"
	request "github.com/bossygit/digital-medical-certificate-system/pkg/platform/middleware/request"
)

type Service interface {
	Login(ctx context.Context, email, password string) (*models.LoginResult, error)
	Logout(ctx context.Context) error
}

type Handler struct {
	auth   Service
	logger *slog.Logger
}

func New(auth Service, logger *slog.Logger) *Handler {
	return &Handler{auth: auth, logger: logger}
}

// RegisterPublic mounts login and the account recovery placeholders.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
	r.Post("/auth/first-login", h.notImplemented)
	r.Post("/auth/request-password-reset", h.notImplemented)
	r.Post("/auth/reset-password", h.notImplemented)
}

// RegisterAuthenticated mounts routes that need a valid token.
func (h *Handler) RegisterAuthenticated(r chi.Router) {
	r.Post("/auth/logout", h.HandleLogout)
	r.Post("/auth/change-password", h.notImplemented)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type LoginResponse struct {
	Message   string       `json:"message"`
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresIn int64        `json:"expires_in"`
	User      UserResponse `json:"user"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	result, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.fail(ctx, w, "login failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, LoginResponse{
		Message:   "login successful",
		Token:     result.Token,
		TokenType: "Bearer",
		ExpiresIn: int64(result.ExpiresIn.Seconds()),
		User: UserResponse{
			ID:        int64(result.User.ID),
			Email:     result.User.Email,
			Role:      result.User.Role.String(),
			FirstName: result.User.FirstName,
			LastName:  result.User.LastName,
		},
	})
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.auth.Logout(ctx); err != nil {
		h.fail(ctx, w, "logout failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "logged out successfully"})
}

func (h *Handler) notImplemented(w http.ResponseWriter, r *http.Request) {
	h.logger.WarnContext(r.Context(), "not implemented", "path", r.URL.Path)
	httputil.WriteError(w, dErrors.New(dErrors.CodeNotImplemented, "not implemented"))
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, msg, "request_id", request.GetRequestID(ctx), "error", err)
	}
	httputil.WriteError(w, err)
}
