package accounts

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/trylog/trylog/internal/observability"
	"github.com/trylog/trylog/internal/platform/httpx"
	"github.com/trylog/trylog/internal/shared"
)

// Handler wires REST endpoints for the account lifecycle.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	metrics   *observability.Metrics
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, metrics *observability.Metrics) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		metrics:   metrics,
		validator: validator.New(),
	}
}

// MountRoutes registers account routes on the provided router. Credential
// endpoints carry a per-client rate limit on top of sign-in lockout.
func (h *Handler) MountRoutes(r chi.Router) {
	limiter := httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP))

	r.With(limiter).Post("/register", h.handleRegister)
	r.Post("/activate", h.handleActivate)
	r.With(limiter).Post("/reactivate", h.handleReactivate)
	r.With(limiter).Post("/login", h.handleLogin)
	r.Get("/me", h.handleGet)
	r.Put("/me", h.handleUpdate)
	r.Delete("/me", h.handleDelete)
	r.Post("/password/change", h.handleChangePassword)
	r.With(limiter).Post("/password/reset", h.handleResetPassword)
	r.Post("/password/reset/confirm", h.handleConfirmReset)
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required"`
	Callback string `json:"callback" validate:"required,url"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.service.Register(r.Context(), req.Email, req.Password, req.FullName, req.Callback)
	if err != nil {
		h.logger.Error("register", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.metrics.AccountEvent("register", result.Status == http.StatusCreated)
	httpx.JSON(w, result.Status, result)
}

type activateRequest struct {
	Email string `json:"email" validate:"required,email"`
	Token string `json:"token" validate:"required"`
}

func (h *Handler) handleActivate(w http.ResponseWriter, r *http.Request) {
	var req activateRequest
	if !h.decode(w, r, &req) {
		return
	}
	ok, err := h.service.Activate(r.Context(), req.Email, req.Token)
	if err != nil {
		h.logger.Error("activate", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.metrics.AccountEvent("activate", ok)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Activation Failed", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Account activated."})
}

type reactivateRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Callback string `json:"callback" validate:"required,url"`
}

func (h *Handler) handleReactivate(w http.ResponseWriter, r *http.Request) {
	var req reactivateRequest
	if !h.decode(w, r, &req) {
		return
	}
	ident := shared.IdentityFromContext(r.Context())
	ok, err := h.service.SendReactivationEmail(r.Context(), ident, req.Email, req.Password, req.Callback)
	if err != nil {
		h.logger.Error("reactivate", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Reactivation Failed", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Reactivation email sent."})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token   string `json:"token,omitempty"`
	Expires string `json:"expires,omitempty"`
	Message string `json:"message"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}
	ident := shared.IdentityFromContext(r.Context())
	result, err := h.service.Login(r.Context(), ident, req.Email, req.Password)
	if err != nil {
		h.metrics.AccountEvent("login", false)
		httpx.RespondError(w, err)
		return
	}
	h.metrics.AccountEvent("login", true)
	resp := loginResponse{Token: result.Token, Message: result.Message}
	if !result.ExpiresAt.IsZero() {
		resp.Expires = result.ExpiresAt.Format(time.RFC1123)
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.Get(r.Context(), shared.IdentityFromContext(r.Context()))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

type updateRequest struct {
	FullName string `json:"full_name" validate:"required"`
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if !h.decode(w, r, &req) {
		return
	}
	profile, err := h.service.Update(r.Context(), shared.IdentityFromContext(r.Context()), req.FullName)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

type changePasswordRequest struct {
	Current string `json:"current" validate:"required"`
	New     string `json:"new" validate:"required,min=8"`
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.service.ChangePassword(r.Context(), shared.IdentityFromContext(r.Context()), req.Current, req.New)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, result.Code, result)
}

type resetPasswordRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Callback string `json:"callback" validate:"required,url"`
}

func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}
	ok, err := h.service.ResetPassword(r.Context(), req.Email, req.Callback)
	if err != nil {
		h.logger.Error("reset password", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.metrics.AccountEvent("password_reset", ok)
	if !ok {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Reset email sent."})
}

type confirmResetRequest struct {
	AccountID int64  `json:"account_id" validate:"required,gt=0"`
	Token     string `json:"token" validate:"required"`
}

func (h *Handler) handleConfirmReset(w http.ResponseWriter, r *http.Request) {
	var req confirmResetRequest
	if !h.decode(w, r, &req) {
		return
	}
	ok, err := h.service.ConfirmTokenPasswordReset(r.Context(), req.AccountID, req.Token)
	if err != nil {
		h.logger.Error("confirm reset", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.metrics.AccountEvent("password_reset_confirm", ok)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Reset Failed", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Password reset. Check your email."})
}

type deleteRequest struct {
	Password string `json:"password" validate:"required"`
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if !h.decode(w, r, &req) {
		return
	}
	description, err := h.service.Delete(r.Context(), shared.IdentityFromContext(r.Context()), req.Password)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.metrics.AccountEvent("deactivate", true)
	httpx.JSON(w, http.StatusOK, map[string]string{"message": description})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Request", "")
		return false
	}
	if err := h.validator.Struct(target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return false
	}
	return true
}
