package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/haniSalm/FAST-E-Learning/internal/httputil"
	"github.com/haniSalm/FAST-E-Learning/internal/user"
	"github.com/haniSalm/FAST-E-Learning/internal/validation"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service       *Service
	logger        *slog.Logger
	cookieMaxAge  int
	secureCookies bool
}

func NewHandler(service *Service, logger *slog.Logger, secureCookies bool) *Handler {
	return &Handler{
		service:       service,
		logger:        logger,
		cookieMaxAge:  int(service.tokens.TTL().Seconds()),
		secureCookies: secureCookies,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/signup", h.Signup)
	r.Post("/login", h.Login)
	r.Post("/token/refresh", h.Refresh)
	r.Post("/logout", h.Logout)
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	form, err := httputil.ReadForm(w, r, httputil.MaxFormBody)
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	req := SignupRequest{}
	req.Email, _ = form.Value("email")
	req.Password, _ = form.Value("password")

	u, err := h.service.Signup(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "user signed up", "user_id", u.ID)
	httputil.RespondWithMessage(w, http.StatusCreated, "User created successfully!")
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	form, err := httputil.ReadForm(w, r, httputil.MaxFormBody)
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	req := LoginRequest{}
	req.Email, _ = form.Value("email")
	req.Password, _ = form.Value("password")

	pair, err := h.service.Login(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "user logged in", "email", req.Email)

	SetAuthCookie(w, pair.Access, h.cookieMaxAge, h.secureCookies)
	httputil.RespondWithJSON(w, http.StatusOK, pair)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	refresh, err := readRefresh(w, r)
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	pair, err := h.service.Refresh(r.Context(), refresh)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	SetAuthCookie(w, pair.Access, h.cookieMaxAge, h.secureCookies)
	httputil.RespondWithJSON(w, http.StatusOK, pair)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	refresh, err := readRefresh(w, r)
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.Logout(r.Context(), refresh); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	ClearAuthCookie(w, h.secureCookies)
	w.WriteHeader(http.StatusNoContent)
}

func readRefresh(w http.ResponseWriter, r *http.Request) (string, error) {
	form, err := httputil.ReadForm(w, r, httputil.MaxFormBody)
	if err != nil {
		return "", err
	}
	refresh, _ := form.Value("refresh")
	return refresh, nil
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if verr, ok := validation.AsError(err); ok {
		h.logger.InfoContext(r.Context(), "validation failed", "fields", verr.Fields)
		httputil.RespondWithFieldErrors(w, verr.Error(), verr.Fields)
		return
	}
	switch {
	case errors.Is(err, user.ErrEmailTaken):
		httputil.RespondWithFieldErrors(w, user.ErrEmailTaken.Error(), map[string]string{"email": user.ErrEmailTaken.Error()})
	case errors.Is(err, ErrInvalidCredentials):
		httputil.RespondWithError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, ErrInvalidRefreshToken):
		httputil.RespondWithError(w, http.StatusUnauthorized, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "auth request failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
