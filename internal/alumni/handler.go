package alumni

import (
	"log/slog"
	"net/http"

	"github.com/haniSalm/FAST-E-Learning/internal/auth"
	"github.com/haniSalm/FAST-E-Learning/internal/httputil"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes expects r to be behind auth.AuthMiddleware.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/user/status", h.UserStatus)
}

type StatusResponse struct {
	IsAlumni bool `json:"is_alumni"`
}

func (h *Handler) UserStatus(w http.ResponseWriter, r *http.Request) {
	email, ok := auth.GetEmail(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	isAlumni, err := h.service.IsAlumni(r.Context(), email)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "alumni lookup failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, StatusResponse{IsAlumni: isAlumni})
}
