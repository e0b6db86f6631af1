package rating

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/haniSalm/FAST-E-Learning/internal/auth"
	"github.com/haniSalm/FAST-E-Learning/internal/course"
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
	r.Get("/course/{courseID}", h.CourseDetail)
	r.Post("/course/{courseID}/rate", h.SubmitRating)
}

func (h *Handler) CourseDetail(w http.ResponseWriter, r *http.Request) {
	courseID, ok := httputil.IDParam(r, "courseID")
	if !ok {
		httputil.RespondWithError(w, http.StatusNotFound, "Course not found")
		return
	}

	detail, err := h.service.Detail(r.Context(), courseID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, detail)
}

func (h *Handler) SubmitRating(w http.ResponseWriter, r *http.Request) {
	courseID, ok := httputil.IDParam(r, "courseID")
	if !ok {
		httputil.RespondWithError(w, http.StatusNotFound, "Course not found")
		return
	}

	form, err := httputil.ReadForm(w, r, httputil.MaxFormBody)
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	raw, _ := form.Value("rating")

	userID, _ := auth.GetUserID(r.Context())
	created, err := h.service.Submit(r.Context(), courseID, userID, raw)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "rating submitted", "rating_id", created.ID, "course_id", courseID)
	httputil.RespondWithMessage(w, http.StatusCreated, "Rating submitted successfully!")
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidValue):
		httputil.RespondWithError(w, http.StatusBadRequest, invalidValueMessage)
	case errors.Is(err, ErrAlreadyRated):
		httputil.RespondWithError(w, http.StatusBadRequest, alreadyRatedMessage)
	case errors.Is(err, course.ErrCourseNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "Course not found")
	default:
		h.logger.ErrorContext(r.Context(), "rating request failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
