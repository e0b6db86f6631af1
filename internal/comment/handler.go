package comment

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/haniSalm/FAST-E-Learning/internal/auth"
	"github.com/haniSalm/FAST-E-Learning/internal/course"
	"github.com/haniSalm/FAST-E-Learning/internal/httputil"
	"github.com/haniSalm/FAST-E-Learning/internal/user"
	"github.com/haniSalm/FAST-E-Learning/internal/validation"

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
	r.Get("/comments/course/{courseID}", h.ListComments)
	r.Post("/comments/course/{courseID}", h.PostComment)
}

func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	courseID, ok := httputil.IDParam(r, "courseID")
	if !ok {
		httputil.RespondWithError(w, http.StatusNotFound, "Course not found")
		return
	}

	comments, err := h.service.List(r.Context(), courseID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	if len(comments) == 0 {
		httputil.RespondWithMessage(w, http.StatusOK, NoCommentsMessage)
		return
	}

	resp := make([]Response, 0, len(comments))
	for i := range comments {
		resp = append(resp, ToResponse(&comments[i]))
	}
	httputil.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *Handler) PostComment(w http.ResponseWriter, r *http.Request) {
	courseID, ok := httputil.IDParam(r, "courseID")
	if !ok {
		httputil.RespondWithError(w, http.StatusNotFound, "Course not found")
		return
	}

	userID, _ := auth.GetUserID(r.Context())
	email, _ := auth.GetEmail(r.Context())

	form, err := httputil.ReadForm(w, r, httputil.MaxFormBody)
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req CreateRequest
	req.Text, _ = form.Value("text")

	created, err := h.service.Post(r.Context(), courseID, &user.User{ID: userID, Email: email}, req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "comment posted", "comment_id", created.ID, "course_id", courseID)
	httputil.RespondWithJSON(w, http.StatusCreated, ToResponse(created))
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if verr, ok := validation.AsError(err); ok {
		httputil.RespondWithFieldErrors(w, verr.Error(), verr.Fields)
		return
	}
	if errors.Is(err, course.ErrCourseNotFound) {
		httputil.RespondWithError(w, http.StatusNotFound, "Course not found")
		return
	}
	h.logger.ErrorContext(r.Context(), "comment request failed", "error", err)
	httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
}
