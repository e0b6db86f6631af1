package course

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/haniSalm/FAST-E-Learning/internal/httputil"
	"github.com/haniSalm/FAST-E-Learning/internal/storage"
	"github.com/haniSalm/FAST-E-Learning/internal/validation"

	"github.com/go-chi/chi/v5"
)

// formOverhead leaves room for the non-file fields and multipart framing.
const formOverhead = 1 << 20

type Handler struct {
	service  Service
	logger   *slog.Logger
	maxBytes int64
}

func NewHandler(service Service, logger *slog.Logger, maxUploadMB int64) *Handler {
	return &Handler{
		service:  service,
		logger:   logger,
		maxBytes: maxUploadMB<<20 + formOverhead,
	}
}

// RegisterRoutes mounts the course collection. Mutations carry no ownership check.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/courses", h.ListCourses)
	r.Post("/courses", h.CreateCourse)
	r.Get("/courses/{courseID}", h.GetCourse)
	r.Put("/courses/{courseID}", h.UpdateCourse)
	r.Patch("/courses/{courseID}", h.UpdateCourse)
	r.Delete("/courses/{courseID}", h.DeleteCourse)
}

func (h *Handler) ListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.service.List(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	resp := make([]Response, 0, len(courses))
	for i := range courses {
		resp = append(resp, h.service.ToResponse(&courses[i]))
	}
	httputil.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *Handler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	in, image, ok := h.readInput(w, r)
	if !ok {
		return
	}

	c, err := h.service.Create(r.Context(), in, image)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "course created", "course_id", c.ID)
	httputil.RespondWithJSON(w, http.StatusCreated, h.service.ToResponse(c))
}

func (h *Handler) GetCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.IDParam(r, "courseID")
	if !ok {
		httputil.RespondWithError(w, http.StatusNotFound, "Course not found")
		return
	}

	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, h.service.ToResponse(c))
}

func (h *Handler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.IDParam(r, "courseID")
	if !ok {
		httputil.RespondWithError(w, http.StatusNotFound, "Course not found")
		return
	}

	in, image, ok := h.readInput(w, r)
	if !ok {
		return
	}

	c, err := h.service.Update(r.Context(), id, in, image)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "course updated", "course_id", c.ID, "method", r.Method)
	httputil.RespondWithJSON(w, http.StatusOK, h.service.ToResponse(c))
}

func (h *Handler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.IDParam(r, "courseID")
	if !ok {
		httputil.RespondWithError(w, http.StatusNotFound, "Course not found")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "course deleted", "course_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) readInput(w http.ResponseWriter, r *http.Request) (Input, *multipart.FileHeader, bool) {
	form, err := httputil.ReadForm(w, r, h.maxBytes)
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return Input{}, nil, false
	}

	var in Input
	if title, ok := form.Value("title"); ok {
		in.Title = &title
	}
	if description, ok := form.Value("description"); ok {
		in.Description = &description
	}
	return in, form.File("image"), true
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if verr, ok := validation.AsError(err); ok {
		httputil.RespondWithFieldErrors(w, verr.Error(), verr.Fields)
		return
	}
	switch {
	case errors.Is(err, ErrCourseNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "Course not found")
	case errors.Is(err, storage.ErrFileTooLarge):
		httputil.RespondWithFieldErrors(w, storage.ErrFileTooLarge.Error(), map[string]string{"image": storage.ErrFileTooLarge.Error()})
	default:
		h.logger.ErrorContext(r.Context(), "course request failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
