package resource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/haniSalm/FAST-E-Learning/internal/httputil"
	"github.com/haniSalm/FAST-E-Learning/internal/metrics"
	"github.com/haniSalm/FAST-E-Learning/internal/storage"
	"github.com/haniSalm/FAST-E-Learning/internal/validation"

	"github.com/go-chi/chi/v5"
)

// CourseChecker is satisfied by course.Repository.
type CourseChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// Files is satisfied by *storage.Uploader.
type Files interface {
	Save(ctx context.Context, prefix string, fh *multipart.FileHeader) (string, error)
	URL(key string) *string
	Remove(ctx context.Context, logger *slog.Logger, keys ...string)
}

// Handler serves list, create and delete for one resource family.
// No endpoint checks ownership or role.
type Handler[T any, PT Entity[T]] struct {
	family    Family
	store     Store[T]
	courses   CourseChecker
	files     Files
	validator *validation.Validator
	metrics   *metrics.Metrics
	logger    *slog.Logger
	maxBytes  int64
}

func NewHandler[T any, PT Entity[T]](family Family, store Store[T], courses CourseChecker, files Files, v *validation.Validator, m *metrics.Metrics, logger *slog.Logger, maxUploadMB int64) *Handler[T, PT] {
	return &Handler[T, PT]{
		family:    family,
		store:     store,
		courses:   courses,
		files:     files,
		validator: v,
		metrics:   m,
		logger:    logger.With("family", family.Segment),
		// image and file may both be at the limit
		maxBytes: 2*(maxUploadMB<<20) + 1<<20,
	}
}

func (h *Handler[T, PT]) RegisterRoutes(r chi.Router) {
	r.Get("/courses/{courseID}/"+h.family.Segment, h.List)
	r.Post("/courses/{courseID}/"+h.family.Segment+"/create", h.Create)
	r.Delete("/"+h.family.Segment+"/{id}/delete", h.Delete)
}

func (h *Handler[T, PT]) List(w http.ResponseWriter, r *http.Request) {
	courseID, ok := httputil.IDParam(r, "courseID")
	if !ok {
		httputil.RespondWithJSON(w, http.StatusOK, []Response{})
		return
	}

	items, err := h.store.ListByCourse(r.Context(), courseID)
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	resp := make([]Response, 0, len(items))
	for i := range items {
		resp = append(resp, h.toResponse(PT(&items[i])))
	}
	httputil.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *Handler[T, PT]) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	courseID, ok := httputil.IDParam(r, "courseID")
	if !ok {
		h.respondInvalidCourse(w, chi.URLParam(r, "courseID"))
		return
	}

	form, err := httputil.ReadForm(w, r, h.maxBytes)
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	in := Input{}
	in.Title, _ = form.Value("title")
	in.Description, _ = form.Value("description")
	in.Title = strings.TrimSpace(in.Title)

	if err := h.validator.Struct(in); err != nil {
		h.handleError(w, r, err)
		return
	}

	exists, err := h.courses.Exists(ctx, courseID)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	if !exists {
		h.respondInvalidCourse(w, chi.URLParam(r, "courseID"))
		return
	}

	item := PT(new(T))
	fields := item.Base()
	fields.Title = in.Title
	fields.Description = in.Description
	fields.CourseID = courseID

	if fields.Image, err = h.save(ctx, h.family.ImagePrefix(), form.File("image")); err != nil {
		h.handleError(w, r, err)
		return
	}
	if fields.File, err = h.save(ctx, h.family.FilePrefix(), form.File("file")); err != nil {
		h.files.Remove(ctx, h.logger, fields.Image)
		h.handleError(w, r, err)
		return
	}

	if err := h.store.Create(ctx, (*T)(item)); err != nil {
		h.files.Remove(ctx, h.logger, fields.Image, fields.File)
		if errors.Is(err, ErrCourseMissing) {
			h.respondInvalidCourse(w, chi.URLParam(r, "courseID"))
			return
		}
		h.internalError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "resource created", "id", fields.ID, "course_id", courseID)
	httputil.RespondWithJSON(w, http.StatusCreated, h.toResponse(item))
}

func (h *Handler[T, PT]) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := httputil.IDParam(r, "id")
	if !ok {
		httputil.RespondWithError(w, http.StatusNotFound, h.family.NotFoundMessage())
		return
	}

	item, err := h.store.GetByID(ctx, id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	if err := h.store.Delete(ctx, id); err != nil {
		h.handleError(w, r, err)
		return
	}

	fields := PT(item).Base()
	h.files.Remove(ctx, h.logger, fields.Image, fields.File)
	h.metrics.Portal.RecordResourceDeleted(ctx, h.family.Segment)

	h.logger.InfoContext(ctx, "resource deleted", "id", id)
	httputil.RespondWithMessage(w, http.StatusOK, h.family.DeletedMessage())
}

func (h *Handler[T, PT]) save(ctx context.Context, prefix string, fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", nil
	}
	key, err := h.files.Save(ctx, prefix, fh)
	if err != nil {
		return "", err
	}
	h.metrics.Portal.RecordUpload(ctx, h.family.Segment)
	return key, nil
}

func (h *Handler[T, PT]) toResponse(item PT) Response {
	fields := item.Base()
	return Response{
		ID:          fields.ID,
		Title:       fields.Title,
		Description: fields.Description,
		Image:       h.files.URL(fields.Image),
		File:        h.files.URL(fields.File),
		Course:      fields.CourseID,
	}
}

func (h *Handler[T, PT]) respondInvalidCourse(w http.ResponseWriter, raw string) {
	msg := fmt.Sprintf("Invalid pk %q - object does not exist.", raw)
	httputil.RespondWithFieldErrors(w, msg, map[string]string{"course": msg})
}

func (h *Handler[T, PT]) handleError(w http.ResponseWriter, r *http.Request, err error) {
	if verr, ok := validation.AsError(err); ok {
		httputil.RespondWithFieldErrors(w, verr.Error(), verr.Fields)
		return
	}
	switch {
	case errors.Is(err, ErrNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, h.family.NotFoundMessage())
	case errors.Is(err, storage.ErrFileTooLarge):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.internalError(w, r, err)
	}
}

func (h *Handler[T, PT]) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "resource request failed", "error", err)
	httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
}
