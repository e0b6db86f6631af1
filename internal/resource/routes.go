package resource

import (
	"log/slog"

	"github.com/haniSalm/FAST-E-Learning/internal/metrics"
	"github.com/haniSalm/FAST-E-Learning/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

type Deps struct {
	DB          bun.IDB
	Courses     CourseChecker
	Files       Files
	Validator   *validation.Validator
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
	MaxUploadMB int64
}

// RegisterAll mounts the four resource families on r.
func RegisterAll(r chi.Router, d Deps) {
	mount[Assignment](r, Assignments, d)
	mount[Quizz](r, Quizzes, d)
	mount[PastPaper](r, PastPapers, d)
	mount[CourseMaterial](r, CourseMaterials, d)
}

func mount[T any, PT Entity[T]](r chi.Router, family Family, d Deps) {
	repo := NewRepository[T, PT](d.DB, family, d.Metrics)
	NewHandler[T, PT](family, repo, d.Courses, d.Files, d.Validator, d.Metrics, d.Logger, d.MaxUploadMB).
		RegisterRoutes(r)
}
