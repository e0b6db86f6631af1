package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/haniSalm/FAST-E-Learning/internal/httputil"
	"github.com/haniSalm/FAST-E-Learning/internal/metrics"

	"github.com/go-chi/chi/v5"
)

const checkTimeout = 2 * time.Second

// Pinger is a readiness dependency, e.g. *bun.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	deps    map[string]Pinger
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewHandler(deps map[string]Pinger, m *metrics.Metrics, logger *slog.Logger) *Handler {
	return &Handler{
		deps:    deps,
		metrics: m,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
}

type Response struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.RespondWithJSON(w, http.StatusOK, Response{Status: "ok"})
}

// Ready answers 503 while any dependency fails its ping.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	resp := Response{Status: "ready", Checks: make(map[string]string, len(h.deps))}
	code := http.StatusOK

	for name, dep := range h.deps {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		start := time.Now()
		err := dep.PingContext(ctx)
		cancel()

		h.metrics.Health.RecordDependencyCheck(r.Context(), name, time.Since(start), err)

		if err != nil {
			h.logger.WarnContext(r.Context(), "dependency not ready", "dependency", name, "error", err)
			resp.Checks[name] = "down"
			resp.Status = "not ready"
			code = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "up"
	}

	httputil.RespondWithJSON(w, code, resp)
}
