package runs

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/de-tools/tagwarden/pkg/adapters"
	"github.com/de-tools/tagwarden/pkg/models/api"
	"github.com/de-tools/tagwarden/pkg/models/domain"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const (
	defaultLimit = 20
	maxLimit     = 500
)

type CleanupRunner interface {
	Run(ctx context.Context) *domain.RunReport
}

type MetricsCollector interface {
	Collect(ctx context.Context) *domain.MetricsReport
}

type History interface {
	List(ctx context.Context, limit int) ([]domain.RunSummary, error)
	Get(ctx context.Context, id string) (*domain.RunSummary, error)
}

type Handler struct {
	cleanup CleanupRunner
	metrics MetricsCollector
	history History
}

func NewHandler(cleanup CleanupRunner, metrics MetricsCollector, history History) *Handler {
	return &Handler{
		cleanup: cleanup,
		metrics: metrics,
		history: history,
	}
}

func (h *Handler) TriggerCleanup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.cleanup == nil {
		writeError(ctx, w, http.StatusServiceUnavailable, "cleanup runs are not configured")
		return
	}

	// A run finishes even if the client goes away.
	run := h.cleanup.Run(context.WithoutCancel(ctx))
	writeJSON(ctx, w, http.StatusOK, adapters.MapCleanupReportDomainToApi(run))
}

func (h *Handler) TriggerMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.metrics == nil {
		writeError(ctx, w, http.StatusServiceUnavailable, "metrics runs are not configured")
		return
	}

	report := h.metrics.Collect(context.WithoutCancel(ctx))
	writeJSON(ctx, w, http.StatusOK, adapters.MapMetricsReportDomainToApi(report))
}

func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.history == nil {
		writeError(ctx, w, http.StatusServiceUnavailable, "run history is not configured")
		return
	}

	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(ctx, w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxLimit)
	}

	summaries, err := h.history.List(ctx, limit)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to list runs")
		writeError(ctx, w, http.StatusInternalServerError, "failed to list runs")
		return
	}

	response := make([]api.RunSummary, 0, len(summaries))
	for _, s := range summaries {
		response = append(response, adapters.MapRunSummaryDomainToApi(s))
	}
	writeJSON(ctx, w, http.StatusOK, response)
}

// GetRun returns the stored report of a single run as it was recorded
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.history == nil {
		writeError(ctx, w, http.StatusServiceUnavailable, "run history is not configured")
		return
	}

	id := chi.URLParam(r, "run")
	summary, err := h.history.Get(ctx, id)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("run_id", id).Msg("failed to load run")
		writeError(ctx, w, http.StatusInternalServerError, "failed to load run")
		return
	}
	if summary == nil {
		writeError(ctx, w, http.StatusNotFound, "run not found")
		return
	}

	if len(summary.Payload) == 0 {
		writeJSON(ctx, w, http.StatusOK, adapters.MapRunSummaryDomainToApi(*summary))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(summary.Payload); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("run_id", id).Msg("failed to write run payload")
	}
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zerolog.Ctx(ctx).Error().
			Err(err).
			Msg("failed to encode response")
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, msg string) {
	writeJSON(ctx, w, status, api.ErrorResponse{Error: msg})
}
