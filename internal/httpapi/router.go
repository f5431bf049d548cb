// Package httpapi exposes the engine operations over HTTP as plain
// request/response JSON. It carries no business logic; every handler parses,
// delegates, and maps the error taxonomy onto status codes.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/vilanovax/wibecur-sub000/internal/analytics"
	"github.com/vilanovax/wibecur-sub000/internal/ranking"
	"github.com/vilanovax/wibecur-sub000/internal/report"
	"github.com/vilanovax/wibecur-sub000/internal/schedule"
	"github.com/vilanovax/wibecur-sub000/internal/service"
)

// Engine is the operation surface the API serves.
type Engine interface {
	ProposeSlot(ctx context.Context, contentID string, start time.Time, end *time.Time, orderIndex int) (schedule.Slot, error)
	EditSlot(ctx context.Context, id string, start time.Time, end *time.Time) (schedule.Slot, error)
	DeleteSlot(ctx context.Context, id string) error
	Board(ctx context.Context, asOf time.Time) (schedule.Board, error)
	CheckConflict(ctx context.Context, window schedule.Interval, excludeID string) (*schedule.ConflictError, error)
	RotationStats(ctx context.Context, asOf time.Time) (service.RotationResult, error)
	Suggest(ctx context.Context, now time.Time) ([]ranking.Suggestion, error)
	AnalyzeSlot(ctx context.Context, slotID string, now time.Time) (analytics.Snapshot, error)
	WeeklyReport(ctx context.Context, weekStart time.Time) (report.Weekly, error)
	CategoryInsights(ctx context.Context, from, to time.Time) (report.Insights, error)
}

// Handler serves the engine operations.
type Handler struct {
	engine Engine
	logger zerolog.Logger
	clock  func() time.Time
}

// NewHandler builds the API handler. clock may be nil and defaults to UTC
// wall time; tests inject a fixed instant.
func NewHandler(engine Engine, logger zerolog.Logger, clock func() time.Time) *Handler {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &Handler{
		engine: engine,
		logger: logger.With().Str("component", "httpapi").Logger(),
		clock:  clock,
	}
}

// NewRouter mounts every route with metrics instrumentation.
func NewRouter(h *Handler, collector *Collector) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if collector != nil {
		r.Method(http.MethodGet, "/metrics", collector.Handler())
	}

	r.Group(func(r chi.Router) {
		if collector != nil {
			r.Use(collector.Middleware)
		}
		r.Route("/api/v1", func(r chi.Router) {
			r.Route("/slots", func(r chi.Router) {
				r.Post("/", h.proposeSlot)
				r.Get("/", h.board)
				r.Route("/{id}", func(r chi.Router) {
					r.Patch("/", h.editSlot)
					r.Delete("/", h.deleteSlot)
					r.Get("/performance", h.analyzeSlot)
				})
			})
			r.Get("/conflicts", h.checkConflict)
			r.Get("/rotation", h.rotationStats)
			r.Get("/suggestions", h.suggest)
			r.Route("/reports", func(r chi.Router) {
				r.Get("/weekly", h.weeklyReport)
				r.Get("/categories", h.categoryInsights)
			})
		})
	})

	return r
}

type slotRequestJSON struct {
	ContentID  string     `json:"content_id"`
	StartAt    time.Time  `json:"start_at"`
	EndAt      *time.Time `json:"end_at"`
	OrderIndex int        `json:"order_index"`
}

func (h *Handler) proposeSlot(w http.ResponseWriter, r *http.Request) {
	var req slotRequestJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
		return
	}
	if req.ContentID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "content_id is required", nil)
		return
	}

	slot, err := h.engine.ProposeSlot(r.Context(), req.ContentID, req.StartAt, req.EndAt, req.OrderIndex)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSlotJSON(slot, ""))
}

func (h *Handler) editSlot(w http.ResponseWriter, r *http.Request) {
	var req slotRequestJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
		return
	}

	slot, err := h.engine.EditSlot(r.Context(), chi.URLParam(r, "id"), req.StartAt, req.EndAt)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSlotJSON(slot, ""))
}

func (h *Handler) deleteSlot(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.DeleteSlot(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) board(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.timeParam(r, "as_of")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}

	board, err := h.engine.Board(r.Context(), asOf)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBoardJSON(board))
}

func (h *Handler) checkConflict(w http.ResponseWriter, r *http.Request) {
	start, err := parseTime(r.URL.Query().Get("start_at"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "start_at must be RFC3339", nil)
		return
	}
	var end *time.Time
	if raw := r.URL.Query().Get("end_at"); raw != "" {
		parsed, err := parseTime(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "end_at must be RFC3339", nil)
			return
		}
		end = &parsed
	}

	window, err := schedule.NewInterval(start, end)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	conflict, err := h.engine.CheckConflict(r.Context(), window, r.URL.Query().Get("exclude_id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conflictCheckJSON{Conflict: toConflictJSON(conflict)})
}

func (h *Handler) rotationStats(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.timeParam(r, "as_of")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}

	result, err := h.engine.RotationStats(r.Context(), asOf)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRotationJSON(result))
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	now, err := h.timeParam(r, "as_of")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}

	suggestions, err := h.engine.Suggest(r.Context(), now)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	out := make([]suggestionJSON, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, toSuggestionJSON(s))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) analyzeSlot(w http.ResponseWriter, r *http.Request) {
	now, err := h.timeParam(r, "as_of")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}

	snap, err := h.engine.AnalyzeSlot(r.Context(), chi.URLParam(r, "id"), now)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotJSON(snap))
}

func (h *Handler) weeklyReport(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("week_start")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "week_start is required", nil)
		return
	}
	weekStart, err := parseTime(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "week_start must be RFC3339", nil)
		return
	}

	weekly, err := h.engine.WeeklyReport(r.Context(), weekStart)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWeeklyJSON(weekly))
}

func (h *Handler) categoryInsights(w http.ResponseWriter, r *http.Request) {
	from, err := parseTime(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "from must be RFC3339", nil)
		return
	}
	to, err := parseTime(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "to must be RFC3339", nil)
		return
	}
	if !from.Before(to) {
		writeError(w, http.StatusBadRequest, "bad_request", "from must be before to", nil)
		return
	}

	insights, err := h.engine.CategoryInsights(r.Context(), from, to)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInsightsJSON(insights))
}

// timeParam reads an optional RFC3339 query parameter, defaulting to the
// handler clock.
func (h *Handler) timeParam(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return h.clock(), nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, errors.New(name + " must be RFC3339")
	}
	return parsed.UTC(), nil
}

func parseTime(raw string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return parsed.UTC(), nil
}

// writeDomainError maps the engine error taxonomy onto HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	var conflict *schedule.ConflictError
	switch {
	case errors.As(err, &conflict):
		writeError(w, http.StatusConflict, "conflict", conflict.Error(), toConflictJSON(conflict))
	case errors.Is(err, schedule.ErrInvalidInterval):
		writeError(w, http.StatusBadRequest, "invalid_interval", err.Error(), nil)
	case errors.Is(err, schedule.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error(), nil)
	default:
		h.logger.Error().Err(err).Msg("operation failed")
		writeError(w, http.StatusInternalServerError, "internal", "internal error", nil)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string, conflict *conflictJSON) {
	writeJSON(w, status, errorResponseJSON{Error: errorJSON{
		Code:     code,
		Message:  message,
		Conflict: conflict,
	}})
}
