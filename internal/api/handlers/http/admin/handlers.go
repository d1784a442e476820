package admin

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"safetyshare/internal/domain"
	"safetyshare/pkg/validator"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

//go:generate mockgen -source=handlers.go -destination=mocks/mock.go
type AdminHazards interface {
	List(ctx context.Context, page, limit int) ([]*domain.Hazard, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Hazard, error)
	Update(ctx context.Context, id uuid.UUID, req domain.UpdateHazardRequest) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type StatsGetter interface {
	GetStats(ctx context.Context, req domain.StatsRequest) (*domain.DetectionStats, error)
}

type Handler struct {
	logger *slog.Logger
	Admin  AdminHazards
	Stats  StatsGetter
}

func NewHandler(logger *slog.Logger, admin AdminHazards, stats StatsGetter) *Handler {
	return &Handler{
		logger: logger,
		Admin:  admin,
		Stats:  stats,
	}
}

func (h *Handler) log(r *http.Request) *slog.Logger {
	reqID := chimw.GetReqID(r.Context())
	if reqID == "" {
		return h.logger
	}
	return h.logger.With(slog.String("request_id", reqID))
}

func (h *Handler) HazardList(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("HazardList", slog.String("query", r.URL.RawQuery), slog.String("remote", r.RemoteAddr))

	page := parseInt(r.URL.Query().Get("page"), 1)
	limit := parseInt(r.URL.Query().Get("limit"), 20)
	if limit > 100 {
		limit = 100
		l.Warn("limit capped", slog.Int("limit", limit))
	}

	hazards, total, err := h.Admin.List(r.Context(), page, limit)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("hazards listed", slog.Int("count", len(hazards)), slog.Int64("total", total))
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hazards": hazards,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

func (h *Handler) HazardGet(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("HazardGet", slog.String("remote", r.RemoteAddr))

	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		l.Warn("invalid id", slog.String("id", idStr), slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	hazard, err := h.Admin.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, hazard)
}

func (h *Handler) HazardUpdate(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("HazardUpdate", slog.String("remote", r.RemoteAddr))

	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		l.Warn("invalid id", slog.String("id", idStr), slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req domain.UpdateHazardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		l.Warn("invalid JSON", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if err := validator.ValidateStruct(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if err := h.Admin.Update(r.Context(), id, req); err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("hazard updated", slog.String("id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HazardDelete(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("HazardDelete", slog.String("remote", r.RemoteAddr))

	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		l.Warn("invalid id", slog.String("id", idStr), slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.Admin.Delete(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("hazard deleted", slog.String("id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DetectionStats(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("DetectionStats", slog.String("query", r.URL.RawQuery), slog.String("remote", r.RemoteAddr))

	minutesStr := r.URL.Query().Get("minutes")
	if minutesStr == "" {
		minutesStr = "60"
	}

	minutes, err := strconv.Atoi(minutesStr)
	if err != nil || minutes <= 0 || minutes > 1440 {
		l.Warn("invalid minutes", slog.String("minutes", minutesStr))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "minutes must be 1-1440"})
		return
	}

	stats, err := h.Stats.GetStats(r.Context(), domain.StatsRequest{Minutes: minutes})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("stats success", slog.Int("minutes", minutes))
	h.writeJSON(w, http.StatusOK, stats)
}
