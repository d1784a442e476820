package public

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"log/slog"

	"safetyshare/internal/domain"
	"safetyshare/internal/middleware"
	"safetyshare/pkg/validator"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

//go:generate mockgen -source=handlers.go -destination=mocks/mock.go
type DetectionRunner interface {
	Detect(ctx context.Context, req domain.DetectRequest) (domain.DetectResponse, error)
}

type HazardReporter interface {
	Report(ctx context.Context, req domain.ReportHazardRequest) (uuid.UUID, error)
	Nearby(ctx context.Context, req domain.NearbyRequest) ([]domain.AnnotatedHazard, error)
}

type HazardValidator interface {
	Validate(ctx context.Context, req domain.ValidateRequest) (*domain.Hazard, error)
	History(ctx context.Context, hazardID uuid.UUID) ([]domain.Vote, error)
}

type Handler struct {
	logger    *slog.Logger
	Detection DetectionRunner
	Hazards   HazardReporter
	Validator HazardValidator
}

func NewHandler(logger *slog.Logger, detection DetectionRunner, hazards HazardReporter, hazardValidator HazardValidator) *Handler {
	return &Handler{
		logger:    logger,
		Detection: detection,
		Hazards:   hazards,
		Validator: hazardValidator,
	}
}

func (h *Handler) Detect(w http.ResponseWriter, r *http.Request) {
	var req domain.DetectRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	if err := validator.ValidateStruct(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	resp, err := h.Detection.Detect(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing identity"})
		return
	}

	var req domain.ReportHazardRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	req.ReportedBy = userID

	if err := validator.ValidateStruct(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	id, err := h.Hazards.Report(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.log(r).Info("hazard reported", slog.String("hazard_id", id.String()))
	h.writeJSON(w, http.StatusCreated, map[string]string{"id": id.String()})
}

func (h *Handler) Nearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(q.Get("lng"), 64)
	if errLat != nil || errLng != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "lat and lng query params are required"})
		return
	}

	req := domain.NearbyRequest{
		Location: domain.Coordinate{Lat: lat, Lng: lng},
	}
	if raw := q.Get("radius_km"); raw != "" {
		radius, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid radius_km"})
			return
		}
		req.RadiusKm = radius
	}

	hazards, err := h.Hazards.Nearby(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"hazards": hazards,
		"count":   len(hazards),
	})
}

func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing identity"})
		return
	}

	hazardID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid hazard id"})
		return
	}

	var req domain.ValidateRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	req.HazardID = hazardID
	req.UserID = userID
	req.Role = role

	if err := validator.ValidateStruct(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	hazard, err := h.Validator.Validate(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, hazard)
}

func (h *Handler) ValidationHistory(w http.ResponseWriter, r *http.Request) {
	hazardID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid hazard id"})
		return
	}

	votes, err := h.Validator.History(r.Context(), hazardID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"votes": votes,
		"count": len(votes),
	})
}

// decodeJSON rejects unknown fields and trailing garbage after the first
// object. Returns false after writing the 400 itself.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, target any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(target); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return false
	}
	return true
}
