package public

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"safetyshare/pkg/e"

	chimw "github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	l := h.log(r)

	var status int
	var msg string
	switch {
	case errors.Is(err, e.ErrNotFound):
		status, msg = http.StatusNotFound, "hazard not found"
	case errors.Is(err, e.ErrTooFar):
		status, msg = http.StatusBadRequest, "too far from hazard to validate"
	case errors.Is(err, e.ErrInvalidAction):
		status, msg = http.StatusBadRequest, "invalid validation action"
	case errors.Is(err, e.ErrNotAuthorized):
		status, msg = http.StatusForbidden, "reporters cannot validate their own hazard"
	case errors.Is(err, e.ErrAlreadyVoted):
		status, msg = http.StatusConflict, "already voted on this hazard"
	case errors.Is(err, e.ErrAlreadyTerminal):
		status, msg = http.StatusConflict, "hazard is already resolved or expired"
	case errors.Is(err, e.ErrDuplicateHazard):
		status, msg = http.StatusConflict, "similar hazard already reported nearby"
	case errors.Is(err, e.ErrInvalidCoordinates):
		status, msg = http.StatusBadRequest, "invalid coordinates"
	case errors.Is(err, e.ErrInvalidUserID):
		status, msg = http.StatusBadRequest, "invalid user_id"
	case errors.Is(err, e.ErrInvalidInput):
		status, msg = http.StatusBadRequest, "invalid input"
	case errors.Is(err, e.ErrConflict):
		status, msg = http.StatusConflict, "conflict"
	case errors.Is(err, e.ErrDependencyUnavailable):
		status, msg = http.StatusServiceUnavailable, "hazard data temporarily unavailable"
	default:
		status, msg = http.StatusInternalServerError, "internal error"
	}

	if status >= 500 {
		l.Error("handler error",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
	}

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *Handler) log(r *http.Request) *slog.Logger {
	reqID := chimw.GetReqID(r.Context())
	if reqID == "" {
		return h.logger
	}
	return h.logger.With(slog.String("request_id", reqID))
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("json encode failed", slog.Any("error", err))
	}
}
