package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hyeonwoo-dev/item-simulator/internal/domain/apperr"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *APIServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// writeError owns the kind-to-status mapping. Anything outside the closed
// taxonomy is a storage or programming failure: logged in full, surfaced as
// a generic 500 without internal detail.
func (s *APIServer) writeError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		s.logger.Error("internal error", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}

	s.logger.Debug("request rejected",
		slog.String("kind", kind.String()),
		slog.String("reason", err.Error()),
	)
	s.writeJSON(w, statusOf(kind), errorResponse{Error: err.Error()})
}

func statusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindInvalidArgument, apperr.KindInsufficientFunds,
		apperr.KindInsufficientStock, apperr.KindInvalidItemStats:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
