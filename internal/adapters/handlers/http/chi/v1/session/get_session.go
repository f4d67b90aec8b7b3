package session

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AlexMorrigan04/PilotForce-sub007/internal/core/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (h *HandlerV1) GetSessionV1(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingID")
	if bookingID == "" {
		http.Error(w, "Booking ID is required", http.StatusBadRequest)
		return
	}
	sessionID, parseErr := uuid.Parse(chi.URLParam(r, "sessionID"))
	if parseErr != nil {
		http.Error(w, parseErr.Error(), http.StatusBadRequest)
		return
	}

	summary, err := h.reassemblyService.Session(r.Context(), bookingID, sessionID)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	case err != nil:
		h.logger.Error("error fetching session", "error", err)
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	default:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(summary); err != nil {
			h.logger.Error("error encoding response", "error", err)
		}
		return
	}
}
