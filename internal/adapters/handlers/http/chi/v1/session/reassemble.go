package session

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AlexMorrigan04/PilotForce-sub007/internal/core/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type V1ReassembleResponse struct {
	ResourceID     uuid.UUID `json:"resource_id"`
	ReassembledURL string    `json:"reassembled_url"`
	Warning        string    `json:"warning,omitempty"`
}

func (h *HandlerV1) ReassembleV1(w http.ResponseWriter, r *http.Request) {
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

	resource, err := h.reassemblyService.Reassemble(r.Context(), bookingID, sessionID)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	case errors.Is(err, domain.ErrAlreadyReassembling):
		http.Error(w, "Reassembly already in progress", http.StatusConflict)
		return
	case errors.Is(err, domain.ErrSessionFailed):
		http.Error(w, "Session failed, retry with a new upload", http.StatusGone)
		return
	case errors.Is(err, domain.ErrNoChunksFound),
		errors.Is(err, domain.ErrMissingChunks),
		errors.Is(err, domain.ErrDuplicateChunk),
		errors.Is(err, domain.ErrSizeMismatch):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	case errors.Is(err, domain.ErrCorruptOutput):
		// the merge completed; surface the format warning alongside the resource
		writeReassembleResponse(w, h, resource, err.Error())
		return
	case err != nil:
		h.logger.Error("error reassembling session", "error", err)
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	case resource == nil:
		h.logger.Error("resource is nil after reassembly")
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	default:
		writeReassembleResponse(w, h, resource, "")
		return
	}
}

func writeReassembleResponse(w http.ResponseWriter, h *HandlerV1, resource *domain.Resource, warning string) {
	resp := V1ReassembleResponse{
		ResourceID:     resource.ID,
		ReassembledURL: resource.URL,
		Warning:        warning,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("error encoding response", "error", err)
	}
}
