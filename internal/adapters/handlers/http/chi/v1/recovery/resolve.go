package recovery

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AlexMorrigan04/PilotForce-sub007/internal/core/domain"
)

type V1ResolveRequest struct {
	URL string `json:"url"`
}

type V1ResolveResponse struct {
	ResolvedURL string `json:"resolved_url"`
}

func (h *HandlerV1) ResolveV1(w http.ResponseWriter, r *http.Request) {
	var req V1ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("error decoding resolve request", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.URL == "" {
		http.Error(w, "URL is required", http.StatusBadRequest)
		return
	}

	resolved, err := h.recoveryService.Resolve(r.Context(), req.URL)
	switch {
	case errors.Is(err, domain.ErrResourceUnavailable):
		http.Error(w, "No working URL found", http.StatusNotFound)
		return
	case err != nil:
		h.logger.Error("error resolving URL", "error", err)
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	default:
		resp := V1ResolveResponse{ResolvedURL: resolved}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			h.logger.Error("error encoding response", "error", err)
		}
		return
	}
}
