package session

import (
	"log/slog"

	"github.com/AlexMorrigan04/PilotForce-sub007/internal/core/port"
	"github.com/go-chi/chi/v5"
)

// HandlerV1 is the handler for v1 session routes
type HandlerV1 struct {
	reassemblyService port.ReassemblyService
	logger            *slog.Logger
}

// NewSessionHandlerV1 creates HandlerV1
func NewSessionHandlerV1(service port.ReassemblyService, logger *slog.Logger) *HandlerV1 {
	return &HandlerV1{
		reassemblyService: service,
		logger:            logger,
	}
}

// Routes exposes handler routes
func (h *HandlerV1) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/{bookingID}/{sessionID}/reassemble", h.ReassembleV1)
	router.Get("/{bookingID}/{sessionID}", h.GetSessionV1)

	return router
}
