package recovery

import (
	"log/slog"

	"github.com/AlexMorrigan04/PilotForce-sub007/internal/core/port"
)

// HandlerV1 is the handler for v1 recovery routes
type HandlerV1 struct {
	recoveryService port.RecoveryService
	logger          *slog.Logger
}

// NewRecoveryHandlerV1 creates HandlerV1
func NewRecoveryHandlerV1(service port.RecoveryService, logger *slog.Logger) *HandlerV1 {
	return &HandlerV1{
		recoveryService: service,
		logger:          logger,
	}
}
