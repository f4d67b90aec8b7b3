package storageevent

import (
	"log/slog"

	"github.com/AlexMorrigan04/PilotForce-sub007/internal/core/port"
)

type storageEventService struct {
	storage     port.ObjectStorage
	reassembler port.ReassemblyService
	logger      *slog.Logger
}

// NewStorageEventService creates a handler for bucket notifications
func NewStorageEventService(storage port.ObjectStorage, reassembler port.ReassemblyService, logger *slog.Logger) port.MessageService {
	return &storageEventService{
		storage:     storage,
		reassembler: reassembler,
		logger:      logger,
	}
}
