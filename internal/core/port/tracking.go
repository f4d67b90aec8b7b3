package port

import (
	"context"
	"time"

	"github.com/AlexMorrigan04/PilotForce-sub007/internal/core/domain"
	"github.com/google/uuid"
)

// TrackingRepository is an interface to interact with the chunk tracking store.
// Rows are keyed by (bookingID, chunkID) and are never deleted by the pipeline.
type TrackingRepository interface {
	PutChunk(ctx context.Context, rec domain.TrackingRecord) error
	PutManifest(ctx context.Context, rec domain.TrackingRecord) error
	FindManifest(ctx context.Context, bookingID string, sessionID uuid.UUID) (*domain.TrackingRecord, error)
	FindChunks(ctx context.Context, bookingID string, sessionID uuid.UUID) ([]domain.TrackingRecord, error)
	FindPendingManifests(ctx context.Context, updatedBefore time.Time) ([]domain.TrackingRecord, error)
	UpdateChunksUploaded(ctx context.Context, bookingID string, sessionID uuid.UUID, count int) error
	// MarkReassembling transitions pending -> reassembling. The update is
	// conditional on the current status being pending so that at most one
	// reassembly is in flight per session; a lost race returns
	// domain.ErrAlreadyReassembling, ErrSessionFailed or nil rows affected
	// mapped from the row's actual state.
	MarkReassembling(ctx context.Context, bookingID string, sessionID uuid.UUID) error
	MarkCompleted(ctx context.Context, bookingID string, sessionID uuid.UUID, resourceID uuid.UUID, reassembledURL string) error
	MarkFailed(ctx context.Context, bookingID string, sessionID uuid.UUID, errorMessage string) error
}
