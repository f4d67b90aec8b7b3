package port

import (
	"context"
	"io"
	"time"

	"github.com/AlexMorrigan04/PilotForce-sub007/internal/core/domain"
	"github.com/google/uuid"
)

// UploadService splits a file into chunks, uploads them and the manifest,
// and mirrors upload status into the tracking store.
type UploadService interface {
	Upload(ctx context.Context, bookingID, fileName, mimeType string, src io.ReaderAt, fileSize int64) (uuid.UUID, error)
}

// ReassemblyService merges uploaded chunks into a single object once a
// session's manifest is present and complete.
type ReassemblyService interface {
	Reassemble(ctx context.Context, bookingID string, sessionID uuid.UUID) (*domain.Resource, error)
	Session(ctx context.Context, bookingID string, sessionID uuid.UUID) (*domain.SessionSummary, error)
}

// RecoveryService resolves a working retrieval URL when the originally
// generated one fails. Resolutions are best effort, never fabricated.
type RecoveryService interface {
	Resolve(ctx context.Context, originalURL string) (string, error)
}

// SweepService periodically re-checks pending sessions and kicks reassembly
// for the ones whose chunk sets are complete.
type SweepService interface {
	SweepPending(ctx context.Context, now time.Time) error
}
