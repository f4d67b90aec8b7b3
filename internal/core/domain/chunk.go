package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ChunkStatus represents the upload status of a single chunk
type ChunkStatus string

const (
	ChunkStatusUploaded ChunkStatus = "uploaded"
	ChunkStatusFailed   ChunkStatus = "failed"
)

// Chunk represents one contiguous byte range of an original file.
// Chunks are immutable once uploaded.
type Chunk struct {
	SessionID   uuid.UUID
	BookingID   string
	Index       int
	TotalChunks int
	FileName    string
	Size        int64
	Checksum    string
	Status      ChunkStatus
	UploadedAt  time.Time
}

// ChunkFileName derives the object name for one chunk of a file
func ChunkFileName(originalName string, index int) string {
	return fmt.Sprintf("%s.part%d", originalName, index)
}

// ChunkID derives the tracking-store key for one chunk of a session
func ChunkID(sessionID uuid.UUID, index int) string {
	return fmt.Sprintf("%s_%d", sessionID, index)
}

// ManifestID derives the tracking-store key for a session manifest row
func ManifestID(sessionID uuid.UUID) string {
	return fmt.Sprintf("%s_manifest", sessionID)
}
