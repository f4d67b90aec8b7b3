package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus represents the reassembly status recorded on a session's
// manifest tracking row. A session with chunk rows but no manifest row is
// still uploading; terminal states are never mutated.
type SessionStatus string

const (
	SessionStatusUploading    SessionStatus = "uploading"
	SessionStatusPending      SessionStatus = "pending"
	SessionStatusReassembling SessionStatus = "reassembling"
	SessionStatusCompleted    SessionStatus = "completed"
	SessionStatusFailed       SessionStatus = "failed"
)

// TrackingRecord is one row of the chunk tracking store, keyed by
// (bookingID, chunkID). A row is either a chunk row or a manifest row.
// Rows are never deleted by the pipeline; they remain as the audit trail
// of an upload session.
type TrackingRecord struct {
	BookingID       string
	ChunkID         string
	SessionID       uuid.UUID
	IsChunk         bool
	IsManifest      bool
	ChunkIndex      int
	TotalChunks     int
	FileName        string
	Size            int64
	Checksum        string
	Status          string
	ChunksUploaded  int
	ManifestKey     string
	FinalResourceID *uuid.UUID
	ReassembledURL  string
	ErrorMessage    string
	UploadedAt      *time.Time
	CompletedAt     *time.Time
	FailedAt        *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SessionSummary is the read-model view of one upload session
type SessionSummary struct {
	BookingID       string        `json:"bookingId"`
	SessionID       uuid.UUID     `json:"sessionId"`
	Status          SessionStatus `json:"status"`
	OriginalName    string        `json:"originalFileName"`
	TotalChunks     int           `json:"totalChunks"`
	ChunksUploaded  int           `json:"chunksUploaded"`
	FinalResourceID *uuid.UUID    `json:"finalResourceId,omitempty"`
	ReassembledURL  string        `json:"reassembledUrl,omitempty"`
	ErrorMessage    string        `json:"errorMessage,omitempty"`
}
