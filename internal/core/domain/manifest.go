package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ManifestChunk describes one chunk inside a manifest
type ManifestChunk struct {
	Index    int    `json:"index" validate:"gte=0"`
	FileName string `json:"fileName" validate:"required"`
	Size     int64  `json:"size" validate:"gt=0"`
	Checksum string `json:"checksum"`
}

// Manifest is the authoritative description of how chunks reconstruct the
// original file. It is written to object storage only after every chunk of
// the session has a confirmed upload.
type Manifest struct {
	SessionID        uuid.UUID       `json:"sessionId" validate:"required"`
	BookingID        string          `json:"bookingId" validate:"required"`
	OriginalFileName string          `json:"originalFileName" validate:"required"`
	FileSize         int64           `json:"fileSize" validate:"gt=0"`
	MimeType         string          `json:"mimeType"`
	TotalChunks      int             `json:"totalChunks" validate:"gt=0"`
	Chunks           []ManifestChunk `json:"chunks" validate:"required,dive"`
	Created          time.Time       `json:"created"`
}

var manifestValidate = validator.New()

// Validate checks field presence plus the ordering invariant: chunk
// descriptors must cover exactly the indices [0, totalChunks) in order,
// with no gaps or duplicates.
func (m *Manifest) Validate() error {
	if err := manifestValidate.Struct(m); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}
	if len(m.Chunks) != m.TotalChunks {
		return fmt.Errorf("%w: %d chunk descriptors for totalChunks=%d",
			ErrInvalidManifest, len(m.Chunks), m.TotalChunks)
	}
	var sum int64
	for i, c := range m.Chunks {
		if c.Index != i {
			return fmt.Errorf("%w: descriptor at position %d has index %d",
				ErrInvalidManifest, i, c.Index)
		}
		sum += c.Size
	}
	if sum != m.FileSize {
		return fmt.Errorf("%w: chunk sizes sum to %d, fileSize is %d",
			ErrInvalidManifest, sum, m.FileSize)
	}
	return nil
}

// ManifestKey derives the object-store key for a session manifest
func ManifestKey(bookingID, originalName string) string {
	return fmt.Sprintf("%s/%s_manifest.json", bookingID, originalName)
}

// ParseManifest decodes and validates a manifest JSON document
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}
