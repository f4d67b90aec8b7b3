package domain

import (
	"time"

	"github.com/google/uuid"
)

// Resource is the catalog record for a reassembled file. It is created
// exactly once per successful reassembly and is immutable thereafter.
type Resource struct {
	ID           uuid.UUID
	BookingID    string
	SessionID    uuid.UUID
	FileName     string
	ContentType  string
	ResourceType string
	StorageKey   string
	URL          string
	Size         int64
	CreatedAt    time.Time
}
