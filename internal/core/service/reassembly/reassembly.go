package reassembly

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/AlexMorrigan04/PilotForce-sub007/internal/config"
	"github.com/AlexMorrigan04/PilotForce-sub007/internal/core/domain"
	"github.com/AlexMorrigan04/PilotForce-sub007/internal/core/port"
	"github.com/AlexMorrigan04/PilotForce-sub007/internal/metrics"
	"github.com/google/uuid"
)

type reassemblyService struct {
	storage port.ObjectStorage
	uow     port.UnitOfWork
	cfg     config.ReassemblyConfig
	logger  *slog.Logger
}

// NewReassemblyService creates a new reassembly service
func NewReassemblyService(uow port.UnitOfWork, storage port.ObjectStorage, cfg config.ReassemblyConfig, logger *slog.Logger) port.ReassemblyService {
	return &reassemblyService{storage: storage, uow: uow, cfg: cfg, logger: logger}
}

// Reassemble merges a session's uploaded chunks into one object.
//
// Re-running on a completed session is a no-op returning the existing
// resource. A failed session is terminal: retrying means starting a new
// session. Concurrent runs are serialized through the conditional
// pending -> reassembling transition on the manifest row.
//
// When the merged object fails the TIFF magic-number check, the merge still
// completes (object written, session completed) and the resource is returned
// together with domain.ErrCorruptOutput so callers can flag the output as
// suspect.
func (s *reassemblyService) Reassemble(ctx context.Context, bookingID string, sessionID uuid.UUID) (*domain.Resource, error) {

	manifest, err := s.uow.TrackingRepo().FindManifest(ctx, bookingID, sessionID)
	if err != nil {
		return nil, err
	}

	switch domain.SessionStatus(manifest.Status) {
	case domain.SessionStatusCompleted:
		return completedResource(manifest), nil
	case domain.SessionStatusReassembling:
		return nil, domain.ErrAlreadyReassembling
	case domain.SessionStatusFailed:
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionFailed, manifest.ErrorMessage)
	}

	if err := s.uow.TrackingRepo().MarkReassembling(ctx, bookingID, sessionID); err != nil {
		return nil, err
	}

	resource, err := s.merge(ctx, bookingID, sessionID, manifest)
	if err != nil {
		s.fail(ctx, bookingID, sessionID, err)
		metrics.Reassemblies.WithLabelValues("failed").Inc()
		return nil, err
	}

	metrics.Reassemblies.WithLabelValues("completed").Inc()
	metrics.ReassemblyBytes.Add(float64(resource.Size))

	if magicErr := checkTIFFMagic(ctx, s.storage, resource.StorageKey); magicErr != nil {
		metrics.Reassemblies.WithLabelValues("corrupt").Inc()
		s.logger.Warn("reassembled object failed format check",
			"bookingID", bookingID, "sessionID", sessionID.String(), "key", resource.StorageKey)
		return resource, magicErr
	}
	return resource, nil
}

// Session returns the read-model summary of one session
func (s *reassemblyService) Session(ctx context.Context, bookingID string, sessionID uuid.UUID) (*domain.SessionSummary, error) {
	chunks, err := s.uow.TrackingRepo().FindChunks(ctx, bookingID, sessionID)
	if err != nil {
		return nil, err
	}

	uploaded := 0
	for _, c := range chunks {
		if c.Status == string(domain.ChunkStatusUploaded) {
			uploaded++
		}
	}

	manifest, err := s.uow.TrackingRepo().FindManifest(ctx, bookingID, sessionID)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return nil, err
		}
		if len(chunks) == 0 {
			return nil, domain.ErrSessionNotFound
		}
		// chunks trickling in, manifest barrier not yet reached
		return &domain.SessionSummary{
			BookingID:      bookingID,
			SessionID:      sessionID,
			Status:         domain.SessionStatusUploading,
			TotalChunks:    chunks[0].TotalChunks,
			ChunksUploaded: uploaded,
		}, nil
	}

	return &domain.SessionSummary{
		BookingID:       bookingID,
		SessionID:       sessionID,
		Status:          domain.SessionStatus(manifest.Status),
		OriginalName:    manifest.FileName,
		TotalChunks:     manifest.TotalChunks,
		ChunksUploaded:  uploaded,
		FinalResourceID: manifest.FinalResourceID,
		ReassembledURL:  manifest.ReassembledURL,
		ErrorMessage:    manifest.ErrorMessage,
	}, nil
}

func (s *reassemblyService) merge(ctx context.Context, bookingID string, sessionID uuid.UUID, manifestRow *domain.TrackingRecord) (*domain.Resource, error) {

	chunks, err := s.collectChunks(ctx, bookingID, sessionID, manifestRow.TotalChunks)
	if err != nil {
		return nil, err
	}

	var merged bytes.Buffer
	merged.Grow(int(manifestRow.Size))
	for _, chunk := range chunks {
		key := fmt.Sprintf("%s/%s", bookingID, chunk.FileName)
		// stat before fetch: a truncated or overwritten chunk object fails
		// the session without pulling a single byte
		if chunk.Size > 0 {
			stored, err := s.storage.ObjectSize(ctx, key)
			if err != nil {
				return nil, fmt.Errorf("failed to stat chunk %d (%s): %w", chunk.ChunkIndex, key, err)
			}
			if stored != chunk.Size {
				return nil, fmt.Errorf("%w: chunk %d object is %d bytes, uploader recorded %d",
					domain.ErrSizeMismatch, chunk.ChunkIndex, stored, chunk.Size)
			}
		}
		if err := s.fetchChunk(ctx, key, &merged); err != nil {
			return nil, fmt.Errorf("failed to fetch chunk %d (%s): %w", chunk.ChunkIndex, key, err)
		}
	}

	if manifestRow.Size > 0 && int64(merged.Len()) != manifestRow.Size {
		return nil, fmt.Errorf("%w: reassembled %d bytes, manifest declares %d",
			domain.ErrSizeMismatch, merged.Len(), manifestRow.Size)
	}

	resourceID := uuid.New()
	outputKey := mergedObjectKey(bookingID, resourceID, manifestRow.FileName)
	size := int64(merged.Len())

	if err := s.storage.PutObject(ctx, outputKey, &merged, size, "image/tiff"); err != nil {
		return nil, fmt.Errorf("failed to write merged object %s: %w", outputKey, err)
	}

	url, _, err := s.storage.GeneratePresignedURLForDownload(ctx, outputKey)
	if err != nil {
		return nil, fmt.Errorf("failed to presign merged object %s: %w", outputKey, err)
	}

	resource := domain.Resource{
		ID:           resourceID,
		BookingID:    bookingID,
		SessionID:    sessionID,
		FileName:     cleanFileName(manifestRow.FileName),
		ContentType:  "image/tiff",
		ResourceType: "geotiff",
		StorageKey:   outputKey,
		URL:          url,
		Size:         size,
		CreatedAt:    time.Now().UTC(),
	}

	txErr := s.uow.Execute(ctx, func(uow port.UnitOfWork) error {
		if err := uow.ResourceRepo().Create(ctx, resource); err != nil {
			return err
		}
		return uow.TrackingRepo().MarkCompleted(ctx, bookingID, sessionID, resourceID, url)
	})
	if txErr != nil {
		return nil, fmt.Errorf("failed to finalize reassembly for session %s: %w", sessionID, txErr)
	}

	s.logger.Info("session reassembled",
		"bookingID", bookingID,
		"sessionID", sessionID.String(),
		"resourceID", resourceID.String(),
		"key", outputKey,
		"size", size,
	)
	return &resource, nil
}

// collectChunks loads the session's uploaded chunk rows and verifies the
// index set is exactly [0, totalChunks): fail fast before any byte is
// fetched if an index is missing or duplicated.
func (s *reassemblyService) collectChunks(ctx context.Context, bookingID string, sessionID uuid.UUID, totalChunks int) ([]domain.TrackingRecord, error) {
	rows, err := s.uow.TrackingRepo().FindChunks(ctx, bookingID, sessionID)
	if err != nil {
		return nil, err
	}

	uploaded := make([]domain.TrackingRecord, 0, totalChunks)
	seen := make(map[int]bool, totalChunks)
	for _, row := range rows {
		if row.Status != string(domain.ChunkStatusUploaded) {
			continue
		}
		if seen[row.ChunkIndex] {
			return nil, fmt.Errorf("%w: index %d appears more than once in session %s",
				domain.ErrDuplicateChunk, row.ChunkIndex, sessionID)
		}
		seen[row.ChunkIndex] = true
		uploaded = append(uploaded, row)
	}

	if len(uploaded) == 0 {
		return nil, fmt.Errorf("%w %s", domain.ErrNoChunksFound, sessionID)
	}

	var missing []string
	for i := 0; i < totalChunks; i++ {
		if !seen[i] {
			missing = append(missing, fmt.Sprintf("%d", i))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: session %s missing indices [%s], have %d of %d",
			domain.ErrMissingChunks, sessionID, strings.Join(missing, ","), len(uploaded), totalChunks)
	}

	// byte order is index order, never arrival order
	sort.Slice(uploaded, func(i, j int) bool {
		return uploaded[i].ChunkIndex < uploaded[j].ChunkIndex
	})
	return uploaded, nil
}

func (s *reassemblyService) fetchChunk(ctx context.Context, key string, dst *bytes.Buffer) error {
	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	obj, err := s.storage.GetObject(fetchCtx, key)
	if err != nil {
		return err
	}
	defer obj.Close()

	if _, err := io.Copy(dst, obj); err != nil {
		return err
	}
	return nil
}

// fail records the terminal failed state. The original error is what the
// caller surfaces; recording is best effort.
func (s *reassemblyService) fail(ctx context.Context, bookingID string, sessionID uuid.UUID, cause error) {
	err := s.uow.TrackingRepo().MarkFailed(context.WithoutCancel(ctx), bookingID, sessionID, cause.Error())
	if err != nil {
		s.logger.Error("failed to record reassembly failure",
			"bookingID", bookingID, "sessionID", sessionID.String(), "error", err)
	}
}

func completedResource(manifest *domain.TrackingRecord) *domain.Resource {
	res := &domain.Resource{
		BookingID:    manifest.BookingID,
		SessionID:    manifest.SessionID,
		FileName:     cleanFileName(manifest.FileName),
		ContentType:  "image/tiff",
		ResourceType: "geotiff",
		URL:          manifest.ReassembledURL,
		Size:         manifest.Size,
	}
	if manifest.FinalResourceID != nil {
		res.ID = *manifest.FinalResourceID
	}
	return res
}

// mergedObjectKey builds the output key
// <bookingID>/reassembled_geotiff_<timestamp>_<shortID>_<fileName>
func mergedObjectKey(bookingID string, resourceID uuid.UUID, fileName string) string {
	shortID := strings.ReplaceAll(resourceID.String(), "-", "")[:8]
	return fmt.Sprintf("%s/reassembled_geotiff_%d_%s_%s",
		bookingID, time.Now().Unix(), shortID, cleanFileName(fileName))
}

// cleanFileName strips a stray .partN suffix and guarantees a TIFF extension
func cleanFileName(name string) string {
	if i := strings.LastIndex(strings.ToLower(name), ".part"); i > 0 {
		name = name[:i]
	}
	lower := strings.ToLower(name)
	if !strings.HasSuffix(lower, ".tif") && !strings.HasSuffix(lower, ".tiff") {
		name += ".tif"
	}
	return name
}

// checkTIFFMagic reads the first bytes of the merged object and verifies the
// TIFF header (II*\0 little endian or MM\0* big endian)
func checkTIFFMagic(ctx context.Context, storage port.ObjectStorage, key string) error {
	header, err := storage.GetHeaderBytes(ctx, key, 4)
	if err != nil {
		return fmt.Errorf("%w: could not read header of %s: %w", domain.ErrCorruptOutput, key, err)
	}
	if len(header) >= 4 {
		le := header[0] == 'I' && header[1] == 'I' && header[2] == 0x2A && header[3] == 0x00
		be := header[0] == 'M' && header[1] == 'M' && header[2] == 0x00 && header[3] == 0x2A
		if le || be {
			return nil
		}
	}
	return fmt.Errorf("%w: %s has no TIFF byte-order header", domain.ErrCorruptOutput, key)
}
