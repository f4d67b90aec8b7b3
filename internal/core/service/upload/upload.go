package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/AlexMorrigan04/PilotForce-sub007/internal/config"
	"github.com/AlexMorrigan04/PilotForce-sub007/internal/core/domain"
	"github.com/AlexMorrigan04/PilotForce-sub007/internal/core/port"
	"github.com/AlexMorrigan04/PilotForce-sub007/internal/core/service/split"
	"github.com/AlexMorrigan04/PilotForce-sub007/internal/metrics"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type uploadService struct {
	storage port.ObjectStorage
	uow     port.UnitOfWork
	cfg     config.UploadConfig
	logger  *slog.Logger
}

// NewUploadService creates a new upload service
func NewUploadService(uow port.UnitOfWork, storage port.ObjectStorage, cfg config.UploadConfig, logger *slog.Logger) port.UploadService {
	return &uploadService{storage: storage, uow: uow, cfg: cfg, logger: logger}
}

// Upload splits src into chunks, uploads them concurrently and, once every
// chunk write is confirmed, writes the manifest object plus its pending
// tracking row. The manifest write is a strict barrier: if any chunk fails
// after retries, no manifest is written and the session stays incomplete.
func (u *uploadService) Upload(ctx context.Context, bookingID, fileName, mimeType string, src io.ReaderAt, fileSize int64) (uuid.UUID, error) {

	spans, err := split.Plan(fileSize, u.cfg.ChunkSize)
	if err != nil {
		return uuid.Nil, err
	}

	sessionID := uuid.New()
	descriptors := make([]domain.ManifestChunk, len(spans))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.cfg.Parallelism)

	for _, span := range spans {
		g.Go(func() error {
			desc, chunkErr := u.uploadChunk(gctx, bookingID, sessionID, fileName, src, span, len(spans))
			if chunkErr != nil {
				return chunkErr
			}
			descriptors[span.Index] = *desc
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return uuid.Nil, err
	}

	manifest := domain.Manifest{
		SessionID:        sessionID,
		BookingID:        bookingID,
		OriginalFileName: fileName,
		FileSize:         fileSize,
		MimeType:         mimeType,
		TotalChunks:      len(spans),
		Chunks:           descriptors,
		Created:          time.Now().UTC(),
	}
	if err := u.writeManifest(ctx, &manifest); err != nil {
		return uuid.Nil, err
	}

	u.logger.Info("upload session complete, awaiting reassembly",
		"bookingID", bookingID,
		"sessionID", sessionID.String(),
		"totalChunks", len(spans),
	)
	return sessionID, nil
}

func (u *uploadService) uploadChunk(ctx context.Context, bookingID string, sessionID uuid.UUID, fileName string, src io.ReaderAt, span split.Span, totalChunks int) (*domain.ManifestChunk, error) {

	data, err := split.ReadSpan(src, span)
	if err != nil {
		return nil, err
	}

	chunkName := domain.ChunkFileName(fileName, span.Index)
	key := fmt.Sprintf("%s/%s", bookingID, chunkName)
	checksum := split.Checksum(data)

	policy := backoff.WithContext(
		backoff.WithMaxRetries(u.newBackOff(), u.cfg.MaxRetries), ctx)

	err = backoff.Retry(func() error {
		return u.storage.PutObject(ctx, key, bytes.NewReader(data), span.Size, "application/octet-stream")
	}, policy)
	if err != nil {
		metrics.ChunkUploads.WithLabelValues("failed").Inc()
		u.recordChunkFailure(ctx, bookingID, sessionID, span, chunkName, checksum, totalChunks, err)
		return nil, fmt.Errorf("%w: chunk %d of session %s: %w", domain.ErrChunkUploadFailed, span.Index, sessionID, err)
	}

	now := time.Now().UTC()
	rec := domain.TrackingRecord{
		BookingID:   bookingID,
		ChunkID:     domain.ChunkID(sessionID, span.Index),
		SessionID:   sessionID,
		IsChunk:     true,
		ChunkIndex:  span.Index,
		TotalChunks: totalChunks,
		FileName:    chunkName,
		Size:        span.Size,
		Checksum:    checksum,
		Status:      string(domain.ChunkStatusUploaded),
		UploadedAt:  &now,
	}
	if err := u.uow.TrackingRepo().PutChunk(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to record chunk %d upload: %w", span.Index, err)
	}

	metrics.ChunkUploads.WithLabelValues("uploaded").Inc()
	return &domain.ManifestChunk{
		Index:    span.Index,
		FileName: chunkName,
		Size:     span.Size,
		Checksum: checksum,
	}, nil
}

// recordChunkFailure writes the terminal failed row for a chunk. The write is
// best effort: the caller already has the upload error to return.
func (u *uploadService) recordChunkFailure(ctx context.Context, bookingID string, sessionID uuid.UUID, span split.Span, chunkName, checksum string, totalChunks int, cause error) {
	now := time.Now().UTC()
	rec := domain.TrackingRecord{
		BookingID:    bookingID,
		ChunkID:      domain.ChunkID(sessionID, span.Index),
		SessionID:    sessionID,
		IsChunk:      true,
		ChunkIndex:   span.Index,
		TotalChunks:  totalChunks,
		FileName:     chunkName,
		Size:         span.Size,
		Checksum:     checksum,
		Status:       string(domain.ChunkStatusFailed),
		ErrorMessage: cause.Error(),
		FailedAt:     &now,
	}
	if err := u.uow.TrackingRepo().PutChunk(context.WithoutCancel(ctx), rec); err != nil {
		u.logger.Error("failed to record chunk failure",
			"bookingID", bookingID, "sessionID", sessionID.String(), "chunkIndex", span.Index, "error", err)
	}
}

func (u *uploadService) writeManifest(ctx context.Context, manifest *domain.Manifest) error {
	if err := manifest.Validate(); err != nil {
		return err
	}

	body, err := json.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	key := domain.ManifestKey(manifest.BookingID, manifest.OriginalFileName)
	policy := backoff.WithContext(
		backoff.WithMaxRetries(u.newBackOff(), u.cfg.MaxRetries), ctx)
	err = backoff.Retry(func() error {
		return u.storage.PutObject(ctx, key, bytes.NewReader(body), int64(len(body)), "application/json")
	}, policy)
	if err != nil {
		return fmt.Errorf("failed to write manifest for session %s: %w", manifest.SessionID, err)
	}

	rec := domain.TrackingRecord{
		BookingID:      manifest.BookingID,
		ChunkID:        domain.ManifestID(manifest.SessionID),
		SessionID:      manifest.SessionID,
		IsManifest:     true,
		TotalChunks:    manifest.TotalChunks,
		FileName:       manifest.OriginalFileName,
		Size:           manifest.FileSize,
		Status:         string(domain.SessionStatusPending),
		ChunksUploaded: manifest.TotalChunks,
		ManifestKey:    key,
	}
	if err := u.uow.TrackingRepo().PutManifest(ctx, rec); err != nil {
		return fmt.Errorf("failed to record manifest for session %s: %w", manifest.SessionID, err)
	}
	return nil
}

func (u *uploadService) newBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	if u.cfg.InitialInterval > 0 {
		bo.InitialInterval = u.cfg.InitialInterval
	}
	return bo
}
