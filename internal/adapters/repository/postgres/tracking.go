package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/AlexMorrigan04/PilotForce-sub007/internal/core/domain"
	"github.com/AlexMorrigan04/PilotForce-sub007/internal/core/port"
	"github.com/google/uuid"
)

type sqlTrackingRepository struct {
	db SQLQuerier
}

// NewSQLTrackingRepository creates a sqlTrackingRepository that implements port.TrackingRepository
func NewSQLTrackingRepository(db SQLQuerier) port.TrackingRepository {
	return &sqlTrackingRepository{db: db}
}

const trackingColumns = `
	booking_id, chunk_id, session_id, is_chunk, is_manifest, chunk_index,
	total_chunks, file_name, size_bytes, checksum, status, chunks_uploaded,
	manifest_key, final_resource_id, reassembled_url, error_message,
	uploaded_at, completed_at, failed_at, created_at, updated_at`

// PutChunk upserts a chunk row. A re-upload of the same chunk overwrites
// the previous attempt's status and checksum.
func (s *sqlTrackingRepository) PutChunk(ctx context.Context, rec domain.TrackingRecord) error {
	query := `
		INSERT INTO chunk_tracking (
			booking_id, chunk_id, session_id, is_chunk, chunk_index,
			total_chunks, file_name, size_bytes, checksum, status,
			error_message, uploaded_at, failed_at
		) VALUES ($1, $2, $3, true, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (booking_id, chunk_id) DO UPDATE SET
			size_bytes = EXCLUDED.size_bytes,
			checksum = EXCLUDED.checksum,
			status = EXCLUDED.status,
			error_message = EXCLUDED.error_message,
			uploaded_at = EXCLUDED.uploaded_at,
			failed_at = EXCLUDED.failed_at,
			updated_at = now()`

	_, err := s.db.ExecContext(
		ctx,
		query,
		rec.BookingID,
		rec.ChunkID,
		rec.SessionID,
		rec.ChunkIndex,
		rec.TotalChunks,
		rec.FileName,
		rec.Size,
		rec.Checksum,
		rec.Status,
		rec.ErrorMessage,
		rec.UploadedAt,
		rec.FailedAt,
	)
	if err != nil {
		return err
	}
	return nil
}

// PutManifest upserts the session's manifest row. A manifest that already
// reached reassembling or a terminal state is left untouched.
func (s *sqlTrackingRepository) PutManifest(ctx context.Context, rec domain.TrackingRecord) error {
	query := `
		INSERT INTO chunk_tracking (
			booking_id, chunk_id, session_id, is_manifest, total_chunks,
			file_name, size_bytes, status, chunks_uploaded, manifest_key
		) VALUES ($1, $2, $3, true, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (booking_id, chunk_id) DO UPDATE SET
			total_chunks = EXCLUDED.total_chunks,
			size_bytes = EXCLUDED.size_bytes,
			chunks_uploaded = EXCLUDED.chunks_uploaded,
			manifest_key = EXCLUDED.manifest_key,
			updated_at = now()
		WHERE chunk_tracking.status = 'pending'`

	_, err := s.db.ExecContext(
		ctx,
		query,
		rec.BookingID,
		rec.ChunkID,
		rec.SessionID,
		rec.TotalChunks,
		rec.FileName,
		rec.Size,
		rec.Status,
		rec.ChunksUploaded,
		rec.ManifestKey,
	)
	if err != nil {
		return err
	}
	return nil
}

func (s *sqlTrackingRepository) FindManifest(ctx context.Context, bookingID string, sessionID uuid.UUID) (*domain.TrackingRecord, error) {
	query := `
		SELECT ` + trackingColumns + `
		FROM chunk_tracking
		WHERE booking_id = $1 AND session_id = $2 AND is_manifest`

	var row dbTrackingRecord
	err := scanTrackingRecord(s.db.QueryRowContext(ctx, query, bookingID, sessionID), &row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}

	return row.ToDomain(), nil
}

func (s *sqlTrackingRepository) FindChunks(ctx context.Context, bookingID string, sessionID uuid.UUID) ([]domain.TrackingRecord, error) {
	query := `
		SELECT ` + trackingColumns + `
		FROM chunk_tracking
		WHERE booking_id = $1 AND session_id = $2 AND is_chunk
		ORDER BY chunk_index`

	rows, err := s.db.QueryContext(ctx, query, bookingID, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.TrackingRecord
	for rows.Next() {
		var row dbTrackingRecord
		if err := scanTrackingRecord(rows, &row); err != nil {
			return nil, err
		}
		records = append(records, *row.ToDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func (s *sqlTrackingRepository) FindPendingManifests(ctx context.Context, updatedBefore time.Time) ([]domain.TrackingRecord, error) {
	query := `
		SELECT ` + trackingColumns + `
		FROM chunk_tracking
		WHERE is_manifest AND status = 'pending' AND updated_at < $1
		ORDER BY updated_at`

	rows, err := s.db.QueryContext(ctx, query, updatedBefore)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.TrackingRecord
	for rows.Next() {
		var row dbTrackingRecord
		if err := scanTrackingRecord(rows, &row); err != nil {
			return nil, err
		}
		records = append(records, *row.ToDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// UpdateChunksUploaded refreshes the uploaded-chunk count on the manifest row
func (s *sqlTrackingRepository) UpdateChunksUploaded(ctx context.Context, bookingID string, sessionID uuid.UUID, count int) error {
	query := `
		UPDATE chunk_tracking SET chunks_uploaded = $1, updated_at = now()
		WHERE booking_id = $2 AND session_id = $3 AND is_manifest`

	result, err := s.db.ExecContext(ctx, query, count, bookingID, sessionID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return domain.ErrSessionNotFound
	}

	return nil
}

// MarkReassembling transitions pending -> reassembling. The WHERE clause makes
// the transition conditional, so concurrent triggers race on a single row
// update and exactly one wins. A lost race is mapped from the row's actual
// status.
func (s *sqlTrackingRepository) MarkReassembling(ctx context.Context, bookingID string, sessionID uuid.UUID) error {
	query := `
		UPDATE chunk_tracking SET status = 'reassembling', updated_at = now()
		WHERE booking_id = $1 AND session_id = $2 AND is_manifest AND status = 'pending'`

	result, err := s.db.ExecContext(ctx, query, bookingID, sessionID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return s.explainLostTransition(ctx, bookingID, sessionID)
	}

	return nil
}

func (s *sqlTrackingRepository) explainLostTransition(ctx context.Context, bookingID string, sessionID uuid.UUID) error {
	query := `
		SELECT status FROM chunk_tracking
		WHERE booking_id = $1 AND session_id = $2 AND is_manifest`

	var status string
	err := s.db.QueryRowContext(ctx, query, bookingID, sessionID).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrSessionNotFound
		}
		return err
	}

	switch domain.SessionStatus(status) {
	case domain.SessionStatusFailed:
		return domain.ErrSessionFailed
	default:
		return domain.ErrAlreadyReassembling
	}
}

func (s *sqlTrackingRepository) MarkCompleted(ctx context.Context, bookingID string, sessionID uuid.UUID, resourceID uuid.UUID, reassembledURL string) error {
	query := `
		UPDATE chunk_tracking SET
			status = 'completed',
			final_resource_id = $1,
			reassembled_url = $2,
			completed_at = now(),
			updated_at = now()
		WHERE booking_id = $3 AND session_id = $4 AND is_manifest AND status = 'reassembling'`

	result, err := s.db.ExecContext(ctx, query, resourceID, reassembledURL, bookingID, sessionID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return domain.ErrSessionNotFound
	}

	return nil
}

func (s *sqlTrackingRepository) MarkFailed(ctx context.Context, bookingID string, sessionID uuid.UUID, errorMessage string) error {
	query := `
		UPDATE chunk_tracking SET
			status = 'failed',
			error_message = $1,
			failed_at = now(),
			updated_at = now()
		WHERE booking_id = $2 AND session_id = $3 AND is_manifest
			AND status IN ('pending', 'reassembling')`

	result, err := s.db.ExecContext(ctx, query, errorMessage, bookingID, sessionID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return domain.ErrSessionNotFound
	}

	return nil
}

type dbTrackingRecord struct {
	BookingID       string         `db:"booking_id"`
	ChunkID         string         `db:"chunk_id"`
	SessionID       uuid.UUID      `db:"session_id"`
	IsChunk         bool           `db:"is_chunk"`
	IsManifest      bool           `db:"is_manifest"`
	ChunkIndex      int            `db:"chunk_index"`
	TotalChunks     int            `db:"total_chunks"`
	FileName        string         `db:"file_name"`
	SizeBytes       int64          `db:"size_bytes"`
	Checksum        sql.NullString `db:"checksum"`
	Status          string         `db:"status"`
	ChunksUploaded  int            `db:"chunks_uploaded"`
	ManifestKey     sql.NullString `db:"manifest_key"`
	FinalResourceID uuid.NullUUID  `db:"final_resource_id"`
	ReassembledURL  sql.NullString `db:"reassembled_url"`
	ErrorMessage    sql.NullString `db:"error_message"`
	UploadedAt      sql.NullTime   `db:"uploaded_at"`
	CompletedAt     sql.NullTime   `db:"completed_at"`
	FailedAt        sql.NullTime   `db:"failed_at"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrackingRecord(sc rowScanner, row *dbTrackingRecord) error {
	return sc.Scan(
		&row.BookingID,
		&row.ChunkID,
		&row.SessionID,
		&row.IsChunk,
		&row.IsManifest,
		&row.ChunkIndex,
		&row.TotalChunks,
		&row.FileName,
		&row.SizeBytes,
		&row.Checksum,
		&row.Status,
		&row.ChunksUploaded,
		&row.ManifestKey,
		&row.FinalResourceID,
		&row.ReassembledURL,
		&row.ErrorMessage,
		&row.UploadedAt,
		&row.CompletedAt,
		&row.FailedAt,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
}

// ToDomain converts db obj to domain
func (r *dbTrackingRecord) ToDomain() *domain.TrackingRecord {
	rec := &domain.TrackingRecord{
		BookingID:      r.BookingID,
		ChunkID:        r.ChunkID,
		SessionID:      r.SessionID,
		IsChunk:        r.IsChunk,
		IsManifest:     r.IsManifest,
		ChunkIndex:     r.ChunkIndex,
		TotalChunks:    r.TotalChunks,
		FileName:       r.FileName,
		Size:           r.SizeBytes,
		Checksum:       r.Checksum.String,
		Status:         r.Status,
		ChunksUploaded: r.ChunksUploaded,
		ManifestKey:    r.ManifestKey.String,
		ReassembledURL: r.ReassembledURL.String,
		ErrorMessage:   r.ErrorMessage.String,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if r.FinalResourceID.Valid {
		id := r.FinalResourceID.UUID
		rec.FinalResourceID = &id
	}
	if r.UploadedAt.Valid {
		t := r.UploadedAt.Time
		rec.UploadedAt = &t
	}
	if r.CompletedAt.Valid {
		t := r.CompletedAt.Time
		rec.CompletedAt = &t
	}
	if r.FailedAt.Valid {
		t := r.FailedAt.Time
		rec.FailedAt = &t
	}
	return rec
}
