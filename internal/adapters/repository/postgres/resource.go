package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/AlexMorrigan04/PilotForce-sub007/internal/core/domain"
	"github.com/AlexMorrigan04/PilotForce-sub007/internal/core/port"
	"github.com/google/uuid"
)

type sqlResourceRepository struct {
	db SQLQuerier
}

// NewSQLResourceRepository creates a sqlResourceRepository that implements port.ResourceRepository
func NewSQLResourceRepository(db SQLQuerier) port.ResourceRepository {
	return &sqlResourceRepository{db: db}
}

// Create creates a new resource record
func (s *sqlResourceRepository) Create(ctx context.Context, resource domain.Resource) error {
	query := `
		INSERT INTO resources (
			id, booking_id, session_id, file_name, content_type,
			resource_type, storage_key, url, size_bytes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := s.db.ExecContext(
		ctx,
		query,
		resource.ID,
		resource.BookingID,
		resource.SessionID,
		resource.FileName,
		resource.ContentType,
		resource.ResourceType,
		resource.StorageKey,
		resource.URL,
		resource.Size,
	)
	if err != nil {
		return fmt.Errorf("error inserting resource: %w", err)
	}
	return nil
}

func (s *sqlResourceRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Resource, error) {
	query := `
		SELECT id, booking_id, session_id, file_name, content_type,
			resource_type, storage_key, url, size_bytes, created_at
		FROM resources
		WHERE id = $1`

	var row dbResource
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&row.ID,
		&row.BookingID,
		&row.SessionID,
		&row.FileName,
		&row.ContentType,
		&row.ResourceType,
		&row.StorageKey,
		&row.URL,
		&row.SizeBytes,
		&row.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrResourceUnavailable
		}
		return nil, err
	}

	return row.ToDomain(), nil
}

func (s *sqlResourceRepository) FindByBookingID(ctx context.Context, bookingID string) ([]domain.Resource, error) {
	query := `
		SELECT id, booking_id, session_id, file_name, content_type,
			resource_type, storage_key, url, size_bytes, created_at
		FROM resources
		WHERE booking_id = $1
		ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resources []domain.Resource
	for rows.Next() {
		var row dbResource
		if err := rows.Scan(
			&row.ID,
			&row.BookingID,
			&row.SessionID,
			&row.FileName,
			&row.ContentType,
			&row.ResourceType,
			&row.StorageKey,
			&row.URL,
			&row.SizeBytes,
			&row.CreatedAt,
		); err != nil {
			return nil, err
		}
		resources = append(resources, *row.ToDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return resources, nil
}

type dbResource struct {
	ID           uuid.UUID `db:"id"`
	BookingID    string    `db:"booking_id"`
	SessionID    uuid.UUID `db:"session_id"`
	FileName     string    `db:"file_name"`
	ContentType  string    `db:"content_type"`
	ResourceType string    `db:"resource_type"`
	StorageKey   string    `db:"storage_key"`
	URL          string    `db:"url"`
	SizeBytes    int64     `db:"size_bytes"`
	CreatedAt    time.Time `db:"created_at"`
}

// ToDomain converts db obj to domain
func (r *dbResource) ToDomain() *domain.Resource {
	return &domain.Resource{
		ID:           r.ID,
		BookingID:    r.BookingID,
		SessionID:    r.SessionID,
		FileName:     r.FileName,
		ContentType:  r.ContentType,
		ResourceType: r.ResourceType,
		StorageKey:   r.StorageKey,
		URL:          r.URL,
		Size:         r.SizeBytes,
		CreatedAt:    r.CreatedAt,
	}
}
