package port

import (
	"context"

	"github.com/AlexMorrigan04/PilotForce-sub007/internal/core/domain"
	"github.com/google/uuid"
)

// ResourceRepository is an interface to interact with the resource catalog
type ResourceRepository interface {
	Create(ctx context.Context, resource domain.Resource) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Resource, error)
	FindByBookingID(ctx context.Context, bookingID string) ([]domain.Resource, error)
}
