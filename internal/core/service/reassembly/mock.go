package reassembly

import (
	"context"

	"github.com/AlexMorrigan04/PilotForce-sub007/internal/core/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockReassemblyService is a mock implementation of ReassemblyService
type MockReassemblyService struct {
	mock.Mock
}

// NewMockReassemblyService creates a new MockReassemblyService
func NewMockReassemblyService() *MockReassemblyService {
	return &MockReassemblyService{}
}

func (m *MockReassemblyService) Reassemble(ctx context.Context, bookingID string, sessionID uuid.UUID) (*domain.Resource, error) {
	args := m.Called(ctx, bookingID, sessionID)
	if res, ok := args.Get(0).(*domain.Resource); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReassemblyService) Session(ctx context.Context, bookingID string, sessionID uuid.UUID) (*domain.SessionSummary, error) {
	args := m.Called(ctx, bookingID, sessionID)
	if sum, ok := args.Get(0).(*domain.SessionSummary); ok {
		return sum, args.Error(1)
	}
	return nil, args.Error(1)
}
