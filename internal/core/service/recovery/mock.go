package recovery

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockRecoveryService is a mock implementation of RecoveryService
type MockRecoveryService struct {
	mock.Mock
}

// NewMockRecoveryService creates a new MockRecoveryService
func NewMockRecoveryService() *MockRecoveryService {
	return &MockRecoveryService{}
}

func (m *MockRecoveryService) Resolve(ctx context.Context, originalURL string) (string, error) {
	args := m.Called(ctx, originalURL)
	return args.String(0), args.Error(1)
}
