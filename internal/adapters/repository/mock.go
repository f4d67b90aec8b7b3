package repository

import (
	"context"
	"time"

	"github.com/AlexMorrigan04/PilotForce-sub007/internal/core/domain"
	"github.com/AlexMorrigan04/PilotForce-sub007/internal/core/port"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockTrackingRepository struct {
	mock.Mock
}

func NewMockTrackingRepository() *MockTrackingRepository {
	return &MockTrackingRepository{}
}

func (m *MockTrackingRepository) PutChunk(ctx context.Context, rec domain.TrackingRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockTrackingRepository) PutManifest(ctx context.Context, rec domain.TrackingRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockTrackingRepository) FindManifest(ctx context.Context, bookingID string, sessionID uuid.UUID) (*domain.TrackingRecord, error) {
	args := m.Called(ctx, bookingID, sessionID)
	return args.Get(0).(*domain.TrackingRecord), args.Error(1)
}

func (m *MockTrackingRepository) FindChunks(ctx context.Context, bookingID string, sessionID uuid.UUID) ([]domain.TrackingRecord, error) {
	args := m.Called(ctx, bookingID, sessionID)
	return args.Get(0).([]domain.TrackingRecord), args.Error(1)
}

func (m *MockTrackingRepository) FindPendingManifests(ctx context.Context, updatedBefore time.Time) ([]domain.TrackingRecord, error) {
	args := m.Called(ctx, updatedBefore)
	return args.Get(0).([]domain.TrackingRecord), args.Error(1)
}

func (m *MockTrackingRepository) UpdateChunksUploaded(ctx context.Context, bookingID string, sessionID uuid.UUID, count int) error {
	args := m.Called(ctx, bookingID, sessionID, count)
	return args.Error(0)
}

func (m *MockTrackingRepository) MarkReassembling(ctx context.Context, bookingID string, sessionID uuid.UUID) error {
	args := m.Called(ctx, bookingID, sessionID)
	return args.Error(0)
}

func (m *MockTrackingRepository) MarkCompleted(ctx context.Context, bookingID string, sessionID uuid.UUID, resourceID uuid.UUID, reassembledURL string) error {
	args := m.Called(ctx, bookingID, sessionID, resourceID, reassembledURL)
	return args.Error(0)
}

func (m *MockTrackingRepository) MarkFailed(ctx context.Context, bookingID string, sessionID uuid.UUID, errorMessage string) error {
	args := m.Called(ctx, bookingID, sessionID, errorMessage)
	return args.Error(0)
}

type MockResourceRepository struct {
	mock.Mock
}

func NewMockResourceRepository() *MockResourceRepository {
	return &MockResourceRepository{}
}

func (m *MockResourceRepository) Create(ctx context.Context, resource domain.Resource) error {
	args := m.Called(ctx, resource)
	return args.Error(0)
}

func (m *MockResourceRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Resource, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*domain.Resource), args.Error(1)
}

func (m *MockResourceRepository) FindByBookingID(ctx context.Context, bookingID string) ([]domain.Resource, error) {
	args := m.Called(ctx, bookingID)
	return args.Get(0).([]domain.Resource), args.Error(1)
}

// MockUnitOfWork is a mock UnitOfWork whose Execute runs the callback against
// itself, so expectations set on the repo mocks cover transactional calls too.
type MockUnitOfWork struct {
	mock.Mock
	trackingRepo *MockTrackingRepository
	resourceRepo *MockResourceRepository
}

func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		trackingRepo: NewMockTrackingRepository(),
		resourceRepo: NewMockResourceRepository(),
	}
}

func (m *MockUnitOfWork) Execute(ctx context.Context, fn func(uow port.UnitOfWork) error) error {
	return fn(m)
}

func (m *MockUnitOfWork) TrackingRepo() port.TrackingRepository {
	return m.trackingRepo
}

func (m *MockUnitOfWork) ResourceRepo() port.ResourceRepository {
	return m.resourceRepo
}

func (m *MockUnitOfWork) GetTrackingRepoMock() *MockTrackingRepository {
	return m.trackingRepo
}

func (m *MockUnitOfWork) GetResourceRepoMock() *MockResourceRepository {
	return m.resourceRepo
}

func (m *MockUnitOfWork) AssertExpectations(t mock.TestingT) bool {
	return m.trackingRepo.AssertExpectations(t) && m.resourceRepo.AssertExpectations(t)
}
