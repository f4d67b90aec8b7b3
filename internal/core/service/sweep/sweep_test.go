package sweep_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/AlexMorrigan04/PilotForce-sub007/internal/adapters/repository"
	"github.com/AlexMorrigan04/PilotForce-sub007/internal/adapters/storage"
	"github.com/AlexMorrigan04/PilotForce-sub007/internal/config"
	"github.com/AlexMorrigan04/PilotForce-sub007/internal/core/domain"
	"github.com/AlexMorrigan04/PilotForce-sub007/internal/core/service/reassembly"
	"github.com/AlexMorrigan04/PilotForce-sub007/internal/core/service/sweep"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testCfg = config.ReassemblyConfig{SweepSettle: 2 * time.Minute}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pendingManifest(sessionID uuid.UUID, totalChunks int) domain.TrackingRecord {
	return domain.TrackingRecord{
		BookingID:   "b1",
		ChunkID:     domain.ManifestID(sessionID),
		SessionID:   sessionID,
		IsManifest:  true,
		TotalChunks: totalChunks,
		Status:      string(domain.SessionStatusPending),
		ManifestKey: domain.ManifestKey("b1", "survey.tif"),
	}
}

func uploadedChunk(sessionID uuid.UUID, index int) domain.TrackingRecord {
	return domain.TrackingRecord{
		BookingID:  "b1",
		ChunkID:    domain.ChunkID(sessionID, index),
		SessionID:  sessionID,
		IsChunk:    true,
		ChunkIndex: index,
		Status:     string(domain.ChunkStatusUploaded),
	}
}

func TestSweepService_SweepPending_ReassemblesCompleteSession(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockReassembler := reassembly.NewMockReassemblyService()
	mockStorage := storage.NewMockStorage()
	service := sweep.NewSweepService(mockUow, mockReassembler, mockStorage, testCfg, testLogger())

	sessionID := uuid.New()
	now := time.Now()

	mockUow.GetTrackingRepoMock().On("FindPendingManifests", ctx, now.Add(-testCfg.SweepSettle)).
		Return([]domain.TrackingRecord{pendingManifest(sessionID, 2)}, nil)
	mockUow.GetTrackingRepoMock().On("FindChunks", ctx, "b1", sessionID).
		Return([]domain.TrackingRecord{uploadedChunk(sessionID, 0), uploadedChunk(sessionID, 1)}, nil)
	mockUow.GetTrackingRepoMock().On("UpdateChunksUploaded", ctx, "b1", sessionID, 2).Return(nil)
	mockStorage.On("ObjectExists", ctx, domain.ManifestKey("b1", "survey.tif")).Return(true, nil)
	mockReassembler.On("Reassemble", ctx, "b1", sessionID).
		Return(&domain.Resource{ID: uuid.New()}, nil)

	// Act
	err := service.SweepPending(ctx, now)

	// Assert
	require.NoError(t, err)
	mockUow.AssertExpectations(t)
	mockReassembler.AssertExpectations(t)
}

func TestSweepService_SweepPending_SkipsIncompleteSession(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockReassembler := reassembly.NewMockReassemblyService()
	mockStorage := storage.NewMockStorage()
	service := sweep.NewSweepService(mockUow, mockReassembler, mockStorage, testCfg, testLogger())

	sessionID := uuid.New()
	now := time.Now()

	mockUow.GetTrackingRepoMock().On("FindPendingManifests", ctx, mock.Anything).
		Return([]domain.TrackingRecord{pendingManifest(sessionID, 3)}, nil)
	mockUow.GetTrackingRepoMock().On("FindChunks", ctx, "b1", sessionID).
		Return([]domain.TrackingRecord{uploadedChunk(sessionID, 0)}, nil)
	mockUow.GetTrackingRepoMock().On("UpdateChunksUploaded", ctx, "b1", sessionID, 1).Return(nil)

	// Act
	err := service.SweepPending(ctx, now)

	// Assert
	require.NoError(t, err)
	mockReassembler.AssertNotCalled(t, "Reassemble", mock.Anything, mock.Anything, mock.Anything)
}

func TestSweepService_SweepPending_ContinuesPastFailures(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockReassembler := reassembly.NewMockReassemblyService()
	mockStorage := storage.NewMockStorage()
	service := sweep.NewSweepService(mockUow, mockReassembler, mockStorage, testCfg, testLogger())

	bad := uuid.New()
	good := uuid.New()
	now := time.Now()

	mockStorage.On("ObjectExists", mock.Anything, mock.Anything).Return(true, nil)
	mockUow.GetTrackingRepoMock().On("FindPendingManifests", ctx, mock.Anything).
		Return([]domain.TrackingRecord{pendingManifest(bad, 1), pendingManifest(good, 1)}, nil)
	mockUow.GetTrackingRepoMock().On("FindChunks", ctx, "b1", bad).
		Return([]domain.TrackingRecord{uploadedChunk(bad, 0)}, nil)
	mockUow.GetTrackingRepoMock().On("FindChunks", ctx, "b1", good).
		Return([]domain.TrackingRecord{uploadedChunk(good, 0)}, nil)
	mockUow.GetTrackingRepoMock().On("UpdateChunksUploaded", ctx, "b1", mock.Anything, 1).Return(nil)
	mockReassembler.On("Reassemble", ctx, "b1", bad).Return(nil, domain.ErrNoChunksFound)
	mockReassembler.On("Reassemble", ctx, "b1", good).Return(&domain.Resource{}, nil)

	// Act
	err := service.SweepPending(ctx, now)

	// Assert
	require.NoError(t, err)
	mockReassembler.AssertExpectations(t)
	assert.True(t, mockReassembler.AssertNumberOfCalls(t, "Reassemble", 2))
}

func TestSweepService_SweepPending_MissingManifestObjectStillReassembles(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockReassembler := reassembly.NewMockReassemblyService()
	mockStorage := storage.NewMockStorage()
	service := sweep.NewSweepService(mockUow, mockReassembler, mockStorage, testCfg, testLogger())

	sessionID := uuid.New()
	now := time.Now()

	mockUow.GetTrackingRepoMock().On("FindPendingManifests", ctx, mock.Anything).
		Return([]domain.TrackingRecord{pendingManifest(sessionID, 1)}, nil)
	mockUow.GetTrackingRepoMock().On("FindChunks", ctx, "b1", sessionID).
		Return([]domain.TrackingRecord{uploadedChunk(sessionID, 0)}, nil)
	mockUow.GetTrackingRepoMock().On("UpdateChunksUploaded", ctx, "b1", sessionID, 1).Return(nil)
	// the manifest object vanished, so no bucket notification will ever
	// arrive: the chunk rows alone must be enough to reassemble
	mockStorage.On("ObjectExists", ctx, domain.ManifestKey("b1", "survey.tif")).Return(false, nil)
	mockReassembler.On("Reassemble", ctx, "b1", sessionID).Return(&domain.Resource{}, nil)

	// Act
	err := service.SweepPending(ctx, now)

	// Assert
	require.NoError(t, err)
	mockReassembler.AssertExpectations(t)
	mockStorage.AssertExpectations(t)
}
