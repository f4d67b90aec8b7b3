package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/AlexMorrigan04/PilotForce-sub007/internal/adapters/repository/postgres"
	"github.com/AlexMorrigan04/PilotForce-sub007/internal/core/domain"
	"github.com/AlexMorrigan04/PilotForce-sub007/internal/core/port"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestSqlUnitOfWork(t *testing.T) {
	dbConnection, cleanup, truncate := postgres.NewTestDB(t)
	defer cleanup()
	ctx := context.Background()

	uow := postgres.NewUnitOfWork(dbConnection)

	pendingManifest := func(sessionID uuid.UUID) domain.TrackingRecord {
		return domain.TrackingRecord{
			BookingID:   "b1",
			ChunkID:     domain.ManifestID(sessionID),
			SessionID:   sessionID,
			IsManifest:  true,
			TotalChunks: 1,
			FileName:    "survey.tif",
			Size:        1024,
			Status:      string(domain.SessionStatusPending),
			ManifestKey: domain.ManifestKey("b1", "survey.tif"),
		}
	}

	t.Run("Execute - Commits resource and completion together", func(t *testing.T) {
		// Arrange
		truncate()
		sessionID := uuid.New()
		resourceID := uuid.New()
		require.NoError(t, uow.TrackingRepo().PutManifest(ctx, pendingManifest(sessionID)))
		require.NoError(t, uow.TrackingRepo().MarkReassembling(ctx, "b1", sessionID))

		// Act
		err := uow.Execute(ctx, func(tx port.UnitOfWork) error {
			if err := tx.ResourceRepo().Create(ctx, domain.Resource{
				ID:        resourceID,
				BookingID: "b1",
				SessionID: sessionID,
				FileName:  "survey.tif",
				Size:      1024,
			}); err != nil {
				return err
			}
			return tx.TrackingRepo().MarkCompleted(ctx, "b1", sessionID, resourceID, "https://store/out.tif")
		})

		// Assert
		require.NoError(t, err)
		saved, err := uow.ResourceRepo().FindByID(ctx, resourceID)
		require.NoError(t, err)
		require.Equal(t, sessionID, saved.SessionID)
		manifest, err := uow.TrackingRepo().FindManifest(ctx, "b1", sessionID)
		require.NoError(t, err)
		require.Equal(t, string(domain.SessionStatusCompleted), manifest.Status)
	})

	t.Run("Execute - Rolls back on error", func(t *testing.T) {
		// Arrange
		truncate()
		sessionID := uuid.New()
		resourceID := uuid.New()
		require.NoError(t, uow.TrackingRepo().PutManifest(ctx, pendingManifest(sessionID)))
		require.NoError(t, uow.TrackingRepo().MarkReassembling(ctx, "b1", sessionID))
		boom := errors.New("boom")

		// Act
		err := uow.Execute(ctx, func(tx port.UnitOfWork) error {
			if err := tx.ResourceRepo().Create(ctx, domain.Resource{
				ID:        resourceID,
				BookingID: "b1",
				SessionID: sessionID,
				FileName:  "survey.tif",
				Size:      1024,
			}); err != nil {
				return err
			}
			return boom
		})

		// Assert
		require.ErrorIs(t, err, boom)
		_, findErr := uow.ResourceRepo().FindByID(ctx, resourceID)
		require.ErrorIs(t, findErr, domain.ErrResourceUnavailable)
	})
}
