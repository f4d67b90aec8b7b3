package sweep

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/AlexMorrigan04/PilotForce-sub007/internal/config"
	"github.com/AlexMorrigan04/PilotForce-sub007/internal/core/domain"
	"github.com/AlexMorrigan04/PilotForce-sub007/internal/core/port"
)

type sweepService struct {
	uow         port.UnitOfWork
	reassembler port.ReassemblyService
	storage     port.ObjectStorage
	cfg         config.ReassemblyConfig
	logger      *slog.Logger
}

// NewSweepService creates a new sweep service
func NewSweepService(uow port.UnitOfWork, reassembler port.ReassemblyService, storage port.ObjectStorage, cfg config.ReassemblyConfig, logger *slog.Logger) port.SweepService {
	return &sweepService{uow: uow, reassembler: reassembler, storage: storage, cfg: cfg, logger: logger}
}

// SweepPending re-checks sessions whose manifest row has been pending for at
// least the settle interval: it recounts the uploaded chunk rows, refreshes
// chunksUploaded on the manifest row, and kicks reassembly for complete
// sessions. Incomplete sessions are left alone; the sweep never expires or
// deletes them.
func (s *sweepService) SweepPending(ctx context.Context, now time.Time) error {

	candidates, err := s.uow.TrackingRepo().FindPendingManifests(ctx, now.Add(-s.cfg.SweepSettle))
	if err != nil {
		return err
	}

	for _, manifest := range candidates {
		uploaded, err := s.countUploaded(ctx, manifest)
		if err != nil {
			s.logger.Error("failed to count session chunks",
				"bookingID", manifest.BookingID, "sessionID", manifest.SessionID.String(), "error", err)
			continue
		}

		if err := s.uow.TrackingRepo().UpdateChunksUploaded(ctx, manifest.BookingID, manifest.SessionID, uploaded); err != nil {
			s.logger.Error("failed to refresh chunk count",
				"bookingID", manifest.BookingID, "sessionID", manifest.SessionID.String(), "error", err)
		}

		if uploaded < manifest.TotalChunks {
			s.logger.Info("session not ready for reassembly",
				"sessionID", manifest.SessionID.String(),
				"chunksUploaded", uploaded,
				"totalChunks", manifest.TotalChunks,
			)
			continue
		}

		// the bucket notification only fires when the manifest object lands;
		// if it is gone the sweep is this session's only path to reassembly
		if manifest.ManifestKey != "" {
			exists, err := s.storage.ObjectExists(ctx, manifest.ManifestKey)
			switch {
			case err != nil:
				s.logger.Error("failed to check manifest object",
					"key", manifest.ManifestKey, "error", err)
			case !exists:
				s.logger.Warn("manifest object missing from storage, reassembling from tracking rows",
					"key", manifest.ManifestKey, "sessionID", manifest.SessionID.String())
			}
		}

		_, err = s.reassembler.Reassemble(ctx, manifest.BookingID, manifest.SessionID)
		switch {
		case errors.Is(err, domain.ErrAlreadyReassembling):
			// another worker picked it up between the find and now
		case err != nil:
			s.logger.Error("sweep reassembly failed",
				"bookingID", manifest.BookingID, "sessionID", manifest.SessionID.String(), "error", err)
		default:
			s.logger.Info("sweep reassembled session", "sessionID", manifest.SessionID.String())
		}
	}
	return nil
}

func (s *sweepService) countUploaded(ctx context.Context, manifest domain.TrackingRecord) (int, error) {
	rows, err := s.uow.TrackingRepo().FindChunks(ctx, manifest.BookingID, manifest.SessionID)
	if err != nil {
		return 0, err
	}
	uploaded := 0
	for _, row := range rows {
		if row.Status == string(domain.ChunkStatusUploaded) {
			uploaded++
		}
	}
	return uploaded, nil
}
