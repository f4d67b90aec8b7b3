package storageevent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/AlexMorrigan04/PilotForce-sub007/internal/core/domain"
)

const manifestSuffix = "_manifest.json"

// HandleMessage reacts to an object-created notification. Only manifest
// objects trigger work: the manifest is the barrier, chunk uploads are
// ignored. Terminal outcomes return nil so the message is not redelivered.
func (s *storageEventService) HandleMessage(ctx context.Context, data []byte) error {
	var event domain.MinIOEvent

	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("could not unmarshal bucket event: %v", err)
	}
	if len(event.Records) == 0 {
		return fmt.Errorf("no records in bucket event")
	}

	bucketNotif := event.Records[0]

	decodedKey, err := url.QueryUnescape(bucketNotif.S3.Object.Key)
	if err != nil {
		return err
	}

	if !strings.HasSuffix(decodedKey, manifestSuffix) {
		s.logger.Debug("ignoring non-manifest object", "key", decodedKey)
		return nil
	}

	s.logger.Info("handling manifest event", "eventtype", bucketNotif.EventName, "key", decodedKey)

	manifest, err := s.fetchManifest(ctx, decodedKey)
	if err != nil {
		return err
	}

	_, err = s.reassembler.Reassemble(ctx, manifest.BookingID, manifest.SessionID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrAlreadyReassembling):
		s.logger.Info("session already reassembling", "sessionID", manifest.SessionID)
		return nil
	case errors.Is(err, domain.ErrSessionFailed):
		s.logger.Warn("session already failed, not retrying", "sessionID", manifest.SessionID)
		return nil
	case errors.Is(err, domain.ErrCorruptOutput):
		s.logger.Warn("merged object failed format check", "sessionID", manifest.SessionID)
		return nil
	default:
		return err
	}
}

func (s *storageEventService) fetchManifest(ctx context.Context, key string) (*domain.Manifest, error) {
	obj, err := s.storage.GetObject(ctx, key)
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	raw, err := io.ReadAll(obj)
	if err != nil {
		return nil, err
	}
	return domain.ParseManifest(raw)
}
