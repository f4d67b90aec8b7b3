package storageevent_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/AlexMorrigan04/PilotForce-sub007/internal/adapters/storage"
	"github.com/AlexMorrigan04/PilotForce-sub007/internal/core/domain"
	"github.com/AlexMorrigan04/PilotForce-sub007/internal/core/service/reassembly"
	"github.com/AlexMorrigan04/PilotForce-sub007/internal/core/service/storageevent"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func eventPayload(t *testing.T, key string) []byte {
	t.Helper()
	raw := fmt.Sprintf(`{
		"EventName": "s3:ObjectCreated:Put",
		"Key": %q,
		"Records": [{
			"eventName": "s3:ObjectCreated:Put",
			"s3": {
				"bucket": {"name": "pilotforce"},
				"object": {"key": %q, "size": 321, "eTag": "abc"}
			},
			"eventTime": "2026-08-30T10:00:00Z"
		}]
	}`, key, key)
	return []byte(raw)
}

func manifestJSON(t *testing.T, bookingID string, sessionID uuid.UUID) []byte {
	t.Helper()
	m := domain.Manifest{
		SessionID:        sessionID,
		BookingID:        bookingID,
		OriginalFileName: "survey.tif",
		FileSize:         2048,
		MimeType:         "image/tiff",
		TotalChunks:      2,
		Chunks: []domain.ManifestChunk{
			{Index: 0, FileName: "survey.tif.part0", Size: 1024},
			{Index: 1, FileName: "survey.tif.part1", Size: 1024},
		},
		Created: time.Now().UTC(),
	}
	raw, err := json.Marshal(m)
	require.NoError(t, err)
	return raw
}

func TestStorageEventService_HandleMessage_TriggersReassembly(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockStorage := storage.NewMockStorage()
	mockReassembler := reassembly.NewMockReassemblyService()
	service := storageevent.NewStorageEventService(mockStorage, mockReassembler, testLogger())

	bookingID := "booking-42"
	sessionID := uuid.New()
	key := domain.ManifestKey(bookingID, "survey.tif")

	mockStorage.On("GetObject", ctx, key).
		Return(io.NopCloser(strings.NewReader(string(manifestJSON(t, bookingID, sessionID)))), nil)
	mockReassembler.On("Reassemble", ctx, bookingID, sessionID).
		Return(&domain.Resource{ID: uuid.New()}, nil)

	// Act
	err := service.HandleMessage(ctx, eventPayload(t, key))

	// Assert
	require.NoError(t, err)
	mockReassembler.AssertExpectations(t)
}

func TestStorageEventService_HandleMessage_IgnoresChunkObjects(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockStorage := storage.NewMockStorage()
	mockReassembler := reassembly.NewMockReassemblyService()
	service := storageevent.NewStorageEventService(mockStorage, mockReassembler, testLogger())

	// Act
	err := service.HandleMessage(ctx, eventPayload(t, "booking-42/survey.tif.part0"))

	// Assert
	require.NoError(t, err)
	mockStorage.AssertNotCalled(t, "GetObject", mock.Anything, mock.Anything)
	mockReassembler.AssertNotCalled(t, "Reassemble", mock.Anything, mock.Anything, mock.Anything)
}

func TestStorageEventService_HandleMessage_DecodesEscapedKey(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockStorage := storage.NewMockStorage()
	mockReassembler := reassembly.NewMockReassemblyService()
	service := storageevent.NewStorageEventService(mockStorage, mockReassembler, testLogger())

	bookingID := "booking-42"
	sessionID := uuid.New()
	escaped := "booking-42/site%20survey.tif_manifest.json"
	decoded := "booking-42/site survey.tif_manifest.json"

	mockStorage.On("GetObject", ctx, decoded).
		Return(io.NopCloser(strings.NewReader(string(manifestJSON(t, bookingID, sessionID)))), nil)
	mockReassembler.On("Reassemble", ctx, bookingID, sessionID).
		Return(&domain.Resource{}, nil)

	// Act
	err := service.HandleMessage(ctx, eventPayload(t, escaped))

	// Assert
	require.NoError(t, err)
	mockStorage.AssertExpectations(t)
}

func TestStorageEventService_HandleMessage_ConcurrentTriggerIsNotAnError(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockStorage := storage.NewMockStorage()
	mockReassembler := reassembly.NewMockReassemblyService()
	service := storageevent.NewStorageEventService(mockStorage, mockReassembler, testLogger())

	bookingID := "booking-42"
	sessionID := uuid.New()
	key := domain.ManifestKey(bookingID, "survey.tif")

	mockStorage.On("GetObject", ctx, key).
		Return(io.NopCloser(strings.NewReader(string(manifestJSON(t, bookingID, sessionID)))), nil)
	mockReassembler.On("Reassemble", ctx, bookingID, sessionID).
		Return(nil, domain.ErrAlreadyReassembling)

	// Act
	err := service.HandleMessage(ctx, eventPayload(t, key))

	// Assert
	require.NoError(t, err)
}

func TestStorageEventService_HandleMessage_NoRecords(t *testing.T) {
	// Arrange
	service := storageevent.NewStorageEventService(storage.NewMockStorage(), reassembly.NewMockReassemblyService(), testLogger())

	// Act
	err := service.HandleMessage(context.Background(), []byte(`{"Records": []}`))

	// Assert
	assert.Error(t, err)
}
