package port

import (
	"context"
	"io"
	"time"
)

// ObjectStorage is an interface to define object store interactions
type ObjectStorage interface {
	PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	GetObject(ctx context.Context, key string) (io.ReadCloser, error)
	ObjectSize(ctx context.Context, key string) (int64, error)
	ObjectExists(ctx context.Context, key string) (bool, error)
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	GeneratePresignedURLForDownload(ctx context.Context, key string) (string, *time.Time, error)
	GetHeaderBytes(ctx context.Context, key string, n int64) ([]byte, error)
}
