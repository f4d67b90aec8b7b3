// Package split deterministically partitions a file into ordered fixed-size
// byte ranges. It performs no I/O beyond reading the source and has no side
// effects, so the upload and reassembly services can rely on its output being
// reproducible for a given (fileSize, chunkSize) pair.
package split

import (
	"fmt"
	"io"

	"github.com/AlexMorrigan04/PilotForce-sub007/internal/core/domain"
)

// DefaultChunkSize is the target chunk size used when none is configured
const DefaultChunkSize int64 = 4 << 20 // 4 MiB

// checksumSample bounds how much of a chunk the checksum covers
const checksumSample = 4 << 10 // 4 KiB

// Span is one contiguous byte range of the original file
type Span struct {
	Index  int
	Offset int64
	Size   int64
}

// Plan partitions fileSize bytes into ceil(fileSize/chunkSize) ordered spans.
// The final span may be shorter than chunkSize. A zero-byte file is rejected;
// callers must not create upload sessions for empty files.
func Plan(fileSize, chunkSize int64) ([]Span, error) {
	if fileSize <= 0 {
		return nil, domain.ErrEmptyFile
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	count := int((fileSize + chunkSize - 1) / chunkSize)
	spans := make([]Span, 0, count)
	for i := 0; i < count; i++ {
		offset := int64(i) * chunkSize
		size := chunkSize
		if offset+size > fileSize {
			size = fileSize - offset
		}
		spans = append(spans, Span{Index: i, Offset: offset, Size: size})
	}
	return spans, nil
}

// Checksum computes a weak rolling hash over at most the first 4 KiB of a
// chunk. It is a best-effort corruption hint, not a cryptographic integrity
// or security check.
func Checksum(data []byte) string {
	if len(data) > checksumSample {
		data = data[:checksumSample]
	}
	var h uint32 = 5381
	for _, b := range data {
		h = h*33 + uint32(b)
	}
	return fmt.Sprintf("%08x", h)
}

// ReadSpan reads the bytes of one span from the source file
func ReadSpan(src io.ReaderAt, span Span) ([]byte, error) {
	buf := make([]byte, span.Size)
	if _, err := io.ReadFull(io.NewSectionReader(src, span.Offset, span.Size), buf); err != nil {
		return nil, fmt.Errorf("failed to read chunk %d at offset %d: %w", span.Index, span.Offset, err)
	}
	return buf, nil
}
