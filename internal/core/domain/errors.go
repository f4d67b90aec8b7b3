package domain

import "errors"

// ErrEmptyFile is an error thrown when a zero-byte file is submitted for splitting
var ErrEmptyFile = errors.New("empty file")

// ErrSessionNotFound is an error thrown when a session has no manifest tracking row
var ErrSessionNotFound = errors.New("session not found")

// ErrChunkUploadFailed is an error thrown when a chunk upload exhausts its retries
var ErrChunkUploadFailed = errors.New("chunk upload failed")

// ErrInvalidManifest is an error thrown when a manifest fails validation
var ErrInvalidManifest = errors.New("invalid manifest")

// ErrNoChunksFound is an error thrown when a session has no uploaded chunk rows
var ErrNoChunksFound = errors.New("no valid chunks found for session")

// ErrMissingChunks is an error thrown when a session's chunk indices have gaps
var ErrMissingChunks = errors.New("missing chunks")

// ErrDuplicateChunk is an error thrown when a chunk index appears twice
var ErrDuplicateChunk = errors.New("duplicate chunk index")

// ErrSizeMismatch is an error thrown when reassembled size differs from the manifest
var ErrSizeMismatch = errors.New("size mismatch")

// ErrAlreadyReassembling is an error thrown when a concurrent reassembly holds the session
var ErrAlreadyReassembling = errors.New("session already reassembling")

// ErrSessionFailed is an error thrown when a terminally failed session is retried;
// retry requires a new session
var ErrSessionFailed = errors.New("session failed")

// ErrCorruptOutput is an error thrown when a merged object fails the format
// magic-number check; the merge itself completed
var ErrCorruptOutput = errors.New("corrupt reassembly output")

// ErrResourceUnavailable is an error thrown when every recovery candidate URL fails
var ErrResourceUnavailable = errors.New("resource unavailable")
