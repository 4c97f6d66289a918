package downloader

import (
	"time"
)

// Request describes a single download job. It is immutable once submitted.
type Request struct {
	// URL is the pre-validated source URL
	URL string
	// ReadTimeout optionally overrides the engine's read timeout (0 = default)
	ReadTimeout time.Duration
	// SizeHint is the declared size in bytes, if the caller knows it (0 = unknown)
	SizeHint int64
}

// Result is the terminal outcome of a download job. Exactly one of Path and
// Err is meaningful: on success Path points at the completed artifact and the
// caller takes ownership of it.
type Result struct {
	JobID string
	Path  string
	Err   error
}

// JobHandle is returned by Pool.Submit and lets the caller await the job's
// terminal state. Done receives exactly one Result.
type JobHandle struct {
	ID   string
	Done <-chan Result
}

// ProgressEvent is a single progress notification produced by the transfer
// engine. Percent is in the range 0-100 inclusive.
type ProgressEvent struct {
	JobID   string
	Percent int
}

// ProgressFunc receives progress percentages during a transfer. It is invoked
// from the worker goroutine executing the job and must not block.
type ProgressFunc func(percent int)
