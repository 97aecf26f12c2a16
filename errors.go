package segheap

import "github.com/cockroachdb/errors"

// Sentinel errors returned at the Allocator facade boundary in place of
// internal/engine's pkg/errors-based errors, declared with
// cockroachdb/errors for the outward-facing API.
var (
	// ErrOutOfMemory is returned by New when engine initialisation fails,
	// typically because the Provider refuses to extend the managed region
	// for the bucket-head prefix. Reallocate reports failure as NullAddr.
	ErrOutOfMemory = errors.New("segheap: provider refused to extend heap")
	// ErrCorrupted is returned by CheckIntegrity when a structural
	// invariant of the heap no longer holds.
	ErrCorrupted = errors.New("segheap: heap integrity check failed")
)
