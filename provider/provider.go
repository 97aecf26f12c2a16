// Package provider defines the memory-provider contract the allocator
// is built on top of: the low-level source of the contiguous,
// monotonically growable byte region the engine manages. The engine
// only ever consumes the four operations here (Low, High, Size,
// Extend) plus Bytes to reach the current backing storage.
package provider

// Provider is the external collaborator the engine is built against:
// it owns a single contiguous region of memory and can only ever grow
// it. Implementations must never move previously handed-out bytes in
// a way that changes their offset from Low(); the engine addresses
// everything by offset, never by pointer, so a provider is free to
// reallocate its backing storage on Extend as long as offsets keep
// meaning the same thing.
type Provider interface {
	// Low returns the offset of the first byte of the managed region.
	// Always 0 for every provider in this package; kept as a method
	// rather than a constant so callers can treat providers uniformly.
	Low() int
	// High returns the offset of the last valid byte, or -1 if the
	// region is still empty.
	High() int
	// Size returns the number of bytes currently managed. Equivalent
	// to High()-Low()+1 when non-empty.
	Size() int
	// Extend grows the region by n bytes and returns the offset the
	// new region starts at (equal to the old Size()), or ok=false if
	// growth failed. On failure the region is left exactly as it was.
	Extend(n int) (base int, ok bool)
	// Bytes returns the current backing slice. Callers must re-fetch
	// it after any call to Extend, since the returned slice may have
	// been reallocated.
	Bytes() []byte
}
