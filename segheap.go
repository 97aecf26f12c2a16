// Package segheap is a boundary-tagged, segregated-fit heap allocator
// that manages a caller-supplied byte region instead of the Go
// runtime's own heap. It is a direct, in-language re-derivation of the
// classic first-fit/best-of-K-buckets malloc design: a fixed number of
// power-of-two free-list buckets, in-band free-list links stored inside
// the free blocks themselves, and a five-path in-place reallocation
// engine that tries to avoid a copy whenever physically possible.
//
// Addresses handed to and accepted from callers are integer byte
// offsets into the managed region, not Go pointers, which is what lets
// the region grow via append-style reallocation without invalidating
// anything a caller is holding onto.
package segheap

import (
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/segfaultlab/segheap/internal/engine"
	"github.com/segfaultlab/segheap/provider"
)

// Addr is a byte offset into the managed region, as returned by
// Allocate/Reallocate. NullAddr denotes "no block".
type Addr = int

// NullAddr is the sentinel returned on allocation failure or an
// invalid-size request.
const NullAddr = engine.NullAddr

// Allocator is the public facade over internal/engine.Engine: it owns
// the Provider and translates engine-level errors into the package's
// own sentinel errors.
type Allocator struct {
	engine *engine.Engine
	p      provider.Provider
}

// New creates an Allocator backed by p, reserving p's initial
// bucket-head prefix. p should be freshly constructed; New extends it
// itself.
func New(p provider.Provider, opts ...Option) (*Allocator, error) {
	cfg := newConfig(opts)
	e := engine.New(p, cfg.engineConfig)
	if err := e.Init(); err != nil {
		return nil, ErrOutOfMemory
	}
	return &Allocator{engine: e, p: p}, nil
}

// Bytes exposes the raw managed region so callers can read or write
// payload bytes at the offsets Allocate/Reallocate return. The
// returned slice is only valid until the next Allocate/Reallocate call
// that grows the heap.
func (a *Allocator) Bytes() []byte { return a.p.Bytes() }

// Allocate reserves size bytes and returns their offset, or NullAddr
// if size == 0 or the provider could not extend far enough.
func (a *Allocator) Allocate(size int) Addr {
	return a.engine.Allocate(size)
}

// Free releases the block at addr. Freeing an address not previously
// returned by Allocate/Reallocate is undefined behavior; freeing an
// already-freed address is a logged no-op.
func (a *Allocator) Free(addr Addr) {
	a.engine.Free(addr)
}

// Reallocate resizes the block at addr to hold size bytes, preserving
// its content up to min(old, new) usable bytes. It returns NullAddr,
// leaving the original block untouched, if growth fails.
func (a *Allocator) Reallocate(addr Addr, size int) Addr {
	return a.engine.Reallocate(addr, size)
}

// CheckIntegrity walks every block and every free list, verifying the
// allocator's structural invariants. It is diagnostic-only.
func (a *Allocator) CheckIntegrity() error {
	if err := a.engine.CheckIntegrity(); err != nil {
		return ErrCorrupted
	}
	return nil
}

// Stats reports coarse heap occupancy.
func (a *Allocator) Stats() engine.Statistics {
	return a.engine.Statistics()
}

// DetailedStats additionally breaks free bytes down by size-class
// bucket.
func (a *Allocator) DetailedStats() engine.DetailedStatistics {
	return a.engine.DetailedStatistics()
}

// WriteJSON emits a structured, block-by-block dump of the heap.
func (a *Allocator) WriteJSON(writer *jwriter.Writer) {
	a.engine.WriteJSON(writer)
}
