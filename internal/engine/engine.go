// Package engine implements the allocator's placement, splitting,
// coalescing and reallocation logic directly on top of package block
// and package freelist.
//
// Every address the engine hands out or accepts is a byte offset into
// the Provider's buffer, never a Go pointer, so growth through
// Provider.Extend (which may reallocate the backing array) never
// invalidates an address a caller is holding.
package engine

import (
	"github.com/pkg/errors"
	"github.com/segfaultlab/segheap/internal/block"
	"github.com/segfaultlab/segheap/internal/freelist"
	"github.com/segfaultlab/segheap/internal/sizeclass"
	"github.com/segfaultlab/segheap/provider"
)

// NullAddr is the sentinel "no block" address returned by Allocate on
// failure and accepted by Reallocate as a plain allocation request. It
// can never collide with a real payload offset, since every real
// header sits above freelist.PrefixSize > 0.
const NullAddr = -1

var (
	// ErrOutOfMemory is returned (wrapped) by Init when the provider
	// refuses to extend the heap for the bucket-head prefix.
	ErrOutOfMemory = errors.New("engine: provider refused to extend heap")
	// ErrCorrupted is returned by CheckIntegrity when a structural
	// invariant of the heap no longer holds.
	ErrCorrupted = errors.New("engine: heap integrity check failed")
)

// Engine is the boundary-tag allocator itself. It owns no memory: all
// state lives inside the bytes handed back by its Provider, except for
// heapStart, which is fixed once Init has reserved the bucket-head
// prefix.
type Engine struct {
	p         provider.Provider
	cfg       Config
	heapStart int
}

// New wraps p with an Engine using cfg. Call Init before any other
// method.
func New(p provider.Provider, cfg Config) *Engine {
	if cfg.LastBlockThreshold <= 0 {
		cfg.LastBlockThreshold = DefaultLastBlockThreshold
	}
	return &Engine{p: p, cfg: cfg}
}

// Init reserves the K-word bucket-head prefix at the base of the
// managed region. It must be called exactly once before any
// Allocate/Free/Reallocate call.
func (e *Engine) Init() error {
	base, ok := e.p.Extend(freelist.PrefixSize)
	if !ok {
		return errors.WithStack(ErrOutOfMemory)
	}
	if base != 0 {
		return errors.New("engine: provider did not start at offset 0")
	}
	freelist.Init(e.p.Bytes())
	e.heapStart = freelist.PrefixSize
	return nil
}

func (e *Engine) needFor(size int) int {
	need := block.Align(size + debugMargin + 2*block.WordSize)
	if need < block.MinSize {
		need = block.MinSize
	}
	return need
}

// Allocate reserves a block able to hold size bytes of payload and
// returns the offset of its first payload byte, or NullAddr if the
// provider could not extend the heap far enough. size == 0 always
// returns NullAddr without touching the heap.
func (e *Engine) Allocate(size int) int {
	if size <= 0 {
		return NullAddr
	}
	need := e.needFor(size)

	if header, ok := e.findFit(need); ok {
		buf := e.p.Bytes()
		e.place(buf, header, need)
		e.armGuard(header)
		return block.Payload(header)
	}

	header, ok := e.grow(need)
	if !ok {
		return NullAddr
	}
	e.armGuard(header)
	return block.Payload(header)
}

// armGuard writes the debug_segheap guard bytes past the end of the
// caller-visible payload, reading the block's actual committed size
// rather than the caller's requested need: a consume-whole split (or a
// merged grow branch) can commit a block larger than need, and arming
// from need would place the guard over live payload bytes instead of
// past them. A no-op outside the debug_segheap build tag.
func (e *Engine) armGuard(header int) {
	if debugMargin == 0 {
		return
	}
	buf := e.p.Bytes()
	size := block.Size(buf, header)
	writeGuard(buf, header+size-block.WordSize-debugMargin)
}

// checkGuard reports whether the guard bytes past a block's payload
// are intact; always true outside the debug_segheap build tag.
func (e *Engine) checkGuard(header int) bool {
	if debugMargin == 0 {
		return true
	}
	buf := e.p.Bytes()
	size := block.Size(buf, header)
	return validateGuard(buf, header+size-block.WordSize-debugMargin)
}

// findFit performs a first-fit scan: starting at the bucket the
// request would live in and walking every bucket above it, since a
// bucket only guarantees a lower bound on the sizes it holds.
func (e *Engine) findFit(need int) (header int, ok bool) {
	buf := e.p.Bytes()
	start := sizeclass.Index(need)
	for i := start; i < sizeclass.K; i++ {
		for cur := freelist.Head(buf, i); cur != block.Null; cur = block.LinkNext(buf, cur) {
			if block.Size(buf, cur) >= need {
				return cur, true
			}
		}
	}
	return 0, false
}

// place carves an allocated block of need bytes out of the free block
// at header, splitting off and reinserting the remainder when it is
// large enough to stand on its own; otherwise the whole free block is
// allocated.
func (e *Engine) place(buf []byte, header, need int) {
	freelist.Unlink(buf, header)
	total := block.Size(buf, header)
	residue := total - need
	if residue < block.MinSize {
		block.WriteHeaderFooter(buf, header, total, true)
		return
	}
	block.WriteHeaderFooter(buf, header, need, true)
	tail := header + need
	block.WriteHeaderFooter(buf, tail, residue, false)
	e.coalesceAndInsert(buf, tail)
}

// grow extends the heap to satisfy a request that no free block could
// fit, applying the last-block heuristic: a free last block above the
// threshold is extended in place instead of abandoned.
func (e *Engine) grow(need int) (header int, ok bool) {
	buf := e.p.Bytes()
	lastHeader, lastSize, lastFree := e.lastBlock(buf)

	if lastFree {
		if lastSize > e.cfg.LastBlockThreshold {
			extra := need - lastSize
			if _, ok := e.p.Extend(extra); !ok {
				return 0, false
			}
			buf = e.p.Bytes()
			freelist.Unlink(buf, lastHeader)
			block.WriteHeaderFooter(buf, lastHeader, need, true)
			return lastHeader, true
		}
		// Small free tail: leave it alone (it stays free and in its
		// bucket) and satisfy the request from a freshly appended
		// region instead.
		base, ok := e.p.Extend(need)
		if !ok {
			return 0, false
		}
		buf = e.p.Bytes()
		block.WriteHeaderFooter(buf, base, need, true)
		return base, true
	}

	if need > e.cfg.LastBlockThreshold {
		base, ok := e.p.Extend(need)
		if !ok {
			return 0, false
		}
		buf = e.p.Bytes()
		block.WriteHeaderFooter(buf, base, need, true)
		return base, true
	}

	base, ok := e.p.Extend(2 * need)
	if !ok {
		return 0, false
	}
	buf = e.p.Bytes()
	block.WriteHeaderFooter(buf, base, need, true)
	freeHeader := base + need
	block.WriteHeaderFooter(buf, freeHeader, need, false)
	e.coalesceAndInsert(buf, freeHeader)
	return base, true
}

// lastBlock reports the header, size and free status of the physically
// last block in the heap. Callers must treat an empty heap the same as
// "last block allocated".
func (e *Engine) lastBlock(buf []byte) (header, size int, free bool) {
	if len(buf) <= e.heapStart {
		return 0, 0, false
	}
	footer := len(buf) - block.WordSize
	size = block.Size(buf, footer)
	free = !block.IsAllocated(buf, footer)
	header = footer - size + block.WordSize
	return header, size, free
}

// Free returns the block owning payload to its free list, coalescing
// with any free physical neighbours first. Freeing an already-free
// block is logged and otherwise ignored rather than corrupting the
// heap.
func (e *Engine) Free(payload int) {
	header := block.HeaderFromPayload(payload)
	buf := e.p.Bytes()

	if !block.IsAllocated(buf, header) {
		e.cfg.logger().Warn("segheap: double free ignored", "payload", payload)
		return
	}

	if !e.checkGuard(header) {
		e.cfg.logger().Error("segheap: heap corruption detected past payload", "payload", payload)
		panic(errors.Wrapf(ErrCorrupted, "guard bytes overwritten past payload %d", payload))
	}

	header = e.coalesce(buf, header)
	freelist.Insert(buf, header)
	block.SetAllocated(buf, header, false)
}

// coalesce merges the block at b with any free physical neighbour on
// either side, unlinking each absorbed neighbour from its free list
// first. It returns the header of the resulting (possibly relocated)
// block. b's own allocated bit is left untouched by the merge and must
// be set by the caller once coalescing is complete.
func (e *Engine) coalesce(buf []byte, b int) int {
	if block.HasNext(buf, b) {
		n := block.NextBlock(buf, b)
		if !block.IsAllocated(buf, n) {
			freelist.Unlink(buf, n)
			merged := block.Size(buf, b) + block.Size(buf, n)
			block.WriteHeaderFooter(buf, b, merged, block.IsAllocated(buf, b))
		}
	}
	if block.HasPrev(b, e.heapStart) {
		p := block.PrevBlock(buf, b)
		if !block.IsAllocated(buf, p) {
			freelist.Unlink(buf, p)
			merged := block.Size(buf, p) + block.Size(buf, b)
			allocated := block.IsAllocated(buf, b)
			block.WriteHeaderFooter(buf, p, merged, allocated)
			b = p
		}
	}
	return b
}

// coalesceAndInsert runs coalesce on a block that has just been split
// out as free and reinserts the result. Most call sites' neighbours
// are already known allocated, making the coalesce step a no-op there;
// it is kept uniform rather than special-cased per call site.
func (e *Engine) coalesceAndInsert(buf []byte, header int) {
	header = e.coalesce(buf, header)
	freelist.Insert(buf, header)
}
