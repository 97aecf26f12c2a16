package engine

import (
	"github.com/segfaultlab/segheap/internal/block"
	"github.com/segfaultlab/segheap/internal/freelist"
)

// Reallocate resizes the block owning payload to hold newSize bytes,
// trying every in-place path before falling back to allocate+copy+free.
// payload == NullAddr is treated as a plain allocation request.
func (e *Engine) Reallocate(payload int, newSize int) int {
	result := e.reallocate(payload, newSize)
	if result != NullAddr {
		// A grow or shrink path may have changed the block's committed
		// size without going through Allocate's armGuard call, so
		// re-arm here; armGuard reads the block's current size itself.
		e.armGuard(block.HeaderFromPayload(result))
	}
	return result
}

func (e *Engine) reallocate(payload int, newSize int) int {
	if payload == NullAddr {
		return e.Allocate(newSize)
	}
	if newSize <= 0 {
		e.Free(payload)
		return NullAddr
	}

	need := e.needFor(newSize)
	header := block.HeaderFromPayload(payload)
	buf := e.p.Bytes()
	cur := block.Size(buf, header)

	if need <= cur {
		return e.shrink(buf, header, cur, need)
	}

	hasNext := block.HasNext(buf, header)
	hasPrev := block.HasPrev(header, e.heapStart)
	var nextHeader, prevHeader int
	nextFree, prevFree := false, false
	if hasNext {
		nextHeader = block.NextBlock(buf, header)
		nextFree = !block.IsAllocated(buf, nextHeader)
	}
	if hasPrev {
		prevHeader = block.PrevBlock(buf, header)
		prevFree = !block.IsAllocated(buf, prevHeader)
	}

	if hasPrev && hasNext && prevFree && nextFree {
		sum := block.Size(buf, prevHeader) + cur + block.Size(buf, nextHeader)
		if sum >= need {
			return e.reallocSandwich(buf, header, prevHeader, nextHeader, cur, sum, need)
		}
	}

	if hasNext && nextFree {
		combined := cur + block.Size(buf, nextHeader)
		if combined >= need {
			return e.reallocForward(buf, header, nextHeader, cur, combined, need)
		}
	}

	if hasPrev && prevFree {
		available := block.Size(buf, prevHeader) + cur
		if available >= need {
			return e.reallocBackward(buf, header, prevHeader, cur, available, need)
		}
	}

	if !hasNext {
		return e.reallocTail(header, hasPrev, prevHeader, prevFree, cur, need)
	}

	return e.reallocFallback(payload, header, cur, newSize)
}

// shrink only splits off a free tail when the leftover is strictly
// larger than MinSize; a leftover of exactly MinSize stays with the
// block, unlike place, which splits at a residue >= MinSize.
func (e *Engine) shrink(buf []byte, header, cur, need int) int {
	residue := cur - need
	if residue > block.MinSize {
		block.WriteHeaderFooter(buf, header, need, true)
		tail := header + need
		block.WriteHeaderFooter(buf, tail, residue, false)
		e.coalesceAndInsert(buf, tail)
	}
	return block.Payload(header)
}

// reallocSandwich handles the case where b is flanked by two free
// neighbours whose combined size covers need.
func (e *Engine) reallocSandwich(buf []byte, header, prevHeader, nextHeader, cur, sum, need int) int {
	nextSize := block.Size(buf, nextHeader)
	freelist.Unlink(buf, nextHeader)
	freelist.Unlink(buf, prevHeader)
	copyLen := cur - 2*block.WordSize
	slack := sum - need

	if slack < block.MinSize {
		movePayload(buf, block.Payload(prevHeader), block.Payload(header), copyLen)
		block.WriteHeaderFooter(buf, prevHeader, sum, true)
		return block.Payload(prevHeader)
	}

	base := nextHeader + nextSize - need
	movePayload(buf, block.Payload(base), block.Payload(header), copyLen)
	block.WriteHeaderFooter(buf, base, need, true)
	block.WriteHeaderFooter(buf, prevHeader, slack, false)
	e.coalesceAndInsert(buf, prevHeader)
	return block.Payload(base)
}

// reallocForward handles the case where the block stays put and
// absorbs a free right neighbour.
func (e *Engine) reallocForward(buf []byte, header, nextHeader, cur, combined, need int) int {
	freelist.Unlink(buf, nextHeader)
	residue := combined - need
	if residue < block.MinSize {
		block.WriteHeaderFooter(buf, header, combined, true)
		return block.Payload(header)
	}
	block.WriteHeaderFooter(buf, header, need, true)
	tail := header + need
	block.WriteHeaderFooter(buf, tail, residue, false)
	e.coalesceAndInsert(buf, tail)
	return block.Payload(header)
}

// reallocBackward handles the case where the block moves down into a
// free left neighbour.
func (e *Engine) reallocBackward(buf []byte, header, prevHeader, cur, available, need int) int {
	freelist.Unlink(buf, prevHeader)
	copyLen := cur - 2*block.WordSize
	residue := available - need

	if residue < block.MinSize {
		movePayload(buf, block.Payload(prevHeader), block.Payload(header), copyLen)
		block.WriteHeaderFooter(buf, prevHeader, available, true)
		return block.Payload(prevHeader)
	}

	base := header + cur - need
	movePayload(buf, block.Payload(base), block.Payload(header), copyLen)
	block.WriteHeaderFooter(buf, base, need, true)
	block.WriteHeaderFooter(buf, prevHeader, residue, false)
	e.coalesceAndInsert(buf, prevHeader)
	return block.Payload(base)
}

// reallocTail handles the case where b is the last block in the heap,
// so growth extends the provider directly instead of moving anything,
// absorbing a free left neighbour first if one exists.
func (e *Engine) reallocTail(header int, hasPrev bool, prevHeader int, prevFree bool, cur, need int) int {
	// The caller already tried the backward-only path above, so if
	// hasPrev && prevFree holds here, prev alone was not enough and
	// extra is guaranteed positive.
	// The heap is extended before prev is unlinked or any payload moves,
	// so a refused Extend leaves the original block and free lists intact.
	base := header
	extra := need - cur
	absorbPrev := hasPrev && prevFree
	if absorbPrev {
		base = prevHeader
		extra = need - (block.Size(e.p.Bytes(), prevHeader) + cur)
	}

	if _, ok := e.p.Extend(extra); !ok {
		return NullAddr
	}
	buf := e.p.Bytes()
	if absorbPrev {
		freelist.Unlink(buf, prevHeader)
		copyLen := cur - 2*block.WordSize
		movePayload(buf, block.Payload(prevHeader), block.Payload(header), copyLen)
	}
	block.WriteHeaderFooter(buf, base, need, true)
	return block.Payload(base)
}

// reallocFallback handles the case where no in-place path worked, so
// allocate fresh, copy the old payload and free the old block. Only
// cur - 2W bytes of payload ever existed, so that is exactly how much
// is copied regardless of how much larger the new request is.
func (e *Engine) reallocFallback(payload, header, cur, newSize int) int {
	newPayload := e.Allocate(newSize)
	if newPayload == NullAddr {
		return NullAddr
	}
	buf := e.p.Bytes()
	copyLen := cur - 2*block.WordSize
	copy(buf[newPayload:newPayload+copyLen], buf[payload:payload+copyLen])
	e.Free(payload)
	return newPayload
}

// movePayload copies n bytes of payload data. src and dst may overlap
// when a block moves into an adjacent neighbour, hence copy rather
// than a manual loop.
func movePayload(buf []byte, dst, src, n int) {
	copy(buf[dst:dst+n], buf[src:src+n])
}
