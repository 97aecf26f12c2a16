package engine

import (
	"github.com/pkg/errors"
	"github.com/segfaultlab/segheap/internal/block"
	"github.com/segfaultlab/segheap/internal/freelist"
	"github.com/segfaultlab/segheap/internal/sizeclass"
)

func sizeclassIndex(buf []byte, header int) int {
	return sizeclass.Index(block.Size(buf, header))
}

// CheckIntegrity walks the heap and every free-list bucket, verifying
// header/footer consistency, alignment, adjacency, bucket membership
// and bucket size ordering.
func (e *Engine) CheckIntegrity() error {
	buf := e.p.Bytes()

	prevAllocated := true
	freeInHeap := 0
	for h := e.heapStart; h < len(buf); h = block.NextBlock(buf, h) {
		size := block.Size(buf, h)
		if size < block.MinSize {
			return errors.Wrapf(ErrCorrupted, "block at %d has size %d below minimum %d", h, size, block.MinSize)
		}
		if size%block.WordSize != 0 {
			return errors.Wrapf(ErrCorrupted, "block at %d has unaligned size %d", h, size)
		}
		footer := block.Footer(buf, h)
		if footer >= len(buf) {
			return errors.Wrapf(ErrCorrupted, "block at %d overruns heap end", h)
		}
		if block.ReadWord(buf, h) != block.ReadWord(buf, footer) {
			return errors.Wrapf(ErrCorrupted, "block at %d has mismatched header/footer", h)
		}

		allocated := block.IsAllocated(buf, h)
		if !allocated {
			freeInHeap++
			if !prevAllocated {
				return errors.Wrapf(ErrCorrupted, "two physically adjacent free blocks meet at %d", h)
			}
			i := sizeclassIndex(buf, h)
			if !freelist.Contains(buf, i, h) {
				return errors.Wrapf(ErrCorrupted, "free block at %d is not linked into bucket %d", h, i)
			}
		}
		prevAllocated = allocated
	}

	freeInLists := 0
	for i := 0; i < sizeclass.K; i++ {
		lo, hi := sizeclass.Bounds(i)
		prevSize := -1
		for cur := freelist.Head(buf, i); cur != block.Null; cur = block.LinkNext(buf, cur) {
			if block.IsAllocated(buf, cur) {
				return errors.Wrapf(ErrCorrupted, "bucket %d holds allocated block at %d", i, cur)
			}
			size := block.Size(buf, cur)
			if size < lo || (hi != -1 && size >= hi) {
				return errors.Wrapf(ErrCorrupted, "block at %d has size %d outside bucket %d's range", cur, size, i)
			}
			if prevSize != -1 && size < prevSize {
				return errors.Wrapf(ErrCorrupted, "bucket %d not size-ordered: block at %d has size %d after size %d", i, cur, size, prevSize)
			}
			prevSize = size
			freeInLists++
		}
	}
	if freeInLists != freeInHeap {
		return errors.Wrapf(ErrCorrupted, "free block count mismatch: %d in heap, %d in free lists", freeInHeap, freeInLists)
	}

	return nil
}

// MustCheckIntegrity panics if CheckIntegrity finds a violation, for
// callers that want fail-fast behaviour. The engine itself never calls
// it.
func (e *Engine) MustCheckIntegrity() {
	if err := e.CheckIntegrity(); err != nil {
		panic(err)
	}
}
