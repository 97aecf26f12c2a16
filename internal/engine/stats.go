package engine

import "github.com/segfaultlab/segheap/internal/block"

// Statistics is a coarse summary of heap occupancy, recomputed by a
// direct block walk rather than accumulated incrementally, since the
// engine keeps no running allocation-count bookkeeping of its own.
type Statistics struct {
	BlockCount      int
	AllocatedBlocks int
	FreeBlocks      int
	AllocatedBytes  int
	FreeBytes       int
	HeapSize        int
}

// DetailedStatistics additionally breaks free bytes down per size
// class.
type DetailedStatistics struct {
	Statistics
	FreeBytesByBucket [25]int
	FreeCountByBucket [25]int
}

// Statistics walks every physical block once and reports occupancy.
func (e *Engine) Statistics() Statistics {
	var s Statistics
	e.walk(func(header int, size int, allocated bool) {
		s.BlockCount++
		s.HeapSize += size
		if allocated {
			s.AllocatedBlocks++
			s.AllocatedBytes += size
		} else {
			s.FreeBlocks++
			s.FreeBytes += size
		}
	})
	return s
}

// DetailedStatistics additionally classifies each free block by the
// size-class bucket it would be found in.
func (e *Engine) DetailedStatistics() DetailedStatistics {
	var d DetailedStatistics
	buf := e.p.Bytes()
	e.walk(func(header int, size int, allocated bool) {
		d.BlockCount++
		d.HeapSize += size
		if allocated {
			d.AllocatedBlocks++
			d.AllocatedBytes += size
			return
		}
		d.FreeBlocks++
		d.FreeBytes += size
		i := sizeclassIndex(buf, header)
		d.FreeBytesByBucket[i] += size
		d.FreeCountByBucket[i]++
	})
	return d
}

// walk visits every physical block from heapStart to the end of the
// managed region in address order.
func (e *Engine) walk(visit func(header, size int, allocated bool)) {
	buf := e.p.Bytes()
	for h := e.heapStart; h < len(buf); h = block.NextBlock(buf, h) {
		visit(h, block.Size(buf, h), block.IsAllocated(buf, h))
	}
}
