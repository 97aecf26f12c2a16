// Package freelist implements per-bucket, size-ordered doubly linked
// free lists: the K bucket heads live as the first K words of the
// managed heap region itself, not a side table in the host process,
// and every link lives in-band inside the free block it belongs to.
package freelist

import (
	"github.com/segfaultlab/segheap/internal/block"
	"github.com/segfaultlab/segheap/internal/sizeclass"
)

// PrefixSize is the number of bytes the K bucket heads occupy at the
// base of the managed region, 8-byte aligned.
var PrefixSize = block.Align(sizeclass.K * block.WordSize)

func headOffset(i int) int {
	return i * block.WordSize
}

// Init zeroes the bucket-head prefix of a freshly extended buf.
func Init(buf []byte) {
	for i := 0; i < sizeclass.K; i++ {
		block.WriteWord(buf, headOffset(i), uint64(block.Null))
	}
}

// Head returns the offset of the smallest-size block in bucket i, or
// block.Null if the bucket is empty.
func Head(buf []byte, i int) int {
	return int(block.ReadWord(buf, headOffset(i)))
}

func setHead(buf []byte, i, addr int) {
	block.WriteWord(buf, headOffset(i), uint64(addr))
}

// Insert splices the free block at header into the bucket its size
// belongs in, keeping the bucket's blocks in non-decreasing size
// order. O(length of the bucket).
func Insert(buf []byte, header int) {
	i := sizeclass.Index(block.Size(buf, header))
	size := block.Size(buf, header)

	head := Head(buf, i)
	if head == block.Null {
		setHead(buf, i, header)
		block.SetLinkPrev(buf, header, block.Null)
		block.SetLinkNext(buf, header, block.Null)
		return
	}

	prev := block.Null
	cur := head
	for cur != block.Null && block.Size(buf, cur) < size {
		prev = cur
		cur = block.LinkNext(buf, cur)
	}

	block.SetLinkPrev(buf, header, prev)
	block.SetLinkNext(buf, header, cur)
	if cur != block.Null {
		block.SetLinkPrev(buf, cur, header)
	}
	if prev != block.Null {
		block.SetLinkNext(buf, prev, header)
	} else {
		setHead(buf, i, header)
	}
}

// Unlink removes the free block at header from its bucket. header must
// currently be a member of some bucket's list.
func Unlink(buf []byte, header int) {
	i := sizeclass.Index(block.Size(buf, header))
	prev := block.LinkPrev(buf, header)
	next := block.LinkNext(buf, header)

	if prev != block.Null {
		block.SetLinkNext(buf, prev, next)
	} else {
		setHead(buf, i, next)
	}
	if next != block.Null {
		block.SetLinkPrev(buf, next, prev)
	}
}

// Contains reports whether header appears somewhere in bucket i's
// list. Used only by the integrity checker; O(bucket length).
func Contains(buf []byte, i, header int) bool {
	for cur := Head(buf, i); cur != block.Null; cur = block.LinkNext(buf, cur) {
		if cur == header {
			return true
		}
	}
	return false
}
