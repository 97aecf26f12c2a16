package block_test

import (
	"testing"

	"github.com/segfaultlab/segheap/internal/block"
	"github.com/stretchr/testify/require"
)

func TestAlign(t *testing.T) {
	require.Equal(t, 0, block.Align(0))
	require.Equal(t, 8, block.Align(1))
	require.Equal(t, 8, block.Align(8))
	require.Equal(t, 16, block.Align(9))
	require.Equal(t, 1016, block.Align(1000+16))
}

func TestHeaderFooterRoundTrip(t *testing.T) {
	buf := make([]byte, 64)
	block.WriteHeaderFooter(buf, 0, 32, true)

	require.Equal(t, 32, block.Size(buf, 0))
	require.True(t, block.IsAllocated(buf, 0))
	require.Equal(t, 24, block.Footer(buf, 0))
	require.Equal(t, block.Size(buf, 0), block.Size(buf, block.Footer(buf, 0)))
}

func TestSetAllocatedPreservesSize(t *testing.T) {
	buf := make([]byte, 64)
	block.WriteHeaderFooter(buf, 0, 32, true)
	block.SetAllocated(buf, 0, false)

	require.False(t, block.IsAllocated(buf, 0))
	require.Equal(t, 32, block.Size(buf, 0))
	require.False(t, block.IsAllocated(buf, block.Footer(buf, 0)))
}

func TestNextBlockAndHasNext(t *testing.T) {
	buf := make([]byte, 64)
	block.WriteHeaderFooter(buf, 0, 32, true)
	block.WriteHeaderFooter(buf, 32, 32, false)

	require.True(t, block.HasNext(buf, 0))
	require.Equal(t, 32, block.NextBlock(buf, 0))
	require.False(t, block.HasNext(buf, 32))
	require.Equal(t, len(buf), block.NextBlock(buf, 32))
}

func TestPrevBlock(t *testing.T) {
	buf := make([]byte, 96)
	heapStart := 0
	block.WriteHeaderFooter(buf, 0, 32, true)
	block.WriteHeaderFooter(buf, 32, 40, false)

	require.True(t, block.HasPrev(32, heapStart))
	require.Equal(t, 0, block.PrevBlock(buf, 32))
	require.False(t, block.HasPrev(0, heapStart))
}

func TestPayloadRoundTrip(t *testing.T) {
	require.Equal(t, 8, block.Payload(0))
	require.Equal(t, 0, block.HeaderFromPayload(8))
}

func TestFreeLinks(t *testing.T) {
	buf := make([]byte, 32)
	block.WriteHeaderFooter(buf, 0, 32, false)
	block.SetLinkPrev(buf, 0, block.Null)
	block.SetLinkNext(buf, 0, 24)

	require.Equal(t, block.Null, block.LinkPrev(buf, 0))
	require.Equal(t, 24, block.LinkNext(buf, 0))
}
