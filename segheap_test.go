package segheap_test

import (
	"testing"

	"github.com/segfaultlab/segheap"
	"github.com/segfaultlab/segheap/provider"
	"github.com/stretchr/testify/require"
)

func TestAllocateFreeAllocateSameFootprint(t *testing.T) {
	a, err := segheap.New(provider.NewArena(0))
	require.NoError(t, err)

	p := a.Allocate(48)
	require.NotEqual(t, segheap.NullAddr, p)

	footprint := len(a.Bytes())
	a.Free(p)
	q := a.Allocate(48)

	require.Equal(t, p, q, "law: allocate/free/allocate yields the same effective footprint")
	require.Equal(t, footprint, len(a.Bytes()))
}

func TestReallocateGrowPreservesPayload(t *testing.T) {
	a, err := segheap.New(provider.NewArena(0))
	require.NoError(t, err)

	p := a.Allocate(24)
	require.NotEqual(t, segheap.NullAddr, p)

	want := []byte("segheap payload!!!!!!!!!")
	copy(a.Bytes()[p:p+24], want)

	grown := a.Reallocate(p, 96)
	require.NotEqual(t, segheap.NullAddr, grown)
	require.Equal(t, want, a.Bytes()[grown:grown+24], "law: reallocate(p, s') with s' >= s preserves the first s bytes")
	require.NoError(t, a.CheckIntegrity())
}

func TestDoubleFreeDoesNotCorruptHeap(t *testing.T) {
	a, err := segheap.New(provider.NewArena(0))
	require.NoError(t, err)

	p := a.Allocate(16)
	a.Free(p)
	require.NotPanics(t, func() { a.Free(p) })
	require.NoError(t, a.CheckIntegrity())
}

func TestAllocateZeroIsNull(t *testing.T) {
	a, err := segheap.New(provider.NewArena(0))
	require.NoError(t, err)
	require.Equal(t, segheap.NullAddr, a.Allocate(0))
}

func TestOutOfMemoryLeavesAllocatorConsistent(t *testing.T) {
	a, err := segheap.New(provider.NewArena(400))
	require.NoError(t, err)

	last := segheap.NullAddr
	for i := 0; i < 100; i++ {
		p := a.Allocate(64)
		if p == segheap.NullAddr {
			break
		}
		last = p
	}
	require.NotEqual(t, segheap.NullAddr, last, "at least one allocation must succeed before the provider is exhausted")
	require.NoError(t, a.CheckIntegrity())
}

func TestWithLastBlockThreshold(t *testing.T) {
	a, err := segheap.New(provider.NewArena(0), segheap.WithLastBlockThreshold(16))
	require.NoError(t, err)

	p := a.Allocate(8)
	require.NotEqual(t, segheap.NullAddr, p)
	require.NoError(t, a.CheckIntegrity())
}

func TestStatsReflectOccupancy(t *testing.T) {
	a, err := segheap.New(provider.NewArena(0))
	require.NoError(t, err)

	a.Allocate(32)
	a.Allocate(32)
	stats := a.Stats()
	require.Equal(t, 2, stats.AllocatedBlocks)
	require.Greater(t, stats.AllocatedBytes, 0)
}
