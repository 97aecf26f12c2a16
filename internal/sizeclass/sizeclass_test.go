package sizeclass_test

import (
	"testing"

	"github.com/segfaultlab/segheap/internal/sizeclass"
	"github.com/stretchr/testify/require"
)

func TestIndexSmall(t *testing.T) {
	require.Equal(t, 0, sizeclass.Index(32))
	require.Equal(t, 0, sizeclass.Index(63))
}

func TestIndexMatchesFormula(t *testing.T) {
	// index(1016) == floor(log2(1016)) - 5 == 9 - 5 == 4.
	require.Equal(t, 4, sizeclass.Index(1016))
}

func TestIndexMonotoneNonDecreasing(t *testing.T) {
	prev := sizeclass.Index(32)
	for size := 33; size < 1<<22; size *= 2 {
		got := sizeclass.Index(size)
		require.GreaterOrEqual(t, got, prev)
		prev = got
	}
}

func TestIndexSaturatesAtTopBucket(t *testing.T) {
	require.Equal(t, sizeclass.K-1, sizeclass.Index(1<<40))
}

func TestBoundsRoundTrip(t *testing.T) {
	for i := 0; i < sizeclass.K; i++ {
		lo, hi := sizeclass.Bounds(i)
		require.Equal(t, i, sizeclass.Index(lo))
		if hi > 0 {
			require.Equal(t, i, sizeclass.Index(hi-8))
		}
	}
}
