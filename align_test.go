package mmap

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestPageGranularity(t *testing.T) {
	g := PageGranularity()
	require.Greater(t, g, int64(0))
	require.Zero(t, g&(g-1), "granularity must be a power of two")

	// Cached: repeated calls observe the same value.
	require.Equal(t, g, PageGranularity())
}

func TestPageGranularityConcurrent(t *testing.T) {
	results := make([]int64, 32)

	var eg errgroup.Group
	for i := range results {
		i := i
		eg.Go(func() error {
			results[i] = PageGranularity()
			return nil
		})
	}
	require.NoError(t, eg.Wait())

	for _, g := range results {
		require.Equal(t, results[0], g)
	}
}

func TestAlignDown(t *testing.T) {
	g := PageGranularity()

	tests := []struct {
		offset int64
		want   int64
	}{
		{0, 0},
		{1, 0},
		{g - 1, 0},
		{g, g},
		{g + 1, g},
		{2*g - 1, g},
		{3*g + 7, 3 * g},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, AlignDown(tt.offset, g), "offset %d", tt.offset)
	}
}
