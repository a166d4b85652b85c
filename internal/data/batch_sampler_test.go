package data

import (
	"math/rand/v2"
	"slices"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(b Batcher) [][]int {
	var out [][]int
	for g := range b.All() {
		out = append(out, g)
	}
	return out
}

func TestSequentialSampler(t *testing.T) {
	s := NewSequentialSampler(5)
	assert.Equal(t, 5, s.Len())
	assert.Equal(t, []int{0, 1, 2, 3, 4}, slices.Collect(s.All()))
	// Restartable.
	assert.Equal(t, []int{0, 1, 2, 3, 4}, slices.Collect(s.All()))

	assert.Empty(t, slices.Collect(NewSequentialSampler(-3).All()))
}

func TestRandomSampler_Permutation(t *testing.T) {
	s := NewRandomSampler(20, rand.New(rand.NewPCG(1, 2)))
	assert.Equal(t, 20, s.Len())

	first := slices.Collect(s.All())
	second := slices.Collect(s.All())
	assert.NotEqual(t, first, second, "each pass draws a new permutation")

	for _, perm := range [][]int{first, second} {
		sorted := slices.Clone(perm)
		sort.Ints(sorted)
		assert.Equal(t, slices.Collect(NewSequentialSampler(20).All()), sorted)
	}
}

func TestRandomSampler_Deterministic(t *testing.T) {
	a := NewRandomSampler(10, rand.New(rand.NewPCG(7, 7)))
	b := NewRandomSampler(10, rand.New(rand.NewPCG(7, 7)))
	assert.Equal(t, slices.Collect(a.All()), slices.Collect(b.All()))
}

func TestRandomSampler_GlobalSource(t *testing.T) {
	perm := slices.Collect(NewRandomSampler(8, nil).All())
	sort.Ints(perm)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, perm)
}

func TestBatchSampler_Policies(t *testing.T) {
	tests := []struct {
		name   string
		last   LastBatch
		want   [][]int
		length int
	}{
		{
			name:   "keep",
			last:   LastBatchKeep,
			want:   [][]int{{0, 1, 2}, {3, 4, 5}, {6, 7, 8}, {9}},
			length: 4,
		},
		{
			name:   "unset behaves as keep",
			last:   LastBatchUnset,
			want:   [][]int{{0, 1, 2}, {3, 4, 5}, {6, 7, 8}, {9}},
			length: 4,
		},
		{
			name:   "discard",
			last:   LastBatchDiscard,
			want:   [][]int{{0, 1, 2}, {3, 4, 5}, {6, 7, 8}},
			length: 3,
		},
		{
			name:   "rollover",
			last:   LastBatchRollover,
			want:   [][]int{{0, 1, 2}, {3, 4, 5}, {6, 7, 8}},
			length: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bs, err := NewBatchSampler(NewSequentialSampler(10), 3, tt.last)
			require.NoError(t, err)
			assert.Equal(t, tt.length, bs.Len())
			assert.Equal(t, tt.want, collect(bs))
		})
	}
}

func TestBatchSampler_RolloverCarriesIntoNextEpoch(t *testing.T) {
	bs, err := NewBatchSampler(NewSequentialSampler(10), 3, LastBatchRollover)
	require.NoError(t, err)

	assert.Equal(t, [][]int{{0, 1, 2}, {3, 4, 5}, {6, 7, 8}}, collect(bs))
	assert.Equal(t, 1, bs.Pending())

	// 1 carried + 10 new = 11 indices -> 3 full groups, 2 carried.
	assert.Equal(t, 3, bs.Len())
	assert.Equal(t, [][]int{{9, 0, 1}, {2, 3, 4}, {5, 6, 7}}, collect(bs))
	assert.Equal(t, 2, bs.Pending())

	// 2 + 10 = 12 -> 4 groups, nothing carried.
	assert.Equal(t, 4, bs.Len())
	assert.Equal(t, [][]int{{8, 9, 0}, {1, 2, 3}, {4, 5, 6}, {7, 8, 9}}, collect(bs))
	assert.Zero(t, bs.Pending())
}

func TestBatchSampler_Reset(t *testing.T) {
	bs, err := NewBatchSampler(NewSequentialSampler(4), 3, LastBatchRollover)
	require.NoError(t, err)

	collect(bs)
	require.Equal(t, 1, bs.Pending())

	bs.Reset()
	assert.Zero(t, bs.Pending())
	assert.Equal(t, [][]int{{0, 1, 2}}, collect(bs))
}

func TestBatchSampler_EarlyStop(t *testing.T) {
	bs, err := NewBatchSampler(NewSequentialSampler(10), 3, LastBatchRollover)
	require.NoError(t, err)

	for range bs.All() {
		break
	}
	assert.Zero(t, bs.Pending())
	assert.Equal(t, [][]int{{0, 1, 2}, {3, 4, 5}, {6, 7, 8}}, collect(bs))
}

func TestBatchSampler_GroupsAreIndependent(t *testing.T) {
	bs, err := NewBatchSampler(NewSequentialSampler(6), 2, LastBatchKeep)
	require.NoError(t, err)

	groups := collect(bs)
	groups[0][0] = 99
	assert.Equal(t, []int{2, 3}, groups[1])
}

func TestBatchSampler_Errors(t *testing.T) {
	_, err := NewBatchSampler(nil, 3, LastBatchKeep)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewBatchSampler(NewSequentialSampler(3), 0, LastBatchKeep)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewBatchSampler(NewSequentialSampler(3), 2, LastBatch(42))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestParseLastBatch(t *testing.T) {
	for _, lb := range []LastBatch{LastBatchKeep, LastBatchDiscard, LastBatchRollover} {
		got, err := ParseLastBatch(lb.String())
		require.NoError(t, err)
		assert.Equal(t, lb, got)
	}

	got, err := ParseLastBatch(" Rollover ")
	require.NoError(t, err)
	assert.Equal(t, LastBatchRollover, got)

	_, err = ParseLastBatch("drop")
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = ParseLastBatch("")
	assert.ErrorIs(t, err, ErrInvalidConfig)

	assert.Equal(t, "keep", LastBatchUnset.String())
	assert.Equal(t, "LastBatch(9)", LastBatch(9).String())
}
