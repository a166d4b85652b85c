package data

import (
	"iter"
	"math/rand/v2"
)

// Sampler yields dataset indices. Every call to All starts a new pass.
type Sampler interface {
	Len() int
	All() iter.Seq[int]
}

// Batcher yields groups of dataset indices, one group per batch.
type Batcher interface {
	Len() int
	All() iter.Seq[[]int]
}

// SequentialSampler yields 0..n-1 in order.
type SequentialSampler struct {
	n int
}

// NewSequentialSampler creates a sampler over [0, n).
func NewSequentialSampler(n int) *SequentialSampler {
	return &SequentialSampler{n: max(n, 0)}
}

// Len returns n.
func (s *SequentialSampler) Len() int { return s.n }

// All yields the indices in order.
func (s *SequentialSampler) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := range s.n {
			if !yield(i) {
				return
			}
		}
	}
}

// RandomSampler yields a fresh uniform permutation of [0, n) on every pass.
type RandomSampler struct {
	n   int
	rng *rand.Rand
}

// NewRandomSampler creates a shuffling sampler over [0, n).
// A nil rng uses the global math/rand/v2 source.
func NewRandomSampler(n int, rng *rand.Rand) *RandomSampler {
	return &RandomSampler{n: max(n, 0), rng: rng}
}

// Len returns n.
func (s *RandomSampler) Len() int { return s.n }

// All yields one permutation.
func (s *RandomSampler) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		var perm []int
		if s.rng != nil {
			perm = s.rng.Perm(s.n)
		} else {
			perm = rand.Perm(s.n)
		}
		for _, i := range perm {
			if !yield(i) {
				return
			}
		}
	}
}
