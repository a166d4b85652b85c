package data

import (
	"fmt"
	"iter"
	"strings"
	"sync"
)

// LastBatch selects what happens to a final group smaller than the batch size.
type LastBatch int

// Last-batch policies. The zero value means "not set" and behaves as keep.
const (
	LastBatchUnset LastBatch = iota
	LastBatchKeep
	LastBatchDiscard
	LastBatchRollover
)

var lastBatchNames = [...]string{
	LastBatchUnset:    "",
	LastBatchKeep:     "keep",
	LastBatchDiscard:  "discard",
	LastBatchRollover: "rollover",
}

// String returns the policy name.
func (lb LastBatch) String() string {
	if lb < 0 || int(lb) >= len(lastBatchNames) {
		return fmt.Sprintf("LastBatch(%d)", int(lb))
	}
	if lb == LastBatchUnset {
		return "keep"
	}
	return lastBatchNames[lb]
}

// ParseLastBatch parses "keep", "discard" or "rollover".
func ParseLastBatch(s string) (LastBatch, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for lb, n := range lastBatchNames {
		if n != "" && n == name {
			return LastBatch(lb), nil
		}
	}
	return LastBatchUnset, fmt.Errorf("%w: unknown last batch policy %q", ErrInvalidConfig, s)
}

// BatchSampler groups the indices of a Sampler into fixed-size batches.
//
// With LastBatchRollover the indices left over at the end of a pass are held
// back and open the first batch of the next pass. The buffer lives as long as
// the BatchSampler; Reset clears it.
type BatchSampler struct {
	sampler Sampler
	size    int
	last    LastBatch

	mu   sync.Mutex
	prev []int
}

// NewBatchSampler wraps sampler into groups of size indices.
func NewBatchSampler(sampler Sampler, size int, last LastBatch) (*BatchSampler, error) {
	if sampler == nil {
		return nil, fmt.Errorf("%w: batch sampler needs an index sampler", ErrInvalidConfig)
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: batch size %d must be positive", ErrInvalidConfig, size)
	}
	switch last {
	case LastBatchUnset:
		last = LastBatchKeep
	case LastBatchKeep, LastBatchDiscard, LastBatchRollover:
	default:
		return nil, fmt.Errorf("%w: unknown last batch policy %s", ErrInvalidConfig, last)
	}
	return &BatchSampler{sampler: sampler, size: size, last: last}, nil
}

// BatchSize returns the group size.
func (b *BatchSampler) BatchSize() int { return b.size }

// LastBatch returns the last-batch policy.
func (b *BatchSampler) LastBatch() LastBatch { return b.last }

// Len returns the number of groups the next pass yields.
func (b *BatchSampler) Len() int {
	n := b.sampler.Len()
	switch b.last {
	case LastBatchDiscard:
		return n / b.size
	case LastBatchRollover:
		b.mu.Lock()
		defer b.mu.Unlock()
		return (len(b.prev) + n) / b.size
	default:
		return (n + b.size - 1) / b.size
	}
}

// Pending returns the number of indices carried over by rollover.
func (b *BatchSampler) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.prev)
}

// Reset drops any indices carried over by rollover.
func (b *BatchSampler) Reset() {
	b.mu.Lock()
	b.prev = nil
	b.mu.Unlock()
}

// All yields one pass of groups. Each yielded slice is freshly allocated.
// A pass stopped early by the consumer does not update the rollover buffer.
func (b *BatchSampler) All() iter.Seq[[]int] {
	return func(yield func([]int) bool) {
		batch := make([]int, 0, b.size)
		b.mu.Lock()
		batch = append(batch, b.prev...)
		b.prev = nil
		b.mu.Unlock()

		for i := range b.sampler.All() {
			batch = append(batch, i)
			if len(batch) == b.size {
				if !yield(batch) {
					return
				}
				batch = make([]int, 0, b.size)
			}
		}

		if len(batch) == 0 {
			return
		}
		switch b.last {
		case LastBatchKeep:
			yield(batch)
		case LastBatchRollover:
			b.mu.Lock()
			b.prev = batch
			b.mu.Unlock()
		}
	}
}
