// Package data implements detection data loading: datasets, index samplers,
// batch grouping and collation of records into batched tensors.
package data

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is returned when loader or sampler options conflict.
	ErrInvalidConfig = errors.New("data: invalid config")

	// ErrBatchify is returned when a group of records cannot be collated.
	ErrBatchify = errors.New("data: cannot batchify")

	// ErrIndexOutOfRange is returned by Get for an index outside [0, Len()).
	ErrIndexOutOfRange = errors.New("data: index out of range")
)

// Dataset is an indexable collection of records.
type Dataset interface {
	Len() int
	Get(i int) (Field, error)
}

// SliceDataset is an in-memory dataset.
type SliceDataset []Field

// Len returns the number of records.
func (s SliceDataset) Len() int { return len(s) }

// Get returns record i.
func (s SliceDataset) Get(i int) (Field, error) {
	if i < 0 || i >= len(s) {
		return nil, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, i, len(s))
	}
	return s[i], nil
}

// Subset exposes the first records of another dataset.
type Subset struct {
	ds    Dataset
	limit int
}

// NewSubset wraps ds, exposing at most limit records.
// A limit larger than the dataset is clamped to its length.
func NewSubset(ds Dataset, limit int) (*Subset, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: subset limit %d is negative", ErrInvalidConfig, limit)
	}
	return &Subset{ds: ds, limit: min(limit, ds.Len())}, nil
}

// Len returns the subset size.
func (s *Subset) Len() int { return s.limit }

// Get returns record i of the underlying dataset.
func (s *Subset) Get(i int) (Field, error) {
	if i < 0 || i >= s.limit {
		return nil, fmt.Errorf("%w: %d (subset limit %d)", ErrIndexOutOfRange, i, s.limit)
	}
	return s.ds.Get(i)
}
