// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package data

import (
	"math/rand/v2"

	"github.com/born-ml/detect/internal/data"
	"github.com/born-ml/detect/internal/tensor"
)

// Errors.
var (
	ErrInvalidConfig   = data.ErrInvalidConfig
	ErrBatchify        = data.ErrBatchify
	ErrIndexOutOfRange = data.ErrIndexOutOfRange
	ErrFormat          = data.ErrFormat
)

// Records

// Kind identifies the variant of a Field.
type Kind = data.Kind

// Field kinds.
const (
	KindArray  Kind = data.KindArray
	KindTuple  Kind = data.KindTuple
	KindLabels Kind = data.KindLabels
)

// Field is one record or one collated batch.
type Field = data.Field

// Array is a dense tensor record.
type Array = data.Array

// Tuple groups several fields of one record.
type Tuple = data.Tuple

// Labels is a variable-length array of fixed-width label rows.
type Labels = data.Labels

// NewArray copies values into a CPU array of the given shape.
func NewArray[T tensor.DType](values []T, shape ...int) (Array, error) {
	return data.NewArray(values, shape...)
}

// NewLabels builds a Labels field, checking that every row is width wide.
func NewLabels(width int, rows ...[]float32) (Labels, error) {
	return data.NewLabels(width, rows...)
}

// TensorOf returns an Array field as a typed tensor on backend b.
func TensorOf[T tensor.DType, B tensor.Backend](f Field, b B) (*tensor.Tensor[T, B], error) {
	return data.TensorOf[T](f, b)
}

// Datasets

// Dataset is an indexable collection of records.
type Dataset = data.Dataset

// SliceDataset is an in-memory dataset.
type SliceDataset = data.SliceDataset

// Subset exposes the first records of another dataset.
type Subset = data.Subset

// NewSubset wraps ds, exposing at most limit records.
func NewSubset(ds Dataset, limit int) (*Subset, error) {
	return data.NewSubset(ds, limit)
}

// SafetensorsDataset serves detection records from a SafeTensors file.
type SafetensorsDataset = data.SafetensorsDataset

// OpenSafetensors opens a dataset written by WriteSafetensors.
func OpenSafetensors(path string) (*SafetensorsDataset, error) {
	return data.OpenSafetensors(path)
}

// WriteSafetensors stores images (leading axis = record) and optional labels.
func WriteSafetensors(path string, images Array, labels []Labels, width int) error {
	return data.WriteSafetensors(path, images, labels, width)
}

// Samplers

// Sampler yields dataset indices.
type Sampler = data.Sampler

// Batcher yields groups of dataset indices.
type Batcher = data.Batcher

// SequentialSampler yields 0..n-1 in order.
type SequentialSampler = data.SequentialSampler

// RandomSampler yields a fresh permutation per pass.
type RandomSampler = data.RandomSampler

// BatchSampler groups sampler indices into fixed-size batches.
type BatchSampler = data.BatchSampler

// LastBatch selects what happens to a final short group.
type LastBatch = data.LastBatch

// Last-batch policies.
const (
	LastBatchUnset    LastBatch = data.LastBatchUnset
	LastBatchKeep     LastBatch = data.LastBatchKeep
	LastBatchDiscard  LastBatch = data.LastBatchDiscard
	LastBatchRollover LastBatch = data.LastBatchRollover
)

// NewSequentialSampler creates a sampler over [0, n).
func NewSequentialSampler(n int) *SequentialSampler {
	return data.NewSequentialSampler(n)
}

// NewRandomSampler creates a shuffling sampler over [0, n). A nil rng uses the
// global source.
func NewRandomSampler(n int, rng *rand.Rand) *RandomSampler {
	return data.NewRandomSampler(n, rng)
}

// NewBatchSampler groups sampler's indices into batches of size.
func NewBatchSampler(sampler Sampler, size int, last LastBatch) (*BatchSampler, error) {
	return data.NewBatchSampler(sampler, size, last)
}

// ParseLastBatch parses "keep", "discard" or "rollover".
func ParseLastBatch(s string) (LastBatch, error) {
	return data.ParseLastBatch(s)
}

// Loading

// Config configures a Loader.
type Config = data.Config

// Loader iterates a Dataset in collated batches.
type Loader[B tensor.Backend] = data.Loader[B]

// DefaultPadValue pads labels when Config.PadValue is nil.
const DefaultPadValue = data.DefaultPadValue

// DefaultConfig returns batch size 1, keep policy and -1 padding.
func DefaultConfig() Config {
	return data.DefaultConfig()
}

// Pad returns a Config.PadValue pointing at v.
func Pad(v float32) *float32 {
	return data.Pad(v)
}

// NewLoader validates cfg and builds a loader over ds.
func NewLoader[B tensor.Backend](ds Dataset, backend B, cfg Config) (*Loader[B], error) {
	return data.NewLoader(ds, backend, cfg)
}

// Batchify collates a group of records into one batch.
func Batchify[B tensor.Backend](b B, records []Field, padValue float32) (Field, error) {
	return data.Batchify(b, records, padValue)
}
