// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/born-ml/detect/internal/tensor"

// Backend is the capability set every compute backend implements:
// broadcasting arithmetic, element-wise math, axis reductions and softmax,
// comparisons, selection (Where, Pick, OneHot), shape operations and casts.
//
// Implementations:
//   - backend/cpu: typed float32/float64 kernels, parallel for large inputs
//   - MockBackend: naive float64 reference, used to cross-check backends
//
// Example:
//
//	import (
//	    "github.com/born-ml/detect/backend/cpu"
//	    "github.com/born-ml/detect/tensor"
//	)
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	y := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//	z := x.Add(y)  // Uses backend.Add under the hood
type Backend = tensor.Backend

// MockBackend is a slow, obviously-correct reference backend computing in
// float64. It is useful in tests of code written against Backend.
type MockBackend = tensor.MockBackend

// NewMockBackend creates a reference backend.
func NewMockBackend() *MockBackend {
	return tensor.NewMockBackend()
}
