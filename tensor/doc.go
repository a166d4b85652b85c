// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides type-safe tensors for detection losses and data
// loading.
//
// # Overview
//
// A Tensor[T, B] pairs a typed view of a RawTensor with the Backend that
// executes its operations. Losses and batch collation are written only
// against the Backend interface, so the same code runs on the parallel CPU
// backend and on the reference MockBackend.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/detect/backend/cpu"
//	    "github.com/born-ml/detect/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    logits, _ := tensor.FromSlice([]float32{2, -1, 0.5}, tensor.Shape{1, 3}, backend)
//	    logp := logits.LogSoftmax(-1)
//	    label, _ := tensor.FromSlice([]int32{0}, tensor.Shape{1}, backend)
//	    nll := logp.Pick(label, -1, false).Neg()
//	}
//
// # Supported Data Types
//
// The DType constraint admits float32, float64, int32, int64 and bool.
// Arithmetic kernels of the CPU backend operate on float32 and float64;
// integer tensors carry labels and indices.
//
// # Broadcasting
//
// Binary, comparison and selection operations follow NumPy broadcasting:
//
//	a := tensor.Zeros[float32](tensor.Shape{3, 1}, backend)     // (3, 1)
//	b := tensor.Ones[float32](tensor.Shape{3, 4}, backend)      // (3, 4)
//	c := a.Add(b)                                                // (3, 4)
//
// # Errors
//
// Creation functions return errors. Operations on mismatched shapes panic
// with an "op: ..." message, which callers treat as programmer errors.
package tensor
