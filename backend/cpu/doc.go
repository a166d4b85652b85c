// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor operations.
//
// # Overview
//
// This package implements a CPU backend with:
//   - Pure Go implementation (no CGO)
//   - Float32 and Float64 kernels
//   - NumPy-compatible broadcasting
//   - Numerically stable sigmoid, softmax and log-softmax
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/detect/backend/cpu"
//	    "github.com/born-ml/detect/nn"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    cfg := nn.DefaultFocalConfig()
//	    cfg.NumClass = 80
//	    focal, err := nn.NewFocalLoss(cfg, backend)
//	}
//
// # Performance
//
// Element-wise kernels split large inputs into contiguous chunks processed
// by one goroutine per physical core, as detected by cpuid. Inputs smaller
// than twice Config.MinChunkSize run on the calling goroutine. Use
// NewWithConfig(Sequential()) for strictly single-threaded execution.
//
// # Thread Safety
//
// The CPU backend is safe for concurrent use. Each tensor operation
// is isolated and does not share mutable state.
package cpu
