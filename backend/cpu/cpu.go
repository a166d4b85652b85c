// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/detect/internal/backend/cpu"
	"github.com/born-ml/detect/internal/parallel"
	"github.com/born-ml/detect/tensor"
)

// Backend represents the CPU backend implementation.
type Backend = internalcpu.CPUBackend

// Config controls how kernels fan out across goroutines.
type Config = parallel.Config

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a CPU backend using one worker per physical core.
//
// Example:
//
//	import (
//	    "github.com/born-ml/detect/backend/cpu"
//	    "github.com/born-ml/detect/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	}
func New() *Backend {
	return internalcpu.New()
}

// NewWithConfig creates a CPU backend with explicit parallelism settings.
func NewWithConfig(cfg Config) *Backend {
	return internalcpu.NewWithConfig(cfg)
}

// DefaultConfig returns the parallelism settings used by New.
func DefaultConfig() Config {
	return parallel.DefaultConfig()
}

// Sequential returns settings that never spawn goroutines.
func Sequential() Config {
	return parallel.Sequential()
}
