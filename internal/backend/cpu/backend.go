// Package cpu implements the CPU backend: typed float32/float64 kernels with
// NumPy broadcasting, fanned out over physical cores for large inputs.
package cpu

import (
	"fmt"

	"github.com/born-ml/detect/internal/parallel"
	"github.com/born-ml/detect/internal/tensor"
)

// Verify that CPUBackend implements tensor.Backend.
var _ tensor.Backend = (*CPUBackend)(nil)

// CPUBackend implements tensor operations on CPU.
type CPUBackend struct {
	device tensor.Device
	par    parallel.Config
}

// New creates a new CPU backend using parallel.DefaultConfig.
func New() *CPUBackend {
	return NewWithConfig(parallel.DefaultConfig())
}

// NewWithConfig creates a CPU backend with an explicit parallelism config.
// Use parallel.Sequential() for deterministic single-threaded execution.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{
		device: tensor.CPU,
		par:    cfg,
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// Parallelism returns the worker configuration used by the kernels.
func (cpu *CPUBackend) Parallelism() parallel.Config {
	return cpu.par
}

// Features lists the instruction-set extensions of the host CPU.
func (cpu *CPUBackend) Features() []string {
	return parallel.Features()
}

func (cpu *CPUBackend) alloc(op string, shape tensor.Shape, dtype tensor.DataType) *tensor.RawTensor {
	return tensor.MustRaw(op, shape, dtype, cpu.device)
}

func normalizeDim(op string, dim, rank int) int {
	d, err := tensor.NormalizeDim(dim, rank)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}
	return d
}

func unsupported(op string, dtype tensor.DataType) string {
	return fmt.Sprintf("%s: unsupported dtype %s (only float32/float64 supported)", op, dtype)
}
