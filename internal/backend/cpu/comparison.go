package cpu

import (
	"fmt"

	"github.com/born-ml/detect/internal/tensor"
)

// Equal performs element-wise equality comparison (a == b) with broadcasting.
// Returns a bool tensor.
func (cpu *CPUBackend) Equal(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.compare("equal", a, b, func(x, y float64) bool { return x == y })
}

// Greater performs element-wise comparison (a > b) with broadcasting.
func (cpu *CPUBackend) Greater(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.compare("greater", a, b, func(x, y float64) bool { return x > y })
}

// Lower performs element-wise comparison (a < b) with broadcasting.
func (cpu *CPUBackend) Lower(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.compare("lower", a, b, func(x, y float64) bool { return x < y })
}

// compare works for every dtype by widening both operands to float64.
func (cpu *CPUBackend) compare(op string, a, b *tensor.RawTensor, f func(x, y float64) bool) *tensor.RawTensor {
	outShape, _, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch %s vs %s", op, a.DType(), b.DType()))
	}

	result := cpu.alloc(op, outShape, tensor.Bool)
	dst := result.AsBool()
	aData, bData := a.Float64s(), b.Float64s()

	outStrides := outShape.ComputeStrides()
	aStrides := tensor.BroadcastStrides(a.Shape(), outShape)
	bStrides := tensor.BroadcastStrides(b.Shape(), outShape)
	for i := range dst {
		dst[i] = f(aData[tensor.FlatIndex(i, outStrides, aStrides)], bData[tensor.FlatIndex(i, outStrides, bStrides)])
	}

	return result
}
