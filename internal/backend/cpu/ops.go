package cpu

import (
	"fmt"
	"math"

	"github.com/born-ml/detect/internal/parallel"
	"github.com/born-ml/detect/internal/tensor"
)

type float interface {
	~float32 | ~float64
}

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("add", a, b, add[float32], add[float64])
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("sub", a, b, sub[float32], sub[float64])
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("mul", a, b, mul[float32], mul[float64])
}

// Div performs element-wise division with broadcasting.
func (cpu *CPUBackend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("div", a, b, div[float32], div[float64])
}

// Minimum returns the element-wise minimum with broadcasting.
// NaN propagates, as with math.Min.
func (cpu *CPUBackend) Minimum(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("minimum", a, b, minimum[float32], minimum[float64])
}

// Maximum returns the element-wise maximum with broadcasting.
func (cpu *CPUBackend) Maximum(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("maximum", a, b, maximum[float32], maximum[float64])
}

func add[T float](x, y T) T { return x + y }
func sub[T float](x, y T) T { return x - y }
func mul[T float](x, y T) T { return x * y }
func div[T float](x, y T) T { return x / y }

func minimum[T float](x, y T) T { return T(math.Min(float64(x), float64(y))) }
func maximum[T float](x, y T) T { return T(math.Max(float64(x), float64(y))) }

func (cpu *CPUBackend) binary(
	op string,
	a, b *tensor.RawTensor,
	f32 func(x, y float32) float32,
	f64 func(x, y float64) float64,
) *tensor.RawTensor {
	outShape, _, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch %s vs %s", op, a.DType(), b.DType()))
	}

	result := cpu.alloc(op, outShape, a.DType())

	switch a.DType() {
	case tensor.Float32:
		binaryKernel(result.AsFloat32(), a.AsFloat32(), b.AsFloat32(), outShape, a.Shape(), b.Shape(), f32, cpu.par)
	case tensor.Float64:
		binaryKernel(result.AsFloat64(), a.AsFloat64(), b.AsFloat64(), outShape, a.Shape(), b.Shape(), f64, cpu.par)
	default:
		panic(unsupported(op, a.DType()))
	}

	return result
}

// binaryKernel has three paths: same shape, scalar right operand, and the
// general strided broadcast.
func binaryKernel[T float](dst, a, b []T, outShape, aShape, bShape tensor.Shape, f func(x, y T) T, par parallel.Config) {
	switch {
	case aShape.Equal(bShape):
		parallel.ForRange(len(dst), func(s, e int) {
			for i := s; i < e; i++ {
				dst[i] = f(a[i], b[i])
			}
		}, par)
	case len(b) == 1 && len(a) == len(dst):
		y := b[0]
		parallel.ForRange(len(dst), func(s, e int) {
			for i := s; i < e; i++ {
				dst[i] = f(a[i], y)
			}
		}, par)
	default:
		outStrides := outShape.ComputeStrides()
		aStrides := tensor.BroadcastStrides(aShape, outShape)
		bStrides := tensor.BroadcastStrides(bShape, outShape)
		parallel.ForRange(len(dst), func(s, e int) {
			for i := s; i < e; i++ {
				dst[i] = f(a[tensor.FlatIndex(i, outStrides, aStrides)], b[tensor.FlatIndex(i, outStrides, bStrides)])
			}
		}, par)
	}
}
