package cpu

import (
	"math"

	"github.com/born-ml/detect/internal/parallel"
	"github.com/born-ml/detect/internal/tensor"
)

// Neg computes element-wise negation: -x.
func (cpu *CPUBackend) Neg(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("neg", x, func(v float64) float64 { return -v })
}

// Abs computes element-wise absolute value: |x|.
func (cpu *CPUBackend) Abs(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("abs", x, math.Abs)
}

// Exp computes element-wise exponential: exp(x).
func (cpu *CPUBackend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("exp", x, math.Exp)
}

// Log computes element-wise natural logarithm: ln(x).
// ln(0) = -Inf and ln(x<0) = NaN; callers floor their inputs with an epsilon.
func (cpu *CPUBackend) Log(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("log", x, math.Log)
}

// Sigmoid computes 1 / (1 + exp(-x)) without overflow for large |x|.
func (cpu *CPUBackend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("sigmoid", x, sigmoid)
}

// ReLU computes max(x, 0).
func (cpu *CPUBackend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("relu", x, func(v float64) float64 {
		if v > 0 {
			return v
		}
		return 0
	})
}

// AddScalar computes x + s.
func (cpu *CPUBackend) AddScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	return cpu.unary("addscalar", x, func(v float64) float64 { return v + s })
}

// MulScalar computes x * s.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	return cpu.unary("mulscalar", x, func(v float64) float64 { return v * s })
}

// PowScalar computes x^p. Integer exponents use repeated multiplication.
func (cpu *CPUBackend) PowScalar(x *tensor.RawTensor, p float64) *tensor.RawTensor {
	switch p {
	case 0:
		return cpu.unary("powscalar", x, func(float64) float64 { return 1 })
	case 1:
		return cpu.unary("powscalar", x, func(v float64) float64 { return v })
	case 2:
		return cpu.unary("powscalar", x, func(v float64) float64 { return v * v })
	default:
		return cpu.unary("powscalar", x, func(v float64) float64 { return math.Pow(v, p) })
	}
}

func sigmoid(v float64) float64 {
	if v >= 0 {
		return 1 / (1 + math.Exp(-v))
	}
	e := math.Exp(v)
	return e / (1 + e)
}

func (cpu *CPUBackend) unary(op string, x *tensor.RawTensor, f func(float64) float64) *tensor.RawTensor {
	result := cpu.alloc(op, x.Shape(), x.DType())

	switch x.DType() {
	case tensor.Float32:
		unaryKernel(result.AsFloat32(), x.AsFloat32(), f, cpu.par)
	case tensor.Float64:
		unaryKernel(result.AsFloat64(), x.AsFloat64(), f, cpu.par)
	default:
		panic(unsupported(op, x.DType()))
	}

	return result
}

func unaryKernel[T float](dst, src []T, f func(float64) float64, par parallel.Config) {
	parallel.ForRange(len(dst), func(s, e int) {
		for i := s; i < e; i++ {
			dst[i] = T(f(float64(src[i])))
		}
	}, par)
}
