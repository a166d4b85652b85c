package cpu

import (
	"github.com/born-ml/detect/internal/parallel"
	"github.com/born-ml/detect/internal/tensor"
)

// SumDim sums tensor elements along the specified dimension.
//
// Parameters:
//   - dim: dimension to reduce (supports negative indexing: -1 = last dim)
//   - keepDim: if true, keep the reduced dimension with size 1; if false, remove it
//
// Example:
//
//	x := tensor.Ones[float32](tensor.Shape{2, 3, 4}, backend)
//	y := backend.SumDim(x.Raw(), -1, true)   // shape: [2, 3, 1]
//	z := backend.SumDim(x.Raw(), -1, false)  // shape: [2, 3]
func (cpu *CPUBackend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return cpu.reduce("sumdim", x, dim, keepDim, false)
}

// MeanDim computes the mean of tensor elements along the specified dimension.
// Per-sample losses are MeanDim'd over every non-batch axis.
func (cpu *CPUBackend) MeanDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return cpu.reduce("meandim", x, dim, keepDim, true)
}

func (cpu *CPUBackend) reduce(op string, x *tensor.RawTensor, dim int, keepDim, mean bool) *tensor.RawTensor {
	shape := x.Shape()
	d := normalizeDim(op, dim, shape.Rank())

	outShape := shape.Without(d)
	if keepDim {
		outShape = shape.Clone()
		outShape[d] = 1
	}
	result := cpu.alloc(op, outShape, x.DType())

	switch x.DType() {
	case tensor.Float32:
		reduceKernel(result.AsFloat32(), x.AsFloat32(), shape, d, mean, cpu.par)
	case tensor.Float64:
		reduceKernel(result.AsFloat64(), x.AsFloat64(), shape, d, mean, cpu.par)
	default:
		panic(unsupported(op, x.DType()))
	}

	return result
}

// reduceKernel accumulates in float64 for every input dtype.
func reduceKernel[T float](dst, src []T, shape tensor.Shape, dim int, mean bool, par parallel.Config) {
	outer, size, inner := shape.Split(dim)
	parallel.ForRange(outer*inner, func(s, e int) {
		for j := s; j < e; j++ {
			o, i := j/inner, j%inner
			base := o*size*inner + i
			var sum float64
			for k := 0; k < size; k++ {
				sum += float64(src[base+k*inner])
			}
			if mean {
				sum /= float64(size)
			}
			dst[j] = T(sum)
		}
	}, par)
}
