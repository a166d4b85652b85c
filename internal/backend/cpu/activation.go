package cpu

import (
	"math"

	"github.com/born-ml/detect/internal/parallel"
	"github.com/born-ml/detect/internal/tensor"
)

// Softmax applies softmax along the specified dimension.
// softmax(x)[i] = exp(x[i] - max) / sum(exp(x - max)).
func (cpu *CPUBackend) Softmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	return cpu.axisNormalize("softmax", x, dim, false)
}

// LogSoftmax computes x - logsumexp(x) along dim.
// The max is subtracted first, so large logits do not overflow.
func (cpu *CPUBackend) LogSoftmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	return cpu.axisNormalize("logsoftmax", x, dim, true)
}

func (cpu *CPUBackend) axisNormalize(op string, x *tensor.RawTensor, dim int, logSpace bool) *tensor.RawTensor {
	shape := x.Shape()
	d := normalizeDim(op, dim, shape.Rank())
	result := cpu.alloc(op, shape, x.DType())

	switch x.DType() {
	case tensor.Float32:
		softmaxKernel(result.AsFloat32(), x.AsFloat32(), shape, d, logSpace, cpu.par)
	case tensor.Float64:
		softmaxKernel(result.AsFloat64(), x.AsFloat64(), shape, d, logSpace, cpu.par)
	default:
		panic(unsupported(op, x.DType()))
	}

	return result
}

func softmaxKernel[T float](dst, src []T, shape tensor.Shape, dim int, logSpace bool, par parallel.Config) {
	outer, size, inner := shape.Split(dim)
	parallel.ForRange(outer*inner, func(s, e int) {
		for j := s; j < e; j++ {
			o, i := j/inner, j%inner
			base := o*size*inner + i

			maxVal := math.Inf(-1)
			for k := 0; k < size; k++ {
				maxVal = math.Max(maxVal, float64(src[base+k*inner]))
			}

			var sum float64
			for k := 0; k < size; k++ {
				sum += math.Exp(float64(src[base+k*inner]) - maxVal)
			}

			if logSpace {
				lse := maxVal + math.Log(sum)
				for k := 0; k < size; k++ {
					dst[base+k*inner] = T(float64(src[base+k*inner]) - lse)
				}
				continue
			}
			for k := 0; k < size; k++ {
				dst[base+k*inner] = T(math.Exp(float64(src[base+k*inner])-maxVal) / sum)
			}
		}
	}, par)
}
