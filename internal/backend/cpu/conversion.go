package cpu

import "github.com/born-ml/detect/internal/tensor"

// Cast converts tensor to a different data type.
//
// Conversion rules:
//   - float -> int: truncation toward zero
//   - any -> bool: non-zero is true
//   - bool -> numeric: false = 0, true = 1
func (cpu *CPUBackend) Cast(x *tensor.RawTensor, dtype tensor.DataType) *tensor.RawTensor {
	if x.DType() == tensor.Float64 && dtype == tensor.Float32 {
		result := cpu.alloc("cast", x.Shape(), dtype)
		dst := result.AsFloat32()
		for i, v := range x.AsFloat64() {
			dst[i] = float32(v)
		}
		return result
	}
	return must("cast")(tensor.Cast(x, dtype))
}
