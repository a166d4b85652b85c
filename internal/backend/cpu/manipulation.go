package cpu

import (
	"fmt"

	"github.com/born-ml/detect/internal/tensor"
)

// Reshape returns a tensor with the same data but a different shape.
func (cpu *CPUBackend) Reshape(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	return must("reshape")(tensor.Reshape(x, shape))
}

// Expand broadcasts x to shape, materializing the repeated elements.
func (cpu *CPUBackend) Expand(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	return must("expand")(tensor.Expand(x, shape))
}

// Unsqueeze inserts a size-1 dimension at dim.
func (cpu *CPUBackend) Unsqueeze(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	return must("unsqueeze")(tensor.Unsqueeze(x, dim))
}

// Squeeze removes dimension dim, which must have size 1.
func (cpu *CPUBackend) Squeeze(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	return must("squeeze")(tensor.Squeeze(x, dim))
}

// Cat concatenates tensors along dim.
//
// Example:
//
//	a: [2, 3], b: [2, 5]
//	Cat([a, b], 1) -> [2, 8]
func (cpu *CPUBackend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	return must("cat")(tensor.Concat(tensors, dim))
}

// must converts a (tensor, error) pair into a panic tagged with op.
func must(op string) func(*tensor.RawTensor, error) *tensor.RawTensor {
	return func(r *tensor.RawTensor, err error) *tensor.RawTensor {
		if err != nil {
			panic(fmt.Sprintf("%s: %v", op, err))
		}
		return r
	}
}
