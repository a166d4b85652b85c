package cpu

import (
	"fmt"

	"github.com/born-ml/detect/internal/tensor"
)

// Where selects elements from x where condition is true, from y otherwise.
// condition must be a bool tensor; all three operands broadcast together.
// Elements are copied as raw bytes, so any dtype works.
func (cpu *CPUBackend) Where(condition, x, y *tensor.RawTensor) *tensor.RawTensor {
	if condition.DType() != tensor.Bool {
		panic(fmt.Sprintf("where: condition must be bool, got %s", condition.DType()))
	}
	if x.DType() != y.DType() {
		panic(fmt.Sprintf("where: dtype mismatch %s vs %s", x.DType(), y.DType()))
	}

	xy, _, err := tensor.BroadcastShapes(x.Shape(), y.Shape())
	if err != nil {
		panic(fmt.Sprintf("where: %v", err))
	}
	outShape, _, err := tensor.BroadcastShapes(condition.Shape(), xy)
	if err != nil {
		panic(fmt.Sprintf("where: %v", err))
	}

	result := cpu.alloc("where", outShape, x.DType())
	dst, xs, ys := result.Data(), x.Data(), y.Data()
	cond := condition.AsBool()
	size := x.DType().Size()

	outStrides := outShape.ComputeStrides()
	cStrides := tensor.BroadcastStrides(condition.Shape(), outShape)
	xStrides := tensor.BroadcastStrides(x.Shape(), outShape)
	yStrides := tensor.BroadcastStrides(y.Shape(), outShape)

	for i := 0; i < outShape.NumElements(); i++ {
		var src []byte
		if cond[tensor.FlatIndex(i, outStrides, cStrides)] {
			j := tensor.FlatIndex(i, outStrides, xStrides) * size
			src = xs[j : j+size]
		} else {
			j := tensor.FlatIndex(i, outStrides, yStrides) * size
			src = ys[j : j+size]
		}
		copy(dst[i*size:(i+1)*size], src)
	}

	return result
}

// Pick selects one element along dim for every position of index.
//
// index holds integer class ids and has x's shape with dim removed (a size-1
// dim is also accepted). Ids outside [0, size) are clipped to the nearest
// valid class; callers mask those positions afterwards.
//
// Example:
//
//	x:     [N, C] log-probabilities
//	index: [N]    int32 class ids
//	out:   [N, 1] with keepDim, [N] otherwise
func (cpu *CPUBackend) Pick(x, index *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	shape := x.Shape()
	d := normalizeDim("pick", dim, shape.Rank())
	outer, size, inner := shape.Split(d)
	if index.NumElements() != outer*inner {
		panic(fmt.Sprintf("pick: index shape %v does not match %v without dimension %d", index.Shape(), shape, d))
	}

	outShape := shape.Without(d)
	if keepDim {
		outShape = shape.Clone()
		outShape[d] = 1
	}
	result := cpu.alloc("pick", outShape, x.DType())

	ids := indexValues(index)
	dst, src := result.Data(), x.Data()
	elem := x.DType().Size()
	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			j := o*inner + i
			k := min(max(ids[j], 0), size-1)
			from := (o*size*inner + k*inner + i) * elem
			copy(dst[j*elem:(j+1)*elem], src[from:from+elem])
		}
	}

	return result
}

// OneHot encodes integer indices along a new trailing axis of size depth.
// Indices outside [0, depth) produce an all-zero row.
func (cpu *CPUBackend) OneHot(index *tensor.RawTensor, depth int, dtype tensor.DataType) *tensor.RawTensor {
	return must("onehot")(tensor.OneHot(index, depth, dtype))
}

func indexValues(index *tensor.RawTensor) []int {
	ids := make([]int, index.NumElements())
	switch index.DType() {
	case tensor.Int32:
		for i, v := range index.AsInt32() {
			ids[i] = int(v)
		}
	case tensor.Int64:
		for i, v := range index.AsInt64() {
			ids[i] = int(v)
		}
	default:
		for i, v := range index.Float64s() {
			ids[i] = int(v)
		}
	}
	return ids
}
