package tensor

import "fmt"

// Data-movement operations on RawTensor shared by backends. They are
// dtype-agnostic: elements are copied as opaque byte runs.

// Reshape returns a copy of x with a new shape holding the same number of elements.
func Reshape(x *RawTensor, newShape Shape) (*RawTensor, error) {
	return x.Clone().WithShape(newShape)
}

// Unsqueeze inserts a size-1 dimension at dim (dim may equal the rank, or be
// negative counting from rank+1).
func Unsqueeze(x *RawTensor, dim int) (*RawTensor, error) {
	d, err := NormalizeDim(dim, x.shape.Rank()+1)
	if err != nil {
		return nil, err
	}
	return Reshape(x, x.shape.Insert(d, 1))
}

// Squeeze removes dimension dim, which must have size 1.
func Squeeze(x *RawTensor, dim int) (*RawTensor, error) {
	d, err := NormalizeDim(dim, x.shape.Rank())
	if err != nil {
		return nil, err
	}
	if x.shape[d] != 1 {
		return nil, fmt.Errorf("cannot squeeze dimension %d of size %d", d, x.shape[d])
	}
	return Reshape(x, x.shape.Without(d))
}

// Expand broadcasts x to targetShape following NumPy rules.
func Expand(x *RawTensor, targetShape Shape) (*RawTensor, error) {
	out, _, err := BroadcastShapes(x.shape, targetShape)
	if err != nil {
		return nil, err
	}
	if !out.Equal(targetShape) {
		return nil, fmt.Errorf("cannot expand %v to %v", x.shape, targetShape)
	}

	result, err := NewRaw(targetShape, x.dtype, x.device)
	if err != nil {
		return nil, err
	}

	size := x.dtype.Size()
	outStrides := targetShape.ComputeStrides()
	inStrides := BroadcastStrides(x.shape, targetShape)
	n := targetShape.NumElements()
	for i := 0; i < n; i++ {
		src := FlatIndex(i, outStrides, inStrides) * size
		copy(result.data[i*size:(i+1)*size], x.data[src:src+size])
	}
	return result, nil
}

// Concat joins tensors along an existing dimension. All tensors must share
// dtype and every dimension except dim.
func Concat(tensors []*RawTensor, dim int) (*RawTensor, error) {
	if len(tensors) == 0 {
		return nil, fmt.Errorf("no tensors to concatenate")
	}

	first := tensors[0]
	d, err := NormalizeDim(dim, first.shape.Rank())
	if err != nil {
		return nil, err
	}

	outShape := first.shape.Clone()
	outShape[d] = 0
	for i, t := range tensors {
		if t.dtype != first.dtype {
			return nil, fmt.Errorf("tensor %d has dtype %s, expected %s", i, t.dtype, first.dtype)
		}
		if t.shape.Rank() != first.shape.Rank() {
			return nil, fmt.Errorf("tensor %d has rank %d, expected %d", i, t.shape.Rank(), first.shape.Rank())
		}
		for j := range t.shape {
			if j != d && t.shape[j] != first.shape[j] {
				return nil, fmt.Errorf("tensor %d has shape %v, incompatible with %v at dimension %d",
					i, t.shape, first.shape, j)
			}
		}
		outShape[d] += t.shape[d]
	}

	result, err := NewRaw(outShape, first.dtype, first.device)
	if err != nil {
		return nil, err
	}

	// Each tensor contributes a contiguous run of size*inner elements per outer slice.
	size := first.dtype.Size()
	outer, _, inner := outShape.Split(d)
	dst := 0
	for o := 0; o < outer; o++ {
		for _, t := range tensors {
			run := t.shape[d] * inner * size
			src := o * run
			copy(result.data[dst:dst+run], t.data[src:src+run])
			dst += run
		}
	}
	return result, nil
}

// Cast converts x to dtype. Floats truncate toward zero when cast to integers;
// non-zero values become true when cast to bool.
func Cast(x *RawTensor, dtype DataType) (*RawTensor, error) {
	if x.dtype == dtype {
		return x.Clone(), nil
	}
	result, err := NewRaw(x.shape, dtype, x.device)
	if err != nil {
		return nil, err
	}
	result.SetFloat64s(x.Float64s())
	return result, nil
}

// OneHot encodes integer indices along a new trailing axis of size depth.
// Indices outside [0, depth) produce an all-zero row.
func OneHot(index *RawTensor, depth int, dtype DataType) (*RawTensor, error) {
	if depth <= 0 {
		return nil, fmt.Errorf("depth must be positive, got %d", depth)
	}
	result, err := NewRaw(index.shape.Insert(index.shape.Rank(), depth), dtype, index.device)
	if err != nil {
		return nil, err
	}

	values := make([]float64, result.NumElements())
	for i, v := range index.Float64s() {
		c := int(v)
		if c >= 0 && c < depth {
			values[i*depth+c] = 1
		}
	}
	result.SetFloat64s(values)
	return result, nil
}
