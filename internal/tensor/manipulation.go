package tensor

// Cat concatenates tensors along an existing dimension.
//
// Example:
//
//	a := tensor.Ones[float32](Shape{2, 3}, backend)
//	b := tensor.Zeros[float32](Shape{2, 3}, backend)
//	c := tensor.Cat([]*Tensor[float32, B]{a, b}, 0) // Shape: [4, 3]
func Cat[T DType, B Backend](tensors []*Tensor[T, B], dim int) *Tensor[T, B] {
	if len(tensors) == 0 {
		panic("cat: need at least one tensor")
	}

	raws := make([]*RawTensor, len(tensors))
	for i, t := range tensors {
		raws[i] = t.raw
	}

	b := tensors[0].backend
	return New[T, B](b.Cat(raws, dim), b)
}

// Stack joins same-shaped tensors along a new dimension.
//
// Example:
//
//	a := tensor.Ones[float32](Shape{2, 3}, backend)
//	b := tensor.Zeros[float32](Shape{2, 3}, backend)
//	c := tensor.Stack([]*Tensor[float32, B]{a, b}, 0) // Shape: [2, 2, 3]
func Stack[T DType, B Backend](tensors []*Tensor[T, B], dim int) *Tensor[T, B] {
	if len(tensors) == 0 {
		panic("stack: need at least one tensor")
	}

	expanded := make([]*Tensor[T, B], len(tensors))
	for i, t := range tensors {
		expanded[i] = t.Unsqueeze(dim)
	}
	return Cat(expanded, dim)
}

// Where selects elements from x where cond is true and from y elsewhere.
// All three operands broadcast against each other.
//
// Example:
//
//	mask := label.Equal(tensor.Scalar[float32](-1, backend))
//	loss = tensor.Where(mask, tensor.ZerosLike(loss), loss)
func Where[T DType, B Backend](cond *Tensor[bool, B], x, y *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](x.backend.Where(cond.raw, x.raw, y.raw), x.backend)
}

// OneHot encodes integer indices as one-hot vectors along a new trailing axis
// of size depth. Indices outside [0, depth) produce all-zero vectors.
//
// Example:
//
//	labels := ...                               // [N] int32, -1 for background
//	oh := tensor.OneHot[float32](labels, 3)     // [N, 3]
func OneHot[T DType, B Backend](index *Tensor[int32, B], depth int) *Tensor[T, B] {
	return New[T, B](index.backend.OneHot(index.raw, depth, DataTypeOf[T]()), index.backend)
}
