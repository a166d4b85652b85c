package tensor

// Backend defines the capability set every compute backend implements.
// Losses and batch collation are written only against this interface, so any
// implementation can execute them unmodified.
//
// Implementations:
//   - internal/backend/cpu: typed float32/float64 kernels, parallel for large inputs
//   - MockBackend: naive float64 reference used to cross-check other backends
//
// Operations panic with an "op: ..." message on shape or dtype errors.
// Inputs are never modified.
type Backend interface {
	// Element-wise binary operations (NumPy broadcasting).
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor
	Minimum(a, b *RawTensor) *RawTensor
	Maximum(a, b *RawTensor) *RawTensor

	// Scalar operations (element-wise with scalar).
	AddScalar(x *RawTensor, s float64) *RawTensor
	MulScalar(x *RawTensor, s float64) *RawTensor
	PowScalar(x *RawTensor, p float64) *RawTensor

	// Element-wise math.
	Neg(x *RawTensor) *RawTensor
	Abs(x *RawTensor) *RawTensor
	Exp(x *RawTensor) *RawTensor
	Log(x *RawTensor) *RawTensor
	Sigmoid(x *RawTensor) *RawTensor
	ReLU(x *RawTensor) *RawTensor

	// Axis operations.
	Softmax(x *RawTensor, dim int) *RawTensor
	LogSoftmax(x *RawTensor, dim int) *RawTensor
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor
	MeanDim(x *RawTensor, dim int, keepDim bool) *RawTensor

	// Comparison operations (element-wise, broadcasting, return bool tensor).
	Equal(a, b *RawTensor) *RawTensor
	Greater(a, b *RawTensor) *RawTensor
	Lower(a, b *RawTensor) *RawTensor

	// Selection.
	Where(condition, x, y *RawTensor) *RawTensor
	// Pick selects x[..., index[...], ...] along dim. index has x's shape
	// with dim removed (or of size 1); out-of-range indices are clipped.
	Pick(x, index *RawTensor, dim int, keepDim bool) *RawTensor
	// OneHot appends a depth-sized axis; indices outside [0, depth) give an
	// all-zero row.
	OneHot(index *RawTensor, depth int, dtype DataType) *RawTensor

	// Shape operations.
	Reshape(x *RawTensor, shape Shape) *RawTensor
	Expand(x *RawTensor, shape Shape) *RawTensor
	Unsqueeze(x *RawTensor, dim int) *RawTensor
	Squeeze(x *RawTensor, dim int) *RawTensor
	Cat(tensors []*RawTensor, dim int) *RawTensor

	// Type conversion.
	Cast(x *RawTensor, dtype DataType) *RawTensor

	// Metadata.
	Name() string
	Device() Device
}
