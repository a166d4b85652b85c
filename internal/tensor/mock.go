package tensor

import (
	"fmt"
	"math"
)

// Verify that MockBackend implements Backend.
var _ Backend = (*MockBackend)(nil)

// MockBackend is a simple backend for testing.
// It implements every operation naively in float64 for correctness
// verification of optimized backends.
type MockBackend struct{}

// NewMockBackend creates a new MockBackend.
func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

// Name returns the backend name.
func (m *MockBackend) Name() string {
	return "mock"
}

// Device returns the device type.
func (m *MockBackend) Device() Device {
	return CPU
}

// Add performs element-wise addition with broadcasting.
func (m *MockBackend) Add(a, b *RawTensor) *RawTensor {
	return m.elementWise("add", a, b, func(x, y float64) float64 { return x + y })
}

// Sub performs element-wise subtraction with broadcasting.
func (m *MockBackend) Sub(a, b *RawTensor) *RawTensor {
	return m.elementWise("sub", a, b, func(x, y float64) float64 { return x - y })
}

// Mul performs element-wise multiplication with broadcasting.
func (m *MockBackend) Mul(a, b *RawTensor) *RawTensor {
	return m.elementWise("mul", a, b, func(x, y float64) float64 { return x * y })
}

// Div performs element-wise division with broadcasting.
func (m *MockBackend) Div(a, b *RawTensor) *RawTensor {
	return m.elementWise("div", a, b, func(x, y float64) float64 { return x / y })
}

// Minimum returns the element-wise minimum with broadcasting.
func (m *MockBackend) Minimum(a, b *RawTensor) *RawTensor {
	return m.elementWise("minimum", a, b, math.Min)
}

// Maximum returns the element-wise maximum with broadcasting.
func (m *MockBackend) Maximum(a, b *RawTensor) *RawTensor {
	return m.elementWise("maximum", a, b, math.Max)
}

// AddScalar adds s to every element.
func (m *MockBackend) AddScalar(x *RawTensor, s float64) *RawTensor {
	return m.unary("addscalar", x, func(v float64) float64 { return v + s })
}

// MulScalar multiplies every element by s.
func (m *MockBackend) MulScalar(x *RawTensor, s float64) *RawTensor {
	return m.unary("mulscalar", x, func(v float64) float64 { return v * s })
}

// PowScalar raises every element to the power p.
func (m *MockBackend) PowScalar(x *RawTensor, p float64) *RawTensor {
	return m.unary("powscalar", x, func(v float64) float64 { return math.Pow(v, p) })
}

// Neg negates every element.
func (m *MockBackend) Neg(x *RawTensor) *RawTensor {
	return m.unary("neg", x, func(v float64) float64 { return -v })
}

// Abs computes the absolute value.
func (m *MockBackend) Abs(x *RawTensor) *RawTensor {
	return m.unary("abs", x, math.Abs)
}

// Exp computes the exponential.
func (m *MockBackend) Exp(x *RawTensor) *RawTensor {
	return m.unary("exp", x, math.Exp)
}

// Log computes the natural logarithm.
func (m *MockBackend) Log(x *RawTensor) *RawTensor {
	return m.unary("log", x, math.Log)
}

// Sigmoid computes 1 / (1 + exp(-x)).
func (m *MockBackend) Sigmoid(x *RawTensor) *RawTensor {
	return m.unary("sigmoid", x, func(v float64) float64 { return 1 / (1 + math.Exp(-v)) })
}

// ReLU computes max(x, 0).
func (m *MockBackend) ReLU(x *RawTensor) *RawTensor {
	return m.unary("relu", x, func(v float64) float64 { return math.Max(v, 0) })
}

// Softmax normalizes along dim.
func (m *MockBackend) Softmax(x *RawTensor, dim int) *RawTensor {
	logp := m.LogSoftmax(x, dim)
	return m.Exp(logp)
}

// LogSoftmax computes x - logsumexp(x) along dim.
func (m *MockBackend) LogSoftmax(x *RawTensor, dim int) *RawTensor {
	d := m.dim("logsoftmax", dim, x.Shape().Rank())
	outer, size, inner := x.Shape().Split(d)
	src := x.Float64s()
	dst := make([]float64, len(src))

	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			base := o*size*inner + i
			maxVal := math.Inf(-1)
			for k := 0; k < size; k++ {
				maxVal = math.Max(maxVal, src[base+k*inner])
			}
			sum := 0.0
			for k := 0; k < size; k++ {
				sum += math.Exp(src[base+k*inner] - maxVal)
			}
			lse := maxVal + math.Log(sum)
			for k := 0; k < size; k++ {
				dst[base+k*inner] = src[base+k*inner] - lse
			}
		}
	}

	result := m.alloc("logsoftmax", x.Shape(), x.DType())
	result.SetFloat64s(dst)
	return result
}

// SumDim sums along dim.
func (m *MockBackend) SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor {
	return m.reduce("sumdim", x, dim, keepDim, false)
}

// MeanDim averages along dim.
func (m *MockBackend) MeanDim(x *RawTensor, dim int, keepDim bool) *RawTensor {
	return m.reduce("meandim", x, dim, keepDim, true)
}

// Equal compares element-wise with broadcasting.
func (m *MockBackend) Equal(a, b *RawTensor) *RawTensor {
	return m.compare("equal", a, b, func(x, y float64) bool { return x == y })
}

// Greater compares element-wise with broadcasting.
func (m *MockBackend) Greater(a, b *RawTensor) *RawTensor {
	return m.compare("greater", a, b, func(x, y float64) bool { return x > y })
}

// Lower compares element-wise with broadcasting.
func (m *MockBackend) Lower(a, b *RawTensor) *RawTensor {
	return m.compare("lower", a, b, func(x, y float64) bool { return x < y })
}

// Where selects from x where condition is true, from y otherwise.
func (m *MockBackend) Where(condition, x, y *RawTensor) *RawTensor {
	xy, _, err := BroadcastShapes(x.Shape(), y.Shape())
	if err != nil {
		panic(fmt.Sprintf("where: %v", err))
	}
	outShape, _, err := BroadcastShapes(condition.Shape(), xy)
	if err != nil {
		panic(fmt.Sprintf("where: %v", err))
	}

	c, xs, ys := condition.Float64s(), x.Float64s(), y.Float64s()
	out := make([]float64, outShape.NumElements())
	for i := range out {
		if c[m.broadcastIndex(i, outShape, condition.Shape())] != 0 {
			out[i] = xs[m.broadcastIndex(i, outShape, x.Shape())]
		} else {
			out[i] = ys[m.broadcastIndex(i, outShape, y.Shape())]
		}
	}

	result := m.alloc("where", outShape, x.DType())
	result.SetFloat64s(out)
	return result
}

// Pick selects one element along dim per index position, clipping indices.
func (m *MockBackend) Pick(x, index *RawTensor, dim int, keepDim bool) *RawTensor {
	d := m.dim("pick", dim, x.Shape().Rank())
	outer, size, inner := x.Shape().Split(d)
	if index.NumElements() != outer*inner {
		panic(fmt.Sprintf("pick: index shape %v does not match %v without dimension %d", index.Shape(), x.Shape(), d))
	}

	src, idx := x.Float64s(), index.Float64s()
	out := make([]float64, outer*inner)
	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			k := min(max(int(idx[o*inner+i]), 0), size-1)
			out[o*inner+i] = src[o*size*inner+k*inner+i]
		}
	}

	outShape := x.Shape().Without(d)
	if keepDim {
		outShape = x.Shape().Clone()
		outShape[d] = 1
	}
	result := m.alloc("pick", outShape, x.DType())
	result.SetFloat64s(out)
	return result
}

// OneHot encodes indices along a new trailing axis.
func (m *MockBackend) OneHot(index *RawTensor, depth int, dtype DataType) *RawTensor {
	return must("onehot")(OneHot(index, depth, dtype))
}

// Reshape changes tensor shape.
func (m *MockBackend) Reshape(x *RawTensor, shape Shape) *RawTensor {
	return must("reshape")(Reshape(x, shape))
}

// Expand broadcasts to shape.
func (m *MockBackend) Expand(x *RawTensor, shape Shape) *RawTensor {
	return must("expand")(Expand(x, shape))
}

// Unsqueeze inserts a size-1 dimension.
func (m *MockBackend) Unsqueeze(x *RawTensor, dim int) *RawTensor {
	return must("unsqueeze")(Unsqueeze(x, dim))
}

// Squeeze removes a size-1 dimension.
func (m *MockBackend) Squeeze(x *RawTensor, dim int) *RawTensor {
	return must("squeeze")(Squeeze(x, dim))
}

// Cat concatenates along dim.
func (m *MockBackend) Cat(tensors []*RawTensor, dim int) *RawTensor {
	return must("cat")(Concat(tensors, dim))
}

// Cast converts to dtype.
func (m *MockBackend) Cast(x *RawTensor, dtype DataType) *RawTensor {
	return must("cast")(Cast(x, dtype))
}

// elementWise performs element-wise operations with broadcasting.
func (m *MockBackend) elementWise(op string, a, b *RawTensor, f func(float64, float64) float64) *RawTensor {
	outShape, _, err := BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch %s vs %s", op, a.DType(), b.DType()))
	}

	aData, bData := a.Float64s(), b.Float64s()
	out := make([]float64, outShape.NumElements())
	for i := range out {
		aIdx := m.broadcastIndex(i, outShape, a.Shape())
		bIdx := m.broadcastIndex(i, outShape, b.Shape())
		out[i] = f(aData[aIdx], bData[bIdx])
	}

	result := m.alloc(op, outShape, a.DType())
	result.SetFloat64s(out)
	return result
}

func (m *MockBackend) compare(op string, a, b *RawTensor, f func(float64, float64) bool) *RawTensor {
	outShape, _, err := BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}

	aData, bData := a.Float64s(), b.Float64s()
	result := m.alloc(op, outShape, Bool)
	dst := result.AsBool()
	for i := range dst {
		dst[i] = f(aData[m.broadcastIndex(i, outShape, a.Shape())], bData[m.broadcastIndex(i, outShape, b.Shape())])
	}
	return result
}

func (m *MockBackend) unary(op string, x *RawTensor, f func(float64) float64) *RawTensor {
	src := x.Float64s()
	for i, v := range src {
		src[i] = f(v)
	}
	result := m.alloc(op, x.Shape(), x.DType())
	result.SetFloat64s(src)
	return result
}

func (m *MockBackend) reduce(op string, x *RawTensor, dim int, keepDim, mean bool) *RawTensor {
	d := m.dim(op, dim, x.Shape().Rank())
	outer, size, inner := x.Shape().Split(d)
	src := x.Float64s()
	out := make([]float64, outer*inner)
	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			sum := 0.0
			for k := 0; k < size; k++ {
				sum += src[o*size*inner+k*inner+i]
			}
			if mean {
				sum /= float64(size)
			}
			out[o*inner+i] = sum
		}
	}

	outShape := x.Shape().Without(d)
	if keepDim {
		outShape = x.Shape().Clone()
		outShape[d] = 1
	}
	result := m.alloc(op, outShape, x.DType())
	result.SetFloat64s(out)
	return result
}

// broadcastIndex maps a flat index of outShape to the flat index of inShape.
func (m *MockBackend) broadcastIndex(flatIdx int, outShape, inShape Shape) int {
	offset := len(outShape) - len(inShape)
	inStrides := inShape.ComputeStrides()
	outStrides := outShape.ComputeStrides()

	idx := 0
	for i := range outShape {
		coord := flatIdx / outStrides[i]
		flatIdx %= outStrides[i]
		j := i - offset
		if j < 0 || inShape[j] == 1 {
			continue
		}
		idx += coord * inStrides[j]
	}
	return idx
}

func (m *MockBackend) dim(op string, dim, rank int) int {
	d, err := NormalizeDim(dim, rank)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}
	return d
}

func (m *MockBackend) alloc(op string, shape Shape, dtype DataType) *RawTensor {
	return MustRaw(op, shape, dtype, m.Device())
}

// must converts a (tensor, error) pair into a panic tagged with op.
func must(op string) func(*RawTensor, error) *RawTensor {
	return func(r *RawTensor, err error) *RawTensor {
		if err != nil {
			panic(fmt.Sprintf("%s: %v", op, err))
		}
		return r
	}
}
