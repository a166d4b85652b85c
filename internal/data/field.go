package data

import (
	"fmt"

	"github.com/born-ml/detect/internal/tensor"
)

// Kind identifies the variant of a Field.
type Kind int

// Field kinds.
const (
	KindArray Kind = iota
	KindTuple
	KindLabels
)

var kindNames = [...]string{
	KindArray:  "array",
	KindTuple:  "tuple",
	KindLabels: "labels",
}

// String returns the kind name.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Field is one record returned by a Dataset, or one collated batch.
// It is an Array, a Tuple of fields, or a variable-length Labels array.
type Field interface {
	Kind() Kind
}

// Array is a dense tensor record. Records of one batch must share shape and
// dtype; collation stacks them along a new leading axis.
type Array struct {
	Raw *tensor.RawTensor
}

// Kind returns KindArray.
func (Array) Kind() Kind { return KindArray }

// Shape returns the shape of the wrapped tensor.
func (a Array) Shape() tensor.Shape { return a.Raw.Shape() }

// NewArray copies data into a CPU array of the given shape.
func NewArray[T tensor.DType](values []T, shape ...int) (Array, error) {
	raw, err := tensor.NewRaw(shape, tensor.DataTypeOf[T](), tensor.CPU)
	if err != nil {
		return Array{}, err
	}
	if raw.NumElements() != len(values) {
		return Array{}, fmt.Errorf("shape %v requires %d elements, but got %d",
			tensor.Shape(shape), raw.NumElements(), len(values))
	}
	copy(valuesOf[T](raw), values)
	return Array{Raw: raw}, nil
}

func valuesOf[T tensor.DType](raw *tensor.RawTensor) []T {
	var zero T
	switch any(zero).(type) {
	case float32:
		return any(raw.AsFloat32()).([]T)
	case float64:
		return any(raw.AsFloat64()).([]T)
	case int32:
		return any(raw.AsInt32()).([]T)
	case int64:
		return any(raw.AsInt64()).([]T)
	case bool:
		return any(raw.AsBool()).([]T)
	}
	panic(fmt.Sprintf("data: unsupported element type %T", zero))
}

// Tuple groups several fields of one record, e.g. (image, labels).
// Collation transposes a group of tuples and batches each position.
type Tuple []Field

// Kind returns KindTuple.
func (Tuple) Kind() Kind { return KindTuple }

// Labels is a variable-length array of label rows, each Width values wide,
// e.g. one [class, x1, y1, x2, y2] row per object in an image.
type Labels struct {
	Width int
	Rows  [][]float32
}

// Kind returns KindLabels.
func (Labels) Kind() Kind { return KindLabels }

// NewLabels builds a Labels field, checking that every row is width wide.
func NewLabels(width int, rows ...[]float32) (Labels, error) {
	l := Labels{Width: width, Rows: rows}
	if err := l.validate(); err != nil {
		return Labels{}, err
	}
	return l, nil
}

func (l Labels) validate() error {
	if l.Width <= 0 {
		return fmt.Errorf("%w: label width %d must be positive", ErrBatchify, l.Width)
	}
	for i, row := range l.Rows {
		if len(row) != l.Width {
			return fmt.Errorf("%w: label row %d has %d values, want %d", ErrBatchify, i, len(row), l.Width)
		}
	}
	return nil
}

// TensorOf returns an Array field as a typed tensor on backend b.
// The data is shared, not copied.
func TensorOf[T tensor.DType, B tensor.Backend](f Field, b B) (*tensor.Tensor[T, B], error) {
	a, ok := f.(Array)
	if !ok {
		return nil, fmt.Errorf("data: field is %s, not array", f.Kind())
	}
	if want := tensor.DataTypeOf[T](); a.Raw.DType() != want {
		return nil, fmt.Errorf("data: array dtype is %s, not %s", a.Raw.DType(), want)
	}
	return tensor.New[T, B](a.Raw, b), nil
}
