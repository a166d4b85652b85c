// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"testing"

	"github.com/born-ml/detect/backend/cpu"
	"github.com/born-ml/detect/tensor"
)

// TestBackendInterface verifies that both backends implement tensor.Backend.
func TestBackendInterface(_ *testing.T) {
	var _ tensor.Backend = (*cpu.Backend)(nil)
	var _ tensor.Backend = (*tensor.MockBackend)(nil)
}

// TestRawTensorAPI verifies RawTensor type alias exposes expected API.
func TestRawTensorAPI(t *testing.T) {
	raw, err := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}

	if !raw.Shape().Equal(tensor.Shape{2, 3}) {
		t.Errorf("Shape() = %v, want [2 3]", raw.Shape())
	}
	if raw.DType() != tensor.Float32 {
		t.Errorf("DType() = %v, want Float32", raw.DType())
	}
	if raw.Device() != tensor.CPU {
		t.Errorf("Device() = %v, want CPU", raw.Device())
	}
	if n := raw.NumElements(); n != 6 {
		t.Errorf("NumElements() = %d, want 6", n)
	}
	if got, want := raw.ByteSize(), 6*4; got != want {
		t.Errorf("ByteSize() = %d, want %d", got, want)
	}

	raw.AsFloat32()[0] = 42
	clone := raw.Clone()
	clone.AsFloat32()[0] = 7
	if raw.AsFloat32()[0] != 42 {
		t.Error("Clone() must not share the buffer")
	}

	if _, err := tensor.NewRaw(tensor.Shape{2, 0}, tensor.Float32, tensor.CPU); err == nil {
		t.Error("NewRaw with a zero dimension should fail")
	}
}

func TestTensorCreationFunctions(t *testing.T) {
	backends := []tensor.Backend{cpu.New(), tensor.NewMockBackend()}

	for _, backend := range backends {
		t.Run(backend.Name(), func(t *testing.T) {
			zeros := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
			for _, v := range zeros.Data() {
				if v != 0 {
					t.Fatalf("Zeros contains %v", v)
				}
			}

			ones := tensor.OnesLike(zeros)
			if !ones.Shape().Equal(tensor.Shape{2, 3}) || ones.At(1, 2) != 1 {
				t.Errorf("OnesLike = %v", ones.Data())
			}

			full := tensor.Full[float64](tensor.Shape{2}, 2.5, backend)
			if full.At(1) != 2.5 {
				t.Errorf("Full = %v", full.Data())
			}

			s := tensor.Scalar[float32](3, backend)
			if s.Rank() != 0 || s.Item() != 3 {
				t.Errorf("Scalar rank=%d item=%v", s.Rank(), s.Item())
			}

			x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)
			if err != nil {
				t.Fatalf("FromSlice failed: %v", err)
			}
			if x.At(1, 0) != 4 {
				t.Errorf("At(1, 0) = %v, want 4", x.At(1, 0))
			}

			if _, err := tensor.FromSlice([]float32{1, 2}, tensor.Shape{3}, backend); err == nil {
				t.Error("FromSlice with mismatched length should fail")
			}

			z := tensor.ZerosLike(x)
			if z.At(0, 1) != 0 {
				t.Error("ZerosLike must be zero-filled")
			}
		})
	}
}

func TestDataTypeConstants(t *testing.T) {
	tests := []struct {
		dtype tensor.DataType
		name  string
		size  int
	}{
		{tensor.Float32, "float32", 4},
		{tensor.Float64, "float64", 8},
		{tensor.Int32, "int32", 4},
		{tensor.Int64, "int64", 8},
		{tensor.Bool, "bool", 1},
	}

	for _, tt := range tests {
		if tt.dtype.String() != tt.name {
			t.Errorf("String() = %q, want %q", tt.dtype.String(), tt.name)
		}
		if tt.dtype.Size() != tt.size {
			t.Errorf("%s Size() = %d, want %d", tt.name, tt.dtype.Size(), tt.size)
		}
	}
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		a, b      tensor.Shape
		want      tensor.Shape
		broadcast bool
		wantErr   bool
	}{
		{tensor.Shape{3, 1}, tensor.Shape{3, 4}, tensor.Shape{3, 4}, true, false},
		{tensor.Shape{3, 4}, tensor.Shape{}, tensor.Shape{3, 4}, true, false},
		{tensor.Shape{2, 3}, tensor.Shape{2, 3}, tensor.Shape{2, 3}, false, false},
		{tensor.Shape{2, 3}, tensor.Shape{2, 4}, nil, false, true},
	}

	for _, tt := range tests {
		got, broadcast, err := tensor.BroadcastShapes(tt.a, tt.b)
		if (err != nil) != tt.wantErr {
			t.Errorf("BroadcastShapes(%v, %v) err = %v, wantErr %v", tt.a, tt.b, err, tt.wantErr)
			continue
		}
		if tt.wantErr {
			continue
		}
		if !got.Equal(tt.want) || broadcast != tt.broadcast {
			t.Errorf("BroadcastShapes(%v, %v) = %v, %v; want %v, %v",
				tt.a, tt.b, got, broadcast, tt.want, tt.broadcast)
		}
	}
}

func TestManipulationFunctions(t *testing.T) {
	backend := cpu.New()

	a := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
	b := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)

	if got := tensor.Cat([]*tensor.Tensor[float32, *cpu.Backend]{a, b}, 0).Shape(); !got.Equal(tensor.Shape{4, 3}) {
		t.Errorf("Cat shape = %v, want [4 3]", got)
	}
	if got := tensor.Stack([]*tensor.Tensor[float32, *cpu.Backend]{a, b}, 0).Shape(); !got.Equal(tensor.Shape{2, 2, 3}) {
		t.Errorf("Stack shape = %v, want [2 2 3]", got)
	}

	label, _ := tensor.FromSlice([]float32{0, -1, 2}, tensor.Shape{3}, backend)
	loss, _ := tensor.FromSlice([]float32{0.5, 0.7, 0.9}, tensor.Shape{3}, backend)
	ignore := label.Equal(tensor.Scalar[float32](-1, backend))
	masked := tensor.Where(ignore, tensor.ZerosLike(loss), loss)
	if got := masked.Data(); got[0] != 0.5 || got[1] != 0 || got[2] != 0.9 {
		t.Errorf("Where = %v, want [0.5 0 0.9]", got)
	}

	ids, _ := tensor.FromSlice([]int32{1, -1}, tensor.Shape{2}, backend)
	oh := tensor.OneHot[float32](ids, 3)
	want := []float32{0, 1, 0, 0, 0, 0}
	for i, v := range oh.Data() {
		if v != want[i] {
			t.Fatalf("OneHot = %v, want %v", oh.Data(), want)
		}
	}

	flat, _ := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{6}, backend)
	if got := tensor.ReshapeLike(flat, a).Shape(); !got.Equal(tensor.Shape{2, 3}) {
		t.Errorf("ReshapeLike shape = %v, want [2 3]", got)
	}
}

func TestNew_DTypeMismatchPanics(t *testing.T) {
	raw, _ := tensor.NewRaw(tensor.Shape{2}, tensor.Int32, tensor.CPU)

	defer func() {
		if recover() == nil {
			t.Error("New with mismatched dtype should panic")
		}
	}()
	tensor.New[float32](raw, tensor.NewMockBackend())
}
