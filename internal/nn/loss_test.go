package nn

import (
	"math"
	"testing"

	"github.com/born-ml/detect/internal/backend/cpu"
	"github.com/born-ml/detect/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Tensor = tensor.Tensor[float32, tensor.Backend]

const tol = 1e-5

// backends lists the execution modes every loss must agree on.
func backends() []tensor.Backend {
	return []tensor.Backend{cpu.New(), tensor.NewMockBackend()}
}

func forEachBackend(t *testing.T, f func(t *testing.T, b tensor.Backend)) {
	t.Helper()
	for _, b := range backends() {
		t.Run(b.Name(), func(t *testing.T) { f(t, b) })
	}
}

func from(t *testing.T, b tensor.Backend, shape tensor.Shape, values ...float32) *Tensor {
	t.Helper()
	x, err := tensor.FromSlice(values, shape, b)
	require.NoError(t, err)
	return x
}

func values(x *Tensor) []float64 {
	return x.Raw().Float64s()
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func TestLossConfig_Validate(t *testing.T) {
	assert.NoError(t, LossConfig{}.validate())
	assert.NoError(t, LossConfig{Weight: -2, BatchAxis: 1}.validate())
	assert.ErrorIs(t, LossConfig{Weight: math.NaN()}.validate(), ErrInvalidConfig)
	assert.ErrorIs(t, LossConfig{Weight: math.Inf(1)}.validate(), ErrInvalidConfig)
	assert.ErrorIs(t, LossConfig{BatchAxis: -1}.validate(), ErrInvalidConfig)
}

func TestWeighting(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b tensor.Backend) {
		pred := from(t, b, tensor.Shape{3, 2}, 1, 1, 2, 2, 3, 3)
		label := from(t, b, tensor.Shape{3, 2}, 0, 0, 0, 0, 0, 0)

		cfg := DefaultSmoothL1Config()
		plain, err := NewSmoothL1Loss(cfg, b)
		require.NoError(t, err)
		base := values(plain.Forward(pred, label, nil))
		assert.InDeltaSlice(t, []float64{0.5, 1.5, 2.5}, base, tol)

		cfg.Weight = 2
		weighted, err := NewSmoothL1Loss(cfg, b)
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float64{1, 3, 5}, values(weighted.Forward(pred, label, nil)), tol)

		// Per-sample weight of shape [N, 1] broadcasts over the box coordinates.
		sw := from(t, b, tensor.Shape{3, 1}, 1, 0, 0.5)
		assert.InDeltaSlice(t, []float64{1, 0, 2.5}, values(weighted.Forward(pred, label, sw)), tol)
	})
}

func TestBatchAxis(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b tensor.Backend) {
		cfg := DefaultSmoothL1Config()
		cfg.BatchAxis = 1
		loss, err := NewSmoothL1Loss(cfg, b)
		require.NoError(t, err)

		// [2, 3] with the batch along axis 1: per-column means.
		pred := from(t, b, tensor.Shape{2, 3}, 0, 0.5, 2, 0, 0.5, 4)
		label := from(t, b, tensor.Shape{2, 3}, 0, 0, 0, 0, 0, 0)

		out := loss.Forward(pred, label, nil)
		assert.Equal(t, tensor.Shape{3}, out.Shape())
		assert.InDeltaSlice(t, []float64{0, 0.125, 2.5}, values(out), tol)
	})
}

func TestBatchMean_HigherRank(t *testing.T) {
	b := tensor.NewMockBackend()
	x := tensor.Ones[float32](tensor.Shape{2, 3, 4, 5}, b)
	assert.Equal(t, tensor.Shape{2}, batchMean(x, 0).Shape())
	assert.Equal(t, tensor.Shape{4}, batchMean(x, 2).Shape())
	assert.Panics(t, func() { batchMean(x, 4) })
}

func TestBackendsAgree(t *testing.T) {
	mock := tensor.NewMockBackend()
	fast := cpu.New()

	logits := []float32{
		-3.1, 0.2, 1.7, -0.4, 2.2, 0.0,
		0.9, -1.5, 0.3, 4.0, -2.2, 0.6,
	}
	targets := []float32{0, 1, 0, 0, 1, 1, 1, 0, 0, 1, 0, 0}
	ids := []float32{2, -1, 0, 1}
	shape := tensor.Shape{2, 2, 3}

	type builder func(b tensor.Backend) (Loss[tensor.Backend], *Tensor, *Tensor)
	cases := map[string]builder{
		"smooth_l1": func(b tensor.Backend) (Loss[tensor.Backend], *Tensor, *Tensor) {
			l, err := NewLoss(LossSmoothL1, b, WithSigma(3))
			require.NoError(t, err)
			return l, from(t, b, shape, logits...), from(t, b, shape, targets...)
		},
		"sigmoid_bce": func(b tensor.Backend) (Loss[tensor.Backend], *Tensor, *Tensor) {
			l, err := NewLoss(LossSigmoidBCE, b)
			require.NoError(t, err)
			return l, from(t, b, shape, logits...), from(t, b, shape, targets...)
		},
		"softmax_ce": func(b tensor.Backend) (Loss[tensor.Backend], *Tensor, *Tensor) {
			l, err := NewLoss(LossSoftmaxCE, b)
			require.NoError(t, err)
			return l, from(t, b, shape, logits...), from(t, b, tensor.Shape{2, 2}, ids...)
		},
		"focal": func(b tensor.Backend) (Loss[tensor.Backend], *Tensor, *Tensor) {
			l, err := NewLoss(LossFocal, b, WithNumClass(3))
			require.NoError(t, err)
			return l, from(t, b, shape, logits...), from(t, b, tensor.Shape{2, 2}, ids...)
		},
	}

	for name, build := range cases {
		t.Run(name, func(t *testing.T) {
			l1, p1, y1 := build(fast)
			l2, p2, y2 := build(mock)
			got := l1.Forward(p1, y1, nil)
			want := l2.Forward(p2, y2, nil)
			require.Equal(t, tensor.Shape{2}, got.Shape())
			assert.InDeltaSlice(t, values(want), values(got), tol)
			assert.Equal(t, name, l1.Name())
		})
	}
}
