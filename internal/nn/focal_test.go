package nn

import (
	"math"
	"testing"

	"github.com/born-ml/detect/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFocalLoss_GammaZeroIsAlphaWeightedCE(t *testing.T) {
	logits := []float32{-2, -0.5, 0, 0.7, 1.5, 3}
	labels := []float32{0, 1, 1, 0, 1, 0}
	const alpha = 0.25

	forEachBackend(t, func(t *testing.T, b tensor.Backend) {
		cfg := DefaultFocalConfig()
		cfg.Gamma = 0
		cfg.Alpha = alpha
		cfg.SparseLabel = false
		focal, err := NewFocalLoss(cfg, b)
		require.NoError(t, err)

		bce, err := NewSigmoidBCELoss(DefaultSigmoidBCEConfig(), b)
		require.NoError(t, err)

		pred := from(t, b, tensor.Shape{6, 1}, logits...)
		label := from(t, b, tensor.Shape{6, 1}, labels...)

		alphaT := make([]float32, len(labels))
		for i, y := range labels {
			alphaT[i] = 1 - alpha
			if y > 0 {
				alphaT[i] = alpha
			}
		}
		weights := from(t, b, tensor.Shape{6, 1}, alphaT...)

		got := values(focal.Forward(pred, label, nil))
		want := values(bce.Forward(pred, label, weights))
		assert.InDeltaSlice(t, want, got, 1e-4)
	})
}

func TestFocalLoss_DownWeightsEasyExamples(t *testing.T) {
	b := tensor.NewMockBackend()
	cfg := DefaultFocalConfig()
	cfg.SparseLabel = false
	focal, err := NewFocalLoss(cfg, b)
	require.NoError(t, err)

	// Same positive label, an easy (p=0.95) and a hard (p=0.3) prediction.
	pred := from(t, b, tensor.Shape{2, 1}, float32(math.Log(0.95/0.05)), float32(math.Log(0.3/0.7)))
	label := from(t, b, tensor.Shape{2, 1}, 1, 1)
	out := values(focal.Forward(pred, label, nil))

	want := []float64{
		-0.25 * math.Pow(0.05, 2) * math.Log(0.95),
		-0.25 * math.Pow(0.7, 2) * math.Log(0.3),
	}
	assert.InDeltaSlice(t, want, out, 1e-5)
	assert.Less(t, out[0], out[1])
}

func TestFocalLoss_SparseMatchesDense(t *testing.T) {
	logits := []float32{
		0.1, 2, -1,
		-3, 0.5, 0.5,
	}

	forEachBackend(t, func(t *testing.T, b tensor.Backend) {
		cfg := DefaultFocalConfig()
		cfg.NumClass = 3
		sparse, err := NewFocalLoss(cfg, b)
		require.NoError(t, err)

		cfg.SparseLabel = false
		dense, err := NewFocalLoss(cfg, b)
		require.NoError(t, err)

		pred := from(t, b, tensor.Shape{2, 3}, logits...)
		// Class 1 for the first sample, background (-1) for the second.
		ids := from(t, b, tensor.Shape{2}, 1, -1)
		oneHot := from(t, b, tensor.Shape{2, 3}, 0, 1, 0, 0, 0, 0)

		got := values(sparse.Forward(pred, ids, nil))
		assert.InDeltaSlice(t, values(dense.Forward(pred, oneHot, nil)), got, tol)

		// Background rows only pay the negative term.
		var want float64
		for _, x := range logits[3:] {
			p := sigmoid(float64(x))
			want += -(1 - 0.25) * p * p * math.Log(1-p)
		}
		assert.InDelta(t, want/3, got[1], 1e-5)
	})
}

func TestFocalLoss_SparseLabelTrailingAxis(t *testing.T) {
	b := tensor.NewMockBackend()
	cfg := DefaultFocalConfig()
	cfg.NumClass = 2
	focal, err := NewFocalLoss(cfg, b)
	require.NoError(t, err)

	pred := from(t, b, tensor.Shape{2, 3, 2}, 0, 1, 2, 3, 4, 5, 0, 1, 2, 3, 4, 5)
	flat := from(t, b, tensor.Shape{2, 3}, 0, 1, -1, 1, 0, -1)
	column := from(t, b, tensor.Shape{2, 3, 1}, 0, 1, -1, 1, 0, -1)

	assert.InDeltaSlice(t, values(focal.Forward(pred, flat, nil)), values(focal.Forward(pred, column, nil)), tol)
}

func TestFocalLoss_FromSigmoidClampsLog(t *testing.T) {
	b := tensor.NewMockBackend()
	cfg := DefaultFocalConfig()
	cfg.SparseLabel = false
	cfg.FromSigmoid = true
	focal, err := NewFocalLoss(cfg, b)
	require.NoError(t, err)

	// pt = 1 gives log(min(1+eps, 1)) = 0; pt = 0 stays finite via eps.
	pred := from(t, b, tensor.Shape{2, 1}, 1, 0)
	label := from(t, b, tensor.Shape{2, 1}, 1, 1)
	out := values(focal.Forward(pred, label, nil))

	assert.Equal(t, 0.0, out[0])
	assert.InDelta(t, -0.25*math.Log(1e-12), out[1], 1e-3)
}

func TestFocalConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*FocalConfig)
		valid  bool
	}{
		{"sparse without classes", func(*FocalConfig) {}, false},
		{"sparse with classes", func(c *FocalConfig) { c.NumClass = 1 }, true},
		{"negative classes", func(c *FocalConfig) { c.NumClass = -3 }, false},
		{"dense without classes", func(c *FocalConfig) { c.SparseLabel = false }, true},
		{"alpha above one", func(c *FocalConfig) { c.NumClass = 2; c.Alpha = 1.5 }, false},
		{"negative gamma", func(c *FocalConfig) { c.NumClass = 2; c.Gamma = -1 }, false},
		{"negative epsilon", func(c *FocalConfig) { c.NumClass = 2; c.Epsilon = -1 }, false},
		{"bad batch axis", func(c *FocalConfig) { c.NumClass = 2; c.BatchAxis = -1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultFocalConfig()
			tt.modify(&cfg)
			loss, err := NewFocalLoss(cfg, tensor.NewMockBackend())
			if tt.valid {
				require.NoError(t, err)
				assert.NotNil(t, loss)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Nil(t, loss)
		})
	}
}
