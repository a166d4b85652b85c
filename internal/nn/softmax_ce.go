package nn

import (
	"github.com/born-ml/detect/internal/tensor"
)

// SoftmaxCEConfig configures SoftmaxCELoss.
type SoftmaxCEConfig struct {
	LossConfig

	// Axis is the class axis. Negative values count from the end.
	Axis int

	// SparseLabel means label holds class indices with Axis removed.
	// Otherwise label is a probability distribution shaped like pred.
	SparseLabel bool

	// FromLogProbs means pred already holds log-probabilities.
	FromLogProbs bool

	// IgnoreLabel marks sparse label positions that contribute zero loss.
	IgnoreLabel float64
}

// DefaultSoftmaxCEConfig returns sparse labels on the last axis with
// IgnoreLabel = -1.
func DefaultSoftmaxCEConfig() SoftmaxCEConfig {
	return SoftmaxCEConfig{
		Axis:        -1,
		SparseLabel: true,
		IgnoreLabel: -1,
	}
}

// Validate checks the configuration.
func (c SoftmaxCEConfig) Validate() error {
	return c.LossConfig.validate()
}

// SoftmaxCELoss is categorical cross-entropy over a softmax class axis.
//
// Sparse labels pick -logp at the label index; indices outside the class
// range are clipped, and positions equal to IgnoreLabel yield exactly 0.
// Dense labels compute -sum(label * logp) along Axis. Either way the class
// axis is kept with size 1 before weighting.
type SoftmaxCELoss[B tensor.Backend] struct {
	cfg     SoftmaxCEConfig
	backend B
}

// NewSoftmaxCELoss creates a softmax cross-entropy loss.
func NewSoftmaxCELoss[B tensor.Backend](cfg SoftmaxCEConfig, backend B) (*SoftmaxCELoss[B], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &SoftmaxCELoss[B]{cfg: cfg, backend: backend}, nil
}

// Name returns "softmax_ce".
func (l *SoftmaxCELoss[B]) Name() string {
	return LossSoftmaxCE.String()
}

// Config returns the loss configuration.
func (l *SoftmaxCELoss[B]) Config() SoftmaxCEConfig {
	return l.cfg
}

// Forward computes the per-sample cross-entropy.
//
// Example (SSD-style anchors):
//
//	pred:  [N, A, C] class logits
//	label: [N, A]    class ids, -1 for ignored anchors
//	out:   [N]
func (l *SoftmaxCELoss[B]) Forward(pred, label, sampleWeight *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	axis := l.cfg.Axis

	logp := pred
	if !l.cfg.FromLogProbs {
		logp = pred.LogSoftmax(axis)
	}

	var loss *tensor.Tensor[float32, B]
	if l.cfg.SparseLabel {
		loss = logp.Pick(label.Int32(), axis, true).Neg()
		ignored := tensor.ReshapeLike(label, loss).Equal(scalar(l.cfg.IgnoreLabel, l.backend))
		loss = tensor.Where(ignored, tensor.ZerosLike(loss), loss)
	} else {
		label = tensor.ReshapeLike(label, logp)
		loss = logp.Mul(label).SumDim(axis, true).Neg()
	}

	return finish(loss, sampleWeight, l.cfg.LossConfig)
}
