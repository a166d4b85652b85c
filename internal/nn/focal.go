package nn

import (
	"fmt"

	"github.com/born-ml/detect/internal/tensor"
)

// FocalConfig configures FocalLoss.
type FocalConfig struct {
	LossConfig

	// Alpha weights the positive class; negatives get 1 - Alpha.
	Alpha float64

	// Gamma is the focusing exponent on (1 - pt). Gamma = 0 gives
	// alpha-weighted cross-entropy.
	Gamma float64

	// SparseLabel means label holds class indices, one-hot encoded to
	// NumClass columns. Otherwise label is shaped like pred and every
	// value > 0 marks a positive.
	SparseLabel bool

	// FromSigmoid means pred already holds probabilities.
	FromSigmoid bool

	// NumClass is required (>= 1) with SparseLabel.
	NumClass int

	// Epsilon floors pt before the logarithm.
	Epsilon float64
}

// DefaultFocalConfig returns Alpha 0.25, Gamma 2, sparse labels and
// Epsilon 1e-12. NumClass must still be set for sparse labels.
func DefaultFocalConfig() FocalConfig {
	return FocalConfig{
		Alpha:       0.25,
		Gamma:       2,
		SparseLabel: true,
		Epsilon:     1e-12,
	}
}

// Validate checks the configuration.
func (c FocalConfig) Validate() error {
	if c.SparseLabel && c.NumClass < 1 {
		return fmt.Errorf("%w: focal loss with sparse labels needs NumClass >= 1, got %d", ErrInvalidConfig, c.NumClass)
	}
	if c.Alpha < 0 || c.Alpha > 1 {
		return fmt.Errorf("%w: focal alpha must be in [0, 1], got %v", ErrInvalidConfig, c.Alpha)
	}
	if c.Gamma < 0 {
		return fmt.Errorf("%w: focal gamma must be >= 0, got %v", ErrInvalidConfig, c.Gamma)
	}
	if c.Epsilon < 0 {
		return fmt.Errorf("%w: focal epsilon must be >= 0, got %v", ErrInvalidConfig, c.Epsilon)
	}
	return c.LossConfig.validate()
}

// FocalLoss down-weights easy examples in dense detectors:
//
//	pt      = p where positive, 1-p elsewhere
//	alpha_t = Alpha where positive, 1-Alpha elsewhere
//	loss    = -alpha_t * (1-pt)^Gamma * log(min(pt+eps, 1))
//
// Sparse labels outside [0, NumClass), including -1, are all-negative rows.
type FocalLoss[B tensor.Backend] struct {
	cfg     FocalConfig
	backend B
}

// NewFocalLoss creates a focal loss.
func NewFocalLoss[B tensor.Backend](cfg FocalConfig, backend B) (*FocalLoss[B], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &FocalLoss[B]{cfg: cfg, backend: backend}, nil
}

// Name returns "focal".
func (l *FocalLoss[B]) Name() string {
	return LossFocal.String()
}

// Config returns the loss configuration.
func (l *FocalLoss[B]) Config() FocalConfig {
	return l.cfg
}

// Forward computes the per-sample focal loss.
//
// Example (RetinaNet-style anchors):
//
//	pred:  [N, A, C] class logits
//	label: [N, A]    class ids, -1 for background
//	out:   [N]
func (l *FocalLoss[B]) Forward(pred, label, sampleWeight *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	p := pred
	if !l.cfg.FromSigmoid {
		p = pred.Sigmoid()
	}

	positive := l.positives(pred, label)
	pt := tensor.Where(positive, p, p.OneMinus())
	alpha := tensor.Where(positive, scalar(l.cfg.Alpha, l.backend), scalar(1-l.cfg.Alpha, l.backend))

	logPt := pt.AddScalar(l.cfg.Epsilon).Minimum(scalar(1, l.backend)).Log()
	loss := alpha.Mul(pt.OneMinus().PowScalar(l.cfg.Gamma)).Mul(logPt).Neg()

	return finish(loss, sampleWeight, l.cfg.LossConfig)
}

// positives returns the bool mask of positive (element, class) pairs, shaped
// to broadcast against pred.
func (l *FocalLoss[B]) positives(pred, label *tensor.Tensor[float32, B]) *tensor.Tensor[bool, B] {
	if !l.cfg.SparseLabel {
		return tensor.ReshapeLike(label, pred).Greater(scalar(0, l.backend))
	}

	ids := label.Int32()
	if lead := pred.Shape()[:pred.Rank()-1]; ids.NumElements() == lead.NumElements() && !ids.Shape().Equal(lead) {
		ids = ids.Reshape(lead...)
	}
	return tensor.OneHot[bool](ids, l.cfg.NumClass)
}
