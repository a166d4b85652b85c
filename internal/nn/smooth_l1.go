package nn

import (
	"fmt"

	"github.com/born-ml/detect/internal/tensor"
)

// SmoothL1Config configures SmoothL1Loss.
type SmoothL1Config struct {
	LossConfig

	// Sigma sets the quadratic region |r| < 1/Sigma. Must be > 0.
	Sigma float64
}

// DefaultSmoothL1Config returns Sigma = 1.
func DefaultSmoothL1Config() SmoothL1Config {
	return SmoothL1Config{Sigma: 1}
}

// Validate checks the configuration.
func (c SmoothL1Config) Validate() error {
	if !(c.Sigma > 0) {
		return fmt.Errorf("%w: smooth-l1 sigma must be > 0, got %v", ErrInvalidConfig, c.Sigma)
	}
	return c.LossConfig.validate()
}

// SmoothL1Loss is the box regression loss
//
//	f(r) = 0.5 * sigma * r^2   if |r| < 1/sigma
//	f(r) = |r| - 0.5/sigma     otherwise
//
// with r = pred - label. Both branches and their derivatives meet at
// |r| = 1/sigma.
type SmoothL1Loss[B tensor.Backend] struct {
	cfg     SmoothL1Config
	backend B
}

// NewSmoothL1Loss creates a smooth-L1 loss.
func NewSmoothL1Loss[B tensor.Backend](cfg SmoothL1Config, backend B) (*SmoothL1Loss[B], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &SmoothL1Loss[B]{cfg: cfg, backend: backend}, nil
}

// Name returns "smooth_l1".
func (l *SmoothL1Loss[B]) Name() string {
	return LossSmoothL1.String()
}

// Config returns the loss configuration.
func (l *SmoothL1Loss[B]) Config() SmoothL1Config {
	return l.cfg
}

// Forward computes the per-sample smooth-L1 loss.
//
// Parameters:
//   - pred: predicted box offsets, shape [batch, ...]
//   - label: targets with pred's element count
//   - sampleWeight: optional mask/weights, e.g. 1 for positive anchors
func (l *SmoothL1Loss[B]) Forward(pred, label, sampleWeight *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	sigma := l.cfg.Sigma
	label = tensor.ReshapeLike(label, pred)

	r := pred.Sub(label)
	abs := r.Abs()
	quadratic := r.Mul(r).MulScalar(0.5 * sigma)
	linear := abs.AddScalar(-0.5 / sigma)

	loss := tensor.Where(abs.Lower(scalar(1/sigma, l.backend)), quadratic, linear)
	return finish(loss, sampleWeight, l.cfg.LossConfig)
}
