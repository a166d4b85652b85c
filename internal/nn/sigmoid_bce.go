package nn

import (
	"fmt"

	"github.com/born-ml/detect/internal/tensor"
)

// SigmoidBCEConfig configures SigmoidBCELoss.
type SigmoidBCEConfig struct {
	LossConfig

	// FromSigmoid means pred already holds probabilities instead of logits.
	FromSigmoid bool

	// Epsilon floors the log arguments on the probability path.
	Epsilon float64
}

// DefaultSigmoidBCEConfig returns the logit path with Epsilon = 1e-12.
func DefaultSigmoidBCEConfig() SigmoidBCEConfig {
	return SigmoidBCEConfig{Epsilon: 1e-12}
}

// Validate checks the configuration.
func (c SigmoidBCEConfig) Validate() error {
	if c.Epsilon < 0 {
		return fmt.Errorf("%w: sigmoid-bce epsilon must be >= 0, got %v", ErrInvalidConfig, c.Epsilon)
	}
	return c.LossConfig.validate()
}

// SigmoidBCELoss is binary cross-entropy over independent sigmoid outputs,
// used for objectness and multi-label class scores.
//
// From logits x (default) it uses the overflow-free form
//
//	x - x*y + m + log(exp(-m) + exp(-x-m)),  m = max(-x, 0)
//
// and from probabilities p
//
//	-(y*log(p+eps) + (1-y)*log(1-p+eps))
type SigmoidBCELoss[B tensor.Backend] struct {
	cfg     SigmoidBCEConfig
	backend B
}

// NewSigmoidBCELoss creates a sigmoid binary cross-entropy loss.
func NewSigmoidBCELoss[B tensor.Backend](cfg SigmoidBCEConfig, backend B) (*SigmoidBCELoss[B], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &SigmoidBCELoss[B]{cfg: cfg, backend: backend}, nil
}

// Name returns "sigmoid_bce".
func (l *SigmoidBCELoss[B]) Name() string {
	return LossSigmoidBCE.String()
}

// Config returns the loss configuration.
func (l *SigmoidBCELoss[B]) Config() SigmoidBCEConfig {
	return l.cfg
}

// Forward computes the per-sample binary cross-entropy. label holds targets
// in [0, 1] with pred's element count.
func (l *SigmoidBCELoss[B]) Forward(pred, label, sampleWeight *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	label = tensor.ReshapeLike(label, pred)

	var loss *tensor.Tensor[float32, B]
	if !l.cfg.FromSigmoid {
		m := pred.Neg().ReLU()
		lse := m.Neg().Exp().Add(pred.Neg().Sub(m).Exp()).Log()
		loss = pred.Sub(pred.Mul(label)).Add(m).Add(lse)
	} else {
		eps := l.cfg.Epsilon
		pos := pred.AddScalar(eps).Log().Mul(label)
		neg := pred.OneMinus().AddScalar(eps).Log().Mul(label.OneMinus())
		loss = pos.Add(neg).Neg()
	}

	return finish(loss, sampleWeight, l.cfg.LossConfig)
}
