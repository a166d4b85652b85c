package nn

import (
	"fmt"
	"strings"

	"github.com/born-ml/detect/internal/tensor"
)

// LossType enumerates the losses NewLoss can build.
type LossType int

// Supported loss types.
const (
	LossSmoothL1 LossType = iota
	LossSigmoidBCE
	LossSoftmaxCE
	LossFocal
)

var lossNames = [...]string{
	LossSmoothL1:   "smooth_l1",
	LossSigmoidBCE: "sigmoid_bce",
	LossSoftmaxCE:  "softmax_ce",
	LossFocal:      "focal",
}

// String returns the snake_case name of the loss type.
func (t LossType) String() string {
	if t < 0 || int(t) >= len(lossNames) {
		return fmt.Sprintf("LossType(%d)", int(t))
	}
	return lossNames[t]
}

// LossTypes returns the names accepted by ParseLossType.
func LossTypes() []string {
	return append([]string(nil), lossNames[:]...)
}

// ParseLossType parses a loss name such as "focal". Matching ignores case
// and accepts '-' in place of '_'.
func ParseLossType(s string) (LossType, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for i, n := range lossNames {
		if n == name {
			return LossType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown loss %q, want one of %q", ErrInvalidConfig, s, LossTypes())
}

// Option overrides one field of the default config NewLoss starts from.
// Options that do not apply to the selected loss are ignored.
type Option func(*options)

type options struct {
	smoothL1  SmoothL1Config
	bce       SigmoidBCEConfig
	softmaxCE SoftmaxCEConfig
	focal     FocalConfig
}

// WithSigma sets SmoothL1Config.Sigma.
func WithSigma(sigma float64) Option {
	return func(o *options) { o.smoothL1.Sigma = sigma }
}

// WithAlpha sets FocalConfig.Alpha.
func WithAlpha(alpha float64) Option {
	return func(o *options) { o.focal.Alpha = alpha }
}

// WithGamma sets FocalConfig.Gamma.
func WithGamma(gamma float64) Option {
	return func(o *options) { o.focal.Gamma = gamma }
}

// WithNumClass sets FocalConfig.NumClass.
func WithNumClass(n int) Option {
	return func(o *options) { o.focal.NumClass = n }
}

// WithFromSigmoid makes the BCE and focal losses take probabilities.
func WithFromSigmoid() Option {
	return func(o *options) {
		o.bce.FromSigmoid = true
		o.focal.FromSigmoid = true
	}
}

// WithDenseLabels switches softmax CE and focal loss to dense labels.
func WithDenseLabels() Option {
	return func(o *options) {
		o.softmaxCE.SparseLabel = false
		o.focal.SparseLabel = false
	}
}

// WithWeight sets the global scalar weight of any loss.
func WithWeight(w float64) Option {
	return func(o *options) {
		o.smoothL1.Weight = w
		o.bce.Weight = w
		o.softmaxCE.Weight = w
		o.focal.Weight = w
	}
}

// NewLoss builds a loss of type t from its default config plus opts.
//
// Example:
//
//	loss, err := nn.NewLoss(nn.LossFocal, backend, nn.WithNumClass(20))
func NewLoss[B tensor.Backend](t LossType, backend B, opts ...Option) (Loss[B], error) {
	o := options{
		smoothL1:  DefaultSmoothL1Config(),
		bce:       DefaultSigmoidBCEConfig(),
		softmaxCE: DefaultSoftmaxCEConfig(),
		focal:     DefaultFocalConfig(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	switch t {
	case LossSmoothL1:
		return asLoss[B](NewSmoothL1Loss(o.smoothL1, backend))
	case LossSigmoidBCE:
		return asLoss[B](NewSigmoidBCELoss(o.bce, backend))
	case LossSoftmaxCE:
		return asLoss[B](NewSoftmaxCELoss(o.softmaxCE, backend))
	case LossFocal:
		return asLoss[B](NewFocalLoss(o.focal, backend))
	default:
		return nil, fmt.Errorf("%w: unknown loss type %d", ErrInvalidConfig, int(t))
	}
}

// asLoss keeps a failed constructor from producing a non-nil interface
// around a nil pointer.
func asLoss[B tensor.Backend, L Loss[B]](l L, err error) (Loss[B], error) {
	if err != nil {
		return nil, err
	}
	return l, nil
}
