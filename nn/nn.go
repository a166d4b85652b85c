// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/detect/internal/nn"
	"github.com/born-ml/detect/internal/tensor"
)

// ErrInvalidConfig is wrapped by every constructor error.
var ErrInvalidConfig = nn.ErrInvalidConfig

// Loss is implemented by every loss in this package.
type Loss[B tensor.Backend] = nn.Loss[B]

// LossConfig holds the weight and batch axis shared by every loss config.
type LossConfig = nn.LossConfig

// Smooth-L1

// SmoothL1Config configures SmoothL1Loss.
type SmoothL1Config = nn.SmoothL1Config

// SmoothL1Loss is the Huber-style box regression loss.
type SmoothL1Loss[B tensor.Backend] = nn.SmoothL1Loss[B]

// DefaultSmoothL1Config returns sigma 1 on batch axis 0.
func DefaultSmoothL1Config() SmoothL1Config {
	return nn.DefaultSmoothL1Config()
}

// NewSmoothL1Loss creates a smooth-L1 loss.
//
// Example:
//
//	cfg := nn.DefaultSmoothL1Config()
//	cfg.Sigma = 3
//	l1, err := nn.NewSmoothL1Loss(cfg, backend)
func NewSmoothL1Loss[B tensor.Backend](cfg SmoothL1Config, backend B) (*SmoothL1Loss[B], error) {
	return nn.NewSmoothL1Loss(cfg, backend)
}

// Sigmoid binary cross-entropy

// SigmoidBCEConfig configures SigmoidBCELoss.
type SigmoidBCEConfig = nn.SigmoidBCEConfig

// SigmoidBCELoss is the element-wise binary cross-entropy.
type SigmoidBCELoss[B tensor.Backend] = nn.SigmoidBCELoss[B]

// DefaultSigmoidBCEConfig returns a config taking logits.
func DefaultSigmoidBCEConfig() SigmoidBCEConfig {
	return nn.DefaultSigmoidBCEConfig()
}

// NewSigmoidBCELoss creates a sigmoid binary cross-entropy loss.
func NewSigmoidBCELoss[B tensor.Backend](cfg SigmoidBCEConfig, backend B) (*SigmoidBCELoss[B], error) {
	return nn.NewSigmoidBCELoss(cfg, backend)
}

// Softmax cross-entropy

// SoftmaxCEConfig configures SoftmaxCELoss.
type SoftmaxCEConfig = nn.SoftmaxCEConfig

// SoftmaxCELoss is the softmax cross-entropy with an ignore label.
type SoftmaxCELoss[B tensor.Backend] = nn.SoftmaxCELoss[B]

// DefaultSoftmaxCEConfig returns sparse labels on the last axis, ignoring -1.
func DefaultSoftmaxCEConfig() SoftmaxCEConfig {
	return nn.DefaultSoftmaxCEConfig()
}

// NewSoftmaxCELoss creates a softmax cross-entropy loss.
func NewSoftmaxCELoss[B tensor.Backend](cfg SoftmaxCEConfig, backend B) (*SoftmaxCELoss[B], error) {
	return nn.NewSoftmaxCELoss(cfg, backend)
}

// Focal loss

// FocalConfig configures FocalLoss.
type FocalConfig = nn.FocalConfig

// FocalLoss is the sigmoid focal loss.
type FocalLoss[B tensor.Backend] = nn.FocalLoss[B]

// DefaultFocalConfig returns alpha 0.25, gamma 2 and sparse labels.
// NumClass must be set before use with sparse labels.
func DefaultFocalConfig() FocalConfig {
	return nn.DefaultFocalConfig()
}

// NewFocalLoss creates a focal loss.
//
// Example:
//
//	cfg := nn.DefaultFocalConfig()
//	cfg.NumClass = 20
//	focal, err := nn.NewFocalLoss(cfg, backend)
func NewFocalLoss[B tensor.Backend](cfg FocalConfig, backend B) (*FocalLoss[B], error) {
	return nn.NewFocalLoss(cfg, backend)
}

// Registry

// LossType names a loss for NewLoss.
type LossType = nn.LossType

// Loss types.
const (
	LossSmoothL1   LossType = nn.LossSmoothL1
	LossSigmoidBCE LossType = nn.LossSigmoidBCE
	LossSoftmaxCE  LossType = nn.LossSoftmaxCE
	LossFocal      LossType = nn.LossFocal
)

// Option adjusts the default config used by NewLoss.
type Option = nn.Option

// LossTypes lists the names accepted by ParseLossType.
func LossTypes() []string { return nn.LossTypes() }

// ParseLossType parses a loss name such as "smooth_l1" or "focal".
func ParseLossType(s string) (LossType, error) { return nn.ParseLossType(s) }

// NewLoss builds a loss of type t from its default config plus opts.
func NewLoss[B tensor.Backend](t LossType, backend B, opts ...Option) (Loss[B], error) {
	return nn.NewLoss(t, backend, opts...)
}

// WithSigma sets the smooth-L1 sigma.
func WithSigma(sigma float64) Option { return nn.WithSigma(sigma) }

// WithAlpha sets the focal alpha.
func WithAlpha(alpha float64) Option { return nn.WithAlpha(alpha) }

// WithGamma sets the focal gamma.
func WithGamma(gamma float64) Option { return nn.WithGamma(gamma) }

// WithNumClass sets the focal class count.
func WithNumClass(n int) Option { return nn.WithNumClass(n) }

// WithFromSigmoid makes BCE and focal losses take probabilities.
func WithFromSigmoid() Option { return nn.WithFromSigmoid() }

// WithDenseLabels switches softmax CE and focal losses to dense labels.
func WithDenseLabels() Option { return nn.WithDenseLabels() }

// WithWeight sets the global scalar weight of any loss.
func WithWeight(w float64) Option { return nn.WithWeight(w) }
