// Package nn implements the detection losses: smooth-L1 box regression,
// sigmoid binary cross-entropy, softmax cross-entropy and focal loss.
//
// Every loss maps (prediction, label, optional sample weight) to one value per
// sample along the batch axis. Losses are written only against
// tensor.Backend, so they run unmodified on any backend.
package nn

import (
	"errors"
	"fmt"
	"math"

	"github.com/born-ml/detect/internal/tensor"
)

// ErrInvalidConfig is returned by loss constructors for unusable configurations.
var ErrInvalidConfig = errors.New("nn: invalid loss config")

// Loss is implemented by every loss in this package.
type Loss[B tensor.Backend] interface {
	// Name returns the registry name of the loss (see LossType).
	Name() string

	// Forward computes the per-sample loss. sampleWeight may be nil; when set
	// it must broadcast against the element-wise loss.
	Forward(pred, label, sampleWeight *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]
}

// LossConfig holds the fields shared by every loss config.
type LossConfig struct {
	// Weight is a global scalar multiplier. Zero means unset.
	Weight float64

	// BatchAxis is the axis kept by the final mean reduction.
	BatchAxis int
}

func (c LossConfig) validate() error {
	if math.IsNaN(c.Weight) || math.IsInf(c.Weight, 0) {
		return fmt.Errorf("%w: weight must be finite, got %v", ErrInvalidConfig, c.Weight)
	}
	if c.BatchAxis < 0 {
		return fmt.Errorf("%w: batch axis must be >= 0, got %d", ErrInvalidConfig, c.BatchAxis)
	}
	return nil
}

// applyWeighting multiplies the element-wise loss by sampleWeight (if any) and
// then by the global weight (if set).
func applyWeighting[B tensor.Backend](loss, sampleWeight *tensor.Tensor[float32, B], weight float64) *tensor.Tensor[float32, B] {
	if sampleWeight != nil {
		loss = loss.Mul(sampleWeight)
	}
	if weight != 0 {
		loss = loss.MulScalar(weight)
	}
	return loss
}

// batchMean averages loss over every axis except batchAxis, highest axis
// first so lower axis numbers stay valid. The result has shape [batch].
func batchMean[B tensor.Backend](loss *tensor.Tensor[float32, B], batchAxis int) *tensor.Tensor[float32, B] {
	if batchAxis >= loss.Rank() {
		panic(fmt.Sprintf("loss: batch axis %d out of range for %dD loss", batchAxis, loss.Rank()))
	}
	for d := loss.Rank() - 1; d >= 0; d-- {
		if d != batchAxis {
			loss = loss.MeanDim(d, false)
		}
	}
	return loss
}

// finish is the tail shared by every Forward: weighting then batch mean.
func finish[B tensor.Backend](loss, sampleWeight *tensor.Tensor[float32, B], cfg LossConfig) *tensor.Tensor[float32, B] {
	return batchMean(applyWeighting(loss, sampleWeight, cfg.Weight), cfg.BatchAxis)
}

func scalar[B tensor.Backend](v float64, b B) *tensor.Tensor[float32, B] {
	return tensor.Scalar[float32](float32(v), b)
}
