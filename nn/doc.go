// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the losses used to train object detectors.
//
// # Overview
//
// This package contains:
//   - SmoothL1Loss: bounding-box regression
//   - SigmoidBCELoss: per-class binary cross-entropy from logits or probabilities
//   - SoftmaxCELoss: classification with sparse or dense labels and an ignore label
//   - FocalLoss: class-imbalance aware sigmoid loss for dense detectors
//
// Every loss takes (pred, label, sampleWeight) and returns one value per
// sample along Config.BatchAxis: the element-wise loss is multiplied by the
// optional sampleWeight, then by the optional scalar Weight, then averaged
// over every other axis.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/detect/backend/cpu"
//	    "github.com/born-ml/detect/nn"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    ce, err := nn.NewSoftmaxCELoss(nn.DefaultSoftmaxCEConfig(), backend)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    loss := ce.Forward(logits, labels, nil) // [batch]
//	}
//
// # Registry
//
// NewLoss builds any loss by LossType from its default config and options,
// for tools that select the loss by name:
//
//	t, _ := nn.ParseLossType("focal")
//	loss, err := nn.NewLoss(t, backend, nn.WithNumClass(20), nn.WithGamma(1.5))
//
// # Configuration errors
//
// Constructors validate their config and return an error wrapping
// ErrInvalidConfig. Shape mismatches during Forward panic inside the backend.
package nn
