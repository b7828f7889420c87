// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/backbone/internal/autodiff"
	"github.com/born-ml/backbone/internal/nn"
	"github.com/born-ml/backbone/internal/tensor"
)

// TruncNormalConfig configures TruncNormal.
type TruncNormalConfig = nn.TruncNormalConfig

// DefaultTruncNormalConfig returns N(0, 1) truncated to [-2, 2].
func DefaultTruncNormalConfig() TruncNormalConfig {
	return nn.DefaultTruncNormalConfig()
}

// TruncNormal fills t in place from a truncated normal distribution without
// recording anything on backend's tape, and returns t. backend may be nil.
func TruncNormal(backend *autodiff.Backend, t *tensor.RawTensor, cfg TruncNormalConfig) *tensor.RawTensor {
	return nn.TruncNormal(backend, t, cfg)
}
