// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/backbone/internal/nn"
	"github.com/born-ml/backbone/internal/tensor"
)

// PosEmbedConfig configures InterpolatePosEmbedWithConfig.
type PosEmbedConfig = nn.PosEmbedConfig

// DefaultPosEmbedConfig keeps one extra token and resamples without corner alignment.
func DefaultPosEmbedConfig(newSide int) PosEmbedConfig {
	return nn.DefaultPosEmbedConfig(newSide)
}

// InterpolatePosEmbed resizes the patch grid of a [tokens, dim] position
// embedding to newSide x newSide, keeping the numExtraTokens leading tokens.
func InterpolatePosEmbed(checkpoint *tensor.RawTensor, newSide, numExtraTokens int) (*tensor.RawTensor, error) {
	return nn.InterpolatePosEmbed(checkpoint, newSide, numExtraTokens)
}

// InterpolatePosEmbedWithConfig is InterpolatePosEmbed with explicit options.
func InterpolatePosEmbedWithConfig(checkpoint *tensor.RawTensor, cfg PosEmbedConfig) (*tensor.RawTensor, error) {
	return nn.InterpolatePosEmbedWithConfig(checkpoint, cfg)
}
