// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/backbone/autodiff"
	"github.com/born-ml/backbone/nn"
	"github.com/born-ml/backbone/tensor"
)

// TestInitThenResize initializes a ViT position embedding and adapts it to a
// lower resolution, the way a checkpoint loader would.
func TestInitThenResize(t *testing.T) {
	backend := autodiff.New()
	backend.Tape().StartRecording()

	posEmbed, err := tensor.NewRaw(tensor.Shape{1 + 14*14, 64})
	require.NoError(t, err)

	cfg := nn.DefaultTruncNormalConfig()
	cfg.Std = 0.02
	cfg.Rand = rand.New(rand.NewSource(1))
	nn.TruncNormal(backend, posEmbed, cfg)
	assert.Equal(t, 0, backend.Tape().NumOps())

	resized, err := nn.InterpolatePosEmbed(posEmbed, 7, 1)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{50, 64}, resized.Shape())
	assert.Equal(t, posEmbed.AsFloat32()[:64], resized.AsFloat32()[:64])
}
