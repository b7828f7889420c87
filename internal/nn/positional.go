package nn

import (
	"math"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/backbone/internal/tensor"
)

// PosEmbedConfig configures InterpolatePosEmbedWithConfig.
type PosEmbedConfig struct {
	NewSide        int  // Side length of the resized square patch grid
	NumExtraTokens int  // Leading non-spatial tokens (class token, distillation token) kept as is
	AlignCorners   bool // Corner-aligned resampling; checkpoints are normally adapted with false
}

// DefaultPosEmbedConfig returns the configuration for a checkpoint with a
// single class token, resized to a newSide x newSide grid.
func DefaultPosEmbedConfig(newSide int) PosEmbedConfig {
	return PosEmbedConfig{
		NewSide:        newSide,
		NumExtraTokens: 1,
	}
}

// InterpolatePosEmbed adapts a learned position embedding table to a new input
// resolution.
//
// checkpoint has shape [tokens, dim]: numExtraTokens leading tokens followed by
// a square grid of (tokens-numExtraTokens) patch positions in row-major order.
// The grid is resized to newSide x newSide with bicubic interpolation and the
// extra tokens are prepended unchanged.
//
// Returns a tensor of shape [numExtraTokens + newSide², dim].
//
// The grid is not checked for squareness up front; a non-square patch count
// fails at the reshape with an error wrapping tensor.ErrShapeMismatch.
//
// Example:
//
//	// ViT-B/16 at 224px (14x14 grid + [CLS]) to 112px (7x7 grid).
//	resized, err := nn.InterpolatePosEmbed(posEmbed, 7, 1) // [50, 768]
func InterpolatePosEmbed(checkpoint *tensor.RawTensor, newSide, numExtraTokens int) (*tensor.RawTensor, error) {
	return InterpolatePosEmbedWithConfig(checkpoint, PosEmbedConfig{
		NewSide:        newSide,
		NumExtraTokens: numExtraTokens,
	})
}

// InterpolatePosEmbedWithConfig is InterpolatePosEmbed with explicit resampling options.
func InterpolatePosEmbedWithConfig(checkpoint *tensor.RawTensor, cfg PosEmbedConfig) (*tensor.RawTensor, error) {
	shape := checkpoint.Shape()
	if len(shape) != 2 {
		return nil, errors.Errorf("position embedding must be [tokens, dim], got %v", shape)
	}
	tokens, dim := shape[0], shape[1]
	extra := cfg.NumExtraTokens
	if extra < 0 || extra >= tokens {
		return nil, errors.Errorf("position embedding has %d tokens, cannot keep %d extra tokens", tokens, extra)
	}
	if cfg.NewSide <= 0 {
		return nil, errors.Errorf("new grid side must be positive, got %d", cfg.NewSide)
	}

	origSide := int(math.Sqrt(float64(tokens - extra)))
	klog.V(2).Infof("interpolating position embedding %dx%d -> %dx%d (%d extra tokens, dim %d)",
		origSide, origSide, cfg.NewSide, cfg.NewSide, extra, dim)

	posTokens, err := tensor.Narrow(checkpoint, 0, extra, tokens-extra)
	if err != nil {
		return nil, err
	}

	// [side*side, dim] -> [1, dim, side, side]
	grid, err := tensor.Reshape(posTokens, tensor.Shape{1, origSide, origSide, dim})
	if err != nil {
		return nil, errors.Wrapf(err, "%d patch tokens do not form a square grid", tokens-extra)
	}
	grid, err = tensor.Transpose(grid, 0, 3, 1, 2)
	if err != nil {
		return nil, err
	}

	grid, err = tensor.InterpolateBicubic(grid, cfg.NewSide, cfg.NewSide, cfg.AlignCorners)
	if err != nil {
		return nil, err
	}

	// [1, dim, side', side'] -> [side'*side', dim]
	grid, err = tensor.Transpose(grid, 0, 2, 3, 1)
	if err != nil {
		return nil, err
	}
	posTokens, err = tensor.Flatten(grid, 1, 2)
	if err != nil {
		return nil, err
	}
	posTokens, err = tensor.Squeeze(posTokens, 0)
	if err != nil {
		return nil, err
	}

	if extra == 0 {
		return posTokens, nil
	}
	extraTokens, err := tensor.Narrow(checkpoint, 0, 0, extra)
	if err != nil {
		return nil, err
	}
	return tensor.Cat([]*tensor.RawTensor{extraTokens, posTokens}, 0)
}
