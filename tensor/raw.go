// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"math/rand"

	"github.com/born-ml/backbone/internal/tensor"
)

// RawTensor is a contiguous row-major float32 tensor.
type RawTensor = tensor.RawTensor

// Shape represents the dimensions of a tensor.
type Shape = tensor.Shape

// ErrShapeMismatch is wrapped by errors from operations given incompatible shapes.
var ErrShapeMismatch = tensor.ErrShapeMismatch

// NewRaw creates a zero-filled tensor.
func NewRaw(shape Shape) (*RawTensor, error) {
	return tensor.NewRaw(shape)
}

// FromSlice creates a tensor holding a copy of data.
func FromSlice(data []float32, shape Shape) (*RawTensor, error) {
	return tensor.FromSlice(data, shape)
}

// Full creates a tensor with every element set to value.
func Full(shape Shape, value float32) (*RawTensor, error) {
	return tensor.Full(shape, value)
}

// ZerosLike creates a zero-filled tensor shaped like t.
func ZerosLike(t *RawTensor) *RawTensor {
	return tensor.ZerosLike(t)
}

// Uniform creates a tensor with samples drawn uniformly from [lo, hi).
func Uniform(shape Shape, lo, hi float64, rng *rand.Rand) (*RawTensor, error) {
	return tensor.Uniform(shape, lo, hi, rng)
}

// Reshape returns a copy of t with a new shape; one dimension may be -1.
func Reshape(t *RawTensor, shape Shape) (*RawTensor, error) {
	return tensor.Reshape(t, shape)
}

// Transpose permutes the dimensions of t.
func Transpose(t *RawTensor, axes ...int) (*RawTensor, error) {
	return tensor.Transpose(t, axes...)
}

// Narrow slices [start, start+length) along dim.
func Narrow(t *RawTensor, dim, start, length int) (*RawTensor, error) {
	return tensor.Narrow(t, dim, start, length)
}

// Cat concatenates tensors along dim.
func Cat(tensors []*RawTensor, dim int) (*RawTensor, error) {
	return tensor.Cat(tensors, dim)
}

// InterpolateBicubic resizes the spatial dimensions of a [N, C, H, W] tensor.
//
// Example:
//
//	x, _ := tensor.NewRaw(tensor.Shape{1, 768, 14, 14})
//	y, _ := tensor.InterpolateBicubic(x, 24, 24, false) // Shape: [1, 768, 24, 24]
func InterpolateBicubic(x *RawTensor, outH, outW int, alignCorners bool) (*RawTensor, error) {
	return tensor.InterpolateBicubic(x, outH, outW, alignCorners)
}
