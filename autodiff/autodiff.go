// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides automatic differentiation capabilities.
//
// This package implements reverse-mode automatic differentiation (backpropagation)
// using a gradient tape, plus an extension point for custom forward/backward pairs.
//
// Example:
//
//	import (
//	    "github.com/born-ml/backbone/autodiff"
//	    "github.com/born-ml/backbone/tensor"
//	)
//
//	func main() {
//	    backend := autodiff.New()
//	    backend.Tape().StartRecording()
//
//	    x, _ := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2})
//	    y := backend.MulScalar(x, 3) // Recorded on tape
//
//	    grads, _ := autodiff.Backward(backend, y)
//	    _ = grads[x] // [3, 3]
//	}
package autodiff

import (
	"github.com/born-ml/backbone/internal/autodiff"
	"github.com/born-ml/backbone/internal/tensor"
)

// Backend applies tensor operations and records them on a GradientTape.
type Backend = autodiff.Backend

// GradientTape records operations for automatic differentiation.
type GradientTape = autodiff.GradientTape

// Function is a custom forward/backward pair.
type Function = autodiff.Function

// FunctionContext carries state from Function.Forward to Function.Backward.
type FunctionContext = autodiff.FunctionContext

// New creates a Backend with a fresh, non-recording tape.
func New() *Backend {
	return autodiff.New()
}

// Apply runs a custom Function and records it for the backward pass.
func Apply(b *Backend, fn Function, inputs ...*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	return autodiff.Apply(b, fn, inputs...)
}

// Backward computes gradients of the sum of outputs for every recorded tensor.
func Backward(b *Backend, outputs ...*tensor.RawTensor) (map[*tensor.RawTensor]*tensor.RawTensor, error) {
	return autodiff.Backward(b, outputs...)
}
