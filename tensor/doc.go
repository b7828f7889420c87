// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the dense float32 tensor used by the backbone helpers.
//
// # Basic Usage
//
//	import "github.com/born-ml/backbone/tensor"
//
//	func main() {
//	    x, _ := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2})
//	    y, _ := tensor.Transpose(x, 1, 0)
//	    z, _ := tensor.Cat([]*tensor.RawTensor{x, y}, 0) // Shape: [4, 2]
//	}
//
// Operations allocate new tensors and leave their inputs untouched.
// Shape problems are reported as errors wrapping ErrShapeMismatch.
package tensor
