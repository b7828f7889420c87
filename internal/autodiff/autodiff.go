// Package autodiff implements tape-based reverse-mode automatic differentiation.
//
// Backend applies tensor operations and records them in a GradientTape.
// Custom differentiable operations plug in through the Function interface and
// Apply.
//
// Architecture:
//   - GradientTape: Records operations during forward pass
//   - Operation interface: Each op implements its backward pass
//   - Function + FunctionContext: user-supplied forward/backward pairs
//   - NoGrad: scoped suspension of recording
//
// Usage:
//
//	backend := autodiff.New()
//	backend.Tape().StartRecording()
//	y := backend.MulScalar(x, 3)
//	grads := backend.Tape().Backward(ones)
//	fmt.Println(grads[x]) // dy/dx = 3
package autodiff

import (
	"github.com/pkg/errors"

	"github.com/born-ml/backbone/internal/autodiff/ops"
	"github.com/born-ml/backbone/internal/tensor"
)

// Function is a user-defined forward/backward pair. See ops.Function.
type Function = ops.Function

// FunctionContext carries state from Function.Forward to Function.Backward.
type FunctionContext = ops.FunctionContext

// NewFunctionContext creates an empty FunctionContext.
func NewFunctionContext() *FunctionContext {
	return ops.NewFunctionContext()
}

// Backend applies tensor operations and records the differentiable ones on its tape.
//
// A nil *Backend is valid: operations run without any gradient tracking.
type Backend struct {
	tape *GradientTape
}

// New creates a Backend with a fresh, non-recording tape.
func New() *Backend {
	return &Backend{tape: NewGradientTape()}
}

// Tape returns the gradient tape for manual control.
// Useful for:
//   - Starting/stopping recording
//   - Clearing tape between iterations
//   - Inspecting recorded operations
func (b *Backend) Tape() *GradientTape {
	if b == nil {
		return nil
	}
	return b.tape
}

// IsRecording reports whether operations are currently being recorded.
func (b *Backend) IsRecording() bool {
	return b != nil && b.tape.IsRecording()
}

// NoGrad runs fn with recording suspended. The previous recording state is
// restored afterwards.
func (b *Backend) NoGrad(fn func()) {
	if b == nil {
		fn()
		return
	}
	b.tape.NoGrad(fn)
}

// MulScalar multiplies every element by scalar and records the operation.
func (b *Backend) MulScalar(x *tensor.RawTensor, scalar float32) *tensor.RawTensor {
	result := tensor.MulScalar(x, scalar)
	if b.IsRecording() {
		b.tape.Record(ops.NewMulScalarOp(x, scalar, result))
	}
	return result
}

// AddScalar adds scalar to every element and records the operation.
func (b *Backend) AddScalar(x *tensor.RawTensor, scalar float32) *tensor.RawTensor {
	result := tensor.AddScalar(x, scalar)
	if b.IsRecording() {
		b.tape.Record(ops.NewAddScalarOp(x, result))
	}
	return result
}

// Clamp limits every element to [lo, hi] and records the operation.
func (b *Backend) Clamp(x *tensor.RawTensor, lo, hi float32) *tensor.RawTensor {
	result := tensor.Clamp(x, lo, hi)
	if b.IsRecording() {
		b.tape.Record(ops.NewClampOp(x, lo, hi, result))
	}
	return result
}

// Erfinv applies the inverse error function and records the operation.
func (b *Backend) Erfinv(x *tensor.RawTensor) *tensor.RawTensor {
	result := tensor.Erfinv(x)
	if b.IsRecording() {
		b.tape.Record(ops.NewErfinvOp(x, result))
	}
	return result
}

// Apply runs fn.Forward on inputs with recording suspended and, if the tape
// is recording, records a single FunctionOp so that fn.Backward is used for
// the whole application during the backward pass.
//
// Errors from Forward are returned as they are.
func Apply(b *Backend, fn Function, inputs ...*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	ctx := ops.NewFunctionContext()

	var outputs []*tensor.RawTensor
	var err error
	b.NoGrad(func() {
		outputs, err = fn.Forward(ctx, inputs...)
	})
	if err != nil {
		return nil, err
	}
	if len(outputs) == 0 {
		return nil, errors.Errorf("autodiff: %T.Forward returned no outputs", fn)
	}

	if b.IsRecording() {
		b.tape.Record(ops.NewFunctionOp(fn, ctx, inputs, outputs))
	}
	return outputs, nil
}
