// Package ops defines operation interfaces and implementations for automatic differentiation.
//
// Each operation implements the Operation interface, which provides:
//   - Forward pass: computed before the operation is recorded
//   - Backward pass: computes gradients for inputs given output gradient
//
// Supported operations:
//   - MulScalarOp: multiplication by a constant (d(s*x)/dx = s)
//   - AddScalarOp: addition of a constant (d(x+s)/dx = 1)
//   - ClampOp: clamp to [lo, hi] (gradient passes only inside the interval)
//   - ErfinvOp: inverse error function (d(erfinv(x))/dx = sqrt(pi)/2 * exp(erfinv(x)^2))
//   - FunctionOp: user-defined forward/backward pair (see Function)
package ops

import "github.com/born-ml/backbone/internal/tensor"

// Operation represents a differentiable operation in the computation graph.
// Each operation records its inputs and output during the forward pass,
// and computes input gradients during the backward pass.
type Operation interface {
	// Backward computes gradients for inputs given the output gradient.
	// Returns a slice of gradients corresponding to each input tensor.
	Backward(outputGrad *tensor.RawTensor) []*tensor.RawTensor

	// Inputs returns the input tensors for this operation.
	Inputs() []*tensor.RawTensor

	// Output returns the output tensor produced by this operation.
	Output() *tensor.RawTensor
}

// MultiOutputOperation represents an operation that produces multiple outputs,
// such as a collective gather returning one tensor per participant.
//
// The tape handles these specially by collecting gradients for ALL outputs
// before calling BackwardMulti. Outputs that received no gradient are passed
// as zeros.
type MultiOutputOperation interface {
	Operation

	// Outputs returns all output tensors produced by this operation.
	Outputs() []*tensor.RawTensor

	// BackwardMulti computes gradients for inputs given gradients for ALL outputs.
	// This is used instead of Backward for multi-output operations.
	BackwardMulti(outputGrads []*tensor.RawTensor) []*tensor.RawTensor
}
