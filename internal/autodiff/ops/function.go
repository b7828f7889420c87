package ops

import (
	"fmt"

	"github.com/born-ml/backbone/internal/tensor"
)

// Function is a user-defined differentiable operation: a forward transform
// paired with an explicit backward transform.
//
// Anything Backward needs from the forward pass must be stored in the
// FunctionContext, not in the Function value itself.
type Function interface {
	// Forward computes the outputs. It runs with gradient recording disabled.
	Forward(ctx *FunctionContext, inputs ...*tensor.RawTensor) ([]*tensor.RawTensor, error)

	// Backward maps one gradient per output to one gradient per input.
	// A nil entry means no gradient flows to that input.
	Backward(ctx *FunctionContext, outputGrads ...*tensor.RawTensor) []*tensor.RawTensor
}

// FunctionContext carries state saved during Function.Forward for use in Backward.
type FunctionContext struct {
	saved  []*tensor.RawTensor
	values map[string]int
}

// NewFunctionContext creates an empty context.
func NewFunctionContext() *FunctionContext {
	return &FunctionContext{values: make(map[string]int)}
}

// SaveForBackward stores tensors for the backward pass, replacing any saved earlier.
func (c *FunctionContext) SaveForBackward(ts ...*tensor.RawTensor) {
	c.saved = ts
}

// SavedTensors returns the tensors stored by SaveForBackward.
func (c *FunctionContext) SavedTensors() []*tensor.RawTensor {
	return c.saved
}

// SetInt stores a named integer (a rank, a size) for the backward pass.
func (c *FunctionContext) SetInt(key string, v int) {
	c.values[key] = v
}

// Int returns a value stored with SetInt.
// Panics if key was never set: that is a bug in the Function's Forward.
func (c *FunctionContext) Int(key string) int {
	v, ok := c.values[key]
	if !ok {
		panic(fmt.Sprintf("function context: %q was not saved in forward", key))
	}
	return v
}

// FunctionOp records one application of a Function on the tape.
type FunctionOp struct {
	fn      Function
	ctx     *FunctionContext
	inputs  []*tensor.RawTensor
	outputs []*tensor.RawTensor
}

// NewFunctionOp creates a new FunctionOp. outputs must not be empty.
func NewFunctionOp(fn Function, ctx *FunctionContext, inputs, outputs []*tensor.RawTensor) *FunctionOp {
	return &FunctionOp{fn: fn, ctx: ctx, inputs: inputs, outputs: outputs}
}

// Inputs returns the Function's inputs.
func (op *FunctionOp) Inputs() []*tensor.RawTensor {
	return op.inputs
}

// Output returns the first output.
func (op *FunctionOp) Output() *tensor.RawTensor {
	return op.outputs[0]
}

// Outputs returns all outputs (implements MultiOutputOperation).
func (op *FunctionOp) Outputs() []*tensor.RawTensor {
	return op.outputs
}

// Backward handles the single-output case.
func (op *FunctionOp) Backward(outputGrad *tensor.RawTensor) []*tensor.RawTensor {
	return op.BackwardMulti([]*tensor.RawTensor{outputGrad})
}

// BackwardMulti delegates to Function.Backward with the saved context.
func (op *FunctionOp) BackwardMulti(outputGrads []*tensor.RawTensor) []*tensor.RawTensor {
	return op.fn.Backward(op.ctx, outputGrads...)
}
