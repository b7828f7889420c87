package ops

import (
	"math"

	"github.com/born-ml/backbone/internal/tensor"
)

// MulScalarOp represents output = x * scalar.
//
// Backward pass: grad_x = outputGrad * scalar.
type MulScalarOp struct {
	input  *tensor.RawTensor
	scalar float32
	output *tensor.RawTensor
}

// NewMulScalarOp creates a new MulScalarOp.
func NewMulScalarOp(input *tensor.RawTensor, scalar float32, output *tensor.RawTensor) *MulScalarOp {
	return &MulScalarOp{input: input, scalar: scalar, output: output}
}

// Backward computes the input gradient.
func (op *MulScalarOp) Backward(outputGrad *tensor.RawTensor) []*tensor.RawTensor {
	return []*tensor.RawTensor{tensor.MulScalar(outputGrad, op.scalar)}
}

// Inputs returns [x].
func (op *MulScalarOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns x * scalar.
func (op *MulScalarOp) Output() *tensor.RawTensor {
	return op.output
}

// AddScalarOp represents output = x + scalar.
//
// Backward pass: grad_x = outputGrad.
type AddScalarOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewAddScalarOp creates a new AddScalarOp.
func NewAddScalarOp(input, output *tensor.RawTensor) *AddScalarOp {
	return &AddScalarOp{input: input, output: output}
}

// Backward passes the gradient through unchanged.
func (op *AddScalarOp) Backward(outputGrad *tensor.RawTensor) []*tensor.RawTensor {
	return []*tensor.RawTensor{outputGrad.Clone()}
}

// Inputs returns [x].
func (op *AddScalarOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns x + scalar.
func (op *AddScalarOp) Output() *tensor.RawTensor {
	return op.output
}

// ClampOp represents output = clamp(x, lo, hi).
//
// Backward pass: grad_x = outputGrad where lo <= x <= hi, 0 elsewhere.
type ClampOp struct {
	input  *tensor.RawTensor
	lo, hi float32
	output *tensor.RawTensor
}

// NewClampOp creates a new ClampOp.
func NewClampOp(input *tensor.RawTensor, lo, hi float32, output *tensor.RawTensor) *ClampOp {
	return &ClampOp{input: input, lo: lo, hi: hi, output: output}
}

// Backward masks the gradient to the positions that were not clamped.
func (op *ClampOp) Backward(outputGrad *tensor.RawTensor) []*tensor.RawTensor {
	grad := tensor.ZerosLike(outputGrad)
	g, x, out := outputGrad.AsFloat32(), op.input.AsFloat32(), grad.AsFloat32()
	for i := range out {
		if x[i] >= op.lo && x[i] <= op.hi {
			out[i] = g[i]
		}
	}
	return []*tensor.RawTensor{grad}
}

// Inputs returns [x].
func (op *ClampOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns clamp(x, lo, hi).
func (op *ClampOp) Output() *tensor.RawTensor {
	return op.output
}

// ErfinvOp represents output = erfinv(x).
//
// Backward pass: grad_x = outputGrad * sqrt(pi)/2 * exp(output^2).
type ErfinvOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewErfinvOp creates a new ErfinvOp.
func NewErfinvOp(input, output *tensor.RawTensor) *ErfinvOp {
	return &ErfinvOp{input: input, output: output}
}

// Backward computes the input gradient from the saved output.
func (op *ErfinvOp) Backward(outputGrad *tensor.RawTensor) []*tensor.RawTensor {
	grad := tensor.ZerosLike(outputGrad)
	g, y, out := outputGrad.AsFloat32(), op.output.AsFloat32(), grad.AsFloat32()
	halfSqrtPi := math.Sqrt(math.Pi) / 2
	for i := range out {
		yi := float64(y[i])
		out[i] = float32(float64(g[i]) * halfSqrtPi * math.Exp(yi*yi))
	}
	return []*tensor.RawTensor{grad}
}

// Inputs returns [x].
func (op *ErfinvOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns erfinv(x).
func (op *ErfinvOp) Output() *tensor.RawTensor {
	return op.output
}
