package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/backbone/internal/tensor"
)

func mustFromSlice(t *testing.T, data []float32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	x, err := tensor.FromSlice(data, shape)
	require.NoError(t, err)
	return x
}

func TestMulScalarOp_Backward(t *testing.T) {
	x := mustFromSlice(t, []float32{1, 2}, tensor.Shape{2})
	op := NewMulScalarOp(x, -3, tensor.MulScalar(x, -3))

	grads := op.Backward(mustFromSlice(t, []float32{1, 0.5}, tensor.Shape{2}))
	require.Len(t, grads, 1)
	assert.Equal(t, []float32{-3, -1.5}, grads[0].AsFloat32())
	assert.Equal(t, []*tensor.RawTensor{x}, op.Inputs())
}

func TestAddScalarOp_BackwardDoesNotAlias(t *testing.T) {
	x := mustFromSlice(t, []float32{1, 2}, tensor.Shape{2})
	op := NewAddScalarOp(x, tensor.AddScalar(x, 1))

	g := mustFromSlice(t, []float32{4, 5}, tensor.Shape{2})
	grads := op.Backward(g)
	assert.Equal(t, []float32{4, 5}, grads[0].AsFloat32())
	assert.NotSame(t, g, grads[0])
}

func TestClampOp_BoundsAreInclusive(t *testing.T) {
	x := mustFromSlice(t, []float32{-1.5, -1, 0.2, 1, 1.5}, tensor.Shape{5})
	op := NewClampOp(x, -1, 1, tensor.Clamp(x, -1, 1))

	ones, err := tensor.Full(tensor.Shape{5}, 1)
	require.NoError(t, err)
	grads := op.Backward(ones)
	assert.Equal(t, []float32{0, 1, 1, 1, 0}, grads[0].AsFloat32())
}

func TestErfinvOp_BackwardAtZero(t *testing.T) {
	x := mustFromSlice(t, []float32{0}, tensor.Shape{1})
	op := NewErfinvOp(x, tensor.Erfinv(x))

	grads := op.Backward(mustFromSlice(t, []float32{2}, tensor.Shape{1}))
	// d/dx erfinv(x) at 0 is sqrt(pi)/2.
	assert.InDelta(t, 2*0.886226925, grads[0].AsFloat32()[0], 1e-6)
}

type doubleFunction struct{}

func (doubleFunction) Forward(ctx *FunctionContext, inputs ...*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	ctx.SetInt("factor", 2)
	return []*tensor.RawTensor{tensor.MulScalar(inputs[0], 2)}, nil
}

func (doubleFunction) Backward(ctx *FunctionContext, grads ...*tensor.RawTensor) []*tensor.RawTensor {
	return []*tensor.RawTensor{tensor.MulScalar(grads[0], float32(ctx.Int("factor")))}
}

func TestFunctionOp_SingleOutput(t *testing.T) {
	x := mustFromSlice(t, []float32{1, 2}, tensor.Shape{2})
	ctx := NewFunctionContext()
	outs, err := doubleFunction{}.Forward(ctx, x)
	require.NoError(t, err)

	op := NewFunctionOp(doubleFunction{}, ctx, []*tensor.RawTensor{x}, outs)
	var _ MultiOutputOperation = op

	assert.Same(t, outs[0], op.Output())
	assert.Equal(t, outs, op.Outputs())

	grads := op.Backward(mustFromSlice(t, []float32{1, 1}, tensor.Shape{2}))
	assert.Equal(t, []float32{2, 2}, grads[0].AsFloat32())
}

func TestFunctionContext_Saved(t *testing.T) {
	ctx := NewFunctionContext()
	a := mustFromSlice(t, []float32{1}, tensor.Shape{1})
	b := mustFromSlice(t, []float32{2}, tensor.Shape{1})

	ctx.SaveForBackward(a, b)
	assert.Equal(t, []*tensor.RawTensor{a, b}, ctx.SavedTensors())

	ctx.SaveForBackward(b)
	assert.Equal(t, []*tensor.RawTensor{b}, ctx.SavedTensors())

	ctx.SetInt("rank", 3)
	assert.Equal(t, 3, ctx.Int("rank"))
}
