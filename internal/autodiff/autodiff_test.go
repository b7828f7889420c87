package autodiff

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/backbone/internal/autodiff/ops"
	"github.com/born-ml/backbone/internal/tensor"
)

func fromSlice(t *testing.T, data []float32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	x, err := tensor.FromSlice(data, shape)
	require.NoError(t, err)
	return x
}

func TestBackend_MulAddChain(t *testing.T) {
	backend := New()
	backend.Tape().StartRecording()

	x := fromSlice(t, []float32{1, 2, 3}, tensor.Shape{3})
	y := backend.MulScalar(backend.AddScalar(x, 1), 3) // y = 3(x+1)
	assert.Equal(t, []float32{6, 9, 12}, y.AsFloat32())
	assert.Equal(t, 2, backend.Tape().NumOps())

	grads, err := Backward(backend, y)
	require.NoError(t, err)
	assert.Equal(t, []float32{3, 3, 3}, grads[x].AsFloat32())
}

func TestBackend_ClampMasksGradient(t *testing.T) {
	backend := New()
	backend.Tape().StartRecording()

	x := fromSlice(t, []float32{-2, -1, 0, 1, 2}, tensor.Shape{5})
	y := backend.Clamp(x, -1, 1)

	grads, err := Backward(backend, y)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 1, 1, 0}, grads[x].AsFloat32())
}

func TestBackend_ErfinvGradientMatchesFiniteDifference(t *testing.T) {
	backend := New()
	backend.Tape().StartRecording()

	points := []float32{-0.8, -0.3, 0, 0.4, 0.9}
	x := fromSlice(t, points, tensor.Shape{5})
	y := backend.Erfinv(x)

	grads, err := Backward(backend, y)
	require.NoError(t, err)

	const h = 1e-4
	for i, p := range points {
		numeric := (math.Erfinv(float64(p)+h) - math.Erfinv(float64(p)-h)) / (2 * h)
		assert.InEpsilon(t, numeric, float64(grads[x].AsFloat32()[i]), 1e-3, "point %v", p)
	}
}

func TestBackend_NotRecording(t *testing.T) {
	backend := New()
	x := fromSlice(t, []float32{1}, tensor.Shape{1})
	backend.MulScalar(x, 2)
	assert.Equal(t, 0, backend.Tape().NumOps())

	_, err := Backward(backend, x)
	assert.Error(t, err)
}

func TestBackend_NilIsUntracked(t *testing.T) {
	var backend *Backend
	x := fromSlice(t, []float32{1, 2}, tensor.Shape{2})

	assert.False(t, backend.IsRecording())
	assert.Nil(t, backend.Tape())
	assert.Equal(t, []float32{2, 4}, backend.MulScalar(x, 2).AsFloat32())

	ran := false
	backend.NoGrad(func() { ran = true })
	assert.True(t, ran)
}

func TestNoGrad_SuspendsAndRestores(t *testing.T) {
	backend := New()
	backend.Tape().StartRecording()
	x := fromSlice(t, []float32{1}, tensor.Shape{1})

	backend.NoGrad(func() {
		assert.False(t, backend.IsRecording())
		backend.MulScalar(x, 2)
		backend.Clamp(x, 0, 1)
	})

	assert.True(t, backend.IsRecording())
	assert.Equal(t, 0, backend.Tape().NumOps())
}

func TestNoGrad_RestoresAfterPanic(t *testing.T) {
	tape := NewGradientTape()
	tape.StartRecording()

	assert.Panics(t, func() {
		tape.NoGrad(func() { panic("boom") })
	})
	assert.True(t, tape.IsRecording())
}

func TestNoGrad_KeepsStoppedTapeStopped(t *testing.T) {
	tape := NewGradientTape()
	tape.NoGrad(func() {})
	assert.False(t, tape.IsRecording())
}

// splitFunction splits a [2n] tensor into two [n] halves.
// Backward concatenates the halves' gradients, scaling the second by factor.
type splitFunction struct {
	factor float32
}

func (f splitFunction) Forward(ctx *FunctionContext, inputs ...*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	x := inputs[0]
	half := x.Shape()[0] / 2
	a, err := tensor.Narrow(x, 0, 0, half)
	if err != nil {
		return nil, err
	}
	b, err := tensor.Narrow(x, 0, half, half)
	if err != nil {
		return nil, err
	}
	ctx.SaveForBackward(x)
	ctx.SetInt("half", half)
	return []*tensor.RawTensor{a, b}, nil
}

func (f splitFunction) Backward(ctx *FunctionContext, grads ...*tensor.RawTensor) []*tensor.RawTensor {
	if ctx.SavedTensors()[0].Shape()[0] != 2*ctx.Int("half") {
		panic("unexpected saved input")
	}
	g, err := tensor.Cat([]*tensor.RawTensor{grads[0], tensor.MulScalar(grads[1], f.factor)}, 0)
	if err != nil {
		panic(err)
	}
	return []*tensor.RawTensor{g}
}

func TestApply_MultiOutputBackward(t *testing.T) {
	backend := New()
	backend.Tape().StartRecording()

	x := fromSlice(t, []float32{1, 2, 3, 4}, tensor.Shape{4})
	outs, err := Apply(backend, splitFunction{factor: 10}, x)
	require.NoError(t, err)
	require.Len(t, outs, 2)
	assert.Equal(t, []float32{1, 2}, outs[0].AsFloat32())
	assert.Equal(t, []float32{3, 4}, outs[1].AsFloat32())
	assert.Equal(t, 1, backend.Tape().NumOps())

	grads, err := Backward(backend, outs...)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 1, 10, 10}, grads[x].AsFloat32())
}

func TestApply_MissingOutputGradIsZero(t *testing.T) {
	backend := New()
	backend.Tape().StartRecording()

	x := fromSlice(t, []float32{1, 2, 3, 4}, tensor.Shape{4})
	outs, err := Apply(backend, splitFunction{factor: 10}, x)
	require.NoError(t, err)

	// Only the second half feeds the loss.
	y := backend.MulScalar(outs[1], 2)
	grads, err := Backward(backend, y)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 20, 20}, grads[x].AsFloat32())
}

func TestApply_ForwardRunsWithoutRecording(t *testing.T) {
	backend := New()
	backend.Tape().StartRecording()

	x := fromSlice(t, []float32{1, 2}, tensor.Shape{2})
	_, err := Apply(backend, recordingProbe{backend: backend}, x)
	require.NoError(t, err)

	// Only the FunctionOp itself, not the MulScalar inside Forward.
	assert.Equal(t, 1, backend.Tape().NumOps())
}

type recordingProbe struct {
	backend *Backend
}

func (p recordingProbe) Forward(_ *FunctionContext, inputs ...*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	return []*tensor.RawTensor{p.backend.MulScalar(inputs[0], 2)}, nil
}

func (p recordingProbe) Backward(_ *FunctionContext, grads ...*tensor.RawTensor) []*tensor.RawTensor {
	return []*tensor.RawTensor{tensor.MulScalar(grads[0], 2)}
}

var errForward = errors.New("forward failed")

type failingFunction struct{}

func (failingFunction) Forward(*FunctionContext, ...*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	return nil, errForward
}

func (failingFunction) Backward(*FunctionContext, ...*tensor.RawTensor) []*tensor.RawTensor {
	return nil
}

func TestApply_ForwardErrorReturnedAsIs(t *testing.T) {
	backend := New()
	backend.Tape().StartRecording()

	_, err := Apply(backend, failingFunction{}, fromSlice(t, []float32{1}, tensor.Shape{1}))
	assert.Same(t, errForward, err)
	assert.Equal(t, 0, backend.Tape().NumOps())
	assert.True(t, backend.IsRecording())
}

func TestFunctionContext_MissingIntPanics(t *testing.T) {
	ctx := ops.NewFunctionContext()
	assert.Panics(t, func() { ctx.Int("rank") })
}

func TestTape_ClearKeepsRecording(t *testing.T) {
	backend := New()
	backend.Tape().StartRecording()
	backend.AddScalar(fromSlice(t, []float32{1}, tensor.Shape{1}), 1)

	backend.Tape().Clear()
	assert.Equal(t, 0, backend.Tape().NumOps())
	assert.True(t, backend.IsRecording())
}
