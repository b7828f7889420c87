package autodiff

import (
	"github.com/pkg/errors"

	"github.com/born-ml/backbone/internal/tensor"
)

// Backward computes gradients of sum(outputs...) with respect to every
// tensor on the backend's tape: each output is seeded with ones.
//
// Example:
//
//	backend := autodiff.New()
//	backend.Tape().StartRecording()
//	y := backend.MulScalar(x, 2)
//	grads, err := autodiff.Backward(backend, y)
//	grad := grads[x] // all 2s
func Backward(b *Backend, outputs ...*tensor.RawTensor) (map[*tensor.RawTensor]*tensor.RawTensor, error) {
	tape := b.Tape()
	if tape == nil || tape.NumOps() == 0 {
		return nil, errors.New("backward: no operations recorded (did you forget to call Tape().StartRecording()?)")
	}
	if len(outputs) == 0 {
		return nil, errors.New("backward: at least one output required")
	}

	seeds := make(map[*tensor.RawTensor]*tensor.RawTensor, len(outputs))
	for _, out := range outputs {
		ones, err := tensor.Full(out.Shape(), 1)
		if err != nil {
			return nil, errors.Wrap(err, "backward: failed to create output gradient")
		}
		seeds[out] = ones
	}
	return tape.BackwardFrom(seeds), nil
}
