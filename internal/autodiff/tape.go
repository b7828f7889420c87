package autodiff

import (
	"github.com/born-ml/backbone/internal/autodiff/ops"
	"github.com/born-ml/backbone/internal/tensor"
)

// GradientTape records operations during the forward pass and computes
// gradients during the backward pass using reverse-mode automatic differentiation.
//
// Usage:
//
//	tape := NewGradientTape()
//	tape.StartRecording()
//	// ... perform operations ...
//	gradients := tape.Backward(outputGrad)
type GradientTape struct {
	operations []ops.Operation // Recorded operations (in execution order)
	recording  bool            // Whether tape is currently recording
}

// NewGradientTape creates a new gradient tape.
func NewGradientTape() *GradientTape {
	return &GradientTape{
		operations: make([]ops.Operation, 0, 16),
	}
}

// StartRecording enables operation recording.
func (t *GradientTape) StartRecording() {
	t.recording = true
}

// StopRecording disables operation recording.
func (t *GradientTape) StopRecording() {
	t.recording = false
}

// IsRecording returns true if the tape is currently recording operations.
func (t *GradientTape) IsRecording() bool {
	return t.recording
}

// NoGrad runs fn with recording disabled and restores the previous recording
// state afterwards, even if fn panics.
func (t *GradientTape) NoGrad(fn func()) {
	wasRecording := t.recording
	t.recording = false
	defer func() {
		t.recording = wasRecording
	}()
	fn()
}

// Record adds an operation to the tape.
// Only records if the tape is currently recording.
func (t *GradientTape) Record(op ops.Operation) {
	if t.recording {
		t.operations = append(t.operations, op)
	}
}

// Clear resets the tape, removing all recorded operations.
// Recording state is preserved.
func (t *GradientTape) Clear() {
	t.operations = t.operations[:0]
}

// NumOps returns the number of recorded operations.
func (t *GradientTape) NumOps() int {
	return len(t.operations)
}

// Backward computes gradients seeded with outputGrad for the output of the
// last recorded operation. For multi-output operations the seed goes to its
// first output.
//
// Returns a map from RawTensor to its accumulated gradient.
func (t *GradientTape) Backward(outputGrad *tensor.RawTensor) map[*tensor.RawTensor]*tensor.RawTensor {
	if len(t.operations) == 0 {
		return make(map[*tensor.RawTensor]*tensor.RawTensor)
	}
	lastOp := t.operations[len(t.operations)-1]
	return t.BackwardFrom(map[*tensor.RawTensor]*tensor.RawTensor{
		lastOp.Output(): outputGrad,
	})
}

// BackwardFrom computes gradients by walking the tape in reverse, starting
// from the given seed gradients (one per tensor the loss depends on directly).
//
// Algorithm:
//  1. Start with the seed gradients
//  2. Walk operations in reverse order
//  3. For each operation, compute input gradients using chain rule
//  4. Accumulate gradients when the same tensor is used multiple times
//
// The seeds map is not modified.
func (t *GradientTape) BackwardFrom(seeds map[*tensor.RawTensor]*tensor.RawTensor) map[*tensor.RawTensor]*tensor.RawTensor {
	grads := make(map[*tensor.RawTensor]*tensor.RawTensor, len(seeds))
	for k, v := range seeds {
		grads[k] = v
	}

	// Gradient computations must not end up on the tape.
	t.NoGrad(func() {
		for i := len(t.operations) - 1; i >= 0; i-- {
			op := t.operations[i]
			inputGrads := t.computeInputGrads(op, grads)
			if inputGrads == nil {
				continue
			}
			accumulateGrads(op, inputGrads, grads)
		}
	})

	return grads
}

// computeInputGrads computes gradients for an operation's inputs.
// Returns nil if no gradient flows to this operation.
func (t *GradientTape) computeInputGrads(
	op ops.Operation,
	grads map[*tensor.RawTensor]*tensor.RawTensor,
) []*tensor.RawTensor {
	if multiOp, isMulti := op.(ops.MultiOutputOperation); isMulti {
		return computeMultiOutputGrads(multiOp, grads)
	}
	outputGrad, hasGrad := grads[op.Output()]
	if !hasGrad {
		return nil
	}
	return op.Backward(outputGrad)
}

// computeMultiOutputGrads collects a gradient for every output, zero-filling
// the outputs nothing depended on, and calls BackwardMulti.
func computeMultiOutputGrads(
	multiOp ops.MultiOutputOperation,
	grads map[*tensor.RawTensor]*tensor.RawTensor,
) []*tensor.RawTensor {
	outputs := multiOp.Outputs()
	outputGrads := make([]*tensor.RawTensor, len(outputs))
	hasAnyGrad := false
	for j, out := range outputs {
		if grad, exists := grads[out]; exists {
			outputGrads[j] = grad
			hasAnyGrad = true
		}
	}
	if !hasAnyGrad {
		return nil
	}
	for j, out := range outputs {
		if outputGrads[j] == nil {
			outputGrads[j] = tensor.ZerosLike(out)
		}
	}
	return multiOp.BackwardMulti(outputGrads)
}

// accumulateGrads accumulates gradients for each input tensor.
func accumulateGrads(
	op ops.Operation,
	inputGrads []*tensor.RawTensor,
	grads map[*tensor.RawTensor]*tensor.RawTensor,
) {
	for j, input := range op.Inputs() {
		if j >= len(inputGrads) {
			break
		}
		inputGrad := inputGrads[j]
		if inputGrad == nil {
			continue
		}
		if existing, ok := grads[input]; ok {
			grads[input] = tensor.Add(existing, inputGrad)
		} else {
			grads[input] = inputGrad
		}
	}
}
