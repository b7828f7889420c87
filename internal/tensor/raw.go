// Package tensor provides the dense float32 tensor used by the backbone helpers.
//
// A RawTensor owns a contiguous row-major buffer. Every operation in this
// package allocates a new tensor and leaves its inputs untouched, except for the
// explicitly in-place helpers (CopyFrom, FillUniform).
package tensor

import (
	"fmt"

	"github.com/pkg/errors"
)

// RawTensor is the low-level tensor representation: a contiguous float32
// buffer with a row-major shape.
type RawTensor struct {
	data   []float32
	shape  Shape
	stride []int
}

// NewRaw creates a new RawTensor with the given shape.
// Memory is allocated and zero-initialized.
func NewRaw(shape Shape) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid shape")
	}

	return &RawTensor{
		data:   make([]float32, shape.NumElements()),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
	}, nil
}

// FromSlice creates a RawTensor holding a copy of data.
// len(data) must match shape.NumElements().
func FromSlice(data []float32, shape Shape) (*RawTensor, error) {
	if len(data) != shape.NumElements() {
		return nil, errors.Wrapf(ErrShapeMismatch, "data length %d does not match shape %v (%d elements)",
			len(data), shape, shape.NumElements())
	}
	t, err := NewRaw(shape)
	if err != nil {
		return nil, err
	}
	copy(t.data, data)
	return t, nil
}

// Full creates a tensor of the given shape with every element set to value.
func Full(shape Shape, value float32) (*RawTensor, error) {
	t, err := NewRaw(shape)
	if err != nil {
		return nil, err
	}
	for i := range t.data {
		t.data[i] = value
	}
	return t, nil
}

// ZerosLike creates a zero-filled tensor with the same shape as t.
func ZerosLike(t *RawTensor) *RawTensor {
	return &RawTensor{
		data:   make([]float32, len(t.data)),
		shape:  t.shape.Clone(),
		stride: append([]int(nil), t.stride...),
	}
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the tensor's memory strides.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return len(r.data)
}

// AsFloat32 returns the underlying buffer.
// WARNING: Direct access to underlying memory; writes are visible to every holder of r.
func (r *RawTensor) AsFloat32() []float32 {
	return r.data
}

// At returns the element at the given multi-dimensional index.
// Panics if the number of indices does not match the rank.
func (r *RawTensor) At(indices ...int) float32 {
	if len(indices) != len(r.shape) {
		panic(fmt.Sprintf("at: got %d indices for rank %d tensor", len(indices), len(r.shape)))
	}
	off := 0
	for i, idx := range indices {
		off += idx * r.stride[i]
	}
	return r.data[off]
}

// Clone creates a deep copy of the tensor.
func (r *RawTensor) Clone() *RawTensor {
	return &RawTensor{
		data:   append([]float32(nil), r.data...),
		shape:  r.shape.Clone(),
		stride: append([]int(nil), r.stride...),
	}
}

// CopyFrom overwrites r's elements with src's elements in place.
// Both tensors must have the same shape.
func (r *RawTensor) CopyFrom(src *RawTensor) error {
	if !r.shape.Equal(src.shape) {
		return errors.Wrapf(ErrShapeMismatch, "copy: destination %v, source %v", r.shape, src.shape)
	}
	copy(r.data, src.data)
	return nil
}

// String returns a short description of the tensor.
func (r *RawTensor) String() string {
	return fmt.Sprintf("RawTensor(shape=%v)", r.shape)
}
