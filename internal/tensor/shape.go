package tensor

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrShapeMismatch is returned when a tensor's shape is incompatible with the
// requested operation (reshape, concatenation, copy, ...).
var ErrShapeMismatch = errors.New("shape mismatch")

// Shape represents the dimensions of a tensor.
type Shape []int

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks if the shape is valid (all dimensions > 0).
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return errors.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides for the shape.
// Strides define memory layout: stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// String formats the shape as [d0, d1, ...].
func (s Shape) String() string {
	return fmt.Sprint([]int(s))
}

// normalizeDim resolves a possibly negative dimension index against rank.
// Valid range is [-rank, rank).
func normalizeDim(dim, rank int) (int, error) {
	if dim < 0 {
		dim += rank
	}
	if dim < 0 || dim >= rank {
		return 0, errors.Errorf("dimension %d out of range for rank %d", dim, rank)
	}
	return dim, nil
}

// splitAt returns the product of dimensions before dim and after dim.
func (s Shape) splitAt(dim int) (outer, inner int) {
	outer, inner = 1, 1
	for i := 0; i < dim; i++ {
		outer *= s[i]
	}
	for i := dim + 1; i < len(s); i++ {
		inner *= s[i]
	}
	return outer, inner
}
