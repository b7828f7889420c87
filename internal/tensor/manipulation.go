package tensor

import (
	"github.com/pkg/errors"
)

// Reshape returns a copy of t with a new shape.
//
// At most one dimension may be -1; it is inferred from the element count.
// The element count must be preserved, otherwise an error wrapping
// ErrShapeMismatch is returned.
//
// Example:
//
//	x, _ := tensor.NewRaw(tensor.Shape{196, 768})
//	y, _ := tensor.Reshape(x, tensor.Shape{14, 14, -1}) // Shape: [14, 14, 768]
func Reshape(t *RawTensor, newShape Shape) (*RawTensor, error) {
	resolved, err := resolveShape(newShape, t.NumElements())
	if err != nil {
		return nil, errors.Wrapf(err, "reshape %v", t.shape)
	}
	return &RawTensor{
		data:   append([]float32(nil), t.data...),
		shape:  resolved,
		stride: resolved.ComputeStrides(),
	}, nil
}

// resolveShape fills in a single -1 dimension and checks the element count.
func resolveShape(shape Shape, numElements int) (Shape, error) {
	resolved := shape.Clone()
	inferAt := -1
	known := 1
	for i, dim := range resolved {
		switch {
		case dim == -1:
			if inferAt >= 0 {
				return nil, errors.Errorf("only one dimension can be inferred, got %v", shape)
			}
			inferAt = i
		case dim <= 0:
			return nil, errors.Errorf("invalid dimension %d at index %d", dim, i)
		default:
			known *= dim
		}
	}
	if inferAt >= 0 {
		if known == 0 || numElements%known != 0 {
			return nil, errors.Wrapf(ErrShapeMismatch, "cannot infer dimension of %v for %d elements", shape, numElements)
		}
		resolved[inferAt] = numElements / known
	}
	if resolved.NumElements() != numElements {
		return nil, errors.Wrapf(ErrShapeMismatch, "cannot reshape %d elements into %v", numElements, shape)
	}
	return resolved, nil
}

// Transpose permutes the dimensions of t according to axes.
//
// axes must be a permutation of [0, rank). With no axes, the order of the
// dimensions is reversed.
//
// Example:
//
//	x, _ := tensor.NewRaw(tensor.Shape{1, 14, 14, 768})
//	y, _ := tensor.Transpose(x, 0, 3, 1, 2) // Shape: [1, 768, 14, 14]
func Transpose(t *RawTensor, axes ...int) (*RawTensor, error) {
	rank := len(t.shape)
	if len(axes) == 0 {
		axes = make([]int, rank)
		for i := range axes {
			axes[i] = rank - 1 - i
		}
	}
	if len(axes) != rank {
		return nil, errors.Errorf("transpose: got %d axes for rank %d tensor", len(axes), rank)
	}

	seen := make([]bool, rank)
	outShape := make(Shape, rank)
	srcStrides := make([]int, rank) // source stride for each output axis
	for i, axis := range axes {
		a, err := normalizeDim(axis, rank)
		if err != nil {
			return nil, errors.Wrap(err, "transpose")
		}
		if seen[a] {
			return nil, errors.Errorf("transpose: axis %d repeated in %v", a, axes)
		}
		seen[a] = true
		outShape[i] = t.shape[a]
		srcStrides[i] = t.stride[a]
	}

	out := &RawTensor{
		data:   make([]float32, len(t.data)),
		shape:  outShape,
		stride: outShape.ComputeStrides(),
	}
	if rank == 0 {
		copy(out.data, t.data)
		return out, nil
	}

	// Walk output positions in order, tracking the matching source offset.
	idx := make([]int, rank)
	src := 0
	for dst := range out.data {
		out.data[dst] = t.data[src]
		for d := rank - 1; d >= 0; d-- {
			idx[d]++
			src += srcStrides[d]
			if idx[d] < outShape[d] {
				break
			}
			src -= idx[d] * srcStrides[d]
			idx[d] = 0
		}
	}
	return out, nil
}

// Narrow returns the slice [start, start+length) of t along dim.
//
// Example:
//
//	x, _ := tensor.NewRaw(tensor.Shape{197, 768})
//	cls, _ := tensor.Narrow(x, 0, 0, 1) // Shape: [1, 768]
func Narrow(t *RawTensor, dim, start, length int) (*RawTensor, error) {
	d, err := normalizeDim(dim, len(t.shape))
	if err != nil {
		return nil, errors.Wrap(err, "narrow")
	}
	if start < 0 || length <= 0 || start+length > t.shape[d] {
		return nil, errors.Errorf("narrow: range [%d, %d) out of bounds for dimension %d of size %d",
			start, start+length, d, t.shape[d])
	}

	outShape := t.shape.Clone()
	outShape[d] = length
	out, err := NewRaw(outShape)
	if err != nil {
		return nil, err
	}

	outer, inner := t.shape.splitAt(d)
	srcBlock := t.shape[d] * inner
	dstBlock := length * inner
	for o := 0; o < outer; o++ {
		src := t.data[o*srcBlock+start*inner : o*srcBlock+(start+length)*inner]
		copy(out.data[o*dstBlock:(o+1)*dstBlock], src)
	}
	return out, nil
}

// Cat concatenates tensors along the specified dimension.
//
// All tensors must have the same rank and the same shape except along dim.
// Supports negative dim indexing (-1 = last dimension).
//
// Example:
//
//	extra, _ := tensor.NewRaw(tensor.Shape{1, 768})
//	grid, _ := tensor.NewRaw(tensor.Shape{49, 768})
//	all, _ := tensor.Cat([]*tensor.RawTensor{extra, grid}, 0) // Shape: [50, 768]
func Cat(tensors []*RawTensor, dim int) (*RawTensor, error) {
	if len(tensors) == 0 {
		return nil, errors.New("cat: at least one tensor required")
	}
	first := tensors[0].shape
	d, err := normalizeDim(dim, len(first))
	if err != nil {
		return nil, errors.Wrap(err, "cat")
	}

	outShape := first.Clone()
	outShape[d] = 0
	for i, t := range tensors {
		if len(t.shape) != len(first) {
			return nil, errors.Wrapf(ErrShapeMismatch, "cat: tensor %d has rank %d, want %d", i, len(t.shape), len(first))
		}
		for j := range first {
			if j != d && t.shape[j] != first[j] {
				return nil, errors.Wrapf(ErrShapeMismatch, "cat: tensor %d has shape %v, incompatible with %v along dim %d",
					i, t.shape, first, d)
			}
		}
		outShape[d] += t.shape[d]
	}

	out, err := NewRaw(outShape)
	if err != nil {
		return nil, err
	}

	outer, inner := outShape.splitAt(d)
	dstBlock := outShape[d] * inner
	for o := 0; o < outer; o++ {
		pos := o * dstBlock
		for _, t := range tensors {
			n := t.shape[d] * inner
			copy(out.data[pos:pos+n], t.data[o*n:(o+1)*n])
			pos += n
		}
	}
	return out, nil
}

// Squeeze removes dimension dim, which must have size 1.
func Squeeze(t *RawTensor, dim int) (*RawTensor, error) {
	d, err := normalizeDim(dim, len(t.shape))
	if err != nil {
		return nil, errors.Wrap(err, "squeeze")
	}
	if t.shape[d] != 1 {
		return nil, errors.Errorf("squeeze: dimension %d has size %d, want 1", d, t.shape[d])
	}
	newShape := append(t.shape[:d:d], t.shape[d+1:]...)
	return Reshape(t, newShape)
}

// Unsqueeze inserts a dimension of size 1 at position dim.
// dim may range over [-(rank+1), rank].
func Unsqueeze(t *RawTensor, dim int) (*RawTensor, error) {
	d, err := normalizeDim(dim, len(t.shape)+1)
	if err != nil {
		return nil, errors.Wrap(err, "unsqueeze")
	}
	newShape := make(Shape, 0, len(t.shape)+1)
	newShape = append(newShape, t.shape[:d]...)
	newShape = append(newShape, 1)
	newShape = append(newShape, t.shape[d:]...)
	return Reshape(t, newShape)
}

// Flatten merges dimensions [startDim, endDim] into one.
func Flatten(t *RawTensor, startDim, endDim int) (*RawTensor, error) {
	rank := len(t.shape)
	s, err := normalizeDim(startDim, rank)
	if err != nil {
		return nil, errors.Wrap(err, "flatten")
	}
	e, err := normalizeDim(endDim, rank)
	if err != nil {
		return nil, errors.Wrap(err, "flatten")
	}
	if s > e {
		return nil, errors.Errorf("flatten: start dim %d after end dim %d", s, e)
	}
	newShape := make(Shape, 0, rank-(e-s))
	newShape = append(newShape, t.shape[:s]...)
	merged := 1
	for i := s; i <= e; i++ {
		merged *= t.shape[i]
	}
	newShape = append(newShape, merged)
	newShape = append(newShape, t.shape[e+1:]...)
	return Reshape(t, newShape)
}
