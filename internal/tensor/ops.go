package tensor

import (
	"fmt"
	"math"
	"math/rand"
)

// Add performs element-wise addition of two tensors with identical shapes.
// Panics on shape mismatch.
func Add(a, b *RawTensor) *RawTensor {
	if !a.shape.Equal(b.shape) {
		panic(fmt.Sprintf("add: shape mismatch %v vs %v", a.shape, b.shape))
	}
	out := ZerosLike(a)
	for i := range out.data {
		out.data[i] = a.data[i] + b.data[i]
	}
	return out
}

// MulScalar multiplies every element by scalar.
func MulScalar(t *RawTensor, scalar float32) *RawTensor {
	return mapUnary(t, func(x float32) float32 { return x * scalar })
}

// AddScalar adds scalar to every element.
func AddScalar(t *RawTensor, scalar float32) *RawTensor {
	return mapUnary(t, func(x float32) float32 { return x + scalar })
}

// Clamp limits every element to [lo, hi]. NaN elements are left as they are.
func Clamp(t *RawTensor, lo, hi float32) *RawTensor {
	return mapUnary(t, func(x float32) float32 {
		if x < lo {
			return lo
		}
		if x > hi {
			return hi
		}
		return x
	})
}

// Erf computes the error function element-wise.
func Erf(t *RawTensor) *RawTensor {
	return mapUnary(t, func(x float32) float32 {
		return float32(math.Erf(float64(x)))
	})
}

// Erfinv computes the inverse error function element-wise.
// Inputs of exactly -1 and 1 map to -Inf and +Inf; inputs outside [-1, 1] map to NaN.
func Erfinv(t *RawTensor) *RawTensor {
	return mapUnary(t, func(x float32) float32 {
		return float32(math.Erfinv(float64(x)))
	})
}

// FillUniform overwrites t in place with samples drawn uniformly from [lo, hi).
// A nil rng draws from the global math/rand source.
func FillUniform(t *RawTensor, lo, hi float64, rng *rand.Rand) {
	next := rand.Float64
	if rng != nil {
		next = rng.Float64
	}
	span := hi - lo
	for i := range t.data {
		//nolint:gosec // Using math/rand for weight initialization (not security-critical)
		t.data[i] = float32(lo + next()*span)
	}
}

// Uniform creates a tensor filled with samples drawn uniformly from [lo, hi).
func Uniform(shape Shape, lo, hi float64, rng *rand.Rand) (*RawTensor, error) {
	t, err := NewRaw(shape)
	if err != nil {
		return nil, err
	}
	FillUniform(t, lo, hi, rng)
	return t, nil
}

func mapUnary(t *RawTensor, f func(float32) float32) *RawTensor {
	out := ZerosLike(t)
	for i, x := range t.data {
		out.data[i] = f(x)
	}
	return out
}
