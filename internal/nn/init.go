// Package nn provides weight initialization and checkpoint adaptation helpers
// for vision-transformer backbones.
package nn

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"
	"k8s.io/klog/v2"

	"github.com/born-ml/backbone/internal/autodiff"
	"github.com/born-ml/backbone/internal/tensor"
)

// TruncNormalConfig configures TruncNormal.
type TruncNormalConfig struct {
	Mean float64 // Mean of the underlying normal distribution
	Std  float64 // Standard deviation of the underlying normal distribution (> 0)
	A    float64 // Lower cutoff
	B    float64 // Upper cutoff (> A)

	// Rand is the source of uniform samples. Nil uses the global math/rand source.
	Rand *rand.Rand
}

// DefaultTruncNormalConfig returns N(0, 1) truncated to [-2, 2].
func DefaultTruncNormalConfig() TruncNormalConfig {
	return TruncNormalConfig{
		Mean: 0,
		Std:  1,
		A:    -2,
		B:    2,
	}
}

// TruncNormal fills t in place with values drawn from the normal distribution
// N(cfg.Mean, cfg.Std²) truncated to [cfg.A, cfg.B], and returns t.
//
// Samples are generated by inverse-CDF sampling: uniform values over the CDF
// range of [A, B] are mapped back through the inverse normal CDF (expressed
// with erfinv), then rescaled. Results are clamped to [A, B] to absorb
// floating-point overflow at the tails; a Std so large that the scaling
// overflows float32 leaves NaN only where erfinv is 0, and those elements
// take Mean clamped to [A, B].
//
// The method is accurate when A <= Mean <= B. A warning is logged when Mean is
// more than two standard deviations outside [A, B]. Std <= 0 or A >= B are not
// checked and produce NaN or degenerate values.
//
// The fill runs under backend.NoGrad: nothing is recorded on the tape. backend
// may be nil.
//
// Example:
//
//	w, _ := tensor.NewRaw(tensor.Shape{768, 768})
//	cfg := nn.DefaultTruncNormalConfig()
//	cfg.Std = 0.02
//	nn.TruncNormal(backend, w, cfg)
func TruncNormal(backend *autodiff.Backend, t *tensor.RawTensor, cfg TruncNormalConfig) *tensor.RawTensor {
	mean, std, a, b := cfg.Mean, cfg.Std, cfg.A, cfg.B
	if mean < a-2*std || mean > b+2*std {
		klog.Warningf("TruncNormal: mean %g is more than 2 std from [%g, %g]; the distribution of values may be incorrect",
			mean, a, b)
	}

	backend.NoGrad(func() {
		// CDF values of the bounds.
		l := distuv.UnitNormal.CDF((a - mean) / std)
		u := distuv.UnitNormal.CDF((b - mean) / std)

		// Uniform over [2l-1, 2u-1], the erf range matching [l, u].
		tensor.FillUniform(t, 2*l-1, 2*u-1, cfg.Rand)

		// erfinv gives a truncated standard normal scaled by 1/sqrt(2).
		x := backend.Erfinv(t)
		x = backend.MulScalar(x, float32(std*math.Sqrt2))
		x = backend.AddScalar(x, float32(mean))

		if klog.V(2).Enabled() {
			klog.Infof("TruncNormal: clamping %d of %d values to [%g, %g]",
				countOutside(x, float32(a), float32(b)), x.NumElements(), a, b)
		}
		x = backend.Clamp(x, float32(a), float32(b))
		// std*sqrt(2) beyond float32 range turns erfinv(0) into 0*Inf.
		replaceNaN(x, float32(math.Max(a, math.Min(b, mean))))

		if err := t.CopyFrom(x); err != nil {
			panic(err) // x is computed element-wise from t
		}
	})
	return t
}

// replaceNaN overwrites NaN elements of x with v in place.
func replaceNaN(x *tensor.RawTensor, v float32) {
	data := x.AsFloat32()
	for i, e := range data {
		if e != e {
			data[i] = v
		}
	}
}

// countOutside counts elements of x outside [lo, hi], NaN included.
func countOutside(x *tensor.RawTensor, lo, hi float32) int {
	n := 0
	for _, v := range x.AsFloat32() {
		if !(v >= lo && v <= hi) {
			n++
		}
	}
	return n
}
