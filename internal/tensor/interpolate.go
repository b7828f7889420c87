package tensor

import (
	"math"

	"github.com/pkg/errors"

	"github.com/born-ml/backbone/internal/parallel"
)

// cubicA is the cubic convolution coefficient used by common image-resize
// implementations for bicubic mode.
const cubicA = -0.75

// InterpolateBicubic resizes the two trailing spatial dimensions of a
// [N, C, H, W] tensor to [N, C, outH, outW] with bicubic interpolation.
//
// Each output sample is a weighted sum over the 4x4 source neighbourhood
// around its source coordinate. Source indices falling outside the input are
// clamped to the border.
//
// With alignCorners=false the source coordinate of output index d is
// (d+0.5)*in/out - 0.5, i.e. pixel centers are aligned and corners are not.
// With alignCorners=true it is d*(in-1)/(out-1).
//
// Resizing to the input size is the identity.
func InterpolateBicubic(x *RawTensor, outH, outW int, alignCorners bool) (*RawTensor, error) {
	if len(x.shape) != 4 {
		return nil, errors.Errorf("interpolate: expected 4-D [N, C, H, W] input, got %v", x.shape)
	}
	if outH <= 0 || outW <= 0 {
		return nil, errors.Errorf("interpolate: output size must be positive, got %dx%d", outH, outW)
	}

	n, c, inH, inW := x.shape[0], x.shape[1], x.shape[2], x.shape[3]
	out, err := NewRaw(Shape{n, c, outH, outW})
	if err != nil {
		return nil, err
	}

	rows := cubicTaps(inH, outH, alignCorners)
	cols := cubicTaps(inW, outW, alignCorners)

	inPlane := inH * inW
	outPlane := outH * outW
	parallel.ForBatch(n, c, func(b, ch int) {
		p := b*c + ch
		src := x.data[p*inPlane : (p+1)*inPlane]
		dst := out.data[p*outPlane : (p+1)*outPlane]
		for oy, ry := range rows {
			for ox, rx := range cols {
				var acc float64
				for j := 0; j < 4; j++ {
					row := src[ry.index[j]*inW:]
					var line float64
					for i := 0; i < 4; i++ {
						line += rx.weight[i] * float64(row[rx.index[i]])
					}
					acc += ry.weight[j] * line
				}
				dst[oy*outW+ox] = float32(acc)
			}
		}
	}, parallel.DefaultConfig())

	return out, nil
}

// cubicTap holds the four clamped source indices and weights for one output position.
type cubicTap struct {
	index  [4]int
	weight [4]float64
}

func cubicTaps(in, out int, alignCorners bool) []cubicTap {
	scale := sourceScale(in, out, alignCorners)
	taps := make([]cubicTap, out)
	for d := range taps {
		var pos float64
		if alignCorners {
			pos = scale * float64(d)
		} else {
			pos = scale*(float64(d)+0.5) - 0.5
		}
		base := math.Floor(pos)
		t := pos - base
		taps[d].weight = cubicCoefficients(t)
		for i := 0; i < 4; i++ {
			taps[d].index[i] = clampIndex(int(base)-1+i, in)
		}
	}
	return taps
}

func sourceScale(in, out int, alignCorners bool) float64 {
	if alignCorners {
		if out > 1 {
			return float64(in-1) / float64(out-1)
		}
		return 0
	}
	return float64(in) / float64(out)
}

// cubicCoefficients returns the kernel weights for the taps at offsets
// -1, 0, 1, 2 relative to the floor of the source coordinate.
func cubicCoefficients(t float64) [4]float64 {
	return [4]float64{
		cubicFar(t + 1),
		cubicNear(t),
		cubicNear(1 - t),
		cubicFar(2 - t),
	}
}

// cubicNear is the kernel for |x| <= 1.
func cubicNear(x float64) float64 {
	return ((cubicA+2)*x-(cubicA+3))*x*x + 1
}

// cubicFar is the kernel for 1 < |x| < 2.
func cubicFar(x float64) float64 {
	return ((cubicA*x-5*cubicA)*x+8*cubicA)*x - 4*cubicA
}

func clampIndex(i, size int) int {
	if i < 0 {
		return 0
	}
	if i >= size {
		return size - 1
	}
	return i
}
