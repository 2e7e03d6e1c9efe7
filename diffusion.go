package subsurface

import (
	"errors"

	math "github.com/chewxy/math32"
)

// ErrDidNotConverge is reported by [SampleRadius] when the Halley iteration
// exhausts its step budget without reaching a precision plateau. The radius
// returned alongside it is the best approximation found.
var ErrDidNotConverge = errors.New("inverse CDF iteration did not converge")

var (
	errEmptyBuffers         = errors.New("empty buffers")
	errMismatchBufferLength = errors.New("radius and reflectance buffer length mismatch")
)

// maxHalleyIters bounds the root solver against pathological parameter
// combinations. Well conditioned inputs plateau within 3 to 5 steps.
const maxHalleyIters = 16

// Reflectance evaluates the normalized diffusion reflectance profile
//
//	R(r,s) = s·(e^(-rs) + e^(-rs/3)) / (8πr)
//
// at radius r>0 for shape parameter s, the inverse scattering distance.
// The sum of two exponentials approximates the dipole diffusion solution
// while integrating in closed form.
func Reflectance(r, s float32) float32 {
	return s * (math.Exp(-r*s) + math.Exp(-r*s/3)) / (8 * math.Pi * r)
}

// PDF is the probability density of sampling radius r under the profile,
// r·R(r,s), where the extra factor of r is the Jacobian of polar integration.
func PDF(r, s float32) float32 {
	return r * Reflectance(r, s)
}

// CDF is the cumulative distribution of the sampled radius. It increases
// monotonically from 0 to 1 as r grows.
func CDF(r, s float32) float32 {
	return 1 - 0.25*math.Exp(-r*s) - 0.75*math.Exp(-r*s/3)
}

func cdfDeriv1(r, s float32) float32 {
	return 0.25 * s * (math.Exp(-r*s) + math.Exp(-r*s/3))
}

func cdfDeriv2(r, s float32) float32 {
	return -1.0 / 12.0 * s * s * (3*math.Exp(-r*s) + math.Exp(-r*s/3))
}

// SampleRadius inverts the CDF: it finds the radius r at which the profile
// accumulates probability p, for p in (0,1) and shape parameter s ≥ 0. The
// CDF has no closed-form inverse so the root of cdf(r)-p is found with
// Halley's method, seeded by a heuristic tuned to this CDF's shape.
//
// Degenerate shapes are resolved immediately: s=0 spreads probability to
// infinity so r=+Inf, while an infinite s concentrates it all at r=0.
// A sample at either extreme carries no blur contribution.
func SampleRadius(p, s float32) (float32, error) {
	if s == 0 {
		return math.Inf(1), nil
	} else if math.IsInf(s, 1) {
		return 0, nil
	}
	r := (math.Pow(10, p) - 1) / s
	// Halley's method, second order: each step uses the CDF value and its
	// first two derivatives. Iterate while precision keeps improving, i.e.
	// while each step is strictly shorter than the one before it.
	prevStep := float32(math.MaxFloat32)
	for i := 0; i < maxHalleyIters; i++ {
		f := CDF(r, s) - p
		d1 := cdfDeriv1(r, s)
		d2 := cdfDeriv2(r, s)
		dr := f / (d1 * (1 - f*d2/(2*d1*d1)))
		if math.IsNaN(dr) || math.IsInf(dr, 0) {
			return r, ErrDidNotConverge
		}
		r -= dr
		step := math.Abs(dr)
		if step >= prevStep {
			return r, nil
		}
		prevStep = step
	}
	return r, ErrDidNotConverge
}

// EvaluateReflectance evaluates [Reflectance] at shape parameter s over all
// radii, storing results in dst. radii and dst must be of same length.
func EvaluateReflectance(radii []float32, dst []float32, s float32) error {
	if len(radii) == 0 {
		return errEmptyBuffers
	} else if len(radii) != len(dst) {
		return errMismatchBufferLength
	}
	for i, r := range radii {
		dst[i] = Reflectance(r, s)
	}
	return nil
}
