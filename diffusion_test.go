package subsurface_test

import (
	"errors"
	"testing"

	math "github.com/chewxy/math32"
	"github.com/soypat/subsurface"
)

// Shape parameters spanning wide to narrow falloffs.
var testShapes = []float32{0.25, 0.5, 1, 2, 4, 16}

func TestCDFMonotonic(t *testing.T) {
	for _, s := range testShapes {
		prev := float32(0)
		for i := 1; i <= 400; i++ {
			r := float32(i) * 0.1 / s
			c := subsurface.CDF(r, s)
			if c < 0 || c > 1 {
				t.Errorf("s=%g r=%g: cdf=%g outside [0,1]", s, r, c)
			}
			if c < prev {
				t.Errorf("s=%g r=%g: cdf decreased from %g to %g", s, r, prev, c)
			} else if c < 0.99 && c == prev {
				t.Errorf("s=%g r=%g: cdf stalled at %g before tail", s, r, c)
			}
			prev = c
		}
		if prev < 0.999 {
			t.Errorf("s=%g: cdf only reached %g over test range", s, prev)
		}
	}
}

func TestSampleRadiusInvertsCDF(t *testing.T) {
	const tol = 1e-4
	for _, s := range testShapes {
		for p := float32(0.005); p < 1; p += 0.015 {
			r, err := subsurface.SampleRadius(p, s)
			if err != nil {
				t.Fatalf("s=%g p=%g: %s", s, p, err)
			}
			if r <= 0 || math.IsInf(r, 0) || math.IsNaN(r) {
				t.Fatalf("s=%g p=%g: bad radius %g", s, p, r)
			}
			got := subsurface.CDF(r, s)
			if math.Abs(got-p) > tol {
				t.Errorf("s=%g p=%g: cdf(r)=%g, error %g exceeds %g", s, p, got, math.Abs(got-p), float32(tol))
			}
		}
	}
}

func TestSampleRadiusDegenerate(t *testing.T) {
	r, err := subsurface.SampleRadius(0.5, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsInf(r, 1) {
		t.Errorf("s=0: want +Inf radius, got %g", r)
	}
	r, err = subsurface.SampleRadius(0.5, math.Inf(1))
	if err != nil {
		t.Fatal(err)
	}
	if r != 0 {
		t.Errorf("s=+Inf: want zero radius, got %g", r)
	}
}

func TestSampleRadiusDeterministic(t *testing.T) {
	for _, s := range testShapes {
		for p := float32(0.1); p < 1; p += 0.2 {
			r1, err1 := subsurface.SampleRadius(p, s)
			r2, err2 := subsurface.SampleRadius(p, s)
			if err1 != nil || err2 != nil {
				t.Fatal(err1, err2)
			}
			if r1 != r2 {
				t.Errorf("s=%g p=%g: solver not deterministic: %g vs %g", s, p, r1, r2)
			}
		}
	}
}

func TestPDFMatchesReflectance(t *testing.T) {
	for _, s := range testShapes {
		for i := 1; i < 50; i++ {
			r := float32(i) * 0.2 / s
			want := r * subsurface.Reflectance(r, s)
			if got := subsurface.PDF(r, s); got != want {
				t.Errorf("s=%g r=%g: pdf=%g want r·R=%g", s, r, got, want)
			}
		}
	}
}

func TestEvaluateReflectance(t *testing.T) {
	const s = 2.0
	radii := make([]float32, 64)
	for i := range radii {
		radii[i] = (float32(i) + 0.5) * 0.05
	}
	dst := make([]float32, len(radii))
	err := subsurface.EvaluateReflectance(radii, dst, s)
	if err != nil {
		t.Fatal(err)
	}
	for i, r := range radii {
		if want := subsurface.Reflectance(r, s); dst[i] != want {
			t.Errorf("radius %g: got %g want %g", r, dst[i], want)
		}
	}
	err = subsurface.EvaluateReflectance(radii, dst[:1], s)
	if err == nil {
		t.Error("expected length mismatch error")
	}
	err = subsurface.EvaluateReflectance(nil, nil, s)
	if err == nil {
		t.Error("expected empty buffer error")
	}
}

func TestErrDidNotConvergeIsSentinel(t *testing.T) {
	// The sentinel must be matchable by callers inspecting kernel errors.
	wrapped := errors.Join(subsurface.ErrDidNotConverge)
	if !errors.Is(wrapped, subsurface.ErrDidNotConverge) {
		t.Error("sentinel lost through wrapping")
	}
}
