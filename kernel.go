package subsurface

import (
	"fmt"

	math "github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
)

// generateKernel fills dst with len(dst) importance-sampled (radius, 1/pdf)
// pairs for sampling shape s. Sample positions are stratified at the center
// of each equal-probability interval, p=(i+0.5)/n, so generation is fully
// deterministic. Radii come out sorted ascending since the CDF inverse is
// monotonic in p.
//
// Degenerate shapes (s=0 or s=+Inf) produce zero-radius, zero-weight entries
// so the downstream blur degenerates to a no-op instead of faulting.
func generateKernel(dst []ms2.Vec, s float32) error {
	n := len(dst)
	var firstErr error
	for i := range dst {
		p := (float32(i) + 0.5) / float32(n)
		r, err := SampleRadius(p, s)
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("sample %d of %d: %w", i, n, err)
		}
		if r == 0 || math.IsInf(r, 1) {
			dst[i] = ms2.Vec{}
			continue
		}
		dst[i] = ms2.Vec{X: r, Y: 1 / PDF(r, s)}
	}
	return firstErr
}
