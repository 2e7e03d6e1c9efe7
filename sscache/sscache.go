// Package sscache packs validated subsurface scattering profiles into the
// flattened constant layout bound by the shading pass. Field grouping,
// premultiplied constants and kernel interleaving are a positional contract
// with the consuming shader and must not be reordered.
package sscache

import (
	math "github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/subsurface"
)

// shapeParamFold premultiplies shape parameters by -log2(e)/3 so the shader
// evaluates the profile falloff with exp2 instead of exp.
const shapeParamFold = -math.Log2E / 3

// Vec4 is a 4-component float32 vector matching the shader's vec4 layout.
type Vec4 struct {
	X, Y, Z, W float32
}

// Array returns the vector components in shader declaration order.
func (v Vec4) Array() [4]float32 {
	return [4]float32{v.X, v.Y, v.Z, v.W}
}

// Cache is the render-ready projection of one [subsurface.Profile]. It has
// no identity of its own: it is a pure function of the profile state it was
// packed from and is rebuilt whenever that profile revalidates.
type Cache struct {
	// ThicknessRemap holds (min, max-min) millimeter thickness bounds.
	ThicknessRemap Vec4
	// WorldScale holds (meters per world unit, its reciprocal, 0, 0).
	WorldScale Vec4
	// ShapeParam holds the folded per channel shape parameters in xyz and
	// the maximum sampling radius in w.
	ShapeParam Vec4
	// TransmissionTint holds the tint premultiplied by 0.25 in xyz and
	// Fresnel reflectance at normal incidence in w.
	TransmissionTint Vec4
	// DisabledTransmissionTint is the zero-tint variant used by debug views,
	// keeping the Fresnel term in w.
	DisabledTransmissionTint Vec4
	// HalfRcpWeightedVariances is carried through for layout compatibility.
	HalfRcpWeightedVariances Vec4
	// FilterKernel interleaves both kernels: xy is the near-field
	// (radius, 1/pdf) pair, zw the far-field pair for the first
	// [subsurface.FarFieldSamples] entries and zero past that.
	FilterKernel [subsurface.NearFieldSamples]Vec4
}

// Pack projects a validated profile into its shader constant layout.
// Two profiles with identical tunable fields pack to identical caches.
func Pack(p *subsurface.Profile) (c Cache) {
	c.ThicknessRemap = Vec4{X: p.ThicknessRemap.X, Y: p.ThicknessRemap.Y - p.ThicknessRemap.X}
	c.WorldScale = Vec4{X: p.WorldScale, Y: 1 / p.WorldScale}
	shape := p.ShapeParam()
	c.ShapeParam = Vec4{
		X: shapeParamFold * shape.X,
		Y: shapeParamFold * shape.Y,
		Z: shapeParamFold * shape.Z,
		W: p.MaxRadius(),
	}
	f0 := fresnel0(p.IOR)
	tint := ms3.Scale(0.25, p.TransmissionTint)
	c.TransmissionTint = Vec4{X: tint.X, Y: tint.Y, Z: tint.Z, W: f0}
	c.DisabledTransmissionTint = Vec4{W: f0}
	hv := p.HalfRcpWeightedVariances()
	c.HalfRcpWeightedVariances = Vec4{X: hv[0], Y: hv[1], Z: hv[2], W: hv[3]}
	near := p.FilterKernelNearField()
	far := p.FilterKernelFarField()
	for i := range c.FilterKernel {
		c.FilterKernel[i].X = near[i].X
		c.FilterKernel[i].Y = near[i].Y
		if i < len(far) {
			c.FilterKernel[i].Z = far[i].X
			c.FilterKernel[i].W = far[i].Y
		}
	}
	return c
}

// Neutral returns the no-op cache bound to the reserved neutral slot: unit
// world scale, zero shape parameters and kernel samples of zero radius with
// unit weight, so shading with it leaves irradiance untouched.
func Neutral() (c Cache) {
	c.WorldScale = Vec4{X: 1, Y: 1}
	for i := range c.FilterKernel {
		c.FilterKernel[i] = Vec4{X: 0, Y: 1, Z: 0, W: 1}
	}
	return c
}

// fresnel0 is reflectance at normal incidence for an air interface,
// ((n-1)/(n+1))^2.
func fresnel0(ior float32) float32 {
	f := (ior - 1) / (ior + 1)
	return f * f
}
