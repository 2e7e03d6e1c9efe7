// Package subsurface precomputes the radial diffusion profile and
// importance-sampled blur kernels consumed by real-time subsurface
// scattering shaders for translucent materials such as skin, wax and marble.
package subsurface

import (
	"errors"
	"fmt"

	math "github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glgl/math/ms1"
)

// Kernel sample counts. The near-field kernel is denser for close-up shading,
// the far-field kernel is the cheaper variant for regular viewing distances.
// Downstream shaders index kernel buffers by these fixed counts.
const (
	NearFieldSamples = 55
	FarFieldSamples  = 21
)

// Tunable field clamp limits applied by [Profile.Validate].
const (
	minWorldScale = 0.001
	minIOR        = 1.0
	maxIOR        = 2.0
)

// TexturingMode selects when surface albedo is applied relative to the
// scattering blur. Consumed by the shading pass, not by kernel generation.
type TexturingMode int32

const (
	// TexturingPreAndPostScatter splits albedo evenly before and after the blur.
	TexturingPreAndPostScatter TexturingMode = iota
	// TexturingPostScatter applies albedo only after the blur.
	TexturingPostScatter
)

func (m TexturingMode) String() string {
	switch m {
	case TexturingPreAndPostScatter:
		return "preAndPostScatter"
	case TexturingPostScatter:
		return "postScatter"
	}
	return "invalid"
}

// TransmissionMode selects how light transmitted through geometry is modelled.
type TransmissionMode int32

const (
	TransmissionRegular TransmissionMode = iota
	// TransmissionThinObject models translucent geometry too thin to
	// meaningfully attenuate light along the interior path.
	TransmissionThinObject
)

func (m TransmissionMode) String() string {
	switch m {
	case TransmissionRegular:
		return "regular"
	case TransmissionThinObject:
		return "thinObject"
	}
	return "invalid"
}

// Profile is the user-tunable physical description of a translucent
// material's light-scattering behavior along with its derived sampling state.
//
// Mutating any tunable field invalidates all derived state. Callers must
// treat field mutation followed by [Profile.Validate] as an atomic unit;
// reading derived accessors between the two returns stale values.
type Profile struct {
	// ScatteringDistance is the per color channel distance at which the
	// diffuse reflectance profile decays to near zero. A zero component is
	// the valid "no scattering on this channel" configuration.
	ScatteringDistance ms3.Vec
	// TransmissionTint colors light transmitted through thin geometry.
	TransmissionTint ms3.Vec
	TexturingMode    TexturingMode
	TransmissionMode TransmissionMode
	// ThicknessRemap bounds object thickness in millimeters. X=min, Y=max.
	ThicknessRemap ms2.Vec
	// WorldScale is the size of a world unit in meters.
	WorldScale float32
	// IOR is the index of refraction, clamped to [1, 2] on validation.
	IOR float32
	// Hash is an opaque externally assigned key used for shader-side lookup.
	// It is never generated nor checked for uniqueness here.
	Hash uint32

	shapeParam               ms3.Vec
	maxRadius                float32
	kernelNear               [NearFieldSamples]ms2.Vec
	kernelFar                [FarFieldSamples]ms2.Vec
	halfRcpWeightedVariances [4]float32
}

// NewProfile returns a profile with neutral defaults, already validated:
// gray scattering distance, white transmission tint, thickness range of
// 0 to 5 millimeters and the refractive index of skin.
func NewProfile() *Profile {
	p := &Profile{
		ScatteringDistance: ms3.Vec{X: 0.5, Y: 0.5, Z: 0.5},
		TransmissionTint:   ms3.Vec{X: 1, Y: 1, Z: 1},
		TexturingMode:      TexturingPreAndPostScatter,
		TransmissionMode:   TransmissionRegular,
		ThicknessRemap:     ms2.Vec{X: 0, Y: 5},
		WorldScale:         1,
		IOR:                1.4,
	}
	p.Validate()
	return p
}

// Validate clamps tunable fields into their physical ranges and regenerates
// all derived state: shape parameters, both filter kernels and the maximum
// sampling radius. Out-of-range input is clamped, never rejected. The only
// error condition is the inverse CDF solver failing to converge, which for
// physically meaningful inputs does not happen.
func (p *Profile) Validate() error {
	p.ThicknessRemap.Y = math.Max(p.ThicknessRemap.Y, 0)
	p.ThicknessRemap.X = ms1.Clamp(p.ThicknessRemap.X, 0, p.ThicknessRemap.Y)
	p.WorldScale = math.Max(p.WorldScale, minWorldScale)
	p.IOR = ms1.Clamp(p.IOR, minIOR, maxIOR)

	// Componentwise 1/distance. Division by zero yields an infinite shape
	// parameter, the valid no-scattering configuration handled during sampling.
	p.shapeParam = ms3.DivElem(ms3.Vec{X: 1, Y: 1, Z: 1}, p.ScatteringDistance)

	// Sample placement is driven by the channel with the widest falloff
	// (smallest shape parameter) so that all channels remain well sampled.
	s := math.Min(p.shapeParam.X, math.Min(p.shapeParam.Y, p.shapeParam.Z))
	errNear := generateKernel(p.kernelNear[:], s)
	errFar := generateKernel(p.kernelFar[:], s)
	p.maxRadius = p.kernelFar[FarFieldSamples-1].X
	if errNear != nil || errFar != nil {
		return errors.Join(
			wrapKernelErr("near field", errNear),
			wrapKernelErr("far field", errFar),
		)
	}
	return nil
}

func wrapKernelErr(field string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s kernel: %w", field, err)
}

// ShapeParam returns the per channel inverse scattering distance derived by
// the last call to [Profile.Validate]. Channels with zero scattering
// distance hold +Inf.
func (p *Profile) ShapeParam() ms3.Vec { return p.shapeParam }

// MaxRadius returns the radius in millimeters of the largest far-field
// kernel sample. It bounds the blur footprint of the shading pass.
func (p *Profile) MaxRadius() float32 { return p.maxRadius }

// FilterKernelNearField returns the [NearFieldSamples] importance-sampled
// (radius, 1/pdf) pairs. The returned slice aliases profile state and must
// not be mutated.
func (p *Profile) FilterKernelNearField() []ms2.Vec { return p.kernelNear[:] }

// FilterKernelFarField returns the [FarFieldSamples] importance-sampled
// (radius, 1/pdf) pairs. The returned slice aliases profile state and must
// not be mutated.
func (p *Profile) FilterKernelFarField() []ms2.Vec { return p.kernelFar[:] }

// HalfRcpWeightedVariances is retained for shader constant buffer layout
// compatibility with older separable-variance filtering.
func (p *Profile) HalfRcpWeightedVariances() [4]float32 {
	return p.halfRcpWeightedVariances
}
