// Package ssaux provides auxiliary helpers for inspecting subsurface
// scattering profiles, mainly preview image rendering of the kind material
// editors display next to the tunable parameters.
package ssaux

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"time"

	math "github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/glgl/math/ms1"
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/subsurface"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// PreviewConfig configures profile preview rendering. The zero value renders
// a 256x256 swatch spanning the profile's maximum sampling radius.
type PreviewConfig struct {
	// Size is the width and height of the square preview in pixels.
	Size int
	// EdgeRadius is the radius in millimeters mapped to the image edge.
	// When zero the profile's maximum sampling radius is used.
	EdgeRadius float32
	// ShowSamples overlays rings at the far-field kernel sample radii.
	ShowSamples bool
	// Labels draws the edge radius in the bottom left corner.
	Labels bool
	// Gamma is the display gamma applied to channel intensities. Zero
	// selects 2.2.
	Gamma float32
	// Silent suppresses progress logging.
	Silent bool
}

// ProfileImage renders the radial falloff of a validated profile as a
// centered swatch: each pixel's color channel holds the importance-weighted
// reflectance of that channel at the pixel's radius, normalized so the
// center is full brightness. Channels with zero scattering distance stay
// dark everywhere but the center, matching their no-blur semantics.
func ProfileImage(p *subsurface.Profile, cfg PreviewConfig) (*image.RGBA, error) {
	if p == nil {
		return nil, errors.New("nil profile")
	}
	if cfg.Size <= 0 {
		cfg.Size = 256
	}
	if cfg.Gamma <= 0 {
		cfg.Gamma = 2.2
	}
	edge := cfg.EdgeRadius
	if edge <= 0 {
		edge = p.MaxRadius()
	}
	if edge <= 0 {
		edge = 1 // Degenerate profile with no scattering on any channel.
	}
	shape := p.ShapeParam()
	far := p.FilterKernelFarField()
	invGamma := 1 / cfg.Gamma
	img := image.NewRGBA(image.Rect(0, 0, cfg.Size, cfg.Size))
	halfSize := float32(cfg.Size) / 2
	mmPerPx := edge / halfSize
	for py := 0; py < cfg.Size; py++ {
		for px := 0; px < cfg.Size; px++ {
			dx := (float32(px) + 0.5 - halfSize) * mmPerPx
			dy := (float32(py) + 0.5 - halfSize) * mmPerPx
			r := math.Hypot(dx, dy)
			c := ms3.Vec{
				X: falloff(r, shape.X),
				Y: falloff(r, shape.Y),
				Z: falloff(r, shape.Z),
			}
			if cfg.ShowSamples {
				ring := sampleRingWeight(r, far, mmPerPx)
				c = ms3.InterpElem(c, ms3.Vec{X: 1, Y: 1, Z: 1}, ms3.Vec{X: ring, Y: ring, Z: ring})
			}
			img.SetRGBA(px, py, color.RGBA{
				R: uint8(255 * math.Pow(ms1.Clamp(c.X, 0, 1), invGamma)),
				G: uint8(255 * math.Pow(ms1.Clamp(c.Y, 0, 1), invGamma)),
				B: uint8(255 * math.Pow(ms1.Clamp(c.Z, 0, 1), invGamma)),
				A: 255,
			})
		}
	}
	if cfg.Labels {
		drawLabel(img, fmt.Sprintf("r=%.2fmm", edge))
	}
	return img, nil
}

// RenderProfilePNGFile renders a profile preview and saves it to a PNG file
// with said filename.
func RenderProfilePNGFile(filename string, p *subsurface.Profile, cfg PreviewConfig) error {
	log := func(args ...any) {
		if !cfg.Silent {
			fmt.Println(args...)
		}
	}
	watch := stopwatch()
	img, err := ProfileImage(p, cfg)
	if err != nil {
		return err
	}
	fp, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer fp.Close()
	err = png.Encode(fp, img)
	if err != nil {
		return fmt.Errorf("encoding preview PNG: %s", err)
	}
	log("wrote", filename, "in", watch())
	return nil
}

// ReflectanceCurve evaluates the profile's radial reflectance at n evenly
// spaced radii out to the maximum sampling radius, returning the radii and
// reflectance values. Sampling follows the widest-falloff channel, the same
// one that drives kernel placement.
func ReflectanceCurve(p *subsurface.Profile, n int) (radii, values []float32, err error) {
	if p == nil {
		return nil, nil, errors.New("nil profile")
	} else if n < 2 {
		return nil, nil, errors.New("need at least 2 curve samples")
	}
	shape := p.ShapeParam()
	s := math.Min(shape.X, math.Min(shape.Y, shape.Z))
	if math.IsInf(s, 1) {
		return nil, nil, errors.New("profile scatters on no channel")
	}
	maxR := p.MaxRadius()
	if maxR <= 0 {
		maxR = 1
	}
	radii = make([]float32, n)
	values = make([]float32, n)
	for i := range radii {
		// Start half a step in: the profile diverges at r=0.
		radii[i] = maxR * (float32(i) + 0.5) / float32(n)
	}
	err = subsurface.EvaluateReflectance(radii, values, s)
	if err != nil {
		return nil, nil, err
	}
	return radii, values, nil
}

// falloff is the importance-weighted profile r·R(r,s) normalized to its
// value at r=0, i.e. (e^(-rs)+e^(-rs/3))/2. Well defined for the degenerate
// shapes: 1 at the center, 0 elsewhere for infinite s.
func falloff(r, s float32) float32 {
	if r == 0 {
		return 1
	} else if math.IsInf(s, 1) {
		return 0
	}
	return 0.5 * (math.Exp(-r*s) + math.Exp(-r*s/3))
}

// sampleRingWeight lightens pixels within half a pixel of a far-field sample
// radius, fading with distance to the ring.
func sampleRingWeight(r float32, far []ms2.Vec, mmPerPx float32) float32 {
	const ringStrength = 0.35
	halfPx := 0.5 * mmPerPx
	for _, kv := range far {
		d := math.Abs(r - kv.X)
		if d < halfPx {
			return ringStrength * (1 - ms1.SmoothStep(0, halfPx, d))
		}
	}
	return 0
}

func drawLabel(img *image.RGBA, text string) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: basicfont.Face7x13,
		Dot:  fixed.P(4, img.Bounds().Dy()-4),
	}
	d.DrawString(text)
}

func stopwatch() func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		return time.Since(start)
	}
}
