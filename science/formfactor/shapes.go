/*
Copyright © 2026 the GISAS authors.
This file is part of GISAS.

GISAS is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

GISAS is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with GISAS.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package formfactor calculates particle form factors: Fourier transforms
// of particle shapes, and the decorators that turn them into scattering
// amplitudes (material contrast, position and DWBA).
package formfactor

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/spatialmodel/gisas/geometry"
)

// Shape is the form factor of a homogeneous particle with unit
// scattering length density. The origin of each shape is the center of
// its bottom face, so that the particle occupies 0 ≤ z ≤ TopZ().
type Shape interface {
	// Evaluate returns the Fourier transform of the shape at q.
	Evaluate(q geometry.C3) complex128

	// Volume returns the particle volume [nm³].
	Volume() float64

	// RadialExtension returns the characteristic in-plane radius [nm].
	RadialExtension() float64

	// TopZ returns the height of the particle top above its bottom [nm].
	TopZ() float64

	// VolumeBetween returns the part of the particle volume lying
	// between heights zlo and zhi above the particle bottom.
	VolumeBetween(zlo, zhi float64) float64
}

// smallArgument is the magnitude below which series expansions replace
// the closed-form expressions.
const smallArgument = 1e-3

// sinc returns sin(z)/z.
func sinc(z complex128) complex128 {
	if cmplx.Abs(z) < smallArgument {
		return 1 - z*z/6
	}
	return cmplx.Sin(z) / z
}

// j1c returns J1(x)/x.
func j1c(x float64) float64 {
	if math.Abs(x) < smallArgument {
		return 0.5 - x*x/16
	}
	return math.J1(x) / x
}

// sphereShape returns 3(sin x - x cos x)/x³, the normalized transform of
// a ball.
func sphereShape(x complex128) complex128 {
	if cmplx.Abs(x) < smallArgument {
		return 1 - x*x/10
	}
	return 3 * (cmplx.Sin(x) - x*cmplx.Cos(x)) / (x * x * x)
}

// overlap returns the length of [a, b] ∩ [lo, hi].
func overlap(a, b, lo, hi float64) float64 {
	lo = math.Max(lo, a)
	hi = math.Min(hi, b)
	if hi <= lo {
		return 0
	}
	return hi - lo
}

// capVolume returns the volume of a ball of radius r below height h
// measured from its lowest point.
func capVolume(r, h float64) float64 {
	h = math.Max(0, math.Min(h, 2*r))
	return math.Pi * h * h * (3*r - h) / 3
}

// FullSphere is a ball of radius Radius.
type FullSphere struct {
	Radius float64
}

// Evaluate implements Shape.
func (s FullSphere) Evaluate(q geometry.C3) complex128 {
	r := complex(s.Radius, 0)
	return complex(s.Volume(), 0) * sphereShape(q.Mag()*r) * cmplx.Exp(1i*q.Z*r)
}

// Volume implements Shape.
func (s FullSphere) Volume() float64 { return 4 * math.Pi * math.Pow(s.Radius, 3) / 3 }

// RadialExtension implements Shape.
func (s FullSphere) RadialExtension() float64 { return s.Radius }

// TopZ implements Shape.
func (s FullSphere) TopZ() float64 { return 2 * s.Radius }

// VolumeBetween implements Shape.
func (s FullSphere) VolumeBetween(zlo, zhi float64) float64 {
	if zhi <= zlo {
		return 0
	}
	return capVolume(s.Radius, zhi) - capVolume(s.Radius, zlo)
}

// Cylinder is an upright circular cylinder.
type Cylinder struct {
	Radius, Height float64
}

// Evaluate implements Shape.
func (c Cylinder) Evaluate(q geometry.C3) complex128 {
	qpar := real(q.MagXY())
	h := complex(c.Height, 0)
	return complex(2*c.Volume()*j1c(qpar*c.Radius), 0) * sinc(q.Z*h/2) * cmplx.Exp(1i*q.Z*h/2)
}

// Volume implements Shape.
func (c Cylinder) Volume() float64 { return math.Pi * c.Radius * c.Radius * c.Height }

// RadialExtension implements Shape.
func (c Cylinder) RadialExtension() float64 { return c.Radius }

// TopZ implements Shape.
func (c Cylinder) TopZ() float64 { return c.Height }

// VolumeBetween implements Shape.
func (c Cylinder) VolumeBetween(zlo, zhi float64) float64 {
	return math.Pi * c.Radius * c.Radius * overlap(0, c.Height, zlo, zhi)
}

// Box is a rectangular cuboid with edges along the coordinate axes.
type Box struct {
	Length, Width, Height float64
}

// Evaluate implements Shape.
func (b Box) Evaluate(q geometry.C3) complex128 {
	h := complex(b.Height, 0)
	return complex(b.Volume(), 0) *
		sinc(q.X*complex(b.Length/2, 0)) *
		sinc(q.Y*complex(b.Width/2, 0)) *
		sinc(q.Z*h/2) * cmplx.Exp(1i*q.Z*h/2)
}

// Volume implements Shape.
func (b Box) Volume() float64 { return b.Length * b.Width * b.Height }

// RadialExtension implements Shape.
func (b Box) RadialExtension() float64 { return b.Length / 2 }

// TopZ implements Shape.
func (b Box) TopZ() float64 { return b.Height }

// VolumeBetween implements Shape.
func (b Box) VolumeBetween(zlo, zhi float64) float64 {
	return b.Length * b.Width * overlap(0, b.Height, zlo, zhi)
}

// FullSpheroid is an ellipsoid of revolution with horizontal radius
// Radius and vertical extent Height. It is a ball stretched along z by
// Height/(2 Radius), which gives its transform in closed form.
type FullSpheroid struct {
	Radius, Height float64
}

func (s FullSpheroid) stretch() float64 { return s.Height / (2 * s.Radius) }

// Evaluate implements Shape.
func (s FullSpheroid) Evaluate(q geometry.C3) complex128 {
	c := complex(s.stretch(), 0)
	qs := geometry.C3{X: q.X, Y: q.Y, Z: q.Z * c}
	r := complex(s.Radius, 0)
	return complex(s.Volume(), 0) * sphereShape(qs.Mag()*r) * cmplx.Exp(1i*q.Z*complex(s.Height/2, 0))
}

// Volume implements Shape.
func (s FullSpheroid) Volume() float64 { return 2 * math.Pi * s.Radius * s.Radius * s.Height / 3 }

// RadialExtension implements Shape.
func (s FullSpheroid) RadialExtension() float64 { return s.Radius }

// TopZ implements Shape.
func (s FullSpheroid) TopZ() float64 { return s.Height }

// VolumeBetween implements Shape.
func (s FullSpheroid) VolumeBetween(zlo, zhi float64) float64 {
	if zhi <= zlo {
		return 0
	}
	c := s.stretch()
	return c * (capVolume(s.Radius, zhi/c) - capVolume(s.Radius, zlo/c))
}

// SphereGaussianRadius is a soft sphere whose radius is normally
// distributed with mean Mean and standard deviation Sigma. It is
// represented by a ball with the same mean cubed radius, damped by a
// Debye-Waller-like factor.
type SphereGaussianRadius struct {
	Mean, Sigma float64
}

func (s SphereGaussianRadius) sphere() FullSphere {
	return FullSphere{Radius: math.Cbrt(s.Mean * (s.Mean*s.Mean + 3*s.Sigma*s.Sigma))}
}

// Evaluate implements Shape.
func (s SphereGaussianRadius) Evaluate(q geometry.C3) complex128 {
	q2 := sqAbs(q.X) + sqAbs(q.Y) + sqAbs(q.Z)
	dw := math.Exp(-q2 * s.Sigma * s.Sigma / 2)
	return complex(dw, 0) * s.sphere().Evaluate(q)
}

// Volume implements Shape.
func (s SphereGaussianRadius) Volume() float64 { return s.sphere().Volume() }

// RadialExtension implements Shape.
func (s SphereGaussianRadius) RadialExtension() float64 { return s.Mean }

// TopZ implements Shape.
func (s SphereGaussianRadius) TopZ() float64 { return s.sphere().TopZ() }

// VolumeBetween implements Shape.
func (s SphereGaussianRadius) VolumeBetween(zlo, zhi float64) float64 {
	return s.sphere().VolumeBetween(zlo, zhi)
}

// Dot is a point scatterer with unit transform.
type Dot struct{}

// Evaluate implements Shape.
func (Dot) Evaluate(geometry.C3) complex128 { return 1 }

// Volume implements Shape.
func (Dot) Volume() float64 { return 0 }

// RadialExtension implements Shape.
func (Dot) RadialExtension() float64 { return 0 }

// TopZ implements Shape.
func (Dot) TopZ() float64 { return 0 }

// VolumeBetween implements Shape.
func (Dot) VolumeBetween(float64, float64) float64 { return 0 }

func sqAbs(z complex128) float64 { return real(z)*real(z) + imag(z)*imag(z) }

// CheckShape returns an error if the dimensions of s are not
// physically meaningful.
func CheckShape(s Shape) error {
	var dims []float64
	switch v := s.(type) {
	case FullSphere:
		dims = []float64{v.Radius}
	case Cylinder:
		dims = []float64{v.Radius, v.Height}
	case Box:
		dims = []float64{v.Length, v.Width, v.Height}
	case FullSpheroid:
		dims = []float64{v.Radius, v.Height}
	case SphereGaussianRadius:
		if v.Sigma < 0 {
			return fmt.Errorf("formfactor: sigma=%g but should be >= 0", v.Sigma)
		}
		dims = []float64{v.Mean}
	}
	for _, d := range dims {
		if !(d > 0) || math.IsInf(d, 0) {
			return fmt.Errorf("formfactor: %T dimension %g should be >0", s, d)
		}
	}
	return nil
}
