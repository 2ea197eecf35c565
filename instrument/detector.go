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

package instrument

import (
	"math"

	"github.com/spatialmodel/gisas"
	"gonum.org/v1/gonum/floats"
)

// Axis is a detector axis.
type Axis struct {
	Name string
	N    int

	// Min and Max are the outer bin edges, or the first and last
	// points if Points is set.
	Min, Max float64

	// Points marks an axis of sampling points rather than bins.
	Points bool
}

// Bin returns the edges of bin i.
func (a Axis) Bin(i int) (lo, hi float64) {
	if a.Points {
		c := a.Center(i)
		return c, c
	}
	w := (a.Max - a.Min) / float64(a.N)
	return a.Min + float64(i)*w, a.Min + float64(i+1)*w
}

// Center returns the center of bin i.
func (a Axis) Center(i int) float64 {
	if a.Points {
		if a.N == 1 {
			return a.Min
		}
		return a.Min + float64(i)*(a.Max-a.Min)/float64(a.N-1)
	}
	lo, hi := a.Bin(i)
	return (lo + hi) / 2
}

// Centers returns the centers of all bins.
func (a Axis) Centers() []float64 {
	if a.Points {
		if a.N == 1 {
			return []float64{a.Min}
		}
		return floats.Span(make([]float64, a.N), a.Min, a.Max)
	}
	c := make([]float64, a.N)
	for i := range c {
		c[i] = a.Center(i)
	}
	return c
}

// Contains reports whether x lies in the axis range.
func (a Axis) Contains(x float64) bool { return x >= a.Min && x < a.Max }

// Index returns the bin that contains x.
func (a Axis) Index(x float64) int {
	i := int(math.Floor((x - a.Min) / (a.Max - a.Min) * float64(a.N)))
	if i == a.N {
		i--
	}
	return i
}

func (a Axis) validate() error {
	if a.N < 1 {
		return gisas.DomainErrorf("axis %s has %d bins", a.Name, a.N)
	}
	if !(a.Max > a.Min) && !(a.Points && a.N == 1 && a.Max == a.Min) {
		return gisas.DomainErrorf("axis %s range [%g, %g] is empty", a.Name, a.Min, a.Max)
	}
	return nil
}

// Mask is a region of the detector, in (φ, α) coordinates, whose
// channels are not simulated.
type Mask interface {
	Contains(phi, alpha float64) bool
}

// Rectangle is a rectangular mask.
type Rectangle struct {
	PhiMin, PhiMax, AlphaMin, AlphaMax float64
}

// Contains implements Mask.
func (r Rectangle) Contains(phi, alpha float64) bool {
	return phi >= r.PhiMin && phi <= r.PhiMax && alpha >= r.AlphaMin && alpha <= r.AlphaMax
}

// Ellipse is an elliptical mask.
type Ellipse struct {
	PhiCenter, AlphaCenter float64
	PhiRadius, AlphaRadius float64
}

// Contains implements Mask.
func (e Ellipse) Contains(phi, alpha float64) bool {
	if e.PhiRadius <= 0 || e.AlphaRadius <= 0 {
		return false
	}
	x := (phi - e.PhiCenter) / e.PhiRadius
	y := (alpha - e.AlphaCenter) / e.AlphaRadius
	return x*x+y*y <= 1
}

// SphericalDetector is an area detector whose pixels are bins in the
// azimuthal angle φ and the exit angle α. Channels are numbered with α
// varying fastest.
type SphericalDetector struct {
	Phi, Alpha Axis
	Masks      []Mask
	Analyzer   Analyzer
}

// NewSphericalDetector returns a detector with nPhi×nAlpha pixels
// covering the given angular ranges [rad].
func NewSphericalDetector(nPhi int, phiMin, phiMax float64, nAlpha int, alphaMin, alphaMax float64) *SphericalDetector {
	return &SphericalDetector{
		Phi:   Axis{Name: "phi_f", N: nPhi, Min: phiMin, Max: phiMax},
		Alpha: Axis{Name: "alpha_f", N: nAlpha, Min: alphaMin, Max: alphaMax},
	}
}

// AddMask masks the channels whose centers lie in m.
func (d *SphericalDetector) AddMask(m Mask) { d.Masks = append(d.Masks, m) }

// Dimension returns 2.
func (d *SphericalDetector) Dimension() int { return 2 }

// Size returns the number of channels.
func (d *SphericalDetector) Size() int { return d.Phi.N * d.Alpha.N }

// Axes returns the φ and α axes.
func (d *SphericalDetector) Axes() []Axis { return []Axis{d.Phi, d.Alpha} }

// Validate checks the detector geometry.
func (d *SphericalDetector) Validate() error {
	if err := d.Phi.validate(); err != nil {
		return err
	}
	return d.Alpha.validate()
}

// IsMasked reports whether channel i is masked.
func (d *SphericalDetector) IsMasked(i int) bool {
	phi := d.Phi.Center(i / d.Alpha.N)
	alpha := d.Alpha.Center(i % d.Alpha.N)
	for _, m := range d.Masks {
		if m.Contains(phi, alpha) {
			return true
		}
	}
	return false
}

// specularIndex returns the channel that contains the direction
// (αi, φi), or -1.
func (d *SphericalDetector) specularIndex(b Beam) int {
	if !d.Phi.Contains(b.PhiI) || !d.Alpha.Contains(b.AlphaI) {
		return -1
	}
	return d.Phi.Index(b.PhiI)*d.Alpha.N + d.Alpha.Index(b.AlphaI)
}

// Elements returns one simulation element per unmasked channel, in
// channel order.
func (d *SphericalDetector) Elements(b Beam) ([]Element, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	analyzer, err := d.Analyzer.Operator()
	if err != nil {
		return nil, err
	}
	rho := b.DensityMatrix()
	spec := d.specularIndex(b)
	elements := make([]Element, 0, d.Size())
	for i := 0; i < d.Size(); i++ {
		if d.IsMasked(i) {
			continue
		}
		phiLo, phiHi := d.Phi.Bin(i / d.Alpha.N)
		alphaLo, alphaHi := d.Alpha.Bin(i % d.Alpha.N)
		elements = append(elements, Element{
			Index:        i,
			Wavelength:   b.Wavelength,
			AlphaI:       b.AlphaI,
			PhiI:         b.PhiI,
			AlphaMin:     alphaLo,
			DAlpha:       alphaHi - alphaLo,
			PhiMin:       phiLo,
			DPhi:         phiHi - phiLo,
			Polarization: rho,
			Analyzer:     analyzer,
			Specular:     i == spec,
		})
	}
	return elements, nil
}

// SpecularScan is a reflectometry scan over grazing angles. The beam
// angle is replaced by each scan angle in turn.
type SpecularScan struct {
	AlphaI   Axis
	Analyzer Analyzer
}

// NewSpecularScan returns a scan of n equidistant grazing angles from
// alphaMin to alphaMax [rad].
func NewSpecularScan(n int, alphaMin, alphaMax float64) *SpecularScan {
	return &SpecularScan{AlphaI: Axis{Name: "alpha_i", N: n, Min: alphaMin, Max: alphaMax, Points: true}}
}

// Dimension returns 1.
func (s *SpecularScan) Dimension() int { return 1 }

// Size returns the number of scan points.
func (s *SpecularScan) Size() int { return s.AlphaI.N }

// Axes returns the grazing-angle axis.
func (s *SpecularScan) Axes() []Axis { return []Axis{s.AlphaI} }

// IsMasked returns false; scan points cannot be masked.
func (s *SpecularScan) IsMasked(int) bool { return false }

// Elements returns one specular element per scan angle.
func (s *SpecularScan) Elements(b Beam) ([]Element, error) {
	if err := s.AlphaI.validate(); err != nil {
		return nil, err
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	analyzer, err := s.Analyzer.Operator()
	if err != nil {
		return nil, err
	}
	rho := b.DensityMatrix()
	elements := make([]Element, s.Size())
	for i, a := range s.AlphaI.Centers() {
		elements[i] = Element{
			Index:        i,
			Wavelength:   b.Wavelength,
			AlphaI:       a,
			PhiI:         b.PhiI,
			AlphaMin:     a,
			PhiMin:       b.PhiI,
			Polarization: rho,
			Analyzer:     analyzer,
			Specular:     true,
		}
	}
	return elements, nil
}
