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

// Package instrument describes the beam and the detector of a scattering
// experiment and turns them into simulation elements.
package instrument

import (
	"math"

	"github.com/spatialmodel/gisas"
	"github.com/spatialmodel/gisas/geometry"
	"github.com/spatialmodel/gisas/internal/cmat"
)

// Beam is the incoming beam. Angles are in radians and the wavelength in
// nm.
type Beam struct {
	Wavelength float64
	AlphaI     float64
	PhiI       float64

	// Intensity is the number of incoming particles per unit time.
	// Results are not normalized when it is zero.
	Intensity float64

	// Polarization is the spin density matrix of the beam. The zero
	// value means an unpolarized beam.
	Polarization cmat.Mat2

	// Footprint corrects specular intensities for the part of the beam
	// that misses the sample. Nil means no correction.
	Footprint Footprint
}

// NewBeam returns an unpolarized beam of unit intensity.
func NewBeam(wavelength, alphaI, phiI float64) Beam {
	return Beam{Wavelength: wavelength, AlphaI: alphaI, PhiI: phiI, Intensity: 1}
}

// Validate checks the beam parameters.
func (b Beam) Validate() error {
	if !(b.Wavelength > 0) || math.IsInf(b.Wavelength, 0) {
		return gisas.DomainErrorf("beam wavelength=%g but should be >0", b.Wavelength)
	}
	if b.Intensity < 0 || math.IsNaN(b.Intensity) {
		return gisas.DomainErrorf("beam intensity=%g but should be >= 0", b.Intensity)
	}
	if math.IsNaN(b.AlphaI) || math.IsNaN(b.PhiI) {
		return gisas.DomainErrorf("beam angles are not numbers")
	}
	return nil
}

// Ki returns the vacuum wavevector of the beam.
func (b Beam) Ki() geometry.R3 { return geometry.Ki(b.Wavelength, b.AlphaI, b.PhiI) }

// DensityMatrix returns the spin density matrix of the beam.
func (b Beam) DensityMatrix() cmat.Mat2 {
	if b.Polarization == (cmat.Mat2{}) {
		return cmat.Identity2().Scale(0.5)
	}
	return b.Polarization
}

// SetPolarization sets the beam polarization from its Bloch vector, whose
// length is the degree of polarization.
func (b *Beam) SetPolarization(bloch geometry.R3) error {
	if bloch.Mag() > 1 {
		return gisas.DomainErrorf("polarization vector %v is longer than 1", bloch)
	}
	b.Polarization = cmat.Identity2().Add(cmat.Pauli(bloch.X, bloch.Y, bloch.Z)).Scale(0.5)
	return nil
}

// Analyzer is a polarization analyzer in front of the detector. The zero
// value lets every spin state through.
type Analyzer struct {
	// Direction of the analyzed spin. It need not be normalized.
	Direction geometry.R3

	// Efficiency is in [-1, 1]; negative values select the spin
	// opposite to Direction.
	Efficiency float64

	// Transmission is the total transmission in (0, 1].
	Transmission float64
}

// Operator returns the analyzer operator in spin space.
func (a Analyzer) Operator() (cmat.Mat2, error) {
	if a == (Analyzer{}) {
		return cmat.Identity2(), nil
	}
	if a.Efficiency < -1 || a.Efficiency > 1 || math.IsNaN(a.Efficiency) {
		return cmat.Mat2{}, gisas.DomainErrorf("analyzer efficiency=%g should be in [-1, 1]", a.Efficiency)
	}
	if !(a.Transmission > 0) || a.Transmission > 1 {
		return cmat.Mat2{}, gisas.DomainErrorf("analyzer transmission=%g should be in (0, 1]", a.Transmission)
	}
	var d geometry.R3
	if a.Efficiency != 0 {
		m := a.Direction.Mag()
		if m == 0 {
			return cmat.Mat2{}, gisas.DomainErrorf("analyzer direction is zero")
		}
		d = a.Direction.Scale(1 / m)
	}
	sum := 2 * a.Transmission
	diff := 2 * a.Transmission * a.Efficiency
	return cmat.Mat2{
		{complex((sum+diff*d.Z)/2, 0), complex(diff*d.X/2, -diff*d.Y/2)},
		{complex(diff*d.X/2, diff*d.Y/2), complex((sum-diff*d.Z)/2, 0)},
	}, nil
}

// Footprint is the fraction of the beam that hits the sample at grazing
// angle alpha.
type Footprint interface {
	Factor(alpha float64) float64
}

// FootprintSquare is the footprint of a beam with a rectangular profile.
// WidthRatio is the beam width divided by the sample length.
type FootprintSquare struct {
	WidthRatio float64
}

// Factor implements Footprint.
func (f FootprintSquare) Factor(alpha float64) float64 {
	if alpha < 0 || alpha > math.Pi/2 {
		return 0
	}
	if f.WidthRatio == 0 {
		return 1
	}
	return math.Min(math.Sin(alpha)/f.WidthRatio, 1)
}

// FootprintGauss is the footprint of a beam with a Gaussian profile whose
// standard deviation relative to the sample length is WidthRatio.
type FootprintGauss struct {
	WidthRatio float64
}

// Factor implements Footprint.
func (f FootprintGauss) Factor(alpha float64) float64 {
	if alpha < 0 || alpha > math.Pi/2 {
		return 0
	}
	if f.WidthRatio == 0 {
		return 1
	}
	return math.Erf(math.Sin(alpha) / f.WidthRatio / math.Sqrt2)
}

// ConstantBackground is added to every detector channel after
// normalization.
type ConstantBackground struct {
	Value float64
}

// Add returns intensity plus the background.
func (b ConstantBackground) Add(intensity float64) float64 { return intensity + b.Value }
