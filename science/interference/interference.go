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

// Package interference provides interference functions, which describe
// the positional correlation between particles in a layout.
package interference

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/spatialmodel/gisas/geometry"
)

// Function is an interference function: the structure factor S(q) of
// the particle positions. Only the in-plane part of q is used.
type Function interface {
	Evaluate(q geometry.R3) float64
}

// CharacteristicDistribution is implemented by interference functions
// that can be used with the size-spacing correlation approximation.
type CharacteristicDistribution interface {
	Function

	// FTPDF returns the Fourier transform of the nearest-neighbor
	// distance distribution at in-plane momentum qpar.
	FTPDF(qpar float64) complex128

	// Kappa returns the size-spacing coupling constant.
	Kappa() float64
}

// None describes uncorrelated particles.
type None struct{}

// Evaluate implements Function.
func (None) Evaluate(geometry.R3) float64 { return 1 }

// RadialParaCrystal is a one-dimensional paracrystal averaged over all
// in-plane directions.
type RadialParaCrystal struct {
	// PeakDistance is the mean nearest-neighbor distance [nm].
	PeakDistance float64

	// DampingLength [nm] attenuates long-range order; 0 means no damping.
	DampingLength float64

	// DomainSize [nm] is the size of coherent domains; 0 means infinite.
	DomainSize float64

	// SizeSpacingCoupling is κ in the size-spacing correlation
	// approximation.
	SizeSpacingCoupling float64

	// PDF is the Fourier transform of the distance fluctuation
	// distribution.
	PDF Distribution1D
}

// Kappa implements CharacteristicDistribution.
func (p RadialParaCrystal) Kappa() float64 { return p.SizeSpacingCoupling }

// FTPDF implements CharacteristicDistribution.
func (p RadialParaCrystal) FTPDF(qpar float64) complex128 {
	r := cmplx.Exp(complex(0, qpar*p.PeakDistance)) * complex(p.PDF.Evaluate(qpar), 0)
	if p.DampingLength != 0 {
		r *= complex(math.Exp(-p.PeakDistance/p.DampingLength), 0)
	}
	return r
}

// Evaluate implements Function.
func (p RadialParaCrystal) Evaluate(q geometry.R3) float64 {
	f := p.FTPDF(q.MagXY())
	if cmplx.Abs(1-f) < 10*epsilon {
		return p.DomainSize / p.PeakDistance
	}
	frac := (1 + f) / (1 - f)
	if p.DomainSize == 0 {
		return real(frac)
	}
	n := p.DomainSize / p.PeakDistance
	finite := 2 * f * (1 - cmplx.Pow(f, complex(n, 0))) / (complex(n, 0) * (1 - f) * (1 - f))
	return real(frac - finite)
}

// Validate returns an error if the parameters are not meaningful.
func (p RadialParaCrystal) Validate() error {
	if !(p.PeakDistance > 0) {
		return fmt.Errorf("interference: radial paracrystal peak distance=%g but should be >0", p.PeakDistance)
	}
	if p.DampingLength < 0 || p.DomainSize < 0 {
		return fmt.Errorf("interference: radial paracrystal damping length and domain size should be >= 0")
	}
	if p.PDF == nil {
		return fmt.Errorf("interference: radial paracrystal needs a probability distribution")
	}
	return nil
}

// Lattice1D is a one-dimensional lattice of rows with spacing Length,
// rotated by Xi from the x axis. Decay describes the finite coherence of
// the lattice.
type Lattice1D struct {
	Length, Xi float64
	Decay      Distribution1D
}

// latticeTerms is the number of reciprocal lattice points summed on each
// side of the nearest one.
const latticeTerms = 2

// Evaluate implements Function.
func (l Lattice1D) Evaluate(q geometry.R3) float64 {
	aRec := 2 * math.Pi / l.Length
	qx := q.X*math.Cos(l.Xi) + q.Y*math.Sin(l.Xi)
	qfrac := qx - math.Round(qx/aRec)*aRec
	var r float64
	for i := -latticeTerms; i <= latticeTerms; i++ {
		r += l.Decay.Evaluate(qfrac + float64(i)*aRec)
	}
	return r / l.Length
}

// Validate returns an error if the parameters are not meaningful.
func (l Lattice1D) Validate() error {
	if !(l.Length > 0) {
		return fmt.Errorf("interference: lattice length=%g but should be >0", l.Length)
	}
	if l.Decay == nil {
		return fmt.Errorf("interference: lattice needs a decay function")
	}
	return nil
}

const epsilon = 2.220446049250313e-16
