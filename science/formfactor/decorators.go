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

package formfactor

import (
	"math"
	"math/cmplx"

	"github.com/spatialmodel/gisas/geometry"
	"github.com/spatialmodel/gisas/internal/cmat"
)

// FormFactor is a scattering amplitude as a function of the incoming and
// outgoing wavevectors.
type FormFactor interface {
	// Evaluate returns the scalar amplitude.
	Evaluate(wv geometry.WavevectorInfo) complex128

	// EvaluatePol returns the amplitude as an operator in spin space.
	EvaluatePol(wv geometry.WavevectorInfo) cmat.Mat2

	// RadialExtension returns the characteristic in-plane radius [nm].
	RadialExtension() float64
}

// Contrast is the scattering potential of a particle relative to its
// embedding medium, already including the π/λ² scattering factor [nm⁻²].
type Contrast interface {
	Scalar(λ float64) complex128
	Matrix(λ float64) cmat.Mat2
}

// Material gives a shape a scattering contrast.
type Material struct {
	Shape    Shape
	Contrast Contrast
}

// Evaluate implements FormFactor.
func (m Material) Evaluate(wv geometry.WavevectorInfo) complex128 {
	return m.Contrast.Scalar(wv.Wavelength) * m.Shape.Evaluate(wv.Q())
}

// EvaluatePol implements FormFactor.
func (m Material) EvaluatePol(wv geometry.WavevectorInfo) cmat.Mat2 {
	return m.Contrast.Matrix(wv.Wavelength).Scale(m.Shape.Evaluate(wv.Q()))
}

// RadialExtension implements FormFactor.
func (m Material) RadialExtension() float64 { return m.Shape.RadialExtension() }

// Positioned translates a form factor by R, multiplying it by exp(i q·R).
type Positioned struct {
	FF FormFactor
	R  geometry.R3
}

func (p Positioned) phase(wv geometry.WavevectorInfo) complex128 {
	if p.R.IsZero() {
		return 1
	}
	return cmplx.Exp(1i * wv.Q().DotR(p.R))
}

// Evaluate implements FormFactor.
func (p Positioned) Evaluate(wv geometry.WavevectorInfo) complex128 {
	return p.phase(wv) * p.FF.Evaluate(wv)
}

// EvaluatePol implements FormFactor.
func (p Positioned) EvaluatePol(wv geometry.WavevectorInfo) cmat.Mat2 {
	return p.FF.EvaluatePol(wv).Scale(p.phase(wv))
}

// RadialExtension implements FormFactor.
func (p Positioned) RadialExtension() float64 { return p.FF.RadialExtension() }

// Sum is the coherent sum of several form factors, as for composite and
// core-shell particles.
type Sum []FormFactor

// Evaluate implements FormFactor.
func (s Sum) Evaluate(wv geometry.WavevectorInfo) complex128 {
	var r complex128
	for _, f := range s {
		r += f.Evaluate(wv)
	}
	return r
}

// EvaluatePol implements FormFactor.
func (s Sum) EvaluatePol(wv geometry.WavevectorInfo) cmat.Mat2 {
	var r cmat.Mat2
	for _, f := range s {
		r = r.Add(f.EvaluatePol(wv))
	}
	return r
}

// RadialExtension implements FormFactor. It is the largest extension of
// the terms.
func (s Sum) RadialExtension() float64 {
	var r float64
	for _, f := range s {
		r = math.Max(r, f.RadialExtension())
	}
	return r
}
