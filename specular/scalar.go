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

package specular

import (
	"math/cmplx"

	"github.com/spatialmodel/gisas"
	"github.com/spatialmodel/gisas/geometry"
	"github.com/spatialmodel/gisas/internal/cmat"
	"github.com/spatialmodel/gisas/science/formfactor"
)

// ScalarCoefficients are the wave amplitudes in one slice of a
// non-magnetic stack.
type ScalarCoefficients struct {
	T, R complex128

	// Kz is the z component of the transmitted wavevector [nm⁻¹].
	Kz complex128

	// Lambda is Kz/(-|k|), the normalized eigenvalue of the slice.
	Lambda complex128
}

// ScalarWave implements Coefficients.
func (c ScalarCoefficients) ScalarWave() (formfactor.ScalarWave, bool) {
	return formfactor.ScalarWave{T: c.T, R: c.R, Kz: c.Kz}, true
}

// MatrixWave implements Coefficients. Both spin channels travel in the
// first eigenmode.
func (c ScalarCoefficients) MatrixWave() formfactor.MatrixWave {
	return formfactor.MatrixWave{
		T:  [2]cmat.Mat2{cmat.Identity2().Scale(c.T)},
		R:  [2]cmat.Mat2{cmat.Identity2().Scale(c.R)},
		Kz: [2]complex128{c.Kz, c.Kz},
	}
}

// Reflection implements Coefficients.
func (c ScalarCoefficients) Reflection() cmat.Mat2 { return cmat.Identity2().Scale(c.R) }

// Transmission implements Coefficients.
func (c ScalarCoefficients) Transmission() cmat.Mat2 { return cmat.Identity2().Scale(c.T) }

// Scalar computes the coefficients of every slice of a non-magnetic
// stack for the vacuum wavevector k, using Parratt's recursion with
// Névot–Croce roughness factors. Magnetic inductions are ignored.
func Scalar(stack *gisas.Stack, k geometry.R3) []ScalarCoefficients {
	n := stack.Len()
	c := make([]ScalarCoefficients, n)
	kmag, wavelength, n0kpar2 := slabParameters(stack, k)
	for i := range c {
		l := principalSqrt(stack.Material(i).RefractiveIndex2(wavelength) - n0kpar2)
		c[i].Lambda = l
		c[i].Kz = -complex(kmag, 0) * l
	}
	if n == 1 {
		c[0].T = 1
		return c
	}
	if c[0].Lambda == 0 {
		// Grazing wave: total reflection, nothing enters the stack.
		c[0].T = 1
		c[0].R = -1
		return c
	}

	phase := make([]complex128, n)
	for i := range phase {
		phase[i] = imExp(complex(kmag*stack.Thickness(i), 0) * c[i].Lambda)
	}

	// x[i] is R/T at the reference plane of slice i, and b[i] the same
	// ratio at the bottom of slice i.
	x := make([]complex128, n)
	b := make([]complex128, n-1)
	for i := n - 2; i >= 0; i-- {
		r := interfaceReflection(stack, i, kmag, c[i].Lambda, c[i+1].Lambda)
		b[i] = (r + x[i+1]) / (1 + r*x[i+1])
		x[i] = phase[i] * phase[i] * b[i]
	}

	c[0].T = 1
	c[0].R = x[0]
	for i := 0; i < n-1; i++ {
		t := c[i].T * phase[i] * (1 + b[i]) / (1 + x[i+1])
		c[i+1].T = t
		c[i+1].R = x[i+1] * t
	}
	return c
}

// interfaceReflection returns the Fresnel reflection amplitude of the
// interface between slices i and i+1, damped by the roughness of the
// interface.
func interfaceReflection(stack *gisas.Stack, i int, kmag float64, l1, l2 complex128) complex128 {
	sum := l1 + l2
	if sum == 0 {
		return 0
	}
	r := (l1 - l2) / sum
	if rough := stack.TopRoughness(i + 1); rough != nil && rough.Sigma > 0 {
		s := kmag * rough.Sigma
		r *= cmplx.Exp(-2 * complex(s*s, 0) * l1 * l2)
	}
	return r
}
