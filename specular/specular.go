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

// Package specular computes the specular wavefield in a stratified medium
// with transfer-matrix methods.
//
// The field in slice i is written as
//
//	T e^{i kz (z-z_i)} + R e^{-i kz (z-z_i)},
//
// where z_i is the reference plane of the slice (gisas.Stack.RefZ) and kz
// is the z component of the downward (transmitted) wave. The amplitudes
// are normalized so that the wave incident from the ambient medium has
// unit amplitude.
package specular

import (
	"math"
	"math/cmplx"

	"github.com/spatialmodel/gisas"
	"github.com/spatialmodel/gisas/geometry"
	"github.com/spatialmodel/gisas/internal/cmat"
	"github.com/spatialmodel/gisas/science/formfactor"
)

// Coefficients are the wave amplitudes in one slice.
type Coefficients interface {
	// ScalarWave returns the scalar wavefield. ok is false for
	// spin-resolved coefficients.
	ScalarWave() (w formfactor.ScalarWave, ok bool)

	// MatrixWave returns the spin-resolved wavefield.
	MatrixWave() formfactor.MatrixWave

	// Reflection returns the up-going amplitude at the reference plane,
	// summed over eigenmodes. Its columns correspond to the two incident
	// spin channels.
	Reflection() cmat.Mat2

	// Transmission returns the down-going amplitude at the reference
	// plane, summed over eigenmodes.
	Transmission() cmat.Mat2
}

// Solve returns the coefficients of every slice of stack for the vacuum
// wavevector k, using the scalar solver when the stack is non-magnetic
// and the matrix solver otherwise.
func Solve(stack *gisas.Stack, k geometry.R3) []Coefficients {
	if stack.IsScalar() {
		return ScalarList(stack, k)
	}
	return MatrixList(stack, k)
}

// ScalarList returns the result of Scalar as a list of Coefficients.
func ScalarList(stack *gisas.Stack, k geometry.R3) []Coefficients {
	c := Scalar(stack, k)
	r := make([]Coefficients, len(c))
	for i, v := range c {
		r[i] = v
	}
	return r
}

// MatrixList returns the result of Matrix as a list of Coefficients.
func MatrixList(stack *gisas.Stack, k geometry.R3) []Coefficients {
	c := Matrix(stack, k)
	r := make([]Coefficients, len(c))
	for i, v := range c {
		r[i] = v
	}
	return r
}

// minNormal is the smallest normalized float64.
const minNormal = 0x1p-1022

// maxImExponent is the largest imaginary exponent for which exp(i x) is
// representable as a normalized number.
var maxImExponent = -math.Log(minNormal)

// imExp returns exp(i x), or exactly zero when the result would be
// smaller than the smallest normalized float64.
func imExp(x complex128) complex128 {
	if imag(x) > maxImExponent {
		return 0
	}
	return cmplx.Exp(1i * x)
}

// principalSqrt returns the principal square root of z with a zero
// imaginary part taken as +0, so that evanescent waves decay downwards.
func principalSqrt(z complex128) complex128 {
	if imag(z) == 0 {
		z = complex(real(z), 0)
	}
	return cmplx.Sqrt(z)
}

// slabParameters returns the magnitude of k, the wavelength and the
// square of the in-plane part of k relative to |k|, scaled by n² of
// the ambient medium.
func slabParameters(stack *gisas.Stack, k geometry.R3) (kmag, wavelength float64, n0kpar2 complex128) {
	kmag = k.Mag()
	wavelength = 2 * math.Pi / kmag
	kpar2 := (k.X*k.X + k.Y*k.Y) / (kmag * kmag)
	n0kpar2 = stack.Material(0).RefractiveIndex2(wavelength) * complex(kpar2, 0)
	return
}
