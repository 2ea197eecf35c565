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

// Package geometry holds the real and complex three-vectors used to
// describe wavevectors and scattering vectors. Lengths are in nm and
// wavevectors in nm⁻¹.
package geometry

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/spatial/r3"
)

// R3 is a real three-vector.
type R3 r3.Vec

// Add returns v+w.
func (v R3) Add(w R3) R3 { return R3(r3.Add(r3.Vec(v), r3.Vec(w))) }

// Sub returns v-w.
func (v R3) Sub(w R3) R3 { return R3(r3.Sub(r3.Vec(v), r3.Vec(w))) }

// Scale returns f*v.
func (v R3) Scale(f float64) R3 { return R3(r3.Scale(f, r3.Vec(v))) }

// Neg returns -v.
func (v R3) Neg() R3 { return R3{-v.X, -v.Y, -v.Z} }

// Dot returns the scalar product of v and w.
func (v R3) Dot(w R3) float64 { return r3.Dot(r3.Vec(v), r3.Vec(w)) }

// Mag returns the length of v.
func (v R3) Mag() float64 { return r3.Norm(r3.Vec(v)) }

// MagXY returns the length of the in-plane part of v.
func (v R3) MagXY() float64 { return math.Hypot(v.X, v.Y) }

// IsZero reports whether all components of v are zero.
func (v R3) IsZero() bool { return v.X == 0 && v.Y == 0 && v.Z == 0 }

// Complex converts v to a complex vector.
func (v R3) Complex() C3 { return C3{complex(v.X, 0), complex(v.Y, 0), complex(v.Z, 0)} }

// C3 is a complex three-vector. Wavevectors inside absorbing media have
// complex z components.
type C3 struct {
	X, Y, Z complex128
}

// Add returns v+w.
func (v C3) Add(w C3) C3 { return C3{v.X + w.X, v.Y + w.Y, v.Z + w.Z} }

// Sub returns v-w.
func (v C3) Sub(w C3) C3 { return C3{v.X - w.X, v.Y - w.Y, v.Z - w.Z} }

// Scale returns f*v.
func (v C3) Scale(f complex128) C3 { return C3{f * v.X, f * v.Y, f * v.Z} }

// Dot returns the bilinear (not Hermitian) product of v and w, which is
// the form that enters phase factors exp(i q·r).
func (v C3) Dot(w C3) complex128 { return v.X*w.X + v.Y*w.Y + v.Z*w.Z }

// DotR returns the bilinear product of v with a real vector.
func (v C3) DotR(r R3) complex128 {
	return v.X*complex(r.X, 0) + v.Y*complex(r.Y, 0) + v.Z*complex(r.Z, 0)
}

// Mag returns the complex length sqrt(v·v).
func (v C3) Mag() complex128 { return cmplx.Sqrt(v.Dot(v)) }

// MagXY returns the complex length of the in-plane part of v.
func (v C3) MagXY() complex128 { return cmplx.Sqrt(v.X*v.X + v.Y*v.Y) }

// Real returns the real part of v.
func (v C3) Real() R3 { return R3{real(v.X), real(v.Y), real(v.Z)} }

// WithZ returns v with its z component replaced.
func (v C3) WithZ(z complex128) C3 { return C3{v.X, v.Y, z} }

// IsFinite reports whether no component of v is NaN or infinite.
func (v C3) IsFinite() bool {
	for _, c := range []complex128{v.X, v.Y, v.Z} {
		if cmplx.IsNaN(c) || cmplx.IsInf(c) {
			return false
		}
	}
	return true
}

// K returns the vacuum wavevector for wavelength λ and direction
// (α, φ), where α is the elevation above the sample plane and φ the
// azimuth.
func K(λ, α, φ float64) R3 {
	k := 2 * math.Pi / λ
	return R3{
		X: k * math.Cos(α) * math.Cos(φ),
		Y: k * math.Cos(α) * math.Sin(φ),
		Z: k * math.Sin(α),
	}
}

// Ki returns the incoming wavevector of a beam with wavelength λ hitting
// the sample at grazing angle αi and azimuth φi. Its z component is
// negative for αi > 0.
func Ki(λ, αi, φi float64) R3 { return K(λ, -αi, -φi) }

// WavevectorInfo holds an incoming and an outgoing wavevector.
type WavevectorInfo struct {
	Ki, Kf     C3
	Wavelength float64
}

// Q returns the scattering vector ki - kf.
func (w WavevectorInfo) Q() C3 { return w.Ki.Sub(w.Kf) }
