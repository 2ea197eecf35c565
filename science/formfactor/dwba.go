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
	"github.com/spatialmodel/gisas/geometry"
	"github.com/spatialmodel/gisas/internal/cmat"
)

// ScalarWave is the specular wavefield inside the layer that embeds a
// particle: T e^{i kz z} + R e^{-i kz z}, with z measured from the top of
// the layer. Kz belongs to the downward (transmitted) wave.
type ScalarWave struct {
	T, R, Kz complex128
}

// DWBA evaluates the four distorted-wave terms of a form factor: direct
// scattering, and scattering combined with reflection of the incoming
// wave, the outgoing wave, or both.
//
// In describes the wavefield of the incoming beam and Out the wavefield
// of the time-reversed outgoing beam.
func DWBA(ff FormFactor, wv geometry.WavevectorInfo, in, out ScalarWave) complex128 {
	kiT := wv.Ki.WithZ(in.Kz)
	kiR := wv.Ki.WithZ(-in.Kz)
	kfT := wv.Kf.WithZ(-out.Kz)
	kfR := wv.Kf.WithZ(out.Kz)
	λ := wv.Wavelength

	s := in.T * ff.Evaluate(geometry.WavevectorInfo{Ki: kiT, Kf: kfT, Wavelength: λ}) * out.T
	rs := in.R * ff.Evaluate(geometry.WavevectorInfo{Ki: kiR, Kf: kfT, Wavelength: λ}) * out.T
	sr := in.T * ff.Evaluate(geometry.WavevectorInfo{Ki: kiT, Kf: kfR, Wavelength: λ}) * out.R
	rsr := in.R * ff.Evaluate(geometry.WavevectorInfo{Ki: kiR, Kf: kfR, Wavelength: λ}) * out.R
	return s + rs + sr + rsr
}

// MatrixWave is the spin-resolved specular wavefield inside the layer
// that embeds a particle. For each eigenmode j, T[j] and R[j] map an
// incident spinor onto the down- and up-going field spinors of that mode.
type MatrixWave struct {
	T, R [2]cmat.Mat2
	Kz   [2]complex128
}

// DWBAPol is the polarized version of DWBA. The amplitude operator is the
// sum over incoming and outgoing eigenmodes and over transmitted and
// reflected branches of Outᵀ · F(q) · In.
func DWBAPol(ff FormFactor, wv geometry.WavevectorInfo, in, out MatrixWave) cmat.Mat2 {
	λ := wv.Wavelength
	var result cmat.Mat2
	for a := 0; a < 2; a++ {
		ki := [2]geometry.C3{wv.Ki.WithZ(in.Kz[a]), wv.Ki.WithZ(-in.Kz[a])}
		inAmp := [2]cmat.Mat2{in.T[a], in.R[a]}
		for b := 0; b < 2; b++ {
			kf := [2]geometry.C3{wv.Kf.WithZ(-out.Kz[b]), wv.Kf.WithZ(out.Kz[b])}
			outAmp := [2]cmat.Mat2{out.T[b].Transpose(), out.R[b].Transpose()}
			for x := 0; x < 2; x++ {
				for y := 0; y < 2; y++ {
					f := ff.EvaluatePol(geometry.WavevectorInfo{Ki: ki[x], Kf: kf[y], Wavelength: λ})
					result = result.Add(outAmp[y].Mul(f).Mul(inAmp[x]))
				}
			}
		}
	}
	return result
}
