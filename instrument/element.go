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

	"github.com/spatialmodel/gisas/geometry"
	"github.com/spatialmodel/gisas/internal/cmat"
)

// Element is one detector channel, or one angle of a specular scan,
// together with the beam that illuminates it.
type Element struct {
	// Index is the detector channel the element belongs to.
	Index int

	Wavelength, AlphaI, PhiI float64

	// The pixel spans [AlphaMin, AlphaMin+DAlpha] × [PhiMin, PhiMin+DPhi].
	AlphaMin, DAlpha float64
	PhiMin, DPhi     float64

	// Polarization is the spin density matrix of the beam and Analyzer
	// the operator of the polarization analyzer.
	Polarization, Analyzer cmat.Mat2

	Intensity float64

	// Specular is set for the channel that contains the specularly
	// reflected beam.
	Specular bool
}

// KI returns the incoming wavevector.
func (e *Element) KI() geometry.R3 { return geometry.Ki(e.Wavelength, e.AlphaI, e.PhiI) }

// KF returns the outgoing wavevector at the relative pixel position
// (x, y) ∈ [0,1]².
func (e *Element) KF(x, y float64) geometry.R3 {
	return geometry.K(e.Wavelength, e.AlphaMin+x*e.DAlpha, e.PhiMin+y*e.DPhi)
}

// MeanKF returns the outgoing wavevector at the pixel center.
func (e *Element) MeanKF() geometry.R3 { return e.KF(0.5, 0.5) }

// AlphaMean returns the exit angle at the pixel center.
func (e *Element) AlphaMean() float64 { return e.AlphaMin + e.DAlpha/2 }

// PhiMean returns the azimuthal angle at the pixel center.
func (e *Element) PhiMean() float64 { return e.PhiMin + e.DPhi/2 }

// WavevectorInfo returns the incoming and mean outgoing wavevectors.
func (e *Element) WavevectorInfo() geometry.WavevectorInfo {
	return geometry.WavevectorInfo{
		Ki:         e.KI().Complex(),
		Kf:         e.MeanKF().Complex(),
		Wavelength: e.Wavelength,
	}
}

// SolidAngle returns the solid angle covered by the pixel.
func (e *Element) SolidAngle() float64 {
	return math.Abs(e.DPhi * (math.Sin(e.AlphaMin+e.DAlpha) - math.Sin(e.AlphaMin)))
}

// IntegrationFactor returns the weight of the relative pixel position
// (x, y) when integrating uniformly over [0,1]², which accounts for the
// cos α Jacobian of the spherical pixel.
func (e *Element) IntegrationFactor(x, y float64) float64 {
	if e.DAlpha == 0 {
		return 1
	}
	α := e.AlphaMin + x*e.DAlpha
	return math.Cos(α) * e.DAlpha / (math.Sin(e.AlphaMin+e.DAlpha) - math.Sin(e.AlphaMin))
}

// Sub returns the point element at the relative pixel position (x, y).
func (e *Element) Sub(x, y float64) Element {
	s := *e
	s.AlphaMin += x * e.DAlpha
	s.PhiMin += y * e.DPhi
	s.DAlpha = 0
	s.DPhi = 0
	return s
}

// SinAlphaI returns |sin αi|, or 1 if it is zero.
func (e *Element) SinAlphaI() float64 {
	s := math.Abs(math.Sin(e.AlphaI))
	if s == 0 {
		return 1
	}
	return s
}
