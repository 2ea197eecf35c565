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

package interference

import "math"

// Distribution1D is the Fourier transform of a one-dimensional
// distribution, normalized to 1 at q = 0 unless stated otherwise.
type Distribution1D interface {
	Evaluate(q float64) float64
}

// Cauchy is the transform of a Cauchy (Lorentzian) distribution of
// width Omega.
type Cauchy struct{ Omega float64 }

// Evaluate implements Distribution1D.
func (c Cauchy) Evaluate(q float64) float64 {
	qw := q * c.Omega
	return 1 / (1 + qw*qw)
}

// Gauss is the transform of a Gaussian distribution with standard
// deviation Omega.
type Gauss struct{ Omega float64 }

// Evaluate implements Distribution1D.
func (g Gauss) Evaluate(q float64) float64 {
	qw := q * g.Omega
	return math.Exp(-qw * qw / 2)
}

// Gate is the transform of a uniform distribution on [-Omega, Omega].
type Gate struct{ Omega float64 }

// Evaluate implements Distribution1D.
func (g Gate) Evaluate(q float64) float64 {
	x := q * g.Omega
	if math.Abs(x) < 1e-8 {
		return 1
	}
	return math.Sin(x) / x
}

// CauchyDecay is the transform of an exponential decay of correlations
// with length Omega. Unlike the distributions above it is normalized to
// 2 Omega at q = 0, so that lattice sums carry the coherence length.
type CauchyDecay struct{ Omega float64 }

// Evaluate implements Distribution1D.
func (c CauchyDecay) Evaluate(q float64) float64 {
	return 2 * c.Omega * Cauchy{c.Omega}.Evaluate(q)
}

// GaussDecay is the Gaussian analogue of CauchyDecay, normalized to
// sqrt(2π) Omega at q = 0.
type GaussDecay struct{ Omega float64 }

// Evaluate implements Distribution1D.
func (g GaussDecay) Evaluate(q float64) float64 {
	return math.Sqrt(2*math.Pi) * g.Omega * Gauss{g.Omega}.Evaluate(q)
}
