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

package strategy

import (
	"github.com/spatialmodel/gisas/instrument"
	"github.com/spatialmodel/gisas/internal/cmat"
	"github.com/spatialmodel/gisas/science/interference"
)

// Decoupling is the decoupling approximation: particle sizes and
// positions are uncorrelated, so the coherent part of the intensity is
// the mean amplitude squared times the interference function.
type Decoupling struct {
	base
}

// NewDecoupling returns a decoupling strategy for the given parts. A nil
// iff means uncorrelated positions.
func NewDecoupling(parts []Part, iff interference.Function, opts Options) (*Decoupling, error) {
	b, err := newBase(parts, iff, opts)
	if err != nil {
		return nil, err
	}
	d := &Decoupling{base: b}
	if opts.Polarized {
		d.point = d.polarized
	} else {
		d.point = d.scalar
	}
	return d, nil
}

func (d *Decoupling) scalar(e *instrument.Element) (float64, error) {
	ffs, err := d.amplitudes(e)
	if err != nil {
		return 0, err
	}
	var intensity float64
	var amplitude complex128
	for i, ff := range ffs {
		f := d.fractions[i]
		amplitude += complex(f, 0) * ff
		intensity += f * norm(ff)
	}
	s := d.iff.Evaluate(e.WavevectorInfo().Q().Real())
	return d.total * (intensity + norm(amplitude)*(s-1)), nil
}

func (d *Decoupling) polarized(e *instrument.Element) (float64, error) {
	ffs, err := d.amplitudesPol(e)
	if err != nil {
		return 0, err
	}
	rho := e.Polarization
	var meanIntensity, meanAmplitude cmat.Mat2
	for i, ff := range ffs {
		f := complex(d.fractions[i], 0)
		meanAmplitude = meanAmplitude.Add(ff.Scale(f))
		meanIntensity = meanIntensity.Add(ff.Mul(rho).Mul(ff.Adjoint()).Scale(f))
	}
	amplitude := absTrace(e.Analyzer.Mul(meanAmplitude).Mul(rho).Mul(meanAmplitude.Adjoint()))
	intensity := absTrace(e.Analyzer.Mul(meanIntensity))
	s := d.iff.Evaluate(e.WavevectorInfo().Q().Real())
	return d.total * (intensity + amplitude*(s-1)), nil
}
