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
	"math/cmplx"

	"github.com/spatialmodel/gisas/instrument"
	"github.com/spatialmodel/gisas/internal/cmat"
	"github.com/spatialmodel/gisas/science/interference"
)

// SSCA is the size-spacing correlation approximation: the distance
// between neighbors grows with their radial extension, with coupling
// constant κ taken from the interference function.
type SSCA struct {
	base
	dist       interference.CharacteristicDistribution
	kappa      float64
	meanRadius float64
}

// NewSSCA returns an SSCA strategy. iff must implement
// interference.CharacteristicDistribution.
func NewSSCA(parts []Part, iff interference.Function, opts Options) (*SSCA, error) {
	dist, ok := iff.(interference.CharacteristicDistribution)
	if !ok {
		return nil, &InitializationError{Msg: "SSCA requires a radial paracrystal interference function"}
	}
	b, err := newBase(parts, iff, opts)
	if err != nil {
		return nil, err
	}
	s := &SSCA{base: b, dist: dist, kappa: dist.Kappa()}
	for i, p := range parts {
		s.meanRadius += s.fractions[i] * p.FF.RadialExtension()
	}
	if opts.Polarized {
		s.point = s.polarized
	} else {
		s.point = s.scalar
	}
	return s, nil
}

// offsetPhase returns exp(iκ qp (r − r̄)).
func (s *SSCA) offsetPhase(qp, r float64) complex128 {
	return cmplx.Exp(complex(0, s.kappa*qp*(r-s.meanRadius)))
}

// coupling returns the characteristic size coupling p₂κ at qp.
func (s *SSCA) coupling(qp float64) complex128 {
	var result complex128
	for i, p := range s.parts {
		result += complex(s.fractions[i], 0) * s.offsetPhase(2*qp, p.FF.RadialExtension())
	}
	return result
}

func (s *SSCA) scalar(e *instrument.Element) (float64, error) {
	ffs, err := s.amplitudes(e)
	if err != nil {
		return 0, err
	}
	qp := e.WavevectorInfo().Q().Real().MagXY()
	var diffuse float64
	var orig, conj complex128
	for i, ff := range ffs {
		f := s.fractions[i]
		diffuse += f * norm(ff)
		prefac := complex(f, 0) * s.offsetPhase(qp, s.parts[i].FF.RadialExtension())
		orig += prefac * ff
		conj += prefac * cmplx.Conj(ff)
	}
	omega := s.dist.FTPDF(qp)
	coherent := 2 * real(orig*conj*omega/(1-s.coupling(qp)*omega))
	return s.total * (diffuse + coherent), nil
}

func (s *SSCA) polarized(e *instrument.Element) (float64, error) {
	ffs, err := s.amplitudesPol(e)
	if err != nil {
		return 0, err
	}
	qp := e.WavevectorInfo().Q().Real().MagXY()
	rho := e.Polarization
	var meanIntensity, orig, conj cmat.Mat2
	for i, ff := range ffs {
		f := complex(s.fractions[i], 0)
		prefac := f * s.offsetPhase(qp, s.parts[i].FF.RadialExtension())
		orig = orig.Add(ff.Scale(prefac))
		conj = conj.Add(ff.Adjoint().Scale(prefac))
		meanIntensity = meanIntensity.Add(ff.Mul(rho).Mul(ff.Adjoint()).Scale(f))
	}
	omega := s.dist.FTPDF(qp)
	factor := 2 * omega / (1 - s.coupling(qp)*omega)
	coherent := absTrace(e.Analyzer.Mul(orig).Mul(rho).Mul(conj).Scale(factor))
	diffuse := absTrace(e.Analyzer.Mul(meanIntensity))
	return s.total * (diffuse + coherent), nil
}
