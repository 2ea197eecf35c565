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

package simulation

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/spatialmodel/gisas"
	"github.com/spatialmodel/gisas/fresnel"
	"github.com/spatialmodel/gisas/instrument"
	"github.com/spatialmodel/gisas/internal/cmat"
	"github.com/spatialmodel/gisas/science/strategy"
	"github.com/spatialmodel/gisas/specular"
)

// A term is one contribution to the intensity of an element. Terms are
// not shared between workers.
type term interface {
	eval(e *instrument.Element) (float64, error)
}

// layoutTerm is the diffuse scattering of one particle layout.
type layoutTerm struct {
	s      strategy.Strategy
	weight float64
}

func newLayoutTerm(l gisas.SlicedLayout, opts strategy.Options) (*layoutTerm, error) {
	parts := make([]strategy.Part, len(l.Particles))
	for i, p := range l.Particles {
		parts[i] = strategy.Part{FF: p.FF, Abundance: p.Abundance, Slice: p.Slice}
	}
	var s strategy.Strategy
	var err error
	switch l.Approximation {
	case gisas.Decoupling:
		s, err = strategy.NewDecoupling(parts, l.Interference, opts)
	case gisas.SSCA:
		s, err = strategy.NewSSCA(parts, l.Interference, opts)
	default:
		err = &strategy.InitializationError{Msg: fmt.Sprintf("unknown approximation %v", l.Approximation)}
	}
	if err != nil {
		return nil, err
	}
	return &layoutTerm{s: s, weight: l.Weight}, nil
}

func (t *layoutTerm) eval(e *instrument.Element) (float64, error) {
	if e.AlphaMean() < 0 {
		return 0, nil
	}
	v, err := t.s.Evaluate(e)
	return t.weight * v, err
}

// roughnessTerm is the diffuse scattering from rough interfaces in the
// DWBA, including cross-correlations between interfaces.
type roughnessTerm struct {
	fm *fresnel.Map
}

func (t roughnessTerm) eval(e *instrument.Element) (float64, error) {
	if e.AlphaMean() < 0 {
		return 0, nil
	}
	stack := t.fm.Stack()
	n := stack.Len()
	ki, kf := e.KI(), e.MeanKF()
	q := ki.Sub(kf)
	λ := e.Wavelength
	in, out := t.fm.In(ki), t.fm.Out(kf)

	// Interface i separates slices i and i+1.
	contrast := make([]complex128, n-1)
	field := make([]complex128, n-1)
	for i := range contrast {
		contrast[i] = stack.Material(i).RefractiveIndex2(λ) - stack.Material(i+1).RefractiveIndex2(λ)
		field[i] = interfaceField(stack, in, out, i)
	}
	var auto float64
	for i := range contrast {
		if r := stack.TopRoughness(i + 1); r != nil {
			auto += norm(contrast[i]) * norm(field[i]) * r.Spectrum(q)
		}
	}
	var cross complex128
	if stack.CrossCorrLength() != 0 {
		for j := range contrast {
			for k := range contrast {
				if j == k {
					continue
				}
				c := complex(stack.CrossSpectrum(q, j+1, k+1), 0)
				cross += contrast[j] * field[j] * c * cmplx.Conj(contrast[k]*field[k])
			}
		}
	}
	v := (auto + real(cross)) * math.Pi * math.Pi / (λ * λ * λ * λ)
	if math.IsNaN(v) {
		return 0, fmt.Errorf("simulation: roughness intensity is NaN at element %d", e.Index)
	}
	return v, nil
}

// interfaceField returns the product of the incoming and time-reversed
// outgoing wavefields at interface i, averaged over the slices on both
// sides and smeared by the interface roughness.
func interfaceField(stack *gisas.Stack, in, out []specular.Coefficients, i int) complex128 {
	var sigma float64
	if r := stack.TopRoughness(i + 1); r != nil {
		sigma = r.Sigma
	}
	above := sideField(in[i], out[i], stack.Thickness(i), sigma)
	below := sideField(in[i+1], out[i+1], 0, sigma)
	return above + below
}

// sideField sums the four products of up- and down-going waves at depth d
// below the reference plane of a slice.
func sideField(in, out specular.Coefficients, d, sigma float64) complex128 {
	a, _ := in.ScalarWave()
	b, _ := out.ScalarWave()
	tIn, rIn := atDepth(a.T, a.R, a.Kz, d)
	tOut, rOut := atDepth(b.T, b.R, b.Kz, d)
	q1 := a.Kz + b.Kz
	q2 := a.Kz - b.Kz
	return tIn*tOut*smear(q1, sigma) + tIn*rOut*smear(q2, sigma) +
		rIn*tOut*smear(-q2, sigma) + rIn*rOut*smear(-q1, sigma)
}

// atDepth returns the amplitudes of the down- and up-going waves at depth
// d below the reference plane.
func atDepth(t, r, kz complex128, d float64) (complex128, complex128) {
	if d == 0 {
		return t, r
	}
	phase := complex(0, d) * kz
	if t != 0 {
		t *= cmplx.Exp(-phase)
	}
	if r != 0 {
		r *= cmplx.Exp(phase)
	}
	return t, r
}

// smear is the Gaussian height average of a wave product with vertical
// wavenumber q, shared equally by the two sides of the interface.
func smear(q complex128, sigma float64) complex128 {
	if sigma == 0 {
		return 0.5
	}
	z := q * complex(sigma, 0)
	return 0.5 * cmplx.Exp(-z*z/2)
}

// reflectivity returns the specular intensity of the top slice
// coefficients: |R|² or, with polarization, Tr(A R ρ R†).
func reflectivity(c specular.Coefficients, e *instrument.Element, polarized bool) float64 {
	if !polarized {
		if w, ok := c.ScalarWave(); ok {
			return norm(w.R)
		}
	}
	r := c.Reflection()
	return real(e.Analyzer.Mul(r).Mul(e.Polarization).Mul(r.Adjoint()).Trace())
}

// specularPeakTerm adds the specularly reflected beam to the pixel that
// contains it. It is scaled so that normalization leaves the reflected
// intensity.
type specularPeakTerm struct {
	fm        *fresnel.Map
	polarized bool
}

func (t specularPeakTerm) eval(e *instrument.Element) (float64, error) {
	if !e.Specular {
		return 0, nil
	}
	sa := e.SolidAngle()
	if sa <= 0 {
		return 0, nil
	}
	r := reflectivity(t.fm.InLayer(e.KI(), 0), e, t.polarized)
	return r * e.SinAlphaI() / sa, nil
}

// reflectometryTerm is the reflectivity of a specular scan point,
// corrected for the beam footprint.
type reflectometryTerm struct {
	fm        *fresnel.Map
	polarized bool
	footprint instrument.Footprint
}

func (t reflectometryTerm) eval(e *instrument.Element) (float64, error) {
	r := reflectivity(t.fm.InLayer(e.KI(), 0), e, t.polarized)
	if t.footprint != nil {
		r *= t.footprint.Factor(e.AlphaI)
	}
	return r, nil
}

func norm(z complex128) float64 { return real(z)*real(z) + imag(z)*imag(z) }

// isPolarized reports whether the beam or analyzer makes the spin state
// observable.
func isPolarized(e instrument.Element) bool {
	return e.Polarization != cmat.Identity2().Scale(0.5) || e.Analyzer != cmat.Identity2()
}
