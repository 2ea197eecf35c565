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

// Package strategy combines the form factors of the particles in a layout
// with their positional correlations into the diffuse intensity of a
// simulation element.
package strategy

import (
	"fmt"
	"math/cmplx"

	"github.com/spatialmodel/gisas/fresnel"
	"github.com/spatialmodel/gisas/instrument"
	"github.com/spatialmodel/gisas/internal/cmat"
	"github.com/spatialmodel/gisas/science/formfactor"
	"github.com/spatialmodel/gisas/science/interference"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Part is one particle type of a layout.
type Part struct {
	FF        formfactor.FormFactor
	Abundance float64

	// Slice is the stack slice that embeds the particle.
	Slice int
}

// Options configure a strategy.
type Options struct {
	// Fresnel provides the specular wavefields for the DWBA. If it is
	// nil, plain Born amplitudes are used.
	Fresnel *fresnel.Map

	// Polarized selects the spin-resolved calculation.
	Polarized bool

	// MonteCarlo integrates every pixel with MCPoints random points
	// instead of evaluating its center.
	MonteCarlo bool
	MCPoints   int
}

// InitializationError is returned when a strategy cannot be built from
// its inputs.
type InitializationError struct {
	Msg string
}

func (e *InitializationError) Error() string { return "strategy: " + e.Msg }

// Strategy computes the diffuse intensity of one layout.
type Strategy interface {
	Evaluate(e *instrument.Element) (float64, error)
}

// base holds what both strategies share: relative abundances, the
// amplitude computation and pixel integration.
type base struct {
	parts     []Part
	fractions []float64
	total     float64
	iff       interference.Function
	opts      Options

	// point evaluates the strategy at the center of an element.
	point func(e *instrument.Element) (float64, error)
}

func newBase(parts []Part, iff interference.Function, opts Options) (base, error) {
	if len(parts) == 0 {
		return base{}, &InitializationError{Msg: "no form factors"}
	}
	if iff == nil {
		iff = interference.None{}
	}
	if opts.MonteCarlo && opts.MCPoints < 1 {
		return base{}, &InitializationError{Msg: fmt.Sprintf("%d Monte-Carlo points", opts.MCPoints)}
	}
	b := base{parts: parts, iff: iff, opts: opts, fractions: make([]float64, len(parts))}
	for _, p := range parts {
		if p.FF == nil {
			return base{}, &InitializationError{Msg: "nil form factor"}
		}
		b.total += p.Abundance
	}
	if b.total > 0 {
		for i, p := range parts {
			b.fractions[i] = p.Abundance / b.total
		}
	}
	return b, nil
}

// Evaluate returns the diffuse intensity of e, integrated over the pixel
// if Monte-Carlo integration is enabled.
func (b *base) Evaluate(e *instrument.Element) (float64, error) {
	if b.total <= 0 {
		return 0, nil
	}
	if b.opts.MonteCarlo && e.SolidAngle() > 0 {
		return b.integrate(e)
	}
	return b.point(e)
}

// integrate averages the strategy over random points of the pixel. The
// random stream depends only on the element index.
func (b *base) integrate(e *instrument.Element) (float64, error) {
	src := rand.NewSource(uint64(e.Index)*0x9e3779b97f4a7c15 + 1)
	u := distuv.Uniform{Min: 0, Max: 1, Src: src}
	var sum float64
	for i := 0; i < b.opts.MCPoints; i++ {
		x, y := u.Rand(), u.Rand()
		sub := e.Sub(x, y)
		v, err := b.point(&sub)
		if err != nil {
			return 0, err
		}
		sum += e.IntegrationFactor(x, y) * v
	}
	return sum / float64(b.opts.MCPoints), nil
}

// amplitudes returns the DWBA amplitude of every part.
func (b *base) amplitudes(e *instrument.Element) ([]complex128, error) {
	wv := e.WavevectorInfo()
	ki, kf := e.KI(), e.MeanKF()
	ffs := make([]complex128, len(b.parts))
	for i, p := range b.parts {
		if b.opts.Fresnel == nil {
			ffs[i] = p.FF.Evaluate(wv)
		} else {
			in, _ := b.opts.Fresnel.InLayer(ki, p.Slice).ScalarWave()
			out, _ := b.opts.Fresnel.OutLayer(kf, p.Slice).ScalarWave()
			ffs[i] = formfactor.DWBA(p.FF, wv, in, out)
		}
		if cmplx.IsNaN(ffs[i]) {
			return nil, fmt.Errorf("strategy: form factor %d is NaN at element %d", i, e.Index)
		}
	}
	return ffs, nil
}

// amplitudesPol is the spin-resolved version of amplitudes.
func (b *base) amplitudesPol(e *instrument.Element) ([]cmat.Mat2, error) {
	wv := e.WavevectorInfo()
	ki, kf := e.KI(), e.MeanKF()
	ffs := make([]cmat.Mat2, len(b.parts))
	for i, p := range b.parts {
		if b.opts.Fresnel == nil {
			ffs[i] = p.FF.EvaluatePol(wv)
		} else {
			in := b.opts.Fresnel.InLayer(ki, p.Slice).MatrixWave()
			out := b.opts.Fresnel.OutLayer(kf, p.Slice).MatrixWave()
			ffs[i] = formfactor.DWBAPol(p.FF, wv, in, out)
		}
		if !ffs[i].IsFinite() {
			return nil, fmt.Errorf("strategy: polarized form factor %d is not finite at element %d", i, e.Index)
		}
	}
	return ffs, nil
}

func norm(z complex128) float64 { return real(z)*real(z) + imag(z)*imag(z) }

// absTrace returns |Tr m|.
func absTrace(m cmat.Mat2) float64 { return cmplx.Abs(m.Trace()) }
