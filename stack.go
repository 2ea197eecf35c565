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

package gisas

import (
	"math"

	"github.com/spatialmodel/gisas/geometry"
)

// Roughness describes a self-affine rough interface.
type Roughness struct {
	// Sigma is the rms roughness [nm].
	Sigma float64

	// Hurst is the Hurst parameter in (0, 1], describing how jagged
	// the interface is.
	Hurst float64

	// CorrLength is the lateral correlation length [nm].
	CorrLength float64
}

// Spectrum returns the power spectral density of the interface height
// at the in-plane part of q.
func (r Roughness) Spectrum(q geometry.R3) float64 {
	ξ2 := r.CorrLength * r.CorrLength
	qpar2 := q.X*q.X + q.Y*q.Y
	return 4 * math.Pi * r.Hurst * r.Sigma * r.Sigma * ξ2 * math.Pow(1+qpar2*ξ2, -1-r.Hurst)
}

func (r Roughness) validate() error {
	if r.Sigma < 0 || r.CorrLength < 0 || math.IsNaN(r.Sigma) || math.IsNaN(r.CorrLength) {
		return DomainErrorf("roughness sigma=%g and correlation length=%g should be >= 0", r.Sigma, r.CorrLength)
	}
	if r.Hurst < 0 || r.Hurst > 1 || math.IsNaN(r.Hurst) {
		return DomainErrorf("roughness Hurst parameter=%g should be in [0, 1]", r.Hurst)
	}
	return nil
}

// Slice is one homogeneous layer of a stratified medium.
type Slice struct {
	// Thickness [nm]. It is ignored for the first and last slices,
	// which are semi-infinite.
	Thickness float64
	Material  Material

	// Roughness of the interface at the top of the slice; nil means a
	// sharp interface. It is ignored for the first slice.
	Roughness *Roughness

	// B is the magnetic induction inside the slice [T].
	B geometry.R3
}

// Stack is an immutable stratified medium, ordered from the ambient
// medium at the top down to the substrate.
type Stack struct {
	slices          []Slice
	crossCorrLength float64
}

// NewStack creates a stack from the given slices.
func NewStack(slices ...Slice) (*Stack, error) {
	if len(slices) == 0 {
		return nil, DomainErrorf("a layer stack needs at least one slice")
	}
	s := &Stack{slices: make([]Slice, len(slices))}
	for i, sl := range slices {
		if sl.Thickness < 0 || math.IsNaN(sl.Thickness) {
			return nil, DomainErrorf("slice %d thickness=%g but should be >= 0", i, sl.Thickness)
		}
		if math.IsInf(sl.Thickness, 1) && i != 0 && i != len(slices)-1 {
			return nil, DomainErrorf("only the first and last slices may be infinitely thick")
		}
		if err := sl.Material.Validate(); err != nil {
			return nil, err
		}
		if sl.Roughness != nil {
			if err := sl.Roughness.validate(); err != nil {
				return nil, err
			}
			r := *sl.Roughness
			sl.Roughness = &r
		}
		s.slices[i] = sl
	}
	return s, nil
}

// WithCrossCorrLength returns a copy of s whose interface roughnesses are
// correlated over the vertical length l [nm]; 0 means uncorrelated.
func (s *Stack) WithCrossCorrLength(l float64) *Stack {
	c := *s
	c.crossCorrLength = l
	return &c
}

// Len returns the number of slices.
func (s *Stack) Len() int { return len(s.slices) }

// Slice returns slice i.
func (s *Stack) Slice(i int) Slice { return s.slices[i] }

// Thickness returns the thickness of slice i, which is zero for the
// semi-infinite first and last slices.
func (s *Stack) Thickness(i int) float64 {
	if i == 0 || i == len(s.slices)-1 {
		return 0
	}
	return s.slices[i].Thickness
}

// Material returns the material of slice i.
func (s *Stack) Material(i int) Material { return s.slices[i].Material }

// TopRoughness returns the roughness at the top of slice i, or nil.
func (s *Stack) TopRoughness(i int) *Roughness {
	if i == 0 {
		return nil
	}
	return s.slices[i].Roughness
}

// HasRoughness reports whether any interface is rough.
func (s *Stack) HasRoughness() bool {
	for i := 1; i < len(s.slices); i++ {
		if r := s.slices[i].Roughness; r != nil && r.Sigma > 0 {
			return true
		}
	}
	return false
}

// RefZ returns the height of the reference plane of slice i: its top
// interface, or the sample surface (z = 0) for the ambient slice.
// Wave amplitudes and particle positions inside a slice are given
// relative to this plane.
func (s *Stack) RefZ(i int) float64 {
	var z float64
	for j := 1; j < i; j++ {
		z -= s.Thickness(j)
	}
	return z
}

// IsScalar reports whether no slice carries a magnetic induction, so
// that the scalar specular solver applies.
func (s *Stack) IsScalar() bool {
	for _, sl := range s.slices {
		if !sl.B.IsZero() {
			return false
		}
	}
	return true
}

// InvertB returns a copy of s with all magnetic inductions reversed. It
// describes the time-reversed propagation of outgoing waves.
func (s *Stack) InvertB() *Stack {
	c := &Stack{slices: make([]Slice, len(s.slices)), crossCorrLength: s.crossCorrLength}
	copy(c.slices, s.slices)
	for i := range c.slices {
		c.slices[i].B = c.slices[i].B.Neg()
	}
	return c
}

// CrossCorrLength returns the vertical correlation length of the
// interface roughnesses.
func (s *Stack) CrossCorrLength() float64 { return s.crossCorrLength }

// CrossSpectrum returns the cross-correlation spectral density between
// the roughness at the top of slices i and j.
func (s *Stack) CrossSpectrum(q geometry.R3, i, j int) float64 {
	if s.crossCorrLength == 0 {
		return 0
	}
	ri, rj := s.TopRoughness(i), s.TopRoughness(j)
	if ri == nil || rj == nil || ri.Sigma == 0 || rj.Sigma == 0 {
		return 0
	}
	dz := math.Abs(s.RefZ(i) - s.RefZ(j))
	return 0.5 * ((rj.Sigma/ri.Sigma)*ri.Spectrum(q) + (ri.Sigma/rj.Sigma)*rj.Spectrum(q)) *
		math.Exp(-dz/s.crossCorrLength)
}
