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
	"errors"
	"math"
	"testing"

	"github.com/spatialmodel/gisas/geometry"
)

func TestNewStackErrors(t *testing.T) {
	film := Material{Name: "film", Delta: 1e-6}
	tests := []struct {
		name   string
		slices []Slice
	}{
		{name: "empty"},
		{name: "negative thickness", slices: []Slice{{}, {Thickness: -1, Material: film}, {}}},
		{name: "infinite inner slice", slices: []Slice{{}, {Thickness: math.Inf(1)}, {}}},
		{name: "bad roughness", slices: []Slice{{}, {Roughness: &Roughness{Sigma: 1, Hurst: 2}}}},
		{name: "bad material", slices: []Slice{{}, {Material: Material{Delta: math.NaN()}}}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := NewStack(test.slices...)
			var de *DomainError
			if !errors.As(err, &de) {
				t.Errorf("want DomainError, have %v", err)
			}
		})
	}
}

func TestStackGeometry(t *testing.T) {
	r := &Roughness{Sigma: 1, Hurst: 0.5, CorrLength: 10}
	s, err := NewStack(
		Slice{Thickness: 7},
		Slice{Thickness: 10, Roughness: r},
		Slice{Thickness: 5},
		Slice{Thickness: 3, Roughness: r},
	)
	if err != nil {
		t.Fatal(err)
	}
	r.Sigma = 100
	if s.TopRoughness(1).Sigma != 1 {
		t.Error("the stack should keep its own copy of the roughness")
	}
	for i, want := range []float64{0, 0, -10, -15} {
		if have := s.RefZ(i); have != want {
			t.Errorf("RefZ(%d): have %g, want %g", i, have, want)
		}
	}
	for i, want := range []float64{0, 10, 5, 0} {
		if have := s.Thickness(i); have != want {
			t.Errorf("Thickness(%d): have %g, want %g", i, have, want)
		}
	}
	if !s.HasRoughness() || s.TopRoughness(0) != nil || s.TopRoughness(2) != nil {
		t.Error("roughness lookup is wrong")
	}

	q := geometry.R3{X: 0.1}
	if s.CrossSpectrum(q, 1, 3) != 0 {
		t.Error("uncorrelated interfaces should have no cross spectrum")
	}
	c := s.WithCrossCorrLength(15)
	want := s.TopRoughness(1).Spectrum(q) * math.Exp(-1)
	if have := c.CrossSpectrum(q, 1, 3); math.Abs(have-want) > 1e-12*want {
		t.Errorf("cross spectrum: have %g, want %g", have, want)
	}
	if c.CrossSpectrum(q, 1, 2) != 0 {
		t.Error("a sharp interface has no cross spectrum")
	}
	if s.CrossCorrLength() != 0 || c.CrossCorrLength() != 15 {
		t.Error("WithCrossCorrLength should not modify the receiver")
	}
}

func TestRoughnessSpectrum(t *testing.T) {
	r := Roughness{Sigma: 2, Hurst: 0.5, CorrLength: 10}
	if have, want := r.Spectrum(geometry.R3{Z: 5}), 4*math.Pi*0.5*4*100; math.Abs(have-want) > 1e-9 {
		t.Errorf("spectrum at zero in-plane q: have %g, want %g", have, want)
	}
	if r.Spectrum(geometry.R3{X: 1}) >= r.Spectrum(geometry.R3{X: 0.1}) {
		t.Error("the spectrum should decrease with q")
	}
}

func TestInvertB(t *testing.T) {
	b := geometry.R3{X: 1, Y: 2, Z: 3}
	s, err := NewStack(Slice{}, Slice{B: b})
	if err != nil {
		t.Fatal(err)
	}
	if s.IsScalar() {
		t.Error("a magnetized stack is not scalar")
	}
	inv := s.InvertB()
	if have := inv.Slice(1).B; have != b.Neg() {
		t.Errorf("have %v, want %v", have, b.Neg())
	}
	if s.Slice(1).B != b {
		t.Error("InvertB should not modify the receiver")
	}
}
