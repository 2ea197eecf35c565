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
	"errors"
	"math"
	"testing"

	"github.com/spatialmodel/gisas"
	"github.com/spatialmodel/gisas/geometry"
	"github.com/spatialmodel/gisas/internal/cmat"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestFootprint(t *testing.T) {
	tests := []struct {
		name  string
		f     Footprint
		alpha float64
		want  float64
	}{
		{name: "square no width", f: FootprintSquare{}, alpha: 0.01, want: 1},
		{name: "square negative", f: FootprintSquare{WidthRatio: 0.1}, alpha: -0.01, want: 0},
		{name: "square partial", f: FootprintSquare{WidthRatio: 0.1}, alpha: 0.01, want: math.Sin(0.01) / 0.1},
		{name: "square full", f: FootprintSquare{WidthRatio: 0.01}, alpha: 0.5, want: 1},
		{name: "gauss no width", f: FootprintGauss{}, alpha: 0.01, want: 1},
		{name: "gauss above 90°", f: FootprintGauss{WidthRatio: 0.1}, alpha: 2, want: 0},
		{name: "gauss partial", f: FootprintGauss{WidthRatio: 0.1}, alpha: 0.01, want: math.Erf(math.Sin(0.01) / 0.1 / math.Sqrt2)},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if have := test.f.Factor(test.alpha); !scalar.EqualWithinAbsOrRel(have, test.want, 1e-14, 1e-14) {
				t.Errorf("have %g, want %g", have, test.want)
			}
		})
	}
}

func TestAnalyzer(t *testing.T) {
	tests := []struct {
		name    string
		a       Analyzer
		want    cmat.Mat2
		wantErr bool
	}{
		{name: "none", a: Analyzer{}, want: cmat.Identity2()},
		{name: "up", a: Analyzer{Direction: geometry.R3{Z: 2}, Efficiency: 1, Transmission: 0.5}, want: cmat.Diag2(1, 0)},
		{name: "down", a: Analyzer{Direction: geometry.R3{Z: 1}, Efficiency: -1, Transmission: 0.5}, want: cmat.Diag2(0, 1)},
		{name: "x", a: Analyzer{Direction: geometry.R3{X: 1}, Efficiency: 1, Transmission: 0.5},
			want: cmat.Mat2{{0.5, 0.5}, {0.5, 0.5}}},
		{name: "bad efficiency", a: Analyzer{Direction: geometry.R3{Z: 1}, Efficiency: 2, Transmission: 0.5}, wantErr: true},
		{name: "bad transmission", a: Analyzer{Direction: geometry.R3{Z: 1}, Efficiency: 1}, wantErr: true},
		{name: "no direction", a: Analyzer{Efficiency: 1, Transmission: 1}, wantErr: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			have, err := test.a.Operator()
			if test.wantErr {
				var de *gisas.DomainError
				if !errors.As(err, &de) {
					t.Errorf("want DomainError, have %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if have != test.want {
				t.Errorf("have %v, want %v", have, test.want)
			}
		})
	}
}

func TestBeamPolarization(t *testing.T) {
	b := NewBeam(0.1, 0.01, 0)
	if have, want := b.DensityMatrix(), cmat.Identity2().Scale(0.5); have != want {
		t.Errorf("unpolarized: have %v, want %v", have, want)
	}
	if err := b.SetPolarization(geometry.R3{Z: 1}); err != nil {
		t.Fatal(err)
	}
	if have, want := b.DensityMatrix(), cmat.Diag2(1, 0); have != want {
		t.Errorf("spin up: have %v, want %v", have, want)
	}
	if err := b.SetPolarization(geometry.R3{X: 0.8, Y: 0.8}); err == nil {
		t.Error("a Bloch vector longer than 1 should be rejected")
	}
	if tr := b.DensityMatrix().Trace(); tr != 1 {
		t.Errorf("trace %v, want 1", tr)
	}
}

func TestBeamValidate(t *testing.T) {
	for _, w := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if err := NewBeam(w, 0.01, 0).Validate(); err == nil {
			t.Errorf("wavelength %g accepted", w)
		}
	}
	b := NewBeam(0.1, 0.01, 0)
	b.Intensity = 0
	if err := b.Validate(); err != nil {
		t.Errorf("zero intensity should be valid: %v", err)
	}
}

func TestSphericalDetector(t *testing.T) {
	d := NewSphericalDetector(4, -0.02, 0.02, 3, 0, 0.03)
	beam := NewBeam(0.1, 0.015, 0.001)
	elements, err := d.Elements(beam)
	if err != nil {
		t.Fatal(err)
	}
	if len(elements) != 12 {
		t.Fatalf("have %d elements, want 12", len(elements))
	}
	var total float64
	nSpecular := 0
	for i, e := range elements {
		if e.Index != i {
			t.Errorf("element %d has index %d", i, e.Index)
		}
		wantPhi, _ := d.Phi.Bin(i / 3)
		wantAlpha, _ := d.Alpha.Bin(i % 3)
		if e.PhiMin != wantPhi || e.AlphaMin != wantAlpha {
			t.Errorf("element %d at (%g, %g), want (%g, %g)", i, e.PhiMin, e.AlphaMin, wantPhi, wantAlpha)
		}
		total += e.SolidAngle()
		if e.Specular {
			nSpecular++
			if e.Index != 2*3+1 {
				t.Errorf("specular element %d, want 7", e.Index)
			}
		}
	}
	if nSpecular != 1 {
		t.Errorf("%d specular elements, want 1", nSpecular)
	}
	want := 0.04 * math.Sin(0.03)
	if !scalar.EqualWithinAbsOrRel(total, want, 1e-14, 1e-12) {
		t.Errorf("total solid angle %g, want %g", total, want)
	}

	d.AddMask(Rectangle{PhiMin: -0.02, PhiMax: 0, AlphaMin: 0, AlphaMax: 0.012})
	d.AddMask(Ellipse{PhiCenter: 0.015, AlphaCenter: 0.025, PhiRadius: 0.001, AlphaRadius: 0.001})
	elements, err = d.Elements(beam)
	if err != nil {
		t.Fatal(err)
	}
	var indices []int
	for _, e := range elements {
		indices = append(indices, e.Index)
		if d.IsMasked(e.Index) {
			t.Errorf("masked channel %d simulated", e.Index)
		}
	}
	wantIndices := []int{1, 2, 4, 5, 6, 7, 8, 9, 10}
	if len(indices) != len(wantIndices) {
		t.Fatalf("have channels %v, want %v", indices, wantIndices)
	}
	for i := range indices {
		if indices[i] != wantIndices[i] {
			t.Errorf("have channels %v, want %v", indices, wantIndices)
			break
		}
	}
}

func TestDetectorValidate(t *testing.T) {
	d := NewSphericalDetector(0, 0, 1, 3, 0, 1)
	if _, err := d.Elements(NewBeam(0.1, 0.01, 0)); err == nil {
		t.Error("empty axis accepted")
	}
	d = NewSphericalDetector(2, 0, 1, 3, 0, 1)
	if _, err := d.Elements(NewBeam(0, 0.01, 0)); err == nil {
		t.Error("zero wavelength accepted")
	}
}

func TestIntegrationFactor(t *testing.T) {
	e := Element{Wavelength: 0.1, AlphaMin: 0.2, DAlpha: 0.3, PhiMin: -0.1, DPhi: 0.2}
	const n = 10000
	var sum float64
	for i := 0; i < n; i++ {
		sum += e.IntegrationFactor((float64(i)+0.5)/n, 0.5)
	}
	if mean := sum / n; math.Abs(mean-1) > 1e-6 {
		t.Errorf("mean integration factor %g, want 1", mean)
	}
	point := e.Sub(0.25, 0.75)
	if point.IntegrationFactor(0.3, 0.3) != 1 || point.SolidAngle() != 0 {
		t.Error("a point element should have unit weight and no solid angle")
	}
	if have, want := point.MeanKF(), e.KF(0.25, 0.75); have != want {
		t.Errorf("sub-element direction %v, want %v", have, want)
	}
}

func TestSpecularScan(t *testing.T) {
	s := NewSpecularScan(5, 0, 0.04)
	elements, err := s.Elements(NewBeam(0.1, 0.3, 0))
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0, 0.01, 0.02, 0.03, 0.04}
	for i, e := range elements {
		if !scalar.EqualWithinAbsOrRel(e.AlphaI, want[i], 1e-15, 1e-15) || !e.Specular {
			t.Errorf("element %d: αi=%g specular=%v, want %g", i, e.AlphaI, e.Specular, want[i])
		}
	}
	if s.Dimension() != 1 || s.IsMasked(3) {
		t.Error("a scan is one-dimensional and unmasked")
	}
	if e := elements[0]; e.SinAlphaI() != 1 {
		t.Errorf("sin αi at zero angle: have %g, want 1", e.SinAlphaI())
	}
}

func TestBackground(t *testing.T) {
	if have := (ConstantBackground{Value: 3}).Add(2); have != 5 {
		t.Errorf("have %g, want 5", have)
	}
}
