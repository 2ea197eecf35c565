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

package gisasutil

import (
	"math"
	"strings"
	"testing"

	"github.com/Knetic/govaluate"
	"github.com/kr/pretty"
	"github.com/spatialmodel/gisas"
	"github.com/spatialmodel/gisas/geometry"
	"github.com/spatialmodel/gisas/science/formfactor"
	"github.com/spatialmodel/gisas/science/interference"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestExpr(t *testing.T) {
	params := govaluate.MapParameters{"radius": 5.0, "pi": math.Pi}
	tests := []struct {
		expr    string
		want    float64
		wantErr bool
	}{
		{expr: "2*radius", want: 10},
		{expr: "sqrt(radius*radius)", want: 5},
		{expr: "deg(180)", want: math.Pi},
		{expr: "pi/2", want: math.Pi / 2},
		{expr: "exp(0) + cos(0) - sin(0)", want: 2},
		{expr: "height*2", wantErr: true},
		{expr: "sqrt(1, 2)", wantErr: true},
		{expr: "radius > 2", wantErr: true},
	}
	for _, test := range tests {
		t.Run(test.expr, func(t *testing.T) {
			e, err := ParseExpr(test.expr)
			if err != nil {
				t.Fatal(err)
			}
			have, err := e.Eval(params)
			if test.wantErr {
				if err == nil {
					t.Errorf("want error, have %g", have)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !scalar.EqualWithinAbsOrRel(have, test.want, 1e-15, 1e-15) {
				t.Errorf("have %g, want %g", have, test.want)
			}
		})
	}
	if _, err := ParseExpr("2*("); err == nil {
		t.Error("invalid expression accepted")
	}
	if v, err := Num(3).Eval(nil); err != nil || v != 3 {
		t.Errorf("constant: have %g (%v), want 3", v, err)
	}
	var unset Expr
	if unset.IsSet() || !Num(0).IsSet() {
		t.Error("IsSet is wrong")
	}
}

func TestReadSample(t *testing.T) {
	f, err := LoadSample("testdata/spheres.toml")
	if err != nil {
		t.Fatal(err)
	}
	ml, err := f.Build(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(ml.Layers) != 2 {
		t.Fatalf("have %d layers, want 2", len(ml.Layers))
	}
	sub := ml.Layers[1]
	if want := (gisas.Material{Name: "substrate", Delta: 6e-6, Beta: 2e-8}); sub.Material != want {
		t.Errorf("substrate: %v", pretty.Diff(sub.Material, want))
	}
	if want := (gisas.Roughness{Sigma: 0.5, Hurst: 0.3, CorrLength: 10}); sub.Roughness == nil || *sub.Roughness != want {
		t.Errorf("roughness: have %v, want %v", sub.Roughness, want)
	}
	if ml.Layers[0].Material != gisas.Vacuum() {
		t.Errorf("ambient: have %v, want vacuum", ml.Layers[0].Material)
	}
	lay := ml.Layers[0].Layouts[0]
	if lay.Approximation != gisas.SSCA || lay.SurfaceDensity != 0.01 {
		t.Errorf("layout: have %v with density %g", lay.Approximation, lay.SurfaceDensity)
	}
	wantIff := interference.RadialParaCrystal{
		PeakDistance:        20,
		DampingLength:       1000,
		SizeSpacingCoupling: 1,
		PDF:                 interference.Gauss{Omega: 2},
	}
	if lay.Interference != wantIff {
		t.Errorf("interference: %v", pretty.Diff(lay.Interference, wantIff))
	}
	wantParticle := gisas.Particle{
		Shape:    formfactor.FullSphere{Radius: 5},
		Material: gisas.Material{Name: "particle", Delta: 6e-4, Beta: 2e-8},
		Weight:   1,
	}
	if len(lay.Particles) != 1 || lay.Particles[0] != wantParticle {
		t.Errorf("particles: %v", pretty.Diff(lay.Particles, []gisas.IParticle{wantParticle}))
	}

	ml, err = f.Build(map[string]float64{"radius": 4})
	if err != nil {
		t.Fatal(err)
	}
	lay = ml.Layers[0].Layouts[0]
	if have := lay.Interference.(interference.RadialParaCrystal).PeakDistance; have != 16 {
		t.Errorf("peak distance: have %g, want 16", have)
	}
	if have := lay.Particles[0].(gisas.Particle).Shape; have != (formfactor.FullSphere{Radius: 4}) {
		t.Errorf("shape: have %v, want radius 4", have)
	}
	if err := ml.Validate(); err != nil {
		t.Error(err)
	}
}

func TestParameterDistributions(t *testing.T) {
	f, err := LoadSample("testdata/spheres.toml")
	if err != nil {
		t.Fatal(err)
	}
	dists, err := f.ParameterDistributions()
	if err != nil {
		t.Fatal(err)
	}
	if len(dists) != 1 || dists[0].Name != "radius" || dists[0].Samples != 3 {
		t.Fatalf("have %# v", pretty.Formatter(dists))
	}
	samples, err := dists[0].Distribution.Samples(dists[0].Samples, dists[0].SigmaFactor)
	if err != nil {
		t.Fatal(err)
	}
	var sum float64
	for i, s := range samples {
		sum += s.Weight
		if want := 4 + float64(i); s.Value != want {
			t.Errorf("sample %d: have %g, want %g", i, s.Value, want)
		}
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Errorf("weights sum to %g", sum)
	}
}

func TestComplexParticles(t *testing.T) {
	f, err := LoadSample("testdata/particles.toml")
	if err != nil {
		t.Fatal(err)
	}
	ml, err := f.Build(nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := ml.Validate(); err != nil {
		t.Fatal(err)
	}
	film := ml.Layers[1]
	if film.Thickness != 15 {
		t.Errorf("film thickness: have %g, want 15", film.Thickness)
	}
	ps := film.Layouts[0].Particles
	if len(ps) != 3 {
		t.Fatalf("have %d particles, want 3", len(ps))
	}

	cs, ok := ps[0].(gisas.CoreShell)
	if !ok {
		t.Fatalf("particle 0 is %T, want CoreShell", ps[0])
	}
	if cs.Weight != 0.5 || cs.Shell.Shape != (formfactor.FullSphere{Radius: 6}) ||
		cs.Core.Shape != (formfactor.FullSphere{Radius: 3}) || cs.Core.Position != (geometry.R3{Z: 3}) {
		t.Errorf("core-shell: %# v", pretty.Formatter(cs))
	}

	comp, ok := ps[1].(gisas.Composite)
	if !ok {
		t.Fatalf("particle 1 is %T, want Composite", ps[1])
	}
	regions := comp.Regions()
	if len(regions) != 2 || comp.Weight != 0.25 {
		t.Fatalf("composite: %# v", pretty.Formatter(comp))
	}
	if want := (geometry.R3{X: 1, Z: 2}); regions[1].Position != want {
		t.Errorf("composite part position: have %v, want %v", regions[1].Position, want)
	}

	dist, ok := ps[2].(gisas.ParticleDistribution)
	if !ok {
		t.Fatalf("particle 2 is %T, want ParticleDistribution", ps[2])
	}
	members, err := dist.Expand()
	if err != nil {
		t.Fatal(err)
	}
	if len(members) != 3 {
		t.Fatalf("have %d members, want 3", len(members))
	}
	for i, m := range members {
		want := formfactor.FullSphere{Radius: 2 + float64(i)}
		if have := m.Regions()[0].Shape; have != want {
			t.Errorf("member %d: have %v, want %v", i, have, want)
		}
		if have := m.Abundance(); math.Abs(have-0.25/3) > 1e-12 {
			t.Errorf("member %d abundance: have %g, want %g", i, have, 0.25/3)
		}
	}
}

func TestSampleErrors(t *testing.T) {
	const base = `
[[Layers]]
Material = "vacuum"
`
	tests := []struct {
		name, sample string
		readErr      bool
	}{
		{name: "unknown field", sample: "Bogus = 1\n" + base, readErr: true},
		{name: "no layers", sample: "", readErr: true},
		{name: "bad expression", sample: base + `Thickness = "2*("`, readErr: true},
		{name: "undefined material", sample: base + "[[Layers]]\nMaterial = \"gold\"\n"},
		{name: "undefined parameter", sample: base + "Thickness = \"h\"\n"},
		{name: "bad shape", sample: base + "[[Layers.Layouts]]\n[[Layers.Layouts.Particles]]\nShape = \"torus\"\n"},
		{name: "bad approximation", sample: base + "[[Layers.Layouts]]\nApproximation = \"bogus\"\n"},
		{name: "bad interference", sample: base + "[[Layers.Layouts]]\n[Layers.Layouts.Interference]\nType = \"bogus\"\n"},
		{name: "bad profile", sample: base + "[[Layers.Layouts]]\n[Layers.Layouts.Interference]\nType = \"lattice1d\"\nProfile = \"gate\"\n"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f, err := ReadSample(strings.NewReader(test.sample))
			if test.readErr {
				if err == nil {
					t.Error("want read error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if _, err := f.Build(nil); err == nil {
				t.Error("want build error")
			}
		})
	}

	f := &SampleFile{Distributions: []DistributionConfig{{Name: "x", Type: "weibull"}}}
	if _, err := f.ParameterDistributions(); err == nil {
		t.Error("invalid distribution type accepted")
	}
}
