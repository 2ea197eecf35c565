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
	"github.com/spatialmodel/gisas/science/formfactor"
	"github.com/spatialmodel/gisas/science/interference"
)

var (
	film     = Material{Name: "film", Delta: 2e-6, Beta: 1e-8}
	particle = Material{Name: "particle", Delta: 8e-6, Beta: 4e-8}
)

// buried returns a film holding spheres of radius 5 whose bottom lies
// 15 nm below the film surface.
func buried(density float64, slices int) *MultiLayer {
	return &MultiLayer{Layers: []Layer{
		{Material: Vacuum()},
		{
			Thickness: 20,
			Material:  film,
			Layouts: []ParticleLayout{{
				Particles: []IParticle{Particle{
					Shape:    formfactor.FullSphere{Radius: 5},
					Material: particle,
					Position: geometry.R3{Z: -15},
					Weight:   1,
				}},
				SurfaceDensity: density,
			}},
			NumberOfSlices: slices,
		},
		{Material: Material{Name: "substrate", Delta: 6e-6}, Roughness: &Roughness{Sigma: 0.5, Hurst: 0.5, CorrLength: 5}},
	}}
}

func TestProcessSample(t *testing.T) {
	ps, err := ProcessSample(buried(0, 4), ProcessOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if ps.Stack.Len() != 3 {
		t.Fatalf("have %d slices, want 3", ps.Stack.Len())
	}
	if ps.Polarized() {
		t.Error("a non-magnetic sample is not polarized")
	}
	if ps.Stack.TopRoughness(2) == nil {
		t.Error("the substrate roughness was lost")
	}
	if len(ps.Layouts) != 1 {
		t.Fatalf("have %d layouts, want 1", len(ps.Layouts))
	}
	lay := ps.Layouts[0]
	if lay.Layer != 1 || lay.Weight != 1 || len(lay.Particles) != 1 {
		t.Fatalf("layout: have layer %d weight %g with %d particles", lay.Layer, lay.Weight, len(lay.Particles))
	}
	p := lay.Particles[0]
	if p.Slice != 1 || p.Abundance != 1 {
		t.Errorf("particle in slice %d with abundance %g, want slice 1 and abundance 1", p.Slice, p.Abundance)
	}
	if pos := p.FF.(formfactor.Positioned).R; pos != (geometry.R3{Z: -15}) {
		t.Errorf("particle position %v, want z=-15", pos)
	}
}

func TestProcessSampleAverageMaterials(t *testing.T) {
	ps, err := ProcessSample(buried(0.01, 4), ProcessOptions{UseAvgMaterials: true})
	if err != nil {
		t.Fatal(err)
	}
	if ps.Stack.Len() != 6 {
		t.Fatalf("have %d slices, want 6", ps.Stack.Len())
	}
	if first, last := ps.LayerSlices(1); first != 1 || last != 5 {
		t.Errorf("film slices [%d, %d), want [1, 5)", first, last)
	}
	if first, last := ps.LayerSlices(2); first != 5 || last != 6 {
		t.Errorf("substrate slices [%d, %d), want [5, 6)", first, last)
	}
	for i, want := range []float64{0, 0, -5, -10, -15, -20} {
		if have := ps.Stack.RefZ(i); have != want {
			t.Errorf("slice %d at %g, want %g", i, have, want)
		}
	}

	// The sphere fills slices 2 and 3 with half its volume each.
	f := 0.01 * (2 * math.Pi * 125 / 3) / 5
	wantDelta := film.Delta + f*(particle.Delta-film.Delta)
	for i, want := range []float64{film.Delta, wantDelta, wantDelta, film.Delta} {
		m := ps.Stack.Material(1 + i)
		if math.Abs(m.Delta-want) > 1e-15 {
			t.Errorf("slice %d: have δ=%g, want %g", 1+i, m.Delta, want)
		}
		if m.Name != "film_avg" {
			t.Errorf("slice %d is %q, want film_avg", 1+i, m.Name)
		}
	}
	if ps.Stack.TopRoughness(5) == nil {
		t.Error("the substrate roughness was lost")
	}

	lay := ps.Layouts[0]
	if lay.Weight != 0.01 {
		t.Errorf("layout weight %g, want 0.01", lay.Weight)
	}
	p := lay.Particles[0]
	if p.Slice != 3 {
		t.Errorf("particle in slice %d, want 3", p.Slice)
	}
	if pos := p.FF.(formfactor.Positioned).R; pos != (geometry.R3{Z: -5}) {
		t.Errorf("particle position %v relative to its slice, want z=-5", pos)
	}
}

func TestProcessSampleMagnetic(t *testing.T) {
	ml := buried(0, 1)
	ml.ExternalField = geometry.R3{Y: 1e5}
	ps, err := ProcessSample(ml, ProcessOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !ps.Polarized() {
		t.Error("an applied field makes the sample polarized")
	}
	for i := 0; i < ps.Stack.Len(); i++ {
		if have, want := ps.Stack.Slice(i).B, (geometry.R3{Y: 1e5 * Mu0}); have != want {
			t.Errorf("slice %d: have B=%v, want %v", i, have, want)
		}
	}
}

func TestProcessSampleComposite(t *testing.T) {
	ml := buried(0, 1)
	shell := particle
	ml.Layers[1].Layouts[0].Particles = []IParticle{
		CoreShell{
			Core:     Particle{Shape: formfactor.FullSphere{Radius: 2}, Material: Material{Name: "core", Delta: 1e-5}, Position: geometry.R3{Z: 3}},
			Shell:    Particle{Shape: formfactor.FullSphere{Radius: 5}, Material: shell},
			Position: geometry.R3{Z: -15},
			Weight:   2,
		},
		Composite{
			Parts: []IParticle{
				Particle{Shape: formfactor.Box{Length: 2, Width: 2, Height: 2}, Material: particle},
				Particle{Shape: formfactor.Box{Length: 2, Width: 2, Height: 2}, Material: particle, Position: geometry.R3{X: 3}},
			},
			Position: geometry.R3{Z: -10},
			Weight:   1,
		},
	}
	ps, err := ProcessSample(ml, ProcessOptions{})
	if err != nil {
		t.Fatal(err)
	}
	parts := ps.Layouts[0].Particles
	if len(parts) != 2 || parts[0].Abundance != 2 {
		t.Fatalf("have %d particles, want 2", len(parts))
	}
	for i, p := range parts {
		if _, ok := p.FF.(formfactor.Sum); !ok {
			t.Errorf("particle %d has form factor %T, want a coherent sum of its regions", i, p.FF)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(ml *MultiLayer)
	}{
		{name: "no layers", modify: func(ml *MultiLayer) { ml.Layers = nil }},
		{name: "negative thickness", modify: func(ml *MultiLayer) { ml.Layers[1].Thickness = -1 }},
		{name: "negative cross-correlation", modify: func(ml *MultiLayer) { ml.CrossCorrLength = -1 }},
		{name: "empty layout", modify: func(ml *MultiLayer) { ml.Layers[1].Layouts[0].Particles = nil }},
		{name: "negative density", modify: func(ml *MultiLayer) { ml.Layers[1].Layouts[0].SurfaceDensity = -1 }},
		{name: "no shape", modify: func(ml *MultiLayer) {
			ml.Layers[1].Layouts[0].Particles = []IParticle{Particle{Material: particle, Weight: 1}}
		}},
		{name: "bad interference", modify: func(ml *MultiLayer) {
			ml.Layers[1].Layouts[0].Interference = interference.RadialParaCrystal{PDF: interference.Gauss{Omega: 1}}
		}},
		{name: "bad material", modify: func(ml *MultiLayer) { ml.Layers[2].Material.Beta = -1 }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ml := buried(0.01, 1)
			test.modify(ml)
			err := ml.Validate()
			if err == nil {
				t.Fatal("want error")
			}
			if _, err := ProcessSample(ml, ProcessOptions{}); err == nil {
				t.Error("ProcessSample should validate the sample")
			}
		})
	}
	var de *DomainError
	ml := buried(0, 1)
	ml.Layers[1].Thickness = -1
	if err := ml.Validate(); !errors.As(err, &de) {
		t.Errorf("want DomainError, have %v", err)
	}
}
