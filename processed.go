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
	"github.com/spatialmodel/gisas/science/formfactor"
	"github.com/spatialmodel/gisas/science/interference"
)

// ProcessOptions control how a MultiLayer is turned into slices.
type ProcessOptions struct {
	// UseAvgMaterials replaces the material of every finite layer that
	// holds particles by the volume average of the layer and particle
	// materials, after splitting the layer into Layer.NumberOfSlices
	// slices.
	UseAvgMaterials bool
}

// SlicedParticle is a particle assigned to one slice of a processed
// sample.
type SlicedParticle struct {
	// FF is the Born amplitude of the particle relative to the slice
	// material, positioned relative to the slice reference plane.
	FF        formfactor.FormFactor
	Abundance float64
	Slice     int
}

// SlicedLayout is a particle layout whose particles have been assigned
// to slices.
type SlicedLayout struct {
	Layer         int
	Particles     []SlicedParticle
	Interference  interference.Function
	Approximation Approximation

	// Weight multiplies the layout intensity: the surface density of
	// the layout, or 1 if it is not set.
	Weight float64
}

// ProcessedSample is a MultiLayer reduced to a stack of slices and the
// particle layouts embedded in them.
type ProcessedSample struct {
	Stack   *Stack
	Layouts []SlicedLayout

	// layerSlices[i] is the first slice of layer i; the last entry is
	// the number of slices.
	layerSlices []int
}

// Polarized reports whether the sample requires the magnetic solver
// and polarized strategies.
func (p *ProcessedSample) Polarized() bool { return !p.Stack.IsScalar() }

// LayerSlices returns the range [first, last) of slices that layer i was
// split into.
func (p *ProcessedSample) LayerSlices(i int) (first, last int) {
	return p.layerSlices[i], p.layerSlices[i+1]
}

// ProcessSample validates ml and flattens it into slices.
func ProcessSample(ml *MultiLayer, opts ProcessOptions) (*ProcessedSample, error) {
	if err := ml.Validate(); err != nil {
		return nil, err
	}
	nLayers := len(ml.Layers)

	// Reference plane of each layer: its top interface, or the surface
	// for the ambient layer.
	layerRef := make([]float64, nLayers)
	for i := 2; i < nLayers; i++ {
		layerRef[i] = layerRef[i-1] - ml.Layers[i-1].Thickness
	}

	expanded := make([][][]IParticle, nLayers)
	for i, l := range ml.Layers {
		expanded[i] = make([][]IParticle, len(l.Layouts))
		for j, lay := range l.Layouts {
			ps, err := lay.expanded()
			if err != nil {
				return nil, err
			}
			expanded[i][j] = ps
		}
	}

	var slices []Slice
	ps := &ProcessedSample{layerSlices: make([]int, nLayers+1)}
	for i, l := range ml.Layers {
		ps.layerSlices[i] = len(slices)
		finite := i != 0 && i != nLayers-1
		n := 1
		if opts.UseAvgMaterials && finite && len(l.Layouts) > 0 && l.NumberOfSlices > 1 {
			n = l.NumberOfSlices
		}
		d := l.Thickness / float64(n)
		for s := 0; s < n; s++ {
			sl := Slice{Thickness: d, Material: l.Material}
			if s == 0 {
				sl.Roughness = l.Roughness
			}
			if opts.UseAvgMaterials && finite && len(l.Layouts) > 0 {
				zhi := layerRef[i] - float64(s)*d
				mat, err := averageSliceMaterial(l, expanded[i], layerRef[i], zhi-d, zhi)
				if err != nil {
					return nil, err
				}
				sl.Material = mat
			}
			sl.B = ml.ExternalField.Add(sl.Material.Magnetization).Scale(Mu0)
			slices = append(slices, sl)
		}
	}
	ps.layerSlices[nLayers] = len(slices)

	stack, err := NewStack(slices...)
	if err != nil {
		return nil, err
	}
	ps.Stack = stack.WithCrossCorrLength(ml.CrossCorrLength)

	for i, l := range ml.Layers {
		for j, lay := range l.Layouts {
			sl := SlicedLayout{
				Layer:         i,
				Interference:  lay.Interference,
				Approximation: lay.Approximation,
				Weight:        1,
			}
			if lay.SurfaceDensity > 0 {
				sl.Weight = lay.SurfaceDensity
			}
			for _, p := range expanded[i][j] {
				sl.Particles = append(sl.Particles, ps.sliceParticle(p, i, layerRef[i]))
			}
			ps.Layouts = append(ps.Layouts, sl)
		}
	}
	return ps, nil
}

// sliceParticle assigns p, which belongs to layer i, to the slice that
// contains its mid-height.
func (ps *ProcessedSample) sliceParticle(p IParticle, layer int, ref float64) SlicedParticle {
	regions := p.Regions()
	bottom, top := math.Inf(1), math.Inf(-1)
	for _, r := range regions {
		z := ref + r.Position.Z
		bottom = math.Min(bottom, z)
		top = math.Max(top, z+r.Shape.TopZ())
	}
	mid := (bottom + top) / 2
	first, last := ps.LayerSlices(layer)
	slice := first
	for s := first + 1; s < last; s++ {
		if mid <= ps.Stack.RefZ(s) {
			slice = s
		}
	}
	ambient := ps.Stack.Material(slice)
	offset := geometry.R3{Z: ref - ps.Stack.RefZ(slice)}
	ff := make(formfactor.Sum, len(regions))
	for k, r := range regions {
		displaced := ambient
		if r.Displaces != nil {
			displaced = *r.Displaces
		}
		ff[k] = formfactor.Positioned{
			FF: formfactor.Material{Shape: r.Shape, Contrast: contrast{particle: r.Material, displaced: displaced}},
			R:  r.Position.Add(offset),
		}
	}
	var result formfactor.FormFactor = ff
	if len(ff) == 1 {
		result = ff[0]
	}
	return SlicedParticle{FF: result, Abundance: p.Abundance(), Slice: slice}
}

// averageSliceMaterial returns the volume-averaged material of the part
// of layer l between heights zlo and zhi.
func averageSliceMaterial(l Layer, particles [][]IParticle, ref, zlo, zhi float64) (Material, error) {
	dz := zhi - zlo
	if dz <= 0 {
		return l.Material, nil
	}
	var mats []Material
	var fracs []float64
	for j, lay := range l.Layouts {
		var total float64
		for _, p := range particles[j] {
			total += p.Abundance()
		}
		if total <= 0 || lay.SurfaceDensity == 0 {
			continue
		}
		for _, p := range particles[j] {
			w := lay.SurfaceDensity * p.Abundance() / total
			for _, r := range p.Regions() {
				zb := ref + r.Position.Z
				f := w * r.Shape.VolumeBetween(zlo-zb, zhi-zb) / dz
				if f == 0 {
					continue
				}
				mats = append(mats, r.Material)
				fracs = append(fracs, f)
				if r.Displaces != nil {
					mats = append(mats, *r.Displaces)
					fracs = append(fracs, -f)
				}
			}
		}
	}
	return averageMaterial(l.Material, mats, fracs)
}
