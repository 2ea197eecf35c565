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
	"fmt"

	"github.com/spatialmodel/gisas/geometry"
	"github.com/spatialmodel/gisas/science/formfactor"
	"github.com/spatialmodel/gisas/science/interference"
)

// Version gives the version number.
const Version = "0.3.0"

// Approximation selects how form factors and the interference function
// of a layout are combined.
type Approximation int

const (
	// Decoupling assumes particle sizes and positions are uncorrelated.
	Decoupling Approximation = iota

	// SSCA is the size-spacing correlation approximation.
	SSCA
)

func (a Approximation) String() string {
	switch a {
	case Decoupling:
		return "decoupling"
	case SSCA:
		return "ssca"
	default:
		return fmt.Sprintf("Approximation(%d)", int(a))
	}
}

// Region is a homogeneous part of a particle.
type Region struct {
	Shape    formfactor.Shape
	Material Material

	// Position of the shape origin relative to the particle reference
	// point [nm].
	Position geometry.R3

	// Displaces is the material the region replaces, such as the shell
	// of a core-shell particle. Nil means the embedding medium.
	Displaces *Material
}

// IParticle is a scatterer that can be placed in a layout.
type IParticle interface {
	// Regions returns the homogeneous parts of the particle.
	Regions() []Region

	// Abundance returns the relative abundance of the particle in its
	// layout.
	Abundance() float64
}

// Expander is implemented by particle distributions, which stand for a
// weighted set of particles.
type Expander interface {
	Expand() ([]IParticle, error)
}

// Particle is a homogeneous particle.
type Particle struct {
	Shape    formfactor.Shape
	Material Material
	Position geometry.R3
	Weight   float64
}

// Regions implements IParticle.
func (p Particle) Regions() []Region {
	return []Region{{Shape: p.Shape, Material: p.Material, Position: p.Position}}
}

// Abundance implements IParticle.
func (p Particle) Abundance() float64 { return p.Weight }

// CoreShell is a particle made of a core embedded in a shell. The core
// position is relative to the shell origin.
type CoreShell struct {
	Core, Shell Particle
	Position    geometry.R3
	Weight      float64
}

// Regions implements IParticle.
func (c CoreShell) Regions() []Region {
	shellMat := c.Shell.Material
	return []Region{
		{Shape: c.Shell.Shape, Material: shellMat, Position: c.Position.Add(c.Shell.Position)},
		{Shape: c.Core.Shape, Material: c.Core.Material,
			Position:  c.Position.Add(c.Shell.Position).Add(c.Core.Position),
			Displaces: &shellMat},
	}
}

// Abundance implements IParticle.
func (c CoreShell) Abundance() float64 { return c.Weight }

// Composite is a rigid group of particles that scatter coherently.
type Composite struct {
	Parts    []IParticle
	Position geometry.R3
	Weight   float64
}

// Regions implements IParticle.
func (c Composite) Regions() []Region {
	var r []Region
	for _, p := range c.Parts {
		for _, reg := range p.Regions() {
			reg.Position = reg.Position.Add(c.Position)
			r = append(r, reg)
		}
	}
	return r
}

// Abundance implements IParticle.
func (c Composite) Abundance() float64 { return c.Weight }

// ParticleDistribution is a polydisperse particle population: Build
// creates the particle for one value of the distributed parameter, and
// the population abundance is split according to the distribution
// weights.
type ParticleDistribution struct {
	Build        func(value float64) (IParticle, error)
	Distribution Distribution
	NSamples     int
	SigmaFactor  float64
	Weight       float64
}

// Expand implements Expander.
func (d ParticleDistribution) Expand() ([]IParticle, error) {
	samples, err := d.Distribution.Samples(d.NSamples, d.SigmaFactor)
	if err != nil {
		return nil, err
	}
	r := make([]IParticle, len(samples))
	for i, s := range samples {
		p, err := d.Build(s.Value)
		if err != nil {
			return nil, fmt.Errorf("gisas: building distributed particle for value %g: %v", s.Value, err)
		}
		r[i] = weightedParticle{IParticle: p, weight: d.Weight * s.Weight}
	}
	return r, nil
}

// Regions is unused for distributions, which are expanded first.
func (d ParticleDistribution) Regions() []Region { return nil }

// Abundance implements IParticle.
func (d ParticleDistribution) Abundance() float64 { return d.Weight }

type weightedParticle struct {
	IParticle
	weight float64
}

func (w weightedParticle) Abundance() float64 { return w.weight }

// ParticleLayout is an ensemble of particles with one interference
// function.
type ParticleLayout struct {
	Particles []IParticle

	// Interference describes positional correlations; nil means none.
	Interference interference.Function

	Approximation Approximation

	// SurfaceDensity is the number of particles per nm². It scales the
	// layout intensity and sets the particle volume fraction of average
	// slice materials. Zero leaves the intensity per particle.
	SurfaceDensity float64
}

// expanded returns the layout particles with distributions expanded.
func (l ParticleLayout) expanded() ([]IParticle, error) {
	var r []IParticle
	for _, p := range l.Particles {
		if e, ok := p.(Expander); ok {
			ps, err := e.Expand()
			if err != nil {
				return nil, err
			}
			r = append(r, ps...)
			continue
		}
		r = append(r, p)
	}
	return r, nil
}

// Layer is one layer of a sample, possibly decorated with particles.
type Layer struct {
	Thickness float64
	Material  Material

	// Roughness of the top interface of the layer.
	Roughness *Roughness

	Layouts []ParticleLayout

	// NumberOfSlices is the number of slices the layer is split into
	// when average materials are used.
	NumberOfSlices int
}

// MultiLayer is a sample made of layers, from the ambient medium at the
// top to the substrate at the bottom.
type MultiLayer struct {
	Layers []Layer

	// ExternalField is the applied magnetic field H [A/m].
	ExternalField geometry.R3

	// CrossCorrLength is the vertical correlation length of interface
	// roughnesses [nm]; 0 means uncorrelated.
	CrossCorrLength float64
}

// Validate checks the sample description.
func (m *MultiLayer) Validate() error {
	if len(m.Layers) == 0 {
		return DomainErrorf("a multilayer needs at least one layer")
	}
	if m.CrossCorrLength < 0 {
		return DomainErrorf("cross-correlation length=%g should be >= 0", m.CrossCorrLength)
	}
	for i, l := range m.Layers {
		if l.Thickness < 0 {
			return DomainErrorf("layer %d thickness=%g but should be >= 0", i, l.Thickness)
		}
		if err := l.Material.Validate(); err != nil {
			return err
		}
		for j, lay := range l.Layouts {
			if len(lay.Particles) == 0 {
				return DomainErrorf("layout %d of layer %d has no particles", j, i)
			}
			if lay.SurfaceDensity < 0 {
				return DomainErrorf("layout %d of layer %d has negative surface density", j, i)
			}
			if v, ok := lay.Interference.(interface{ Validate() error }); ok {
				if err := v.Validate(); err != nil {
					return err
				}
			}
			ps, err := lay.expanded()
			if err != nil {
				return err
			}
			for _, p := range ps {
				for _, r := range p.Regions() {
					if r.Shape == nil {
						return DomainErrorf("a particle in layer %d has no shape", i)
					}
					if err := formfactor.CheckShape(r.Shape); err != nil {
						return err
					}
					if err := r.Material.Validate(); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}
