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

	"github.com/spatialmodel/gisas"
)

// SampleBuilder builds the sample for a set of parameter values. The
// keys of params are the names of the attached parameter distributions.
type SampleBuilder interface {
	Build(params map[string]float64) (*gisas.MultiLayer, error)
}

// SampleBuilderFunc adapts a function to the SampleBuilder interface.
type SampleBuilderFunc func(params map[string]float64) (*gisas.MultiLayer, error)

// Build implements SampleBuilder.
func (f SampleBuilderFunc) Build(params map[string]float64) (*gisas.MultiLayer, error) {
	return f(params)
}

// FixedSample is a sample that does not depend on any parameter.
type FixedSample struct {
	Sample *gisas.MultiLayer
}

// Build implements SampleBuilder.
func (f FixedSample) Build(map[string]float64) (*gisas.MultiLayer, error) {
	if f.Sample == nil {
		return nil, &ConfigError{Msg: "no sample"}
	}
	return f.Sample, nil
}

// ParameterSample is one point of a discretized parameter distribution.
type ParameterSample = gisas.ParameterSample

// ParameterDistribution attaches a distribution to the named sample
// parameter. The simulation is averaged over Samples values spanning
// SigmaFactor widths of the distribution.
type ParameterDistribution struct {
	Name         string
	Distribution gisas.Distribution
	Samples      int
	SigmaFactor  float64
}

// combination is one point of the Cartesian product of the parameter
// distributions.
type combination struct {
	params map[string]float64
	weight float64
}

// combinations enumerates the Cartesian product of the discretized
// distributions. The last distribution varies fastest.
func combinations(dists []ParameterDistribution) ([]combination, error) {
	result := []combination{{params: map[string]float64{}, weight: 1}}
	seen := make(map[string]bool)
	for _, d := range dists {
		if d.Name == "" {
			return nil, &ConfigError{Msg: "parameter distribution without a name"}
		}
		if seen[d.Name] {
			return nil, &ConfigError{Msg: fmt.Sprintf("parameter %q has more than one distribution", d.Name)}
		}
		seen[d.Name] = true
		if d.Distribution == nil {
			return nil, &ConfigError{Msg: fmt.Sprintf("parameter %q has no distribution", d.Name)}
		}
		samples, err := d.Distribution.Samples(d.Samples, d.SigmaFactor)
		if err != nil {
			return nil, fmt.Errorf("simulation: parameter %q: %w", d.Name, err)
		}
		next := make([]combination, 0, len(result)*len(samples))
		for _, c := range result {
			for _, s := range samples {
				p := make(map[string]float64, len(c.params)+1)
				for k, v := range c.params {
					p[k] = v
				}
				p[d.Name] = s.Value
				next = append(next, combination{params: p, weight: c.weight * s.Weight})
			}
		}
		result = next
	}
	return result, nil
}
