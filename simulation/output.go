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

	"github.com/spatialmodel/gisas/instrument"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// IntensityMap holds the simulated intensity of every detector channel,
// without detector resolution. Masked channels and channels outside the
// computed batch are zero.
type IntensityMap struct {
	Axes   []instrument.Axis
	Values []float64
}

func newIntensityMap(axes []instrument.Axis, size int) *IntensityMap {
	return &IntensityMap{Axes: axes, Values: make([]float64, size)}
}

// Shape returns the number of bins along each axis.
func (m *IntensityMap) Shape() []int {
	s := make([]int, len(m.Axes))
	for i, a := range m.Axes {
		s[i] = a.N
	}
	return s
}

// Matrix returns a two-dimensional map as a matrix whose rows follow the
// first axis and whose columns follow the second.
func (m *IntensityMap) Matrix() (*mat.Dense, error) {
	if len(m.Axes) != 2 {
		return nil, fmt.Errorf("simulation: a %d-dimensional intensity map is not a matrix", len(m.Axes))
	}
	data := make([]float64, len(m.Values))
	copy(data, m.Values)
	return mat.NewDense(m.Axes[0].N, m.Axes[1].N, data), nil
}

// Add adds the values of o, which must have the same shape, to m. It
// merges the results of separate batches.
func (m *IntensityMap) Add(o *IntensityMap) error {
	if len(o.Values) != len(m.Values) {
		return fmt.Errorf("simulation: cannot add maps with %d and %d channels", len(m.Values), len(o.Values))
	}
	floats.Add(m.Values, o.Values)
	return nil
}

// Total returns the sum over all channels.
func (m *IntensityMap) Total() float64 { return floats.Sum(m.Values) }
