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

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// ParameterSample is one point of a discretized distribution.
type ParameterSample struct {
	Value, Weight float64
}

// Distribution is the probability distribution of a sample or beam
// parameter.
type Distribution interface {
	// Samples discretizes the distribution into n equidistant points
	// spanning sigmaFactor widths on each side of the center. The
	// weights sum to 1.
	Samples(n int, sigmaFactor float64) ([]ParameterSample, error)
}

// DistributionGate is a uniform distribution on [Min, Max].
type DistributionGate struct {
	Min, Max float64
}

// Samples implements Distribution. sigmaFactor is not used.
func (d DistributionGate) Samples(n int, _ float64) ([]ParameterSample, error) {
	if d.Max < d.Min {
		return nil, DomainErrorf("gate distribution min=%g > max=%g", d.Min, d.Max)
	}
	if n < 1 {
		return nil, DomainErrorf("number of distribution samples=%d but should be >0", n)
	}
	if n == 1 || d.Min == d.Max {
		return []ParameterSample{{Value: (d.Min + d.Max) / 2, Weight: 1}}, nil
	}
	u := distuv.Uniform{Min: d.Min, Max: d.Max}
	return weighted(equidistant(n, d.Min, d.Max), u.Prob)
}

// DistributionGaussian is a normal distribution.
type DistributionGaussian struct {
	Mean, StdDev float64
}

// Samples implements Distribution.
func (d DistributionGaussian) Samples(n int, sigmaFactor float64) ([]ParameterSample, error) {
	if n < 1 {
		return nil, DomainErrorf("number of distribution samples=%d but should be >0", n)
	}
	if d.StdDev < 0 {
		return nil, DomainErrorf("gaussian standard deviation=%g but should be >= 0", d.StdDev)
	}
	if n == 1 || d.StdDev == 0 {
		return []ParameterSample{{Value: d.Mean, Weight: 1}}, nil
	}
	if !(sigmaFactor > 0) {
		return nil, DomainErrorf("sigma factor=%g but should be >0", sigmaFactor)
	}
	norm := distuv.Normal{Mu: d.Mean, Sigma: d.StdDev}
	return weighted(equidistant(n, d.Mean-sigmaFactor*d.StdDev, d.Mean+sigmaFactor*d.StdDev), norm.Prob)
}

// DistributionLogNormal is a log-normal distribution with the given
// median and scale parameter (standard deviation of the logarithm).
type DistributionLogNormal struct {
	Median, Scale float64
}

// Samples implements Distribution.
func (d DistributionLogNormal) Samples(n int, sigmaFactor float64) ([]ParameterSample, error) {
	if n < 1 {
		return nil, DomainErrorf("number of distribution samples=%d but should be >0", n)
	}
	if !(d.Median > 0) || d.Scale < 0 {
		return nil, DomainErrorf("log-normal median=%g should be >0 and scale=%g >= 0", d.Median, d.Scale)
	}
	if n == 1 || d.Scale == 0 {
		return []ParameterSample{{Value: d.Median, Weight: 1}}, nil
	}
	if !(sigmaFactor > 0) {
		return nil, DomainErrorf("sigma factor=%g but should be >0", sigmaFactor)
	}
	ln := distuv.LogNormal{Mu: math.Log(d.Median), Sigma: d.Scale}
	lo := d.Median * math.Exp(-sigmaFactor*d.Scale)
	hi := d.Median * math.Exp(sigmaFactor*d.Scale)
	return weighted(equidistant(n, lo, hi), ln.Prob)
}

func equidistant(n int, lo, hi float64) []float64 {
	return floats.Span(make([]float64, n), lo, hi)
}

// weighted pairs the values with their normalized probability densities.
func weighted(values []float64, pdf func(float64) float64) ([]ParameterSample, error) {
	w := make([]float64, len(values))
	for i, v := range values {
		w[i] = pdf(v)
	}
	sum := floats.Sum(w)
	if !(sum > 0) {
		return nil, DomainErrorf("distribution has zero total weight")
	}
	floats.Scale(1/sum, w)
	r := make([]ParameterSample, len(values))
	for i, v := range values {
		r[i] = ParameterSample{Value: v, Weight: w[i]}
	}
	return r, nil
}
