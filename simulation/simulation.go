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

// Package simulation runs grazing-incidence scattering and reflectometry
// simulations: it splits the detector into batches and worker ranges,
// averages over parameter distributions and normalizes the result.
package simulation

import (
	"fmt"
	"sync"

	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/gisas"
	"github.com/spatialmodel/gisas/fresnel"
	"github.com/spatialmodel/gisas/instrument"
	"github.com/spatialmodel/gisas/science/strategy"
)

// Detector produces the simulation elements of an instrument.
type Detector interface {
	// Dimension is the number of detector axes.
	Dimension() int

	// Size is the number of channels, masked ones included.
	Size() int

	Axes() []instrument.Axis
	IsMasked(i int) bool

	// Elements returns the unmasked channels illuminated by b, in
	// channel order.
	Elements(b instrument.Beam) ([]instrument.Element, error)
}

// Background is added to every channel after normalization.
type Background interface {
	Add(intensity float64) float64
}

type kind int

const (
	gisasKind kind = iota
	specularKind
)

// Simulation is a single simulation run. Its fields may be changed
// between runs but not during one.
type Simulation struct {
	Sample        SampleBuilder
	Beam          instrument.Beam
	Detector      Detector
	Options       Options
	Distributions []ParameterDistribution
	Background    Background

	// Log receives progress messages. It defaults to the standard
	// logrus logger.
	Log logrus.FieldLogger

	kind kind

	mu    sync.Mutex
	state State
}

// NewGISAS returns a grazing-incidence small-angle scattering simulation
// of sample on an area detector.
func NewGISAS(sample SampleBuilder, beam instrument.Beam, detector *instrument.SphericalDetector) *Simulation {
	return &Simulation{
		Sample:   sample,
		Beam:     beam,
		Detector: detector,
		Options:  DefaultOptions(),
		Log:      logrus.StandardLogger(),
		kind:     gisasKind,
	}
}

// NewSpecular returns a reflectometry simulation of sample over the
// grazing angles of scan.
func NewSpecular(sample SampleBuilder, beam instrument.Beam, scan *instrument.SpecularScan) *Simulation {
	return &Simulation{
		Sample:   sample,
		Beam:     beam,
		Detector: scan,
		Options:  DefaultOptions(),
		Log:      logrus.StandardLogger(),
		kind:     specularKind,
	}
}

// State returns the current state of the simulation.
func (s *Simulation) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Simulation) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	s.log().WithField("state", st).Debug("simulation: state change")
}

func (s *Simulation) log() logrus.FieldLogger {
	if s.Log == nil {
		return logrus.StandardLogger()
	}
	return s.Log
}

func (s *Simulation) debugEnabled() bool {
	switch l := s.log().(type) {
	case *logrus.Logger:
		return l.IsLevelEnabled(logrus.DebugLevel)
	case *logrus.Entry:
		return l.Logger.IsLevelEnabled(logrus.DebugLevel)
	}
	return true
}

// Run computes the current batch and returns its intensity map.
func (s *Simulation) Run() (*IntensityMap, error) {
	s.setState(Preparing)
	elements, combos, err := s.prepare()
	if err != nil {
		s.setState(Failed)
		return nil, err
	}
	start, end := split(len(elements), s.Options.NumBatches, s.Options.CurrentBatch)
	batch := elements[start:end]
	s.log().WithFields(logrus.Fields{
		"batch":    fmt.Sprintf("%d/%d", s.Options.CurrentBatch+1, s.Options.NumBatches),
		"elements": fmt.Sprintf("%d-%d of %d", start, end, len(elements)),
		"passes":   len(combos),
	}).Info("simulation: starting")

	if combos == nil {
		s.setState(Running)
		err = s.runPass(nil, batch)
	} else {
		s.setState(Averaging)
		err = s.average(combos, batch)
	}
	if err != nil {
		s.log().WithError(err).Error("simulation: failed")
		s.setState(Failed)
		return nil, err
	}

	s.setState(Normalizing)
	s.normalize(batch)
	result := newIntensityMap(s.Detector.Axes(), s.Detector.Size())
	for _, e := range batch {
		if s.Detector.IsMasked(e.Index) {
			continue
		}
		v := e.Intensity
		if s.Background != nil {
			v = s.Background.Add(v)
		}
		result.Values[e.Index] = v
	}
	s.setState(Completed)
	s.log().WithField("total", result.Total()).Info("simulation: finished")
	return result, nil
}

// prepare checks the configuration and creates the simulation elements
// and the parameter combinations to average over.
func (s *Simulation) prepare() ([]instrument.Element, []combination, error) {
	if err := s.Options.validate(); err != nil {
		return nil, nil, err
	}
	if s.Sample == nil {
		return nil, nil, &ConfigError{Msg: "no sample"}
	}
	if s.Detector == nil {
		return nil, nil, &ConfigError{Msg: "no detector"}
	}
	want := 2
	if s.kind == specularKind {
		want = 1
	}
	if d := s.Detector.Dimension(); d != want {
		return nil, nil, &ConfigError{Msg: fmt.Sprintf("detector has %d dimensions but should have %d", d, want)}
	}
	if !(s.Beam.Wavelength > 0) {
		return nil, nil, &ConfigError{Msg: fmt.Sprintf("wavelength=%g but should be >0", s.Beam.Wavelength)}
	}
	var combos []combination
	if len(s.Distributions) > 0 {
		var err error
		if combos, err = combinations(s.Distributions); err != nil {
			return nil, nil, err
		}
	}
	elements, err := s.Detector.Elements(s.Beam)
	if err != nil {
		return nil, nil, err
	}
	return elements, combos, nil
}

// average runs one pass per parameter combination and replaces the
// element intensities with the weighted sum. The sum is accumulated in
// enumeration order.
func (s *Simulation) average(combos []combination, batch []instrument.Element) error {
	sum := make([]float64, len(batch))
	pass := make([]instrument.Element, len(batch))
	for i, c := range combos {
		copy(pass, batch)
		s.log().WithFields(logrus.Fields{
			"pass":   i + 1,
			"of":     len(combos),
			"params": c.params,
			"weight": c.weight,
		}).Debug("simulation: distribution pass")
		if err := s.runPass(c.params, pass); err != nil {
			return err
		}
		for j, e := range pass {
			sum[j] += c.weight * e.Intensity
		}
	}
	for j := range batch {
		batch[j].Intensity = sum[j]
	}
	return nil
}

// runPass builds the sample for params and sets the intensity of every
// element.
func (s *Simulation) runPass(params map[string]float64, elements []instrument.Element) error {
	ml, err := s.Sample.Build(params)
	if err != nil {
		return fmt.Errorf("simulation: building sample: %w", err)
	}
	ps, err := gisas.ProcessSample(ml, gisas.ProcessOptions{UseAvgMaterials: s.Options.UseAvgMaterials})
	if err != nil {
		return err
	}
	if s.debugEnabled() {
		s.log().WithField("stack", spew.Sdump(ps.Stack)).Debug("simulation: processed sample")
	}

	fm := fresnel.NewMap(ps.Stack,
		fresnel.UseCache(s.Options.FresnelCache),
		fresnel.CacheSize(s.Options.FresnelCacheSize))
	polarized := ps.Polarized()
	if len(elements) > 0 && isPolarized(elements[0]) {
		polarized = true
	}
	newTerms := s.termBuilder(ps, fm, polarized)

	// Building the terms once here reports configuration errors before
	// any worker starts.
	if _, err := newTerms(); err != nil {
		return err
	}
	if err := compute(elements, s.Options.threads(len(elements)), newTerms); err != nil {
		return err
	}
	hits, misses := fm.Stats()
	s.log().WithFields(logrus.Fields{"hits": hits, "misses": misses}).Debug("simulation: Fresnel cache")
	return nil
}

// termBuilder returns a function that creates the intensity terms of one
// worker.
func (s *Simulation) termBuilder(ps *gisas.ProcessedSample, fm *fresnel.Map, polarized bool) func() ([]term, error) {
	if s.kind == specularKind {
		t := reflectometryTerm{fm: fm, polarized: polarized, footprint: s.Beam.Footprint}
		return func() ([]term, error) { return []term{t}, nil }
	}
	opts := strategy.Options{
		Fresnel:    fm,
		Polarized:  polarized,
		MonteCarlo: s.Options.MonteCarlo,
		MCPoints:   s.Options.MCPoints,
	}
	rough := ps.Stack.HasRoughness()
	if rough && polarized {
		s.log().Warn("simulation: diffuse scattering from rough interfaces is not computed for polarized simulations")
		rough = false
	}
	return func() ([]term, error) {
		var terms []term
		for _, l := range ps.Layouts {
			t, err := newLayoutTerm(l, opts)
			if err != nil {
				return nil, err
			}
			terms = append(terms, t)
		}
		if rough {
			terms = append(terms, roughnessTerm{fm: fm})
		}
		if s.Options.IncludeSpecular {
			terms = append(terms, specularPeakTerm{fm: fm, polarized: polarized})
		}
		return terms, nil
	}
}

// compute splits elements into contiguous ranges, one per worker, and
// sets the intensity of each element to the sum of its terms. Worker
// failures, panics included, are reported after all workers finish.
func compute(elements []instrument.Element, threads int, newTerms func() ([]term, error)) error {
	errs := make([]error, threads)
	var wg sync.WaitGroup
	wg.Add(threads)
	for w := 0; w < threads; w++ {
		go func(w int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errs[w] = fmt.Errorf("worker %d: panic: %v", w, r)
				}
			}()
			terms, err := newTerms()
			if err != nil {
				errs[w] = fmt.Errorf("worker %d: %w", w, err)
				return
			}
			start, end := split(len(elements), threads, w)
			for i := start; i < end; i++ {
				e := &elements[i]
				var v float64
				for _, t := range terms {
					x, err := t.eval(e)
					if err != nil {
						errs[w] = fmt.Errorf("worker %d: %w", w, err)
						return
					}
					v += x
				}
				e.Intensity = v
			}
		}(w)
	}
	wg.Wait()

	var failed []error
	for _, err := range errs {
		if err != nil {
			failed = append(failed, err)
		}
	}
	if len(failed) > 0 {
		return &WorkerError{Errs: failed}
	}
	return nil
}

// normalize converts the element intensities into counts for the beam
// intensity. It does nothing if the beam intensity is zero. Specular
// scan points have no solid angle and are scaled by the beam intensity
// alone.
func (s *Simulation) normalize(elements []instrument.Element) {
	if s.Beam.Intensity == 0 {
		return
	}
	for i := range elements {
		e := &elements[i]
		if s.kind == specularKind {
			e.Intensity *= s.Beam.Intensity
			continue
		}
		e.Intensity *= s.Beam.Intensity * e.SolidAngle() / e.SinAlphaI()
	}
}
