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
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/gisas/geometry"
	"github.com/spatialmodel/gisas/instrument"
	"github.com/spatialmodel/gisas/internal/hash"
	"github.com/spatialmodel/gisas/simulation"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

type runKind int

const (
	gisasRun runKind = iota
	specularRun
)

// deg converts degrees to radians.
func deg(x float64) float64 { return x * math.Pi / 180 }

// checkOutputFile makes sure that the output file is specified, has a
// supported format and its directory exists, and expands any environment
// variables.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`you need to specify an output file configuration variable (for example: OutputFile="output.xlsx")`)
	}
	f = os.ExpandEnv(f)
	switch ext := strings.ToLower(filepath.Ext(f)); ext {
	case ".xlsx", ".csv":
	default:
		return f, fmt.Errorf("gisas: OutputFile extension %q should be .xlsx or .csv", ext)
	}
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("gisas: the OutputFile directory doesn't exist: %v", err)
	}
	return f, nil
}

// checkLogFile fills in a default value for the log file path if one isn't
// specified.
func checkLogFile(logFile, outputFile string) string {
	if logFile == "" {
		logFile = strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".log"
	}
	return os.ExpandEnv(logFile)
}

// newLogger returns a logger that writes to standard error and, if
// logFile is not empty, to logFile. The returned function closes the
// log file.
func newLogger(level, logFile string) (*logrus.Logger, func() error, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("gisas: invalid LogLevel: %v", err)
	}
	log := logrus.New()
	log.SetLevel(lvl)
	if logFile == "" {
		return log, func() error { return nil }, nil
	}
	f, err := os.Create(logFile)
	if err != nil {
		return nil, nil, fmt.Errorf("gisas: creating log file: %v", err)
	}
	log.SetOutput(io.MultiWriter(os.Stderr, f))
	return log, f.Close, nil
}

// vectorFromConfig reads a vector given as a list of three numbers. The
// second return value is false if the list is empty.
func vectorFromConfig(cfg *viper.Viper, name string) (geometry.R3, bool, error) {
	s, err := cast.ToStringSliceE(cfg.Get(name))
	if err != nil {
		return geometry.R3{}, false, fmt.Errorf("gisas: %s: %v", name, err)
	}
	var v []float64
	for _, c := range s {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		f, err := cast.ToFloat64E(c)
		if err != nil {
			return geometry.R3{}, false, fmt.Errorf("gisas: %s: %v", name, err)
		}
		v = append(v, f)
	}
	switch len(v) {
	case 0:
		return geometry.R3{}, false, nil
	case 3:
		return geometry.R3{X: v[0], Y: v[1], Z: v[2]}, true, nil
	default:
		return geometry.R3{}, false, fmt.Errorf("gisas: %s has %d components but should have 3", name, len(v))
	}
}

// beamFromConfig returns the beam described by cfg.
func beamFromConfig(cfg *viper.Viper) (instrument.Beam, error) {
	beam := instrument.NewBeam(cfg.GetFloat64("Beam.Wavelength"),
		deg(cfg.GetFloat64("Beam.AlphaI")), deg(cfg.GetFloat64("Beam.PhiI")))
	beam.Intensity = cfg.GetFloat64("Beam.Intensity")
	pol, ok, err := vectorFromConfig(cfg, "Beam.Polarization")
	if err != nil {
		return beam, err
	}
	if ok {
		if err := beam.SetPolarization(pol); err != nil {
			return beam, err
		}
	}
	width := cfg.GetFloat64("Beam.FootprintWidth")
	switch fp := strings.ToLower(cfg.GetString("Beam.Footprint")); fp {
	case "", "none":
	case "square":
		beam.Footprint = instrument.FootprintSquare{WidthRatio: width}
	case "gauss":
		beam.Footprint = instrument.FootprintGauss{WidthRatio: width}
	default:
		return beam, fmt.Errorf("gisas: Beam.Footprint %q should be none, square or gauss", fp)
	}
	return beam, nil
}

// analyzerFromConfig returns the polarization analyzer described by cfg.
func analyzerFromConfig(cfg *viper.Viper) (instrument.Analyzer, error) {
	dir, ok, err := vectorFromConfig(cfg, "Analyzer.Direction")
	if err != nil || !ok {
		return instrument.Analyzer{}, err
	}
	return instrument.Analyzer{
		Direction:    dir,
		Efficiency:   cfg.GetFloat64("Analyzer.Efficiency"),
		Transmission: cfg.GetFloat64("Analyzer.Transmission"),
	}, nil
}

// masksFromConfig parses rectangular masks given in degrees as
// "phimin:phimax:alphamin:alphamax".
func masksFromConfig(cfg *viper.Viper) ([]instrument.Mask, error) {
	s, err := cast.ToStringSliceE(cfg.Get("Detector.Masks"))
	if err != nil {
		return nil, fmt.Errorf("gisas: Detector.Masks: %v", err)
	}
	var masks []instrument.Mask
	for _, m := range s {
		if strings.TrimSpace(m) == "" {
			continue
		}
		parts := strings.Split(m, ":")
		if len(parts) != 4 {
			return nil, fmt.Errorf("gisas: mask %q should have the form phimin:phimax:alphamin:alphamax", m)
		}
		var v [4]float64
		for i, p := range parts {
			f, err := cast.ToFloat64E(strings.TrimSpace(p))
			if err != nil {
				return nil, fmt.Errorf("gisas: mask %q: %v", m, err)
			}
			v[i] = deg(f)
		}
		masks = append(masks, instrument.Rectangle{PhiMin: v[0], PhiMax: v[1], AlphaMin: v[2], AlphaMax: v[3]})
	}
	return masks, nil
}

// optionsFromConfig returns the simulation options in cfg.
func optionsFromConfig(cfg *viper.Viper) simulation.Options {
	return simulation.Options{
		NumBatches:       cfg.GetInt("NumBatches"),
		CurrentBatch:     cfg.GetInt("CurrentBatch"),
		NumThreads:       cfg.GetInt("NumThreads"),
		MonteCarlo:       cfg.GetBool("MonteCarlo"),
		MCPoints:         cfg.GetInt("MCPoints"),
		UseAvgMaterials:  cfg.GetBool("UseAvgMaterials"),
		IncludeSpecular:  cfg.GetBool("IncludeSpecular"),
		FresnelCache:     cfg.GetBool("FresnelCache"),
		FresnelCacheSize: cfg.GetInt("FresnelCacheSize"),
	}
}

// runID identifies the inputs of a run in the log.
type runID struct {
	Kind    runKind
	Sample  []byte
	Beam    instrument.Beam
	Options simulation.Options
}

// simulationFromConfig sets up the simulation described by cfg. It
// returns the simulation and an identifier of its inputs.
func simulationFromConfig(cfg *viper.Viper, kind runKind) (*simulation.Simulation, string, error) {
	sampleFile := cfg.GetString("SampleFile")
	if sampleFile == "" {
		return nil, "", fmt.Errorf("gisas: you need to specify a SampleFile")
	}
	b, err := os.ReadFile(os.ExpandEnv(sampleFile))
	if err != nil {
		return nil, "", fmt.Errorf("gisas: reading sample file: %v", err)
	}
	sample, err := ReadSample(bytes.NewReader(b))
	if err != nil {
		return nil, "", err
	}
	dists, err := sample.ParameterDistributions()
	if err != nil {
		return nil, "", err
	}
	beam, err := beamFromConfig(cfg)
	if err != nil {
		return nil, "", err
	}
	analyzer, err := analyzerFromConfig(cfg)
	if err != nil {
		return nil, "", err
	}

	var sim *simulation.Simulation
	switch kind {
	case gisasRun:
		d := instrument.NewSphericalDetector(
			cfg.GetInt("Detector.NPhi"), deg(cfg.GetFloat64("Detector.PhiMin")), deg(cfg.GetFloat64("Detector.PhiMax")),
			cfg.GetInt("Detector.NAlpha"), deg(cfg.GetFloat64("Detector.AlphaMin")), deg(cfg.GetFloat64("Detector.AlphaMax")))
		d.Analyzer = analyzer
		masks, err := masksFromConfig(cfg)
		if err != nil {
			return nil, "", err
		}
		for _, m := range masks {
			d.AddMask(m)
		}
		sim = simulation.NewGISAS(sample, beam, d)
	case specularRun:
		s := instrument.NewSpecularScan(cfg.GetInt("Scan.N"),
			deg(cfg.GetFloat64("Scan.AlphaMin")), deg(cfg.GetFloat64("Scan.AlphaMax")))
		s.Analyzer = analyzer
		sim = simulation.NewSpecular(sample, beam, s)
	default:
		panic(fmt.Errorf("invalid run kind %d", kind))
	}
	sim.Options = optionsFromConfig(cfg)
	sim.Distributions = dists
	if bg := cfg.GetFloat64("Background"); bg != 0 {
		sim.Background = instrument.ConstantBackground{Value: bg}
	}
	id := hash.Hash(runID{Kind: kind, Sample: b, Beam: beam, Options: sim.Options})
	return sim, id, nil
}

// runFromConfig runs the simulation described by cfg and writes its
// output.
func runFromConfig(cfg *viper.Viper, kind runKind) error {
	outputFile, err := checkOutputFile(cfg.GetString("OutputFile"))
	if err != nil {
		return err
	}
	log, closeLog, err := newLogger(cfg.GetString("LogLevel"), checkLogFile(cfg.GetString("LogFile"), outputFile))
	if err != nil {
		return err
	}
	defer closeLog()

	sim, id, err := simulationFromConfig(cfg, kind)
	if err != nil {
		return err
	}
	if len(id) > 8 {
		id = id[:8]
	}
	sim.Log = log.WithField("run", id)
	return Run(sim, outputFile, os.ExpandEnv(cfg.GetString("PlotFile")), cfg.GetBool("open"))
}
