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
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/skratchdot/open-golang/open"
	"github.com/spatialmodel/gisas/instrument"
	"github.com/spatialmodel/gisas/simulation"
	"github.com/tealeg/xlsx"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// openFile opens a file with the default application.
var openFile = open.Run

// Run runs sim, writes the intensities to outputFile and, if plotFile is
// not empty, plots them. If openResult is true, the plot (or the output
// file) is opened when the run is finished.
func Run(sim *simulation.Simulation, outputFile, plotFile string, openResult bool) error {
	log := sim.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	start := time.Now()
	m, err := sim.Run()
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"total":    m.Total(),
		"duration": time.Since(start),
	}).Info("simulation finished")

	if err := WriteIntensity(m, outputFile); err != nil {
		return err
	}
	log.WithField("file", outputFile).Info("wrote intensities")
	result := outputFile
	if plotFile != "" {
		if err := Plot(m, plotFile); err != nil {
			return err
		}
		log.WithField("file", plotFile).Info("wrote plot")
		result = plotFile
	}
	if openResult {
		if err := openFile(result); err != nil {
			return fmt.Errorf("gisas: opening %s: %v", result, err)
		}
	}
	return nil
}

// table lays out an intensity map in rows: a header row with the axis
// names (in degrees) followed by the data. Two-dimensional maps have
// one row per bin of the second axis and one column per bin of the
// first; one-dimensional maps have a coordinate and an intensity column.
func table(m *simulation.IntensityMap) ([][]string, [][]float64, error) {
	switch len(m.Axes) {
	case 1:
		a := m.Axes[0]
		header := []string{a.Name + " (deg)", "intensity"}
		rows := make([][]float64, a.N)
		for i, c := range a.Centers() {
			rows[i] = []float64{c * 180 / math.Pi, m.Values[i]}
		}
		return [][]string{header}, rows, nil
	case 2:
		a0, a1 := m.Axes[0], m.Axes[1]
		header := []string{a1.Name + ` \ ` + a0.Name + " (deg)"}
		c0 := a0.Centers()
		for _, c := range c0 {
			header = append(header, strconv.FormatFloat(c*180/math.Pi, 'g', -1, 64))
		}
		rows := make([][]float64, a1.N)
		for j, c := range a1.Centers() {
			row := []float64{c * 180 / math.Pi}
			for i := range c0 {
				row = append(row, m.Values[i*a1.N+j])
			}
			rows[j] = row
		}
		return [][]string{header}, rows, nil
	default:
		return nil, nil, fmt.Errorf("gisas: cannot write a %d-dimensional intensity map", len(m.Axes))
	}
}

// WriteIntensity writes m to path. The extension of path selects the
// format: .xlsx or .csv.
func WriteIntensity(m *simulation.IntensityMap, path string) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx":
		return writeXLSX(m, path)
	case ".csv":
		return writeCSV(m, path)
	default:
		return fmt.Errorf("gisas: unsupported output format %q", ext)
	}
}

func writeXLSX(m *simulation.IntensityMap, path string) error {
	header, rows, err := table(m)
	if err != nil {
		return err
	}
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("intensity")
	if err != nil {
		return fmt.Errorf("gisas: writing xlsx: %v", err)
	}
	for _, h := range header {
		row := sheet.AddRow()
		for _, v := range h {
			row.AddCell().SetString(v)
		}
	}
	for _, r := range rows {
		row := sheet.AddRow()
		for _, v := range r {
			row.AddCell().SetFloat(v)
		}
	}
	if err := f.Save(path); err != nil {
		return fmt.Errorf("gisas: writing xlsx: %v", err)
	}
	return nil
}

func writeCSV(m *simulation.IntensityMap, path string) error {
	header, rows, err := table(m)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("gisas: writing csv: %v", err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(header); err != nil {
		f.Close()
		return fmt.Errorf("gisas: writing csv: %v", err)
	}
	for _, r := range rows {
		rec := make([]string, len(r))
		for i, v := range r {
			rec[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := w.Write(rec); err != nil {
			f.Close()
			return fmt.Errorf("gisas: writing csv: %v", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("gisas: writing csv: %v", err)
	}
	return f.Close()
}

// logGrid presents a two-dimensional intensity map as a plotter.GridXYZ
// of log10 intensities in degree coordinates. Non-positive intensities
// are shown at the smallest positive one.
type logGrid struct {
	phi, alpha instrument.Axis
	values     []float64
	floor      float64
}

func newLogGrid(m *simulation.IntensityMap) logGrid {
	g := logGrid{phi: m.Axes[0], alpha: m.Axes[1], values: m.Values, floor: math.Inf(1)}
	for _, v := range m.Values {
		if v > 0 && v < g.floor {
			g.floor = v
		}
	}
	if math.IsInf(g.floor, 1) {
		g.floor = 1
	}
	return g
}

func (g logGrid) Dims() (c, r int) { return g.phi.N, g.alpha.N }
func (g logGrid) X(c int) float64 { return g.phi.Center(c) * 180 / math.Pi }
func (g logGrid) Y(r int) float64 { return g.alpha.Center(r) * 180 / math.Pi }
func (g logGrid) Z(c, r int) float64 { return math.Log10(math.Max(g.values[c*g.alpha.N+r], g.floor)) }

// Plot saves a PNG plot of m to path: a heat map of log10 intensity
// for two-dimensional maps and a logarithmic curve for one-dimensional
// ones.
func Plot(m *simulation.IntensityMap, path string) error {
	p := plot.New()
	switch len(m.Axes) {
	case 1:
		a := m.Axes[0]
		var xys plotter.XYs
		for i, c := range a.Centers() {
			if v := m.Values[i]; v > 0 {
				xys = append(xys, plotter.XY{X: c * 180 / math.Pi, Y: v})
			}
		}
		if len(xys) == 0 {
			return fmt.Errorf("gisas: cannot plot a curve without positive intensities")
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("gisas: plotting: %v", err)
		}
		p.Add(line)
		p.X.Label.Text = a.Name + " (deg)"
		p.Y.Label.Text = "intensity"
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	case 2:
		g := newLogGrid(m)
		hm := plotter.NewHeatMap(g, palette.Heat(64, 1))
		if hm.Max == hm.Min {
			hm.Max = hm.Min + 1
		}
		p.Add(hm)
		p.Title.Text = "log10 intensity"
		p.X.Label.Text = g.phi.Name + " (deg)"
		p.Y.Label.Text = g.alpha.Name + " (deg)"
	default:
		return fmt.Errorf("gisas: cannot plot a %d-dimensional intensity map", len(m.Axes))
	}

	img := vgimg.New(6*vg.Inch, 5*vg.Inch)
	p.Draw(draw.New(img))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("gisas: plotting: %v", err)
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("gisas: plotting: %v", err)
	}
	return f.Close()
}
