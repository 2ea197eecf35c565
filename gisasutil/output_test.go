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
	"path/filepath"
	"strconv"
	"testing"

	"github.com/spatialmodel/gisas"
	"github.com/spatialmodel/gisas/instrument"
	"github.com/spatialmodel/gisas/simulation"
	"github.com/tealeg/xlsx"
)

func testMap() *simulation.IntensityMap {
	return &simulation.IntensityMap{
		Axes: []instrument.Axis{
			{Name: "phi_f", N: 2, Min: -math.Pi / 180, Max: math.Pi / 180},
			{Name: "alpha_f", N: 3, Min: 0, Max: 3 * math.Pi / 180},
		},
		Values: []float64{0, 1, 2, 3, 4, 5},
	}
}

func TestTable(t *testing.T) {
	header, rows, err := table(testMap())
	if err != nil {
		t.Fatal(err)
	}
	if len(header) != 1 || len(header[0]) != 3 {
		t.Fatalf("header: have %q", header)
	}
	for i, want := range []float64{-0.5, 0.5} {
		have, err := strconv.ParseFloat(header[0][1+i], 64)
		if err != nil || math.Abs(have-want) > 1e-12 {
			t.Errorf("header column %d: have %s, want %g", i, header[0][1+i], want)
		}
	}
	if len(rows) != 3 {
		t.Fatalf("have %d rows, want 3", len(rows))
	}
	for j, row := range rows {
		if math.Abs(row[0]-(float64(j)+0.5)) > 1e-12 {
			t.Errorf("row %d: have α=%g, want %g", j, row[0], float64(j)+0.5)
		}
		for i := 0; i < 2; i++ {
			if have, want := row[1+i], float64(i*3+j); have != want {
				t.Errorf("row %d column %d: have %g, want %g", j, i, have, want)
			}
		}
	}

	m := &simulation.IntensityMap{Axes: []instrument.Axis{{Name: "x", N: 1, Min: 0, Max: 0, Points: true}}, Values: []float64{7}}
	_, rows, err = table(m)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0][0] != 0 || rows[0][1] != 7 {
		t.Errorf("1-D table: have %v", rows)
	}
	if _, _, err := table(&simulation.IntensityMap{}); err == nil {
		t.Error("0-D map accepted")
	}
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.xlsx")
	if err := WriteIntensity(testMap(), path); err != nil {
		t.Fatal(err)
	}
	f, err := xlsx.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	rows := f.Sheets[0].Rows
	if len(rows) != 4 {
		t.Fatalf("have %d rows, want 4", len(rows))
	}
	for j, row := range rows[1:] {
		for i := 0; i < 2; i++ {
			have, err := row.Cells[1+i].Float()
			if err != nil {
				t.Fatal(err)
			}
			if want := float64(i*3 + j); have != want {
				t.Errorf("row %d column %d: have %g, want %g", j, i, have, want)
			}
		}
	}
	if err := WriteIntensity(testMap(), filepath.Join(t.TempDir(), "map.txt")); err == nil {
		t.Error("unsupported format accepted")
	}
}

func TestPlot(t *testing.T) {
	dir := t.TempDir()
	uniform := testMap()
	uniform.Values = make([]float64, 6)
	curve := &simulation.IntensityMap{
		Axes:   []instrument.Axis{{Name: "alpha_i", N: 4, Min: 0, Max: 0.01, Points: true}},
		Values: []float64{1, 0.5, 0, 1e-3},
	}
	tests := []struct {
		name string
		m    *simulation.IntensityMap
	}{
		{name: "map", m: testMap()},
		{name: "uniform", m: uniform},
		{name: "curve", m: curve},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(dir, test.name+".png")
			if err := Plot(test.m, path); err != nil {
				t.Fatal(err)
			}
			isPNG(t, path)
		})
	}
	curve.Values = []float64{0, 0, 0, 0}
	if err := Plot(curve, filepath.Join(dir, "empty.png")); err == nil {
		t.Error("curve without positive values accepted")
	}
}

func TestRunOpen(t *testing.T) {
	var opened string
	orig := openFile
	openFile = func(f string) error {
		opened = f
		return nil
	}
	defer func() { openFile = orig }()

	ml := &gisas.MultiLayer{Layers: []gisas.Layer{
		{Material: gisas.Vacuum()},
		{Material: gisas.Material{Name: "substrate", Delta: 6e-6, Beta: 2e-8}},
	}}
	sim := simulation.NewSpecular(simulation.FixedSample{Sample: ml},
		instrument.NewBeam(0.1, 0, 0), instrument.NewSpecularScan(10, 0.001, 0.02))
	sim.Options.NumThreads = 1
	out := filepath.Join(t.TempDir(), "refl.csv")
	if err := Run(sim, out, "", true); err != nil {
		t.Fatal(err)
	}
	if opened != out {
		t.Errorf("opened %q, want %q", opened, out)
	}
}
