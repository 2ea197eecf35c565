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

package fresnel

import (
	"sync"
	"testing"

	"github.com/kr/pretty"
	"github.com/spatialmodel/gisas"
	"github.com/spatialmodel/gisas/geometry"
	"github.com/spatialmodel/gisas/specular"
)

func testStack(t *testing.T, b geometry.R3) *gisas.Stack {
	t.Helper()
	s, err := gisas.NewStack(
		gisas.Slice{Material: gisas.Vacuum()},
		gisas.Slice{Material: gisas.Material{Name: "Fe", SLD: 8e-4}, Thickness: 10, B: b},
		gisas.Slice{Material: gisas.Material{Name: "Si", SLD: 2.07e-4}},
	)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func equal(a, b []specular.Coefficients) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestIdempotent(t *testing.T) {
	for _, b := range []geometry.R3{{}, {X: 1, Y: 0.5}} {
		stack := testStack(t, b)
		k := geometry.Ki(0.4, 0.01, 0.02)
		cached := NewMap(stack)
		uncached := NewMap(stack, UseCache(false))

		c1, c2 := cached.In(k), cached.In(k)
		u1, u2 := uncached.In(k), uncached.In(k)
		for name, pair := range map[string][2][]specular.Coefficients{
			"cached":   {c1, c2},
			"uncached": {u1, u2},
			"mixed":    {c1, u1},
		} {
			if !equal(pair[0], pair[1]) {
				t.Errorf("B=%v %s: lookups differ: %v", b, name, pretty.Diff(pair[0], pair[1]))
			}
		}
	}
}

func TestSolverChoice(t *testing.T) {
	k := geometry.Ki(0.4, 0.01, 0)
	if _, ok := NewMap(testStack(t, geometry.R3{})).InLayer(k, 1).(specular.ScalarCoefficients); !ok {
		t.Error("non-magnetic stack should use the scalar solver")
	}
	if _, ok := NewMap(testStack(t, geometry.R3{Z: 1})).InLayer(k, 1).(specular.MatrixCoefficients); !ok {
		t.Error("magnetic stack should use the matrix solver")
	}
	m := NewMap(testStack(t, geometry.R3{}), WithSolver(specular.MatrixList))
	if _, ok := m.InLayer(k, 1).(specular.MatrixCoefficients); !ok {
		t.Error("solver override ignored")
	}
}

func TestOutUsesInvertedStack(t *testing.T) {
	stack := testStack(t, geometry.R3{X: 0.7, Z: 0.3})
	m := NewMap(stack)
	kf := geometry.K(0.4, 0.02, 0.01)
	want := specular.MatrixList(stack.InvertB(), kf.Neg())
	if have := m.Out(kf); !equal(have, want) {
		t.Errorf("out coefficients: %v", pretty.Diff(have, want))
	}
	notWant := specular.MatrixList(stack, kf.Neg())
	if equal(m.Out(kf), notWant) {
		t.Error("out coefficients should not be computed in the original stack")
	}
	if have, want := m.OutLayer(kf, 2), want[2]; have != want {
		t.Errorf("OutLayer: have %v, want %v", have, want)
	}
}

func TestStats(t *testing.T) {
	m := NewMap(testStack(t, geometry.R3{}))
	k := geometry.Ki(0.4, 0.01, 0)
	m.In(k)
	m.In(k)
	m.In(geometry.R3{X: k.X, Y: -k.Y, Z: k.Z}) // k.Y is a signed zero
	m.Out(k)
	if hits, misses := m.Stats(); hits != 2 || misses != 2 {
		t.Errorf("have %d hits and %d misses, want 2 and 2", hits, misses)
	}

	u := NewMap(testStack(t, geometry.R3{}), UseCache(false))
	u.In(k)
	if hits, misses := u.Stats(); hits != 0 || misses != 0 {
		t.Errorf("uncached map counted %d hits and %d misses", hits, misses)
	}
}

func TestConcurrent(t *testing.T) {
	m := NewMap(testStack(t, geometry.R3{Y: 1}))
	k := geometry.Ki(0.4, 0.015, 0)
	want := specular.MatrixList(m.Stack(), k)
	var wg sync.WaitGroup
	results := make([][]specular.Coefficients, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = m.In(k)
		}(i)
	}
	wg.Wait()
	for i, r := range results {
		if !equal(r, want) {
			t.Errorf("goroutine %d got different coefficients", i)
		}
	}
	if _, misses := m.Stats(); misses != 1 {
		t.Errorf("stack solved %d times, want once", misses)
	}
}
