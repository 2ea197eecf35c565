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

package formfactor

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/spatialmodel/gisas/geometry"
	"github.com/spatialmodel/gisas/internal/cmat"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestShapesAtZero(t *testing.T) {
	shapes := []Shape{
		FullSphere{Radius: 5},
		Cylinder{Radius: 3, Height: 4},
		Box{Length: 2, Width: 3, Height: 4},
		FullSpheroid{Radius: 3, Height: 10},
	}
	for _, s := range shapes {
		f := s.Evaluate(geometry.C3{})
		if !scalar.EqualWithinAbsOrRel(real(f), s.Volume(), 1e-12, 1e-12) || imag(f) != 0 {
			t.Errorf("%T: F(0) = %v, want volume %g", s, f, s.Volume())
		}
		v := s.VolumeBetween(-1, s.TopZ()+1)
		if !scalar.EqualWithinAbsOrRel(v, s.Volume(), 1e-12, 1e-12) {
			t.Errorf("%T: total sliced volume %g != %g", s, v, s.Volume())
		}
		half := s.VolumeBetween(0, s.TopZ()/2) + s.VolumeBetween(s.TopZ()/2, s.TopZ())
		if !scalar.EqualWithinAbsOrRel(half, s.Volume(), 1e-12, 1e-12) {
			t.Errorf("%T: halves sum to %g, want %g", s, half, s.Volume())
		}
	}
}

func TestSpheroidReducesToSphere(t *testing.T) {
	q := geometry.C3{X: 0.3, Y: -0.2, Z: complex(0.5, 0.01)}
	a := FullSphere{Radius: 4}.Evaluate(q)
	b := FullSpheroid{Radius: 4, Height: 8}.Evaluate(q)
	if cmplx.Abs(a-b) > 1e-10*cmplx.Abs(a) {
		t.Errorf("spheroid %v != sphere %v", b, a)
	}
}

func TestSphereZero(t *testing.T) {
	// The first zero of the ball transform is at tan(x) = x, x ≈ 4.4934.
	const x0 = 4.493409457909064
	r := 2.0
	f := FullSphere{Radius: r}.Evaluate(geometry.C3{X: complex(x0/r, 0)})
	if cmplx.Abs(f) > 1e-9 {
		t.Errorf("|F| = %g at the first zero", cmplx.Abs(f))
	}
}

type constContrast complex128

func (c constContrast) Scalar(float64) complex128 { return complex128(c) }
func (c constContrast) Matrix(float64) cmat.Mat2  { return cmat.Identity2().Scale(complex128(c)) }

func TestDWBAReducesToBorn(t *testing.T) {
	ff := Material{Shape: Cylinder{Radius: 3, Height: 3}, Contrast: constContrast(2)}
	wv := geometry.WavevectorInfo{
		Ki:         geometry.Ki(0.1, 0.01, 0).Complex(),
		Kf:         geometry.K(0.1, 0.02, 0.01).Complex(),
		Wavelength: 0.1,
	}
	in := ScalarWave{T: 1, Kz: wv.Ki.Z}
	out := ScalarWave{T: 1, Kz: -wv.Kf.Z}
	got := DWBA(ff, wv, in, out)
	want := ff.Evaluate(wv)
	if cmplx.Abs(got-want) > 1e-12*cmplx.Abs(want) {
		t.Errorf("DWBA without reflection = %v, want Born %v", got, want)
	}

	// The polarized version with identity mode split gives the same
	// amplitude on the diagonal.
	mIn := MatrixWave{
		T:  [2]cmat.Mat2{cmat.Diag2(1, 0), cmat.Diag2(0, 1)},
		Kz: [2]complex128{wv.Ki.Z, wv.Ki.Z},
	}
	mOut := MatrixWave{
		T:  [2]cmat.Mat2{cmat.Diag2(1, 0), cmat.Diag2(0, 1)},
		Kz: [2]complex128{-wv.Kf.Z, -wv.Kf.Z},
	}
	pol := DWBAPol(ff, wv, mIn, mOut)
	for i := 0; i < 2; i++ {
		if cmplx.Abs(pol[i][i]-want) > 1e-12*cmplx.Abs(want) {
			t.Errorf("polarized diagonal %d = %v, want %v", i, pol[i][i], want)
		}
	}
	if cmplx.Abs(pol[0][1]) > 1e-12 || cmplx.Abs(pol[1][0]) > 1e-12 {
		t.Errorf("polarized off-diagonal should vanish: %v", pol)
	}
}

func TestPositioned(t *testing.T) {
	ff := Material{Shape: Dot{}, Contrast: constContrast(1)}
	wv := geometry.WavevectorInfo{Ki: geometry.C3{X: 1}, Kf: geometry.C3{}, Wavelength: 1}
	p := Positioned{FF: ff, R: geometry.R3{X: math.Pi / 2}}
	if got := p.Evaluate(wv); cmplx.Abs(got-1i) > 1e-15 {
		t.Errorf("phase factor = %v, want i", got)
	}
}
