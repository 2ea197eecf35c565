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

package cmat

import (
	"math/cmplx"
	"testing"
)

func TestPauli(t *testing.T) {
	// σ·b squared is |b|² times the identity.
	p := Pauli(1, 2, 3)
	if have, want := p.Mul(p), Identity2().Scale(14); have != want {
		t.Errorf("have %v, want %v", have, want)
	}
	if p.Trace() != 0 {
		t.Errorf("trace %v, want 0", p.Trace())
	}
	if p.Adjoint() != p {
		t.Error("Pauli matrices are Hermitian")
	}
}

func TestMat2(t *testing.T) {
	m := Mat2{{1, 2i}, {3, 4}}
	n := Mat2{{0, 1}, {1, 0}}
	tests := []struct {
		name       string
		have, want Mat2
	}{
		{name: "mul", have: m.Mul(n), want: Mat2{{2i, 1}, {4, 3}}},
		{name: "add", have: m.Add(n), want: Mat2{{1, 1 + 2i}, {4, 4}}},
		{name: "sub", have: m.Sub(m), want: Mat2{}},
		{name: "adjoint", have: m.Adjoint(), want: Mat2{{1, 3}, {-2i, 4}}},
		{name: "transpose", have: m.Transpose(), want: Mat2{{1, 3}, {2i, 4}}},
		{name: "outer", have: Outer(Vec2{1, 2}, Vec2{3, 4}), want: Mat2{{3, 4}, {6, 8}}},
		{name: "columns", have: Columns(Vec2{1, 2}, Vec2{3, 4}), want: Mat2{{1, 3}, {2, 4}}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if test.have != test.want {
				t.Errorf("have %v, want %v", test.have, test.want)
			}
		})
	}
	if have, want := m.Det(), complex128(4-6i); have != want {
		t.Errorf("det: have %v, want %v", have, want)
	}
	if have, want := m.MulVec(Vec2{1, 1}), (Vec2{1 + 2i, 7}); have != want {
		t.Errorf("mulvec: have %v, want %v", have, want)
	}
}

func TestMat4(t *testing.T) {
	a, b := Diag2(1, 2), Mat2{{0, 1}, {1, 0}}
	m := Block(a, b, b, a)
	if have := m.Mul(Identity4()); have != m {
		t.Errorf("identity: have %v, want %v", have, m)
	}
	v := Stack(Vec2{1, 0}, Vec2{0, 1})
	have := m.MulVec(v)
	if have.Top() != (Vec2{2, 0}) || have.Bottom() != (Vec2{0, 3}) {
		t.Errorf("have %v, want [2 0 0 3]", have)
	}
}

func TestIsFinite(t *testing.T) {
	var inf Mat2
	inf[1][0] = cmplx.Inf()
	if inf.IsFinite() || !Identity2().IsFinite() {
		t.Error("IsFinite is wrong")
	}
}
