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

// Package cmat provides fixed-size complex matrices for spin-space
// (2×2) and spin-state (4×4) calculations. The types are values so
// that they can be used on hot paths without allocation.
package cmat

import "math/cmplx"

// Vec2 is a complex 2-vector (a spinor).
type Vec2 [2]complex128

// Mat2 is a complex 2×2 matrix in row-major order.
type Mat2 [2][2]complex128

// Vec4 is a complex 4-vector.
type Vec4 [4]complex128

// Mat4 is a complex 4×4 matrix in row-major order.
type Mat4 [4][4]complex128

// Identity2 returns the 2×2 identity matrix.
func Identity2() Mat2 { return Mat2{{1, 0}, {0, 1}} }

// Diag2 returns a diagonal matrix.
func Diag2(a, b complex128) Mat2 { return Mat2{{a, 0}, {0, b}} }

// Pauli returns σ·b for a real vector b given by its components.
func Pauli(bx, by, bz float64) Mat2 {
	return Mat2{
		{complex(bz, 0), complex(bx, -by)},
		{complex(bx, by), complex(-bz, 0)},
	}
}

// Add returns m+n.
func (m Mat2) Add(n Mat2) Mat2 {
	var r Mat2
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			r[i][j] = m[i][j] + n[i][j]
		}
	}
	return r
}

// Sub returns m-n.
func (m Mat2) Sub(n Mat2) Mat2 {
	var r Mat2
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			r[i][j] = m[i][j] - n[i][j]
		}
	}
	return r
}

// Scale returns f*m.
func (m Mat2) Scale(f complex128) Mat2 {
	var r Mat2
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			r[i][j] = f * m[i][j]
		}
	}
	return r
}

// Mul returns the matrix product m·n.
func (m Mat2) Mul(n Mat2) Mat2 {
	return Mat2{
		{m[0][0]*n[0][0] + m[0][1]*n[1][0], m[0][0]*n[0][1] + m[0][1]*n[1][1]},
		{m[1][0]*n[0][0] + m[1][1]*n[1][0], m[1][0]*n[0][1] + m[1][1]*n[1][1]},
	}
}

// MulVec returns m·v.
func (m Mat2) MulVec(v Vec2) Vec2 {
	return Vec2{m[0][0]*v[0] + m[0][1]*v[1], m[1][0]*v[0] + m[1][1]*v[1]}
}

// Adjoint returns the conjugate transpose of m.
func (m Mat2) Adjoint() Mat2 {
	return Mat2{
		{cmplx.Conj(m[0][0]), cmplx.Conj(m[1][0])},
		{cmplx.Conj(m[0][1]), cmplx.Conj(m[1][1])},
	}
}

// Transpose returns the transpose of m.
func (m Mat2) Transpose() Mat2 {
	return Mat2{{m[0][0], m[1][0]}, {m[0][1], m[1][1]}}
}

// Trace returns the sum of the diagonal elements.
func (m Mat2) Trace() complex128 { return m[0][0] + m[1][1] }

// Det returns the determinant.
func (m Mat2) Det() complex128 { return m[0][0]*m[1][1] - m[0][1]*m[1][0] }

// IsFinite reports whether no element is NaN or infinite.
func (m Mat2) IsFinite() bool {
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if cmplx.IsNaN(m[i][j]) || cmplx.IsInf(m[i][j]) {
				return false
			}
		}
	}
	return true
}

// Columns builds a matrix whose columns are a and b.
func Columns(a, b Vec2) Mat2 { return Mat2{{a[0], b[0]}, {a[1], b[1]}} }

// Outer returns the outer product a·bᵀ (no conjugation).
func Outer(a, b Vec2) Mat2 {
	return Mat2{{a[0] * b[0], a[0] * b[1]}, {a[1] * b[0], a[1] * b[1]}}
}

// Scale returns f*v.
func (v Vec2) Scale(f complex128) Vec2 { return Vec2{f * v[0], f * v[1]} }

// Add returns v+w.
func (v Vec2) Add(w Vec2) Vec2 { return Vec2{v[0] + w[0], v[1] + w[1]} }

// Identity4 returns the 4×4 identity matrix.
func Identity4() Mat4 {
	var r Mat4
	for i := 0; i < 4; i++ {
		r[i][i] = 1
	}
	return r
}

// Block assembles a 4×4 matrix from 2×2 blocks.
func Block(a, b, c, d Mat2) Mat4 {
	var r Mat4
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			r[i][j] = a[i][j]
			r[i][j+2] = b[i][j]
			r[i+2][j] = c[i][j]
			r[i+2][j+2] = d[i][j]
		}
	}
	return r
}

// Add returns m+n.
func (m Mat4) Add(n Mat4) Mat4 {
	var r Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			r[i][j] = m[i][j] + n[i][j]
		}
	}
	return r
}

// Scale returns f*m.
func (m Mat4) Scale(f complex128) Mat4 {
	var r Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			r[i][j] = f * m[i][j]
		}
	}
	return r
}

// Mul returns the matrix product m·n.
func (m Mat4) Mul(n Mat4) Mat4 {
	var r Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var s complex128
			for k := 0; k < 4; k++ {
				s += m[i][k] * n[k][j]
			}
			r[i][j] = s
		}
	}
	return r
}

// MulVec returns m·v.
func (m Mat4) MulVec(v Vec4) Vec4 {
	var r Vec4
	for i := 0; i < 4; i++ {
		for k := 0; k < 4; k++ {
			r[i] += m[i][k] * v[k]
		}
	}
	return r
}

// Top returns the first two components of v.
func (v Vec4) Top() Vec2 { return Vec2{v[0], v[1]} }

// Bottom returns the last two components of v.
func (v Vec4) Bottom() Vec2 { return Vec2{v[2], v[3]} }

// Scale returns f*v.
func (v Vec4) Scale(f complex128) Vec4 {
	return Vec4{f * v[0], f * v[1], f * v[2], f * v[3]}
}

// Add returns v+w.
func (v Vec4) Add(w Vec4) Vec4 {
	return Vec4{v[0] + w[0], v[1] + w[1], v[2] + w[2], v[3] + w[3]}
}

// Stack joins two spinors into a 4-vector.
func Stack(top, bottom Vec2) Vec4 {
	return Vec4{top[0], top[1], bottom[0], bottom[1]}
}
