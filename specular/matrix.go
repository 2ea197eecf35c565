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

package specular

import (
	"github.com/spatialmodel/gisas"
	"github.com/spatialmodel/gisas/geometry"
	"github.com/spatialmodel/gisas/internal/cmat"
	"github.com/spatialmodel/gisas/science/formfactor"
)

// MatrixCoefficients are the spin-resolved wave amplitudes in one slice
// of a magnetic stack. Index j of each array refers to the eigenmode of
// the slice with eigenvalue Lambda[j].
type MatrixCoefficients struct {
	// T[j] and R[j] map an incident spinor onto the down- and up-going
	// field spinors of eigenmode j at the reference plane.
	T, R [2]cmat.Mat2

	// Kz[j] is the z component of the transmitted wavevector of mode j.
	Kz [2]complex128

	Lambda [2]complex128

	// phiPsi holds the boundary state (φ, φ'/|k|) at the reference plane
	// for incident spin up and spin down.
	phiPsi [2]cmat.Vec4

	// tm and rm project a boundary state onto the down- and up-going
	// parts of each eigenmode.
	tm, rm [2]cmat.Mat4

	projector [2]cmat.Mat2
}

// ScalarWave implements Coefficients.
func (c MatrixCoefficients) ScalarWave() (formfactor.ScalarWave, bool) {
	return formfactor.ScalarWave{}, false
}

// MatrixWave implements Coefficients.
func (c MatrixCoefficients) MatrixWave() formfactor.MatrixWave {
	return formfactor.MatrixWave{T: c.T, R: c.R, Kz: c.Kz}
}

// Reflection implements Coefficients.
func (c MatrixCoefficients) Reflection() cmat.Mat2 { return c.R[0].Add(c.R[1]) }

// Transmission implements Coefficients.
func (c MatrixCoefficients) Transmission() cmat.Mat2 { return c.T[0].Add(c.T[1]) }

// Matrix computes the coefficients of every slice of stack for the
// vacuum wavevector k. Each slice is described by the 2×2 optical matrix
// n²-n₀²cos²α plus the Zeeman term of its magnetic induction, whose
// eigenmodes are propagated with 4×4 transfer matrices from the substrate
// upwards. Interface roughness is not taken into account.
func Matrix(stack *gisas.Stack, k geometry.R3) []MatrixCoefficients {
	n := stack.Len()
	c := make([]MatrixCoefficients, n)
	kmag, wavelength, n0kpar2 := slabParameters(stack, k)
	for i := range c {
		c[i].eigen(stack.Slice(i), kmag, wavelength, n0kpar2)
	}
	if n > 1 && c[0].Lambda[0] == 0 && c[0].Lambda[1] == 0 {
		setNoTransmission(c)
		return c
	}

	c[n-1].initBottom()
	for i := n - 2; i > 0; i-- {
		l := c[i].transfer(kmag * stack.Thickness(i))
		c[i].phiPsi[0] = l.MulVec(c[i+1].phiPsi[0])
		c[i].phiPsi[1] = l.MulVec(c[i+1].phiPsi[1])
	}
	if n > 1 {
		c[0].phiPsi = c[1].phiPsi
		normalize(c)
	}
	for i := range c {
		c[i].amplitudes()
	}
	return c
}

// eigen computes the eigenvalues and spectral projectors of the optical
// matrix of slice s.
func (c *MatrixCoefficients) eigen(s gisas.Slice, kmag, wavelength float64, n0kpar2 complex128) {
	scalar := s.Material.RefractiveIndex2(wavelength) - n0kpar2
	b := s.B.Scale(gisas.MagneticPrefactor / (kmag * kmag))
	m := cmat.Identity2().Scale(scalar).Add(cmat.Pauli(b.X, b.Y, b.Z))

	a := m.Trace() / 2
	bmag := principalSqrt(a*a - m.Det())
	c.Lambda[0] = principalSqrt(a - bmag)
	c.Lambda[1] = principalSqrt(a + bmag)
	for j := 0; j < 2; j++ {
		c.Kz[j] = -complex(kmag, 0) * c.Lambda[j]
	}
	if bmag == 0 {
		c.projector[0] = cmat.Diag2(1, 0)
		c.projector[1] = cmat.Diag2(0, 1)
	} else {
		// (M - a)/b has eigenvalues ∓1 on the two modes.
		d := m.Sub(cmat.Identity2().Scale(a)).Scale(1 / bmag)
		c.projector[0] = cmat.Identity2().Sub(d).Scale(0.5)
		c.projector[1] = cmat.Identity2().Add(d).Scale(0.5)
	}
	c.splitters()
}

// splitters sets the matrices that split a boundary state into the
// down- and up-going parts of each eigenmode.
func (c *MatrixCoefficients) splitters() {
	var zero cmat.Mat2
	for j := 0; j < 2; j++ {
		p := c.projector[j]
		l := c.Lambda[j]
		if l == 0 {
			c.rm[j] = cmat.Mat4{}
			c.tm[j] = cmat.Block(p, zero, zero, p)
			continue
		}
		c.rm[j] = cmat.Block(p, p.Scale(-1i/l), p.Scale(1i*l), p).Scale(0.5)
		c.tm[j] = cmat.Block(p, p.Scale(1i/l), p.Scale(-1i*l), p).Scale(0.5)
	}
}

// transfer returns the matrix that propagates a boundary state upwards
// over the reduced distance kt = |k|·thickness.
func (c *MatrixCoefficients) transfer(kt float64) cmat.Mat4 {
	var l cmat.Mat4
	var zero cmat.Mat2
	for j := 0; j < 2; j++ {
		if c.Lambda[j] == 0 {
			p := c.projector[j]
			l = l.Add(cmat.Block(p, p.Scale(complex(kt, 0)), zero, p))
			continue
		}
		x := complex(kt, 0) * c.Lambda[j]
		l = l.Add(c.rm[j].Scale(imExp(x))).Add(c.tm[j].Scale(imExp(-x)))
	}
	return l
}

// initBottom sets the boundary states of the substrate, which only
// carries down-going waves.
func (c *MatrixCoefficients) initBottom() {
	lp := c.projector[0].Scale(c.Lambda[0]).Add(c.projector[1].Scale(c.Lambda[1]))
	for s, u := range [2]cmat.Vec2{{1, 0}, {0, 1}} {
		c.phiPsi[s] = cmat.Stack(u, lp.MulVec(u).Scale(-1i))
	}
}

// downTop returns the down-going spinor of state s summed over the
// eigenmodes.
func (c *MatrixCoefficients) downTop(s int) cmat.Vec2 {
	return c.tm[0].MulVec(c.phiPsi[s]).Top().Add(c.tm[1].MulVec(c.phiPsi[s]).Top())
}

// normalize recombines the boundary states so that the incident wave in
// the top slice has unit amplitude in its own spin channel and none in
// the other one.
func normalize(c []MatrixCoefficients) {
	a := c[0].downTop(0)
	b := c[0].downTop(1)
	cpA, cpB := b[1], -a[1]
	cmA, cmB := b[0], -a[0]

	top := &c[0]
	plus := top.phiPsi[0].Scale(cpA).Add(top.phiPsi[1].Scale(cpB))
	top.phiPsi[1] = top.phiPsi[0].Scale(cmA).Add(top.phiPsi[1].Scale(cmB))
	top.phiPsi[0] = plus
	t0plus := top.downTop(0)[0]
	t0min := top.downTop(1)[1]
	top.phiPsi[0] = top.phiPsi[0].Scale(1 / t0plus)
	top.phiPsi[1] = top.phiPsi[1].Scale(1 / t0min)

	for i := 1; i < len(c); i++ {
		plus := c[i].phiPsi[0].Scale(cpA).Add(c[i].phiPsi[1].Scale(cpB)).Scale(1 / t0plus)
		c[i].phiPsi[1] = c[i].phiPsi[0].Scale(cmA).Add(c[i].phiPsi[1].Scale(cmB)).Scale(1 / t0min)
		c[i].phiPsi[0] = plus
	}
}

// amplitudes derives T and R from the boundary states.
func (c *MatrixCoefficients) amplitudes() {
	for j := 0; j < 2; j++ {
		c.T[j] = cmat.Columns(c.tm[j].MulVec(c.phiPsi[0]).Top(), c.tm[j].MulVec(c.phiPsi[1]).Top())
		c.R[j] = cmat.Columns(c.rm[j].MulVec(c.phiPsi[0]).Top(), c.rm[j].MulVec(c.phiPsi[1]).Top())
	}
}

// setNoTransmission handles a top slice whose eigenvalues vanish: all
// boundary states are zero and the mode splitters take a fixed
// degenerate value.
func setNoTransmission(c []MatrixCoefficients) {
	fallback := cmat.Identity4().Scale(0.25)
	for i := range c {
		c[i].phiPsi = [2]cmat.Vec4{}
		c[i].tm = [2]cmat.Mat4{fallback, fallback}
		c[i].rm = [2]cmat.Mat4{fallback, fallback}
		c[i].amplitudes()
	}
}
