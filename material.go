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
	"math/cmplx"

	"github.com/spatialmodel/gisas/geometry"
	"github.com/spatialmodel/gisas/internal/cmat"
)

// Physical constants.
const (
	// Mu0 is the vacuum permeability [T·m/A].
	Mu0 = 4e-7 * math.Pi

	// MagneticPrefactor converts a magnetic induction [T] into a neutron
	// scattering potential [nm⁻²]. It equals -2 m_n μ_n / ħ².
	MagneticPrefactor = -2.91042993836710484e-3
)

// Material is a homogeneous medium.
//
// Its refractive index is n = 1 - Delta + i·Beta, independent of the
// wavelength, unless SLD is nonzero. SLD is a scattering length density
// [nm⁻²] whose imaginary part is the (non-negative) absorptive part;
// it gives n²(λ) = 1 - λ²·conj(SLD)/π.
type Material struct {
	Name        string
	Delta, Beta float64
	SLD         complex128

	// Magnetization [A/m].
	Magnetization geometry.R3
}

// Vacuum returns the material with refractive index 1.
func Vacuum() Material { return Material{Name: "vacuum"} }

// IsSLD reports whether the material is described by a scattering
// length density.
func (m Material) IsSLD() bool { return m.SLD != 0 }

// IsScalar reports whether the material is non-magnetic.
func (m Material) IsScalar() bool { return m.Magnetization.IsZero() }

// RefractiveIndex2 returns n² at wavelength λ [nm].
func (m Material) RefractiveIndex2(λ float64) complex128 {
	if m.IsSLD() {
		return 1 - complex(λ*λ/math.Pi, 0)*cmplx.Conj(m.SLD)
	}
	n := complex(1-m.Delta, m.Beta)
	return n * n
}

// Validate returns an error if the material description is not usable.
func (m Material) Validate() error {
	for _, v := range []float64{m.Delta, m.Beta, real(m.SLD), imag(m.SLD),
		m.Magnetization.X, m.Magnetization.Y, m.Magnetization.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return DomainErrorf("material %q has non-finite parameters", m.Name)
		}
	}
	if m.Beta < 0 || imag(m.SLD) < 0 {
		return DomainErrorf("material %q has negative absorption", m.Name)
	}
	return nil
}

// contrast is the scattering potential of a particle material relative
// to the material it displaces.
type contrast struct {
	particle, displaced Material
}

// Scalar returns (π/λ²)(n²_particle - n²_displaced).
func (c contrast) Scalar(λ float64) complex128 {
	return complex(math.Pi/(λ*λ), 0) * (c.particle.RefractiveIndex2(λ) - c.displaced.RefractiveIndex2(λ))
}

// Matrix adds the Zeeman term of the magnetization difference to the
// scalar contrast.
func (c contrast) Matrix(λ float64) cmat.Mat2 {
	r := cmat.Identity2().Scale(c.Scalar(λ))
	dm := c.particle.Magnetization.Sub(c.displaced.Magnetization)
	if dm.IsZero() {
		return r
	}
	b := dm.Scale(Mu0 * MagneticPrefactor / (4 * math.Pi))
	return r.Add(cmat.Pauli(b.X, b.Y, b.Z))
}

// averageMaterial returns the material obtained by replacing the volume
// fractions fracs of base by the corresponding materials. Fractions may
// be negative for regions that carve out a material from another one.
func averageMaterial(base Material, mats []Material, fracs []float64) (Material, error) {
	avg := base
	avg.Name = base.Name + "_avg"
	for i, m := range mats {
		if m.IsSLD() != base.IsSLD() && m.RefractiveIndex2(1) != 1 && base.RefractiveIndex2(1) != 1 {
			return Material{}, DomainErrorf("cannot average material %q with %q: one is given by a scattering length density and the other by a refractive index", m.Name, base.Name)
		}
		f := fracs[i]
		avg.Delta += f * (m.Delta - base.Delta)
		avg.Beta += f * (m.Beta - base.Beta)
		avg.SLD += complex(f, 0) * (m.SLD - base.SLD)
		avg.Magnetization = avg.Magnetization.Add(m.Magnetization.Sub(base.Magnetization).Scale(f))
	}
	return avg, nil
}
