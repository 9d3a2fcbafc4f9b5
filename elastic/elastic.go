/*
 * elastic.go, part of lgf.
 *
 * Copyright 2026 The lgf authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

//Package elastic evaluates the continuum anisotropic-elasticity quantities
//the lattice Green function construction needs: the stiffness tensor for a
//crystal class, the Fourier coefficients of the elastic Green function in
//the plane perpendicular to the dislocation line, and the sampled angular
//term of its large-distance limit.
package elastic

import (
	lgf "github.com/aztan2/LatticeGreenFunction-new"
	"gonum.org/v1/gonum/mat"
)

//CrystalClass selects the symmetry of the elastic constants. The integer
//values match the setup-file convention.
type CrystalClass int

const (
	Isotropic CrystalClass = 0
	Cubic     CrystalClass = 1
	Hexagonal CrystalClass = 2
)

func (c CrystalClass) String() string {
	switch c {
	case Isotropic:
		return "isotropic"
	case Cubic:
		return "cubic"
	case Hexagonal:
		return "hexagonal"
	}
	return "unknown"
}

//NCij returns how many independent elastic constants the class takes.
func (c CrystalClass) NCij() int {
	switch c {
	case Isotropic:
		return 2
	case Cubic:
		return 3
	case Hexagonal:
		return 5
	}
	return -1
}

//GPa2eVA3 converts from GPa to eV/Angstrom^3.
const GPa2eVA3 = 1.0 / 160.21766208

//Stiffness is the full rank-4 elastic stiffness tensor C_ijkl.
type Stiffness [3][3][3][3]float64

//ConstructVoigt builds the 6x6 Voigt stiffness matrix for the given crystal
//class from its independent constants: [C11 C12] for isotropic, [C11 C12 C44]
//for cubic, [C11 C12 C13 C33 C44] for hexagonal. Units are whatever the
//caller supplies, normally GPa straight from the setup file.
func ConstructVoigt(class CrystalClass, cij []float64) (*mat.SymDense, error) {
	if want := class.NCij(); want < 0 || len(cij) != want {
		return nil, lgf.NewError("ConstructVoigt: class %v wants %d constants, got %d", class, class.NCij(), len(cij))
	}
	v := mat.NewSymDense(6, nil)
	var c11, c12, c13, c33, c44, c66 float64
	switch class {
	case Isotropic:
		c11, c12 = cij[0], cij[1]
		c13, c33 = c12, c11
		c44 = (c11 - c12) / 2
		c66 = c44
	case Cubic:
		c11, c12, c44 = cij[0], cij[1], cij[2]
		c13, c33 = c12, c11
		c66 = c44
	case Hexagonal:
		c11, c12, c13, c33, c44 = cij[0], cij[1], cij[2], cij[3], cij[4]
		c66 = (c11 - c12) / 2
	}
	v.SetSym(0, 0, c11)
	v.SetSym(1, 1, c11)
	v.SetSym(2, 2, c33)
	v.SetSym(0, 1, c12)
	v.SetSym(0, 2, c13)
	v.SetSym(1, 2, c13)
	v.SetSym(3, 3, c44)
	v.SetSym(4, 4, c44)
	v.SetSym(5, 5, c66)
	return v, nil
}

//voigt maps a pair of cartesian indices to the Voigt index.
func voigt(i, j int) int {
	if i == j {
		return i
	}
	return 6 - i - j
}

//Expand unfolds a 6x6 Voigt matrix into the full C_ijkl tensor.
func Expand(v *mat.SymDense) *Stiffness {
	var c Stiffness
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				for l := 0; l < 3; l++ {
					c[i][j][k][l] = v.At(voigt(i, j), voigt(k, l))
				}
			}
		}
	}
	return &c
}

//FromGPa returns a copy of the tensor converted from GPa to eV/Angstrom^3,
//the unit system the rest of the library works in.
func (c *Stiffness) FromGPa() *Stiffness {
	var out Stiffness
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				for l := 0; l < 3; l++ {
					out[i][j][k][l] = c[i][j][k][l] * GPa2eVA3
				}
			}
		}
	}
	return &out
}

//NewStiffness is the usual entry point: Voigt construction, expansion and
//GPa conversion in one call.
func NewStiffness(class CrystalClass, cijGPa []float64) (*Stiffness, error) {
	v, err := ConstructVoigt(class, cijGPa)
	if err != nil {
		return nil, err
	}
	return Expand(v).FromGPa(), nil
}

//Christoffel fills dst with the acoustic tensor Gamma_ik = C_ijkl q_j q_l
//for the propagation direction q. dst must be 3x3.
func (c *Stiffness) Christoffel(dst *mat.Dense, q [3]float64) {
	for i := 0; i < 3; i++ {
		for k := 0; k < 3; k++ {
			var sum float64
			for j := 0; j < 3; j++ {
				for l := 0; l < 3; l++ {
					sum += c[i][j][k][l] * q[j] * q[l]
				}
			}
			dst.Set(i, k, sum)
		}
	}
}
