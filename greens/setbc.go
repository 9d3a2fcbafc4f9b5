/*
 * setbc.go, part of lgf.
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

//Package greens assembles the boundary-corrected lattice Green function
//matrix of a dislocation, one unit-force column at a time, using the
//continuum elastic Green function to stand in for the truncated far field.
package greens

import (
	lgf "github.com/aztan2/LatticeGreenFunction-new"
	"gonum.org/v1/gonum/mat"
)

//Evaluator is the contract with the continuum-elasticity collaborator: it
//fills dst with the 3x3 large-distance Green function tensor at in-plane
//distance R (Angstroms) and polar angle phi already reduced into [0,2pi).
//elastic.Model satisfies it.
type Evaluator interface {
	GLargeR(dst *mat.Dense, R, phi float64)
}

//SetBC computes the continuum displacements induced on every far-field atom
//by the point force fi acting on atom i, following u = -G(R,phi)*fi in the
//large-distance limit. The returned slice is flattened over the whole grid
//(length 3*size_all) and non-zero only for atoms at or beyond the "in"
//boundary. a0 scales the in-plane lattice-unit separations to Angstroms.
//A far-field atom coincident with the source in the mn plane cannot occur
//in a well-formed region decomposition and is reported as an error.
func SetBC(g *lgf.Grid, i int, fi [3]float64, ev Evaluator, a0 float64) ([]float64, error) {
	s := g.Sizes
	u := make([]float64, 3*s.All)
	G := mat.NewDense(3, 3, nil)
	for ff := s.In; ff < s.All; ff++ {
		r, phi := g.InPlaneDist(i, ff)
		R := a0 * r
		if R <= 0 {
			return nil, lgf.NewError("SetBC: far-field atom %d coincides with source atom %d in the mn plane", ff, i)
		}
		ev.GLargeR(G, R, phi)
		for a := 0; a < 3; a++ {
			u[3*ff+a] -= G.At(a, 0)*fi[0] + G.At(a, 1)*fi[1] + G.At(a, 2)*fi[2]
		}
	}
	return u, nil
}
