/*
 * cg.go, part of lgf.
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

package greens

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

//SolveStatus reports how an iterative solve ended. Non-convergence is
//diagnostic, not fatal: the best available solution is still used.
type SolveStatus struct {
	Iterations int
	Residual   float64 //final residual norm relative to |b|
	Converged  bool
}

//every this many iterations the residual is recomputed from scratch
//instead of updated, to stop floating-point drift from accumulating.
const recomputeInterval = 50

//cg solves A x = b by unpreconditioned conjugate gradient, with A a
//symmetric positive definite operator given as its matrix-vector product
//(mulVec must set y = A x). Convergence is reached when the residual norm
//drops below tol*|b|.
func cg(mulVec func(x, y []float64), b []float64, tol float64, maxIter int) ([]float64, SolveStatus) {
	n := len(b)
	x := make([]float64, n)
	r := make([]float64, n)
	d := make([]float64, n)
	ad := make([]float64, n)

	//x starts at zero, so r = b
	copy(r, b)
	copy(d, b)
	rDotr := floats.Dot(r, r)
	bNorm := math.Sqrt(rDotr)
	if bNorm == 0 {
		return x, SolveStatus{Converged: true}
	}
	threshold := tol * bNorm

	var st SolveStatus
	for st.Iterations = 0; st.Iterations < maxIter; st.Iterations++ {
		if math.Sqrt(rDotr) <= threshold {
			break
		}
		mulVec(d, ad)
		dDotAd := floats.Dot(d, ad)
		if dDotAd == 0 {
			break
		}
		alpha := rDotr / dDotAd
		floats.AddScaled(x, alpha, d)
		if (st.Iterations+1)%recomputeInterval == 0 {
			mulVec(x, r)
			floats.Scale(-1, r)
			floats.Add(r, b)
		} else {
			floats.AddScaled(r, -alpha, ad)
		}
		rDotrOld := rDotr
		rDotr = floats.Dot(r, r)
		beta := rDotr / rDotrOld
		for i := range d {
			d[i] = r[i] + beta*d[i]
		}
	}
	st.Residual = math.Sqrt(rDotr) / bNorm
	st.Converged = math.Sqrt(rDotr) <= threshold
	return x, st
}
