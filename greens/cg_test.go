/*
 * cg_test.go, part of lgf.
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
	"testing"

	"github.com/stretchr/testify/require"
)

//a small SPD system with a known solution: A = tridiag(-1, 2, -1)
func tridiagMulVec(x, y []float64) {
	n := len(x)
	for i := 0; i < n; i++ {
		y[i] = 2 * x[i]
		if i > 0 {
			y[i] -= x[i-1]
		}
		if i < n-1 {
			y[i] -= x[i+1]
		}
	}
}

func TestCGSolvesSPD(t *testing.T) {
	n := 10
	want := make([]float64, n)
	for i := range want {
		want[i] = float64(i%3) + 0.5
	}
	b := make([]float64, n)
	tridiagMulVec(want, b)

	x, st := cg(tridiagMulVec, b, 1e-10, 1000)
	require.True(t, st.Converged)
	require.LessOrEqual(t, st.Residual, 1e-10)
	for i := range want {
		require.InDelta(t, want[i], x[i], 1e-8)
	}
}

func TestCGZeroRHS(t *testing.T) {
	x, st := cg(tridiagMulVec, make([]float64, 5), 1e-10, 100)
	require.True(t, st.Converged)
	require.Equal(t, 0, st.Iterations)
	for _, v := range x {
		require.Equal(t, 0.0, v)
	}
}

func TestCGHitsIterationCap(t *testing.T) {
	b := make([]float64, 50)
	for i := range b {
		b[i] = 1
	}
	_, st := cg(tridiagMulVec, b, 1e-14, 2)
	require.False(t, st.Converged)
	require.Equal(t, 2, st.Iterations)
}
