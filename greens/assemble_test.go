/*
 * assemble_test.go, part of lgf.
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
	"context"
	"math"
	"path/filepath"
	"testing"

	lgf "github.com/aztan2/LatticeGreenFunction-new"
	"github.com/james-bowman/sparse"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

//radialEvaluator is a stand-in continuum model: an isotropic c/R tensor.
type radialEvaluator struct {
	c float64
}

func (ev radialEvaluator) GLargeR(dst *mat.Dense, R, phi float64) {
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			if a == b {
				dst.Set(a, b, ev.c/R)
			} else {
				dst.Set(a, b, 0)
			}
		}
	}
}

//toyGrid is a 7-atom grid with one atom per region plus an extra coupling
//and far-field atom, all in the mn plane.
func toyGrid(t *testing.T) *lgf.Grid {
	t.Helper()
	g, err := lgf.NewGrid([]lgf.Atom{
		{Index: 0, Reg: lgf.Core, M: 0, N: 0},
		{Index: 1, Reg: lgf.Coupling, M: 1, N: 0},
		{Index: 2, Reg: lgf.Coupling, M: 0, N: 1},
		{Index: 3, Reg: lgf.Buffer, M: 2, N: 0},
		{Index: 4, Reg: lgf.Fringe, M: 0, N: 2},
		{Index: 5, Reg: lgf.FarField, M: 10, N: 0},
		{Index: 6, Reg: lgf.FarField, M: 0, N: 10},
	}, lgf.RegionSizes{N1: 1, N12: 3, N123: 4, In: 5, All: 7})
	require.NoError(t, err)
	return g
}

//diagonal force constants, optionally with one symmetric buffer/far-field
//coupling entry to exercise the boundary correction
func toyD(withCoupling bool) *sparse.CSR {
	dok := sparse.NewDOK(21, 21)
	for i := 0; i < 21; i++ {
		dok.Set(i, i, 2.0)
	}
	if withCoupling {
		dok.Set(9, 15, -0.5)
		dok.Set(15, 9, -0.5)
	}
	return dok.ToCSR()
}

func TestSetBC(t *testing.T) {
	g := toyGrid(t)
	u, err := SetBC(g, 1, [3]float64{1, 0, 0}, radialEvaluator{c: 2}, 1.0)
	require.NoError(t, err)
	require.Len(t, u, 21)
	for i := 0; i < 15; i++ {
		require.Equal(t, 0.0, u[i], "displacement leaked inside the far-field boundary at %d", i)
	}
	//atom 5 at (10,0), source at (1,0): R = 9
	require.InDelta(t, -2.0/9.0, u[15], 1e-14)
	require.Equal(t, 0.0, u[16])
	require.Equal(t, 0.0, u[17])
	//atom 6 at (0,10): R = sqrt(101)
	require.InDelta(t, -2.0/math.Sqrt(101), u[18], 1e-14)
}

func TestAssembleUnitForceColumns(t *testing.T) {
	g := toyGrid(t)
	as := &Assembler{Grid: g, D: toyD(false), Ev: radialEvaluator{}, A0: 1}
	jmin, jmax := as.DefaultRange()
	require.Equal(t, 1, jmin)
	require.Equal(t, 2, jmax)

	G, err := as.Run(context.Background(), jmin, jmax)
	require.NoError(t, err)
	rows, cols := G.Dims()
	require.Equal(t, 12, rows)
	require.Equal(t, 6, cols)

	//with D = 2*I and no far-field reaction each column is half the unit
	//force, in atom-then-direction order
	for j := jmin; j <= jmax; j++ {
		for d := 0; d < 3; d++ {
			col := 3*(j-jmin) + d
			for r := 0; r < rows; r++ {
				want := 0.0
				if r == 3*j+d {
					want = 0.5
				}
				require.InDelta(t, want, G.At(r, col), 1e-9, "row %d col %d", r, col)
			}
		}
	}
}

func TestAssembleBoundaryCorrection(t *testing.T) {
	g := toyGrid(t)
	as := &Assembler{Grid: g, D: toyD(true), Ev: radialEvaluator{c: 2}, A0: 1}

	G, err := as.Run(context.Background(), 1, 1)
	require.NoError(t, err)

	//source atom 1 direction 0: the far-field atom at (10,0) sits R=9 away
	//and reacts back on buffer row 9 through the off-diagonal entry,
	//f[9] = -0.5 * (-c/R) and u = f/2
	require.InDelta(t, 0.5, G.At(3, 0), 1e-9)
	require.InDelta(t, 1.0/18.0, G.At(9, 0), 1e-9)
}

func TestAssembleBatchMatchesSingles(t *testing.T) {
	g := toyGrid(t)
	ev := radialEvaluator{c: 2}

	batch, err := (&Assembler{Grid: g, D: toyD(true), Ev: ev, A0: 1}).Run(context.Background(), 1, 2)
	require.NoError(t, err)

	for j := 1; j <= 2; j++ {
		single, err := (&Assembler{Grid: g, D: toyD(true), Ev: ev, A0: 1}).Run(context.Background(), j, j)
		require.NoError(t, err)
		for d := 0; d < 3; d++ {
			for r := 0; r < 12; r++ {
				require.Equal(t, single.At(r, d), batch.At(r, 3*(j-1)+d),
					"atom %d dir %d row %d differs between batch and single runs", j, d, r)
			}
		}
	}
}

func TestAssembleCheckpoint(t *testing.T) {
	g := toyGrid(t)
	path := filepath.Join(t.TempDir(), "toy.lgf")
	as := &Assembler{Grid: g, D: toyD(true), Ev: radialEvaluator{c: 2}, A0: 1, CheckpointPath: path}

	G, err := as.Run(context.Background(), 1, 2)
	require.NoError(t, err)

	meta, loaded, err := LoadLGF(path)
	require.NoError(t, err)
	require.Equal(t, Meta{Size1: 1, Size12: 3, Size123: 4, Cols: 6}, meta)
	require.NoError(t, meta.Validate(g.Sizes))
	require.True(t, mat.EqualApprox(G, loaded, 1e-15))
}

func TestAssembleInterruptedCheckpointMatchesFullRun(t *testing.T) {
	g := toyGrid(t)
	ev := radialEvaluator{c: 2}
	path := filepath.Join(t.TempDir(), "toy.lgf")

	//cancellation is only honored after the per-atom checkpoint flush, so a
	//pre-cancelled context stops the run right after the first source atom
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	as := &Assembler{Grid: g, D: toyD(true), Ev: ev, A0: 1, CheckpointPath: path}
	_, err := as.Run(ctx, 1, 2)
	require.ErrorIs(t, err, context.Canceled)

	meta, partial, err := LoadLGF(path)
	require.NoError(t, err)
	require.Equal(t, 3, meta.Cols)
	require.NoError(t, meta.Validate(g.Sizes))

	//redoing the whole range must reproduce the interrupted columns exactly
	full, err := (&Assembler{Grid: g, D: toyD(true), Ev: ev, A0: 1}).Run(context.Background(), 1, 2)
	require.NoError(t, err)
	require.True(t, mat.Equal(partial, full.Slice(0, 12, 0, 3)))
}

func TestAssembleRejectsBadRange(t *testing.T) {
	g := toyGrid(t)
	as := &Assembler{Grid: g, D: toyD(false), Ev: radialEvaluator{}, A0: 1}
	_, err := as.Run(context.Background(), 0, 2) //atom 0 is core, not coupling
	require.Error(t, err)
	_, err = as.Run(context.Background(), 1, 3) //atom 3 is buffer
	require.Error(t, err)
	_, err = as.Run(context.Background(), 2, 1)
	require.Error(t, err)
}

func TestAssembleRejectsWrongDims(t *testing.T) {
	g := toyGrid(t)
	dok := sparse.NewDOK(6, 6)
	for i := 0; i < 6; i++ {
		dok.Set(i, i, 1)
	}
	as := &Assembler{Grid: g, D: dok.ToCSR(), Ev: radialEvaluator{}, A0: 1}
	_, err := as.Run(context.Background(), 1, 2)
	require.Error(t, err)
}
