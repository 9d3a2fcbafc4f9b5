/*
 * update_test.go, part of lgf.
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

package relax

import (
	"io"
	"log/slog"
	"testing"

	lgf "github.com/aztan2/LatticeGreenFunction-new"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

//updateGrid has one core, one coupling and one buffer atom, nothing else.
func updateGrid(t *testing.T) *lgf.Grid {
	t.Helper()
	g, err := lgf.NewGrid([]lgf.Atom{
		{Index: 0, Reg: lgf.Core},
		{Index: 1, Reg: lgf.Coupling, M: 1},
		{Index: 2, Reg: lgf.Buffer, N: 1},
	}, lgf.RegionSizes{N1: 1, N12: 2, N123: 3, In: 3, All: 3})
	require.NoError(t, err)
	return g
}

func TestFullClampsRMSDisplacement(t *testing.T) {
	g := updateGrid(t)
	//G maps the unit force on (atom 1, m) to 500 Angstroms of m
	//displacement on every atom: rms 500, cap 100, so the exact scale
	//factor is 0.2
	G := mat.NewDense(9, 3, nil)
	for i := 0; i < 3; i++ {
		G.Set(3*i, 0, 500)
	}
	err := Full{MaxDisp: 100}.Apply(g, G, []float64{1, 0, 0}, discard)
	require.NoError(t, err)
	require.InDelta(t, 100.0, g.Atom(0).M, 1e-12)
	require.InDelta(t, 101.0, g.Atom(1).M, 1e-12)
	require.InDelta(t, 100.0, g.Atom(2).M, 1e-12)
}

func TestFullSmallStepUnclamped(t *testing.T) {
	g := updateGrid(t)
	G := mat.NewDense(9, 3, nil)
	G.Set(0, 0, 0.5)
	G.Set(4, 0, -0.25)
	err := Full{MaxDisp: 100}.Apply(g, G, []float64{1, 0, 0}, discard)
	require.NoError(t, err)
	require.InDelta(t, 0.5, g.Atom(0).M, 1e-14)
	require.InDelta(t, -0.25, g.Atom(1).N, 1e-14)
	require.InDelta(t, 1.0, g.Atom(2).N, 1e-14)
}

func TestFullConvertsToLatticeUnits(t *testing.T) {
	g := updateGrid(t)
	G := mat.NewDense(9, 3, nil)
	G.Set(0, 0, 3.0) //Angstroms
	err := Full{MaxDisp: 100, A0: 2.0}.Apply(g, G, []float64{1, 0, 0}, discard)
	require.NoError(t, err)
	require.InDelta(t, 1.5, g.Atom(0).M, 1e-14)
}

func TestPartialNeverMovesCore(t *testing.T) {
	g := updateGrid(t)
	G := mat.NewDense(9, 3, nil)
	for i := 0; i < 9; i++ {
		for j := 0; j < 3; j++ {
			G.Set(i, j, 1)
		}
	}
	err := Partial{}.Apply(g, G, []float64{1, 0, 0}, discard)
	require.NoError(t, err)
	require.Equal(t, 0.0, g.Atom(0).M)
	require.Equal(t, 0.0, g.Atom(0).N)
	require.Equal(t, 0.0, g.Atom(0).T)
	//rows 3..8 of G each sum f2 to 1
	require.InDelta(t, 2.0, g.Atom(1).M, 1e-14)
	require.InDelta(t, 1.0, g.Atom(2).M, 1e-14)
	require.InDelta(t, 2.0, g.Atom(2).N, 1e-14)
}

func TestApplyPanicsOnWrongForceShape(t *testing.T) {
	g := updateGrid(t)
	G := mat.NewDense(9, 3, nil)
	require.Panics(t, func() { Full{}.Apply(g, G, []float64{1, 0}, discard) })
}

func TestStrategyFromName(t *testing.T) {
	for name, want := range map[string]string{
		"full":       "full",
		"dislLGF123": "full",
		"partial":    "partial",
		"dislLGF23":  "partial",
	} {
		s, err := StrategyFromName(name, 10, 1)
		require.NoError(t, err)
		require.Equal(t, want, s.Name())
	}
	_, err := StrategyFromName("einstein", 10, 1)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid method")
}
