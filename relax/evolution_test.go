/*
 * evolution_test.go, part of lgf.
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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvolutionRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "force.evolution")
	in := []float64{12.5, 3.25, 0.5, 1e-7}
	require.NoError(t, WriteEvolution(path, in))
	out, err := ReadEvolution(path)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestPlotEvolution(t *testing.T) {
	path := filepath.Join(t.TempDir(), "force.png")
	require.NoError(t, PlotEvolution(path, []float64{10, 1, 0.1, 0.01}))
	fi, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, fi.Size(), int64(0))

	require.Error(t, PlotEvolution(path, nil))
}

func TestPlotEvolutionHandlesZeroForce(t *testing.T) {
	//a run that relaxes to exactly zero force must still plot
	path := filepath.Join(t.TempDir(), "force.png")
	require.NoError(t, PlotEvolution(path, []float64{10, 1, 0}))
	fi, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, fi.Size(), int64(0))

	require.Error(t, PlotEvolution(path, []float64{0, 0}))
}
