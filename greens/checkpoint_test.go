/*
 * checkpoint_test.go, part of lgf.
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
	"path/filepath"
	"testing"

	lgf "github.com/aztan2/LatticeGreenFunction-new"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestSaveLoadLGF(t *testing.T) {
	meta := Meta{Size1: 1, Size12: 3, Size123: 4, Cols: 6}
	G := mat.NewDense(12, 6, nil)
	for i := 0; i < 12; i++ {
		for j := 0; j < 6; j++ {
			G.Set(i, j, float64(i)*0.25-float64(j)*1.75)
		}
	}
	path := filepath.Join(t.TempDir(), "g.lgf")
	require.NoError(t, SaveLGF(path, meta, G))

	got, loaded, err := LoadLGF(path)
	require.NoError(t, err)
	require.Equal(t, meta, got)
	require.True(t, mat.Equal(G, loaded))
}

func TestLoadLGFRejectsDimMismatch(t *testing.T) {
	meta := Meta{Size1: 1, Size12: 3, Size123: 5, Cols: 6} //claims 15 rows
	G := mat.NewDense(12, 6, nil)
	path := filepath.Join(t.TempDir(), "g.lgf")
	require.NoError(t, SaveLGF(path, meta, G))
	_, _, err := LoadLGF(path)
	require.Error(t, err)
}

func TestMetaValidate(t *testing.T) {
	sizes := lgf.RegionSizes{N1: 1, N12: 3, N123: 4, In: 5, All: 7}
	require.NoError(t, Meta{Size1: 1, Size12: 3, Size123: 4}.Validate(sizes))

	err := Meta{Size1: 2, Size12: 3, Size123: 4}.Validate(sizes)
	require.Error(t, err)
	require.Contains(t, err.Error(), "size_1")

	err = Meta{Size1: 1, Size12: 4, Size123: 4}.Validate(sizes)
	require.Error(t, err)
	require.Contains(t, err.Error(), "size_12")

	err = Meta{Size1: 1, Size12: 3, Size123: 5}.Validate(sizes)
	require.Error(t, err)
	require.Contains(t, err.Error(), "size_123")
}
