/*
 * elastic_test.go, part of lgf.
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

package elastic

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestConstructVoigtCubic(t *testing.T) {
	v, err := ConstructVoigt(Cubic, []float64{522.2, 204.3, 160.8})
	require.NoError(t, err)
	require.Equal(t, 522.2, v.At(0, 0))
	require.Equal(t, 522.2, v.At(2, 2))
	require.Equal(t, 204.3, v.At(0, 1))
	require.Equal(t, 204.3, v.At(1, 2))
	require.Equal(t, 160.8, v.At(3, 3))
	require.Equal(t, 160.8, v.At(5, 5))
	require.Equal(t, 0.0, v.At(0, 3))
}

func TestConstructVoigtWrongCount(t *testing.T) {
	_, err := ConstructVoigt(Cubic, []float64{522.2, 204.3})
	require.Error(t, err)
	_, err = ConstructVoigt(Hexagonal, []float64{1, 2, 3})
	require.Error(t, err)
}

func TestCrystalClassNCij(t *testing.T) {
	require.Equal(t, 2, Isotropic.NCij())
	require.Equal(t, 3, Cubic.NCij())
	require.Equal(t, 5, Hexagonal.NCij())
}

func TestExpandSymmetries(t *testing.T) {
	v, err := ConstructVoigt(Hexagonal, []float64{181.0, 77.0, 66.0, 197.0, 46.0})
	require.NoError(t, err)
	c := Expand(v)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				for l := 0; l < 3; l++ {
					require.Equal(t, c[i][j][k][l], c[j][i][k][l])
					require.Equal(t, c[i][j][k][l], c[i][j][l][k])
					require.Equal(t, c[i][j][k][l], c[k][l][i][j])
				}
			}
		}
	}
}

func TestNewStiffnessUnits(t *testing.T) {
	c, err := NewStiffness(Cubic, []float64{522.2, 204.3, 160.8})
	require.NoError(t, err)
	require.InDelta(t, 522.2*GPa2eVA3, c[0][0][0][0], 1e-12)
	require.InDelta(t, 204.3*GPa2eVA3, c[0][0][1][1], 1e-12)
	//C44 couples the off-diagonal strains
	require.InDelta(t, 160.8*GPa2eVA3, c[0][1][0][1], 1e-12)
}

func TestChristoffelIsotropic(t *testing.T) {
	c, err := NewStiffness(Isotropic, []float64{100.0, 40.0})
	require.NoError(t, err)
	gamma := mat.NewDense(3, 3, nil)
	c.Christoffel(gamma, [3]float64{1, 0, 0})
	//longitudinal branch C11, transverse branches C44 = (C11-C12)/2
	require.InDelta(t, 100.0*GPa2eVA3, gamma.At(0, 0), 1e-12)
	require.InDelta(t, 30.0*GPa2eVA3, gamma.At(1, 1), 1e-12)
	require.InDelta(t, 30.0*GPa2eVA3, gamma.At(2, 2), 1e-12)
	require.InDelta(t, 0.0, gamma.At(0, 1), 1e-12)
}
