/*
 * rotate.go, part of lgf.
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
	lgf "github.com/aztan2/LatticeGreenFunction-new"
	"github.com/aztan2/LatticeGreenFunction-new/greens"
	"gonum.org/v1/gonum/mat"
)

//RotateToMNT checks a stored LGF matrix against the grid partition and
//rotates every 3x3 block from the cartesian basis the assembly works in to
//the mnt basis the grid coordinates live in: M^T G_block M, with M the
//mnt-to-cartesian rotation. This runs once at setup; the coupling cycles
//consume the rotated matrix as-is. A region-size mismatch or a wrong shape
//is a fatal configuration error.
func RotateToMNT(meta greens.Meta, G *mat.Dense, s lgf.RegionSizes, M *mat.Dense) (*mat.Dense, error) {
	if err := meta.Validate(s); err != nil {
		return nil, err
	}
	rows, cols := G.Dims()
	if rows != 3*s.N123 || cols != 3*s.N2() {
		return nil, lgf.NewError("RotateToMNT: G has the wrong shape: %dx%d, want %dx%d",
			rows, cols, 3*s.N123, 3*s.N2())
	}
	if r, c := M.Dims(); r != 3 || c != 3 {
		return nil, lgf.NewError("RotateToMNT: M must be 3x3, got %dx%d", r, c)
	}
	out := mat.NewDense(rows, cols, nil)
	var block, tmp mat.Dense
	for i := 0; i < s.N123; i++ {
		for j := 0; j < s.N2(); j++ {
			sub := G.Slice(3*i, 3*i+3, 3*j, 3*j+3)
			tmp.Mul(sub, M)
			block.Mul(M.T(), &tmp)
			for a := 0; a < 3; a++ {
				for b := 0; b < 3; b++ {
					out.Set(3*i+a, 3*j+b, block.At(a, b))
				}
			}
		}
	}
	return out, nil
}
