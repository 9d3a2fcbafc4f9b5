/*
 * assemble.go, part of lgf.
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
	"log/slog"
	"time"

	lgf "github.com/aztan2/LatticeGreenFunction-new"
	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

//DefaultTol is the relative residual tolerance of the per-column solve.
const DefaultTol = 1e-8

//Assembler computes columns of the lattice Green function matrix. All
//inputs are read-only during a run; the growing matrix and its on-disk
//checkpoint are the only mutable state.
type Assembler struct {
	Grid *lgf.Grid
	D    *sparse.CSR //force-constant matrix, 3*size_all square, symmetric
	Ev   Evaluator
	A0   float64 //lattice constant, Angstroms

	Tol     float64 //relative CG tolerance; DefaultTol when zero
	MaxIter int     //CG iteration cap; 10x the system size when zero
	Logger  *slog.Logger

	//CheckpointPath, when non-empty, receives the matrix computed so far
	//after every source atom (3 columns). Each flush rewrites the whole
	//file; re-running a range recomputes it from scratch rather than
	//resuming mid-range.
	CheckpointPath string
}

//DefaultRange returns the full coupling region, the range assembled when
//the caller does not restrict it.
func (as *Assembler) DefaultRange() (jmin, jmax int) {
	return as.Grid.Sizes.N1, as.Grid.Sizes.N12 - 1
}

//Run assembles the LGF columns for source atoms jmin through jmax
//inclusive, three Cartesian directions each, in fixed order: atom index
//ascending, then direction 0,1,2. The returned matrix has 3*size_123 rows
//and 3*(jmax-jmin+1) columns. Column values are bit-reproducible given the
//same inputs and tolerance; downstream consumers rely on the order.
//
//A column whose solve does not reach tolerance is logged and kept with the
//best available solution; a best-effort matrix beats halting a batch job.
//ctx is only inspected between source atoms, right after the checkpoint
//flush, so an interrupted run leaves a loadable file behind.
func (as *Assembler) Run(ctx context.Context, jmin, jmax int) (*mat.Dense, error) {
	log := as.Logger
	if log == nil {
		log = slog.Default()
	}
	s := as.Grid.Sizes
	if jmin < s.N1 || jmax >= s.N12 || jmin > jmax {
		return nil, lgf.NewError("Assembler: range [%d,%d] outside the coupling region [%d,%d]",
			jmin, jmax, s.N1, s.N12-1)
	}
	if r, c := as.D.Dims(); r != 3*s.All || c != 3*s.All {
		return nil, lgf.NewError("Assembler: force-constant matrix is %dx%d, want %dx%d", r, c, 3*s.All, 3*s.All)
	}
	tol := as.Tol
	if tol == 0 {
		tol = DefaultTol
	}
	nIn := 3 * s.In
	maxIter := as.MaxIter
	if maxIter == 0 {
		maxIter = 10 * nIn
	}

	mulIn := func(x, y []float64) {
		for i := range y {
			y[i] = 0
		}
		as.D.DoNonZero(func(i, j int, v float64) {
			if i < nIn && j < nIn {
				y[i] += v * x[j]
			}
		})
	}

	G := mat.NewDense(3*s.N123, 3*(jmax-jmin+1), nil)
	for j := jmin; j <= jmax; j++ {
		for d := 0; d < 3; d++ {
			//unit point force on (atom j, direction d)
			f := make([]float64, nIn)
			f[3*j+d] = 1
			var fi [3]float64
			fi[d] = 1

			//continuum displacements on the truncated far field
			ubc, err := SetBC(as.Grid, j, fi, as.Ev, as.A0)
			if err != nil {
				return nil, errCtx(err, j, d)
			}

			//boundary correction: the elastic reaction of the discarded
			//far field injected back onto the retained boundary,
			//f_eff = f + D.u_bc restricted to the "in" block
			as.D.DoNonZero(func(i, k int, v float64) {
				if i < nIn {
					f[i] += v * ubc[k]
				}
			})

			t0 := time.Now()
			u, st := cg(mulIn, f, tol, maxIter)
			log.Debug("column solve", "atom", j, "dir", d,
				"iterations", st.Iterations, "residual", st.Residual,
				"converged", st.Converged, "elapsed", time.Since(t0))
			if !st.Converged {
				log.Warn("solver did not converge, recording best available solution",
					"atom", j, "dir", d, "iterations", st.Iterations, "residual", st.Residual)
			}

			G.SetCol(3*(j-jmin)+d, u[:3*s.N123])
			log.Info("assembled column", "atom", j, "dir", d)
		}
		if as.CheckpointPath != "" {
			done := G.Slice(0, 3*s.N123, 0, 3*(j-jmin+1)).(*mat.Dense)
			meta := Meta{Size1: s.N1, Size12: s.N12, Size123: s.N123, Cols: 3 * (j - jmin + 1)}
			if err := SaveLGF(as.CheckpointPath, meta, done); err != nil {
				return nil, errCtx(err, j, -1)
			}
		}
		select {
		case <-ctx.Done():
			return G, ctx.Err()
		default:
		}
	}
	return G, nil
}

func errCtx(err error, j, d int) error {
	if d < 0 {
		return lgf.NewError("Assembler: atom %d: %v", j, err)
	}
	return lgf.NewError("Assembler: atom %d direction %d: %v", j, d, err)
}
