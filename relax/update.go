/*
 * update.go, part of lgf.
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
	"log/slog"
	"math"

	lgf "github.com/aztan2/LatticeGreenFunction-new"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

//UpdateStrategy applies the long-range displacement correction of one
//coupling cycle: displacements computed from the mnt-basis LGF matrix and
//the coupling-region forces, added to the grid coordinates. The two
//variants differ in which regions move; the legacy Partial variant's
//narrower contract (the core never moves) lives in its type, not in a
//string comparison.
type UpdateStrategy interface {
	Apply(g *lgf.Grid, G *mat.Dense, f2 []float64, log *slog.Logger) error
	Name() string
}

//DefaultMaxDisp is the cap on the root-mean-square displacement per update.
const DefaultMaxDisp = 1e2

//Full displaces regions 1+2+3 by G.f2. If the root-mean-square atomic
//displacement would exceed MaxDisp the whole field is scaled down
//uniformly, preserving its direction; a single unclamped step from an
//ill-conditioned or unconverged solve can otherwise throw the grid out of
//the harmonic basin. A0 converts the Angstrom displacement field into the
//lattice units the grid coordinates are kept in; zero means the grid is
//already in Angstroms.
type Full struct {
	MaxDisp float64 //DefaultMaxDisp when zero or negative
	A0      float64
}

func (f Full) Name() string { return "full" }

func (f Full) Apply(g *lgf.Grid, G *mat.Dense, f2 []float64, log *slog.Logger) error {
	s := g.Sizes
	if len(f2) != 3*s.N2() {
		panic(lgf.ErrForceShape)
	}
	var disp mat.VecDense
	disp.MulVec(G, mat.NewVecDense(len(f2), f2))
	d := disp.RawVector().Data
	rms := rmsDisp(d)
	maxd := f.MaxDisp
	if maxd <= 0 {
		maxd = DefaultMaxDisp
	}
	scale := 1.0
	if rms > maxd {
		scale = maxd / rms
	}
	log.Debug("LGF update", "rms", rms, "scale", scale)
	if a0 := f.A0; a0 > 0 && a0 != 1 {
		scale /= a0
	}
	if scale != 1 {
		floats.Scale(scale, d)
	}
	g.Displace123(d)
	return nil
}

//Partial is the legacy update: only coupling and buffer atoms move, using
//the matching row block of the LGF. There is no real reason to prefer it;
//it is kept for runs that need to reproduce old results.
type Partial struct {
	A0 float64
}

func (Partial) Name() string { return "partial" }

func (p Partial) Apply(g *lgf.Grid, G *mat.Dense, f2 []float64, log *slog.Logger) error {
	s := g.Sizes
	if len(f2) != 3*s.N2() {
		panic(lgf.ErrForceShape)
	}
	rows, cols := G.Dims()
	sub := G.Slice(3*s.N1, rows, 0, cols)
	var disp mat.VecDense
	disp.MulVec(sub, mat.NewVecDense(len(f2), f2))
	d := disp.RawVector().Data
	log.Debug("LGF update (legacy partial)", "rms", rmsDisp(d))
	if a0 := p.A0; a0 > 0 && a0 != 1 {
		floats.Scale(1/a0, d)
	}
	for i := s.N1; i < s.N123; i++ {
		a := g.Atom(i)
		k := 3 * (i - s.N1)
		a.M += d[k]
		a.N += d[k+1]
		a.T += d[k+2]
	}
	return nil
}

//rmsDisp is the root mean square of the per-atom displacement magnitudes.
func rmsDisp(d []float64) float64 {
	n := len(d) / 3
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += d[3*i]*d[3*i] + d[3*i+1]*d[3*i+1] + d[3*i+2]*d[3*i+2]
	}
	return math.Sqrt(sum / float64(n))
}

//StrategyFromName maps a configured method name to its strategy. The old
//dislLGF names are accepted as aliases so existing config files keep
//working. An unknown name is a fatal configuration error.
func StrategyFromName(name string, maxdisp, a0 float64) (UpdateStrategy, error) {
	switch name {
	case "full", "dislLGF123":
		return Full{MaxDisp: maxdisp, A0: a0}, nil
	case "partial", "dislLGF23":
		return Partial{A0: a0}, nil
	}
	return nil, lgf.NewError("invalid method %q: valid options are full, partial", name)
}
