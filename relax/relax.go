/*
 * relax.go, part of lgf.
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

//Package relax couples the short-range atomistic relaxation of a
//dislocation core to the long-range elastic correction encoded in the
//lattice Green function matrix, alternating the two until the forces in
//the core and coupling regions converge.
package relax

import (
	"context"
	"log/slog"
	"math"

	lgf "github.com/aztan2/LatticeGreenFunction-new"
	"github.com/aztan2/LatticeGreenFunction-new/md"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

//State of the coupling loop. Converged, Diverged and MaxIterReached are
//terminal.
type State int

const (
	Initial State = iota
	Relaxing
	Converged
	Diverged
	MaxIterReached
)

func (s State) String() string {
	switch s {
	case Initial:
		return "initial"
	case Relaxing:
		return "relaxing"
	case Converged:
		return "converged"
	case Diverged:
		return "diverged"
	case MaxIterReached:
		return "max-iterations-reached"
	}
	return "unknown"
}

//DivergeNorm is the fixed force-norm threshold beyond which the run is
//declared divergent: if the forces blow up past this, something has gone
//very wrong and further cycles only dig deeper.
const DivergeNorm = 1e2

//Options configures a Coupler. FTol is required; everything else has a
//usable default.
type Options struct {
	FTol          float64 //convergence tolerance on the max force component
	MaxOuterIter  int     //cap on outer iterations; 51 when zero
	EvolutionPath string  //force-evolution file, rewritten every iteration; "" disables
	PlotPath      string  //force-evolution plot written at the end; "" disables
	Logger        *slog.Logger
}

//Coupler is the relaxation coupling engine. It owns the grid coordinates
//for the duration of a run; the LGF matrix and options are read-only.
type Coupler struct {
	grid      *lgf.Grid
	engine    md.Handle
	G         *mat.Dense //already rotated into the mnt basis
	update    UpdateStrategy
	opt       Options
	log       *slog.Logger
	state     State
	evolution []float64
}

//NewCoupler validates the pieces and returns a coupler in the Initial
//state. G must be the mnt-basis LGF with 3*size_123 rows and 3*size_2
//columns (see RotateToMNT).
func NewCoupler(g *lgf.Grid, engine md.Handle, G *mat.Dense, update UpdateStrategy, opt Options) (*Coupler, error) {
	if g == nil || engine == nil || G == nil || update == nil {
		return nil, lgf.NewError("NewCoupler: nil grid, engine, matrix or strategy")
	}
	s := g.Sizes
	if rows, cols := G.Dims(); rows != 3*s.N123 || cols != 3*s.N2() {
		return nil, lgf.NewError("NewCoupler: G has the wrong shape: %dx%d, want %dx%d",
			rows, cols, 3*s.N123, 3*s.N2())
	}
	if opt.FTol <= 0 {
		return nil, lgf.NewError("NewCoupler: force tolerance must be positive")
	}
	if opt.MaxOuterIter <= 0 {
		opt.MaxOuterIter = 51
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	return &Coupler{grid: g, engine: engine, G: G, update: update, opt: opt, log: opt.Logger}, nil
}

//State returns the current loop state.
func (c *Coupler) State() State { return c.state }

//Evolution returns the max force recorded at each outer iteration so far.
func (c *Coupler) Evolution() []float64 { return c.evolution }

//Run drives the coupling loop until convergence, divergence or the
//iteration cap, and returns the terminal state. Divergence and the cap
//are not errors: both leave partial results and the force-evolution log
//behind for inspection. ctx is only checked between outer iterations; the
//engine calls themselves are synchronous and uninterruptible.
func (c *Coupler) Run(ctx context.Context) (State, error) {
	forces, err := c.engine.Forces()
	if err != nil {
		return c.state, errSetup(err)
	}
	f12 := forces[:3*c.grid.Sizes.N12]
	c.state = Relaxing
	for iter := 1; iter <= c.opt.MaxOuterIter; iter++ {
		fmax := maxAbs(f12)
		fnorm := floats.Norm(f12, 2)
		c.log.Info("outer iteration", "iteration", iter, "force_norm", fnorm, "force_max", fmax)
		c.evolution = append(c.evolution, fmax)
		if c.opt.EvolutionPath != "" {
			if err := WriteEvolution(c.opt.EvolutionPath, c.evolution); err != nil {
				return c.state, err
			}
		}
		if fmax < c.opt.FTol {
			c.state = Converged
			break
		}
		if fnorm > DivergeNorm {
			c.log.Error("force norm exceeds stability threshold, stopping",
				"force_norm", fnorm, "threshold", DivergeNorm)
			c.state = Diverged
			break
		}
		select {
		case <-ctx.Done():
			return c.state, ctx.Err()
		default:
		}
		if forces, err = c.cycle(); err != nil {
			return c.state, err
		}
		f12 = forces[:3*c.grid.Sizes.N12]
	}
	if c.state == Relaxing {
		c.log.Warn("outer iteration cap reached without convergence",
			"iterations", c.opt.MaxOuterIter)
		c.state = MaxIterReached
	} else {
		c.log.Info("relaxation finished", "state", c.state.String(),
			"iterations", len(c.evolution))
	}
	if c.opt.PlotPath != "" {
		if err := PlotEvolution(c.opt.PlotPath, c.evolution); err != nil {
			c.log.Warn("could not write force-evolution plot", "error", err)
		}
	}
	return c.state, nil
}

//cycle performs one coupling cycle: relax the core, measure forces, apply
//the LGF displacement update, rewrite the engine deck and recompute
//forces.
func (c *Coupler) cycle() ([]float64, error) {
	s := c.grid.Sizes
	coords, forces, err := c.engine.RelaxCore()
	if err != nil {
		return nil, errSetup(err)
	}
	c.grid.SetCoords123(coords)
	f2 := forces[3*s.N1 : 3*s.N12]
	if err := c.update.Apply(c.grid, c.G, f2, c.log); err != nil {
		return nil, err
	}
	if err := c.engine.WriteDeck(c.grid); err != nil {
		return nil, errSetup(err)
	}
	return c.engine.Forces()
}

func maxAbs(v []float64) float64 {
	var m float64
	for _, x := range v {
		if a := math.Abs(x); a > m {
			m = a
		}
	}
	return m
}

func errSetup(err error) error {
	if lerr, ok := err.(lgf.Error); ok {
		lerr.Decorate("relax.Coupler")
		return lerr
	}
	return lgf.NewError("relax: engine: %v", err)
}
