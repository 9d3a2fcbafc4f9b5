/*
 * main.go, part of lgf.
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

//calclgf assembles the lattice Green function matrix for a dislocation
//geometry: one unit point force per atom in the coupling region and
//Cartesian direction, far-field displacements from the continuum elastic
//Green function, and a conjugate-gradient solve of the harmonic lattice
//response for each column.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	lgf "github.com/aztan2/LatticeGreenFunction-new"
	"github.com/aztan2/LatticeGreenFunction-new/elastic"
	"github.com/aztan2/LatticeGreenFunction-new/greens"
	"github.com/spf13/cobra"
)

var (
	jmin      int
	jmax      int
	atomLabel string
	nAngles   int
	cgTol     float64
	logPath   string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "calclgf SETUPFILE GRIDFILE DFILE GFILE",
	Short: "Assemble the lattice Green function matrix for a dislocation geometry",
	Long: `Assemble the lattice Green function matrix for a dislocation geometry.

SETUPFILE holds the crystal setup (lattice constant, elastic constants,
orientation). GRIDFILE is the region-tagged atom grid in xyz format. DFILE
is the force-constant matrix in MatrixMarket coordinate format. GFILE
receives the assembled matrix and doubles as the running checkpoint: it is
rewritten after every source atom, so a killed job keeps the columns it
already paid for.

By default every atom in the coupling region is assembled. --jmin/--jmax
restrict the run to a sub-range so a large assembly can be split across
jobs; stitch the pieces back together in atom order.`,
	Args: cobra.ExactArgs(4),
	RunE: run,
}

func init() {
	rootCmd.Flags().IntVar(&jmin, "jmin", -1, "first source atom index (default: start of the coupling region)")
	rootCmd.Flags().IntVar(&jmax, "jmax", -1, "last source atom index, inclusive (default: end of the coupling region)")
	rootCmd.Flags().StringVar(&atomLabel, "atomlabel", "W", "element label expected in the grid file")
	rootCmd.Flags().IntVar(&nAngles, "nangles", 256, "angular resolution of the continuum Green function")
	rootCmd.Flags().Float64Var(&cgTol, "tol", greens.DefaultTol, "relative residual tolerance of the per-column solve")
	rootCmd.Flags().StringVar(&logPath, "log", "", "also write the log to this file")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log every solver iteration summary")
}

func run(cmd *cobra.Command, args []string) error {
	log, cleanup, err := newLogger(logPath, verbose)
	if err != nil {
		return err
	}
	defer cleanup()

	st, err := lgf.OpenSetup(args[0])
	if err != nil {
		return err
	}
	grid, err := lgf.OpenGridXYZ(args[1], []string{atomLabel}, st.A0)
	if err != nil {
		return err
	}
	D, err := lgf.OpenForceConstants(args[2])
	if err != nil {
		return err
	}
	log.Info("inputs read", "atoms", grid.Len(),
		"size_1", grid.Sizes.N1, "size_12", grid.Sizes.N12, "size_123", grid.Sizes.N123)

	C, err := elastic.NewStiffness(elastic.CrystalClass(st.Class), st.Cij)
	if err != nil {
		return err
	}
	model, err := elastic.NewModel(nAngles, C, st.M, st.A0, st.Volume(), st.TMag)
	if err != nil {
		return err
	}

	as := &greens.Assembler{
		Grid:           grid,
		D:              D,
		Ev:             model,
		A0:             st.A0,
		Tol:            cgTol,
		Logger:         log,
		CheckpointPath: args[3],
	}
	lo, hi := as.DefaultRange()
	if jmin >= 0 {
		lo = jmin
	}
	if jmax >= 0 {
		hi = jmax
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	log.Info("assembling", "jmin", lo, "jmax", hi, "columns", 3*(hi-lo+1))
	if _, err := as.Run(ctx, lo, hi); err != nil {
		return err
	}
	log.Info("done", "file", args[3])
	return nil
}

//newLogger builds the program logger. With a log file the same stream
//goes both to stderr and to the file.
func newLogger(path string, verbose bool) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	var w io.Writer = os.Stderr
	cleanup := func() {}
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %v", err)
		}
		w = io.MultiWriter(os.Stderr, f)
		cleanup = func() { f.Close() }
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), cleanup, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
