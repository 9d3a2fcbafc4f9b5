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

//dislrelax relaxes a dislocation core by alternating a LAMMPS minimization
//of the inner regions with lattice Green function displacement updates of
//the whole flexible zone, until the forces in the core and coupling
//regions drop below tolerance.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	lgf "github.com/aztan2/LatticeGreenFunction-new"
	"github.com/aztan2/LatticeGreenFunction-new/greens"
	"github.com/aztan2/LatticeGreenFunction-new/md"
	"github.com/aztan2/LatticeGreenFunction-new/relax"
	"github.com/spf13/cobra"
	"gopkg.in/gcfg.v1"
)

//Config is the dislrelax ini file: a [lammps] section for the engine and
//a [relax] section for the coupling loop.
type Config struct {
	Lammps md.Settings
	Relax  RelaxConfig
}

type RelaxConfig struct {
	FTol         float64
	MaxOuterIter int
	Method       string  //"full" or "partial"
	MaxDisp      float64 //RMS displacement cap per update, Angstroms
	Evolution    string  //force-evolution file; "" disables
	Plot         string  //force-evolution plot; "" disables
}

func (rc *RelaxConfig) CheckInit() error {
	if rc.FTol <= 0 {
		return fmt.Errorf("config: [relax] needs a positive ftol")
	}
	if rc.Method == "" {
		rc.Method = "full"
	}
	return nil
}

var (
	atomLabel string
	logPath   string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "dislrelax SETUPFILE GRIDFILE GFILE CONFIGFILE",
	Short: "Relax a dislocation core with lattice Green function flexible boundaries",
	Long: `Relax a dislocation core with lattice Green function flexible
boundary conditions.

SETUPFILE and GRIDFILE are the same crystal setup and region-tagged atom
grid used to assemble the LGF. GFILE is the matrix written by calclgf for
the full coupling region. CONFIGFILE is an ini file with a [lammps]
section (engine command, pair style and coefficients) and a [relax]
section (force tolerance, update method, iteration cap).

The relaxed grid is written back over GRIDFILE's engine deck in the
LAMMPS working directory; the force evolution goes wherever [relax]
points it.`,
	Args: cobra.ExactArgs(4),
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVar(&atomLabel, "atomlabel", "W", "element label expected in the grid file")
	rootCmd.Flags().StringVar(&logPath, "log", "", "also write the log to this file")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log displacement and solver details")
}

func run(cmd *cobra.Command, args []string) error {
	log, cleanup, err := newLogger(logPath, verbose)
	if err != nil {
		return err
	}
	defer cleanup()

	var cfg Config
	if err := gcfg.ReadFileInto(&cfg, args[3]); err != nil {
		return fmt.Errorf("reading %s: %v", args[3], err)
	}
	if err := cfg.Lammps.CheckInit(); err != nil {
		return err
	}
	if err := cfg.Relax.CheckInit(); err != nil {
		return err
	}

	st, err := lgf.OpenSetup(args[0])
	if err != nil {
		return err
	}
	grid, err := lgf.OpenGridXYZ(args[1], []string{atomLabel}, st.A0)
	if err != nil {
		return err
	}
	meta, Graw, err := greens.LoadLGF(args[2])
	if err != nil {
		return err
	}
	G, err := relax.RotateToMNT(meta, Graw, grid.Sizes, st.M)
	if err != nil {
		return err
	}
	log.Info("inputs read", "atoms", grid.Len(), "lgf_columns", meta.Cols)

	engine, err := md.NewLAMMPS(cfg.Lammps, grid.Sizes, st.A0, st.TMag, log)
	if err != nil {
		return err
	}
	if err := engine.WriteDeck(grid); err != nil {
		return err
	}
	update, err := relax.StrategyFromName(cfg.Relax.Method, cfg.Relax.MaxDisp, st.A0)
	if err != nil {
		return err
	}
	coupler, err := relax.NewCoupler(grid, engine, G, update, relax.Options{
		FTol:          cfg.Relax.FTol,
		MaxOuterIter:  cfg.Relax.MaxOuterIter,
		EvolutionPath: cfg.Relax.Evolution,
		PlotPath:      cfg.Relax.Plot,
		Logger:        log,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	state, err := coupler.Run(ctx)
	if err != nil {
		return err
	}
	if state != relax.Converged {
		return fmt.Errorf("relaxation ended %s after %d iterations", state, len(coupler.Evolution()))
	}
	log.Info("relaxation converged", "iterations", len(coupler.Evolution()))
	return nil
}

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
