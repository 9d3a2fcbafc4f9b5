/*
 * md.go, part of lgf.
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

//Package md drives external short-range atomistic engines. The relaxation
//coupling only ever talks to the Handle interface; the concrete drivers
//build the engine input files, run the program and parse its output back.
package md

import lgf "github.com/aztan2/LatticeGreenFunction-new"

//Handle is the contract with the atomistic-engine collaborator. Both
//operations run the engine synchronously to completion and preserve atom
//order; the slices they return are flattened m,n,t (or force component)
//triplets for atoms 0..size_123. Coordinates are in the grid's lattice
//units, forces in eV/Angstrom; the drivers do the unit conversion.
type Handle interface {
	//RelaxCore relaxes the core region with coupling and buffer held
	//fixed, to the engine's force tolerance or iteration cap, then
	//measures forces on regions 1+2+3 with the core now fixed and
	//coupling+buffer released. It returns the post-relaxation coordinates
	//and the measured forces.
	RelaxCore() (coords, forces []float64, err error)

	//Forces computes forces on regions 1+2+3 with the buffer frozen and
	//no relaxation at all.
	Forces() (forces []float64, err error)

	//WriteDeck rewrites the engine's atom-position input deck from the
	//current grid coordinates. The coupling loop calls it after every
	//displacement update.
	WriteDeck(g *lgf.Grid) error
}

//Settings configures a driver. The zero value is not usable; fill it by
//hand or from a gcfg config file section and call CheckInit.
type Settings struct {
	Command   string //engine binary
	WorkDir   string //where decks, scripts and dumps are written
	DataFile  string //deck filename the scripts read
	PairStyle string //e.g. "pair_style eam/fs"
	PairCoeff string //e.g. "pair_coeff * * ./w_eam4.fs W W W"
	MaxCGIter int    //minimizer iteration cap per core relaxation
	FTol      float64
	//Antiplane restricts relaxation and force measurement to the
	//threading direction.
	Antiplane bool
}

//CheckInit fills defaults and validates the required fields.
func (s *Settings) CheckInit() error {
	if s.Command == "" {
		return lgf.NewError("md: Settings needs the engine command")
	}
	if s.PairStyle == "" || s.PairCoeff == "" {
		return lgf.NewError("md: Settings needs pair style and pair coefficients")
	}
	if s.DataFile == "" {
		s.DataFile = "dislgeom.data"
	}
	if s.WorkDir == "" {
		s.WorkDir = "."
	}
	if s.MaxCGIter == 0 {
		s.MaxCGIter = 5
	}
	if s.FTol == 0 {
		s.FTol = 1e-6
	}
	if s.MaxCGIter < 0 || s.FTol < 0 {
		return lgf.NewError("md: Settings has negative iteration cap or tolerance")
	}
	return nil
}
