/*
 * lammps.go, part of lgf.
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
//In order to use this part of the library you need the LAMMPS program,
//which must be obtained from Sandia National Laboratories. Please cite the
//LAMMPS references if you used it.

package md

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	lgf "github.com/aztan2/LatticeGreenFunction-new"
)

//LAMMPS drives the LAMMPS molecular dynamics program as the short-range
//relaxation engine. Regions become atom types in the deck (core 1,
//coupling 2, buffer 3) so the scripts can group and freeze them; only
//regions 1+2+3 appear in the deck, the fringe and far field are implicit
//boundary in the coordinates the deck was built from.
type LAMMPS struct {
	st    Settings
	sizes lgf.RegionSizes
	a0    float64 //lattice constant, converts grid lattice units to Angstroms
	tlen  float64 //threading repeat length in Angstroms, the periodic z box edge
	name  string  //prefix for script and dump files
	log   *slog.Logger
}

//NewLAMMPS validates the settings and returns a driver for a grid with the
//given region sizes. a0 is the lattice constant in Angstroms and tmag the
//threading-direction period in units of a0; the deck and the dumps are in
//Angstroms, the grid exchanged through Handle stays in lattice units.
func NewLAMMPS(st Settings, sizes lgf.RegionSizes, a0, tmag float64, log *slog.Logger) (*LAMMPS, error) {
	if err := st.CheckInit(); err != nil {
		return nil, err
	}
	if err := sizes.Check(); err != nil {
		return nil, err
	}
	if a0 <= 0 || tmag <= 0 {
		return nil, lgf.NewError("NewLAMMPS: a0 and t_mag must be positive")
	}
	if log == nil {
		log = slog.Default()
	}
	return &LAMMPS{st: st, sizes: sizes, a0: a0, tlen: a0 * tmag, name: "lgf", log: log}, nil
}

//SetName sets the prefix used for the script and dump files.
func (L *LAMMPS) SetName(name string) { L.name = name }

//WriteDeck writes the LAMMPS data file for regions 1+2+3 of the grid, in
//metal units with the box periodic along z only.
func (L *LAMMPS) WriteDeck(g *lgf.Grid) error {
	if g.Sizes != L.sizes {
		return lgf.NewError("LAMMPS.WriteDeck: grid sizes %+v do not match driver sizes %+v", g.Sizes, L.sizes)
	}
	path := filepath.Join(L.st.WorkDir, L.st.DataFile)
	f, err := os.Create(path)
	if err != nil {
		return lgf.NewError("LAMMPS.WriteDeck: %s: %v", path, err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	n := L.sizes.N123
	mlo, mhi := math.Inf(1), math.Inf(-1)
	nlo, nhi := math.Inf(1), math.Inf(-1)
	for i := 0; i < n; i++ {
		a := g.Atom(i)
		mlo, mhi = math.Min(mlo, a.M*L.a0), math.Max(mhi, a.M*L.a0)
		nlo, nhi = math.Min(nlo, a.N*L.a0), math.Max(nhi, a.N*L.a0)
	}
	//non-periodic box faces get a quarter-span margin so the minimizer
	//never sees an atom at the wall
	mpad := 0.25 * (mhi - mlo)
	npad := 0.25 * (nhi - nlo)

	fmt.Fprintf(w, "dislocation geometry, regions 1-3 as atom types\n\n")
	fmt.Fprintf(w, "%d atoms\n", n)
	fmt.Fprintf(w, "3 atom types\n\n")
	fmt.Fprintf(w, "%.10f %.10f xlo xhi\n", mlo-mpad, mhi+mpad)
	fmt.Fprintf(w, "%.10f %.10f ylo yhi\n", nlo-npad, nhi+npad)
	fmt.Fprintf(w, "%.10f %.10f zlo zhi\n\n", 0.0, L.tlen)
	fmt.Fprintf(w, "Atoms\n\n")
	for i := 0; i < n; i++ {
		a := g.Atom(i)
		fmt.Fprintf(w, "%d %d %.10f %.10f %.10f\n", i+1, int(a.Reg), a.M*L.a0, a.N*L.a0, a.T*L.a0)
	}
	if err := w.Flush(); err != nil {
		return lgf.NewError("LAMMPS.WriteDeck: %s: %v", path, err)
	}
	return f.Close()
}

//RelaxCore implements Handle. It relaxes region 1 with 2+3 frozen, then
//releases 2+3, freezes only region 3 and measures forces on 1+2 in a
//zero-step run, all within one engine invocation. In the antiplane case
//the in-plane components of 1+2 are clamped for the measurement as well.
func (L *LAMMPS) RelaxCore() ([]float64, []float64, error) {
	dump := L.name + ".relax.dump"
	var b strings.Builder
	L.header(&b)
	fmt.Fprintln(&b, "group 	reg1 type 1")
	fmt.Fprintln(&b, "group 	reg12 type 1 2")
	fmt.Fprintln(&b, "group 	reg23 type 2 3")
	fmt.Fprintln(&b, "group 	reg3 type 3")
	if L.st.Antiplane {
		fmt.Fprintln(&b, "fix  1 reg1 setforce 0.0 0.0 NULL")
	}
	fmt.Fprintln(&b, "fix  2 reg23 setforce 0.0 0.0 0.0")
	fmt.Fprintln(&b, "min_style	hftn")
	fmt.Fprintf(&b, "minimize	0.0 %.16f %d 10000\n", L.st.FTol, L.st.MaxCGIter)
	if L.st.Antiplane {
		fmt.Fprintln(&b, "unfix  1")
		fmt.Fprintln(&b, "fix    3 reg12 setforce 0.0 0.0 NULL")
	}
	fmt.Fprintln(&b, "unfix  2")
	fmt.Fprintln(&b, "fix    4 reg3 setforce 0.0 0.0 0.0")
	fmt.Fprintln(&b, "run  0")
	fmt.Fprintf(&b, "write_dump all custom %s id type x y z fx fy fz modify sort id\n", dump)

	if err := L.run(L.name+".relax.in", b.String()); err != nil {
		return nil, nil, err
	}
	return L.readDump(dump, true)
}

//Forces implements Handle: a zero-step run with region 3 frozen, no
//minimization.
func (L *LAMMPS) Forces() ([]float64, error) {
	dump := L.name + ".forces.dump"
	var b strings.Builder
	L.header(&b)
	fmt.Fprintln(&b, "group 	reg12 type 1 2")
	fmt.Fprintln(&b, "group  reg3 type 3")
	fmt.Fprintln(&b, "fix    1 reg3 setforce 0.0 0.0 0.0")
	if L.st.Antiplane {
		fmt.Fprintln(&b, "fix    2 reg12 setforce 0.0 0.0 NULL")
	}
	fmt.Fprintln(&b, "run    0")
	fmt.Fprintf(&b, "write_dump all custom %s id type x y z fx fy fz modify sort id\n", dump)

	if err := L.run(L.name+".forces.in", b.String()); err != nil {
		return nil, err
	}
	_, forces, err := L.readDump(dump, true)
	return forces, err
}

func (L *LAMMPS) header(b *strings.Builder) {
	fmt.Fprintln(b, "units		metal")
	fmt.Fprintln(b, "atom_style	atomic")
	fmt.Fprintln(b, "atom_modify map array sort 0 0")
	fmt.Fprintln(b, "boundary	f f p")
	fmt.Fprintln(b, "thermo 1")
	fmt.Fprintf(b, "read_data	%s\n", L.st.DataFile)
	fmt.Fprintln(b, L.st.PairStyle)
	fmt.Fprintln(b, L.st.PairCoeff)
}

//run writes the input script and executes the engine in the work
//directory, blocking until it exits.
func (L *LAMMPS) run(script, content string) error {
	path := filepath.Join(L.st.WorkDir, script)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return lgf.NewError("LAMMPS.run: %s: %v", path, err)
	}
	cmd := exec.Command(L.st.Command, "-in", script)
	cmd.Dir = L.st.WorkDir
	out, err := cmd.CombinedOutput()
	if err != nil {
		tail := string(out)
		if len(tail) > 2000 {
			tail = tail[len(tail)-2000:]
		}
		return lgf.NewError("LAMMPS.run: %s %s: %v\n%s", L.st.Command, script, err, tail)
	}
	L.log.Debug("engine run finished", "script", script, "bytes", len(out))
	return nil
}

//readDump parses a custom dump written with "id type x y z fx fy fz" and
//sorted by id, returning flattened coordinates and forces for the first
//size_123 atoms.
func (L *LAMMPS) readDump(dump string, remove bool) ([]float64, []float64, error) {
	path := filepath.Join(L.st.WorkDir, dump)
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, lgf.NewError("LAMMPS.readDump: %s: %v", path, err)
	}
	defer f.Close()
	coords, forces, err := ParseDump(f, L.sizes.N123)
	if err != nil {
		return nil, nil, lgf.NewError("LAMMPS.readDump: %s: %v", path, err)
	}
	//dump coordinates are Angstroms, the grid is in lattice units
	for i := range coords {
		coords[i] /= L.a0
	}
	if remove {
		os.Remove(path)
	}
	return coords, forces, nil
}

//ParseDump reads n atoms out of a LAMMPS custom dump stream carrying the
//columns "id type x y z fx fy fz" in id order.
func ParseDump(r io.Reader, n int) ([]float64, []float64, error) {
	scn := bufio.NewScanner(r)
	scn.Buffer(make([]byte, 1024*1024), 1024*1024)
	var cols []string
	for scn.Scan() {
		line := strings.TrimSpace(scn.Text())
		if strings.HasPrefix(line, "ITEM: ATOMS") {
			cols = strings.Fields(strings.TrimPrefix(line, "ITEM: ATOMS"))
			break
		}
	}
	if cols == nil {
		return nil, nil, lgf.NewError("ParseDump: no ITEM: ATOMS section")
	}
	idx := map[string]int{}
	for i, c := range cols {
		idx[c] = i
	}
	for _, want := range []string{"id", "x", "y", "z", "fx", "fy", "fz"} {
		if _, ok := idx[want]; !ok {
			return nil, nil, lgf.NewError("ParseDump: dump lacks column %q", want)
		}
	}
	coords := make([]float64, 3*n)
	forces := make([]float64, 3*n)
	read := 0
	for read < n && scn.Scan() {
		fields := strings.Fields(scn.Text())
		if len(fields) != len(cols) {
			return nil, nil, lgf.NewError("ParseDump: atom line has %d fields, want %d", len(fields), len(cols))
		}
		vals := make([]float64, len(fields))
		for i, fd := range fields {
			v, err := strconv.ParseFloat(fd, 64)
			if err != nil {
				return nil, nil, lgf.NewError("ParseDump: %v", err)
			}
			vals[i] = v
		}
		id := int(vals[idx["id"]])
		if id != read+1 {
			return nil, nil, lgf.NewError("ParseDump: atom id %d out of order, want %d; was the dump sorted?", id, read+1)
		}
		coords[3*read] = vals[idx["x"]]
		coords[3*read+1] = vals[idx["y"]]
		coords[3*read+2] = vals[idx["z"]]
		forces[3*read] = vals[idx["fx"]]
		forces[3*read+1] = vals[idx["fy"]]
		forces[3*read+2] = vals[idx["fz"]]
		read++
	}
	if read != n {
		return nil, nil, lgf.NewError("ParseDump: expected %d atoms, got %d", n, read)
	}
	return coords, forces, nil
}
