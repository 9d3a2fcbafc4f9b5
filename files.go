/*
 * files.go, part of lgf.
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

package lgf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

//Setup holds the crystal and dislocation description read from the setup
//file. Class is 0 for isotropic, 1 for cubic, 2 for hexagonal. M rotates from the mnt basis to the cartesian basis (its
//columns are the normalized m, n and t vectors). A, when present, has the
//primitive cell vectors a1,a2,a3 as columns, in units of A0; Basis lists
//the basis atom positions within the primitive cell.
type Setup struct {
	Class int
	A0    float64 //lattice constant, Angstroms
	Cij   []float64
	M     *mat.Dense
	TMag  float64 //threading-direction period, units of A0
	A     *mat.Dense
	Basis [][3]float64
}

//Volume returns the unit cell volume in cubic Angstroms. Without a
//primitive-cell block in the setup file the cell is taken as cubic.
func (s *Setup) Volume() float64 {
	if s.A == nil {
		return s.A0 * s.A0 * s.A0
	}
	a1 := []float64{s.A.At(0, 0), s.A.At(1, 0), s.A.At(2, 0)}
	a2 := []float64{s.A.At(0, 1), s.A.At(1, 1), s.A.At(2, 1)}
	a3 := []float64{s.A.At(0, 2), s.A.At(1, 2), s.A.At(2, 2)}
	//a1 . (a2 x a3)
	triple := a1[0]*(a2[1]*a3[2]-a2[2]*a3[1]) +
		a1[1]*(a2[2]*a3[0]-a2[0]*a3[2]) +
		a1[2]*(a2[0]*a3[1]-a2[1]*a3[0])
	return s.A0 * s.A0 * s.A0 * triple
}

//ReadSetup parses the structured text setup format. The file is a sequence
//of keyword lines; "#" starts a comment. Recognized keywords:
//
//	crystalclass <int>
//	a0 <float>
//	cij <float>...
//	t_mag <float>
//	m            followed by 3 lines of 3 floats (rows of M)
//	a            followed by 3 lines of 3 floats (rows of A)
//	basis <float> <float> <float>   (repeatable)
//
//Missing mandatory keywords (crystalclass, a0, cij, m, t_mag) are an error.
func ReadSetup(r io.Reader) (*Setup, error) {
	s := &Setup{Class: -1, A0: -1, TMag: -1}
	scn := bufio.NewScanner(r)
	line := 0
	next := func() ([]string, bool) {
		for scn.Scan() {
			line++
			text := strings.TrimSpace(scn.Text())
			if i := strings.Index(text, "#"); i >= 0 {
				text = strings.TrimSpace(text[:i])
			}
			if text == "" {
				continue
			}
			return strings.Fields(text), true
		}
		return nil, false
	}
	readMatrix := func() (*mat.Dense, error) {
		data := make([]float64, 0, 9)
		for i := 0; i < 3; i++ {
			fields, ok := next()
			if !ok || len(fields) != 3 {
				return nil, NewError("line %d: expected 3 floats of a 3x3 matrix row", line)
			}
			for _, f := range fields {
				v, err := strconv.ParseFloat(f, 64)
				if err != nil {
					return nil, NewError("line %d: %v", line, err)
				}
				data = append(data, v)
			}
		}
		return mat.NewDense(3, 3, data), nil
	}
	for {
		fields, ok := next()
		if !ok {
			break
		}
		key := strings.ToLower(fields[0])
		if len(fields) < 2 && key != "m" && key != "a" {
			return nil, NewError("ReadSetup: line %d: keyword %q needs a value", line, fields[0])
		}
		var err error
		switch key {
		case "crystalclass":
			s.Class, err = strconv.Atoi(fields[1])
		case "a0":
			s.A0, err = strconv.ParseFloat(fields[1], 64)
		case "t_mag":
			s.TMag, err = strconv.ParseFloat(fields[1], 64)
		case "cij":
			s.Cij, err = parseFloats(fields[1:])
		case "m":
			s.M, err = readMatrix()
		case "a":
			s.A, err = readMatrix()
		case "basis":
			var p []float64
			if p, err = parseFloats(fields[1:]); err == nil {
				if len(p) != 3 {
					err = fmt.Errorf("basis needs 3 coordinates, got %d", len(p))
				} else {
					s.Basis = append(s.Basis, [3]float64{p[0], p[1], p[2]})
				}
			}
		default:
			return nil, NewError("ReadSetup: line %d: unknown keyword %q", line, fields[0])
		}
		if err != nil {
			return nil, NewError("ReadSetup: line %d: %v", line, err)
		}
	}
	if err := scn.Err(); err != nil {
		return nil, errDecorate(err, "ReadSetup")
	}
	switch {
	case s.Class < 0:
		return nil, NewError("ReadSetup: missing crystalclass")
	case s.A0 <= 0:
		return nil, NewError("ReadSetup: missing or non-positive a0")
	case len(s.Cij) == 0:
		return nil, NewError("ReadSetup: missing cij")
	case s.M == nil:
		return nil, NewError("ReadSetup: missing rotation matrix m")
	case s.TMag <= 0:
		return nil, NewError("ReadSetup: missing or non-positive t_mag")
	}
	return s, nil
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

//ReadGridXYZ parses the region-tagged extended xyz format into a grid. The
//format is the usual xyz layout (atom count, comment, one atom per line)
//with each atom line carrying a basis label, the three mnt coordinates and
//the integer region tag 1-5:
//
//	<label> <m> <n> <t> <region>
//
//labels maps basis atom labels to basis indices by position. Coordinates
//are divided by scale, so passing the lattice constant yields coordinates
//in lattice units and passing 1 keeps them as written. Atoms must appear
//ordered by region; a region tag out of order is an error, since the whole
//library relies on regions being contiguous index ranges.
func ReadGridXYZ(r io.Reader, labels []string, scale float64) (*Grid, error) {
	if scale == 0 {
		return nil, NewError("ReadGridXYZ: scale must be non-zero")
	}
	scn := bufio.NewScanner(r)
	scn.Buffer(make([]byte, 1024*1024), 1024*1024)
	if !scn.Scan() {
		return nil, NewError("ReadGridXYZ: empty input")
	}
	natoms, err := strconv.Atoi(strings.TrimSpace(scn.Text()))
	if err != nil {
		return nil, NewError("ReadGridXYZ: bad atom count line: %v", err)
	}
	if !scn.Scan() {
		return nil, NewError("ReadGridXYZ: missing comment line")
	}
	atoms := make([]Atom, 0, natoms)
	var sizes RegionSizes
	prev := Core
	for i := 0; i < natoms; i++ {
		if !scn.Scan() {
			return nil, NewError("ReadGridXYZ: expected %d atoms, got %d", natoms, i)
		}
		fields := strings.Fields(scn.Text())
		if len(fields) != 5 {
			return nil, NewError("ReadGridXYZ: atom %d: expected 5 fields, got %d", i, len(fields))
		}
		basis := -1
		for b, l := range labels {
			if l == fields[0] {
				basis = b
				break
			}
		}
		if basis < 0 {
			return nil, NewError("ReadGridXYZ: atom %d: unknown label %q", i, fields[0])
		}
		coords, err := parseFloats(fields[1:4])
		if err != nil {
			return nil, NewError("ReadGridXYZ: atom %d: %v", i, err)
		}
		regInt, err := strconv.Atoi(fields[4])
		if err != nil || regInt < int(Core) || regInt > int(FarField) {
			return nil, NewError("ReadGridXYZ: atom %d: bad region tag %q", i, fields[4])
		}
		reg := Region(regInt)
		if reg < prev {
			return nil, NewError("ReadGridXYZ: atom %d: region %v after %v; regions must be contiguous", i, reg, prev)
		}
		prev = reg
		atoms = append(atoms, Atom{
			Index: i,
			Reg:   reg,
			M:     coords[0] / scale,
			N:     coords[1] / scale,
			T:     coords[2] / scale,
			Basis: basis,
		})
		switch reg {
		case Core:
			sizes.N1++
		case Coupling:
			sizes.N12++
		case Buffer:
			sizes.N123++
		case Fringe:
			sizes.In++
		}
		sizes.All++
	}
	//make the per-region counts cumulative
	sizes.N12 += sizes.N1
	sizes.N123 += sizes.N12
	sizes.In += sizes.N123
	g, err := NewGrid(atoms, sizes)
	if err != nil {
		return nil, errDecorate(err, "ReadGridXYZ")
	}
	return g, nil
}

//WriteGridXYZ writes the grid in the same region-tagged xyz format read by
//ReadGridXYZ, multiplying coordinates by scale.
func WriteGridXYZ(w io.Writer, g *Grid, labels []string, scale float64) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n", g.Len())
	fmt.Fprintf(bw, "dislocation grid: sizes %+v\n", g.Sizes)
	for i := range g.Atoms {
		a := &g.Atoms[i]
		if a.Basis >= len(labels) {
			return NewError("WriteGridXYZ: atom %d has basis %d but only %d labels given", i, a.Basis, len(labels))
		}
		fmt.Fprintf(bw, "%s % .10f % .10f % .10f %d\n",
			labels[a.Basis], a.M*scale, a.N*scale, a.T*scale, int(a.Reg))
	}
	return bw.Flush()
}

//OpenGridXYZ reads a grid file from disk. I/O failures carry the offending
//path.
func OpenGridXYZ(path string, labels []string, scale float64) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, NewError("OpenGridXYZ: %s: %v", path, err)
	}
	defer f.Close()
	g, err := ReadGridXYZ(f, labels, scale)
	if err != nil {
		return nil, errDecorate(err, "OpenGridXYZ: "+path)
	}
	return g, nil
}

//OpenSetup reads a setup file from disk.
func OpenSetup(path string) (*Setup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, NewError("OpenSetup: %s: %v", path, err)
	}
	defer f.Close()
	s, err := ReadSetup(f)
	if err != nil {
		return nil, errDecorate(err, "OpenSetup: "+path)
	}
	return s, nil
}
