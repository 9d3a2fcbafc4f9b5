/*
 * atoms.go, part of lgf.
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

import "math"

//Region labels the concentric atom groupings around the dislocation line,
//in decreasing fidelity of treatment. Core atoms are fully relaxed by the
//atomistic engine, Coupling atoms are where the lattice Green function acts,
//Buffer atoms shield the core from the truncation, Fringe atoms complete the
//harmonic ("in") domain and FarField atoms only ever carry the continuum
//displacement field.
type Region int

const (
	Core Region = iota + 1
	Coupling
	Buffer
	Fringe
	FarField
)

func (r Region) String() string {
	switch r {
	case Core:
		return "core"
	case Coupling:
		return "coupling"
	case Buffer:
		return "buffer"
	case Fringe:
		return "fringe"
	case FarField:
		return "far-field"
	}
	return "unknown"
}

//Atom is one lattice site. The coordinates are in the dislocation-aligned
//mnt basis: m and n span the plane perpendicular to the line, t runs along
//it. Index, Reg and Basis are fixed at read time; the coordinates are
//mutated in place during relaxation.
type Atom struct {
	Index int
	Reg   Region
	M     float64
	N     float64
	T     float64
	Basis int
}

//RegionSizes carries the cumulative atom counts at each region boundary.
//N1 counts the core, N12 core+coupling, N123 core+coupling+buffer, In
//everything treated harmonically (regions 1+2+3+fringe) and All the whole
//grid including the far field. It is passed explicitly to every function
//that needs a boundary; there is no package-level copy anywhere.
type RegionSizes struct {
	N1   int
	N12  int
	N123 int
	In   int
	All  int
}

//Check returns an error unless 0 <= N1 <= N12 <= N123 <= In <= All.
func (s RegionSizes) Check() error {
	if s.N1 < 0 || s.N12 < s.N1 || s.N123 < s.N12 || s.In < s.N123 || s.All < s.In {
		return NewError("Region sizes not cumulative: %+v", s)
	}
	return nil
}

//N2 returns the number of atoms in the coupling region.
func (s RegionSizes) N2() int { return s.N12 - s.N1 }

//Grid is the arena of atoms, ordered so that every region is a contiguous
//index range: [0,N1) core, [N1,N12) coupling, [N12,N123) buffer, [N123,In)
//fringe and [In,All) far field.
type Grid struct {
	Atoms []Atom
	Sizes RegionSizes
}

//NewGrid builds a grid from an ordered atom slice and its region boundaries.
//It verifies that the boundaries are cumulative and that the region tags
//agree with them.
func NewGrid(atoms []Atom, sizes RegionSizes) (*Grid, error) {
	if err := sizes.Check(); err != nil {
		return nil, errDecorate(err, "NewGrid")
	}
	if len(atoms) != sizes.All {
		return nil, NewError("NewGrid: got %d atoms but sizes say %d", len(atoms), sizes.All)
	}
	g := &Grid{Atoms: atoms, Sizes: sizes}
	for i := range g.Atoms {
		if g.Atoms[i].Reg != g.regionOf(i) {
			return nil, NewError("NewGrid: atom %d tagged %v but sits in the %v index range",
				i, g.Atoms[i].Reg, g.regionOf(i))
		}
	}
	return g, nil
}

func (g *Grid) regionOf(i int) Region {
	s := g.Sizes
	switch {
	case i < s.N1:
		return Core
	case i < s.N12:
		return Coupling
	case i < s.N123:
		return Buffer
	case i < s.In:
		return Fringe
	default:
		return FarField
	}
}

//Len returns the total number of atoms.
func (g *Grid) Len() int {
	if g == nil {
		panic(ErrNilGrid)
	}
	return len(g.Atoms)
}

//Atom returns a pointer to the i-th atom. Panics if out of range, as this
//is a fundamental accessor and an out-of-range index means the program is
//wrong.
func (g *Grid) Atom(i int) *Atom {
	if i < 0 || i >= g.Len() {
		panic(ErrAtomOutOfRange)
	}
	return &g.Atoms[i]
}

//InPlaneDist returns the separation of atoms i and j in the mn plane and
//the polar angle of the separation vector with respect to the +m axis,
//measured from j to i. The angle is reduced into [0,2pi); values within
//1e-8 of zero are snapped to exactly 0 to keep atoms on the +m axis off the
//branch cut of the reduction.
func (g *Grid) InPlaneDist(i, j int) (r, phi float64) {
	ai, aj := g.Atom(i), g.Atom(j)
	dm := ai.M - aj.M
	dn := ai.N - aj.N
	r = math.Hypot(dm, dn)
	phi = math.Atan2(dn, dm)
	if math.Abs(phi) > phiSnapTol {
		phi = math.Mod(phi, 2*math.Pi)
		if phi < 0 {
			phi += 2 * math.Pi
		}
	} else {
		phi = 0
	}
	return r, phi
}

const phiSnapTol = 1e-8

//Coords123 returns the mnt coordinates of the atoms in regions 1+2+3,
//flattened as m,n,t per atom. This is the slice the atomistic engine
//exchanges with us.
func (g *Grid) Coords123() []float64 {
	n := g.Sizes.N123
	c := make([]float64, 3*n)
	for i := 0; i < n; i++ {
		a := &g.Atoms[i]
		c[3*i], c[3*i+1], c[3*i+2] = a.M, a.N, a.T
	}
	return c
}

//SetCoords123 overwrites the coordinates of regions 1+2+3 from a flattened
//slice, as returned by the atomistic engine. Panics on a length mismatch.
func (g *Grid) SetCoords123(c []float64) {
	n := g.Sizes.N123
	if len(c) != 3*n {
		panic(ErrCoordsShape)
	}
	for i := 0; i < n; i++ {
		a := &g.Atoms[i]
		a.M, a.N, a.T = c[3*i], c[3*i+1], c[3*i+2]
	}
}

//Displace123 adds the flattened displacement field d, restricted to regions
//1+2+3, to the coordinates. Panics on a length mismatch.
func (g *Grid) Displace123(d []float64) {
	n := g.Sizes.N123
	if len(d) != 3*n {
		panic(ErrCoordsShape)
	}
	for i := 0; i < n; i++ {
		a := &g.Atoms[i]
		a.M += d[3*i]
		a.N += d[3*i+1]
		a.T += d[3*i+2]
	}
}
