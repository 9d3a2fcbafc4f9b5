/*
 * doc.go, part of lgf.
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

//Package lgf provides the atom-grid model and the file formats used to compute
//and apply the lattice Green function of a straight dislocation. The grid is
//partitioned into concentric regions around the dislocation line: a fully
//atomistic core, a coupling region where the Green function acts, a buffer, a
//fringe completing the harmonic domain, and a continuum-elastic far field.
//The heavy numerics live in the subpackages: elastic holds the continuum
//Green function, greens assembles the lattice Green function matrix, md
//drives the external atomistic engine and relax couples the two.
package lgf
