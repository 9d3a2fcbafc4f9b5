/*
 * checkpoint.go, part of lgf.
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
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"io"
	"os"

	lgf "github.com/aztan2/LatticeGreenFunction-new"
	"github.com/klauspost/compress/gzip"
	"gonum.org/v1/gonum/mat"
)

//Meta keys a stored LGF matrix to the grid partition that produced it. A
//matrix may only ever be applied to a grid with exactly the same region
//boundaries, so the sizes ride along in the file and are checked on use.
type Meta struct {
	Size1   int
	Size12  int
	Size123 int
	Cols    int
}

//Validate returns a fatal configuration error unless the stored sizes
//match the grid partition exactly. A mismatch means the matrix was built
//for a different decomposition and silently proceeding would corrupt every
//displacement it produces.
func (m Meta) Validate(s lgf.RegionSizes) error {
	if m.Size1 != s.N1 {
		return lgf.NewError("LGF not consistent with setup? Has size_1 = %d != %d", m.Size1, s.N1)
	}
	if m.Size12 != s.N12 {
		return lgf.NewError("LGF not consistent with setup? Has size_12 = %d != %d", m.Size12, s.N12)
	}
	if m.Size123 != s.N123 {
		return lgf.NewError("LGF not consistent with setup? Has size_123 = %d != %d", m.Size123, s.N123)
	}
	return nil
}

//SaveLGF writes the matrix and its metadata to path as a gzip stream: a
//gob-encoded Meta header followed by the gonum binary encoding of G. The
//file is rewritten whole; this is the assembly loop's flush boundary.
func SaveLGF(path string, meta Meta, G *mat.Dense) error {
	f, err := os.Create(path)
	if err != nil {
		return lgf.NewError("SaveLGF: %s: %v", path, err)
	}
	defer f.Close()
	gz := gzip.NewWriter(f)
	//the gob header is length-framed: gob decoders read ahead, which would
	//swallow the start of the matrix stream that follows
	var hdr bytes.Buffer
	if err := gob.NewEncoder(&hdr).Encode(meta); err != nil {
		return lgf.NewError("SaveLGF: %s: encoding metadata: %v", path, err)
	}
	if err := binary.Write(gz, binary.LittleEndian, uint64(hdr.Len())); err != nil {
		return lgf.NewError("SaveLGF: %s: %v", path, err)
	}
	if _, err := gz.Write(hdr.Bytes()); err != nil {
		return lgf.NewError("SaveLGF: %s: %v", path, err)
	}
	if _, err := G.MarshalBinaryTo(gz); err != nil {
		return lgf.NewError("SaveLGF: %s: encoding matrix: %v", path, err)
	}
	if err := gz.Close(); err != nil {
		return lgf.NewError("SaveLGF: %s: %v", path, err)
	}
	return f.Close()
}

//LoadLGF reads a matrix saved by SaveLGF and checks the payload against
//its own metadata.
func LoadLGF(path string) (Meta, *mat.Dense, error) {
	var meta Meta
	f, err := os.Open(path)
	if err != nil {
		return meta, nil, lgf.NewError("LoadLGF: %s: %v", path, err)
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		return meta, nil, lgf.NewError("LoadLGF: %s: %v", path, err)
	}
	defer gz.Close()
	var hdrLen uint64
	if err := binary.Read(gz, binary.LittleEndian, &hdrLen); err != nil {
		return meta, nil, lgf.NewError("LoadLGF: %s: reading metadata length: %v", path, err)
	}
	hdr := make([]byte, hdrLen)
	if _, err := io.ReadFull(gz, hdr); err != nil {
		return meta, nil, lgf.NewError("LoadLGF: %s: reading metadata: %v", path, err)
	}
	if err := gob.NewDecoder(bytes.NewReader(hdr)).Decode(&meta); err != nil {
		return meta, nil, lgf.NewError("LoadLGF: %s: decoding metadata: %v", path, err)
	}
	G := &mat.Dense{}
	if _, err := G.UnmarshalBinaryFrom(gz); err != nil {
		return meta, nil, lgf.NewError("LoadLGF: %s: decoding matrix: %v", path, err)
	}
	r, c := G.Dims()
	if r != 3*meta.Size123 || c != meta.Cols {
		return meta, nil, lgf.NewError("LoadLGF: %s: matrix is %dx%d but metadata says %dx%d",
			path, r, c, 3*meta.Size123, meta.Cols)
	}
	return meta, G, nil
}
