/*
 * fcmatrix.go, part of lgf.
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
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/james-bowman/sparse"
)

//ReadForceConstants parses a MatrixMarket "coordinate real" file into a CSR
//matrix. The force-constant matrix D maps atomic displacements to harmonic
//forces; it is produced by an external lattice-dynamics code, loaded once
//and treated as read-only afterwards. Files declared symmetric store one
//triangle only and are expanded here.
func ReadForceConstants(r io.Reader) (*sparse.CSR, error) {
	scn := bufio.NewScanner(r)
	scn.Buffer(make([]byte, 1024*1024), 1024*1024)
	if !scn.Scan() {
		return nil, NewError("ReadForceConstants: empty input")
	}
	header := strings.Fields(strings.ToLower(scn.Text()))
	if len(header) < 4 || header[0] != "%%matrixmarket" || header[1] != "matrix" || header[2] != "coordinate" {
		return nil, NewError("ReadForceConstants: not a MatrixMarket coordinate file: %q", scn.Text())
	}
	if header[3] != "real" {
		return nil, NewError("ReadForceConstants: unsupported field type %q", header[3])
	}
	symmetric := false
	if len(header) > 4 {
		switch header[4] {
		case "general":
		case "symmetric":
			symmetric = true
		default:
			return nil, NewError("ReadForceConstants: unsupported symmetry %q", header[4])
		}
	}
	//skip remaining comments, find the size line
	var rows, cols, nnz int
	for {
		if !scn.Scan() {
			return nil, NewError("ReadForceConstants: missing size line")
		}
		text := strings.TrimSpace(scn.Text())
		if text == "" || strings.HasPrefix(text, "%") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 3 {
			return nil, NewError("ReadForceConstants: bad size line %q", text)
		}
		var err error
		if rows, err = strconv.Atoi(fields[0]); err != nil {
			return nil, NewError("ReadForceConstants: %v", err)
		}
		if cols, err = strconv.Atoi(fields[1]); err != nil {
			return nil, NewError("ReadForceConstants: %v", err)
		}
		if nnz, err = strconv.Atoi(fields[2]); err != nil {
			return nil, NewError("ReadForceConstants: %v", err)
		}
		break
	}
	dok := sparse.NewDOK(rows, cols)
	read := 0
	for scn.Scan() {
		text := strings.TrimSpace(scn.Text())
		if text == "" || strings.HasPrefix(text, "%") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 3 {
			return nil, NewError("ReadForceConstants: bad entry %q", text)
		}
		i, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, NewError("ReadForceConstants: %v", err)
		}
		j, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, NewError("ReadForceConstants: %v", err)
		}
		v, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, NewError("ReadForceConstants: %v", err)
		}
		if i < 1 || i > rows || j < 1 || j > cols {
			return nil, NewError("ReadForceConstants: entry (%d,%d) outside %dx%d", i, j, rows, cols)
		}
		dok.Set(i-1, j-1, v)
		if symmetric && i != j {
			dok.Set(j-1, i-1, v)
		}
		read++
	}
	if err := scn.Err(); err != nil {
		return nil, errDecorate(err, "ReadForceConstants")
	}
	if read != nnz {
		return nil, NewError("ReadForceConstants: header promises %d entries, file has %d", nnz, read)
	}
	return dok.ToCSR(), nil
}

//OpenForceConstants loads a force-constant matrix from a .mtx file on disk.
func OpenForceConstants(path string) (*sparse.CSR, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, NewError("OpenForceConstants: %s: %v", path, err)
	}
	defer f.Close()
	d, err := ReadForceConstants(f)
	if err != nil {
		return nil, errDecorate(err, "OpenForceConstants: "+path)
	}
	return d, nil
}
