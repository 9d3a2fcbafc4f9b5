/*
 * evolution.go, part of lgf.
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

package relax

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	lgf "github.com/aztan2/LatticeGreenFunction-new"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

//WriteEvolution writes the per-iteration max force to path, one value per
//line. The file is rewritten whole each time so a crashed run still
//leaves a readable history.
func WriteEvolution(path string, evolution []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return lgf.NewError("WriteEvolution: %v", err)
	}
	w := bufio.NewWriter(f)
	for _, v := range evolution {
		fmt.Fprintf(w, "%.16e\n", v)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return lgf.NewError("WriteEvolution: %v", err)
	}
	return f.Close()
}

//ReadEvolution reads a force-evolution file written by WriteEvolution.
func ReadEvolution(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, lgf.NewError("ReadEvolution: %v", err)
	}
	defer f.Close()
	var evo []float64
	scan := bufio.NewScanner(f)
	for scan.Scan() {
		line := strings.TrimSpace(scan.Text())
		if line == "" {
			continue
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, lgf.NewError("ReadEvolution: bad value %q: %v", line, err)
		}
		evo = append(evo, v)
	}
	if err := scan.Err(); err != nil {
		return nil, lgf.NewError("ReadEvolution: %v", err)
	}
	return evo, nil
}

//PlotEvolution plots the max force against the outer iteration number on
//a log scale and saves the figure to path (format from the extension, as
//plot.Save does).
func PlotEvolution(path string, evolution []float64) error {
	if len(evolution) == 0 {
		return lgf.NewError("PlotEvolution: empty evolution log")
	}
	p := plot.New()
	p.Title.Text = "Force evolution"
	p.X.Label.Text = "Outer iteration"
	p.Y.Label.Text = "Max force (eV/A)"
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	//a log scale cannot hold zero, so fully relaxed entries are clamped to
	//the smallest positive force seen
	floor := 0.0
	for _, v := range evolution {
		if v > 0 && (floor == 0 || v < floor) {
			floor = v
		}
	}
	if floor == 0 {
		return lgf.NewError("PlotEvolution: no positive forces to plot on a log scale")
	}
	pts := make(plotter.XYs, len(evolution))
	for i, v := range evolution {
		pts[i].X = float64(i + 1)
		if v < floor {
			v = floor
		}
		pts[i].Y = v
	}
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return lgf.NewError("PlotEvolution: %v", err)
	}
	p.Add(line, points)
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return lgf.NewError("PlotEvolution: %v", err)
	}
	return nil
}
