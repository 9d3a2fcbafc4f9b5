/*
 * egf.go, part of lgf.
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

package elastic

import (
	"math"
	"math/cmplx"

	lgf "github.com/aztan2/LatticeGreenFunction-new"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/mat"
)

//Model holds the sampled continuum elastic Green function of a straight
//dislocation, ready for large-distance evaluation. Coeffs has, for each of
//the 9 tensor components (row-major 3x3), the N complex Fourier
//coefficients of the angular dependence; Angular has the corresponding
//real angular term of the large-R limit sampled at N equally spaced angles
//in [0,2pi). Both are immutable after construction.
type Model struct {
	n       int
	coeffs  [9][]complex128
	angular [9][]float64
	a0      float64
	vol     float64
	tmag    float64
	pref    float64 //radial prefactor, folds V, a0 and t_mag together
}

//NewModel samples the inverse acoustic tensor on n angles in the plane
//perpendicular to the dislocation line, takes its Fourier coefficients and
//tabulates the angular term of the large-R Green function with the series
//truncated at n/2. C is the stiffness tensor in eV/Angstrom^3, M the
//mnt-to-cartesian rotation (columns are the normalized m, n, t vectors),
//a0 the lattice constant in Angstroms, vol the unit cell volume in cubic
//Angstroms and tmag the threading-direction period in units of a0.
func NewModel(n int, C *Stiffness, M *mat.Dense, a0, vol, tmag float64) (*Model, error) {
	if n < 4 || n%2 != 0 {
		return nil, lgf.NewError("NewModel: angular resolution must be even and at least 4, got %d", n)
	}
	if r, c := M.Dims(); r != 3 || c != 3 {
		return nil, lgf.NewError("NewModel: M must be 3x3, got %dx%d", r, c)
	}
	if a0 <= 0 || vol <= 0 || tmag <= 0 {
		return nil, lgf.NewError("NewModel: a0, vol and tmag must be positive")
	}
	em := &Model{
		n:    n,
		a0:   a0,
		vol:  vol,
		tmag: tmag,
		pref: vol / (4 * math.Pi * math.Pi * a0 * a0 * a0 * tmag),
	}
	//sample the inverse acoustic tensor over the mn plane
	samples := make([][]complex128, 9)
	for c := range samples {
		samples[c] = make([]complex128, n)
	}
	gamma := mat.NewDense(3, 3, nil)
	var inv mat.Dense
	for k := 0; k < n; k++ {
		theta := 2 * math.Pi * float64(k) / float64(n)
		var q [3]float64
		//unit wavevector cos(theta)*m + sin(theta)*n in cartesian coords
		for i := 0; i < 3; i++ {
			q[i] = math.Cos(theta)*M.At(i, 0) + math.Sin(theta)*M.At(i, 1)
		}
		C.Christoffel(gamma, q)
		if err := inv.Inverse(gamma); err != nil {
			return nil, lgf.NewError("NewModel: acoustic tensor singular at theta=%.6f: %v", theta, err)
		}
		for a := 0; a < 3; a++ {
			for b := 0; b < 3; b++ {
				samples[3*a+b][k] = complex(inv.At(a, b), 0)
			}
		}
	}
	//Fourier coefficients, normalized so that coefficient 0 is the angular mean
	fft := fourier.NewCmplxFFT(n)
	for c := 0; c < 9; c++ {
		dst := fft.Coefficients(nil, samples[c])
		for i := range dst {
			dst[i] /= complex(float64(n), 0)
		}
		em.coeffs[c] = dst
	}
	//angular term of the large-R limit, series truncated at nmax=n/2
	nmax := n / 2
	for c := 0; c < 9; c++ {
		em.angular[c] = make([]float64, n)
		for k := 0; k < n; k++ {
			phi := 2 * math.Pi * float64(k) / float64(n)
			sum := em.coeffs[c][0]
			for m := 1; m < nmax; m++ {
				e := cmplx.Exp(complex(0, float64(m)*phi))
				sum += em.coeffs[c][m]*e + em.coeffs[c][n-m]*cmplx.Conj(e)
			}
			em.angular[c][k] = real(sum)
		}
	}
	return em, nil
}

//N returns the angular resolution of the model.
func (em *Model) N() int { return em.n }

//Coeff returns the i-th Fourier coefficient of tensor component (a,b).
func (em *Model) Coeff(a, b, i int) complex128 { return em.coeffs[3*a+b][i] }

//GLargeR fills dst with the 3x3 large-distance Green function tensor at
//in-plane distance R (Angstroms) and polar angle phi (radians, already
//reduced into [0,2pi) by the caller). The angular term is linearly
//interpolated on the sampled grid; the radial dependence is the 1/R decay
//of the continuum solution. Panics on R <= 0: far-field atoms coincident
//with the source in the mn plane cannot occur in a well-formed grid, so
//hitting one means the configuration is broken.
func (em *Model) GLargeR(dst *mat.Dense, R, phi float64) {
	if R <= 0 {
		panic(lgf.PanicMsg("elastic: GLargeR evaluated at R <= 0"))
	}
	step := 2 * math.Pi / float64(em.n)
	pos := phi / step
	k0 := int(math.Floor(pos)) % em.n
	if k0 < 0 {
		k0 += em.n
	}
	k1 := (k0 + 1) % em.n
	w := pos - math.Floor(pos)
	radial := em.pref / R
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			h := (1-w)*em.angular[3*a+b][k0] + w*em.angular[3*a+b][k1]
			dst.Set(a, b, radial*h)
		}
	}
}
