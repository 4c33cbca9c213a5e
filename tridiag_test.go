/*
Copyright © 2018 the Column authors.
This file is part of Column.

Column is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Column is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Column.  If not, see <http://www.gnu.org/licenses/>.
*/

package column

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// Test the tridiagonal solve against a general dense solver.
func TestSolveTridiagonal(t *testing.T) {
	const (
		testTolerance = 1.e-12
		n             = 7
	)
	au := make([]float64, n+1)
	bu := make([]float64, n+1)
	cu := make([]float64, n+1)
	du := make([]float64, n+1)
	for i := 1; i <= n; i++ {
		au[i] = -1. - 0.1*float64(i)
		cu[i] = -1. + 0.05*float64(i)
		bu[i] = 4. + 0.2*float64(i) // diagonally dominant
		du[i] = float64(i * i)
	}

	dense := mat.NewDense(n, n, nil)
	rhs := mat.NewVecDense(n, nil)
	for i := 1; i <= n; i++ {
		dense.Set(i-1, i-1, bu[i])
		if i > 1 {
			dense.Set(i-1, i-2, au[i])
		}
		if i < n {
			dense.Set(i-1, i, cu[i])
		}
		rhs.SetVec(i-1, du[i])
	}
	var want mat.VecDense
	if err := want.SolveVec(dense, rhs); err != nil {
		t.Fatal(err)
	}

	y := make([]float64, n+1)
	if err := solveTridiagonal(au, bu, cu, du, 1, n, y); err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= n; i++ {
		if math.Abs(y[i]-want.AtVec(i-1)) > testTolerance {
			t.Errorf("row %d: %g != %g", i, y[i], want.AtVec(i-1))
		}
	}
}

func TestSolveTridiagonalSingular(t *testing.T) {
	const n = 4
	au := make([]float64, n+1)
	bu := make([]float64, n+1) // zero diagonal
	cu := make([]float64, n+1)
	du := make([]float64, n+1)
	y := make([]float64, n+1)
	err := solveTridiagonal(au, bu, cu, du, 1, n, y)
	if err == nil {
		t.Fatal("expected an error for a singular system")
	}
	if !errors.Is(err, ErrSingularSystem) {
		t.Errorf("error %v is not ErrSingularSystem", err)
	}
}

// A zero sub-diagonal pivot appearing mid-elimination must also be caught.
func TestSolveTridiagonalEliminationBreakdown(t *testing.T) {
	const n = 3
	au := []float64{0, 0, 1, 0}
	bu := []float64{0, 1, 2, 1}
	cu := []float64{0, 2, 0, 0} // bu[2]-au[2]*cu[1] == 0
	du := []float64{0, 1, 1, 1}
	y := make([]float64, n+1)
	err := solveTridiagonal(au, bu, cu, du, 1, n, y)
	if !errors.Is(err, ErrSingularSystem) {
		t.Errorf("error %v is not ErrSingularSystem", err)
	}
}
