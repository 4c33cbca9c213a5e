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
	"fmt"
	"math"

	"github.com/ctessum/sparse"
)

// solveDense solves the dense linear system a·x = r by Gaussian elimination
// without pivoting, overwriting a and r. The Modified Patankar assembly
// produces strictly diagonally dominant systems for positive concentrations
// and non-negative destruction terms, which makes pivoting unnecessary; a
// zero pivot therefore signals a violated precondition.
func solveDense(a [][]float64, r []float64) ([]float64, error) {
	n := len(r)
	for k := 0; k < n-1; k++ {
		if math.Abs(a[k][k]) < smallPivot {
			return nil, fmt.Errorf("column: dense row %d: %w", k, ErrSingularSystem)
		}
		for i := k + 1; i < n; i++ {
			f := a[i][k] / a[k][k]
			for j := k + 1; j < n; j++ {
				a[i][j] -= f * a[k][j]
			}
			r[i] -= f * r[k]
		}
	}
	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		if math.Abs(a[i][i]) < smallPivot {
			return nil, fmt.Errorf("column: dense row %d: %w", i, ErrSingularSystem)
		}
		s := r[i]
		for j := i + 1; j < n; j++ {
			s -= a[i][j] * x[j]
		}
		x[i] = s / a[i][i]
	}
	return x, nil
}

// modifiedPatankarForward advances conc by one first-order Modified Patankar
// step. Production and destruction are both treated implicitly through a
// per-layer numSpecies×numSpecies linear system, which makes the step exactly
// mass conserving in addition to positivity preserving.
func modifiedPatankarForward(dt float64, conc *sparse.DenseArray, split SourceSplitter) error {
	pp, dd, err := split.ProductionDestruction(true, conc)
	if err != nil {
		return err
	}
	numc, nlev := concDims(conc)
	for k := 1; k <= nlev; k++ {
		a := make([][]float64, numc)
		r := make([]float64, numc)
		for i := 0; i < numc; i++ {
			ci := conc.Get(i, k)
			if ci <= 0 {
				return fmt.Errorf("column: ModifiedPatankar species %d layer %d: %w", i, k, ErrNonpositive)
			}
			a[i] = make([]float64, numc)
			var dsum float64
			for j := 0; j < numc; j++ {
				dsum += dd.Get(i, j, k)
				if j != i {
					a[i][j] = -dt * pp.Get(i, j, k) / conc.Get(j, k)
				}
			}
			a[i][i] = 1. + dt*dsum/ci
			// Self-production stays explicit on the right-hand side.
			r[i] = ci + dt*pp.Get(i, i, k)
		}
		x, err := solveDense(a, r)
		if err != nil {
			return fmt.Errorf("column: ModifiedPatankar layer %d: %w", k, err)
		}
		for i := 0; i < numc; i++ {
			conc.Set(x[i], i, k)
		}
	}
	return nil
}

// modifiedPatankarRungeKutta advances conc by one second-order Modified
// Patankar predictor-corrector step: a first-order predictor, a second
// evaluation at the predicted state, and a corrector solve with the stage
// averages of pp and dd, referencing the predicted state in the implicit
// denominators.
func modifiedPatankarRungeKutta(dt float64, conc *sparse.DenseArray, split SourceSplitter) error {
	pp1, dd1, err := split.ProductionDestruction(true, conc)
	if err != nil {
		return err
	}
	ws := conc.Copy()
	numc, nlev := concDims(conc)
	for k := 1; k <= nlev; k++ {
		a := make([][]float64, numc)
		r := make([]float64, numc)
		for i := 0; i < numc; i++ {
			ci := conc.Get(i, k)
			if ci <= 0 {
				return fmt.Errorf("column: ModifiedPatankarRK species %d layer %d: %w", i, k, ErrNonpositive)
			}
			a[i] = make([]float64, numc)
			var dsum float64
			for j := 0; j < numc; j++ {
				dsum += dd1.Get(i, j, k)
				if j != i {
					a[i][j] = -dt * pp1.Get(i, j, k) / conc.Get(j, k)
				}
			}
			a[i][i] = 1. + dt*dsum/ci
			r[i] = ci + dt*pp1.Get(i, i, k)
		}
		x, err := solveDense(a, r)
		if err != nil {
			return fmt.Errorf("column: ModifiedPatankarRK predictor layer %d: %w", k, err)
		}
		for i := 0; i < numc; i++ {
			ws.Set(x[i], i, k)
		}
	}

	pp2, dd2, err := split.ProductionDestruction(false, ws)
	if err != nil {
		return err
	}
	for k := 1; k <= nlev; k++ {
		a := make([][]float64, numc)
		r := make([]float64, numc)
		for i := 0; i < numc; i++ {
			wi := ws.Get(i, k)
			if wi <= 0 {
				return fmt.Errorf("column: ModifiedPatankarRK species %d layer %d: %w", i, k, ErrNonpositive)
			}
			a[i] = make([]float64, numc)
			var dsum float64
			for j := 0; j < numc; j++ {
				dsum += dd1.Get(i, j, k) + dd2.Get(i, j, k)
				if j != i {
					a[i][j] = -0.5 * dt * (pp1.Get(i, j, k) + pp2.Get(i, j, k)) / ws.Get(j, k)
				}
			}
			a[i][i] = 1. + 0.5*dt*dsum/wi
			r[i] = conc.Get(i, k) + 0.5*dt*(pp1.Get(i, i, k)+pp2.Get(i, i, k))
		}
		x, err := solveDense(a, r)
		if err != nil {
			return fmt.Errorf("column: ModifiedPatankarRK corrector layer %d: %w", k, err)
		}
		for i := 0; i < numc; i++ {
			conc.Set(x[i], i, k)
		}
	}
	return nil
}
