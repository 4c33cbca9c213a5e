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
)

// smallPivot is the magnitude below which a pivot is treated as zero.
const smallPivot = 1.e-150

// solveTridiagonal solves the tridiagonal system with sub-diagonal au,
// main diagonal bu, super-diagonal cu and right-hand side du for the unknowns
// with indices in the closed interval [fi, lt], storing the solution in y.
// It uses forward elimination followed by back-substitution (the Thomas
// algorithm) without pivoting: the diffusion and reaction assemblies that
// build these systems guarantee diagonal dominance, which makes pivoting
// unnecessary. The coefficient buffers are overwritten during the solve;
// they are rebuilt on every call so this is harmless.
func solveTridiagonal(au, bu, cu, du []float64, fi, lt int, y []float64) error {
	if math.Abs(bu[fi]) < smallPivot {
		return fmt.Errorf("column: tridiagonal row %d: %w", fi, ErrSingularSystem)
	}
	cu[fi] /= bu[fi]
	du[fi] /= bu[fi]
	for i := fi + 1; i <= lt; i++ {
		piv := bu[i] - au[i]*cu[i-1]
		if math.Abs(piv) < smallPivot {
			return fmt.Errorf("column: tridiagonal row %d: %w", i, ErrSingularSystem)
		}
		cu[i] /= piv
		du[i] = (du[i] - au[i]*du[i-1]) / piv
	}
	y[lt] = du[lt]
	for i := lt - 1; i >= fi; i-- {
		y[i] = du[i] - cu[i]*y[i+1]
	}
	return nil
}
