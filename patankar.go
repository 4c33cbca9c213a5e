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

	"github.com/ctessum/sparse"
)

// eulerForward advances conc by one forward Euler step.
func eulerForward(dt float64, conc *sparse.DenseArray, deriv DerivativeEvaluator) error {
	rhs, err := deriv.Derivatives(true, conc)
	if err != nil {
		return err
	}
	numc, nlev := concDims(conc)
	for i := 0; i < numc; i++ {
		for k := 1; k <= nlev; k++ {
			conc.AddVal(dt*rhs.Get(i, k), i, k)
		}
	}
	return nil
}

// rungeKutta2 advances conc by one step of the second-order midpoint scheme.
func rungeKutta2(dt float64, conc *sparse.DenseArray, deriv DerivativeEvaluator) error {
	rhs1, err := deriv.Derivatives(true, conc)
	if err != nil {
		return err
	}
	numc, nlev := concDims(conc)
	ws := conc.Copy()
	for i := 0; i < numc; i++ {
		for k := 1; k <= nlev; k++ {
			ws.AddVal(0.5*dt*rhs1.Get(i, k), i, k)
		}
	}
	rhs2, err := deriv.Derivatives(false, ws)
	if err != nil {
		return err
	}
	for i := 0; i < numc; i++ {
		for k := 1; k <= nlev; k++ {
			conc.AddVal(dt*rhs2.Get(i, k), i, k)
		}
	}
	return nil
}

// rungeKutta4 advances conc by one step of the classical fourth-order
// Runge-Kutta scheme, accumulating the stage derivatives in a running sum
// with weights 1, 2, 2, 1 and applying dt/6 at the end.
func rungeKutta4(dt float64, conc *sparse.DenseArray, deriv DerivativeEvaluator) error {
	numc, nlev := concDims(conc)

	k1, err := deriv.Derivatives(true, conc)
	if err != nil {
		return err
	}
	sum := k1.Copy()

	ws := conc.Copy()
	for i := 0; i < numc; i++ {
		for k := 1; k <= nlev; k++ {
			ws.Set(conc.Get(i, k)+0.5*dt*k1.Get(i, k), i, k)
		}
	}
	k2, err := deriv.Derivatives(false, ws)
	if err != nil {
		return err
	}
	for i := 0; i < numc; i++ {
		for k := 1; k <= nlev; k++ {
			sum.AddVal(2.*k2.Get(i, k), i, k)
			ws.Set(conc.Get(i, k)+0.5*dt*k2.Get(i, k), i, k)
		}
	}
	k3, err := deriv.Derivatives(false, ws)
	if err != nil {
		return err
	}
	for i := 0; i < numc; i++ {
		for k := 1; k <= nlev; k++ {
			sum.AddVal(2.*k3.Get(i, k), i, k)
			ws.Set(conc.Get(i, k)+dt*k3.Get(i, k), i, k)
		}
	}
	k4, err := deriv.Derivatives(false, ws)
	if err != nil {
		return err
	}
	for i := 0; i < numc; i++ {
		for k := 1; k <= nlev; k++ {
			sum.AddVal(k4.Get(i, k), i, k)
			conc.AddVal(dt/6.*sum.Get(i, k), i, k)
		}
	}
	return nil
}

// sourceSums returns the total production and destruction of species i in
// layer k, summed over all partner species.
func sourceSums(pp, dd *sparse.DenseArray, numc, i, k int) (psum, dsum float64) {
	for j := 0; j < numc; j++ {
		psum += pp.Get(i, j, k)
		dsum += dd.Get(i, j, k)
	}
	return psum, dsum
}

// patankarForward advances conc by one first-order Patankar step:
// destruction is divided by the old concentration, which linearises the
// implicit step and guarantees positivity for positive input, at the cost of
// exact conservation.
func patankarForward(dt float64, conc *sparse.DenseArray, split SourceSplitter) error {
	pp, dd, err := split.ProductionDestruction(true, conc)
	if err != nil {
		return err
	}
	return patankarUpdate(dt, conc, pp, dd)
}

func patankarUpdate(dt float64, conc, pp, dd *sparse.DenseArray) error {
	numc, nlev := concDims(conc)
	for k := 1; k <= nlev; k++ {
		for i := 0; i < numc; i++ {
			cold := conc.Get(i, k)
			if cold <= 0 {
				return fmt.Errorf("column: Patankar species %d layer %d: %w", i, k, ErrNonpositive)
			}
			psum, dsum := sourceSums(pp, dd, numc, i, k)
			conc.Set((cold+dt*psum)/(1.+dt*dsum/cold), i, k)
		}
	}
	return nil
}

// patankarRungeKutta advances conc by one second-order Patankar
// predictor-corrector step. The corrector averages the production and
// destruction sums of both stages and references the intermediate state in
// the implicit denominator.
func patankarRungeKutta(dt float64, conc *sparse.DenseArray, split SourceSplitter) error {
	pp1, dd1, err := split.ProductionDestruction(true, conc)
	if err != nil {
		return err
	}
	ws := conc.Copy()
	if err := patankarUpdate(dt, ws, pp1, dd1); err != nil {
		return err
	}
	pp2, dd2, err := split.ProductionDestruction(false, ws)
	if err != nil {
		return err
	}
	numc, nlev := concDims(conc)
	for k := 1; k <= nlev; k++ {
		for i := 0; i < numc; i++ {
			p1, d1 := sourceSums(pp1, dd1, numc, i, k)
			p2, d2 := sourceSums(pp2, dd2, numc, i, k)
			wsv := ws.Get(i, k)
			if wsv <= 0 {
				return fmt.Errorf("column: PatankarRK species %d layer %d: %w", i, k, ErrNonpositive)
			}
			conc.Set((conc.Get(i, k)+0.5*dt*(p1+p2))/(1.+0.5*dt*(d1+d2)/wsv), i, k)
		}
	}
	return nil
}
