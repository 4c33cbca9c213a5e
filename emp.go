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
	"github.com/sirupsen/logrus"
)

const (
	// maxBisection caps the bisection iterations; the best bracket estimate
	// is accepted afterwards rather than failing the step.
	maxBisection = 20
	// bisectionTolerance is the relative bracket width below which the
	// multiplier is considered converged.
	bisectionTolerance = 1.e-9
	// stiffMultiplier is the multiplier value below which a diagnostic
	// warning is emitted: such small multipliers indicate a stiff or
	// near-non-positive system that the scheme handles poorly.
	stiffMultiplier = 1.e-4
)

// log carries the package's diagnostic messages. Replaceable for tests.
var log logrus.FieldLogger = logrus.StandardLogger()

// patankarMultiplier solves the scalar constraint equation of the Extended
// Modified Patankar scheme for one layer: given concentrations c and net
// derivatives d for all species, it finds the multiplier p in
// (0, min(1, min_j(-c_j/(dt·d_j)))] satisfying
//
//	Π_j (1 + dt·d_j/c_j · p) = p
//
// where the product runs over the species with strictly negative derivative.
// If no species has a negative derivative the step degenerates to forward
// Euler and p=1 immediately. The root is bracketed and found by bisection:
// the polynomial is 1 at p=0 and reaches -p at the right bracket end, so a
// polynomial value above the midpoint moves the left bound up and a value
// below moves the right bound down; an exact crossing converges immediately.
func patankarMultiplier(dt float64, c, d []float64, layer int) (float64, error) {
	right := 1.
	limited := false
	for j := range d {
		if d[j] >= 0 {
			continue
		}
		if c[j] <= 0 {
			return 0, fmt.Errorf("column: EMP species %d layer %d: %w", j, layer, ErrNonpositive)
		}
		limited = true
		if b := -c[j] / (dt * d[j]); b < right {
			right = b
		}
	}
	if !limited {
		return 1., nil
	}

	left := 0.
	p := 0.5 * (left + right)
	for iter := 0; iter < maxBisection; iter++ {
		p = 0.5 * (left + right)
		poly := 1.
		for j := range d {
			if d[j] < 0 {
				poly *= 1. + dt*d[j]/c[j]*p
			}
		}
		switch {
		case poly > p:
			left = p
		case poly < p:
			right = p
		default:
			// Exact crossing.
			iter = maxBisection
		}
		if right-left <= bisectionTolerance*right {
			p = 0.5 * (left + right)
			break
		}
	}
	if p < stiffMultiplier {
		log.WithFields(logrus.Fields{
			"layer":      layer,
			"multiplier": p,
		}).Warn("column: EMP multiplier collapsed; the reaction system is stiff or nearly non-positive")
	}
	return p, nil
}

// extendedModifiedPatankar advances conc by one first-order Extended
// Modified Patankar step: each layer is updated as c += dt·rhs·p with the
// layer's multiplier from patankarMultiplier, which preserves positivity and
// conserves stoichiometry across all simultaneously limiting species.
func extendedModifiedPatankar(dt float64, conc *sparse.DenseArray, deriv DerivativeEvaluator) error {
	rhs, err := deriv.Derivatives(true, conc)
	if err != nil {
		return err
	}
	numc, nlev := concDims(conc)
	c := make([]float64, numc)
	d := make([]float64, numc)
	for k := 1; k <= nlev; k++ {
		for i := 0; i < numc; i++ {
			c[i] = conc.Get(i, k)
			d[i] = rhs.Get(i, k)
		}
		p, err := patankarMultiplier(dt, c, d, k)
		if err != nil {
			return err
		}
		for i := 0; i < numc; i++ {
			conc.Set(c[i]+dt*d[i]*p, i, k)
		}
	}
	return nil
}

// extendedModifiedPatankarRK advances conc by one second-order Extended
// Modified Patankar predictor-corrector step (Bruggeman et al. 2005). The
// predictor is a first-order EMP step. On the corrector, each species'
// positive derivative contribution is rescaled by the ratio of the old to
// the predicted concentration before the stage derivatives are averaged; the
// constraint set is then re-derived from the averaged derivatives and a
// second bisection solve produces the corrector multiplier.
func extendedModifiedPatankarRK(dt float64, conc *sparse.DenseArray, deriv DerivativeEvaluator) error {
	rhs1, err := deriv.Derivatives(true, conc)
	if err != nil {
		return err
	}
	numc, nlev := concDims(conc)
	c := make([]float64, numc)
	d := make([]float64, numc)

	pre := conc.Copy()
	for k := 1; k <= nlev; k++ {
		for i := 0; i < numc; i++ {
			c[i] = conc.Get(i, k)
			d[i] = rhs1.Get(i, k)
		}
		p, err := patankarMultiplier(dt, c, d, k)
		if err != nil {
			return fmt.Errorf("column: EMP predictor: %w", err)
		}
		for i := 0; i < numc; i++ {
			pre.Set(c[i]+dt*d[i]*p, i, k)
		}
	}

	rhs2, err := deriv.Derivatives(false, pre)
	if err != nil {
		return err
	}
	for k := 1; k <= nlev; k++ {
		for i := 0; i < numc; i++ {
			c[i] = conc.Get(i, k)
			dc := rhs2.Get(i, k)
			if dc > 0 && pre.Get(i, k) > 0 {
				dc *= c[i] / pre.Get(i, k)
			}
			d[i] = 0.5 * (rhs1.Get(i, k) + dc)
		}
		p, err := patankarMultiplier(dt, c, d, k)
		if err != nil {
			return fmt.Errorf("column: EMP corrector: %w", err)
		}
		for i := 0; i < numc; i++ {
			conc.Set(c[i]+dt*d[i]*p, i, k)
		}
	}
	return nil
}
