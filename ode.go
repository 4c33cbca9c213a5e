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

// DerivativeEvaluator supplies the net rate of change of each species in
// each layer. Concentration arrays have shape (numSpecies, numLayers+1) with
// layer index 0 reserved for boundary bookkeeping.
//
// first reports whether this is the first evaluation within the current time
// step; an implementation may use it to skip redundant internal work (for
// example recomputing light fields), but the returned values must be
// numerically identical either way.
type DerivativeEvaluator interface {
	Derivatives(first bool, conc *sparse.DenseArray) (*sparse.DenseArray, error)
}

// SourceSplitter supplies the production/destruction decomposition of the
// reaction terms: pp and dd have shape (numSpecies, numSpecies, numLayers+1),
// where pp.Get(i, j, k) is the non-negative flux from species j into species
// i in layer k and dd.Get(i, j, k) the flux from i into j. Diagonal entries
// hold production and destruction not attributable to another species.
// The arrays are created fresh on each call and never persisted.
//
// The first flag has the same meaning as for DerivativeEvaluator.
type SourceSplitter interface {
	ProductionDestruction(first bool, conc *sparse.DenseArray) (pp, dd *sparse.DenseArray, err error)
}

// Scheme identifies one of the reaction time-stepping schemes. The set is
// closed: Integrate dispatches over exactly these values and rejects
// anything else.
type Scheme int

const (
	// Euler is the first-order forward Euler scheme.
	Euler Scheme = iota + 1
	// RungeKutta2 is the second-order midpoint scheme.
	RungeKutta2
	// RungeKutta4 is the classical fourth-order Runge-Kutta scheme.
	RungeKutta4
	// Patankar treats destruction terms implicitly by dividing by the old
	// concentration, guaranteeing positivity but not exact conservation.
	Patankar
	// PatankarRK is the second-order predictor-corrector Patankar scheme.
	PatankarRK
	// PatankarRK4 is a non-functional placeholder; it is not conservative
	// and requesting it returns an error.
	PatankarRK4
	// ModifiedPatankar additionally treats production implicitly through a
	// per-layer linear system, achieving exact mass conservation.
	ModifiedPatankar
	// ModifiedPatankarRK is the second-order Modified Patankar scheme.
	ModifiedPatankarRK
	// ModifiedPatankarRK4 is a non-functional placeholder like PatankarRK4.
	ModifiedPatankarRK4
	// ExtendedModifiedPatankar conserves stoichiometry across multiple
	// simultaneously limiting species via a scalar multiplier solved by
	// bisection.
	ExtendedModifiedPatankar
	// ExtendedModifiedPatankarRK is the second-order extended scheme.
	ExtendedModifiedPatankarRK
)

var schemeNames = map[Scheme]string{
	Euler:                      "Euler",
	RungeKutta2:                "RungeKutta2",
	RungeKutta4:                "RungeKutta4",
	Patankar:                   "Patankar",
	PatankarRK:                 "PatankarRK",
	PatankarRK4:                "PatankarRK4",
	ModifiedPatankar:           "ModifiedPatankar",
	ModifiedPatankarRK:         "ModifiedPatankarRK",
	ModifiedPatankarRK4:        "ModifiedPatankarRK4",
	ExtendedModifiedPatankar:   "ExtendedModifiedPatankar",
	ExtendedModifiedPatankarRK: "ExtendedModifiedPatankarRK",
}

func (s Scheme) String() string {
	if name, ok := schemeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Scheme(%d)", int(s))
}

// Schemes returns the identifiers of all named schemes in selector order,
// including the disabled placeholders.
func Schemes() []Scheme {
	return []Scheme{Euler, RungeKutta2, RungeKutta4, Patankar, PatankarRK,
		PatankarRK4, ModifiedPatankar, ModifiedPatankarRK,
		ModifiedPatankarRK4, ExtendedModifiedPatankar,
		ExtendedModifiedPatankarRK}
}

// Integrate advances the concentration array conc in place by one reaction
// time step of length dt using the selected scheme. Each scheme requires
// exactly one of the two evaluator conventions: the explicit and extended
// schemes use deriv, the Patankar and Modified Patankar families use split.
// The unused evaluator may be nil.
//
// An unknown scheme selector is a configuration error: Integrate returns an
// error naming the invalid solver and never silently substitutes a default.
func Integrate(scheme Scheme, dt float64, conc *sparse.DenseArray,
	deriv DerivativeEvaluator, split SourceSplitter) error {

	needDeriv := func() error {
		if deriv == nil {
			return fmt.Errorf("column: ode scheme %v needs a DerivativeEvaluator", scheme)
		}
		return nil
	}
	needSplit := func() error {
		if split == nil {
			return fmt.Errorf("column: ode scheme %v needs a SourceSplitter", scheme)
		}
		return nil
	}

	switch scheme {
	case Euler:
		if err := needDeriv(); err != nil {
			return err
		}
		return eulerForward(dt, conc, deriv)
	case RungeKutta2:
		if err := needDeriv(); err != nil {
			return err
		}
		return rungeKutta2(dt, conc, deriv)
	case RungeKutta4:
		if err := needDeriv(); err != nil {
			return err
		}
		return rungeKutta4(dt, conc, deriv)
	case Patankar:
		if err := needSplit(); err != nil {
			return err
		}
		return patankarForward(dt, conc, split)
	case PatankarRK:
		if err := needSplit(); err != nil {
			return err
		}
		return patankarRungeKutta(dt, conc, split)
	case ModifiedPatankar:
		if err := needSplit(); err != nil {
			return err
		}
		return modifiedPatankarForward(dt, conc, split)
	case ModifiedPatankarRK:
		if err := needSplit(); err != nil {
			return err
		}
		return modifiedPatankarRungeKutta(dt, conc, split)
	case ExtendedModifiedPatankar:
		if err := needDeriv(); err != nil {
			return err
		}
		return extendedModifiedPatankar(dt, conc, deriv)
	case ExtendedModifiedPatankarRK:
		if err := needDeriv(); err != nil {
			return err
		}
		return extendedModifiedPatankarRK(dt, conc, deriv)
	case PatankarRK4, ModifiedPatankarRK4:
		// Known-broken upstream: the 4th-order Patankar constructions are
		// not conservative. Refuse rather than ship a wrong result.
		return fmt.Errorf("column: ode scheme %v is disabled: the 4th-order Patankar variants are not conservative", scheme)
	default:
		return fmt.Errorf("column: invalid ode solver %d", int(scheme))
	}
}

// concDims returns the species and layer counts of a concentration array.
func concDims(conc *sparse.DenseArray) (numc, nlev int) {
	return conc.Shape[0], conc.Shape[1] - 1
}
