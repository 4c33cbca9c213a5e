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

// Package npzd implements a four-compartment nutrient, phytoplankton,
// zooplankton, and detritus reaction mechanism. Every transformation is a
// transfer between two compartments, so the mechanism conserves total
// nitrogen exactly and is suitable for the positivity-preserving reaction
// integrators.
package npzd

import (
	"fmt"

	"github.com/ctessum/sparse"
)

// Species indices within the concentration array.
const (
	iNut = iota
	iPhy
	iZoo
	iDet
)

var species = []string{"nut", "phy", "zoo", "det"}

// Mechanism holds the parameters of the NPZD model. All concentrations and
// fluxes are in nitrogen currency. The zero value is not useful; use New for
// the standard parameter set.
type Mechanism struct {
	MaxUptake        float64 // maximum phytoplankton uptake rate [1/s]
	NutHalfSat       float64 // half-saturation nutrient concentration [mmol N/m³]
	MaxGrazing       float64 // maximum zooplankton grazing rate [1/s]
	PhyHalfSat       float64 // half-saturation phytoplankton concentration [mmol N/m³]
	AssimilationEff  float64 // fraction of grazed material assimilated by zooplankton
	PhyMortality     float64 // phytoplankton loss rate to detritus [1/s]
	ZooMortality     float64 // zooplankton loss rate to detritus [1/s]
	Remineralization float64 // detritus remineralization rate [1/s]
}

// New returns a Mechanism with the standard parameter set, with rates
// converted from the customary per-day values.
func New() Mechanism {
	const day = 86400.
	return Mechanism{
		MaxUptake:        2.0 / day,
		NutHalfSat:       0.3,
		MaxGrazing:       1.5 / day,
		PhyHalfSat:       0.5,
		AssimilationEff:  0.75,
		PhyMortality:     0.04 / day,
		ZooMortality:     0.06 / day,
		Remineralization: 0.1 / day,
	}
}

// Len returns the number of species in the mechanism.
func (m Mechanism) Len() int { return len(species) }

// Species returns the species names in concentration-array index order.
func (m Mechanism) Species() []string {
	return append([]string{}, species...)
}

// Units returns the units of the given species' concentration.
func (m Mechanism) Units(s string) (string, error) {
	for _, name := range species {
		if s == name {
			return "mmol N/m³", nil
		}
	}
	return "", fmt.Errorf("npzd: unknown species '%s'", s)
}

// fluxes evaluates the inter-compartment transfer rates for one layer.
// Negative concentrations are clipped to zero in the rate expressions so that
// the fluxes stay non-negative, as the Patankar-type integrators require.
func (m Mechanism) fluxes(nut, phy, zoo, det float64) (uptake, grazing, phyLoss, zooLoss, remin float64) {
	if nut < 0 {
		nut = 0
	}
	if phy < 0 {
		phy = 0
	}
	if zoo < 0 {
		zoo = 0
	}
	if det < 0 {
		det = 0
	}
	uptake = m.MaxUptake * nut / (m.NutHalfSat + nut) * phy
	grazing = m.MaxGrazing * phy / (m.PhyHalfSat + phy) * zoo
	phyLoss = m.PhyMortality * phy
	zooLoss = m.ZooMortality * zoo
	remin = m.Remineralization * det
	return
}

// ProductionDestruction returns the production and destruction matrices for
// every layer: pp[i][j] is the flux from species j into species i and
// dd[i][j] the flux from species i into species j, so pp[i][j] == dd[j][i]
// and the diagonals are zero. The first argument is unused because the rate
// expressions have no step-scoped state.
func (m Mechanism) ProductionDestruction(first bool, conc *sparse.DenseArray) (pp, dd *sparse.DenseArray, err error) {
	if len(conc.Shape) != 2 || conc.Shape[0] != m.Len() {
		return nil, nil, fmt.Errorf("npzd: concentration array has shape %v; want [%d n]", conc.Shape, m.Len())
	}
	nlev := conc.Shape[1]
	pp = sparse.ZerosDense(m.Len(), m.Len(), nlev)
	dd = sparse.ZerosDense(m.Len(), m.Len(), nlev)
	set := func(from, to, k int, flux float64) {
		pp.Set(flux, to, from, k)
		dd.Set(flux, from, to, k)
	}
	for k := 1; k < nlev; k++ {
		uptake, grazing, phyLoss, zooLoss, remin := m.fluxes(
			conc.Get(iNut, k), conc.Get(iPhy, k), conc.Get(iZoo, k), conc.Get(iDet, k))
		set(iNut, iPhy, k, uptake)
		set(iPhy, iZoo, k, m.AssimilationEff*grazing)
		set(iPhy, iDet, k, (1-m.AssimilationEff)*grazing+phyLoss)
		set(iZoo, iDet, k, zooLoss)
		set(iDet, iNut, k, remin)
	}
	return pp, dd, nil
}

// Derivatives returns the net time derivative of every species in every
// layer, summing the production and destruction fluxes.
func (m Mechanism) Derivatives(first bool, conc *sparse.DenseArray) (*sparse.DenseArray, error) {
	pp, dd, err := m.ProductionDestruction(first, conc)
	if err != nil {
		return nil, err
	}
	nlev := conc.Shape[1]
	rhs := sparse.ZerosDense(m.Len(), nlev)
	for k := 1; k < nlev; k++ {
		for i := 0; i < m.Len(); i++ {
			var sum float64
			for j := 0; j < m.Len(); j++ {
				sum += pp.Get(i, j, k) - dd.Get(i, j, k)
			}
			rhs.Set(sum, i, k)
		}
	}
	return rhs, nil
}
