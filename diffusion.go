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

import "fmt"

// BoundaryType selects the boundary condition for one end of a vertical
// diffusion solve.
type BoundaryType int

const (
	// Dirichlet prescribes the state value in the boundary layer.
	Dirichlet BoundaryType = iota
	// Neumann prescribes a flux through the boundary. Positive values add
	// material to the column.
	Neumann
)

func (b BoundaryType) String() string {
	switch b {
	case Dirichlet:
		return "Dirichlet"
	case Neumann:
		return "Neumann"
	default:
		return fmt.Sprintf("BoundaryType(%d)", int(b))
	}
}

// DiffuseCenter advances the layer-centered state profile y by one time step
// of the vertical diffusion equation ∂y/∂t = ∂/∂z(ν ∂y/∂z) plus source
// terms, using a theta scheme with implicitness weight cnpar (0 explicit,
// 1 implicit, 0.5 Crank-Nicolson).
//
// The column has n layers with thicknesses h[1..n]; index 1 is the bottom
// layer and index n the surface layer. Index 0 of each profile is boundary
// bookkeeping and is not touched. The diffusivity nu is located at the layer
// interfaces: nu[i] is the interface between layers i and i+1.
//
// lsour is a linear source coefficient [1/s] folded entirely into the
// implicit diagonal, and qsour a constant source [units/s] added explicitly
// to the right-hand side. If posconc is true, negative constant sources are
// instead treated implicitly, divided by the current state, so that a
// positive profile cannot be driven negative. If relaxTau is non-nil, the
// profile is additionally relaxed toward yObs on the timescale relaxTau[i].
//
// bcUp and bcDown select the surface and bottom boundary treatment with
// prescribed values valUp and valDown: a Neumann flux enters the boundary
// layer's right-hand side scaled by dt/h, and a Dirichlet condition pins the
// boundary layer to the prescribed value, decoupling it from its neighbour.
// An invalid boundary tag is a configuration error and the profile is left
// unchanged.
func DiffuseCenter(n int, dt, cnpar float64, posconc bool, h []float64,
	bcUp, bcDown BoundaryType, valUp, valDown float64,
	nu, lsour, qsour, relaxTau, yObs, y []float64) error {

	if n < 2 {
		return fmt.Errorf("column: DiffuseCenter needs at least 2 layers, got %d", n)
	}
	if cnpar < 0 || cnpar > 1 {
		return fmt.Errorf("column: implicitness parameter %g is outside [0,1]", cnpar)
	}
	if err := checkBoundaryType(bcUp); err != nil {
		return err
	}
	if err := checkBoundaryType(bcDown); err != nil {
		return err
	}

	// Scratch buffers are local so that concurrent columns never share state.
	au := make([]float64, n+1)
	bu := make([]float64, n+1)
	cu := make([]float64, n+1)
	du := make([]float64, n+1)

	// Interior layers.
	for i := 2; i <= n-1; i++ {
		c := 2. * dt * nu[i] / (h[i] + h[i+1]) / h[i]
		a := 2. * dt * nu[i-1] / (h[i] + h[i-1]) / h[i]
		cu[i] = -cnpar * c
		au[i] = -cnpar * a
		bu[i] = 1. + cnpar*(a+c)
		du[i] = y[i] + (1.-cnpar)*(a*y[i-1]-(a+c)*y[i]+c*y[i+1])
		addSources(i, dt, posconc, lsour, qsour, relaxTau, yObs, y, bu, du)
	}

	// Surface layer.
	switch bcUp {
	case Neumann:
		a := 2. * dt * nu[n-1] / (h[n] + h[n-1]) / h[n]
		au[n] = -cnpar * a
		bu[n] = 1. + cnpar*a
		du[n] = y[n] + (1.-cnpar)*a*(y[n-1]-y[n]) + dt*valUp/h[n]
		addSources(n, dt, posconc, lsour, qsour, relaxTau, yObs, y, bu, du)
	case Dirichlet:
		au[n] = 0.
		bu[n] = 1.
		du[n] = valUp
	}

	// Bottom layer.
	switch bcDown {
	case Neumann:
		c := 2. * dt * nu[1] / (h[1] + h[2]) / h[1]
		cu[1] = -cnpar * c
		bu[1] = 1. + cnpar*c
		du[1] = y[1] + (1.-cnpar)*c*(y[2]-y[1]) + dt*valDown/h[1]
		addSources(1, dt, posconc, lsour, qsour, relaxTau, yObs, y, bu, du)
	case Dirichlet:
		cu[1] = 0.
		bu[1] = 1.
		du[1] = valDown
	}

	return solveTridiagonal(au, bu, cu, du, 1, n, y)
}

// addSources folds the source and relaxation terms for row i into the
// diagonal and right-hand side.
func addSources(i int, dt float64, posconc bool, lsour, qsour, relaxTau, yObs, y, bu, du []float64) {
	if lsour != nil {
		bu[i] -= dt * lsour[i]
	}
	if qsour != nil {
		if posconc && qsour[i] < 0 && y[i] > 0 {
			// Implicit treatment of a negative source keeps the profile
			// non-negative.
			bu[i] -= dt * qsour[i] / y[i]
		} else {
			du[i] += dt * qsour[i]
		}
	}
	if relaxTau != nil {
		bu[i] += dt / relaxTau[i]
		du[i] += dt / relaxTau[i] * yObs[i]
	}
}

// DiffuseFace advances an interface-located state profile y (for example
// turbulence quantities on the staggered grid) by one theta-scheme diffusion
// step. The unknowns are the interior interfaces 1..n-1 between the n layers
// with thicknesses h[1..n]; interfaces 0 and n are the column boundaries.
// The control volume around interface i spans half of each adjacent layer,
// so a Neumann boundary flux enters the boundary row scaled by
// 2*dt/(h_i+h_{i+1}), and the diffusivity between neighbouring interfaces is
// the layer-mean of the interface values.
//
// A two-layer column (n==2) has a single unknown interface bounded on both
// sides; the single interior diffusivity and state value are mirrored into
// both boundary slots before assembly so both boundary layers see identical
// properties. This is a deliberate narrow-column accommodation, not a
// general rule.
func DiffuseFace(n int, dt, cnpar float64, h []float64,
	bcUp, bcDown BoundaryType, valUp, valDown float64,
	nu, lsour, qsour, y []float64) error {

	if n < 2 {
		return fmt.Errorf("column: DiffuseFace needs at least 2 layers, got %d", n)
	}
	if cnpar < 0 || cnpar > 1 {
		return fmt.Errorf("column: implicitness parameter %g is outside [0,1]", cnpar)
	}
	if err := checkBoundaryType(bcUp); err != nil {
		return err
	}
	if err := checkBoundaryType(bcDown); err != nil {
		return err
	}

	if n == 2 {
		// Single unknown interface. Mirroring the interior properties into
		// the boundary slots removes any diffusive exchange, leaving only
		// sources and boundary fluxes.
		nu[0], nu[2] = nu[1], nu[1]
		y[0], y[2] = y[1], y[1]
		b := 1.
		d := y[1]
		if lsour != nil {
			b -= dt * lsour[1]
		}
		if qsour != nil {
			d += dt * qsour[1]
		}
		switch bcUp {
		case Neumann:
			d += 2. * dt * valUp / (h[1] + h[2])
		case Dirichlet:
			y[1] = valUp
			return nil
		}
		switch bcDown {
		case Neumann:
			d += 2. * dt * valDown / (h[1] + h[2])
		case Dirichlet:
			y[1] = valDown
			return nil
		}
		y[1] = d / b
		return nil
	}

	au := make([]float64, n)
	bu := make([]float64, n)
	cu := make([]float64, n)
	du := make([]float64, n)

	// layer-mean diffusivity within layer i
	nuc := func(i int) float64 { return 0.5 * (nu[i-1] + nu[i]) }

	for i := 2; i <= n-2; i++ {
		c := 2. * dt * nuc(i+1) / (h[i] + h[i+1]) / h[i+1]
		a := 2. * dt * nuc(i) / (h[i] + h[i+1]) / h[i]
		cu[i] = -cnpar * c
		au[i] = -cnpar * a
		bu[i] = 1. + cnpar*(a+c)
		du[i] = y[i] + (1.-cnpar)*(a*y[i-1]-(a+c)*y[i]+c*y[i+1])
		if lsour != nil {
			bu[i] -= dt * lsour[i]
		}
		if qsour != nil {
			du[i] += dt * qsour[i]
		}
	}

	// Surface interface n-1.
	switch bcUp {
	case Neumann:
		a := 2. * dt * nuc(n-1) / (h[n-1] + h[n]) / h[n-1]
		au[n-1] = -cnpar * a
		bu[n-1] = 1. + cnpar*a
		du[n-1] = y[n-1] + (1.-cnpar)*a*(y[n-2]-y[n-1]) +
			2.*dt*valUp/(h[n-1]+h[n])
		if lsour != nil {
			bu[n-1] -= dt * lsour[n-1]
		}
		if qsour != nil {
			du[n-1] += dt * qsour[n-1]
		}
	case Dirichlet:
		au[n-1] = 0.
		bu[n-1] = 1.
		du[n-1] = valUp
	}

	// Bottom interface 1.
	switch bcDown {
	case Neumann:
		c := 2. * dt * nuc(2) / (h[1] + h[2]) / h[2]
		cu[1] = -cnpar * c
		bu[1] = 1. + cnpar*c
		du[1] = y[1] + (1.-cnpar)*c*(y[2]-y[1]) +
			2.*dt*valDown/(h[1]+h[2])
		if lsour != nil {
			bu[1] -= dt * lsour[1]
		}
		if qsour != nil {
			du[1] += dt * qsour[1]
		}
	case Dirichlet:
		cu[1] = 0.
		bu[1] = 1.
		du[1] = valDown
	}

	return solveTridiagonal(au, bu, cu, du, 1, n-1, y)
}

func checkBoundaryType(b BoundaryType) error {
	switch b {
	case Dirichlet, Neumann:
		return nil
	default:
		// Proceeding with an unrecognized boundary treatment would corrupt
		// the step, so this is fatal for the requested operation.
		return fmt.Errorf("column: invalid boundary condition type %v", b)
	}
}
