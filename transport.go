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

// Forcing supplies the collaborator data the transport equations need:
// surface fluxes and boundary values from air-sea parameterisations and the
// turbulence closure. The core treats these as opaque inputs; any
// time-dependence is the implementation's business.
type Forcing interface {
	// SurfaceStress returns the kinematic surface momentum flux
	// (τx/ρ, τy/ρ) [m²/s²].
	SurfaceStress(c *Column) (taux, tauy float64)
	// SurfaceHeatFlux returns the kinematic surface heat flux [K·m/s];
	// positive values warm the column.
	SurfaceHeatFlux(c *Column) float64
	// SurfaceSaltFlux returns the kinematic surface salinity flux
	// [g/kg·m/s], for example from evaporation minus precipitation.
	SurfaceSaltFlux(c *Column) float64
}

// ConstantForcing is a Forcing with time-independent surface fluxes.
type ConstantForcing struct {
	TauX, TauY float64
	HeatFlux   float64
	SaltFlux   float64
}

// SurfaceStress implements the Forcing interface.
func (f ConstantForcing) SurfaceStress(c *Column) (float64, float64) { return f.TauX, f.TauY }

// SurfaceHeatFlux implements the Forcing interface.
func (f ConstantForcing) SurfaceHeatFlux(c *Column) float64 { return f.HeatFlux }

// SurfaceSaltFlux implements the Forcing interface.
func (f ConstantForcing) SurfaceSaltFlux(c *Column) float64 { return f.SaltFlux }

// ConstantDiffusivity returns a function that fills the eddy viscosity and
// diffusivity profiles with constant interface values. It stands in for a
// turbulence closure when one is not being simulated.
func ConstantDiffusivity(num, nuh float64) ColumnManipulator {
	return func(c *Column) error {
		for i := 0; i <= c.Nz; i++ {
			c.NuM[i] = num
			c.NuH[i] = nuh
		}
		return nil
	}
}

// DiffuseMomentum returns a function that advances the horizontal velocity
// profiles by one time step: inertial rotation by the Coriolis parameter,
// then semi-implicit vertical diffusion of both components with the eddy
// viscosity profile. The surface boundary condition is the prescribed
// kinematic stress; the bottom boundary is a quadratic drag folded into the
// bottom layer as an implicit linear sink.
func DiffuseMomentum(cnpar float64, forcing Forcing, bottomDrag float64) ColumnManipulator {
	return func(c *Column) error {
		// Inertial rotation, exact for one step.
		if c.Coriolis != 0 {
			sinf, cosf := math.Sin(c.Coriolis*c.Dt), math.Cos(c.Coriolis*c.Dt)
			for k := 1; k <= c.Nz; k++ {
				u, v := c.U[k], c.V[k]
				c.U[k] = u*cosf + v*sinf
				c.V[k] = -u*sinf + v*cosf
			}
		}

		taux, tauy := forcing.SurfaceStress(c)
		lsour := make([]float64, c.Nz+1)
		speed := math.Sqrt(c.U[1]*c.U[1] + c.V[1]*c.V[1])
		lsour[1] = -bottomDrag * speed / c.H[1]

		if err := DiffuseCenter(c.Nz, c.Dt, cnpar, false, c.H,
			Neumann, Neumann, taux, 0, c.NuM, lsour, nil, nil, nil, c.U); err != nil {
			return fmt.Errorf("column: momentum u: %w", err)
		}
		if err := DiffuseCenter(c.Nz, c.Dt, cnpar, false, c.H,
			Neumann, Neumann, tauy, 0, c.NuM, lsour, nil, nil, nil, c.V); err != nil {
			return fmt.Errorf("column: momentum v: %w", err)
		}
		return nil
	}
}

// DiffuseHeat returns a function that advances the temperature profile by
// one semi-implicit vertical diffusion step with the surface heat flux as a
// Neumann boundary condition. If relaxTau is non-nil the profile is relaxed
// toward tempObs, for example to assimilate observed stratification.
func DiffuseHeat(cnpar float64, forcing Forcing, relaxTau, tempObs []float64) ColumnManipulator {
	return func(c *Column) error {
		flux := forcing.SurfaceHeatFlux(c)
		if err := DiffuseCenter(c.Nz, c.Dt, cnpar, false, c.H,
			Neumann, Neumann, flux, 0, c.NuH, nil, nil, relaxTau, tempObs, c.Temp); err != nil {
			return fmt.Errorf("column: heat: %w", err)
		}
		return nil
	}
}

// DiffuseSalt returns a function that advances the salinity profile by one
// semi-implicit vertical diffusion step with the surface salt flux as a
// Neumann boundary condition. Salinity cannot be driven negative by a
// surface freshwater flux because the step runs in positivity-preserving
// mode.
func DiffuseSalt(cnpar float64, forcing Forcing) ColumnManipulator {
	return func(c *Column) error {
		flux := forcing.SurfaceSaltFlux(c)
		if err := DiffuseCenter(c.Nz, c.Dt, cnpar, true, c.H,
			Neumann, Neumann, flux, 0, c.NuH, nil, nil, nil, nil, c.Salt); err != nil {
			return fmt.Errorf("column: salt: %w", err)
		}
		return nil
	}
}

// DiffuseTurbulence returns a function that transports the turbulence
// quantities (TKE and dissipation, located at the layer interfaces) by one
// semi-implicit diffusion step on the staggered grid. The closure supplies
// shear production and dissipation through the source profiles; here they
// enter as the caller-provided linear and constant sources. Boundary values
// follow the law of the wall from the surface friction velocity.
func DiffuseTurbulence(cnpar float64, forcing Forcing) ColumnManipulator {
	const (
		cmu0  = 0.5477 // stability coefficient of the k-epsilon closure
		kappa = 0.4    // von Karman constant
	)
	return func(c *Column) error {
		taux, tauy := forcing.SurfaceStress(c)
		ustar2 := math.Hypot(taux, tauy)

		tkeSurf := ustar2 / (cmu0 * cmu0)
		epsSurf := 0.
		if c.H[c.Nz] > 0 {
			z := 0.5 * c.H[c.Nz]
			epsSurf = math.Pow(ustar2, 1.5) / (kappa * z)
		}

		if err := DiffuseFace(c.Nz, c.Dt, cnpar, c.H,
			Dirichlet, Dirichlet, tkeSurf, tkeSurf, c.NuM, nil, nil, c.Tke); err != nil {
			return fmt.Errorf("column: tke: %w", err)
		}
		if err := DiffuseFace(c.Nz, c.Dt, cnpar, c.H,
			Dirichlet, Dirichlet, epsSurf, epsSurf, c.NuM, nil, nil, c.Eps); err != nil {
			return fmt.Errorf("column: dissipation: %w", err)
		}
		return nil
	}
}

// DiffuseTracers returns a function that vertically mixes every
// biogeochemical tracer with the eddy diffusivity profile, using zero-flux
// boundaries so that mixing conserves each tracer's depth integral.
func DiffuseTracers(cnpar float64) ColumnManipulator {
	return func(c *Column) error {
		if c.Conc == nil {
			return fmt.Errorf("column: DiffuseTracers: no mechanism attached")
		}
		numc, _ := concDims(c.Conc)
		y := make([]float64, c.Nz+1)
		for i := 0; i < numc; i++ {
			for k := 1; k <= c.Nz; k++ {
				y[k] = c.Conc.Get(i, k)
			}
			if err := DiffuseCenter(c.Nz, c.Dt, cnpar, true, c.H,
				Neumann, Neumann, 0, 0, c.NuH, nil, nil, nil, nil, y); err != nil {
				return fmt.Errorf("column: tracer %d: %w", i, err)
			}
			for k := 1; k <= c.Nz; k++ {
				c.Conc.Set(y[k], i, k)
			}
		}
		return nil
	}
}

// Reactions returns a function that advances the biogeochemical tracers by
// one reaction time step with the selected scheme. The mechanism must
// implement the evaluator convention the scheme requires (DerivativeEvaluator
// for the explicit and extended schemes, SourceSplitter for the Patankar and
// Modified Patankar families); Integrate reports a configuration error
// otherwise.
func Reactions(scheme Scheme, mech Mechanism) ColumnManipulator {
	deriv, _ := mech.(DerivativeEvaluator)
	split, _ := mech.(SourceSplitter)
	return func(c *Column) error {
		if c.Conc == nil {
			return fmt.Errorf("column: Reactions: no mechanism attached")
		}
		return Integrate(scheme, c.Dt, c.Conc, deriv, split)
	}
}
