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

package columnutil

import (
	"fmt"
	"os"

	"github.com/oceanmodel/column"
	"github.com/oceanmodel/column/science/bgc/npzd"
	"github.com/sirupsen/logrus"
)

// RunConfig holds the physical and numerical parameters of a simulation.
type RunConfig struct {
	Depth           float64       // water-column depth [m]
	Nz              int           // number of vertical layers
	Dt              float64       // time step [s]
	NumIterations   int           // iterations to run; < 1 checks convergence
	Cnpar           float64       // diffusion implicitness parameter
	Coriolis        float64       // Coriolis parameter [1/s]
	EddyViscosity   float64       // constant turbulent viscosity [m²/s]
	EddyDiffusivity float64       // constant turbulent diffusivity [m²/s]
	BottomDrag      float64       // quadratic bottom drag coefficient
	ReactionScheme  column.Scheme // reaction integration scheme
	InitialTemp     float64       // initial temperature [°C]
	InitialSalt     float64       // initial salinity [g/kg]
	InitialConc     float64       // initial tracer concentrations [mmol N/m³]
}

// Run simulates a water column with the NPZD biogeochemistry mechanism and
// the given surface forcing, writing the simulated profiles to outputFile
// and the simulation log to logFile when the simulation finishes.
func Run(logFile, outputFile string, outputAllLayers bool, outputVars map[string]string, forcing column.Forcing, cfg RunConfig) error {
	if cfg.Nz < 1 {
		return fmt.Errorf("column: Nz must be at least 1 but is %d", cfg.Nz)
	}
	if cfg.Dt <= 0 {
		return fmt.Errorf("column: Dt must be positive but is %g", cfg.Dt)
	}

	logger := logrus.New()
	lf, err := os.Create(logFile)
	if err != nil {
		return fmt.Errorf("column: problem creating log file: %v", err)
	}
	defer lf.Close()
	logger.Out = lf

	o, err := column.NewOutputter(outputFile, outputAllLayers, outputVars, nil)
	if err != nil {
		return err
	}

	c := column.NewColumn(cfg.Depth, cfg.Nz, cfg.Dt)
	c.Log = logger
	c.Coriolis = cfg.Coriolis
	for k := 1; k <= cfg.Nz; k++ {
		c.Temp[k] = cfg.InitialTemp
		c.Salt[k] = cfg.InitialSalt
	}
	mech := npzd.New()
	c.AttachMechanism(mech, cfg.InitialConc)

	c.InitFuncs = []column.ColumnManipulator{
		column.CheckGrid(),
		column.ConstantDiffusivity(cfg.EddyViscosity, cfg.EddyDiffusivity),
		o.CheckOutputVars(),
	}
	c.RunFuncs = []column.ColumnManipulator{
		column.Log(),
		column.DiffuseMomentum(cfg.Cnpar, forcing, cfg.BottomDrag),
		column.DiffuseHeat(cfg.Cnpar, forcing, nil, nil),
		column.DiffuseSalt(cfg.Cnpar, forcing),
		column.DiffuseTurbulence(cfg.Cnpar, forcing),
		column.DiffuseTracers(cfg.Cnpar),
		column.Reactions(cfg.ReactionScheme, mech),
		column.SteadyStateConvergenceCheck(cfg.NumIterations, 1.e-10),
	}

	if err := c.Init(); err != nil {
		return fmt.Errorf("column: problem initializing simulation: %v", err)
	}
	if err := c.Run(); err != nil {
		return fmt.Errorf("column: problem running simulation: %v", err)
	}
	return o.Output()(c)
}
