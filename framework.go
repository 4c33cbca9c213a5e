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
	"runtime"
	"sync"
	"time"

	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// Version gives the version number.
const Version = "1.2.0"

// Column holds the state of one simulated water column. Profile slices are
// indexed 1..Nz from the bottom layer to the surface layer, with index 0
// reserved for boundary bookkeeping; they are the only state with a lifetime
// spanning the whole simulation. Everything else (coefficient buffers,
// production/destruction arrays) is allocated fresh per call, so columns can
// be advanced concurrently as long as each has its own buffers.
type Column struct {
	Nz    int       // number of vertical layers
	Depth float64   // water-column depth [m]
	H     []float64 // layer thicknesses [m]; sums to Depth

	U, V  []float64 // horizontal velocities [m/s]
	Temp  []float64 // potential temperature [°C]
	Salt  []float64 // salinity [g/kg]
	Tke   []float64 // turbulent kinetic energy at interfaces [m²/s²]
	Eps   []float64 // dissipation rate at interfaces [m²/s³]
	NuM   []float64 // eddy viscosity at interfaces [m²/s]
	NuH   []float64 // eddy diffusivity at interfaces [m²/s]

	Coriolis float64 // Coriolis parameter [1/s]

	// Conc holds the biogeochemical tracer concentrations with shape
	// (Mech.Len(), Nz+1); nil when no mechanism is attached.
	Conc *sparse.DenseArray
	Mech Mechanism

	Dt   float64 // time step [s]
	Done bool    // Done specifies whether the simulation is finished.

	// InitFuncs are run in order at the beginning of the simulation.
	InitFuncs []ColumnManipulator
	// RunFuncs are run in order during every time step of the simulation.
	RunFuncs []ColumnManipulator

	// Log receives simulation status and diagnostic messages.
	Log logrus.FieldLogger
}

// ColumnManipulator is a function that operates on the whole column, for
// example by setting up the grid or advancing a transport equation.
type ColumnManipulator func(c *Column) error

// LayerManipulator is a function that updates a single layer k. Layer
// updates must be independent of each other so that Calculations can run
// them concurrently.
type LayerManipulator func(c *Column, k int, Δt float64)

// NewColumn creates a column of the given depth with nz equally thick
// layers and time step dt.
func NewColumn(depth float64, nz int, dt float64) *Column {
	c := &Column{
		Nz:    nz,
		Depth: depth,
		Dt:    dt,
		H:     make([]float64, nz+1),
		U:     make([]float64, nz+1),
		V:     make([]float64, nz+1),
		Temp:  make([]float64, nz+1),
		Salt:  make([]float64, nz+1),
		Tke:   make([]float64, nz+1),
		Eps:   make([]float64, nz+1),
		NuM:   make([]float64, nz+1),
		NuH:   make([]float64, nz+1),
		Log:   logrus.StandardLogger(),
	}
	for i := 1; i <= nz; i++ {
		c.H[i] = depth / float64(nz)
	}
	return c
}

// AttachMechanism associates a reaction mechanism with the column and
// allocates the concentration array, initializing every species in every
// layer to the given value.
func (c *Column) AttachMechanism(m Mechanism, initial float64) {
	c.Mech = m
	c.Conc = sparse.ZerosDense(m.Len(), c.Nz+1)
	for i := 0; i < m.Len(); i++ {
		for k := 1; k <= c.Nz; k++ {
			c.Conc.Set(initial, i, k)
		}
	}
}

// Init initializes the simulation by running the InitFuncs.
func (c *Column) Init() error {
	for _, f := range c.InitFuncs {
		if err := f(c); err != nil {
			return err
		}
	}
	return nil
}

// Run repeatedly executes the RunFuncs until c.Done is true.
func (c *Column) Run() error {
	for !c.Done {
		for _, f := range c.RunFuncs {
			if err := f(c); err != nil {
				return err
			}
		}
	}
	return nil
}

// Calculations returns a function that concurrently runs a series of
// layer-local calculations on all of the column's layers, striping the
// layers across GOMAXPROCS goroutines. The diffusion solves are not layer
// local (the tridiagonal coupling is sequential within the column) and are
// run as whole-column manipulators instead.
func Calculations(calculators ...LayerManipulator) ColumnManipulator {
	nprocs := runtime.GOMAXPROCS(0)
	return func(c *Column) error {
		var wg sync.WaitGroup
		wg.Add(nprocs)
		for pp := 0; pp < nprocs; pp++ {
			go func(pp int) {
				for k := pp + 1; k <= c.Nz; k += nprocs {
					for _, f := range calculators {
						f(c, k, c.Dt)
					}
				}
				wg.Done()
			}(pp)
		}
		wg.Wait()
		return nil
	}
}

// FixedIterations returns a function that finishes the simulation after n
// time steps.
func FixedIterations(n int) ColumnManipulator {
	iteration := 0
	return func(c *Column) error {
		iteration++
		if iteration >= n {
			c.Done = true
		}
		return nil
	}
}

// SteadyStateConvergenceCheck checks whether the simulation has reached a
// steady state and sets the Done flag if it has. If numIterations > 0 the
// simulation finishes after that number of iterations; otherwise it finishes
// when the relative change of the depth-integrated temperature and salinity
// since the last check falls below tolerance.
func SteadyStateConvergenceCheck(numIterations int, tolerance float64) ColumnManipulator {
	var oldHeat, oldSalt float64
	iteration := 0
	return func(c *Column) error {
		iteration++
		if numIterations > 0 {
			if iteration >= numIterations {
				c.Done = true
			}
			return nil
		}
		heat := depthIntegral(c.H, c.Temp)
		salt := depthIntegral(c.H, c.Salt)
		if converged(heat, oldHeat, tolerance) && converged(salt, oldSalt, tolerance) {
			c.Done = true
		}
		oldHeat, oldSalt = heat, salt
		return nil
	}
}

func converged(newSum, oldSum, tolerance float64) bool {
	if oldSum == 0 {
		return newSum == 0
	}
	bias := (newSum - oldSum) / oldSum
	return math.Abs(bias) <= tolerance && !math.IsInf(bias, 0)
}

// Log returns a function that writes simulation status messages once per
// time step.
func Log() ColumnManipulator {
	startTime := time.Now()
	timeStepTime := time.Now()
	iteration := 0
	secondsRun := 0.
	return func(c *Column) error {
		iteration++
		secondsRun += c.Dt
		c.Log.WithFields(logrus.Fields{
			"iteration": iteration,
			"walltime":  time.Since(startTime).Seconds(),
			"Δwalltime": time.Since(timeStepTime).Seconds(),
			"timestep":  c.Dt,
			"simulated": secondsRun,
		}).Info("column: time step")
		timeStepTime = time.Now()
		return nil
	}
}

// CheckGrid validates the vertical grid: every layer thickness must be
// strictly positive and the thicknesses must sum to the column depth.
func CheckGrid() ColumnManipulator {
	const tolerance = 1.e-10
	return func(c *Column) error {
		var sum float64
		for k := 1; k <= c.Nz; k++ {
			if c.H[k] <= 0 {
				return fmt.Errorf("column: layer %d thickness %g is not positive", k, c.H[k])
			}
			sum += c.H[k]
		}
		if c.Depth != 0 && math.Abs(sum-c.Depth)/c.Depth > tolerance {
			return fmt.Errorf("column: layer thicknesses sum to %g but depth is %g", sum, c.Depth)
		}
		return nil
	}
}

// depthIntegral integrates a layer-centered profile over the column.
func depthIntegral(h, y []float64) float64 {
	return floats.Dot(h[1:], y[1:])
}
