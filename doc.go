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

// Package column implements a one-dimensional water-column turbulence and
// biogeochemistry simulator. It advances mean-flow state (horizontal
// velocities, temperature, salinity) and turbulence transport quantities on a
// vertically staggered grid using implicit or semi-implicit vertical
// diffusion, and advances biogeochemical tracer concentrations with a family
// of positivity-preserving and mass-conserving reaction integrators.
//
// The model is organized as pipelines of manipulator functions that are run
// on a Column holder of the simulation state. Physical parameterisations
// (air-sea fluxes, turbulence closures, equations of state) are external
// collaborators: they supply diffusivity profiles, source terms, and boundary
// values, and receive updated state profiles back.
package column
