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

import "errors"

// ErrSingularSystem indicates a zero or near-zero pivot in one of the
// no-pivoting linear solves. The diffusion and reaction assemblies guarantee
// diagonal dominance for positive diffusivities and non-negative destruction
// terms, so this error means the caller violated a precondition (for example
// by supplying a negative diffusivity or a non-positive concentration), not
// that the solver failed. Callers that want to recover, for example by
// reducing the time step, can test for this error with errors.Is.
var ErrSingularSystem = errors.New("singular linear system")

// ErrNonpositive indicates that a reaction integrator that requires strictly
// positive concentrations encountered a zero or negative concentration paired
// with a destruction term. As with ErrSingularSystem, recovery policy belongs
// to the caller; no retries happen inside the integrators.
var ErrNonpositive = errors.New("nonpositive concentration")
