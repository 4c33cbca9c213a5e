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

// Mechanism is an interface for biogeochemical reaction mechanisms.
// A mechanism additionally implements DerivativeEvaluator, SourceSplitter,
// or both, depending on which reaction integrators it supports; Reactions
// checks the required capability when the pipeline is assembled.
type Mechanism interface {
	// Len returns the number of tracer species in the mechanism.
	Len() int

	// Species returns the names of the tracer species, in
	// concentration-array index order.
	Species() []string

	// Units returns the units of the given species' concentration, or an
	// error if the name is invalid.
	Units(species string) (string, error)
}
