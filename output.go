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
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"regexp"
	"sort"
	"strconv"

	"github.com/Knetic/govaluate"
)

// Outputter is a holder for output parameters.
//
// fileName contains the path where the output will be saved.
//
// If allLayers is true, output will contain data for all of the vertical
// layers, otherwise only the surface layer is returned.
//
// outputVariables maps the names of the variables for which data should be
// returned to expressions that define how the requested data should be
// calculated. These expressions can utilize variables built into the model
// and functions.
//
// modelVariables is automatically generated based on the model variables that
// are required to calculate the requested output variables.
type Outputter struct {
	fileName        string
	allLayers       bool
	outputVariables map[string]string
	modelVariables  []string
	outputFunctions map[string]govaluate.ExpressionFunction
}

// NewOutputter initializes a new Outputter holder and adds a set of default
// output functions. Default functions include:
//
// 'exp(x)' which applies the exponential function e^x.
//
// 'sqrt(x)' which applies the square root function.
//
// 'log10(x)' which applies the base-10 logarithm, for example for plotting
// dissipation profiles.
func NewOutputter(fileName string, allLayers bool, outputVariables map[string]string, outputFunctions map[string]govaluate.ExpressionFunction) (*Outputter, error) {
	defaultOutputFuncs := map[string]govaluate.ExpressionFunction{
		"exp": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 1 {
				return nil, fmt.Errorf("column: got %d arguments for function 'exp', but needs 1", len(arg))
			}
			return (float64)(math.Exp(arg[0].(float64))), nil
		},
		"sqrt": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 1 {
				return nil, fmt.Errorf("column: got %d arguments for function 'sqrt', but needs 1", len(arg))
			}
			return (float64)(math.Sqrt(arg[0].(float64))), nil
		},
		"log10": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 1 {
				return nil, fmt.Errorf("column: got %d arguments for function 'log10', but needs 1", len(arg))
			}
			return (float64)(math.Log10(arg[0].(float64))), nil
		},
	}

	for key, val := range outputFunctions {
		defaultOutputFuncs[key] = val
	}

	o := Outputter{
		fileName:        fileName,
		allLayers:       allLayers,
		outputVariables: outputVariables,
		outputFunctions: defaultOutputFuncs,
	}

	err := o.checkForDerivatives()
	return &o, err
}

// removeDuplicates removes all duplicated strings from a slice, returning a
// slice that contains only unique strings.
func removeDuplicates(s []string) []string {
	result := make([]string, 0, len(s))
	seen := make(map[string]string)
	for _, val := range s {
		if _, ok := seen[val]; !ok {
			result = append(result, val)
			seen[val] = val
		}
	}
	return result
}

// checkForDerivatives identifies the unique input variables that are required
// to calculate the requested output variables, replacing any user-defined
// output variable showing up in a subsequent expression by its corresponding
// expression.
func (o *Outputter) checkForDerivatives() error {
	o.modelVariables = make([]string, 0, len(o.outputVariables))
	for key, val := range o.outputVariables {
		expression, err := govaluate.NewEvaluableExpressionWithFunctions(val, o.outputFunctions)
		if err != nil {
			return fmt.Errorf("column o.outputVariables: %v", err)
		}
		uniqueVars := removeDuplicates(expression.Vars())
		for _, uniqueVar := range uniqueVars {
			if o.outputVariables[uniqueVar] != "" && o.outputVariables[uniqueVar] != uniqueVar {
				o.outputVariables[key] = regexp.MustCompile(`\b`+regexp.QuoteMeta(uniqueVar)+`\b`).
					ReplaceAllString(val, "("+o.outputVariables[uniqueVar]+")")
				return o.checkForDerivatives()
			}
		}
		o.modelVariables = append(o.modelVariables, uniqueVars...)
	}
	o.modelVariables = removeDuplicates(o.modelVariables)
	return nil
}

// OutputOptions returns the names and units of the variables that are
// available for output: the physical profile variables plus the species of
// the attached mechanism, if any.
func (c *Column) OutputOptions() (names []string, units []string) {
	names = []string{"z", "h", "u", "v", "temp", "salt", "tke", "eps", "num", "nuh"}
	units = []string{"m", "m", "m/s", "m/s", "°C", "g/kg", "m²/s²", "m²/s³", "m²/s", "m²/s"}
	if c.Mech != nil {
		species := append([]string{}, c.Mech.Species()...)
		sort.Strings(species)
		for _, s := range species {
			u, err := c.Mech.Units(s)
			if err != nil {
				continue
			}
			names = append(names, s)
			units = append(units, u)
		}
	}
	return names, units
}

// checkModelVars checks whether the unique input variables required to
// calculate the user-requested output variables are available in the model.
func (c *Column) checkModelVars(g ...string) error {
	names, _ := c.OutputOptions()
	mapOutputOps := make(map[string]uint8)
	for _, n := range names {
		mapOutputOps[n] = 0
	}
	for _, v := range g {
		if _, ok := mapOutputOps[v]; !ok {
			return fmt.Errorf("column: undefined variable name '%s'", v)
		}
	}
	return nil
}

// checkOutputNames checks if any output variable names include characters
// that are unsupported in column headers.
func checkOutputNames(o map[string]string) error {
	for key := range o {
		ok, err := regexp.MatchString(`^[A-Za-z]\w*$`, key)
		if err != nil {
			panic(err)
		}
		if !ok {
			return fmt.Errorf("column: output variable name '%s' includes unsupported characters", key)
		}
	}
	return nil
}

// CheckOutputVars ensures the output variables can be calculated.
func (o *Outputter) CheckOutputVars() ColumnManipulator {
	return func(c *Column) error {
		if err := c.checkModelVars(o.modelVariables...); err != nil {
			return err
		}
		return checkOutputNames(o.outputVariables)
	}
}

// layerParameters assembles the expression variables for layer k. The depth
// coordinate z is the layer-center height above the bottom.
func (c *Column) layerParameters(k int) map[string]interface{} {
	var z float64
	for j := 1; j < k; j++ {
		z += c.H[j]
	}
	z += 0.5 * c.H[k]
	p := map[string]interface{}{
		"z":    z,
		"h":    c.H[k],
		"u":    c.U[k],
		"v":    c.V[k],
		"temp": c.Temp[k],
		"salt": c.Salt[k],
		"tke":  c.Tke[k],
		"eps":  c.Eps[k],
		"num":  c.NuM[k],
		"nuh":  c.NuH[k],
	}
	if c.Mech != nil && c.Conc != nil {
		for i, s := range c.Mech.Species() {
			p[s] = c.Conc.Get(i, k)
		}
	}
	return p
}

// Results returns the simulation results in the requested layers, as a map
// from output variable name to a slice holding one value per layer, ordered
// from the bottom layer upward.
func (c *Column) Results(o *Outputter) (map[string][]float64, error) {
	first := c.Nz
	if o.allLayers {
		first = 1
	}
	results := make(map[string][]float64, len(o.outputVariables))
	for name, expr := range o.outputVariables {
		expression, err := govaluate.NewEvaluableExpressionWithFunctions(expr, o.outputFunctions)
		if err != nil {
			return nil, fmt.Errorf("column: output variable '%s': %v", name, err)
		}
		vals := make([]float64, 0, c.Nz-first+1)
		for k := first; k <= c.Nz; k++ {
			result, err := expression.Evaluate(c.layerParameters(k))
			if err != nil {
				return nil, fmt.Errorf("column: output variable '%s' layer %d: %v", name, k, err)
			}
			v, ok := result.(float64)
			if !ok {
				return nil, fmt.Errorf("column: output variable '%s' is not a number", name)
			}
			vals = append(vals, v)
		}
		results[name] = vals
	}
	return results, nil
}

// Output returns a function that evaluates the output variables and writes
// them to the output file as CSV, one row per layer from the bottom upward.
func (o *Outputter) Output() ColumnManipulator {
	return func(c *Column) error {
		results, err := c.Results(o)
		if err != nil {
			return err
		}

		vars := make([]string, 0, len(results))
		for v := range results {
			vars = append(vars, v)
		}
		sort.Strings(vars)

		f, err := os.Create(o.fileName)
		if err != nil {
			return fmt.Errorf("column: creating output file: %v", err)
		}
		defer f.Close()
		w := csv.NewWriter(f)
		if err := w.Write(append([]string{"layer"}, vars...)); err != nil {
			return fmt.Errorf("column: writing output file: %v", err)
		}
		first := c.Nz
		if o.allLayers {
			first = 1
		}
		for k := first; k <= c.Nz; k++ {
			row := make([]string, 0, len(vars)+1)
			row = append(row, strconv.Itoa(k))
			for _, v := range vars {
				row = append(row, strconv.FormatFloat(results[v][k-first], 'g', -1, 64))
			}
			if err := w.Write(row); err != nil {
				return fmt.Errorf("column: writing output file: %v", err)
			}
		}
		w.Flush()
		return w.Error()
	}
}
