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
	"os"
	"path/filepath"
	"testing"
)

func testColumn() *Column {
	c := NewColumn(10., 5, 1.)
	for k := 1; k <= c.Nz; k++ {
		c.Temp[k] = 10. + float64(k)
		c.U[k] = 3.
		c.V[k] = 4.
	}
	return c
}

// Output variables are arbitrary expressions over the model variables,
// evaluated per layer.
func TestOutputterResults(t *testing.T) {
	const testTolerance = 1.e-12
	c := testColumn()
	o, err := NewOutputter("out.csv", true, map[string]string{
		"temp2": "temp * 2",
		"speed": "sqrt(u * u + v * v)",
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := o.CheckOutputVars()(c); err != nil {
		t.Fatal(err)
	}
	results, err := c.Results(o)
	if err != nil {
		t.Fatal(err)
	}
	if len(results["temp2"]) != c.Nz {
		t.Fatalf("got %d layers, want %d", len(results["temp2"]), c.Nz)
	}
	for k := 1; k <= c.Nz; k++ {
		if different(results["temp2"][k-1], 2.*(10.+float64(k)), testTolerance) {
			t.Errorf("temp2 layer %d: %g", k, results["temp2"][k-1])
		}
		if different(results["speed"][k-1], 5., testTolerance) {
			t.Errorf("speed layer %d: %g != 5", k, results["speed"][k-1])
		}
	}
}

// An output variable can be defined in terms of another output variable;
// the definition is substituted before evaluation.
func TestOutputterDerivedVariables(t *testing.T) {
	const testTolerance = 1.e-12
	c := testColumn()
	o, err := NewOutputter("out.csv", false, map[string]string{
		"warm":  "temp + 1",
		"warm2": "warm * 2",
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := o.CheckOutputVars()(c); err != nil {
		t.Fatal(err)
	}
	results, err := c.Results(o)
	if err != nil {
		t.Fatal(err)
	}
	// Surface layer only.
	if len(results["warm2"]) != 1 {
		t.Fatalf("got %d layers, want 1", len(results["warm2"]))
	}
	want := 2. * (10. + float64(c.Nz) + 1.)
	if different(results["warm2"][0], want, testTolerance) {
		t.Errorf("warm2: %g != %g", results["warm2"][0], want)
	}
}

func TestOutputterUndefinedVariable(t *testing.T) {
	c := testColumn()
	o, err := NewOutputter("out.csv", true, map[string]string{
		"bad": "notAVariable * 2",
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := o.CheckOutputVars()(c); err == nil {
		t.Error("expected an error for an undefined model variable")
	}
}

func TestOutputterInvalidName(t *testing.T) {
	c := testColumn()
	o, err := NewOutputter("out.csv", true, map[string]string{
		"bad name!": "temp",
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := o.CheckOutputVars()(c); err == nil {
		t.Error("expected an error for an unsupported variable name")
	}
}

// Mechanism species are available as output variables alongside the
// physical profiles.
func TestOutputOptions(t *testing.T) {
	c := testColumn()
	c.AttachMechanism(testMechanism{exchangeMech{rate: 0.5}}, 1.)
	names, units := c.OutputOptions()
	if len(names) != len(units) {
		t.Fatalf("%d names but %d units", len(names), len(units))
	}
	found := make(map[string]bool)
	for _, n := range names {
		found[n] = true
	}
	for _, want := range []string{"temp", "salt", "tke", "a", "b"} {
		if !found[want] {
			t.Errorf("variable %s missing from output options", want)
		}
	}
}

// Output writes one CSV row per layer, bottom first, with a header row of
// sorted variable names.
func TestOutputCSV(t *testing.T) {
	c := testColumn()
	file := filepath.Join(t.TempDir(), "profiles.csv")
	o, err := NewOutputter(file, true, map[string]string{
		"temp": "temp",
		"z":    "z",
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := o.Output()(c); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(file)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != c.Nz+1 {
		t.Fatalf("got %d rows, want %d", len(rows), c.Nz+1)
	}
	header := rows[0]
	if header[0] != "layer" || header[1] != "temp" || header[2] != "z" {
		t.Errorf("header %v", header)
	}
	if rows[1][0] != "1" || rows[1][1] != "11" {
		t.Errorf("first data row %v", rows[1])
	}
	if rows[c.Nz][0] != "5" || rows[c.Nz][1] != "15" {
		t.Errorf("last data row %v", rows[c.Nz])
	}
}
