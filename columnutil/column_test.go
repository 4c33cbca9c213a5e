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
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/oceanmodel/column"
)

// A short wind-driven simulation must run to completion and write finite,
// positive profiles.
func TestRun(t *testing.T) {
	dir := t.TempDir()
	outputFile := filepath.Join(dir, "profiles.csv")
	logFile := filepath.Join(dir, "profiles.log")

	err := Run(logFile, outputFile, true,
		map[string]string{
			"temp": "temp",
			"salt": "salt",
			"nut":  "nut",
			"phy":  "phy",
		},
		column.ConstantForcing{TauX: 1.e-4, HeatFlux: 1.e-5},
		RunConfig{
			Depth:           20.,
			Nz:              10,
			Dt:              60.,
			NumIterations:   20,
			Cnpar:           1.,
			Coriolis:        1.e-4,
			EddyViscosity:   1.e-2,
			EddyDiffusivity: 1.e-2,
			BottomDrag:      2.5e-3,
			ReactionScheme:  column.ModifiedPatankar,
			InitialTemp:     15.,
			InitialSalt:     35.,
			InitialConc:     1.,
		})
	if err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(outputFile)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 11 { // header plus one row per layer
		t.Fatalf("got %d rows, want 11", len(rows))
	}
	cols := make(map[string]int)
	for i, name := range rows[0] {
		cols[name] = i
	}
	for _, row := range rows[1:] {
		for _, name := range []string{"temp", "salt", "nut", "phy"} {
			v, err := strconv.ParseFloat(row[cols[name]], 64)
			if err != nil {
				t.Fatal(err)
			}
			if v <= 0 {
				t.Errorf("%s = %g is not positive", name, v)
			}
		}
	}

	if _, err := os.Stat(logFile); err != nil {
		t.Errorf("log file was not written: %v", err)
	}
}

func TestRunInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	err := Run(filepath.Join(dir, "x.log"), filepath.Join(dir, "x.csv"), true,
		map[string]string{"temp": "temp"},
		column.ConstantForcing{}, RunConfig{Nz: 0, Dt: 60.})
	if err == nil {
		t.Error("expected an error for zero layers")
	}
}

func TestSchemesCommand(t *testing.T) {
	out := new(bytes.Buffer)
	schemesCmd.SetOutput(out)
	schemesCmd.Run(schemesCmd, nil)
	s := out.String()
	if s == "" {
		t.Fatal("schemes command printed nothing")
	}
	for _, want := range []string{"Euler", "ModifiedPatankar", "ExtendedModifiedPatankarRK"} {
		if !strings.Contains(s, want) {
			t.Errorf("scheme %s missing from listing:\n%s", want, s)
		}
	}
}
