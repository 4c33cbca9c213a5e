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
	"os"
	"path/filepath"
	"testing"

	"github.com/lnashier/viper"
)

func TestReadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.toml")
	contents := `
TauX = 1.5e-4
TauY = -2.0e-5
HeatFlux = 1.0e-5
SaltFlux = 0.0
`
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	s, err := ReadScenario(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.TauX != 1.5e-4 || s.TauY != -2.0e-5 || s.HeatFlux != 1.0e-5 || s.SaltFlux != 0 {
		t.Errorf("scenario %+v", s)
	}
}

func TestReadScenarioMissing(t *testing.T) {
	if _, err := ReadScenario(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected an error for a missing scenario file")
	}
}

func TestScenarioForcing(t *testing.T) {
	cfg := viper.New()
	cfg.Set("ScenarioFile", "")
	cfg.Set("Forcing.TauX", 2.5e-4)
	cfg.Set("Forcing.TauY", 0.0)
	cfg.Set("Forcing.HeatFlux", -1.0e-5)
	cfg.Set("Forcing.SaltFlux", 0.0)
	f, err := scenarioForcing(cfg)
	if err != nil {
		t.Fatal(err)
	}
	taux, tauy := f.SurfaceStress(nil)
	if taux != 2.5e-4 || tauy != 0 {
		t.Errorf("stress (%g, %g)", taux, tauy)
	}
	if f.SurfaceHeatFlux(nil) != -1.0e-5 {
		t.Errorf("heat flux %g", f.SurfaceHeatFlux(nil))
	}
}

func TestCheckOutputFile(t *testing.T) {
	if _, err := checkOutputFile(""); err == nil {
		t.Error("expected an error for an empty output file")
	}
	if _, err := checkOutputFile(filepath.Join(t.TempDir(), "no", "such", "dir", "out.csv")); err == nil {
		t.Error("expected an error for a missing output directory")
	}
	path := filepath.Join(t.TempDir(), "out.csv")
	got, err := checkOutputFile(path)
	if err != nil {
		t.Error(err)
	}
	if got != path {
		t.Errorf("%s != %s", got, path)
	}
}

func TestCheckLogFile(t *testing.T) {
	if got := checkLogFile("", "/tmp/out.csv"); got != "/tmp/out.log" {
		t.Errorf("default log file %s", got)
	}
	if got := checkLogFile("/var/log/column.log", "/tmp/out.csv"); got != "/var/log/column.log" {
		t.Errorf("explicit log file %s", got)
	}
}

func TestCheckOutputVars(t *testing.T) {
	if _, err := checkOutputVars(map[string]string{}); err == nil {
		t.Error("expected an error for no output variables")
	}
	vars, err := checkOutputVars(map[string]string{"a": "temp +\nsalt"})
	if err != nil {
		t.Fatal(err)
	}
	if vars["a"] != "temp + salt" {
		t.Errorf("newline not removed: %q", vars["a"])
	}
}

func TestGetStringMapString(t *testing.T) {
	cfg := viper.New()
	cfg.Set("FromMap", map[string]interface{}{"a": "1"})
	if got := GetStringMapString("FromMap", cfg); got["a"] != "1" {
		t.Errorf("map form: %v", got)
	}
	cfg.Set("FromJSON", `{"b": "temp * 2"}`)
	if got := GetStringMapString("FromJSON", cfg); got["b"] != "temp * 2" {
		t.Errorf("json form: %v", got)
	}
}
