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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/lnashier/viper"
	"github.com/oceanmodel/column"
	"github.com/spf13/cast"
)

// checkOutputVars removes end lines and expands environment
// variables in the output variables.
func checkOutputVars(vars map[string]string) (map[string]string, error) {
	if len(vars) == 0 {
		return nil, fmt.Errorf("there are no variables specified for output. Please fill in " +
			"the OutputVariables configuration and try again.")
	}
	for k, v := range vars {
		v = strings.Replace(v, "\r\n", " ", -1)
		v = strings.Replace(v, "\n", " ", -1)
		vars[os.ExpandEnv(k)] = os.ExpandEnv(v)
	}
	return vars, nil
}

// checkOutputFile makes sure that the output file is specified and its
// directory exists, and expands any environment variables.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`you need to specify an output file configuration variable (for example: OutputFile="profiles.csv")`)
	}
	f = os.ExpandEnv(f)
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("column: the OutputFile directory doesn't exist: %v", err)
	}
	return f, nil
}

// checkLogFile fills in a default value for the log file path if one isn't
// specified.
func checkLogFile(logFile, outputFile string) string {
	if logFile == "" {
		logFile = strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".log"
	}
	return os.ExpandEnv(logFile)
}

// GetStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument.
func GetStringMapString(varName string, cfg *viper.Viper) map[string]string {
	i := cfg.Get(varName)
	switch i.(type) {
	case map[string]string:
		return i.(map[string]string)
	case map[string]interface{}:
		return cast.ToStringMapString(i)
	case string:
		b := bytes.NewBuffer(([]byte)(i.(string)))
		d := json.NewDecoder(b)
		o := make(map[string]string)
		if err := d.Decode(&o); err != nil {
			panic(err)
		}
		return o
	default:
		panic(fmt.Errorf("invalid type for GetStringMapString variable %s: %#v", varName, i))
	}
}

// Scenario holds a surface forcing scenario read from a TOML file.
type Scenario struct {
	// TauX and TauY are the kinematic surface momentum fluxes [m²/s²].
	TauX, TauY float64
	// HeatFlux is the kinematic surface heat flux [K·m/s].
	HeatFlux float64
	// SaltFlux is the kinematic surface salinity flux [g/kg·m/s].
	SaltFlux float64
}

// ReadScenario reads a surface forcing scenario from the TOML file at path.
func ReadScenario(path string) (*Scenario, error) {
	f, err := os.Open(os.ExpandEnv(path))
	if err != nil {
		return nil, fmt.Errorf("column: problem opening scenario file: %v", err)
	}
	defer f.Close()
	s := new(Scenario)
	if _, err := toml.DecodeReader(f, s); err != nil {
		return nil, fmt.Errorf("column: problem reading scenario file: %v", err)
	}
	return s, nil
}

// scenarioForcing builds the surface forcing from the configuration: from
// the scenario file if one is specified, and from the Forcing.* variables
// otherwise.
func scenarioForcing(cfg *viper.Viper) (column.Forcing, error) {
	if path := cfg.GetString("ScenarioFile"); path != "" {
		s, err := ReadScenario(path)
		if err != nil {
			return nil, err
		}
		return column.ConstantForcing{
			TauX:     s.TauX,
			TauY:     s.TauY,
			HeatFlux: s.HeatFlux,
			SaltFlux: s.SaltFlux,
		}, nil
	}
	return column.ConstantForcing{
		TauX:     cfg.GetFloat64("Forcing.TauX"),
		TauY:     cfg.GetFloat64("Forcing.TauY"),
		HeatFlux: cfg.GetFloat64("Forcing.HeatFlux"),
		SaltFlux: cfg.GetFloat64("Forcing.SaltFlux"),
	}, nil
}
