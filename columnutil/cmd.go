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

// Package columnutil holds the command-line interface and configuration
// handling for the column model.
package columnutil

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/lnashier/viper"
	"github.com/oceanmodel/column"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to the column model.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Depth",
			usage: `
              Depth specifies the water-column depth in meters.`,
			defaultVal: 50.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Nz",
			usage: `
              Nz specifies the number of vertical layers.`,
			defaultVal: 50,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Dt",
			usage: `
              Dt specifies the simulation time step in seconds.`,
			defaultVal: 60.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "NumIterations",
			usage: `
              NumIterations specifies the number of iterations to calculate.
              If < 1, convergence of the depth-integrated temperature and
              salinity is checked instead.`,
			defaultVal: 1440,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Cnpar",
			usage: `
              Cnpar specifies the implicitness of the vertical diffusion:
              0.5 gives Crank-Nicolson, 1 gives the fully implicit scheme.`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Coriolis",
			usage: `
              Coriolis specifies the Coriolis parameter in 1/s.`,
			defaultVal: 1.0e-4,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "EddyViscosity",
			usage: `
              EddyViscosity specifies the constant turbulent viscosity in
              m²/s used when no turbulence closure is run.`,
			defaultVal: 1.0e-2,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "EddyDiffusivity",
			usage: `
              EddyDiffusivity specifies the constant turbulent diffusivity
              in m²/s used when no turbulence closure is run.`,
			defaultVal: 1.0e-2,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "BottomDrag",
			usage: `
              BottomDrag specifies the dimensionless quadratic bottom drag
              coefficient.`,
			defaultVal: 2.5e-3,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "ReactionScheme",
			usage: `
              ReactionScheme specifies the numerical scheme for the
              biogeochemical reaction terms. Use the 'schemes' command to
              list the available schemes.`,
			defaultVal: int(column.ModifiedPatankar),
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "InitialTemp",
			usage: `
              InitialTemp specifies the initial temperature in °C,
              uniform over depth.`,
			defaultVal: 15.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "InitialSalt",
			usage: `
              InitialSalt specifies the initial salinity in g/kg,
              uniform over depth.`,
			defaultVal: 35.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "InitialConc",
			usage: `
              InitialConc specifies the initial concentration of every
              biogeochemical tracer in mmol N/m³, uniform over depth.`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "ScenarioFile",
			usage: `
              ScenarioFile specifies the path to a TOML file holding the
              surface forcing scenario. If empty, the Forcing.* options
              are used directly.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Forcing.TauX",
			usage: `
              Forcing.TauX specifies the kinematic surface momentum flux
              in the x direction in m²/s².`,
			defaultVal: 1.0e-4,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Forcing.TauY",
			usage: `
              Forcing.TauY specifies the kinematic surface momentum flux
              in the y direction in m²/s².`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Forcing.HeatFlux",
			usage: `
              Forcing.HeatFlux specifies the kinematic surface heat flux
              in K·m/s; positive values warm the column.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Forcing.SaltFlux",
			usage: `
              Forcing.SaltFlux specifies the kinematic surface salinity
              flux in g/kg·m/s.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile specifies the path to the CSV file where the
              simulated profiles will be written.`,
			defaultVal: "profiles.csv",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputAllLayers",
			usage: `
              OutputAllLayers specifies whether to output data for all
              vertical layers. Otherwise, only the surface layer will be
              output.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputVariables",
			usage: `
              OutputVariables specifies which variables should be output.
              Each output variable is defined by the variable name and an
              expression that can be used to calculate it.`,
			defaultVal: map[string]string{
				"z":    "z",
				"temp": "temp",
				"salt": "salt",
				"u":    "u",
				"v":    "v",
			},
			flagsets: []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile specifies the path to the simulation log file. If
              not specified, the logs will be written next to the output
              file.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("COLUMN")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				s := string(b.Bytes())
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(schemesCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("column: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "column",
	Short: "A one-dimensional water-column model.",
	Long: `Column simulates the vertical structure of the ocean: turbulent mixing of
momentum, heat, and salt, and a biogeochemical reaction mechanism advanced
with positivity-preserving integrators.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'COLUMN_var' where 'var' is
the name of the variable to be set.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of Column.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("Column v%s\n", column.Version)
	},
	DisableAutoGenTag: true,
}

var schemesCmd = &cobra.Command{
	Use:   "schemes",
	Short: "List the available reaction schemes",
	Long: `schemes lists the numerical schemes that are available for the
biogeochemical reaction terms, with the numbers that select them through the
ReactionScheme configuration variable.`,
	Run: func(cmd *cobra.Command, args []string) {
		for _, s := range column.Schemes() {
			cmd.Printf("%2d  %s\n", int(s), s)
		}
	},
	DisableAutoGenTag: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the model.",
	Long: `run simulates the water column with the configured forcing until the
configured number of iterations is reached, or, if NumIterations < 1, until
the temperature and salinity profiles stop changing. The simulated profiles
are then written to OutputFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		outputVars, err := checkOutputVars(GetStringMapString("OutputVariables", Cfg))
		if err != nil {
			return err
		}
		forcing, err := scenarioForcing(Cfg)
		if err != nil {
			return err
		}
		return Run(
			checkLogFile(Cfg.GetString("LogFile"), outputFile),
			outputFile,
			Cfg.GetBool("OutputAllLayers"),
			outputVars,
			forcing,
			RunConfig{
				Depth:           Cfg.GetFloat64("Depth"),
				Nz:              Cfg.GetInt("Nz"),
				Dt:              Cfg.GetFloat64("Dt"),
				NumIterations:   Cfg.GetInt("NumIterations"),
				Cnpar:           Cfg.GetFloat64("Cnpar"),
				Coriolis:        Cfg.GetFloat64("Coriolis"),
				EddyViscosity:   Cfg.GetFloat64("EddyViscosity"),
				EddyDiffusivity: Cfg.GetFloat64("EddyDiffusivity"),
				BottomDrag:      Cfg.GetFloat64("BottomDrag"),
				ReactionScheme:  column.Scheme(Cfg.GetInt("ReactionScheme")),
				InitialTemp:     Cfg.GetFloat64("InitialTemp"),
				InitialSalt:     Cfg.GetFloat64("InitialSalt"),
				InitialConc:     Cfg.GetFloat64("InitialConc"),
			})
	},
	DisableAutoGenTag: true,
}
