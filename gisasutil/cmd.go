/*
Copyright © 2026 the GISAS authors.
This file is part of GISAS.

GISAS is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

GISAS is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with GISAS.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package gisasutil contains the command-line interface of the GISAS
// simulation engine.
package gisasutil

import (
	"fmt"
	"strings"

	"github.com/spatialmodel/gisas"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	simFlags := []*pflag.FlagSet{gisasCmd.Flags(), specularCmd.Flags()}

	// Options are the configuration options available to GISAS.
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
			name: "SampleFile",
			usage: `
              SampleFile is the path to the TOML description of the sample.`,
			shorthand:  "s",
			defaultVal: "",
			flagsets:   simFlags,
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path where the simulated intensities are
              written. The extension selects the format: .xlsx or .csv.`,
			shorthand:  "o",
			defaultVal: "gisas.xlsx",
			flagsets:   simFlags,
		},
		{
			name: "PlotFile",
			usage: `
              PlotFile is the path of an optional PNG plot of the result:
              a logarithmic heat map for area detectors and a reflectivity
              curve for specular scans.`,
			defaultVal: "",
			flagsets:   simFlags,
		},
		{
			name: "open",
			usage: `
              open specifies whether to open the plot, or the output file if
              there is no plot, with the default application when the run
              is finished.`,
			defaultVal: false,
			flagsets:   simFlags,
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path to the desired logfile location. If it is
              not set, the log is written next to OutputFile.`,
			defaultVal: "",
			flagsets:   simFlags,
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel is the logging verbosity: debug, info, warn or error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Beam.Wavelength",
			usage: `
              Beam.Wavelength is the wavelength of the incoming beam [nm].`,
			defaultVal: 0.1,
			flagsets:   simFlags,
		},
		{
			name: "Beam.AlphaI",
			usage: `
              Beam.AlphaI is the grazing angle of the incoming beam [deg].
              Specular scans replace it with the scan angles.`,
			defaultVal: 0.2,
			flagsets:   simFlags,
		},
		{
			name: "Beam.PhiI",
			usage: `
              Beam.PhiI is the azimuthal angle of the incoming beam [deg].`,
			defaultVal: 0.0,
			flagsets:   simFlags,
		},
		{
			name: "Beam.Intensity",
			usage: `
              Beam.Intensity is the beam intensity. The results are not
              normalized when it is zero.`,
			defaultVal: 1.0,
			flagsets:   simFlags,
		},
		{
			name: "Beam.Polarization",
			usage: `
              Beam.Polarization is the Bloch vector of the beam polarization
              as three comma-separated numbers. An empty value means an
              unpolarized beam.`,
			defaultVal: []string{},
			flagsets:   simFlags,
		},
		{
			name: "Beam.Footprint",
			usage: `
              Beam.Footprint selects the footprint correction of specular
              intensities: none, square or gauss.`,
			defaultVal: "none",
			flagsets:   simFlags,
		},
		{
			name: "Beam.FootprintWidth",
			usage: `
              Beam.FootprintWidth is the ratio of the beam width to the
              sample length used by the footprint correction.`,
			defaultVal: 0.0,
			flagsets:   simFlags,
		},
		{
			name: "Analyzer.Direction",
			usage: `
              Analyzer.Direction is the spin direction selected by the
              polarization analyzer as three comma-separated numbers. An
              empty value means no analyzer.`,
			defaultVal: []string{},
			flagsets:   simFlags,
		},
		{
			name: "Analyzer.Efficiency",
			usage: `
              Analyzer.Efficiency is the analyzer efficiency in [-1, 1].`,
			defaultVal: 1.0,
			flagsets:   simFlags,
		},
		{
			name: "Analyzer.Transmission",
			usage: `
              Analyzer.Transmission is the total analyzer transmission in (0, 1].`,
			defaultVal: 0.5,
			flagsets:   simFlags,
		},
		{
			name: "Detector.NPhi",
			usage: `
              Detector.NPhi is the number of detector pixels along φ.`,
			defaultVal: 100,
			flagsets:   []*pflag.FlagSet{gisasCmd.Flags()},
		},
		{
			name: "Detector.PhiMin",
			usage: `
              Detector.PhiMin is the lower edge of the detector along φ [deg].`,
			defaultVal: -1.0,
			flagsets:   []*pflag.FlagSet{gisasCmd.Flags()},
		},
		{
			name: "Detector.PhiMax",
			usage: `
              Detector.PhiMax is the upper edge of the detector along φ [deg].`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{gisasCmd.Flags()},
		},
		{
			name: "Detector.NAlpha",
			usage: `
              Detector.NAlpha is the number of detector pixels along α.`,
			defaultVal: 100,
			flagsets:   []*pflag.FlagSet{gisasCmd.Flags()},
		},
		{
			name: "Detector.AlphaMin",
			usage: `
              Detector.AlphaMin is the lower edge of the detector along α [deg].`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{gisasCmd.Flags()},
		},
		{
			name: "Detector.AlphaMax",
			usage: `
              Detector.AlphaMax is the upper edge of the detector along α [deg].`,
			defaultVal: 2.0,
			flagsets:   []*pflag.FlagSet{gisasCmd.Flags()},
		},
		{
			name: "Detector.Masks",
			usage: `
              Detector.Masks lists rectangular regions of the detector that
              are not simulated, each as "phimin:phimax:alphamin:alphamax" [deg].`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{gisasCmd.Flags()},
		},
		{
			name: "Scan.N",
			usage: `
              Scan.N is the number of grazing angles of a specular scan.`,
			defaultVal: 500,
			flagsets:   []*pflag.FlagSet{specularCmd.Flags()},
		},
		{
			name: "Scan.AlphaMin",
			usage: `
              Scan.AlphaMin is the first grazing angle of a specular scan [deg].`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{specularCmd.Flags()},
		},
		{
			name: "Scan.AlphaMax",
			usage: `
              Scan.AlphaMax is the last grazing angle of a specular scan [deg].`,
			defaultVal: 2.0,
			flagsets:   []*pflag.FlagSet{specularCmd.Flags()},
		},
		{
			name: "Background",
			usage: `
              Background is a constant added to every channel after
              normalization.`,
			defaultVal: 0.0,
			flagsets:   simFlags,
		},
		{
			name: "NumThreads",
			usage: `
              NumThreads is the number of worker goroutines. Zero means one
              per processor.`,
			shorthand:  "n",
			defaultVal: 0,
			flagsets:   simFlags,
		},
		{
			name: "NumBatches",
			usage: `
              NumBatches splits the detector channels into batches, of which
              only CurrentBatch is simulated. Runs of all batches can be
              added together.`,
			defaultVal: 1,
			flagsets:   simFlags,
		},
		{
			name: "CurrentBatch",
			usage: `
              CurrentBatch is the index of the batch to simulate.`,
			defaultVal: 0,
			flagsets:   simFlags,
		},
		{
			name: "MonteCarlo",
			usage: `
              MonteCarlo specifies whether to integrate the intensity over
              each pixel with MCPoints random points.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{gisasCmd.Flags()},
		},
		{
			name: "MCPoints",
			usage: `
              MCPoints is the number of Monte-Carlo points per pixel.`,
			defaultVal: 50,
			flagsets:   []*pflag.FlagSet{gisasCmd.Flags()},
		},
		{
			name: "UseAvgMaterials",
			usage: `
              UseAvgMaterials specifies whether to replace the materials of
              layers holding particles by volume-averaged materials.`,
			defaultVal: false,
			flagsets:   simFlags,
		},
		{
			name: "IncludeSpecular",
			usage: `
              IncludeSpecular specifies whether to add the specular peak to
              the pixel that contains it.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{gisasCmd.Flags()},
		},
		{
			name: "FresnelCache",
			usage: `
              FresnelCache specifies whether to cache the specular wavefields
              of each wavevector.`,
			defaultVal: true,
			flagsets:   simFlags,
		},
		{
			name: "FresnelCacheSize",
			usage: `
              FresnelCacheSize is the maximum number of cached wavefields.
              Zero means no limit.`,
			defaultVal: 0,
			flagsets:   simFlags,
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("GISAS")
	Cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	Cfg.AutomaticEnv()

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
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
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
	runCmd.AddCommand(gisasCmd)
	runCmd.AddCommand(specularCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("gisas: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "gisas",
	Short: "A grazing-incidence scattering simulator.",
	Long: `GISAS simulates grazing-incidence small-angle scattering and specular
reflectivity of X-rays and neutrons from multilayers decorated with
nanoparticles, using the distorted-wave Born approximation.
Use the subcommands specified below to access the model functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'GISAS_var' where 'var' is the
name of the variable to be set, with dots replaced by underscores.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of GISAS.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("GISAS v%s\n", gisas.Version)
	},
	DisableAutoGenTag: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation.",
	Long: `run runs a simulation. Use the subcommands specified below to
choose between an area-detector (gisas) and a reflectometry (specular)
simulation.`,
	DisableAutoGenTag: true,
}

// gisasCmd runs a simulation on a spherical area detector.
var gisasCmd = &cobra.Command{
	Use:   "gisas",
	Short: "Simulate the scattering pattern on an area detector.",
	Long: `gisas simulates the diffuse scattering of the sample, and optionally
the specular peak, on a detector whose pixels are bins in the exit angles
φ and α.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFromConfig(Cfg, gisasRun)
	},
	DisableAutoGenTag: true,
}

// specularCmd runs a reflectometry simulation.
var specularCmd = &cobra.Command{
	Use:   "specular",
	Short: "Simulate the specular reflectivity curve.",
	Long: `specular simulates the specular reflectivity of the sample over a scan
of grazing angles.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFromConfig(Cfg, specularRun)
	},
	DisableAutoGenTag: true,
}
