// Package config resolves run settings from command-line flags, environment
// variables and defaults, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"ecogrid/internal/sims/trophic"
)

// ErrInvalidValue is wrapped by every resolution error.
var ErrInvalidValue = errors.New("invalid configuration value")

// Output formats understood by the run command.
const (
	FormatMap        = "map"
	FormatUnits      = "units"
	FormatSummary    = "summary"
	FormatJSON       = "json"
	// FormatJSONLegacy is FormatJSON with herbivores named VegeterianAnimal.
	FormatJSONLegacy = "json-legacy"
	FormatNone       = "none"
)

var formats = []string{FormatMap, FormatUnits, FormatSummary, FormatJSON, FormatJSONLegacy, FormatNone}

// RunConfig holds every setting the command-line tools understand.
type RunConfig struct {
	Generations int
	Layout      string
	Seed        int64
	Format      string
	Output      string
	Record      string
	Workers     int
	LogLevel    string

	Addr string
	TPS  int
	Open bool

	Evolution trophic.EvolutionConfig
}

// option defines how to resolve a single configuration value.
type option struct {
	flagName    string
	envVarName  string
	defaultVal  string
	description string
	setter      func(*RunConfig, string) error
}

func intSetter(dst func(*RunConfig) *int, min int) func(*RunConfig, string) error {
	return func(c *RunConfig, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		if n < min {
			return fmt.Errorf("must be at least %d", min)
		}
		*dst(c) = n
		return nil
	}
}

func floatSetter(dst func(*RunConfig) *float64) func(*RunConfig, string) error {
	return func(c *RunConfig, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*dst(c) = f
		return nil
	}
}

func rateOption(name string, def float64, dst func(*RunConfig) *float64) option {
	return option{
		flagName:    strings.ReplaceAll(name, "_", "-"),
		envVarName:  "ECOGRID_" + strings.ToUpper(name),
		defaultVal:  strconv.FormatFloat(def, 'f', -1, 64),
		description: strings.ReplaceAll(name, "_", " "),
		setter:      floatSetter(dst),
	}
}

func options() []option {
	rates := trophic.DefaultConfig()
	return []option{
		{
			flagName:    "generations",
			envVarName:  "ECOGRID_GENERATIONS",
			defaultVal:  "100",
			description: "number of generations to simulate",
			setter:      intSetter(func(c *RunConfig) *int { return &c.Generations }, 0),
		},
		{
			flagName:    "layout",
			envVarName:  "ECOGRID_LAYOUT",
			defaultVal:  "flat",
			description: "starting layout name or path to a layout JSON file",
			setter:      func(c *RunConfig, v string) error { c.Layout = v; return nil },
		},
		{
			flagName:    "seed",
			envVarName:  "ECOGRID_SEED",
			defaultVal:  "1337",
			description: "seed for randomized layouts",
			setter: func(c *RunConfig, v string) error {
				n, err := strconv.ParseInt(v, 10, 64)
				c.Seed = n
				return err
			},
		},
		{
			flagName:    "format",
			envVarName:  "ECOGRID_FORMAT",
			defaultVal:  FormatSummary,
			description: "output format: " + strings.Join(formats, ", "),
			setter: func(c *RunConfig, v string) error {
				for _, f := range formats {
					if v == f {
						c.Format = v
						return nil
					}
				}
				return fmt.Errorf("unknown format %q", v)
			},
		},
		{
			flagName:    "output",
			envVarName:  "ECOGRID_OUTPUT",
			defaultVal:  "-",
			description: "output file, - for stdout",
			setter:      func(c *RunConfig, v string) error { c.Output = v; return nil },
		},
		{
			flagName:    "record",
			envVarName:  "ECOGRID_RECORD",
			defaultVal:  "",
			description: "record every generation into this SQLite database (without extension)",
			setter:      func(c *RunConfig, v string) error { c.Record = v; return nil },
		},
		{
			flagName:    "workers",
			envVarName:  "ECOGRID_WORKERS",
			defaultVal:  "0",
			description: "goroutines per trophic phase, 0 or 1 for sequential ticks",
			setter:      intSetter(func(c *RunConfig) *int { return &c.Workers }, 0),
		},
		{
			flagName:    "log-level",
			envVarName:  "ECOGRID_LOG_LEVEL",
			defaultVal:  "info",
			description: "log level: debug, info, warn, error",
			setter:      func(c *RunConfig, v string) error { c.LogLevel = v; return nil },
		},
		{
			flagName:    "addr",
			envVarName:  "ECOGRID_ADDR",
			defaultVal:  ":8080",
			description: "HTTP listen address",
			setter:      func(c *RunConfig, v string) error { c.Addr = v; return nil },
		},
		{
			flagName:    "tps",
			envVarName:  "ECOGRID_TPS",
			defaultVal:  "4",
			description: "generations per second while serving",
			setter:      intSetter(func(c *RunConfig) *int { return &c.TPS }, 1),
		},
		{
			flagName:    "open",
			envVarName:  "ECOGRID_OPEN",
			defaultVal:  "false",
			description: "open the monitor in a browser",
			setter: func(c *RunConfig, v string) error {
				b, err := strconv.ParseBool(v)
				c.Open = b
				return err
			},
		},
		rateOption("plant_growth_rate", rates.PlantGrowthRate, func(c *RunConfig) *float64 { return &c.Evolution.PlantGrowthRate }),
		rateOption("herbivore_eating_rate", rates.HerbivoreEatingRate, func(c *RunConfig) *float64 { return &c.Evolution.HerbivoreEatingRate }),
		rateOption("herbivore_death_rate", rates.HerbivoreDeathRate, func(c *RunConfig) *float64 { return &c.Evolution.HerbivoreDeathRate }),
		rateOption("predator_eating_rate", rates.PredatorEatingRate, func(c *RunConfig) *float64 { return &c.Evolution.PredatorEatingRate }),
		rateOption("predator_death_rate", rates.PredatorDeathRate, func(c *RunConfig) *float64 { return &c.Evolution.PredatorDeathRate }),
	}
}

// Bind registers the named options on flags. With no names every option is
// registered.
func Bind(flags *pflag.FlagSet, names ...string) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	for _, o := range options() {
		if len(names) > 0 && !want[o.flagName] {
			continue
		}
		if flags.Lookup(o.flagName) != nil {
			continue
		}
		usage := fmt.Sprintf("%s (env %s)", o.description, o.envVarName)
		flags.String(o.flagName, o.defaultVal, usage)
		if o.flagName == "open" {
			flags.Lookup(o.flagName).NoOptDefVal = "true"
		}
	}
}

// Resolve builds a RunConfig. Changed flags win over environment variables,
// which win over defaults. Options without a flag still read their
// environment variable.
func Resolve(flags *pflag.FlagSet) (RunConfig, error) {
	var cfg RunConfig
	for _, o := range options() {
		value := o.defaultVal
		source := "default"
		if env, ok := os.LookupEnv(o.envVarName); ok && env != "" {
			value = env
			source = o.envVarName
		}
		if flags != nil && flags.Changed(o.flagName) {
			v, err := flags.GetString(o.flagName)
			if err != nil {
				return RunConfig{}, fmt.Errorf("%w: --%s: %v", ErrInvalidValue, o.flagName, err)
			}
			value = v
			source = "--" + o.flagName
		}
		if err := o.setter(&cfg, value); err != nil {
			return RunConfig{}, fmt.Errorf("%w: %s=%q (from %s): %v", ErrInvalidValue, o.flagName, value, source, err)
		}
	}
	return cfg, nil
}

// LoadDotEnv loads environment variables from path when the file exists.
// Variables already present in the environment are not overridden.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
