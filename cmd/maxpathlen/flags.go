package main

import (
	"time"

	"github.com/spf13/pflag"
)

// runConfiguration holds the flag values of a probe run.
type runConfiguration struct {
	configPath string

	logLevel     string
	logFormat    string
	logOutput    string
	keep         bool
	seed         uint64
	parallel     int
	maxOps       uint
	timeout      time.Duration
	format       string
	metricsFile  string
	roots        []string
	excluded     []string
	workDir      string
	registryPath string
}

// flagKeys maps each flag to the configuration key it overrides.
var flagKeys = map[string]string{
	"log-level":     "logging.level",
	"log-format":    "logging.format",
	"log-output":    "logging.output",
	"keep":          "KeepFileCreated",
	"seed":          "Seed",
	"parallel":      "Parallelism",
	"timeout":       "Timeout",
	"max-ops":       "MaxOpsPerSecond",
	"format":        "report.format",
	"metrics-file":  "report.metrics_file",
	"root":          "Roots",
	"exclude":       "ExcludedTypes",
	"workdir":       "WorkDir",
	"registry-path": "RegistryPath",
}

func registerRunFlags(flags *pflag.FlagSet, c *runConfiguration) {
	flags.StringVarP(&c.logLevel, "log-level", "l", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	flags.StringVar(&c.logFormat, "log-format", "", "Log format (text, json)")
	flags.StringVar(&c.logOutput, "log-output", "", "Log output (stdout, stderr or a file path)")
	flags.BoolVarP(&c.keep, "keep", "k", false, "Keep the probe directories and file on disk")
	flags.Uint64Var(&c.seed, "seed", 0, "Seed for the random names (0 picks one)")
	flags.IntVarP(&c.parallel, "parallel", "p", 0, "Number of volumes probed at once")
	flags.UintVar(&c.maxOps, "max-ops", 0, "Maximum filesystem operations per second across all probes (0 = unlimited)")
	flags.DurationVar(&c.timeout, "timeout", 0, "Timeout for each filesystem operation")
	flags.StringVarP(&c.format, "format", "f", "", "Report format (text, json, yaml)")
	flags.StringVar(&c.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file")
	flags.StringSliceVarP(&c.roots, "root", "r", nil, "Probe these directories instead of discovered volumes")
	flags.StringSliceVar(&c.excluded, "exclude", nil, "Filesystem types to skip")
	flags.StringVar(&c.workDir, "workdir", "", "Directory below each volume root to probe in")
	flags.StringVar(&c.registryPath, "registry-path", "", "Location of the extended path policy value")
}

// collectOverrides returns the configuration overrides for the flags set on
// the command line. Flags left alone do not override the file or the
// environment.
func collectOverrides(flags *pflag.FlagSet) map[string]any {
	overrides := make(map[string]any)

	flags.Visit(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return
		}

		switch f.Value.Type() {
		case "stringSlice":
			values, _ := flags.GetStringSlice(f.Name)
			overrides[key] = values
		case "bool":
			value, _ := flags.GetBool(f.Name)
			overrides[key] = value
		case "duration":
			value, _ := flags.GetDuration(f.Name)
			overrides[key] = value
		default:
			overrides[key] = f.Value.String()
		}
	})

	return overrides
}
