package config

import (
	"flag"

	"github.com/jonnenauha/obj-decimate/decimate"
)

// Flags are the command-line overrides of the config file. Only flags given
// on the command line override file values.
type Flags struct {
	fs *flag.FlagSet

	Config      string
	method      string
	targetFaces int
	percentage  float64
	preClean    bool
	workers     int
	gzip        int
	logLevel    string
	logFile     string
}

// RegisterFlags defines the config overrides on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVar(&f.Config, "config", "", "Path to config file. Default looks for ./"+FileName+" and the user config dir.")
	fs.StringVar(&f.method, "method", "", "Simplify method: absolute or percentage.")
	fs.IntVar(&f.targetFaces, "target-faces", 0, "Target face count in absolute mode.")
	fs.Float64Var(&f.percentage, "percentage", 0, "Fraction of faces to remove, implies -method percentage unless given.")
	fs.BoolVar(&f.preClean, "pre-clean", true, "Merge close vertices and drop duplicate and degenerate faces before simplifying.")
	fs.IntVar(&f.workers, "workers", 0, "Number of files processed in parallel. 0 uses one per CPU.")
	fs.IntVar(&f.gzip, "gzip", 0, "Gzip the output with this level 1-9. 0 disables.")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn or error.")
	fs.StringVar(&f.logFile, "log-file", "", "Also write logs to this rotated file.")
	return f
}

func (f *Flags) set() map[string]bool {
	given := make(map[string]bool)
	f.fs.Visit(func(fl *flag.Flag) {
		given[fl.Name] = true
	})
	return given
}

// apply applies the given CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	given := f.set()
	if given["method"] {
		cfg.Simplify.Method = f.method
	}
	if given["target-faces"] {
		cfg.Simplify.TargetFaces = f.targetFaces
	}
	if given["percentage"] {
		cfg.Simplify.PercentageReduction = f.percentage
		if !given["method"] {
			cfg.Simplify.Method = string(decimate.Percentage)
		}
	}
	if given["pre-clean"] {
		cfg.Simplify.PreClean = f.preClean
	}
	if given["workers"] {
		cfg.Jobs.Workers = f.workers
	}
	if given["gzip"] {
		cfg.Output.Gzip = f.gzip
	}
	if given["log-level"] {
		cfg.Logging.Level = f.logLevel
	}
	if given["log-file"] {
		cfg.Logging.LogFile = f.logFile
	}
}
