package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/profile"

	"github.com/jonnenauha/obj-decimate/internal/config"
	"github.com/jonnenauha/obj-decimate/internal/logger"
	"github.com/jonnenauha/obj-decimate/objectfile"
)

var (
	StartParams startParams

	ApplicationName = "obj-decimate"
	ApplicationURL  = "https://github.com/jonnenauha/" + ApplicationName
	Version         string
	VersionHash     string
	VersionDate     string

	Processors = []*processor{
		&processor{Processor: Merge{}},
		&processor{Processor: Simplify{}},
	}
)

type startParams struct {
	Inputs []string
	Output string

	Strict     bool
	Stdout     bool
	Quiet      bool
	NoProgress bool
	CpuProfile bool

	Config *config.Config
}

// parseStartParams parses args and loads the config they point to. version
// is true when -version was given, nothing else is validated then.
func parseStartParams(args []string) (sp startParams, version bool, err error) {
	fs := flag.NewFlagSet(ApplicationName, flag.ContinueOnError)

	var input string
	fs.StringVar(&input,
		"in", "", "Input file. More files can be given as arguments.")
	fs.StringVar(&sp.Output,
		"out", "", "Output file or directory. Defaults to the input path with the configured suffix.")
	fs.BoolVar(&sp.Strict,
		"strict", false, "Errors out on OBJ format violations, otherwise continues if the error is recoverable.")
	fs.BoolVar(&sp.Stdout,
		"stdout", false, "Write output to stdout. If enabled -out is ignored and logging directed to stderr. Use -quiet if you can't separate stdout from stderr (e.g. non-trivial in Windows).")
	fs.BoolVar(&sp.Quiet,
		"quiet", false, "Silence stdout printing.")
	fs.BoolVar(&sp.NoProgress,
		"no-progress", false, "No shell progress bars.")
	fs.BoolVar(&sp.CpuProfile,
		"cpu-profile", false, "Record ./cpu.pprof profile.")
	fs.BoolVar(&version,
		"version", false, "Print version and exit, ignores -quiet.")
	flags := config.RegisterFlags(fs)

	// -no-xxx to disable processors
	for _, processor := range Processors {
		fs.BoolVar(&processor.Disabled, processor.NameCmd(), processor.Disabled, processor.Desc())
	}

	if err = fs.Parse(args); err != nil {
		return sp, false, err
	}
	if version {
		return sp, true, nil
	}

	if sp.Config, err = config.Load(flags.Config, flags); err != nil {
		return sp, false, err
	}
	if sp.Config.Jobs.Workers == 0 {
		sp.Config.Jobs.Workers = runtime.NumCPU()
	}

	// -in and arguments
	if len(input) > 0 {
		sp.Inputs = append(sp.Inputs, input)
	}
	sp.Inputs = append(sp.Inputs, fs.Args()...)
	if len(sp.Inputs) == 0 {
		return sp, false, errors.New("-in missing")
	}
	for i, in := range sp.Inputs {
		sp.Inputs[i] = cleanPath(in)
		if !fileExists(sp.Inputs[i]) {
			return sp, false, fmt.Errorf("-in file %q does not exist", in)
		}
	}
	if sp.Stdout && len(sp.Inputs) > 1 {
		return sp, false, errors.New("-stdout accepts a single input file")
	}
	if len(sp.Output) > 0 {
		sp.Output = cleanPath(sp.Output)
	}
	return sp, false, nil
}

// outputPath returns where input is written. out is the -out value, a
// directory when several inputs are processed.
func outputPath(input, out, suffix string, multiple bool) (string, error) {
	var output string
	switch {
	case len(out) == 0:
		if iExt := strings.LastIndex(input, "."); iExt > strings.LastIndex(input, "/") {
			output = input[0:iExt] + suffix + input[iExt:]
		} else {
			output = input + suffix
		}
	case isDir(out):
		output = filepath.ToSlash(filepath.Join(out, filepath.Base(input)))
	case multiple:
		return "", fmt.Errorf("-out %q must be an existing directory with multiple inputs", out)
	default:
		output = out
	}
	// don't allow user to overwrite source file, this app can be destructive and should
	// not overwrite the source files. If user really wants to do this, they can rename the output file.
	if output == input {
		return "", fmt.Errorf("overwriting input file is not allowed, both input and output point to %s", input)
	}
	return output, nil
}

func getVersion(date bool) (version string) {
	if Version == "" {
		return "dev"
	}
	version = fmt.Sprintf("v%s (%s)", Version, VersionHash)
	if date {
		version += " " + VersionDate
	}
	return version
}

type processor struct {
	Processor
	Disabled bool
}

func (p *processor) NameCmd() string {
	return "no-" + strings.ToLower(p.Name())
}

type Processor interface {
	Name() string
	Desc() string
	Execute(j *job) error
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	sp, version, err := parseStartParams(args)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	} else if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	// -version: ignores -stdout as we are about to exit
	if version {
		fmt.Printf("%s %s\n", ApplicationName, getVersion(true))
		return 0
	}
	StartParams = sp
	cfg := sp.Config

	if err := initLogging(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer logger.Sync()

	// cpu profiling for development: github.com/pkg/profile
	if sp.CpuProfile {
		defer profile.Start(profile.ProfilePath("."), profile.Quiet).Stop()
	}

	if b, err := json.MarshalIndent(sp, "", "  "); err == nil {
		logInfo("\n%s %s %s", ApplicationName, getVersion(false), b)
	} else {
		logError("%s", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jobs := make([]*job, 0, len(sp.Inputs))
	for _, in := range sp.Inputs {
		j := &job{Input: in, ctx: ctx, cfg: cfg}
		if !sp.Stdout {
			if j.Output, err = outputPath(in, sp.Output, cfg.Output.Suffix, len(sp.Inputs) > 1); err != nil {
				logError("%s", err)
				return 1
			}
		}
		jobs = append(jobs, j)
	}

	start := time.Now()
	runJobs(jobs, cfg.Jobs.Workers)

	failed := 0
	for _, j := range jobs {
		logJob(j)
		if j.err != nil {
			failed++
		}
	}

	if len(jobs) > 1 {
		logInfo(" ")
		logResults("Files", formatInt(len(jobs)))
		if failed > 0 {
			logResults("Failed", formatInt(failed))
		}
		logResults("Total", formatDuration(time.Since(start)))
	}

	if cfg.Output.Gzip > 0 && failed < len(jobs) {
		logInfo(" ")
		logInfo("Gzip compression enabled with level %d.", cfg.Output.Gzip)
		logInfo("Remeber to set 'Content-Encoding: gzip' header if you are hosting this file over HTTP.")
	}
	logInfo(" ")

	if failed > 0 {
		return 1
	}
	return 0
}

func logJob(j *job) {
	logInfo(" ")
	logTitle("%s", j.Input)
	for _, line := range j.logs {
		logInfo("%s", line)
	}
	if j.err != nil {
		logError("%s: %s", fileBasename(j.Input), j.err)
		return
	}

	logInfo(" ")
	for _, timing := range j.timings {
		logResultsPostfix(timing.Step, formatDuration(timing.Duration), computeDurationPerc(timing.Duration, j.total)+"%%")
	}
	logResults("Total", formatDuration(j.total))

	logGeometryStats(j.preStats.Geometry, j.postStats.Geometry)
	logFaceStats(j.preStats, j.postStats)
	logObjectStats(j.preStats, j.postStats)
	logFileStats(j, j.linesParsed, j.linesWritten)
}

func logGeometryStats(stats, postprocessed objectfile.GeometryStats) {
	if !stats.IsEmpty() {
		logInfo(" ")
	}
	if stats.Vertices > 0 {
		logResultsIntPostfix("Vertices", postprocessed.Vertices, computeStatsDiff(stats.Vertices, postprocessed.Vertices))
	}
	if stats.Normals > 0 {
		logResultsIntPostfix("Normals", postprocessed.Normals, computeStatsDiff(stats.Normals, postprocessed.Normals))
	}
	if stats.UVs > 0 {
		logResultsIntPostfix("UVs", postprocessed.UVs, computeStatsDiff(stats.UVs, postprocessed.UVs))
	}
	if stats.Params > 0 {
		logResultsIntPostfix("Params", postprocessed.Params, computeStatsDiff(stats.Params, postprocessed.Params))
	}
}

func logObjectStats(stats, postprocessed objectfile.ObjStats) {
	logInfo(" ")
	// There is a special case where input has zero objects and we have created one or more.
	if stats.Groups > 0 || postprocessed.Groups > 0 {
		logResultsIntPostfix("Groups", postprocessed.Groups, computeStatsDiff(stats.Groups, postprocessed.Groups))
	}
	if stats.Objects > 0 || postprocessed.Objects > 0 {
		logResultsIntPostfix("Objects", postprocessed.Objects, computeStatsDiff(stats.Objects, postprocessed.Objects))
	}
}

// logFaceStats compares triangles, polygons are fanned before decimation.
func logFaceStats(stats, postprocessed objectfile.ObjStats) {
	if stats.Faces == 0 {
		return
	}
	logInfo(" ")
	if stats.Faces != stats.Triangles {
		logResults("Faces input", formatInt(stats.Faces))
	}
	logResultsIntPostfix("Triangles", postprocessed.Triangles, computeStatsDiff(stats.Triangles, postprocessed.Triangles))
}

func logFileStats(j *job, linesParsed, linesWritten int) {
	logInfo(" ")
	logResults("Lines input", formatInt(linesParsed))
	if linesWritten < linesParsed {
		logResultsPostfix("Lines output", formatInt(linesWritten), fmt.Sprintf("%-10s %s", formatInt(linesWritten-linesParsed), "-"+intToString(int(100-computePerc(float64(linesWritten), float64(linesParsed))))+"%%"))
	} else {
		logResultsPostfix("Lines output", formatInt(linesWritten), fmt.Sprintf("+%-10s %s", formatInt(linesWritten-linesParsed), "+"+intToString(int(computePerc(float64(linesWritten), float64(linesParsed))-100))+"%%"))
	}

	logInfo(" ")
	sizeIn, sizeOut := fileSize(j.Input), fileSize(j.Output)
	logResults("File input", formatBytes(sizeIn))
	if !StartParams.Stdout {
		if sizeOut < sizeIn {
			logResultsPostfix("File output", formatBytes(sizeOut), fmt.Sprintf("%-10s %s", formatBytes(sizeOut-sizeIn), "-"+intToString(int(100-computePerc(float64(sizeOut), float64(sizeIn))))+"%%"))
		} else {
			logResultsPostfix("File output", formatBytes(sizeOut), fmt.Sprintf("+%-10s %s", formatBytes(sizeOut-sizeIn), "+"+intToString(int(computePerc(float64(sizeOut), float64(sizeIn))-100))+"%%"))
		}
	}
}

func computeStatsDiff(a, b int) string {
	if a == b {
		return ""
	}
	diff := b - a
	perc := computePerc(float64(b), float64(a))
	if perc >= 99.999999 {
		// positive 0 decimals
		return fmt.Sprintf("+%-7d", diff)
	} else if perc <= 99.0 {
		// negative 0 decimals
		return fmt.Sprintf("%-7d    -%d", diff, 100-int(perc)) + "%%"
	}
	// negative 2 decimals
	return fmt.Sprintf("%-7d    -%.2f", diff, 100-perc) + "%%"
}

func computePerc(step, total float64) float64 {
	if step == 0 {
		return 0.0
	} else if total == 0 {
		return 100.0
	}
	return (step / total) * 100.0
}

func computeFloatPerc(step, total float64) string {
	perc := computePerc(step, total)
	if perc < 1.0 {
		return fmt.Sprintf("%.2f", perc)
	}
	return intToString(int(perc))
}

func computeDurationPerc(step, total time.Duration) string {
	return computeFloatPerc(step.Seconds(), total.Seconds())
}
