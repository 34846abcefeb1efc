package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/cheggaaa/pb.v1"

	"github.com/jonnenauha/obj-decimate/decimate"
	"github.com/jonnenauha/obj-decimate/internal/config"
	"github.com/jonnenauha/obj-decimate/objectfile"
)

type timing struct {
	Step     string
	Duration time.Duration
}

// job processes one input file. Jobs share nothing but the configuration.
type job struct {
	Input  string
	Output string

	ctx context.Context
	cfg *config.Config
	obj *objectfile.OBJ
	bar *pb.ProgressBar

	preStats     objectfile.ObjStats
	postStats    objectfile.ObjStats
	linesParsed  int
	linesWritten int
	simplified   *decimate.Output
	timings      []timing
	total        time.Duration

	// processor output, logged once the job is done so parallel jobs do
	// not interleave
	logs []string
	err  error
}

func (j *job) logf(format string, args ...interface{}) {
	j.logs = append(j.logs, fmt.Sprintf(format, args...))
}

// progress feeds the bar with the faces removed so far.
func (j *job) progress(p decimate.Progress) {
	if j.bar == nil {
		return
	}
	if remove := p.Initial - p.Target; remove > 0 {
		j.bar.SetTotal(remove)
	}
	j.bar.Set(p.Initial - p.Faces)
}

func (j *job) run() error {
	var (
		start    = time.Now()
		pre      = start
		timeStep = func(step string) {
			j.timings = append(j.timings, timing{Step: step, Duration: time.Since(pre)})
			pre = time.Now()
		}
	)
	defer func() {
		j.total = time.Since(start)
	}()

	parser := &Parser{Name: fileBasename(j.Input), Strict: StartParams.Strict}
	obj, linesParsed, err := parser.ParseFile(j.Input)
	j.linesParsed = linesParsed
	if err != nil {
		return err
	}
	j.obj = obj
	timeStep("Parse")

	// report the o/g declared in the file, not the ones split per material
	j.preStats = obj.Stats()
	j.preStats.Objects = parser.ObjectsParsed
	j.preStats.Groups = parser.GroupsParsed
	if obj.Skipped > 0 {
		j.logf("  - [WARN] skipped %d lines, points and other unsupported elements", obj.Skipped)
	}

	for pi, processor := range Processors {
		if processor.Disabled {
			j.logf("processor #%d: %s - Disabled", pi+1, processor.Name())
			continue
		}
		j.logf("processor #%d: %s", pi+1, processor.Name())
		if err := processor.Execute(j); err != nil {
			return fmt.Errorf("%s: %w", processor.Name(), err)
		}
		timeStep(processor.Name())
	}
	j.postStats = j.obj.Stats()

	w := &Writer{obj: j.obj, gzip: j.cfg.Output.Gzip}
	if StartParams.Stdout {
		j.linesWritten, err = w.WriteTo(os.Stdout)
	} else {
		j.linesWritten, err = w.WriteFile(j.Output)
	}
	if err != nil {
		return err
	}
	timeStep("Write")

	if j.bar != nil {
		j.bar.Set64(j.bar.Total)
	}
	return nil
}

// runJobs runs every job on a pool of workers and returns once all are done.
func runJobs(jobs []*job, workers int) {
	var (
		queue        = make(chan *job)
		wg           = &sync.WaitGroup{}
		progress     = make([]*pb.ProgressBar, 0)
		progressPool *pb.Pool
		progressErr  error
	)
	if workers < 1 {
		workers = 1
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	if !StartParams.NoProgress && !StartParams.Quiet && !StartParams.Stdout {
		for _, j := range jobs {
			j.bar = pb.New(0).Prefix(fmt.Sprintf("  - %-24s", fileBasename(j.Input))).SetMaxWidth(130)
			j.bar.ShowTimeLeft = false
			progress = append(progress, j.bar)
		}
		// does not work in every shell, continue without bars
		if progressPool, progressErr = pb.StartPool(progress...); progressErr != nil {
			for _, j := range jobs {
				j.bar = nil
			}
		}
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range queue {
				j.err = j.run()
			}
		}()
	}
	for _, j := range jobs {
		queue <- j
	}
	close(queue)
	wg.Wait()

	if progressErr == nil && progressPool != nil {
		progressPool.Stop()
	}
}
