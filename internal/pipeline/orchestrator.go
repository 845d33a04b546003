package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// Orchestrator coordinates running a Pipeline over a set of local files grouped by snapshot date.
type Orchestrator struct {
	cfg   PipelineConfig
	sink  Sink
	makeW func(p Pipeline, cfg PipelineConfig, sink Sink) *Worker
}

// NewOrchestrator creates a new Orchestrator. A nil sink writes JSON files
// under cfg.OutputDir.
func NewOrchestrator(cfg PipelineConfig, sink Sink) *Orchestrator {
	if sink == nil {
		sink = NewFileSink(cfg.OutputDir)
	}
	return &Orchestrator{
		cfg:   cfg,
		sink:  sink,
		makeW: NewWorker,
	}
}

// GroupByDate groups files by snapshot date (using p.GetSnapshotDate), dates ascending.
func GroupByDate(p Pipeline, files []string) ([]time.Time, map[time.Time][]string, error) {
	byDate := make(map[time.Time][]string)
	for _, f := range files {
		date, err := p.GetSnapshotDate(filepath.Base(f))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get snapshot date for %s: %w", f, err)
		}

		date = date.Truncate(24 * time.Hour)
		byDate[date] = append(byDate[date], f)
	}

	dates := make([]time.Time, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, byDate, nil
}

// Run groups the provided files by snapshot date and processes every date
// with a bounded worker pool. A failing date does not stop the others; all
// failures are returned joined, next to one PipelineRun per date.
func (o *Orchestrator) Run(ctx context.Context, p Pipeline, files []string) ([]PipelineRun, error) {
	if len(files) == 0 {
		return nil, nil
	}

	dates, byDate, err := GroupByDate(p, files)
	if err != nil {
		return nil, err
	}

	workers := o.cfg.WorkerCount
	if workers < 1 {
		workers = 1
	}

	worker := o.makeW(p, o.cfg, o.sink)
	runs := make([]PipelineRun, len(dates))
	errs := make([]error, len(dates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, date := range dates {
		i, date := i, date
		g.Go(func() error {
			run, err := worker.ProcessBatch(gctx, date, byDate[date])
			runs[i] = run
			if err != nil {
				errs[i] = fmt.Errorf("failed to process batch for %s: %w", date.Format("2006-01-02"), err)
			}
			return nil
		})
	}
	_ = g.Wait()

	return runs, errors.Join(errs...)
}
